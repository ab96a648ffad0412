package render

import (
	"errors"
	"fmt"
	"mime"
	"slices"
	"strings"
	"sync"
)

// ErrRendererNotFound is returned when no renderer matches a lookup.
var ErrRendererNotFound = errors.New("render: renderer not found")

// Registry holds the output renderers a form can be produced with. Names
// are matched case-insensitively; the first renderer registered is the
// default. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]Renderer
}

// NewRegistry registers renderers in order and panics on a bad entry.
func NewRegistry(renderers ...Renderer) *Registry {
	r := &Registry{byName: make(map[string]Renderer, len(renderers))}
	for _, renderer := range renderers {
		r.MustRegister(renderer)
	}
	return r
}

// Register adds renderer under its normalised Name().
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return errors.New("render: renderer is required")
	}
	key := rendererKey(renderer.Name())
	if key == "" {
		return errors.New("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[key]; taken {
		return fmt.Errorf("render: renderer %q already registered", key)
	}
	r.byName[key] = renderer
	r.order = append(r.order, key)
	return nil
}

// MustRegister is Register for wiring code that cannot recover.
func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

// Get returns the renderer registered as name.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if renderer, ok := r.byName[rendererKey(name)]; ok {
		return renderer, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrRendererNotFound, name)
}

// Resolve picks the renderer for a request. An explicit name must exist.
// An empty name tries preferred, then the first registered renderer.
func (r *Registry) Resolve(name, preferred string) (Renderer, error) {
	if strings.TrimSpace(name) != "" {
		return r.Get(name)
	}
	if renderer, err := r.Get(preferred); err == nil {
		return renderer, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.order) == 0 {
		return nil, fmt.Errorf("%w: registry is empty", ErrRendererNotFound)
	}
	return r.byName[r.order[0]], nil
}

// ForContentType returns the first registered renderer whose media type
// matches contentType. Parameters such as charset are ignored.
func (r *Registry) ForContentType(contentType string) (Renderer, error) {
	want := mediaType(contentType)

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, key := range r.order {
		renderer := r.byName[key]
		if want != "" && mediaType(renderer.ContentType()) == want {
			return renderer, nil
		}
	}
	return nil, fmt.Errorf("%w: content type %q", ErrRendererNotFound, contentType)
}

// List returns the registered names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	names := slices.Clone(r.order)
	r.mu.RUnlock()
	slices.Sort(names)
	return names
}

func rendererKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func mediaType(contentType string) string {
	parsed, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return rendererKey(contentType)
	}
	return parsed
}
