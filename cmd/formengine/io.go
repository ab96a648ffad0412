package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/goliatone/go-formengine/pkg/layout"
	"github.com/goliatone/go-formengine/pkg/model"
	"github.com/goliatone/go-formengine/pkg/orchestrator"
)

// loadStore reads the configured layouts directory, or the embedded set when
// none is configured.
func (a *app) loadStore() (*layout.Store, error) {
	if a.cfg.Layouts == "" {
		return layout.LoadFS(layout.EmbeddedFS())
	}
	store, err := layout.LoadFS(os.DirFS(a.cfg.Layouts))
	if err != nil {
		return nil, fmt.Errorf("load layouts from %s: %w", a.cfg.Layouts, err)
	}
	return store, nil
}

// orchestratorOptions returns the options shared by every command. The store
// is supplied by the caller.
func (a *app) orchestratorOptions() ([]orchestrator.Option, error) {
	options := []orchestrator.Option{
		orchestrator.WithDefaultRenderer(a.cfg.Renderer),
		orchestrator.WithLogger(a.logger),
	}
	for _, preset := range a.cfg.Presets {
		transformer, err := orchestrator.NewPresetTransformerFromFS(os.DirFS(filepath.Dir(preset)), filepath.Base(preset))
		if err != nil {
			return nil, err
		}
		options = append(options, orchestrator.WithTransformers(transformer))
	}
	return options, nil
}

func (a *app) orchestrator() (*orchestrator.Orchestrator, error) {
	store, err := a.loadStore()
	if err != nil {
		return nil, err
	}
	options, err := a.orchestratorOptions()
	if err != nil {
		return nil, err
	}
	return orchestrator.New(append(options, orchestrator.WithStore(store))...), nil
}

// readJSON decodes path into dest. "-" reads stdin; an empty path leaves
// dest untouched.
func (a *app) readJSON(path string, dest any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(a.in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (a *app) readDocument(path string) (model.Document, error) {
	doc := model.Document{}
	if err := a.readJSON(path, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// writeOutput writes data to path, or to stdout when path is empty.
func (a *app) writeOutput(path string, data []byte) error {
	return a.writeTo(a.out, path, data)
}

func (a *app) writeTo(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(withNewline(data))
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	a.logger.Info("wrote output", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

func withNewline(data []byte) []byte {
	if len(data) == 0 || data[len(data)-1] == '\n' {
		return data
	}
	return append(data, '\n')
}

// lockedWriter serialises writes from the watcher goroutine.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
