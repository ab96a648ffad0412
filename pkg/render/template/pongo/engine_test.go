package pongo_test

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-formengine/pkg/render/template/pongo"
	"github.com/goliatone/go-formengine/pkg/testsupport"
)

//go:embed testdata/templates/*.tmpl
var embeddedTemplates embed.FS

func TestEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "hello.golden"))
	if result != want || written != want {
		t.Fatalf("render mismatch\nwant: %q\n got: %q (writer %q)", want, result, written)
	}
}

func TestEngine_StructDataUsesJSONNames(t *testing.T) {
	engine := newEngine(t)
	data := struct {
		Name string `json:"name"`
	}{Name: "Ada"}

	result, err := engine.RenderTemplate("hello.tmpl", data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "Hello, Ada!\n" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"env": "staging"},
		"greet":    func(name string) string { return "hi " + name },
	})
	if err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, _ := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("use-global", nil, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "use-global.golden"))
	if result != want {
		t.Fatalf("render mismatch\nwant: %q\n got: %q", want, result)
	}
}

var registerShout sync.Once

func TestEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	registerShout.Do(func() {
		err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
			return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
		})
		if err != nil {
			t.Fatalf("register filter: %v", err)
		}
	})

	result, err := engine.RenderTemplate("use-filter", map[string]any{"name": "Ada", "path": "vitals.bp"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "use-filter.golden"))
	if result != want {
		t.Fatalf("render mismatch\nwant: %q\n got: %q", want, result)
	}

	if err := engine.RegisterFilter("shout", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate filter error")
	}
}

func TestEngine_RenderString(t *testing.T) {
	engine := newEngine(t)
	result, err := engine.RenderString("{{ value|trim }}", map[string]any{"value": "  x  "})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if result != "x" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestNew_RequiresSource(t *testing.T) {
	if _, err := pongo.New(); err == nil {
		t.Fatalf("expected error without template source")
	}
}

func TestEngine_MissingTemplate(t *testing.T) {
	engine := newEngine(t)
	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatalf("expected missing template error")
	}
}

func newEngine(t *testing.T) *pongo.Engine {
	t.Helper()

	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	engine, err := pongo.New(pongo.WithFS(templatesFS))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
