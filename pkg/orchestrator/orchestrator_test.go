package orchestrator_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formengine/pkg/layout"
	"github.com/goliatone/go-formengine/pkg/model"
	"github.com/goliatone/go-formengine/pkg/orchestrator"
	"github.com/goliatone/go-formengine/pkg/render"
	"github.com/goliatone/go-formengine/pkg/validation"
)

type captureRenderer struct {
	name    string
	plan    render.Plan
	options render.RenderOptions
	calls   int
}

func (c *captureRenderer) Name() string        { return c.name }
func (c *captureRenderer) ContentType() string { return "text/plain" }
func (c *captureRenderer) Render(_ context.Context, plan render.Plan, options render.RenderOptions) ([]byte, error) {
	c.plan = plan
	c.options = options
	c.calls++
	return []byte(c.name), nil
}

func newCapture(t *testing.T, options ...orchestrator.Option) (*orchestrator.Orchestrator, *captureRenderer) {
	t.Helper()
	capture := &captureRenderer{name: "capture"}
	options = append([]orchestrator.Option{
		orchestrator.WithRegistry(render.NewRegistry(capture)),
		orchestrator.WithDefaultRenderer("capture"),
	}, options...)
	return orchestrator.New(options...), capture
}

func TestGenerate_EmbeddedLayout(t *testing.T) {
	orch, capture := newCapture(t)
	doc := model.Document{"vitals": map[string]any{"bp": "120/80"}}

	out, err := orch.Generate(context.Background(), orchestrator.Request{
		LayoutID: "clinical-finding",
		Document: doc,
		Sections: []string{"vitals"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(out) != "capture" {
		t.Fatalf("unexpected output %q", out)
	}

	if len(capture.plan.Sections) != 1 || capture.plan.Sections[0].Section.ID != "vitals" {
		t.Fatalf("expected only the vitals section, got %+v", capture.plan.Sections)
	}
	bp, ok := capture.plan.Field("bloodPressure")
	if !ok || bp.Value != "120/80" {
		t.Fatalf("blood pressure mismatch: %+v", bp)
	}
	if bp.Field.Widget == "" {
		t.Fatalf("expected widgets to be annotated")
	}
	if _, ok := capture.plan.Field("notes"); !ok {
		t.Fatalf("expected sectionless notes in the unassigned group")
	}
	if capture.options.Layout.ID != "clinical-finding" {
		t.Fatalf("render options missing layout: %+v", capture.options.Layout.ID)
	}
	if diff := cmp.Diff([]string{"vitals"}, capture.options.Sections); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_FindingsOrderAndPayload(t *testing.T) {
	orch, capture := newCapture(t)

	caller := model.Finding{Field: "vitals.bp", Message: "Checked by nurse", Severity: model.SeverityError}
	_, err := orch.Generate(context.Background(), orchestrator.Request{
		LayoutID: "clinical-finding",
		Document: model.Document{},
		Findings: []model.Finding{caller},
		Validate: true,
		Payload: map[string][]string{
			"body.bloodPressure": {"Rejected by server"},
			"form":               {"Record is locked"},
		},
		RenderOptions: render.RenderOptions{FormErrors: []string{"Stale copy"}},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	bp, _ := capture.plan.Field("bloodPressure")
	if bp.Error == nil || bp.Error.Message != "Checked by nurse" {
		t.Fatalf("caller findings should win, got %+v", bp.Error)
	}
	diagnosis, _ := capture.plan.Field("diagnosis")
	if diagnosis.Error == nil || diagnosis.Error.Message != validation.MessageRequired {
		t.Fatalf("expected validator finding on diagnosis, got %+v", diagnosis.Error)
	}
	if diff := cmp.Diff([]string{"Stale copy", "Record is locked"}, capture.options.FormErrors); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestPlan_ReturnsFindings(t *testing.T) {
	orch, _ := newCapture(t)
	result, err := orch.Plan(context.Background(), orchestrator.Request{
		LayoutID: "clinical-finding",
		Document: model.Document{"vitals": map[string]any{"bp": "120/80", "pulse": 300}},
		Validate: true,
	})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	pulse, _ := result.Plan.Field("pulse")
	if pulse.Error == nil || !strings.HasPrefix(pulse.Error.Message, "Must be at most") {
		t.Fatalf("expected max violation on pulse, got %+v", pulse.Error)
	}
	if len(result.Findings) == 0 {
		t.Fatalf("expected findings on the result")
	}
}

func TestGenerate_UnknownLayout(t *testing.T) {
	orch, _ := newCapture(t)
	_, err := orch.Generate(context.Background(), orchestrator.Request{LayoutID: "missing"})
	if !errors.Is(err, layout.ErrLayoutNotFound) {
		t.Fatalf("expected ErrLayoutNotFound, got %v", err)
	}
}

func TestGenerate_InlineLayoutAndRendererFallback(t *testing.T) {
	capture := &captureRenderer{name: "only"}
	orch := orchestrator.New(
		orchestrator.WithRegistry(render.NewRegistry(capture)),
		orchestrator.WithDefaultRenderer("absent"),
	)

	form := &model.Layout{ID: "inline", Fields: []model.Field{{ID: "a", Type: "NUMBER"}}}
	if _, err := orch.Generate(context.Background(), orchestrator.Request{Layout: form}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if capture.calls != 1 {
		t.Fatalf("expected fallback to the only renderer")
	}
	a, _ := capture.plan.Field("a")
	if a.Field.Type != model.FieldTypeNumber {
		t.Fatalf("inline layout not normalised: %q", a.Field.Type)
	}

	_, err := orch.Generate(context.Background(), orchestrator.Request{Layout: form, Renderer: "absent"})
	if !errors.Is(err, render.ErrRendererNotFound) {
		t.Fatalf("expected ErrRendererNotFound for an explicit renderer, got %v", err)
	}
}

func TestGenerate_Transformers(t *testing.T) {
	preset, err := orchestrator.NewPresetTransformerFromFS(fstest.MapFS{
		"cardio.yaml": {Data: []byte("title: Cardiology\nfields:\n  pulse:\n    label: Heart rate\n    required: true\n")},
	}, "cardio.yaml")
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	var seen string
	orch, capture := newCapture(t, orchestrator.WithTransformers(
		preset,
		orchestrator.TransformerFunc(func(_ context.Context, form *model.Layout) error {
			seen = form.Title
			return nil
		}),
	))

	if _, err := orch.Generate(context.Background(), orchestrator.Request{LayoutID: "clinical-finding"}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if seen != "Cardiology" {
		t.Fatalf("transformers ran out of order, saw title %q", seen)
	}
	pulse, _ := capture.plan.Field("pulse")
	if pulse.Field.Label != "Heart rate" || !pulse.Field.Required {
		t.Fatalf("preset not applied: %+v", pulse.Field)
	}

	// The stored layout is untouched.
	orch2, capture2 := newCapture(t)
	if _, err := orch2.Generate(context.Background(), orchestrator.Request{LayoutID: "clinical-finding"}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if pulse, _ := capture2.plan.Field("pulse"); pulse.Field.Label != "Pulse" {
		t.Fatalf("stored layout mutated: %q", pulse.Field.Label)
	}
}

func TestGenerate_TransformerError(t *testing.T) {
	boom := errors.New("boom")
	orch, _ := newCapture(t, orchestrator.WithTransformers(orchestrator.TransformerFunc(func(context.Context, *model.Layout) error {
		return boom
	})))
	if _, err := orch.Generate(context.Background(), orchestrator.Request{LayoutID: "clinical-finding"}); !errors.Is(err, boom) {
		t.Fatalf("expected transformer error, got %v", err)
	}
}

func TestEdit(t *testing.T) {
	orch, _ := newCapture(t)
	doc := model.Document{"vitals": map[string]any{"bp": "120/80"}}

	got, err := orch.Edit(context.Background(), orchestrator.EditRequest{
		LayoutID: "clinical-finding",
		Document: doc,
		FieldID:  "pulse",
		Value:    "72",
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	want := model.Document{"vitals": map[string]any{"bp": "120/80", "pulse": float64(72)}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("edit mismatch (-want +got):\n%s", diff)
	}
	if _, present := doc["vitals"].(map[string]any)["pulse"]; present {
		t.Fatalf("input document mutated")
	}

	raw, err := orch.Edit(context.Background(), orchestrator.EditRequest{
		LayoutID: "clinical-finding",
		FieldID:  "pulse",
		Value:    "72",
		Raw:      true,
	})
	if err != nil {
		t.Fatalf("raw edit: %v", err)
	}
	if diff := cmp.Diff(model.Document{"vitals": map[string]any{"pulse": "72"}}, raw); diff != "" {
		t.Fatalf("raw edit mismatch (-want +got):\n%s", diff)
	}

	_, err = orch.Edit(context.Background(), orchestrator.EditRequest{LayoutID: "clinical-finding", FieldID: "nope"})
	if !errors.Is(err, orchestrator.ErrFieldNotFound) {
		t.Fatalf("expected ErrFieldNotFound, got %v", err)
	}
}

func TestSubmit(t *testing.T) {
	orch, _ := newCapture(t)
	doc := model.Document{"vitals": map[string]any{"fasting": true}}

	got, result, err := orch.Submit(context.Background(), orchestrator.Request{
		LayoutID: "clinical-finding",
		Document: doc,
		Sections: []string{"vitals"},
		Validate: true,
	}, map[string][]string{"vitals.pulse": {"300"}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	want := model.Document{"vitals": map[string]any{"pulse": float64(300), "fasting": false}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("submitted document mismatch (-want +got):\n%s", diff)
	}
	pulse, _ := result.Plan.Field("pulse")
	if pulse.Value != float64(300) || pulse.Error == nil {
		t.Fatalf("expected re-built plan with a range error, got %+v", pulse)
	}
	bp, _ := result.Plan.Field("bloodPressure")
	if bp.Error == nil || bp.Error.Message != validation.MessageRequired {
		t.Fatalf("expected required error on blood pressure, got %+v", bp.Error)
	}
}

func TestLayoutsAndStoreProvider(t *testing.T) {
	orch, _ := newCapture(t)
	if diff := cmp.Diff([]string{"clinical-finding"}, orch.Layouts()); diff != "" {
		t.Fatalf("layouts mismatch (-want +got):\n%s", diff)
	}

	first, err := layout.NewStore(model.Layout{ID: "a"})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	second, err := layout.NewStore(model.Layout{ID: "b"}, model.Layout{ID: "c"})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	current := first
	swapped, _ := newCapture(t, orchestrator.WithStoreProvider(func() *layout.Store { return current }))
	if diff := cmp.Diff([]string{"a"}, swapped.Layouts()); diff != "" {
		t.Fatalf("layouts mismatch (-want +got):\n%s", diff)
	}
	current = second
	if diff := cmp.Diff([]string{"b", "c"}, swapped.Layouts()); diff != "" {
		t.Fatalf("layouts after swap mismatch (-want +got):\n%s", diff)
	}
}

func TestWithLayoutFS_InvalidLayoutFailsRequests(t *testing.T) {
	orch, _ := newCapture(t, orchestrator.WithLayoutFS(fstest.MapFS{
		"broken.yaml": {Data: []byte("layouts: [not, a, map")},
	}))
	if _, err := orch.Generate(context.Background(), orchestrator.Request{LayoutID: "x"}); err == nil {
		t.Fatalf("expected load error to surface")
	}
}

func TestDefaultRegistry(t *testing.T) {
	orch := orchestrator.New()
	if diff := cmp.Diff([]string{"html", "json", "tui"}, orch.Registry().List()); diff != "" {
		t.Fatalf("registry mismatch (-want +got):\n%s", diff)
	}
	out, err := orch.Generate(context.Background(), orchestrator.Request{LayoutID: "clinical-finding", Renderer: "json"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(out), `"Clinical finding"`) {
		t.Fatalf("expected layout title in json output: %s", out)
	}
}
