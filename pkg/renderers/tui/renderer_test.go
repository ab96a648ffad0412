package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formengine/pkg/model"
	"github.com/goliatone/go-formengine/pkg/render"
	"github.com/goliatone/go-formengine/pkg/validation"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	textAreas    []string
	infoMessages []string
	prompts      []string
	inputPos     int
	selectPos    int
	confirmPos   int
	textPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func ptr(v float64) *float64 { return &v }

func visitLayout() model.Layout {
	return model.Layout{
		Sections: []model.Section{{ID: "vitals", Label: "Vitals"}},
		Fields: []model.Field{
			{ID: "bp", SectionID: "vitals", Type: model.FieldTypeText, Label: "BP", DataSource: "vitals.bp", Required: true},
			{ID: "pulse", SectionID: "vitals", Type: model.FieldTypeNumber, Label: "Pulse", DataSource: "vitals.pulse",
				Validation: &model.Validation{Min: ptr(20), Max: ptr(250)}},
			{ID: "fasting", SectionID: "vitals", Type: model.FieldTypeBoolean, Label: "Fasting"},
			{ID: "diagnosis", Type: model.FieldTypeSelect, Label: "Diagnosis", Required: true,
				Options: []model.Option{{Value: "I10", Label: "Hypertension"}, {Value: "J45", Label: "Asthma"}}},
			{ID: "notes", Type: model.FieldTypeTextarea, Label: "Notes"},
		},
	}
}

func renderWith(t *testing.T, r *Renderer, doc model.Document) model.Document {
	t.Helper()
	layout := visitLayout()
	plan := render.Build(layout, doc, nil, nil)
	out, err := r.Render(context.Background(), plan, render.RenderOptions{Layout: layout, Document: doc})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got := model.Document{}
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	return got
}

func TestRender_CoercesAnswersByType(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"120/80", "72"},
		confirm:   []bool{true},
		selectIdx: []int{1},
		textAreas: []string{"stable"},
	}
	got := renderWith(t, New(WithPromptDriver(driver)), nil)

	want := model.Document{
		"vitals":    map[string]any{"bp": "120/80", "pulse": float64(72)},
		"fasting":   true,
		"diagnosis": "J45",
		"notes":     "stable",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"BP", "Pulse", "Fasting", "Diagnosis", "Notes"}, driver.prompts); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_RepromptsInvalidAnswers(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"", "120/80", "abc", "10", "60"},
		confirm:   []bool{false},
		selectIdx: []int{0},
		textAreas: []string{""},
	}
	got := renderWith(t, New(WithPromptDriver(driver)), model.Document{"notes": "keep"})

	if got["notes"] != "keep" {
		t.Fatalf("blank optional answer should keep the stored value, got %#v", got["notes"])
	}
	vitals, _ := got["vitals"].(map[string]any)
	if vitals["pulse"] != float64(60) {
		t.Fatalf("unexpected pulse %#v", vitals["pulse"])
	}
	if len(driver.infoMessages) != 3 {
		t.Fatalf("expected three validation messages, got %v", driver.infoMessages)
	}
	if !strings.Contains(driver.infoMessages[2], "min 20") {
		t.Fatalf("unexpected message %q", driver.infoMessages[2])
	}
}

func TestRender_RejectsNonFiniteNumbers(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"120/80", "NaN", "Inf", "72"},
		confirm:   []bool{false},
		selectIdx: []int{0},
		textAreas: []string{""},
	}
	got := renderWith(t, New(WithPromptDriver(driver)), nil)

	vitals, _ := got["vitals"].(map[string]any)
	if vitals["pulse"] != float64(72) {
		t.Fatalf("unexpected pulse %#v", vitals["pulse"])
	}
	if len(driver.infoMessages) != 2 || !strings.Contains(driver.infoMessages[0], "not a number") {
		t.Fatalf("expected two not-a-number messages, got %v", driver.infoMessages)
	}
}

func TestRender_ValidatorRepromptsFieldsWithErrors(t *testing.T) {
	layout := model.Layout{Fields: []model.Field{
		{ID: "code", Type: model.FieldTypeText, Label: "Code"},
		{ID: "other", Type: model.FieldTypeText, Label: "Other"},
	}}
	rejectOnce := validation.ValidatorFunc(func(_ model.Layout, doc model.Document) []model.Finding {
		if doc["code"] == "bad" {
			return []model.Finding{
				{Field: "code", Message: "Unknown code", Severity: model.SeverityError},
				{Field: "other", Message: "Looks odd", Severity: model.SeverityWarning},
			}
		}
		return nil
	})
	driver := &stubDriver{inputs: []string{"bad", "x", "good"}}
	r := New(WithPromptDriver(driver), WithValidator(rejectOnce), WithOutputFormat(OutputFormatPrettyText))

	out, err := r.Render(context.Background(), render.Build(layout, nil, nil, nil), render.RenderOptions{Layout: layout})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got, want := string(out), "code=good\nother=x\n"; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
	if diff := cmp.Diff([]string{"Code", "Other", "Code"}, driver.prompts); diff != "" {
		t.Fatalf("prompt mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"! Code: Unknown code"}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_ValidatorNeedsLayout(t *testing.T) {
	r := New(WithPromptDriver(&stubDriver{}), WithValidator(validation.Default))
	_, err := r.Render(context.Background(), render.Plan{}, render.RenderOptions{})
	if !errors.Is(err, ErrNoLayout) {
		t.Fatalf("expected ErrNoLayout, got %v", err)
	}
}

func TestRender_FormOutputAndTransformer(t *testing.T) {
	layout := model.Layout{Fields: []model.Field{{ID: "n", Type: model.FieldTypeText, DataSource: "a.b"}}}
	driver := &stubDriver{inputs: []string{"x y"}}
	r := New(
		WithPromptDriver(driver),
		WithOutputFormat(ParseOutputFormat("form")),
		WithSubmitTransformer(func(doc model.Document) (model.Document, error) {
			return render.ApplyEdit(doc, model.Field{ID: "stamp"}, "1"), nil
		}),
	)
	if r.ContentType() != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}

	out, err := r.Render(context.Background(), render.Build(layout, nil, nil, nil), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got, want := string(out), "a.b=x+y&stamp=1"; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestRender_DriverErrorStops(t *testing.T) {
	layout := model.Layout{Fields: []model.Field{{ID: "n"}}}
	_, err := New(WithPromptDriver(&stubDriver{})).Render(context.Background(), render.Build(layout, nil, nil, nil), render.RenderOptions{})
	if err == nil {
		t.Fatalf("expected driver error")
	}
}

func TestRender_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(WithPromptDriver(&stubDriver{})).Render(ctx, render.Plan{}, render.RenderOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
