package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formengine/pkg/model"
	"github.com/goliatone/go-formengine/pkg/render"
)

func scenarioLayout() model.Layout {
	return model.Layout{
		Sections: []model.Section{
			{ID: "S1", Label: "Vitals"},
			{ID: "S2", Label: "Notes"},
		},
		Fields: []model.Field{
			{ID: "f1", SectionID: "S1", Type: model.FieldTypeText, DataSource: "vitals.bp"},
			{ID: "f2", Type: model.FieldTypeText},
			{ID: "f3", SectionID: "S2", Type: model.FieldTypeTextarea, DataSource: "notes"},
		},
	}
}

func TestBuild_Scenario(t *testing.T) {
	doc := model.Document{"vitals": map[string]any{"bp": "120/80"}}
	findings := []model.Finding{{Field: "notes", Message: "Required", Severity: model.SeverityError}}

	plan := render.Build(scenarioLayout(), doc, nil, findings)

	s1, ok := plan.Section("S1")
	if !ok {
		t.Fatalf("S1 missing")
	}
	if len(s1.Fields) != 1 || s1.Fields[0].Field.ID != "f1" {
		t.Fatalf("expected S1 to hold only f1, got %+v", s1.Fields)
	}
	if s1.Fields[0].Value != "120/80" {
		t.Fatalf("f1 value mismatch: %v", s1.Fields[0].Value)
	}
	if s1.Fields[0].HasError() {
		t.Fatalf("f1 should have no error")
	}

	s2, _ := plan.Section("S2")
	f3 := s2.Fields[0]
	if f3.Value != "" {
		t.Fatalf("f3 should fall back to empty string, got %#v", f3.Value)
	}
	if f3.Error == nil || f3.Error.Message != "Required" {
		t.Fatalf("f3 error mismatch: %+v", f3.Error)
	}

	if len(plan.Unassigned) != 1 || plan.Unassigned[0].Field.ID != "f2" || plan.Unassigned[0].Value != "" {
		t.Fatalf("unassigned mismatch: %+v", plan.Unassigned)
	}
	if len(plan.Unbound) != 0 {
		t.Fatalf("expected every finding to bind, got %+v", plan.Unbound)
	}
}

func TestBuild_SectionFieldWithoutDataSource(t *testing.T) {
	form := scenarioLayout()
	form.Fields[1].SectionID = "S1"

	plan := render.Build(form, model.Document{"vitals": map[string]any{"bp": "120/80"}}, nil, nil)

	s1, _ := plan.Section("S1")
	if diff := cmp.Diff([]string{"f1", "f2"}, planIDs(s1.Fields)); diff != "" {
		t.Fatalf("S1 fields mismatch (-want +got):\n%s", diff)
	}
	if s1.Fields[1].Value != "" {
		t.Fatalf("f2 should fall back to empty string, got %#v", s1.Fields[1].Value)
	}
	if len(plan.Unassigned) != 0 {
		t.Fatalf("expected no unassigned fields, got %+v", plan.Unassigned)
	}

	// Without a data source the field id is the path.
	byID := render.Build(form, model.Document{"f2": "taken at rest"}, nil, nil)
	if got, _ := byID.Field("f2"); got.Value != "taken at rest" {
		t.Fatalf("f2 should read its id path, got %#v", got.Value)
	}
}

func TestBuild_DefaultValueFallback(t *testing.T) {
	form := model.Layout{Fields: []model.Field{
		{ID: "fasting", Type: model.FieldTypeBoolean, DefaultValue: true},
		{ID: "pulse", Type: model.FieldTypeNumber, DefaultValue: 60},
	}}

	empty := render.Build(form, model.Document{}, nil, nil)
	if got, _ := empty.Field("fasting"); got.Value != true {
		t.Fatalf("expected default true, got %#v", got.Value)
	}

	// Stored zero values are real values, not absence.
	filled := render.Build(form, model.Document{"fasting": false, "pulse": 0}, nil, nil)
	if got, _ := filled.Field("fasting"); got.Value != false {
		t.Fatalf("expected stored false, got %#v", got.Value)
	}
	if got, _ := filled.Field("pulse"); got.Value != 0 {
		t.Fatalf("expected stored 0, got %#v", got.Value)
	}
}

func TestBuild_UnassignedInSectionsQuirk(t *testing.T) {
	plan := render.Build(scenarioLayout(), nil, nil, nil, render.WithUnassignedInSections())

	var got [][]string
	for _, section := range plan.Sections {
		got = append(got, planIDs(section.Fields))
	}
	want := [][]string{{"f1", "f2"}, {"f2", "f3"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("section fields mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"f2"}, planIDs(plan.Unassigned)); diff != "" {
		t.Fatalf("unassigned mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"f1", "f2", "f2", "f3", "f2"}, planIDs(plan.Fields())); diff != "" {
		t.Fatalf("flattened fields mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_SelectionAndIdempotence(t *testing.T) {
	doc := model.Document{"notes": "stable"}
	first := render.Build(scenarioLayout(), doc, []string{"S2"}, nil)
	second := render.Build(scenarioLayout(), doc, []string{"S2"}, nil)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("plans differ between identical calls (-first +second):\n%s", diff)
	}
	if len(first.Sections) != 1 || first.Sections[0].Section.ID != "S2" {
		t.Fatalf("expected only S2, got %+v", first.Sections)
	}
	if doc["notes"] != "stable" || len(doc) != 1 {
		t.Fatalf("document mutated by Build: %#v", doc)
	}
}

func TestBuild_EmptyLayout(t *testing.T) {
	plan := render.Build(model.Layout{}, nil, nil, nil)
	if plan.Sections == nil || plan.Unassigned == nil {
		t.Fatalf("expected empty, non-nil groups: %#v", plan)
	}
	if len(plan.Fields()) != 0 {
		t.Fatalf("expected no fields")
	}
}

func TestApplyEdit(t *testing.T) {
	got := render.ApplyEdit(model.Document{}, model.Field{ID: "c", DataSource: "a.b.c"}, 42)
	want := model.Document{"a": map[string]any{"b": map[string]any{"c": 42}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("apply edit mismatch (-want +got):\n%s", diff)
	}

	byID := render.ApplyEdit(nil, model.Field{ID: "notes"}, "x")
	if diff := cmp.Diff(model.Document{"notes": "x"}, byID); diff != "" {
		t.Fatalf("apply edit by id mismatch (-want +got):\n%s", diff)
	}
}

func TestEditField_CoercesByType(t *testing.T) {
	doc := render.EditField(nil, model.Field{ID: "pulse", Type: model.FieldTypeNumber, DataSource: "vitals.pulse"}, "72")
	doc = render.EditField(doc, model.Field{ID: "fasting", Type: model.FieldTypeBoolean}, "true")

	want := model.Document{
		"vitals":  map[string]any{"pulse": float64(72)},
		"fasting": true,
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Fatalf("edit mismatch (-want +got):\n%s", diff)
	}
}

func planIDs(entries []render.FieldPlan) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Field.ID)
	}
	return out
}

func TestApplySubmission(t *testing.T) {
	form := model.Layout{
		Sections: []model.Section{{ID: "vitals"}, {ID: "hidden"}},
		Fields: []model.Field{
			{ID: "pulse", SectionID: "vitals", Type: model.FieldTypeNumber, DataSource: "vitals.pulse"},
			{ID: "fasting", SectionID: "vitals", Type: model.FieldTypeBoolean},
			{ID: "notes", SectionID: "vitals", Type: model.FieldTypeTextarea},
			{ID: "secret", SectionID: "hidden", Type: model.FieldTypeBoolean},
		},
	}
	doc := model.Document{"fasting": true, "notes": "keep", "secret": true}
	plan := render.Build(form, doc, []string{"vitals"}, nil)

	got := render.ApplySubmission(doc, plan, map[string][]string{
		"vitals.pulse": {"60", "72"},
		"unknown":      {"x"},
	})
	want := model.Document{
		"vitals":  map[string]any{"pulse": float64(72)},
		"fasting": false,
		"notes":   "keep",
		"secret":  true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("submission mismatch (-want +got):\n%s", diff)
	}
	if doc["fasting"] != true {
		t.Fatalf("input document mutated")
	}
}
