package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formengine/pkg/model"
)

// Transformer mutates a layout after lookup and before the plan is built.
// Implementations can relabel fields, tighten requirements or hide options
// for a particular deployment.
type Transformer interface {
	Transform(ctx context.Context, layout *model.Layout) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, layout *model.Layout) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, layout *model.Layout) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, layout)
}

// PresetTransformer applies declarative patches loaded from JSON or YAML:
//
//	title: Cardiology intake
//	sections:
//	  followup: {label: Next steps, required: true}
//	fields:
//	  pulse: {label: Heart rate, helperText: Beats per minute}
//
// Patches naming unknown sections or fields fail the transform.
type PresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Title    string                  `json:"title" yaml:"title"`
	Sections map[string]sectionPatch `json:"sections" yaml:"sections"`
	Fields   map[string]fieldPatch   `json:"fields" yaml:"fields"`
}

type sectionPatch struct {
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description" yaml:"description"`
	Required    *bool  `json:"required" yaml:"required"`
}

type fieldPatch struct {
	Label        string `json:"label" yaml:"label"`
	Placeholder  string `json:"placeholder" yaml:"placeholder"`
	HelperText   string `json:"helperText" yaml:"helperText"`
	Widget       string `json:"widget" yaml:"widget"`
	Required     *bool  `json:"required" yaml:"required"`
	DefaultValue any    `json:"defaultValue" yaml:"defaultValue"`
}

// NewPresetTransformer parses a JSON preset.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	return parsePreset(data, func(data []byte, dest any) error { return json.Unmarshal(data, dest) })
}

// NewPresetTransformerFromFS loads a preset from fsys. Files ending in .json
// are decoded as JSON, everything else as YAML.
func NewPresetTransformerFromFS(fsys fs.FS, name string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", name, err)
	}
	if strings.EqualFold(path.Ext(name), ".json") {
		return NewPresetTransformer(data)
	}
	return parsePreset(data, yaml.Unmarshal)
}

func parsePreset(data []byte, decode func([]byte, any) error) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	if err := decode(data, &document); err != nil {
		return nil, fmt.Errorf("preset transformer: parse document: %w", err)
	}
	return &PresetTransformer{document: document}, nil
}

// Transform applies the patches onto layout. The layout's slices are copied
// so stored layouts stay untouched.
func (t *PresetTransformer) Transform(ctx context.Context, layout *model.Layout) error {
	if layout == nil {
		return errors.New("preset transformer: layout is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if t.document.Title != "" {
		layout.Title = t.document.Title
	}

	layout.Sections = append([]model.Section(nil), layout.Sections...)
	for id, patch := range t.document.Sections {
		idx := sectionIndex(layout.Sections, id)
		if idx < 0 {
			return fmt.Errorf("preset transformer: section %q not found", id)
		}
		applySectionPatch(&layout.Sections[idx], patch)
	}

	layout.Fields = append([]model.Field(nil), layout.Fields...)
	for id, patch := range t.document.Fields {
		idx := fieldIndex(layout.Fields, id)
		if idx < 0 {
			return fmt.Errorf("preset transformer: field %q not found", id)
		}
		applyFieldPatch(&layout.Fields[idx], patch)
	}
	return nil
}

func applySectionPatch(section *model.Section, patch sectionPatch) {
	if patch.Label != "" {
		section.Label = patch.Label
	}
	if patch.Description != "" {
		section.Description = patch.Description
	}
	if patch.Required != nil {
		section.Required = *patch.Required
	}
}

func applyFieldPatch(field *model.Field, patch fieldPatch) {
	if patch.Label != "" {
		field.Label = patch.Label
	}
	if patch.Placeholder != "" {
		field.Placeholder = patch.Placeholder
	}
	if patch.HelperText != "" {
		field.HelperText = patch.HelperText
	}
	if patch.Widget != "" {
		field.Widget = patch.Widget
	}
	if patch.Required != nil {
		field.Required = *patch.Required
	}
	if patch.DefaultValue != nil {
		field.DefaultValue = patch.DefaultValue
	}
}

func sectionIndex(sections []model.Section, id string) int {
	for idx, section := range sections {
		if section.ID == id {
			return idx
		}
	}
	return -1
}

func fieldIndex(fields []model.Field, id string) int {
	for idx, field := range fields {
		if field.ID == id {
			return idx
		}
	}
	return -1
}
