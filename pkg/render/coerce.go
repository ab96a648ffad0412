package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formengine/pkg/model"
)

// Coercer converts a raw widget value into the value stored in the document
// for one field type.
type Coercer interface {
	Coerce(raw any) any
}

// CoercerFunc adapts a function into a Coercer.
type CoercerFunc func(raw any) any

// Coerce delegates to the underlying function.
func (fn CoercerFunc) Coerce(raw any) any {
	return fn(raw)
}

var coercers = map[model.FieldType]Coercer{
	model.FieldTypeText:     CoercerFunc(coerceString),
	model.FieldTypeTextarea: CoercerFunc(coerceString),
	model.FieldTypeDate:     CoercerFunc(coerceString),
	model.FieldTypeSelect:   CoercerFunc(coerceString),
	model.FieldTypeBoolean:  CoercerFunc(coerceBool),
	model.FieldTypeNumber:   CoercerFunc(coerceNumber),
	model.FieldTypeOther:    CoercerFunc(passthrough),
}

// CoercerFor returns the coercer registered for the field type. Unknown types
// pass values through unchanged.
func CoercerFor(fieldType model.FieldType) Coercer {
	if c, ok := coercers[model.ParseFieldType(string(fieldType))]; ok {
		return c
	}
	return CoercerFunc(passthrough)
}

// Coerce converts raw according to the field's type: strings for text-like
// fields, booleans for boolean fields and float64 for number fields, where
// anything unparsable or non-finite becomes 0.
func Coerce(field model.Field, raw any) any {
	return CoercerFor(field.Type).Coerce(raw)
}

func passthrough(raw any) any {
	return raw
}

func coerceString(raw any) any {
	switch v := raw.(type) {
	case string:
		return v
	case nil:
		return ""
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func coerceBool(raw any) any {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && parsed
	default:
		return false
	}
}

func coerceNumber(raw any) any {
	if n, ok := model.ParseNumber(raw); ok {
		return n
	}
	return float64(0)
}
