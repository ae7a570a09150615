package model

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

type FieldType string

const (
	FieldTypeText    FieldType = "text"
	FieldTypeNumber  FieldType = "number"
	FieldTypeUUID    FieldType = "uuid"
	FieldTypeBoolean FieldType = "boolean"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeUUID, FieldTypeBoolean:
		return true
	}
	return false
}

// FieldValue is a dynamic attribute value tagged with its type. Construct it with Text,
// Number, UUID or Bool; the zero value is an empty text value.
type FieldValue struct {
	kind FieldType
	text string
	num  float64
	b    bool
}

func Text(s string) FieldValue { return FieldValue{kind: FieldTypeText, text: s} }

func Number(n float64) FieldValue { return FieldValue{kind: FieldTypeNumber, num: n} }

func UUID(id string) FieldValue { return FieldValue{kind: FieldTypeUUID, text: id} }

func Bool(b bool) FieldValue { return FieldValue{kind: FieldTypeBoolean, b: b} }

func (v FieldValue) Kind() FieldType {
	if v.kind == "" {
		return FieldTypeText
	}
	return v.kind
}

func (v FieldValue) Number() (float64, error) {
	if v.Kind() != FieldTypeNumber {
		return 0, fmt.Errorf("field is %s, not number", v.Kind())
	}
	return v.num, nil
}

func (v FieldValue) Bool() (bool, error) {
	if v.Kind() != FieldTypeBoolean {
		return false, fmt.Errorf("field is %s, not boolean", v.Kind())
	}
	return v.b, nil
}

// String renders the value in its storage form.
func (v FieldValue) String() string {
	switch v.Kind() {
	case FieldTypeNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case FieldTypeBoolean:
		return strconv.FormatBool(v.b)
	default:
		return v.text
	}
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch v.Kind() {
	case FieldTypeNumber:
		return json.Marshal(v.num)
	case FieldTypeBoolean:
		return json.Marshal(v.b)
	default:
		return json.Marshal(v.text)
	}
}

// ParseFieldValue decodes the stored text of an attribute. An empty number reads as zero.
func ParseFieldValue(kind FieldType, raw string) (FieldValue, error) {
	switch kind {
	case FieldTypeText, "":
		return Text(raw), nil
	case FieldTypeNumber:
		if raw == "" {
			return Number(0), nil
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return FieldValue{}, fmt.Errorf("parse number %q: %w", raw, err)
		}
		return Number(n), nil
	case FieldTypeUUID:
		if raw == "" {
			return UUID(""), nil
		}
		if _, err := uuid.Parse(raw); err != nil {
			return FieldValue{}, fmt.Errorf("parse uuid %q: %w", raw, err)
		}
		return UUID(raw), nil
	case FieldTypeBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return FieldValue{}, fmt.Errorf("parse boolean %q: %w", raw, err)
		}
		return Bool(b), nil
	}
	return FieldValue{}, fmt.Errorf("unknown field type %q", kind)
}

// ParseJSONFieldValue builds a typed value from a decoded JSON value, as received by the
// HTTP layer. The declared kind wins over the JSON type.
func ParseJSONFieldValue(kind FieldType, raw any) (FieldValue, error) {
	switch val := raw.(type) {
	case string:
		return ParseFieldValue(kind, val)
	case float64:
		if kind != FieldTypeNumber {
			return FieldValue{}, fmt.Errorf("number given for %s field", kind)
		}
		return Number(val), nil
	case bool:
		if kind != FieldTypeBoolean {
			return FieldValue{}, fmt.Errorf("boolean given for %s field", kind)
		}
		return Bool(val), nil
	case nil:
		return ParseFieldValue(kind, "")
	}
	return FieldValue{}, fmt.Errorf("unsupported value %T", raw)
}
