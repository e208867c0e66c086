// Package validation turns raw user input into balance sheet periods.
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/okian/bilanz/internal/domain/model"
)

// RawPeriod maps field keys (label, AV, UV, EK, LFK, KFK) to raw values
// as decoded from JSON, YAML or form input.
type RawPeriod map[string]any

// labelAlias is the column name used by the CSV export and the input form.
const labelAlias = "Jahr"

// Validate checks exactly model.PeriodCount raw periods and returns them as
// typed periods. The first offending value aborts validation.
func Validate(raw []RawPeriod) ([model.PeriodCount]model.Period, error) {
	var out [model.PeriodCount]model.Period
	if len(raw) != model.PeriodCount {
		return out, &model.ValidationError{
			Index:  len(raw),
			Field:  model.FieldLabel,
			Reason: fmt.Sprintf("expected %d periods, got %d", model.PeriodCount, len(raw)),
		}
	}

	seen := make(map[string]int, len(raw))
	for i, r := range raw {
		p, err := ValidateOne(i, r)
		if err != nil {
			return [model.PeriodCount]model.Period{}, err
		}
		if first, dup := seen[p.Label]; dup {
			return [model.PeriodCount]model.Period{}, &model.ValidationError{
				Index:  i,
				Period: p.Label,
				Field:  model.FieldLabel,
				Reason: fmt.Sprintf("label already used by period #%d", first+1),
			}
		}
		seen[p.Label] = i
		out[i] = p
	}
	return out, nil
}

// ValidateOne validates the period at position index. A blank label
// defaults to "Jahr <index+1>".
func ValidateOne(index int, raw RawPeriod) (model.Period, error) {
	label, err := parseLabel(index, raw)
	if err != nil {
		return model.Period{}, err
	}

	p := model.Period{Label: label}
	for _, f := range model.InputFields() {
		v, ok := raw[f.Key()]
		if !ok || v == nil {
			return model.Period{}, &model.ValidationError{Index: index, Period: label, Field: f, Reason: "missing"}
		}
		n, reason := toFloat(v)
		if reason != "" {
			return model.Period{}, &model.ValidationError{Index: index, Period: label, Field: f, Reason: reason}
		}
		setField(&p, f, n)
	}
	return p, nil
}

func parseLabel(index int, raw RawPeriod) (string, error) {
	v, ok := raw[model.FieldLabel.Key()]
	if !ok || v == nil {
		v = raw[labelAlias]
	}

	var label string
	switch t := v.(type) {
	case nil:
	case string:
		label = strings.TrimSpace(t)
	case fmt.Stringer:
		label = strings.TrimSpace(t.String())
	default:
		// Numeric years are common in YAML input (Jahr: 2023).
		if n, reason := toFloat(t); reason == "" {
			label = strconv.FormatFloat(n, 'f', -1, 64)
		} else {
			return "", &model.ValidationError{Index: index, Field: model.FieldLabel, Reason: "label must be text"}
		}
	}

	if label == "" {
		label = fmt.Sprintf("%s %d", labelAlias, index+1)
	}
	return label, nil
}

// toFloat converts a raw value. A non-empty reason means rejection.
func toFloat(v any) (float64, string) {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case float32:
		n = float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, fmt.Sprintf("not a number: %q", t.String())
		}
		n = f
	case string:
		f, reason := parseNumericString(t)
		if reason != "" {
			return 0, reason
		}
		n = f
	case bool:
		return 0, "not a number: bool"
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n = float64(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			n = float64(rv.Uint())
		case reflect.Float32, reflect.Float64:
			n = rv.Float()
		default:
			return 0, fmt.Sprintf("not a number: %T", v)
		}
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, "not a finite number"
	}
	return n, ""
}

func parseNumericString(s string) (float64, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, "missing"
	}
	// German form input: 1234,5
	if !strings.Contains(s, ".") && strings.Count(s, ",") == 1 {
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Sprintf("not a number: %q", s)
	}
	return f, ""
}

func setField(p *model.Period, f model.Field, v float64) {
	switch f {
	case model.FieldAV:
		p.AV = v
	case model.FieldUV:
		p.UV = v
	case model.FieldEK:
		p.EK = v
	case model.FieldLFK:
		p.LFK = v
	case model.FieldKFK:
		p.KFK = v
	}
}
