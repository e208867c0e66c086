package cli

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/bilanz/internal/domain/validation"
)

// periodsKey is the top level key holding the period list.
const periodsKey = "periods"

// LoadPeriods reads the raw periods from a YAML or JSON file of the form
//
//	periods:
//	  - {label: "2023", AV: 100, UV: 50, EK: 80, LFK: 30, KFK: 40}
//	  - {label: "2024", AV: 120, UV: 60, EK: 90, LFK: 30, KFK: 30}
//
// Values are checked later by the validator; only the shape is checked here.
func LoadPeriods(path string) ([]validation.RawPeriod, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no input file given", ErrInput)
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInput, path, err)
	}
	list, ok := k.Get(periodsKey).([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s: %q must be a list", ErrInput, path, periodsKey)
	}
	out := make([]validation.RawPeriod, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: %s: period %d must be a mapping", ErrInput, path, i+1)
		}
		out = append(out, validation.RawPeriod(m))
	}
	return out, nil
}
