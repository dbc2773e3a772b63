package units

import (
	"fmt"
	"log/slog"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type unitsFile struct {
	Units []Unit `mapstructure:"units"`
}

// LoadFile reads extra unit definitions from a YAML, JSON or TOML file:
//
//	units:
//	  - code: handje
//	    grams_per_unit: 25
//	    step: 0.5
//	  - code: blik
//	    discrete: true
//	    aliases: [blikje]
func LoadFile(path string) ([]Unit, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading units file: %w", err)
	}

	var f unitsFile
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.ErrorUnused = true
		config.WeaklyTypedInput = true
	})
	if err := v.Unmarshal(&f, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode units file, %w", err)
	}

	for i, u := range f.Units {
		if Normalize(u.Code) == "" {
			return nil, fmt.Errorf("unit #%d has no code", i+1)
		}
		if u.GramsPerUnit < 0 || u.Step < 0 {
			return nil, fmt.Errorf("unit %q has a negative weight or step", u.Code)
		}
	}
	return f.Units, nil
}

// NewRegistryFromFile returns the built-in registry extended with the units in path.
// An empty path yields the built-in registry.
func NewRegistryFromFile(path string, logger *slog.Logger) (*Registry, error) {
	r := NewRegistry()
	if path == "" {
		return r, nil
	}

	extra, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	for _, u := range extra {
		if _, exists := r.Lookup(u.Code); exists {
			logger.Warn("Overriding built-in unit", "unit", u.Code)
		}
		r.Register(u)
	}
	logger.Info("Loaded custom units", "path", path, "count", len(extra))
	return r, nil
}
