package units

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/noot-app/mealplan-scaler/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GramsPerUnit(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name     string
		ing      types.Ingredient
		expected float64
	}{
		{"grams", types.Ingredient{Unit: "g"}, 1},
		{"per 100g", types.Ingredient{Unit: "per_100g"}, 100},
		{"ml", types.Ingredient{Unit: "ml"}, 1},
		{"per ml", types.Ingredient{Unit: "per_ml"}, 1},
		{"tablespoon", types.Ingredient{Unit: "per_tbsp"}, 15},
		{"dutch tablespoon", types.Ingredient{Unit: "eetlepel"}, 15},
		{"teaspoon", types.Ingredient{Unit: "per_tsp"}, 5},
		{"dutch teaspoon", types.Ingredient{Unit: "theelepel"}, 5},
		{"cup", types.Ingredient{Unit: "per_cup"}, 240},
		{"per 30g", types.Ingredient{Unit: "per_30g"}, 30},
		{"mixed case and spaces", types.Ingredient{Unit: "  G "}, 1},
		{"piece with weight", types.Ingredient{Unit: "per_piece", UnitWeightG: 50}, 50},
		{"piece without weight", types.Ingredient{Unit: "stuk"}, DefaultGramsPerUnit},
		{"unknown with weight", types.Ingredient{Unit: "handful", UnitWeightG: 30}, 30},
		{"unknown without weight", types.Ingredient{Unit: "handful"}, DefaultGramsPerUnit},
		{"empty unit", types.Ingredient{}, DefaultGramsPerUnit},
		{"fixed unit ignores weight", types.Ingredient{Unit: "g", UnitWeightG: 50}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, r.GramsPerUnit(tt.ing))
		})
	}
}

func TestRegistry_IsDiscrete(t *testing.T) {
	r := NewRegistry()

	discrete := []types.UnitCode{"per_piece", "stuk", "stuks", "pieces", "plakje", "plakjes", "slice", "snee", "STUK"}
	for _, code := range discrete {
		assert.True(t, r.IsDiscrete(code), "expected %q to be discrete", code)
	}

	continuous := []types.UnitCode{"g", "ml", "per_100g", "per_tbsp", "eetlepel", "per_tsp", "per_cup", "per_30g", "bucket", ""}
	for _, code := range continuous {
		assert.False(t, r.IsDiscrete(code), "expected %q to be continuous", code)
	}
}

func TestRegistry_RoundAmount(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name     string
		unit     types.UnitCode
		raw      float64
		expected float64
	}{
		{"piece rounds to whole", "per_piece", 2.6, 3},
		{"piece rounds down", "stuk", 1.4, 1},
		{"grams whole", "g", 103.5, 104},
		{"grams down", "g", 98.79, 99},
		{"ml whole", "ml", 249.2, 249},
		{"per 100g whole", "per_100g", 1.6, 2},
		{"tablespoon half step", "per_tbsp", 2.26, 2.5},
		{"tablespoon half step down", "eetlepel", 2.2, 2},
		{"teaspoon half step", "per_tsp", 0.8, 1},
		{"cup tenth step", "per_cup", 1.26, 1.3},
		{"per 30g tenth step", "per_30g", 2.34, 2.3},
		{"unknown tenth step", "handful", 3.14159, 3.1},
		{"negative clamps", "g", -12, 0},
		{"zero stays zero", "per_cup", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.RoundAmount(types.Ingredient{Unit: tt.unit}, tt.raw)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	before := r.Codes()

	r.Register(Unit{Code: "Handje", GramsPerUnit: 25, Aliases: []types.UnitCode{"handjes"}})

	assert.Equal(t, before+2, r.Codes())
	assert.Equal(t, 25.0, r.GramsPerUnit(types.Ingredient{Unit: "handje"}))
	assert.Equal(t, 25.0, r.GramsPerUnit(types.Ingredient{Unit: "HANDJES"}))
	assert.False(t, r.IsDiscrete("handje"))
	// no step given for a continuous unit
	assert.InDelta(t, 1.2, r.RoundAmount(types.Ingredient{Unit: "handje"}, 1.234), 1e-9)

	r.Register(Unit{Code: "blik", Discrete: true})
	assert.True(t, r.IsDiscrete("blik"))
	assert.Equal(t, 3.0, r.RoundAmount(types.Ingredient{Unit: "blik"}, 2.5))
}

func TestLoadFile(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("yaml units extend the registry", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "units.yaml")
		content := `units:
  - code: handje
    grams_per_unit: 25
    step: 0.5
  - code: blik
    discrete: true
    aliases: [blikje, blikken]
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		r, err := NewRegistryFromFile(path, logger)
		require.NoError(t, err)

		assert.Equal(t, 25.0, r.GramsPerUnit(types.Ingredient{Unit: "handje"}))
		assert.Equal(t, 1.5, r.RoundAmount(types.Ingredient{Unit: "handje"}, 1.6))
		assert.True(t, r.IsDiscrete("blikje"))
		assert.True(t, r.IsDiscrete("blikken"))
		// built-ins are still there
		assert.Equal(t, 15.0, r.GramsPerUnit(types.Ingredient{Unit: "per_tbsp"}))
	})

	t.Run("json file overrides a built-in", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "units.json")
		content := `{"units": [{"code": "per_cup", "grams_per_unit": 250}]}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		r, err := NewRegistryFromFile(path, logger)
		require.NoError(t, err)
		assert.Equal(t, 250.0, r.GramsPerUnit(types.Ingredient{Unit: "per_cup"}))
	})

	t.Run("missing code is rejected", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "units.yaml")
		require.NoError(t, os.WriteFile(path, []byte("units:\n  - grams_per_unit: 10\n"), 0644))

		_, err := LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("empty path gives built-ins", func(t *testing.T) {
		r, err := NewRegistryFromFile("", logger)
		require.NoError(t, err)
		assert.Equal(t, NewRegistry().Codes(), r.Codes())
	})
}
