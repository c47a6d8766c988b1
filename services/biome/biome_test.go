package biome

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// farTile is outside any reasonable origin bias radius, so classification
// there sees the raw sample triple.
const farTile = 10000

func TestClassifier_Classify_RuleOrder(t *testing.T) {
	c := NewClassifier(DefaultThresholds(), 0)

	tests := []struct {
		name        string
		elevation   float64
		temperature float64
		moisture    float64
		expected    Biome
	}{
		{"high and hot is volcanic", 0.8, 0.9, 0.0, Volcanic},
		{"high and mild is mountains", 0.8, 0.0, 0.0, Mountains},
		{"high elevation beats water moisture", 0.8, 0.0, 0.9, Mountains},
		{"deep low is water", -0.8, 0.0, 0.0, Water},
		{"water beats tundra temperature", -0.8, -0.9, 0.0, Water},
		{"cold lowland is tundra", 0.0, -0.7, 0.0, Tundra},
		{"tundra beats swamp moisture", 0.0, -0.7, 0.9, Tundra},
		{"hot and dry is desert", 0.0, 0.7, -0.5, Desert},
		{"hot but wet is not desert", 0.0, 0.7, 0.0, Plains},
		{"waterlogged is swamp", 0.0, 0.0, 0.8, Swamp},
		{"moderately wet is forest", 0.0, 0.0, 0.4, Forest},
		{"everything mild is plains", 0.0, 0.0, 0.0, Plains},
		{"dry and mild is plains", 0.0, 0.0, -0.5, Plains},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.elevation, tt.temperature, tt.moisture, farTile, farTile)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestClassifier_Classify_BoundaryValues(t *testing.T) {
	// Comparisons are strict: a value exactly at a threshold falls through
	// to the lower-priority rules.
	th := DefaultThresholds()
	c := NewClassifier(th, 0)

	assert.NotEqual(t, Mountains, c.Classify(th.MountainElevation, 0, 0, farTile, farTile))
	assert.NotEqual(t, Water, c.Classify(th.WaterElevation, 0, 0, farTile, farTile))
	assert.NotEqual(t, Tundra, c.Classify(0, th.TundraTemp, 0, farTile, farTile))
	assert.NotEqual(t, Swamp, c.Classify(0, 0, th.SwampMoisture, farTile, farTile))
	assert.Equal(t, Plains, c.Classify(0, 0, th.ForestMoisture, farTile, farTile))
}

func TestClassifier_Classify_Pure(t *testing.T) {
	c := NewClassifier(DefaultThresholds(), 48)

	first := c.Classify(0.3, -0.2, 0.5, 10, 10)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, c.Classify(0.3, -0.2, 0.5, 10, 10))
	}
}

func TestClassifier_OriginBias(t *testing.T) {
	c := NewClassifier(DefaultThresholds(), 48)

	t.Run("origin is never deep water", func(t *testing.T) {
		// A sample that would classify as water far away is pulled benign
		// near the origin.
		far := c.Classify(-0.7, 0.0, 0.0, farTile, farTile)
		near := c.Classify(-0.7, 0.0, 0.0, 0, 0)
		assert.Equal(t, Water, far)
		assert.NotEqual(t, Water, near)
	})

	t.Run("origin is never tundra", func(t *testing.T) {
		far := c.Classify(0.0, -0.8, 0.0, farTile, farTile)
		near := c.Classify(0.0, -0.8, 0.0, 2, 2)
		assert.Equal(t, Tundra, far)
		assert.NotEqual(t, Tundra, near)
	})

	t.Run("bias fades with distance", func(t *testing.T) {
		// Just outside the radius the raw classification applies again.
		outside := c.Classify(0.0, -0.8, 0.0, 50, 0)
		assert.Equal(t, Tundra, outside)
	})

	t.Run("zero radius disables bias", func(t *testing.T) {
		unbiased := NewClassifier(DefaultThresholds(), 0)
		assert.Equal(t, Water, unbiased.Classify(-0.7, 0.0, 0.0, 0, 0))
	})
}

func TestBiome_String(t *testing.T) {
	for _, b := range All() {
		assert.NotEqual(t, "unknown", b.String())
	}
	assert.Equal(t, "plains", Plains.String())
	assert.Equal(t, "volcanic", Volcanic.String())
}
