package noise

import (
	"github.com/aquilax/go-perlin"
)

// Field selects one of the scalar fields the generator produces. Each field
// samples an independent noise lattice at its own frequency scale.
type Field int

const (
	Elevation Field = iota
	Temperature
	Moisture
	// Feature is sampled at a coarser effective frequency by the feature
	// placer to make structures cluster instead of scattering uniformly.
	Feature

	fieldCount
)

// String returns the field name for logging.
func (f Field) String() string {
	switch f {
	case Elevation:
		return "elevation"
	case Temperature:
		return "temperature"
	case Moisture:
		return "moisture"
	case Feature:
		return "feature"
	default:
		return "unknown"
	}
}

// Scales holds the frequency scale per field, in tiles per noise unit.
// A larger scale means a longer wavelength. Elevation must vary more slowly
// than temperature and moisture to avoid noisy micro-biomes.
type Scales struct {
	Elevation   float64
	Temperature float64
	Moisture    float64
	Feature     float64
}

// DefaultScales returns the default world tuning. Elevation gets the
// longest wavelength so landmasses stay coherent.
func DefaultScales() Scales {
	return Scales{
		Elevation:   75.0,
		Temperature: 50.0,
		Moisture:    60.0,
		Feature:     25.0,
	}
}

func (s Scales) forField(f Field) float64 {
	switch f {
	case Elevation:
		return s.Elevation
	case Temperature:
		return s.Temperature
	case Moisture:
		return s.Moisture
	case Feature:
		return s.Feature
	default:
		return s.Elevation
	}
}

// GeneratorInterface defines the interface for noise field sampling.
// This enables dependency injection and makes services easily testable.
type GeneratorInterface interface {
	Sample(field Field, worldX, worldY int) float64
	SampleScaled(field Field, worldX, worldY int, scale float64) float64
	GetSeed() int64
}

// Generator implements GeneratorInterface using Perlin noise. Output is a
// pure function of (seed, field, worldX, worldY): the generator holds no
// mutable state, so two generators built from the same seed agree everywhere.
type Generator struct {
	fields    [fieldCount]*perlin.Perlin
	scales    Scales
	chunkSize int
	seed      int64
}

const (
	// edgeMargin is how many tiles from a chunk edge the seam blend applies.
	edgeMargin = 2
	// edgeBlend weights the base sample against the neighborhood mean.
	edgeBlend = 0.6
	// edgeOffset is the sub-tile offset of the 3x3 neighborhood samples.
	edgeOffset = 0.3
)

// NewGenerator creates a noise generator for the given world seed. Each field
// gets its own lattice seeded from the world seed plus a field offset, so the
// elevation, temperature, moisture and feature fields are independent.
func NewGenerator(seed int64, scales Scales, chunkSize int) *Generator {
	g := &Generator{
		scales:    scales,
		chunkSize: chunkSize,
		seed:      seed,
	}
	for f := Field(0); f < fieldCount; f++ {
		// alpha=2, beta=2, n=3 gives good terrain-like noise
		g.fields[f] = perlin.NewPerlin(2, 2, 3, seed+int64(f)*7919)
	}
	return g
}

// Sample returns the field value at a world tile, in [-1, 1], at the field's
// configured frequency scale.
func (g *Generator) Sample(field Field, worldX, worldY int) float64 {
	return g.SampleScaled(field, worldX, worldY, g.scales.forField(field))
}

// SampleScaled samples a field at an explicit frequency scale. Tiles within
// edgeMargin of a chunk boundary blend the base sample with the mean of a
// 3x3 ring of sub-tile offset samples, which removes visible seams between
// adjacent chunks. The blend depends only on the tile's position within its
// chunk, so the result stays a pure function of (seed, field, x, y).
func (g *Generator) SampleScaled(field Field, worldX, worldY int, scale float64) float64 {
	p := g.fields[field]
	fx := float64(worldX) / scale
	fy := float64(worldY) / scale
	value := p.Noise2D(fx, fy)

	if g.nearChunkEdge(worldX, worldY) {
		var sum float64
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				sum += p.Noise2D(
					(float64(worldX)+float64(dx)*edgeOffset)/scale,
					(float64(worldY)+float64(dy)*edgeOffset)/scale,
				)
			}
		}
		value = value*edgeBlend + (sum/9.0)*(1.0-edgeBlend)
	}

	// Octave summation can slightly overshoot the unit interval.
	return clamp(value, -1.0, 1.0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// GetSeed returns the world seed this generator was built from.
func (g *Generator) GetSeed() int64 {
	return g.seed
}

func (g *Generator) nearChunkEdge(worldX, worldY int) bool {
	lx := mod(worldX, g.chunkSize)
	ly := mod(worldY, g.chunkSize)
	return lx < edgeMargin || lx >= g.chunkSize-edgeMargin ||
		ly < edgeMargin || ly >= g.chunkSize-edgeMargin
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
