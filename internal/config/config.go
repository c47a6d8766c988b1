package config

import (
	"os"
	"strconv"
)

// Config carries the tunable world engine parameters. Numeric thresholds and
// densities are balance knobs, so they are loaded from the environment with
// defaults matching the original game tuning rather than hard-coded at the
// point of use.
type Config struct {
	World   WorldConfig
	Spawn   SpawnConfig
	Border  BorderConfig
	Logging LoggingConfig
}

type WorldConfig struct {
	// ChunkSize is the side length of a chunk in tiles.
	ChunkSize int
	// TileSize is the side length of a tile in pixels, used for collision
	// geometry handed to the physics consumer.
	TileSize int
	// Width and Height are the finite world bounds in tiles, corner-anchored
	// at (0, 0).
	Width  int
	Height int
	// ViewDistance is the Chebyshev radius, in chunks, kept loaded around
	// the player. HysteresisMargin widens the eviction radius so a player
	// oscillating near a chunk boundary does not thrash load/evict.
	ViewDistance     int
	HysteresisMargin int
	// OriginBiasRadius is the radius, in tiles, of the benign-biome pull
	// around the world origin.
	OriginBiasRadius int
}

type SpawnConfig struct {
	// Count is how many spawn points world initialization asks for.
	Count int
	// MaxAttempts bounds candidate sampling before the origin fallback.
	MaxAttempts int
	// MinSeparation is the minimum pairwise distance between accepted spawn
	// points, in tiles.
	MinSeparation float64
	// MaxRadius caps the expanding candidate search radius, in tiles.
	MaxRadius int
}

type BorderConfig struct {
	// Depth is how many tiles from each world edge belong to the forest ring.
	Depth int
	// TreeProbability is the Bernoulli occupancy probability per border tile.
	TreeProbability float64
}

type LoggingConfig struct {
	Level string
}

// Load builds a Config from the environment, falling back to defaults.
func Load() *Config {
	return &Config{
		World: WorldConfig{
			ChunkSize:        getEnvInt("WORLD_CHUNK_SIZE", 16),
			TileSize:         getEnvInt("WORLD_TILE_SIZE", 32),
			Width:            getEnvInt("WORLD_WIDTH", 64),
			Height:           getEnvInt("WORLD_HEIGHT", 64),
			ViewDistance:     getEnvInt("WORLD_VIEW_DISTANCE", 2),
			HysteresisMargin: getEnvInt("WORLD_HYSTERESIS_MARGIN", 1),
			OriginBiasRadius: getEnvInt("WORLD_ORIGIN_BIAS_RADIUS", 48),
		},
		Spawn: SpawnConfig{
			Count:         getEnvInt("SPAWN_COUNT", 4),
			MaxAttempts:   getEnvInt("SPAWN_MAX_ATTEMPTS", 100),
			MinSeparation: getEnvFloat("SPAWN_MIN_SEPARATION", 24.0),
			MaxRadius:     getEnvInt("SPAWN_MAX_RADIUS", 40),
		},
		Border: BorderConfig{
			Depth:           getEnvInt("BORDER_DEPTH", 3),
			TreeProbability: getEnvFloat("BORDER_TREE_PROBABILITY", 0.8),
		},
		Logging: LoggingConfig{
			Level: getEnvStr("LOG_LEVEL", "info"),
		},
	}
}

func getEnvStr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
