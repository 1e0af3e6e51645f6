package session

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config carries the session's tunables. Zero values fall back to the
// defaults, so a partially-specified TOML file works.
type Config struct {
	// LikeCacheCapacity bounds the compiled LIKE pattern cache.
	LikeCacheCapacity int `toml:"like_cache_capacity"`
	// DefaultCollation is applied to string columns created without an
	// explicit COLLATE clause (empty means binary comparison).
	DefaultCollation string `toml:"default_collation"`
	// BatchRows bounds result batch size; 0 means a single batch per
	// query.
	BatchRows int `toml:"batch_rows"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		LikeCacheCapacity: 256,
		BatchRows:         1024,
	}
}

// LoadConfig reads a TOML config file, applying defaults for every key
// the file leaves out. An empty path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}
