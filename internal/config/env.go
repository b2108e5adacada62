package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CHRONOGLOBE_"

// applyEnv applies CHRONOGLOBE_* environment overrides. Unset variables
// leave the config untouched.
func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"BASEMAP":    &cfg.Globe.Basemap,
		"FONT":       &cfg.Labels.Font,
		"ASSET_DIR":  &cfg.Data.AssetDir,
		"REMOTE_URL": &cfg.Data.RemoteURL,
		"DATASET":    &cfg.Data.Initial,
		"LOG_LEVEL":  &cfg.Logging.Level,
		"LOG_FILE":   &cfg.Logging.LogFile,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"WIDTH":       &cfg.Graphics.Width,
		"HEIGHT":      &cfg.Graphics.Height,
		"RAY_DENSITY": &cfg.Labels.RayDensity,
	}
	for key, dst := range ints {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
	}

	if v, ok := lookup("FULLSCREEN"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sFULLSCREEN: %w", EnvPrefix, err)
		}
		cfg.Graphics.Fullscreen = b
	}
	if v, ok := lookup("FETCH_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sFETCH_TIMEOUT: %w", EnvPrefix, err)
		}
		cfg.Data.FetchTimeout = d
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
