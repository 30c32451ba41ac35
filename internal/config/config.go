package config

import (
	"os"
	"strconv"
)

type Config struct {
	Detector DetectorConfig
}

type DetectorConfig struct {
	URL            string // defaults to http://localhost:9517
	TimeoutSeconds int    // per-request timeout, defaults to 30
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Detector: DetectorConfig{
			URL:            os.Getenv("DETECTOR_URL"),
			TimeoutSeconds: envInt("DETECTOR_TIMEOUT_SECONDS", 30),
		},
	}
}
