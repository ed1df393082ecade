package config

import "os"

// Config carries the gateway's environment-driven settings.
type Config struct {
	// Port the gateway listens on.
	Port string
	// PitchAPIBase is the root of the external pitch API, e.g.
	// http://0.0.0.0:8001/api/video.
	PitchAPIBase string
	// DataDir holds the file-backed session store.
	DataDir string
	// SupabaseURL/SupabaseKey select the Supabase session store backend
	// when both are set; otherwise the file store is used.
	SupabaseURL string
	SupabaseKey string
}

// Load reads configuration from the environment with local-dev defaults.
func Load() *Config {
	return &Config{
		Port:         envOrDefault("PORT", "8080"),
		PitchAPIBase: envOrDefault("PITCH_API_URL", "http://0.0.0.0:8001/api/video"),
		DataDir:      envOrDefault("DATA_DIR", "./data"),
		SupabaseURL:  os.Getenv("SUPABASE_URL"),
		SupabaseKey:  os.Getenv("SUPABASE_SERVICE_KEY"),
	}
}

// UseSupabase reports whether the remote session store is configured.
func (c *Config) UseSupabase() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
