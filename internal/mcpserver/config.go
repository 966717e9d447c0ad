package mcpserver

import (
	"time"

	"github.com/erraggy/restparams/internal/envutil"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// Declaration document cache. Only file and URL documents are cached.
	CacheEnabled       bool
	CacheMaxSize       int
	CacheFileTTL       time.Duration
	CacheURLTTL        time.Duration
	CacheSweepInterval time.Duration

	// Input limits.
	MaxInlineSize int64
	MaxRecords    int

	// AllowPrivateIPs disables the SSRF guard on declaration URLs.
	AllowPrivateIPs bool

	// StrictBool is the check_params default for strict_bool.
	StrictBool bool
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from RESTPARAMS_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		CacheEnabled:       envutil.Bool("RESTPARAMS_CACHE_ENABLED", true),
		CacheMaxSize:       envutil.Int("RESTPARAMS_CACHE_MAX_SIZE", 10),
		CacheFileTTL:       envutil.Duration("RESTPARAMS_CACHE_FILE_TTL", 15*time.Minute),
		CacheURLTTL:        envutil.Duration("RESTPARAMS_CACHE_URL_TTL", 5*time.Minute),
		CacheSweepInterval: envutil.Duration("RESTPARAMS_CACHE_SWEEP_INTERVAL", 60*time.Second),
		MaxInlineSize:      envutil.Int64("RESTPARAMS_MAX_INLINE_SIZE", 1<<20),
		MaxRecords:         envutil.Int("RESTPARAMS_MAX_RECORDS", 1000),
		AllowPrivateIPs:    envutil.Bool("RESTPARAMS_ALLOW_PRIVATE_IPS", false),
		StrictBool:         envutil.Bool("RESTPARAMS_STRICT_BOOL", false),
	}
}
