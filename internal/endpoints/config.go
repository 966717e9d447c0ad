package endpoints

import (
	"github.com/erraggy/restparams/internal/envutil"
	"github.com/erraggy/restparams/params"
)

// Config holds the validation settings shared by every endpoint.
type Config struct {
	// MaxBodySize limits request bodies (RESTPARAMS_MAX_BODY_SIZE).
	MaxBodySize int64
	// StrictBool parses bool params with strconv.ParseBool (RESTPARAMS_STRICT_BOOL).
	StrictBool bool
}

// ConfigFromEnv reads Config from RESTPARAMS_* environment variables.
func ConfigFromEnv() Config {
	return Config{
		MaxBodySize: envutil.Int64("RESTPARAMS_MAX_BODY_SIZE", params.DefaultMaxBodySize),
		StrictBool:  envutil.Bool("RESTPARAMS_STRICT_BOOL", false),
	}
}
