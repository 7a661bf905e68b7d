package bridge

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joeshaw/envdecode"

	"github.com/pubky/pubky-ffi-go/pkg/pubky"
	"github.com/pubky/pubky-ffi-go/pkg/pubky/pkarr"
)

// Config is read from PUBKY_FFI_* environment variables when the bridge
// state is first built.
type Config struct {
	MaxInflight    int64         `env:"PUBKY_FFI_MAX_INFLIGHT,default=64" validate:"min=1"`
	HTTPTimeout    time.Duration `env:"PUBKY_FFI_HTTP_TIMEOUT,default=30s" validate:"gt=0"`
	PublishTimeout time.Duration `env:"PUBKY_FFI_PUBLISH_TIMEOUT,default=30s" validate:"gt=0"`
	Relays         string        `env:"PUBKY_FFI_RELAYS"`
	TestnetRelay   string        `env:"PUBKY_FFI_TESTNET_RELAY,default=http://localhost:15411" validate:"url"`
	DebugHandles   bool          `env:"PUBKY_FFI_DEBUG_HANDLES,default=false"`
	LogLevel       string        `env:"PUBKY_FFI_LOG_LEVEL,default=warn" validate:"oneof=debug info warn error"`
	LogFormat      string        `env:"PUBKY_FFI_LOG_FORMAT,default=text" validate:"oneof=text json"`
}

var validate = validator.New()

// DefaultConfig is used when the environment is unusable.
func DefaultConfig() Config {
	return Config{
		MaxInflight:    64,
		HTTPTimeout:    pubky.DefaultHTTPTimeout,
		PublishTimeout: pubky.DefaultPublishTimeout,
		TestnetRelay:   pubky.DefaultTestnetRelay,
		LogLevel:       "warn",
		LogFormat:      "text",
	}
}

// LoadConfig decodes and validates the environment. On error the returned
// Config is DefaultConfig.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return DefaultConfig(), err
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if err := validate.Struct(cfg); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// RelayList splits Relays, defaulting to the public relays.
func (c Config) RelayList() []string {
	var out []string
	for _, r := range strings.Split(c.Relays, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), pkarr.DefaultRelays...)
	}
	return out
}
