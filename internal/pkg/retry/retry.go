package retry

import (
	"time"

	pkghttp "github.com/futig/mitr-backend/pkg/http"
)

const (
	defaultAttempts = 3
	defaultDelay    = time.Second
	defaultMaxDelay = 8 * time.Second
)

// RetryConfig is the per-backend retry budget loaded from the environment.
type RetryConfig struct {
	Attempts uint          `env:"ATTEMPTS" envDefault:"3"`
	Delay    time.Duration `env:"DELAY" envDefault:"1s"`
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"8s"`
}

// Policy converts the config into the policy used by the HTTP connector.
// A budget below one attempt still makes one attempt.
func (rc RetryConfig) Policy() pkghttp.RetryPolicy {
	attempts := rc.Attempts
	if attempts < 1 {
		attempts = 1
	}

	return pkghttp.RetryPolicy{
		Attempts: attempts,
		Delay:    rc.Delay,
		MaxDelay: rc.MaxDelay,
	}
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
		MaxDelay: defaultMaxDelay,
	}
}
