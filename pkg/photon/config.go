package photon

import (
	"time"

	"github.com/code-payments/compressed-token-sdk/pkg/config"
	"github.com/code-payments/compressed-token-sdk/pkg/config/env"
	"github.com/code-payments/compressed-token-sdk/pkg/config/memory"
	"github.com/code-payments/compressed-token-sdk/pkg/config/wrapper"
)

const (
	envConfigPrefix = "PHOTON_"

	PageLimitConfigEnvName = envConfigPrefix + "PAGE_LIMIT"
	defaultPageLimit       = 1000

	RequestTimeoutConfigEnvName = envConfigPrefix + "REQUEST_TIMEOUT"
	defaultRequestTimeout       = 30 * time.Second

	// 0 disables client side rate limiting
	RequestsPerSecondConfigEnvName = envConfigPrefix + "REQUESTS_PER_SECOND"
	defaultRequestsPerSecond       = 0
)

type conf struct {
	pageLimit         config.Uint64
	requestTimeout    config.Duration
	requestsPerSecond config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			pageLimit:         env.NewUint64Config(PageLimitConfigEnvName, defaultPageLimit),
			requestTimeout:    env.NewDurationConfig(RequestTimeoutConfigEnvName, defaultRequestTimeout),
			requestsPerSecond: env.NewUint64Config(RequestsPerSecondConfigEnvName, defaultRequestsPerSecond),
		}
	}
}

type testOverrides struct {
	pageLimit         uint64
	requestTimeout    time.Duration
	requestsPerSecond uint64
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			pageLimit:         wrapper.NewUint64Config(memory.NewConfig(overrides.pageLimit), defaultPageLimit),
			requestTimeout:    wrapper.NewDurationConfig(memory.NewConfig(overrides.requestTimeout), defaultRequestTimeout),
			requestsPerSecond: wrapper.NewUint64Config(memory.NewConfig(overrides.requestsPerSecond), defaultRequestsPerSecond),
		}
	}
}
