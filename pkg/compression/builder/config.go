package builder

import (
	"github.com/code-payments/compressed-token-sdk/pkg/compression/selection"
	"github.com/code-payments/compressed-token-sdk/pkg/config"
	"github.com/code-payments/compressed-token-sdk/pkg/config/env"
	"github.com/code-payments/compressed-token-sdk/pkg/config/memory"
	"github.com/code-payments/compressed-token-sdk/pkg/config/wrapper"
)

const (
	envConfigPrefix = "COMPRESSED_TOKEN_BUILDER_"

	MaxInputsConfigEnvName = envConfigPrefix + "MAX_INPUTS"
	defaultMaxInputs       = selection.DefaultMaxInputs

	SelectionStrategyConfigEnvName = envConfigPrefix + "SELECTION_STRATEGY"
	defaultSelectionStrategy       = "smart"

	EnforceTransactionSizeConfigEnvName = envConfigPrefix + "ENFORCE_TRANSACTION_SIZE"
	defaultEnforceTransactionSize       = true

	ComputeUnitLimitConfigEnvName = envConfigPrefix + "COMPUTE_UNIT_LIMIT"
	defaultComputeUnitLimit       = 1_000_000

	// Micro-lamports per compute unit, 0 omits the instruction
	ComputeUnitPriceConfigEnvName = envConfigPrefix + "COMPUTE_UNIT_PRICE"
	defaultComputeUnitPrice       = 0
)

type conf struct {
	maxInputs              config.Uint64
	selectionStrategy      config.String
	enforceTransactionSize config.Bool
	computeUnitLimit       config.Uint64
	computeUnitPrice       config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			maxInputs:              env.NewUint64Config(MaxInputsConfigEnvName, defaultMaxInputs),
			selectionStrategy:      env.NewStringConfig(SelectionStrategyConfigEnvName, defaultSelectionStrategy),
			enforceTransactionSize: env.NewBoolConfig(EnforceTransactionSizeConfigEnvName, defaultEnforceTransactionSize),
			computeUnitLimit:       env.NewUint64Config(ComputeUnitLimitConfigEnvName, defaultComputeUnitLimit),
			computeUnitPrice:       env.NewUint64Config(ComputeUnitPriceConfigEnvName, defaultComputeUnitPrice),
		}
	}
}

type testOverrides struct {
	maxInputs              uint64
	selectionStrategy      string
	enforceTransactionSize bool
	computeUnitLimit       uint64
	computeUnitPrice       uint64
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			maxInputs:              wrapper.NewUint64Config(memory.NewConfig(overrides.maxInputs), defaultMaxInputs),
			selectionStrategy:      wrapper.NewStringConfig(memory.NewConfig(overrides.selectionStrategy), defaultSelectionStrategy),
			enforceTransactionSize: wrapper.NewBoolConfig(memory.NewConfig(overrides.enforceTransactionSize), defaultEnforceTransactionSize),
			computeUnitLimit:       wrapper.NewUint64Config(memory.NewConfig(overrides.computeUnitLimit), defaultComputeUnitLimit),
			computeUnitPrice:       wrapper.NewUint64Config(memory.NewConfig(overrides.computeUnitPrice), defaultComputeUnitPrice),
		}
	}
}
