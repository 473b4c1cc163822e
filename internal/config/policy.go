package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PolicyConfig carries the eligibility constants. All money values are in
// kobo (minor units); rates are fractions of 1.
type PolicyConfig struct {
	// InterestRate is applied to loan exposure by the facility policy.
	InterestRate float64 `mapstructure:"interestRate"`
	// SavingsRatio is the drawable share of a member's savings balance.
	SavingsRatio float64 `mapstructure:"savingsRatio"`
	// LoanMultiple scales savings into the base loan limit.
	LoanMultiple int64 `mapstructure:"loanMultiple"`
	// LoanFacility is added on top of the computed loan headroom.
	LoanFacility int64 `mapstructure:"loanFacility"`
	// LoanCap is the absolute ceiling on loan exposure.
	LoanCap int64 `mapstructure:"loanCap"`
	// SavingsFacility is the amount the facility policy leaves drawable on
	// savings while loans are outstanding.
	SavingsFacility int64 `mapstructure:"savingsFacility"`
	// MaxLineQty bounds a single order line quantity.
	MaxLineQty int64 `mapstructure:"maxLineQty"`
}

func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		InterestRate:    0.13,
		SavingsRatio:    0.5,
		LoanMultiple:    5,
		LoanFacility:    30_000_000,  // ₦300,000
		LoanCap:         100_000_000, // ₦1,000,000
		SavingsFacility: 0,
		MaxLineQty:      10_000,
	}
}

// PolicyConfigHolder exposes the active policy constants with hot reload.
type PolicyConfigHolder struct {
	current atomic.Value // holds PolicyConfig
}

func NewPolicyConfigHolder(cfg PolicyConfig) *PolicyConfigHolder {
	holder := &PolicyConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *PolicyConfigHolder) Get() PolicyConfig {
	return h.current.Load().(PolicyConfig)
}

// NewPolicyHolder reads policy.yml and keeps the holder updated on change.
func NewPolicyHolder() (*PolicyConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("policy")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/ajomart/config")
	v.AddConfigPath("/etc/ajomart")
	v.AddConfigPath(".")

	v.SetEnvPrefix("AJOMART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPolicyConfig()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		v.SetDefault("policy.interestRate", defaults.InterestRate)
		v.SetDefault("policy.savingsRatio", defaults.SavingsRatio)
		v.SetDefault("policy.loanMultiple", defaults.LoanMultiple)
		v.SetDefault("policy.loanFacility", defaults.LoanFacility)
		v.SetDefault("policy.loanCap", defaults.LoanCap)
		v.SetDefault("policy.savingsFacility", defaults.SavingsFacility)
		v.SetDefault("policy.maxLineQty", defaults.MaxLineQty)
	}

	var cfg PolicyConfig
	if err := v.UnmarshalKey("policy", &cfg); err != nil {
		return nil, err
	}
	if err := validatePolicyConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewPolicyConfigHolder(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PolicyConfig
		if err := v.UnmarshalKey("policy", &updated); err != nil {
			log.Printf("[policy-config] reload failed: %v", err)
			return
		}
		if err := validatePolicyConfig(updated); err != nil {
			log.Printf("[policy-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[policy-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func validatePolicyConfig(cfg PolicyConfig) error {
	if cfg.InterestRate < 0 || cfg.InterestRate >= 1 {
		return errors.New("policy.interestRate must be in [0, 1)")
	}
	if cfg.SavingsRatio <= 0 || cfg.SavingsRatio > 1 {
		return errors.New("policy.savingsRatio must be in (0, 1]")
	}
	if cfg.LoanMultiple <= 0 {
		return errors.New("policy.loanMultiple must be positive")
	}
	if cfg.LoanFacility < 0 || cfg.LoanCap <= 0 || cfg.SavingsFacility < 0 {
		return errors.New("policy money amounts must be non-negative")
	}
	if cfg.MaxLineQty <= 0 {
		return errors.New("policy.maxLineQty must be positive")
	}
	return nil
}
