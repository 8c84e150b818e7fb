package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PricingPolicy captures the tunable pricing rules that operators may
// adjust without a redeploy: the flat tax rate and the day-count rules
// per duration type.
type PricingPolicy struct {
	TaxRate           float64 `mapstructure:"taxRate"`
	AnnualDays        int     `mapstructure:"annualDays"`
	MultiTripDays     int     `mapstructure:"multiTripDays"`
	SingleTripCapDays int     `mapstructure:"singleTripCapDays"`
	SingleTripMinDays int     `mapstructure:"singleTripMinDays"`
}

func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		TaxRate:           0.20,
		AnnualDays:        365,
		MultiTripDays:     45,
		SingleTripCapDays: 180,
		SingleTripMinDays: 7,
	}
}

// PricingPolicyHolder serves the current policy to pricing callers; the
// backing file is hot-reloaded so quotes pick up changes without restart.
// Already-created quotes are immutable and unaffected.
type PricingPolicyHolder struct {
	current atomic.Value // holds PricingPolicy
}

func NewPricingPolicyHolder() (*PricingPolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("pricing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/tripshield/config")
	v.AddConfigPath("/etc/tripshield")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TRIPSHIELD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &PricingPolicyHolder{}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		holder.current.Store(DefaultPricingPolicy())
		return holder, nil
	}

	var policy PricingPolicy
	if err := v.UnmarshalKey("pricing", &policy); err != nil {
		return nil, err
	}
	applyPolicyDefaults(&policy)
	if err := validatePricingPolicy(policy); err != nil {
		return nil, err
	}
	holder.current.Store(policy)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PricingPolicy
		if err := v.UnmarshalKey("pricing", &updated); err != nil {
			log.Printf("[pricing-config] reload failed: %v", err)
			return
		}
		applyPolicyDefaults(&updated)
		if err := validatePricingPolicy(updated); err != nil {
			log.Printf("[pricing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[pricing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *PricingPolicyHolder) Get() PricingPolicy {
	return h.current.Load().(PricingPolicy)
}

// NewStaticPricingPolicyHolder returns a holder pinned to one policy.
// Used by tests and by callers that do not want file watching.
func NewStaticPricingPolicyHolder(policy PricingPolicy) *PricingPolicyHolder {
	holder := &PricingPolicyHolder{}
	holder.current.Store(policy)
	return holder
}

func applyPolicyDefaults(policy *PricingPolicy) {
	defaults := DefaultPricingPolicy()
	if policy.TaxRate == 0 {
		policy.TaxRate = defaults.TaxRate
	}
	if policy.AnnualDays == 0 {
		policy.AnnualDays = defaults.AnnualDays
	}
	if policy.MultiTripDays == 0 {
		policy.MultiTripDays = defaults.MultiTripDays
	}
	if policy.SingleTripCapDays == 0 {
		policy.SingleTripCapDays = defaults.SingleTripCapDays
	}
	if policy.SingleTripMinDays == 0 {
		policy.SingleTripMinDays = defaults.SingleTripMinDays
	}
}

func validatePricingPolicy(policy PricingPolicy) error {
	if policy.TaxRate < 0 || policy.TaxRate >= 1 {
		return errors.New("pricing.taxRate must be in [0, 1)")
	}
	if policy.AnnualDays <= 0 || policy.MultiTripDays <= 0 {
		return errors.New("pricing day counts must be positive")
	}
	if policy.SingleTripCapDays < policy.SingleTripMinDays {
		return errors.New("pricing.singleTripCapDays below singleTripMinDays")
	}
	return nil
}
