package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

// BillingPolicy holds workshop invoicing rules that change without a deploy
type BillingPolicy struct {
	Invoice InvoicePolicy `toml:"invoice"`
	HSN     HSNPolicy     `toml:"hsn"`
	MGFleet MGFleetPolicy `toml:"mg_fleet"`
}

// InvoicePolicy controls invoice numbering
type InvoicePolicy struct {
	Prefix            string `toml:"prefix"`
	MaxNumberAttempts int    `toml:"max_number_attempts"`
	DefaultGSTRate    string `toml:"default_gst_rate"`
}

// HSNPolicy contains fallback HSN/SAC codes per item type
type HSNPolicy struct {
	Labor string `toml:"labor"`
	Part  string `toml:"part"`
}

// MGFleetPolicy contains scheduling for the monthly fleet run
type MGFleetPolicy struct {
	RunDay  int `toml:"run_day"`
	RunHour int `toml:"run_hour"`
}

// DefaultBillingPolicy is used when no policy file is configured
func DefaultBillingPolicy() *BillingPolicy {
	return &BillingPolicy{
		Invoice: InvoicePolicy{
			Prefix:            "EKA",
			MaxNumberAttempts: 5,
			DefaultGSTRate:    "18",
		},
		HSN: HSNPolicy{
			Labor: "998714",
			Part:  "8708",
		},
		MGFleet: MGFleetPolicy{
			RunDay:  1,
			RunHour: 2,
		},
	}
}

// LoadBillingPolicy loads the policy from a TOML file.
// Keys missing from the file keep their defaults.
func LoadBillingPolicy(filename string) (*BillingPolicy, error) {
	policy := DefaultBillingPolicy()
	if filename == "" {
		return policy, nil
	}
	if _, err := toml.DecodeFile(filename, policy); err != nil {
		return nil, fmt.Errorf("failed to load billing policy: %w", err)
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return policy, nil
}

// DecodeBillingPolicy parses policy TOML held in memory
func DecodeBillingPolicy(data string) (*BillingPolicy, error) {
	policy := DefaultBillingPolicy()
	if _, err := toml.Decode(data, policy); err != nil {
		return nil, fmt.Errorf("failed to parse billing policy: %w", err)
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return policy, nil
}

func (p *BillingPolicy) Validate() error {
	if p.Invoice.Prefix == "" {
		return fmt.Errorf("invoice.prefix is required")
	}
	if p.Invoice.MaxNumberAttempts < 1 {
		return fmt.Errorf("invoice.max_number_attempts must be at least 1")
	}
	rate, err := decimal.NewFromString(p.Invoice.DefaultGSTRate)
	if err != nil || rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("invoice.default_gst_rate must be a number between 0 and 100")
	}
	if p.MGFleet.RunDay < 1 || p.MGFleet.RunDay > 28 {
		return fmt.Errorf("mg_fleet.run_day must be between 1 and 28")
	}
	if p.MGFleet.RunHour < 0 || p.MGFleet.RunHour > 23 {
		return fmt.Errorf("mg_fleet.run_hour must be between 0 and 23")
	}
	return nil
}

// DefaultGSTRate returns the validated default rate
func (p *BillingPolicy) DefaultGSTRate() decimal.Decimal {
	return decimal.RequireFromString(p.Invoice.DefaultGSTRate)
}
