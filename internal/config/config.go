// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"

	"github.com/brfinance/finsim/pkg/constants"
	"github.com/brfinance/finsim/pkg/validation"
	"github.com/spf13/viper"
)

// DateTimeLayout is the format expected in config files and is also the
// output date format.
const DateTimeLayout = constants.DateTimeLayout

// Configuration holds all configuration for finsim.
type Configuration struct {
	Simulations []Simulation
	Logging     LoggingConfig `yaml:"logging,omitempty"`
	Output      OutputConfig  `yaml:"output,omitempty"`
	Indexes     IndexesConfig `yaml:"indexes,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// IndexesConfig holds settings for the external correction-index provider.
type IndexesConfig struct {
	BaseURL   string `yaml:"baseURL,omitempty"`
	RedisAddr string `yaml:"redisAddr,omitempty"` // empty = in-memory cache
}

// Simulation describes one named simulation: a loan or an investment.
type Simulation struct {
	Name       string
	Kind       string // loan, investment
	TermMonths int
	StartDate  string // YYYY-MM, optional
	Rate       RateConfig

	// Loan fields.
	Method          string // price, sac
	Principal       float64
	PeriodicFee     float64
	MonthlyExtra    float64
	CorrectionIndex string // named correction series, e.g. "tr"

	// Investment fields.
	InitialContribution float64
	MonthlyContribution float64
	ContributionTiming  string // start, end
	ProductType         string // CDB, LCI, LCA, ...
	IOF                 IOFConfig

	ExtraPayments []ExtraPayment
}

// RateConfig describes the nominal rate as quoted. Percent fields are in
// percent units.
type RateConfig struct {
	Kind    string // flat, cdi, ipca
	Period  string // annual, monthly (flat only)
	Percent float64

	PercentOfCDI float64
	CDIAnnual    float64

	IPCAAnnual float64
	Spread     float64
}

// IOFConfig configures the early-redemption friction applied to the first
// period's yield.
type IOFConfig struct {
	Enabled         bool
	Curve           string // fixed, linear-decay
	Factor          float64
	FirstPeriodDays int
}

// ExtraPayment is a one-off extra amortization or deposit, scheduled either
// by calendar date (requires the simulation's startDate) or by explicit
// 1-based period index.
type ExtraPayment struct {
	Amount float64
	Date   string // YYYY-MM
	Period int
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// ValidateConfiguration performs general validation of the configuration and
// returns human-readable warnings. Structural errors surface later, when a
// simulation is converted to engine parameters.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if len(c.Simulations) == 0 {
		warnings = append(warnings, "no simulations configured")
	}

	seen := make(map[string]bool)
	for _, sim := range c.Simulations {
		if sim.Name == "" {
			warnings = append(warnings, "a simulation is missing a name")
		} else if seen[sim.Name] {
			warnings = append(warnings, fmt.Sprintf("duplicate simulation name %q", sim.Name))
		}
		seen[sim.Name] = true

		if w := validation.WarnCorrectionWithoutStartDate(sim.Name, sim.StartDate, sim.CorrectionIndex); w != "" {
			warnings = append(warnings, w)
		}

		for _, extra := range sim.ExtraPayments {
			if extra.Date != "" && sim.StartDate == "" {
				warnings = append(warnings,
					fmt.Sprintf("simulation %q schedules an extra payment by date but has no startDate", sim.Name))
			}
			if extra.Date == "" && extra.Period == 0 {
				warnings = append(warnings,
					fmt.Sprintf("simulation %q has an extra payment with neither date nor period", sim.Name))
			}
		}
	}

	return warnings
}
