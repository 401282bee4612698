// Package config defines the data structures related to configuration and
// includes functions for loading, normalizing and validating it.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/iwvelando/water-builder/pkg/constants"
	"github.com/iwvelando/water-builder/pkg/constraints"
	"github.com/iwvelando/water-builder/pkg/ions"
	"github.com/iwvelando/water-builder/pkg/validation"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. WATER_BUILDER_OUTPUT_FORMAT.
const EnvPrefix = "WATER_BUILDER"

// Configuration holds all configuration for water-builder.
type Configuration struct {
	Logging LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty" mapstructure:"logging"`
	Output  OutputConfig  `yaml:"output,omitempty" json:"output,omitempty" mapstructure:"output"`
	Solver  SolverConfig  `yaml:"solver,omitempty" json:"solver,omitempty" mapstructure:"solver"`
	Water   WaterConfig   `yaml:"water" json:"water" mapstructure:"water"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" json:"level,omitempty" mapstructure:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format     string `yaml:"format,omitempty" json:"format,omitempty" mapstructure:"format" validate:"omitempty,oneof=json console"`
	OutputFile string `yaml:"outputFile,omitempty" json:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" json:"format,omitempty" mapstructure:"format"` // pretty, csv, json
}

// SolverConfig mirrors builder.Options. Zero values take the solver defaults.
type SolverConfig struct {
	MaxSaltPerLiter      float64 `yaml:"maxSaltPerLiter,omitempty" json:"maxSaltPerLiter,omitempty" mapstructure:"maxSaltPerLiter" validate:"gte=0"`
	EqualityTolerance    float64 `yaml:"equalityTolerance,omitempty" json:"equalityTolerance,omitempty" mapstructure:"equalityTolerance" validate:"gte=0"`
	FeasibilityTolerance float64 `yaml:"feasibilityTolerance,omitempty" json:"feasibilityTolerance,omitempty" mapstructure:"feasibilityTolerance" validate:"gte=0"`
	SimplexTolerance     float64 `yaml:"simplexTolerance,omitempty" json:"simplexTolerance,omitempty" mapstructure:"simplexTolerance" validate:"gte=0"`
	MaxIterations        int     `yaml:"maxIterations,omitempty" json:"maxIterations,omitempty" mapstructure:"maxIterations" validate:"gte=0"`
	Convergence          float64 `yaml:"convergence,omitempty" json:"convergence,omitempty" mapstructure:"convergence" validate:"gte=0"`
	Workers              int     `yaml:"workers,omitempty" json:"workers,omitempty" mapstructure:"workers" validate:"gte=0,lte=64"`
}

// WaterSource is a water profile together with the liters of it used.
type WaterSource struct {
	ions.Profile `yaml:",inline" mapstructure:",squash"`
	Volume       float64 `yaml:"volume" json:"volume" mapstructure:"volume"`
}

// WaterConfig describes one water adjustment request.
type WaterConfig struct {
	Mode         string       `yaml:"mode,omitempty" json:"mode,omitempty" mapstructure:"mode" validate:"omitempty,oneof=solve bestfit"`
	Source       WaterSource  `yaml:"source" json:"source" mapstructure:"source"`
	Dilution     WaterSource  `yaml:"dilution,omitempty" json:"dilution,omitempty" mapstructure:"dilution"`
	Target       ions.Profile `yaml:"target" json:"target" mapstructure:"target"`
	TargetVolume float64      `yaml:"targetVolume" json:"targetVolume" mapstructure:"targetVolume" validate:"gt=0"`

	// Salts maps a salt id or alias to whether it may be added.
	Salts map[string]bool `yaml:"salts" json:"salts" mapstructure:"salts"`

	// Constraints maps an ion name or symbol to leq, geq or eq.
	Constraints map[string]string `yaml:"constraints,omitempty" json:"constraints,omitempty" mapstructure:"constraints" validate:"dive,keys,ion,endkeys,relation"`

	Goal string `yaml:"goal,omitempty" json:"goal,omitempty" mapstructure:"goal" validate:"omitempty,goal"`
}

// configValidate checks struct tags on Configuration.
var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	_ = configValidate.RegisterValidation("ion", func(fl validator.FieldLevel) bool {
		_, err := ions.ParseIon(fl.Field().String())
		return err == nil
	})
	_ = configValidate.RegisterValidation("relation", func(fl validator.FieldLevel) bool {
		_, err := constraints.ParseRelation(fl.Field().String())
		return err == nil
	})
	_ = configValidate.RegisterValidation("goal", func(fl validator.FieldLevel) bool {
		_, err := constraints.ParseGoal(fl.Field().String())
		return err == nil
	})
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r, as
// uploaded to the server.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	configuration.Normalize()
	return &configuration, nil
}

// Normalize fills unset fields with defaults. An empty constraint map caps
// every ion at its target; a partial map is left for Validate to reject.
func (c *Configuration) Normalize() {
	if c.Output.Format == "" {
		c.Output.Format = constants.OutputFormatPretty
	}
	if c.Water.Mode == "" {
		c.Water.Mode = constants.ModeSolve
	}
	if c.Water.Goal == "" {
		c.Water.Goal = constraints.MinimizeDeviation.String()
	}
	if len(c.Water.Constraints) == 0 {
		c.Water.Constraints = constraints.Uniform(constraints.LEQ).Named()
	}
}

// Validate runs the struct tag checks and the checks that need the domain
// parsers. Warnings about the water itself come from ValidateConfiguration.
func (c *Configuration) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		return err
	}
	if err := validation.ValidateMode(c.Water.Mode); err != nil {
		return err
	}
	if _, err := c.Water.ConstraintSet(); err != nil {
		return err
	}
	if c.Water.Mode == constants.ModeSolve {
		if _, err := constraints.ParseGoal(c.Water.Goal); err != nil {
			return err
		}
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	allowed, unknown := c.Water.AllowedSalts(nil)
	for _, name := range unknown {
		warnings = append(warnings, fmt.Sprintf("Unknown salt '%s' is ignored", name))
	}

	wv := &validation.WaterValidator{
		Base:            c.Water.Base(),
		Target:          c.Water.Target,
		Allowed:         sortedIDs(allowed),
		MaxSaltPerLiter: c.ToOptions().MaxSaltPerLiter,
	}
	warnings = append(warnings, wv.ValidateAll()...)

	if c.Water.Source.Volume <= 0 && c.Water.Dilution.Volume > 0 {
		warnings = append(warnings, "Dilution volume is set but the source volume is not positive")
	}

	return warnings
}
