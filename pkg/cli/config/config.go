package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/secmon-lab/isogap/pkg/domain/model/config"
	"github.com/secmon-lab/isogap/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// AppConfig holds the --config flag. The file supplies the data of the risk
// analysis page; without it the built-in register is used.
type AppConfig struct {
	path string
}

func (x *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the TOML app config file",
			Sources:     cli.EnvVars("ISOGAP_CONFIG"),
			Destination: &x.path,
		},
	}
}

// Path returns the configured file path
func (x *AppConfig) Path() string {
	return x.path
}

// Configure loads the risk analysis data
func (x *AppConfig) Configure() (*domainConfig.RiskConfig, error) {
	if x.path == "" {
		return domainConfig.DefaultRiskConfig(), nil
	}
	file, err := LoadAppConfiguration(x.path)
	if err != nil {
		return nil, err
	}
	return file.ToDomainRiskConfig(), nil
}

// AppConfigFile is the TOML layout of the app config file
type AppConfigFile struct {
	Likelihood []LikelihoodLevel `toml:"likelihood"`
	Impact     []ImpactLevel     `toml:"impact"`
	Risks      []Risk            `toml:"risk"`
	Trend      []TrendPoint      `toml:"trend"`
}

// LikelihoodLevel represents a likelihood level configuration
type LikelihoodLevel struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Score       int    `toml:"score"`
}

// Validate checks if the LikelihoodLevel is valid
func (l *LikelihoodLevel) Validate() error {
	if err := types.LikelihoodID(l.ID).Validate(); err != nil {
		return goerr.Wrap(ErrInvalidConfig, err.Error(), goerr.V("id", l.ID))
	}
	if l.Score < 1 || l.Score > 5 {
		return goerr.Wrap(ErrInvalidConfig, "likelihood score must be between 1 and 5", goerr.V("id", l.ID), goerr.V("score", l.Score))
	}
	return nil
}

// ImpactLevel represents an impact level configuration
type ImpactLevel struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Score       int    `toml:"score"`
}

// Validate checks if the ImpactLevel is valid
func (i *ImpactLevel) Validate() error {
	if err := types.ImpactID(i.ID).Validate(); err != nil {
		return goerr.Wrap(ErrInvalidConfig, err.Error(), goerr.V("id", i.ID))
	}
	if i.Score < 1 || i.Score > 5 {
		return goerr.Wrap(ErrInvalidConfig, "impact score must be between 1 and 5", goerr.V("id", i.ID), goerr.V("score", i.Score))
	}
	return nil
}

// Risk is one entry of the risk register
type Risk struct {
	ID         string `toml:"id"`
	Name       string `toml:"name"`
	Likelihood string `toml:"likelihood"`
	Impact     string `toml:"impact"`
	Owner      string `toml:"owner"`
	Treatment  string `toml:"treatment"`
}

// TrendPoint is one point of the compliance trend
type TrendPoint struct {
	Period string  `toml:"period"`
	Score  float64 `toml:"score"`
}

// Validate checks the score ranges here and delegates the cross references
// to the domain model
func (a *AppConfigFile) Validate() error {
	for _, lh := range a.Likelihood {
		if err := lh.Validate(); err != nil {
			return goerr.Wrap(err, "invalid likelihood level")
		}
	}
	for _, imp := range a.Impact {
		if err := imp.Validate(); err != nil {
			return goerr.Wrap(err, "invalid impact level")
		}
	}
	if err := a.ToDomainRiskConfig().Validate(); err != nil {
		return goerr.Wrap(asInvalidConfig(err), "invalid risk analysis data")
	}
	return nil
}

func asInvalidConfig(err error) error {
	if errors.Is(err, ErrInvalidConfig) {
		return err
	}
	return errors.Join(ErrInvalidConfig, err)
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfigFile, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "failed to read config file", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfigFile
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// ToDomainRiskConfig converts AppConfigFile to domain RiskConfig
func (a *AppConfigFile) ToDomainRiskConfig() *domainConfig.RiskConfig {
	likelihood := make([]domainConfig.LikelihoodLevel, len(a.Likelihood))
	for i, level := range a.Likelihood {
		likelihood[i] = domainConfig.LikelihoodLevel{
			ID:          types.LikelihoodID(level.ID),
			Name:        level.Name,
			Description: level.Description,
			Score:       level.Score,
		}
	}

	impact := make([]domainConfig.ImpactLevel, len(a.Impact))
	for i, level := range a.Impact {
		impact[i] = domainConfig.ImpactLevel{
			ID:          types.ImpactID(level.ID),
			Name:        level.Name,
			Description: level.Description,
			Score:       level.Score,
		}
	}

	risks := make([]domainConfig.RiskEntry, len(a.Risks))
	for i, r := range a.Risks {
		risks[i] = domainConfig.RiskEntry{
			ID:         r.ID,
			Name:       r.Name,
			Likelihood: types.LikelihoodID(r.Likelihood),
			Impact:     types.ImpactID(r.Impact),
			Owner:      r.Owner,
			Treatment:  r.Treatment,
		}
	}

	trend := make([]domainConfig.TrendPoint, len(a.Trend))
	for i, p := range a.Trend {
		trend[i] = domainConfig.TrendPoint{Period: p.Period, Score: p.Score}
	}

	return &domainConfig.RiskConfig{
		Likelihood: likelihood,
		Impact:     impact,
		Risks:      risks,
		Trend:      trend,
	}
}
