package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/model"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/pipeline"
)

// Config is the root configuration.
type Config struct {
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Habitat HabitatConfig `yaml:"habitat" mapstructure:"habitat"`
	Rovers  RoversConfig  `yaml:"rovers" mapstructure:"rovers"`
	Model   ModelConfig   `yaml:"model" mapstructure:"model"`
	Split   SplitConfig   `yaml:"split" mapstructure:"split"`
	Sampler SamplerConfig `yaml:"sampler" mapstructure:"sampler"`
	Synth   SynthConfig   `yaml:"synth" mapstructure:"synth"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// DataConfig selects where source tables are read from.
type DataConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Driver string `yaml:"driver" mapstructure:"driver"` // csv, xlsx, sqlite or synth
	Path   string `yaml:"path" mapstructure:"path"`     // workbook or database file
}

// HabitatConfig configures the area ranking run.
type HabitatConfig struct {
	Areas          []string `yaml:"areas" mapstructure:"areas"`
	QualityColumns []string `yaml:"quality_columns" mapstructure:"quality_columns"`
}

// RoversConfig names the rover log sources.
type RoversConfig struct {
	FarmingSource   string `yaml:"farming_source" mapstructure:"farming_source"`
	RecyclingSource string `yaml:"recycling_source" mapstructure:"recycling_source"`
}

// ModelConfig configures the learning algorithms.
type ModelConfig struct {
	Classifier          string  `yaml:"classifier" mapstructure:"classifier"`
	Regressor           string  `yaml:"regressor" mapstructure:"regressor"`
	NEstimators         int     `yaml:"n_estimators" mapstructure:"n_estimators"`
	MaxDepth            int     `yaml:"max_depth" mapstructure:"max_depth"`
	MinSamplesSplit     int     `yaml:"min_samples_split" mapstructure:"min_samples_split"`
	MinSamplesLeaf      int     `yaml:"min_samples_leaf" mapstructure:"min_samples_leaf"`
	MaxFeatures         int     `yaml:"max_features" mapstructure:"max_features"` // 0 = sqrt(p) for forests
	MinImpurityDecrease float64 `yaml:"min_impurity_decrease" mapstructure:"min_impurity_decrease"`
	Criterion           string  `yaml:"criterion" mapstructure:"criterion"` // gini or entropy
	Bootstrap           bool    `yaml:"bootstrap" mapstructure:"bootstrap"`
	K                   int     `yaml:"k" mapstructure:"k"`
	LearningRate        float64 `yaml:"learning_rate" mapstructure:"learning_rate"`
	Epochs              int     `yaml:"epochs" mapstructure:"epochs"`
	BatchSize           int     `yaml:"batch_size" mapstructure:"batch_size"`
}

// SplitConfig configures the train/test split.
type SplitConfig struct {
	TestRatio float64 `yaml:"test_ratio" mapstructure:"test_ratio"`
	Seed      int64   `yaml:"seed" mapstructure:"seed"`
	Folds     int     `yaml:"folds" mapstructure:"folds"` // cross-validation folds, 0 = off
}

// SamplerConfig configures point inference.
type SamplerConfig struct {
	Seed  int64 `yaml:"seed" mapstructure:"seed"` // 0 seeds from the clock
	Count int   `yaml:"count" mapstructure:"count"`
}

// SynthConfig configures the dataset generator.
type SynthConfig struct {
	Seed        int64 `yaml:"seed" mapstructure:"seed"`
	HabitatRows int   `yaml:"habitat_rows" mapstructure:"habitat_rows"`
	RoverRows   int   `yaml:"rover_rows" mapstructure:"rover_rows"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// MetricsConfig configures the run metrics export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
}

// Load reads configuration from file and environment. file, when set,
// replaces the config.yaml lookup in the working directory. overrides take
// precedence over every other layer.
func Load(file string, overrides map[string]any) (*Config, error) {
	v := viper.New()

	// Config file
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("STELLAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	def := pipeline.DefaultConfig()
	v.SetDefault("data.dir", ".")
	v.SetDefault("data.driver", "csv")
	v.SetDefault("data.path", "")
	v.SetDefault("habitat.areas", def.Areas)
	v.SetDefault("habitat.quality_columns", def.QualityColumns)
	v.SetDefault("rovers.farming_source", def.FarmingSource)
	v.SetDefault("rovers.recycling_source", def.RecyclingSource)
	v.SetDefault("model.classifier", model.AlgForest)
	v.SetDefault("model.regressor", model.AlgForest)
	v.SetDefault("model.n_estimators", 100)
	v.SetDefault("model.max_depth", 0)
	v.SetDefault("model.min_samples_split", 2)
	v.SetDefault("model.min_samples_leaf", 1)
	v.SetDefault("model.max_features", 0)
	v.SetDefault("model.min_impurity_decrease", 0.0)
	v.SetDefault("model.criterion", "gini")
	v.SetDefault("model.bootstrap", true)
	v.SetDefault("model.k", 5)
	v.SetDefault("model.learning_rate", 0.01)
	v.SetDefault("model.epochs", 200)
	v.SetDefault("model.batch_size", 32)
	v.SetDefault("split.test_ratio", 0.2)
	v.SetDefault("split.seed", 42)
	v.SetDefault("split.folds", 0)
	v.SetDefault("sampler.seed", 0)
	v.SetDefault("sampler.count", 1)
	v.SetDefault("synth.seed", 42)
	v.SetDefault("synth.habitat_rows", 48)
	v.SetDefault("synth.rover_rows", 365*4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("metrics.textfile", "")

	// Read config file (optional unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	for k, val := range overrides {
		v.Set(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate rejects settings that would make a run ambiguous.
func (c *Config) validate() error {
	seen := make(map[string]struct{}, len(c.Habitat.Areas))
	for _, a := range c.Habitat.Areas {
		if _, dup := seen[a]; dup {
			return eris.Errorf("config: habitat.areas lists %q more than once", a)
		}
		seen[a] = struct{}{}
	}
	return nil
}

// Pipeline converts the configuration into session settings.
func (c *Config) Pipeline() pipeline.Config {
	return pipeline.Config{
		Areas:           c.Habitat.Areas,
		QualityColumns:  c.Habitat.QualityColumns,
		FarmingSource:   c.Rovers.FarmingSource,
		RecyclingSource: c.Rovers.RecyclingSource,
		Classifier:      c.Model.Classifier,
		Regressor:       c.Model.Regressor,
		Model: model.Config{
			NEstimators:         c.Model.NEstimators,
			MaxDepth:            c.Model.MaxDepth,
			MinSamplesSplit:     c.Model.MinSamplesSplit,
			MinSamplesLeaf:      c.Model.MinSamplesLeaf,
			MaxFeatures:         c.Model.MaxFeatures,
			MinImpurityDecrease: c.Model.MinImpurityDecrease,
			Criterion:           c.Model.Criterion,
			NoBootstrap:         !c.Model.Bootstrap,
			K:                   c.Model.K,
			LearningRate:        c.Model.LearningRate,
			Epochs:              c.Model.Epochs,
			BatchSize:           c.Model.BatchSize,
			Seed:                c.Split.Seed,
		},
		TestRatio:   c.Split.TestRatio,
		SplitSeed:   c.Split.Seed,
		Folds:       c.Split.Folds,
		SamplerSeed: c.Sampler.Seed,
		Samples:     c.Sampler.Count,
	}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
