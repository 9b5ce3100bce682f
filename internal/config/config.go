// Package config loads salesml settings from defaults, a YAML config file and
// SALESML_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/salesml/pipeline"
	"github.com/YuminosukeSato/salesml/pkg/errors"
	"github.com/YuminosukeSato/salesml/sklearn/svm"
)

// EnvPrefix is prepended to every environment variable, e.g. SALESML_INPUT_PATH.
const EnvPrefix = "SALESML"

// Config is the effective configuration of a salesml run.
type Config struct {
	InputPath string    `mapstructure:"input_path" yaml:"input_path"`
	SalesPath string    `mapstructure:"sales_path" yaml:"sales_path"`
	TestSize  float64   `mapstructure:"test_size" yaml:"test_size"`
	Seed      uint64    `mapstructure:"seed" yaml:"seed"`
	Scaling   string    `mapstructure:"scaling" yaml:"scaling"`
	Query     []float64 `mapstructure:"query" yaml:"query,flow"`
	CVFolds   int       `mapstructure:"cv_folds" yaml:"cv_folds"`

	// SVR
	C         float64 `mapstructure:"c" yaml:"c"`
	Epsilon   float64 `mapstructure:"epsilon" yaml:"epsilon"`
	Gamma     float64 `mapstructure:"gamma" yaml:"gamma"`
	GammaMode string  `mapstructure:"gamma_mode" yaml:"gamma_mode"`
	MaxIter   int     `mapstructure:"max_iter" yaml:"max_iter"`

	// Outputs
	Output      string `mapstructure:"output" yaml:"output"`
	PlotOut     string `mapstructure:"plot_out" yaml:"plot_out"`
	ChartOut    string `mapstructure:"chart_out" yaml:"chart_out"`
	ExportModel string `mapstructure:"export_model" yaml:"export_model"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	opt := pipeline.NewDefaultOptions()
	return &Config{
		InputPath: opt.InputPath,
		SalesPath: "data/DummyBills.csv",
		TestSize:  opt.TestSize,
		Seed:      opt.Seed,
		Scaling:   string(opt.Scaling),
		Query:     opt.Query,
		C:         opt.C,
		Epsilon:   opt.Epsilon,
		GammaMode: svm.GammaScale,
		MaxIter:   opt.MaxIter,
		Output:    "text",
		LogLevel:  "warn",
		LogFormat: "json",
	}
}

// DefaultPath returns ~/.salesml/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve home dir")
	}
	return filepath.Join(home, ".salesml", "config.yaml"), nil
}

// flagKeys maps command-line flag names that do not follow the key-name
// convention (dashes for underscores) to their config keys.
var flagKeys = map[string]string{
	"cv": "cv_folds",
}

func defaults() map[string]interface{} {
	def := Default()
	return map[string]interface{}{
		"input_path":   def.InputPath,
		"sales_path":   def.SalesPath,
		"test_size":    def.TestSize,
		"seed":         def.Seed,
		"scaling":      def.Scaling,
		"query":        def.Query,
		"cv_folds":     def.CVFolds,
		"c":            def.C,
		"epsilon":      def.Epsilon,
		"gamma":        def.Gamma,
		"gamma_mode":   def.GammaMode,
		"max_iter":     def.MaxIter,
		"output":       def.Output,
		"plot_out":     def.PlotOut,
		"chart_out":    def.ChartOut,
		"export_model": def.ExportModel,
		"log_level":    def.LogLevel,
		"log_format":   def.LogFormat,
	}
}

// Load loads configuration from flags, env, file and defaults.
// Precedence: flags > env > config file > defaults. Only flags that were set
// on the command line take part. A missing default config file is not an
// error; a missing explicit cfgFile is.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	known := defaults()
	for key, value := range known {
		v.SetDefault(key, value)
	}

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ToLower(strings.ReplaceAll(f.Name, "-", "_"))
			}
			if _, ok := known[key]; !ok || bindErr != nil {
				return
			}
			bindErr = v.BindPFlag(key, f)
		})
		if bindErr != nil {
			return nil, errors.Wrap(bindErr, "bind flags")
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", cfgFile)
		}
	} else if path, err := DefaultPath(); err == nil {
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrapf(err, "read config %s", path)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &c, nil
}

// Save writes c as YAML to cfgFile, or to DefaultPath when cfgFile is empty.
// It returns the path written.
func Save(c *Config, cfgFile string) (string, error) {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return "", err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.Wrap(err, "mkdir config dir")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return "", errors.Wrap(err, "marshal yaml")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", errors.Wrap(err, "write config")
	}
	return path, nil
}

// PipelineOptions converts c into validated pipeline options.
func (c *Config) PipelineOptions() (*pipeline.Options, error) {
	scaling, err := pipeline.ParseScalingMode(c.Scaling)
	if err != nil {
		return nil, err
	}
	opt := pipeline.NewDefaultOptions()
	opt.InputPath = c.InputPath
	opt.TestSize = c.TestSize
	opt.Seed = c.Seed
	opt.Scaling = scaling
	opt.Query = append([]float64(nil), c.Query...)
	opt.CVFolds = c.CVFolds
	opt.C = c.C
	opt.Epsilon = c.Epsilon
	opt.Gamma = c.Gamma
	opt.GammaMode = c.GammaMode
	opt.MaxIter = c.MaxIter
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	return opt, nil
}
