package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/conf"
	"gopkg.in/yaml.v2"
)

type configuration struct {
	Debug bool `conf:"default:false" yaml:"debug"`

	// File points to an optional YAML file whose values override flags and variables
	File string `conf:"default:" yaml:"-"`

	Web struct {
		APIHost         string        `conf:"default:0.0.0.0:3000" yaml:"apiHost"`
		ReadTimeout     time.Duration `conf:"default:5s" yaml:"readTimeout"`
		ShutdownTimeout time.Duration `conf:"default:20s" yaml:"shutdownTimeout"`
	} `yaml:"web"`

	DB struct {
		Filename string `conf:"default:artistry.db" yaml:"filename"`
	} `yaml:"db"`

	Auth struct {
		// the secret must be overridden outside of development environments
		TokenSecret   string        `conf:"default:development-secret,noprint" yaml:"tokenSecret"`
		TokenDuration time.Duration `conf:"default:72h" yaml:"tokenDuration"`
	} `yaml:"auth"`
}

// loadConfiguration assembles the service configuration from defaults, environment
// variables and command line flags, plus an optional YAML overlay file.
func loadConfiguration() (cfg configuration, err error) {

	if err = conf.Parse(os.Args[1:], "ARTISTRY", &cfg); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			usage, usageErr := conf.Usage("ARTISTRY", &cfg)
			if usageErr != nil {
				return cfg, fmt.Errorf("generating config usage: %w", usageErr)
			}
			fmt.Println(usage)
			return cfg, conf.ErrHelpWanted
		}
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	// apply the YAML overlay when requested
	if cfg.File != "" {
		contents, readErr := os.ReadFile(cfg.File)
		if readErr != nil {
			return cfg, fmt.Errorf("reading configuration file %q: %w", cfg.File, readErr)
		}
		if err = yaml.Unmarshal(contents, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing configuration file %q: %w", cfg.File, err)
		}
	}

	return cfg, nil
}
