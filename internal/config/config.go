// Package config binds command-line flags, a config file, and
// environment variables into a single Config, using viper's layering
// over a pflag.FlagSet owned by the CLI shell.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/prn-tf/helix/internal/block"
)

// Config holds every setting the CLI shell and core driver need for one
// invocation.
type Config struct {
	Source      string
	Target      string
	Delete      bool
	ChunkSize   int
	LogLevel    string
	MetricsAddr string
}

// Load binds flags to viper, layers in a config file ($HOME/.helix.yaml
// or ./helix.yaml) and HELIX_* environment variables, and returns the
// merged Config. Flags take precedence over the config file, which
// takes precedence over defaults; environment variables fill in for
// any flag left at its default.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("source", ".")
	v.SetDefault("target", ".")
	v.SetDefault("delete", false)
	v.SetDefault("chunk-size", block.DefaultChunkSize)
	v.SetDefault("log-level", "info")
	v.SetDefault("metrics-addr", "")

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("config: bind flags: %w", err)
	}

	v.SetConfigType("yaml")
	home, _ := os.UserHomeDir()
	homeConfig := filepath.Join(home, ".helix.yaml")
	if _, statErr := os.Stat(homeConfig); home != "" && statErr == nil {
		v.SetConfigFile(homeConfig)
	} else {
		v.SetConfigName("helix")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	v.SetEnvPrefix("HELIX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return &Config{
		Source:      v.GetString("source"),
		Target:      v.GetString("target"),
		Delete:      v.GetBool("delete"),
		ChunkSize:   v.GetInt("chunk-size"),
		LogLevel:    v.GetString("log-level"),
		MetricsAddr: v.GetString("metrics-addr"),
	}, nil
}
