package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type ExecConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	TempDir       string        `mapstructure:"temp_dir"`
	LanguagesFile string        `mapstructure:"languages_file"`
}

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Exec   ExecConfig   `mapstructure:"exec"`
}

// Load reads codepair.yaml from the working directory or ~/.codepair if one
// exists; otherwise the defaults apply. PORT in the environment overrides the
// configured listen port.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("codepair")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.codepair")

	v.SetDefault("server.port", 5000)
	v.SetDefault("exec.timeout", 10*time.Second)
	v.SetDefault("exec.temp_dir", filepath.Join(os.TempDir(), "codepair"))
	v.SetDefault("exec.languages_file", "")

	v.BindEnv("server.port", "PORT")

	if err := v.ReadInConfig(); err != nil {
		// Running without a config file is the normal case.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}
