package rpalog

import (
	"github.com/Station-Manager/errors"
	"github.com/spf13/viper"
)

// Config controls where bot logs go and which sinks are attached. Level only
// accepts "info": every step record is INFO or ERROR, and a higher minimum
// would split a START from its terminal record.
type Config struct {
	BaseDir           string `mapstructure:"base_dir" validate:"required"`
	Level             string `mapstructure:"level" validate:"required,oneof=info"`
	ConsoleLogging    bool   `mapstructure:"console_logging"`
	TextFileLogging   bool   `mapstructure:"text_file_logging"`
	JSONFileLogging   bool   `mapstructure:"json_file_logging"`
	LogFileMaxSizeMB  int    `mapstructure:"log_file_max_size_mb" validate:"gte=0"`
	LogFileMaxBackups int    `mapstructure:"log_file_max_backups" validate:"gte=0"`
	LogFileMaxAgeDays int    `mapstructure:"log_file_max_age_days" validate:"gte=0"`
}

// DefaultConfig returns a config with all three sinks enabled at INFO.
func DefaultConfig() *Config {
	return &Config{
		BaseDir:         DefaultBaseDir,
		Level:           "info",
		ConsoleLogging:  true,
		TextFileLogging: true,
		JSONFileLogging: true,
	}
}

// LoadConfig reads a config file (yaml, json or toml, by extension) over the
// defaults. An empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	const op errors.Op = "rpalog.LoadConfig"
	if path == emptyString {
		return DefaultConfig(), nil
	}

	v := viper.New()
	def := DefaultConfig()
	v.SetDefault("base_dir", def.BaseDir)
	v.SetDefault("level", def.Level)
	v.SetDefault("console_logging", def.ConsoleLogging)
	v.SetDefault("text_file_logging", def.TextFileLogging)
	v.SetDefault("json_file_logging", def.JSONFileLogging)
	v.SetDefault("log_file_max_size_mb", def.LogFileMaxSizeMB)
	v.SetDefault("log_file_max_backups", def.LogFileMaxBackups)
	v.SetDefault("log_file_max_age_days", def.LogFileMaxAgeDays)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.New(op).Err(err).Msg(errMsgLoadConfig)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New(op).Err(err).Msg(errMsgLoadConfig)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, errors.New(op).Err(err).Msg(errMsgConfigInvalid)
	}
	return &cfg, nil
}
