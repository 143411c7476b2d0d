package rpalog

import (
	"strings"
	"sync"

	"github.com/Station-Manager/errors"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate
var once sync.Once

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

func validateConfig(cfg *Config) error {
	const op errors.Op = "rpalog.validateConfig"
	if cfg == nil {
		return errors.New(op).Msg(errMsgNilConfig)
	}

	if err := getValidator().Struct(cfg); err != nil {
		return errors.New(op).Err(err).Msg(errMsgConfigInvalid)
	}

	if !cfg.ConsoleLogging && !cfg.TextFileLogging && !cfg.JSONFileLogging {
		return errors.New(op).Msg(errMsgNoChannels)
	}

	return nil
}

// validateBotName rejects names that would escape or collapse the bot directory.
func validateBotName(name string) error {
	const op errors.Op = "rpalog.validateBotName"

	if err := getValidator().Var(name, `required,excludesall=/\`); err != nil {
		return errors.New(op).Err(err).Msg(errMsgBadBotName)
	}
	if name == "." || name == ".." || strings.TrimSpace(name) != name {
		return errors.New(op).Msg(errMsgBadBotName)
	}

	return nil
}
