package main

import (
	"os"
	"time"

	"github.com/Station-Manager/rpalog"
	"github.com/Station-Manager/rpalog/internal/bots"
	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
)

// demoBaseDir is where the demo logs when neither flag nor config file names a directory.
const demoBaseDir = "meus_logs_rpa"

type cli struct {
	BaseDir string `help:"base directory for bot logs; overrides base_dir from --config (default meus_logs_rpa)" type:"path"`
	Config  string `help:"optional logging config file (yaml, json or toml)" type:"path"`
	Fast    bool   `help:"skip the scripted delays"`
}

// config loads the logging config. --base-dir wins over the file's base_dir;
// with no file the demo directory replaces the library default.
func (c *cli) config() (*rpalog.Config, error) {
	cfg, err := rpalog.LoadConfig(c.Config)
	if err != nil {
		return nil, err
	}
	switch {
	case c.BaseDir != "":
		cfg.BaseDir = c.BaseDir
	case c.Config == "":
		cfg.BaseDir = demoBaseDir
	}
	return cfg, nil
}

func main() {
	var args cli
	ctx := kong.Parse(
		&args,
		kong.Name("rpademo"),
		kong.Description("run the demo finance and HR bots with step tracking"),
		kong.UsageOnError(),
	)

	out := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, NoColor: true, PartsOrder: []string{zerolog.MessageFieldName}})

	ctx.FatalIfErrorf(run(&args, out))
}

func run(args *cli, out zerolog.Logger) error {
	cfg, err := args.config()
	if err != nil {
		return err
	}

	reg, err := rpalog.NewRegistry(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = reg.Close() }()

	var pause bots.Pause
	if args.Fast {
		pause = func(time.Duration) {}
	}

	out.Info().Msg("--- Running Finance ---")
	fin, err := bots.NewFinance(reg, "", pause)
	if err != nil {
		return err
	}
	if err = fin.LoginSAP("admin_financeiro"); err != nil {
		return err
	}
	if _, err = fin.ExtractReport(); err != nil {
		return err
	}

	out.Info().Msg("--- Running HR ---")
	hr, err := bots.NewHR(reg, "", pause)
	if err != nil {
		return err
	}
	if err = hr.ProcessVacations(); err != nil {
		out.Info().Msg("HR bot failed (as expected).")
	}

	return nil
}
