package rpalog

import (
	stderrs "errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/Station-Manager/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// Registry owns the loggers of a set of bots, one per bot name. It replaces a
// process-wide logger lookup: create one, hand its loggers to bots, Close it
// when the run ends.
type Registry struct {
	config     Config
	level      zerolog.Level
	console    io.Writer
	now        func() time.Time
	metricsReg prometheus.Registerer
	metrics    *stepMetrics

	mu     sync.Mutex
	bots   map[string]*BotLogger
	closed atomic.Bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithConsole redirects the console sink (stderr by default). A nil writer
// drops console output.
func WithConsole(w io.Writer) Option {
	return func(r *Registry) { r.console = w }
}

// WithClock replaces time.Now for record timestamps and file-name dates.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithMetrics registers step duration and outcome collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(r *Registry) { r.metricsReg = reg }
}

// NewRegistry validates cfg and returns an empty registry.
func NewRegistry(cfg *Config, opts ...Option) (*Registry, error) {
	const op errors.Op = "rpalog.NewRegistry"
	if err := validateConfig(cfg); err != nil {
		return nil, errors.New(op).Err(err).Msg(errMsgConfigInvalid)
	}

	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, errors.New(op).Err(err).Msg(errMsgConfigInvalid)
	}

	r := &Registry{
		config:  *cfg,
		level:   level,
		console: os.Stderr,
		now:     time.Now,
		bots:    make(map[string]*BotLogger),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.metricsReg != nil {
		m, err := newStepMetrics(r.metricsReg)
		if err != nil {
			return nil, errors.New(op).Err(err).Msg(errMsgMetrics)
		}
		r.metrics = m
	}

	return r, nil
}

// Config returns a copy of the registry's configuration.
func (r *Registry) Config() Config {
	return r.config
}

// Provision returns the logger for botName, creating <baseDir>/<botName> and
// attaching fresh text, JSON-lines and console sinks. An empty baseDir uses
// Config.BaseDir. Provisioning a name again keeps the same *BotLogger and
// closes the sinks it had, so no record is written twice.
func (r *Registry) Provision(botName, baseDir string) (*BotLogger, error) {
	const op errors.Op = "rpalog.Registry.Provision"
	if r == nil {
		return nil, errors.New(op).Msg(errMsgNilRegistry)
	}
	if r.closed.Load() {
		return nil, errors.New(op).Msg(errMsgRegistryClosed)
	}
	if err := validateBotName(botName); err != nil {
		return nil, errors.New(op).Err(err).Msg(errMsgBadBotName)
	}

	if baseDir == emptyString {
		baseDir = r.config.BaseDir
	}
	dir := filepath.Join(baseDir, botName)
	if err := os.MkdirAll(dir, dirPermission); err != nil {
		return nil, errors.New(op).Err(err).Msg(errMsgBotDir)
	}

	sinks, err := openSinks(&r.config, r.console, botName, dir, r.now())
	if err != nil {
		return nil, errors.New(op).Err(err).Msg(errMsgBotDir)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	bot, ok := r.bots[botName]
	if !ok {
		bot = newBotLogger(botName, r.level, r.now, r.metrics)
		r.bots[botName] = bot
	}
	if err = bot.attach(sinks).close(); err != nil {
		bot.WarnWith().Err(err).Msg(errMsgCloseSinks)
	}

	return bot, nil
}

// Lookup returns the logger provisioned for botName, if any.
func (r *Registry) Lookup(botName string) (*BotLogger, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	bot, ok := r.bots[botName]
	return bot, ok
}

// Names returns the provisioned bot names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.bots))
	for name := range r.bots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset closes the sinks of botName and forgets it. Unknown names are ignored.
func (r *Registry) Reset(botName string) error {
	const op errors.Op = "rpalog.Registry.Reset"
	if r == nil {
		return errors.New(op).Msg(errMsgNilRegistry)
	}

	r.mu.Lock()
	bot, ok := r.bots[botName]
	delete(r.bots, botName)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	if err := bot.Close(); err != nil {
		return errors.New(op).Err(err).Msg(errMsgCloseSinks)
	}
	return nil
}

// Close closes every bot logger. Provision fails afterwards.
// It's safe to call Close multiple times.
func (r *Registry) Close() error {
	const op errors.Op = "rpalog.Registry.Close"
	if r == nil || r.closed.Swap(true) {
		return nil
	}

	r.mu.Lock()
	bots := r.bots
	r.bots = make(map[string]*BotLogger)
	r.mu.Unlock()

	var errs []error
	for _, bot := range bots {
		if err := bot.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := stderrs.Join(errs...); err != nil {
		return errors.New(op).Err(err).Msg(errMsgCloseSinks)
	}
	return nil
}
