// Package bots holds the scripted demo bots driven by cmd/rpademo.
package bots

import (
	"errors"
	"time"

	"github.com/Station-Manager/rpalog"
)

const (
	FinanceName = "Financeiro_v1"
	HRName      = "RH_Bot"
)

// ErrSheetNotFound is the scripted failure of the HR bot.
var ErrSheetNotFound = errors.New("Planilha não encontrada na rede!")

// Pause sleeps for a scripted delay. Tests replace it to run instantly.
type Pause func(time.Duration)

// Finance logs into SAP and extracts a report.
type Finance struct {
	Logger rpalog.Logger
	Pause  Pause
}

// NewFinance provisions the Financeiro_v1 logger under baseDir.
func NewFinance(reg *rpalog.Registry, baseDir string, pause Pause) (*Finance, error) {
	lg, err := reg.Provision(FinanceName, baseDir)
	if err != nil {
		return nil, err
	}
	return &Finance{Logger: lg, Pause: orSleep(pause)}, nil
}

func (f *Finance) LoginSAP(user string) error {
	return rpalog.Track(f.Logger, "LoginSAP", func() error {
		f.Pause(500 * time.Millisecond)
		f.Logger.InfoWith().Str("user", user).Msgf("Typing credentials for %s...", user)
		return nil
	})
}

func (f *Finance) ExtractReport() (int, error) {
	return rpalog.TrackValue(f.Logger, "ExtractReport", func() (int, error) {
		f.Pause(time.Second)
		rows := 500
		f.Logger.InfoWith().Int("rows", rows).Msgf("Report extracted with %d rows.", rows)
		return rows, nil
	})
}

// HR processes vacation sheets and always fails.
type HR struct {
	Logger rpalog.Logger
	Pause  Pause
}

// NewHR provisions the RH_Bot logger under baseDir.
func NewHR(reg *rpalog.Registry, baseDir string, pause Pause) (*HR, error) {
	lg, err := reg.Provision(HRName, baseDir)
	if err != nil {
		return nil, err
	}
	return &HR{Logger: lg, Pause: orSleep(pause)}, nil
}

func (h *HR) ProcessVacations() error {
	return rpalog.Track(h.Logger, "ProcessVacations", func() error {
		h.Pause(500 * time.Millisecond)
		h.Logger.InfoWith().Msg("Reading vacation sheet...")
		return ErrSheetNotFound
	})
}

func orSleep(p Pause) Pause {
	if p == nil {
		return time.Sleep
	}
	return p
}
