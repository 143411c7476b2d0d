package rpalog

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	smerrors "github.com/Station-Manager/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var schemaFields = []string{"timestamp", "level", "logger_name", "function", "message", "duration_s", "status"}

func requireSchema(t *testing.T, rec map[string]any) {
	t.Helper()
	for _, field := range schemaFields {
		require.Contains(t, rec, field)
	}
	_, ok := rec["duration_s"].(float64)
	require.True(t, ok, "duration_s must be a number")
	assert.Contains(t, []any{"START", "SUCCESS", "ERROR", "INFO"}, rec["status"])
}

func TestTrackValue_Success(t *testing.T) {
	reg, console := newTestRegistry(t)
	bot, err := reg.Provision("Financeiro_v1", "")
	require.NoError(t, err)

	began := time.Now()
	got, err := TrackValue(bot, "ExtractReport", func() (int, error) {
		time.Sleep(500 * time.Millisecond)
		return 500, nil
	})
	measured := time.Since(began).Seconds()

	require.NoError(t, err)
	assert.Equal(t, 500, got)

	records := readRecords(t, bot.JSONPath())
	require.Len(t, records, 2)
	for _, rec := range records {
		requireSchema(t, rec)
		assert.NotContains(t, rec, "exception")
		assert.Equal(t, "Financeiro_v1", rec["logger_name"])
		assert.Equal(t, "ExtractReport", rec["function"])
		assert.Equal(t, "INFO", rec["level"])
		assert.Equal(t, "2026-10-15T09:30:00.000000Z", rec["timestamp"])
	}

	start, done := records[0], records[1]
	assert.Equal(t, "START", start["status"])
	assert.Equal(t, "--> Starting step: ExtractReport", start["message"])
	assert.Equal(t, 0.0, start["duration_s"])

	assert.Equal(t, "SUCCESS", done["status"])
	duration := done["duration_s"].(float64)
	assert.GreaterOrEqual(t, duration, 0.5)
	assert.InDelta(t, measured, duration, 0.05)
	assert.Equal(t, fmt.Sprintf("<-- Success: ExtractReport (%.2fs)", duration), done["message"])

	lines := readLines(t, bot.TextPath())
	require.Len(t, lines, 2)
	assert.Equal(t, "2026-10-15 09:30:00.000 | INFO     | --> Starting step: ExtractReport", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2026-10-15 09:30:00.000 | INFO     | <-- Success: ExtractReport ("))

	consoleLines := strings.Split(strings.TrimSpace(console.String()), "\n")
	require.Len(t, consoleLines, 2)
	assert.Equal(t, "[INFO] Financeiro_v1: --> Starting step: ExtractReport", consoleLines[0])
	assert.True(t, strings.HasPrefix(consoleLines[1], "[INFO] Financeiro_v1: <-- Success: ExtractReport ("))
}

func TestTrack_Error(t *testing.T) {
	reg, console := newTestRegistry(t)
	bot, err := reg.Provision("RH_Bot", "")
	require.NoError(t, err)

	boom := errors.New("Planilha não encontrada na rede!")
	err = Track(bot, "ProcessVacations", func() error {
		bot.InfoWith().Msg("Reading vacation sheet...")
		return boom
	})

	// the same error value comes back, not a wrapper
	require.Error(t, err)
	assert.Same(t, boom, err)

	records := readRecords(t, bot.JSONPath())
	require.Len(t, records, 3)
	for _, rec := range records {
		requireSchema(t, rec)
	}

	assert.Equal(t, "START", records[0]["status"])

	assert.Equal(t, "INFO", records[1]["status"])
	assert.Equal(t, "Reading vacation sheet...", records[1]["message"])
	assert.Equal(t, "TestTrack_Error", records[1]["function"])

	failed := records[2]
	assert.Equal(t, "ERROR", failed["level"])
	assert.Equal(t, "ERROR", failed["status"])
	assert.Equal(t, "ProcessVacations", failed["function"])
	assert.Contains(t, failed["message"], "!!! Error in: ProcessVacations (")
	assert.Contains(t, failed["message"], "s): Planilha não encontrada na rede!")
	exception, ok := failed["exception"].(string)
	require.True(t, ok)
	assert.Contains(t, exception, "Planilha não encontrada na rede!")
	assert.GreaterOrEqual(t, failed["duration_s"].(float64), 0.0)

	// the exception follows the message line in the text and console sinks
	lines := readLines(t, bot.TextPath())
	require.Len(t, lines, 4)
	assert.Contains(t, lines[2], " | ERROR    | !!! Error in: ProcessVacations (")
	assert.Equal(t, "*errors.errorString: Planilha não encontrada na rede!", lines[3])
	assert.Contains(t, console.String(), "[ERROR] RH_Bot: !!! Error in: ProcessVacations (")
	assert.Contains(t, console.String(), "\n*errors.errorString: Planilha não encontrada na rede!\n")
}

func TestTrack_ErrorChainIsRendered(t *testing.T) {
	reg, _ := newTestRegistry(t)
	bot, err := reg.Provision("RH_Bot", "")
	require.NoError(t, err)

	inner := smerrors.New("share.Open").Msg("network share unreachable")
	outer := smerrors.New("sheet.Load").Err(inner).Msg("vacation sheet unavailable")

	err = Track(bot, "LoadSheet", func() error { return outer })
	require.ErrorIs(t, err, outer)

	records := readRecords(t, bot.JSONPath())
	require.Len(t, records, 2)
	exception := records[1]["exception"].(string)
	assert.Contains(t, exception, "vacation sheet unavailable")
	assert.Contains(t, exception, "caused by: network share unreachable")
}

func TestTrack_Panic(t *testing.T) {
	reg, _ := newTestRegistry(t)
	bot, err := reg.Provision("RH_Bot", "")
	require.NoError(t, err)

	assert.PanicsWithValue(t, "sheet exploded", func() {
		_ = Track(bot, "Explode", func() error {
			panic("sheet exploded")
		})
	})

	records := readRecords(t, bot.JSONPath())
	require.Len(t, records, 2)
	assert.Equal(t, "START", records[0]["status"])
	assert.Equal(t, "ERROR", records[1]["status"])
	assert.Contains(t, records[1]["message"], "sheet exploded")
	exception := records[1]["exception"].(string)
	assert.True(t, strings.HasPrefix(exception, "panic: sheet exploded"))
	assert.Contains(t, exception, "goroutine")
}

func TestTrack_ReprovisionedBotWritesOnePair(t *testing.T) {
	reg, console := newTestRegistry(t)
	_, err := reg.Provision("Financeiro_v1", "")
	require.NoError(t, err)
	bot, err := reg.Provision("Financeiro_v1", "")
	require.NoError(t, err)

	require.NoError(t, Track(bot, "LoginSAP", func() error { return nil }))

	assert.Len(t, readLines(t, bot.TextPath()), 2)
	records := readRecords(t, bot.JSONPath())
	require.Len(t, records, 2)
	assert.Equal(t, "START", records[0]["status"])
	assert.Equal(t, "SUCCESS", records[1]["status"])
	assert.Equal(t, 2, strings.Count(console.String(), "\n"))
}

func TestTrack_StartAlwaysHasTerminal(t *testing.T) {
	reg, _ := newTestRegistry(t)
	bot, err := reg.Provision("Financeiro_v1", "")
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		step := fmt.Sprintf("step_%d", i)
		_ = Track(bot, step, func() error {
			if i%2 == 1 {
				return fmt.Errorf("odd step %d", i)
			}
			return nil
		})
	}

	records := readRecords(t, bot.JSONPath())
	require.Len(t, records, 12)
	for i := 0; i < len(records); i += 2 {
		start, end := records[i], records[i+1]
		assert.Equal(t, "START", start["status"])
		assert.Equal(t, start["function"], end["function"])
		assert.Contains(t, []any{"SUCCESS", "ERROR"}, end["status"])
	}
}

func TestTrack_NilLoggerUsesFallback(t *testing.T) {
	var typedNil *BotLogger

	assert.NotPanics(t, func() {
		require.NoError(t, Track(nil, "Anonymous", func() error { return nil }))
		got, err := TrackValue(typedNil, "AnonymousValue", func() (string, error) { return "ok", nil })
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
	})
	assert.Same(t, Fallback(), resolveLogger(nil))
	assert.Same(t, Fallback(), resolveLogger(typedNil))
	assert.Equal(t, FallbackName, Fallback().Name())
	assert.Empty(t, Fallback().TextPath())
}

func TestTrack_ContextLogger(t *testing.T) {
	reg, _ := newTestRegistry(t)
	bot, err := reg.Provision("Financeiro_v1", "")
	require.NoError(t, err)

	lg := bot.With().Str("run_id", "r-1").Logger()
	require.NoError(t, Track(lg, "LoginSAP", func() error { return nil }))

	records := readRecords(t, bot.JSONPath())
	require.Len(t, records, 2)
	extra, ok := records[1]["extra"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "r-1", extra["run_id"])
	assert.Equal(t, "Financeiro_v1", records[1]["logger_name"])
}

func TestTrack_Metrics(t *testing.T) {
	promReg := prometheus.NewRegistry()
	reg, _ := newTestRegistry(t, WithMetrics(promReg))
	bot, err := reg.Provision("RH_Bot", "")
	require.NoError(t, err)

	_ = Track(bot, "ProcessVacations", func() error { return errors.New("nope") })
	_ = Track(bot, "ProcessVacations", func() error { return nil })
	_ = Track(bot, "ProcessVacations", func() error { return nil })

	total := reg.metrics.total
	assert.Equal(t, 1.0, testutil.ToFloat64(total.WithLabelValues("RH_Bot", "ProcessVacations", "ERROR")))
	assert.Equal(t, 2.0, testutil.ToFloat64(total.WithLabelValues("RH_Bot", "ProcessVacations", "SUCCESS")))
	assert.Equal(t, 2, testutil.CollectAndCount(reg.metrics.duration))

	// a second registry on the same registerer reuses the collectors
	again, _ := newTestRegistry(t, WithMetrics(promReg))
	assert.Same(t, reg.metrics.total, again.metrics.total)
}

func TestTrack_PairsUnderEveryAcceptedLevel(t *testing.T) {
	for _, level := range []string{"info", "warn", "error", "debug"} {
		t.Run(level, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.BaseDir = t.TempDir()
			cfg.Level = level

			reg, err := NewRegistry(cfg, WithConsole(nil), WithClock(fixedClock))
			if level != "info" {
				// a minimum above INFO would drop START and SUCCESS but keep ERROR
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer reg.Close()

			bot, err := reg.Provision("RH_Bot", "")
			require.NoError(t, err)
			_ = Track(bot, "Fails", func() error { return errors.New("nope") })
			_ = Track(bot, "Works", func() error { return nil })

			records := readRecords(t, bot.JSONPath())
			require.Len(t, records, 4)
			assert.Equal(t, []any{"START", "ERROR", "START", "SUCCESS"},
				[]any{records[0]["status"], records[1]["status"], records[2]["status"], records[3]["status"]})
		})
	}
}

func TestFallback_CloseIsNoop(t *testing.T) {
	fb := Fallback()
	require.NoError(t, fb.Close())
	require.NoError(t, fb.Close())

	assert.False(t, fb.closed.Load())
	assert.NotNil(t, fb.out.current().writer)
	assert.Same(t, fb, Fallback())
}
