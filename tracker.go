package rpalog

import (
	"runtime/debug"
	"time"
)

// stepObserver is implemented by loggers that feed step metrics.
type stepObserver interface {
	observeStep(step string, status Status, elapsed time.Duration)
}

// Track runs fn as the named step of the bot behind lg. It logs
// "--> Starting step: <step>" (START), then either
// "<-- Success: <step> (<secs>s)" (SUCCESS) or
// "!!! Error in: <step> (<secs>s): <err>" (ERROR, with the exception attached).
// The error returned by fn is returned as is. A panic in fn is logged and
// re-raised with its original value. A nil lg logs through Fallback().
func Track(lg Logger, step string, fn func() error) error {
	_, err := TrackValue(lg, step, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// TrackValue is Track for steps that produce a value. The value returned by fn
// is passed through unchanged, on success and on failure.
func TrackValue[T any](lg Logger, step string, fn func() (T, error)) (T, error) {
	lg = resolveLogger(lg)
	start := time.Now()

	lg.InfoWith().
		Func(step).
		Status(StatusStart).
		Msgf("--> Starting step: %s", step)

	defer func() {
		if r := recover(); r != nil {
			stepFailed(lg, step, time.Since(start), &panicError{value: r, stack: debug.Stack()})
			panic(r)
		}
	}()

	result, err := fn()
	elapsed := time.Since(start)
	if err != nil {
		stepFailed(lg, step, elapsed, err)
		return result, err
	}

	lg.InfoWith().
		Func(step).
		Status(StatusSuccess).
		Elapsed(elapsed).
		Msgf("<-- Success: %s (%.2fs)", step, elapsed.Seconds())
	observeStep(lg, step, StatusSuccess, elapsed)

	return result, nil
}

func stepFailed(lg Logger, step string, elapsed time.Duration, err error) {
	lg.ErrorWith().
		Func(step).
		Status(StatusError).
		Elapsed(elapsed).
		Exception(err).
		Msgf("!!! Error in: %s (%.2fs): %s", step, elapsed.Seconds(), err.Error())
	observeStep(lg, step, StatusError, elapsed)
}

func observeStep(lg Logger, step string, status Status, elapsed time.Duration) {
	if o, ok := lg.(stepObserver); ok {
		o.observeStep(step, status, elapsed)
	}
}

func resolveLogger(lg Logger) Logger {
	switch l := lg.(type) {
	case nil:
		return Fallback()
	case *BotLogger:
		if l == nil {
			return Fallback()
		}
	}
	return lg
}
