package rpalog

import (
	stderrs "errors"
	"fmt"
	"regexp"
	"runtime"
	"strings"

	smerrors "github.com/Station-Manager/errors"
	"github.com/rs/zerolog"
)

// parseLevel parses a string log level into a zerolog.Level.
// Returns zerolog.NoLevel and an error if parsing fails.
func parseLevel(level string) (zerolog.Level, error) {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, err
	}
	return l, nil
}

// buildErrorChain walks an error's cause chain and returns:
//   - chain: outermost -> innermost error messages
//   - ops: operation identifiers for DetailedError links ("" if not available)
//   - root: the innermost error message
//   - rootOp: the innermost operation identifier if available
//
// The traversal prefers Station-Manager DetailedError.Cause() and then
// falls back to stdlib errors.Unwrap. It guards against excessive depth
// and repeated messages to avoid cycles.
func buildErrorChain(err error) (chain []string, ops []string, root string, rootOp string) {
	const maxDepth = 50
	visited := 0
	seen := map[string]bool{}

	for err != nil && visited < maxDepth {
		visited++

		if dErr, ok := smerrors.AsDetailedError(err); ok && dErr != nil {
			chain = append(chain, dErr.Error())
			ops = append(ops, string(dErr.Op()))
			err = dErr.Cause()
			continue
		}

		msg := err.Error()
		if seen[msg] {
			break
		}
		seen[msg] = true
		chain = append(chain, msg)
		ops = append(ops, "")
		err = stderrs.Unwrap(err)
	}

	if len(chain) > 0 {
		root = chain[len(chain)-1]
	}
	if len(ops) > 0 {
		rootOp = ops[len(ops)-1]
	}
	return
}

// joinChain returns a single string for the error chain separated by " -> ".
func joinChain(chain []string) string {
	if len(chain) == 0 {
		return ""
	}
	return strings.Join(chain, " -> ")
}

// panicError carries a recovered panic value through the logging path.
type panicError struct {
	value interface{}
	stack []byte
}

func (p *panicError) Error() string {
	return fmt.Sprint(p.value)
}

// exceptionText renders err for the exception field: its type and message,
// followed by one "caused by" line per wrapped cause.
func exceptionText(err error) string {
	var pe *panicError
	if stderrs.As(err, &pe) {
		return fmt.Sprintf("panic: %v\n\n%s", pe.value, strings.TrimRight(string(pe.stack), "\n"))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%T: %s", err, err.Error())
	chain, _, _, _ := buildErrorChain(err)
	for i := 1; i < len(chain); i++ {
		b.WriteString("\ncaused by: ")
		b.WriteString(chain[i])
	}
	return b.String()
}

var closureSuffix = regexp.MustCompile(`^(func\d+|\d+)$`)

// callerFunc returns the bare name of the function skip frames up the stack,
// e.g. "LoginSAP" for "example.com/bots.(*Finance).LoginSAP.func1".
func callerFunc(skip int) string {
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return emptyString
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return emptyString
	}
	return shortFuncName(fn.Name())
}

func shortFuncName(full string) string {
	full = strings.ReplaceAll(full, "[...]", "")
	if i := strings.LastIndex(full, "/"); i >= 0 {
		full = full[i+1:]
	}
	parts := strings.Split(full, ".")
	for i := len(parts) - 1; i > 0; i-- {
		if !closureSuffix.MatchString(parts[i]) {
			return parts[i]
		}
	}
	return full
}
