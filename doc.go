// Package rpalog provides per-bot structured logging and step tracking for
// robotic-process-automation bots, built on rs/zerolog.
//
// Key features
//   - One logger per bot name, provisioned through an explicit Registry
//   - Three independently formatted sinks per bot: a plain-text file, a
//     JSON-lines file and the console
//   - Step tracking via Track/TrackValue: START, then SUCCESS or ERROR with
//     the elapsed duration; results and errors pass through unchanged
//   - Rolling files via lumberjack, optional Prometheus step metrics
//   - Error history enrichment: for any Err/AnErr, the logger includes the
//     full error chain (outermost -> root), the root cause string, a joined
//     human-readable history and the Station-Manager DetailedError ops.
//
// Typical usage
//
//	reg, err := rpalog.NewRegistry(rpalog.DefaultConfig())
//	if err != nil { panic(err) }
//	defer reg.Close()
//
//	lg, err := reg.Provision("Financeiro_v1", "meus_logs_rpa")
//	if err != nil { panic(err) }
//
//	rows, err := rpalog.TrackValue(lg, "extract_report", func() (int, error) {
//		lg.InfoWith().Msg("report extracted")
//		return 500, nil
//	})
package rpalog
