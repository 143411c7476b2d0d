package rpalog

import (
	"bytes"
	stderrs "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var jsonAPI = jsoniter.Config{
	EscapeHTML:  false,
	SortMapKeys: true,
}.Froze()

// keepPlainFields drops every structured field the text and console lines do
// not render. Extra fields and the error chain live in the JSON-lines sink only.
func keepPlainFields(evt map[string]interface{}) error {
	for key := range evt {
		switch key {
		case zerolog.TimestampFieldName, zerolog.LevelFieldName, zerolog.MessageFieldName, FieldException:
		default:
			delete(evt, key)
		}
	}
	return nil
}

// appendException writes an attached exception on the lines after the message.
func appendException(evt map[string]interface{}, buf *bytes.Buffer) error {
	exc, ok := evt[FieldException]
	if !ok {
		return nil
	}
	buf.WriteByte('\n')
	buf.WriteString(strings.TrimRight(fmt.Sprint(exc), "\n"))
	return nil
}

// sinkSet is the group of writers attached to one bot by one Provision call.
type sinkSet struct {
	writer   io.Writer
	closers  []io.Closer
	dir      string
	textPath string
	jsonPath string
}

func (s *sinkSet) close() error {
	if s == nil {
		return nil
	}
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return stderrs.Join(errs...)
}

// detached keeps the paths of s but drops its writers.
func (s *sinkSet) detached() *sinkSet {
	if s == nil {
		return nil
	}
	return &sinkSet{dir: s.dir, textPath: s.textPath, jsonPath: s.jsonPath}
}

// openSinks builds the writers for bot name under dir. File names carry the
// date of day. Both files are created up front so an unwritable directory
// fails here rather than on the first record.
func openSinks(cfg *Config, console io.Writer, name, dir string, day time.Time) (*sinkSet, error) {
	stamp := day.Format(fileDateFmt)
	set := &sinkSet{dir: dir}
	var writers []io.Writer

	if cfg.TextFileLogging {
		set.textPath = filepath.Join(dir, name+"_"+stamp+textFileExt)
		if err := touch(set.textPath); err != nil {
			return nil, err
		}
		f := rollingFile(cfg, set.textPath)
		set.closers = append(set.closers, f)
		writers = append(writers, newTextWriter(f))
	}
	if cfg.JSONFileLogging {
		set.jsonPath = filepath.Join(dir, name+"_"+stamp+jsonFileExt)
		if err := touch(set.jsonPath); err != nil {
			_ = set.close()
			return nil, err
		}
		f := rollingFile(cfg, set.jsonPath)
		set.closers = append(set.closers, f)
		writers = append(writers, &jsonLinesWriter{out: f})
	}
	if cfg.ConsoleLogging && console != nil {
		writers = append(writers, newConsoleWriter(console, name))
	}

	set.writer = zerolog.MultiLevelWriter(writers...)
	return set, nil
}

func touch(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

func rollingFile(cfg *Config, path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxBackups: cfg.LogFileMaxBackups,
		MaxAge:     cfg.LogFileMaxAgeDays,
		MaxSize:    cfg.LogFileMaxSizeMB,
	}
}

// newTextWriter formats "<timestamp> | <LEVEL padded to 8> | <message>",
// followed by the exception text when one is attached.
func newTextWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:             out,
		NoColor:         true,
		PartsOrder:      []string{zerolog.TimestampFieldName, zerolog.LevelFieldName, zerolog.MessageFieldName},
		FieldsExclude:   []string{FieldException},
		FormatPrepare:   keepPlainFields,
		FormatExtra:     appendException,
		FormatTimestamp: formatTextTime,
		FormatLevel: func(i interface{}) string {
			return fmt.Sprintf("| %-8s |", levelName(i))
		},
		FormatMessage: formatMessage,
	}
}

// newConsoleWriter formats "[<LEVEL>] <bot>: <message>".
func newConsoleWriter(out io.Writer, name string) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:           out,
		NoColor:       true,
		PartsOrder:    []string{zerolog.LevelFieldName, zerolog.MessageFieldName},
		FieldsExclude: []string{FieldException},
		FormatPrepare: keepPlainFields,
		FormatExtra:   appendException,
		FormatLevel: func(i interface{}) string {
			return fmt.Sprintf("[%s] %s:", levelName(i), name)
		},
		FormatMessage: formatMessage,
	}
}

func formatMessage(i interface{}) string {
	if i == nil {
		return emptyString
	}
	return fmt.Sprint(i)
}

func formatTextTime(i interface{}) string {
	s, ok := i.(string)
	if !ok {
		return fmt.Sprint(i)
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return s
	}
	return t.Format(textTimeFmt)
}

// levelName maps a zerolog level value to the upper-case names used in output.
func levelName(i interface{}) string {
	s, ok := i.(string)
	if !ok {
		return "???"
	}
	switch s {
	case zerolog.LevelWarnValue:
		return "WARNING"
	default:
		return strings.ToUpper(s)
	}
}

// jsonRecord is one line of the JSON-lines sink. Field order is fixed.
type jsonRecord struct {
	Timestamp  string                 `json:"timestamp"`
	Level      string                 `json:"level"`
	LoggerName string                 `json:"logger_name"`
	Function   string                 `json:"function"`
	Message    string                 `json:"message"`
	DurationS  float64                `json:"duration_s"`
	Status     string                 `json:"status"`
	Exception  *string                `json:"exception,omitempty"`
	Extra      map[string]interface{} `json:"extra,omitempty"`
}

// jsonLinesWriter re-encodes each zerolog event into a jsonRecord line.
type jsonLinesWriter struct {
	out io.Writer
}

func (w *jsonLinesWriter) Write(p []byte) (int, error) {
	var evt map[string]interface{}
	if err := jsonAPI.Unmarshal(p, &evt); err != nil {
		return 0, fmt.Errorf("cannot decode event: %w", err)
	}

	line, err := jsonAPI.Marshal(toJSONRecord(evt))
	if err != nil {
		return 0, fmt.Errorf("cannot encode record: %w", err)
	}
	line = append(line, '\n')
	if _, err = w.out.Write(line); err != nil {
		return 0, err
	}
	return len(p), nil
}

func toJSONRecord(evt map[string]interface{}) *jsonRecord {
	rec := &jsonRecord{Status: string(StatusInfo)}

	for key, val := range evt {
		switch key {
		case zerolog.TimestampFieldName:
			rec.Timestamp = fmt.Sprint(val)
		case zerolog.LevelFieldName:
			rec.Level = levelName(val)
		case zerolog.MessageFieldName:
			rec.Message = fmt.Sprint(val)
		case FieldLoggerName:
			rec.LoggerName = fmt.Sprint(val)
		case FieldFunction:
			rec.Function = fmt.Sprint(val)
		case FieldStatus:
			rec.Status = fmt.Sprint(val)
		case FieldDuration:
			if d, ok := val.(float64); ok {
				rec.DurationS = d
			}
		case FieldException:
			text := fmt.Sprint(val)
			rec.Exception = &text
		default:
			if rec.Extra == nil {
				rec.Extra = make(map[string]interface{})
			}
			rec.Extra[key] = val
		}
	}
	return rec
}

// sinkSwitch is the stable writer behind a bot's zerolog.Logger. Provision
// swaps the sinks underneath it; a write never straddles a swap.
type sinkSwitch struct {
	mu  sync.RWMutex
	cur *sinkSet
}

func (s *sinkSwitch) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil || s.cur.writer == nil {
		return len(p), nil
	}
	return s.cur.writer.Write(p)
}

func (s *sinkSwitch) swap(next *sinkSet) *sinkSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.cur
	s.cur = next
	return old
}

func (s *sinkSwitch) current() sinkSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil {
		return sinkSet{}
	}
	return *s.cur
}
