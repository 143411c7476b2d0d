package rpalog

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	fallbackOnce sync.Once
	fallback     *BotLogger
)

// Fallback returns the console-only logger used when a step is tracked
// without a logger. It writes "[LEVEL] GenericBot: message" to stderr at
// INFO and above and has no file sinks. It is shared, so its Close does nothing.
func Fallback() *BotLogger {
	fallbackOnce.Do(func() {
		fallback = newBotLogger(FallbackName, zerolog.InfoLevel, time.Now, nil)
		fallback.pinned = true
		fallback.attach(&sinkSet{writer: newConsoleWriter(os.Stderr, FallbackName)})
	})
	return fallback
}
