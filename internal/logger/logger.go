package logger

import (
	"io"
	"log/slog"
	"os"
)

var ProgramLevel = new(slog.LevelVar)

// SetupLogger installs a JSON slog handler on stdout at INFO.
func SetupLogger() {
	SetupLoggerTo(os.Stdout)
}

// SetupLoggerTo is SetupLogger with a custom destination.
func SetupLoggerTo(w io.Writer) {
	ProgramLevel.Set(slog.LevelInfo)

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     ProgramLevel,
		AddSource: false,
	}))
	slog.SetDefault(logger)
}

// SetDebug lowers the level to DEBUG when debug is true.
func SetDebug(debug bool) {
	if debug {
		ProgramLevel.Set(slog.LevelDebug)
	}
}
