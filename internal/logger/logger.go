package logger

import (
	"log/slog"
	"os"

	slogotel "github.com/remychantenay/slog-otel"
)

var LogLevel = new(slog.LevelVar)

var jsonHandler = slog.NewJSONHandler(
	os.Stderr,
	&slog.HandlerOptions{AddSource: true, Level: LogLevel},
)
var sloghandler = slogotel.NewOtelHandler(slogotel.WithNoTraceEvents(true))
var Handler = sloghandler(jsonHandler)
var Logger = slog.New(Handler)

func InitSlog() {
	slog.SetDefault(Logger)
	LogLevel.Set(slog.LevelInfo)
}

// Component returns the shared logger scoped to a named part of the app
func Component(name string) *slog.Logger {
	return Logger.With("component", name)
}

// SetLevel applies a configured slog level (debug=-4, info=0, warn=4, error=8)
func SetLevel(level int) {
	LogLevel.Set(slog.Level(level))
}
