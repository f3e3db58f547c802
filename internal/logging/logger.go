package logging

import (
	"log/slog"
	"os"
)

// Setup installs a JSON stdout logger. Development builds log at debug.
func Setup(env string) {
	slog.SetDefault(slog.New(NewStdoutHandler(env)))
}

func NewStdoutHandler(env string) slog.Handler {
	level := slog.LevelInfo
	if env == "development" {
		level = slog.LevelDebug
	}
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
}
