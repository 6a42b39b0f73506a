package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// New builds the application logger for env. Local runs get a
// human-readable console writer.
func New(env string, w io.Writer) (zerolog.Logger, error) {
	if w == nil {
		w = os.Stdout
	}
	zerolog.TimestampFieldName = "timestamp"

	var level zerolog.Level
	switch env {
	case EnvLocal:
		level = zerolog.TraceLevel
		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = w
		w = consoleWriter
	case EnvDev:
		level = zerolog.DebugLevel
	case EnvProd:
		level = zerolog.InfoLevel
	default:
		return zerolog.Nop(), fmt.Errorf("unknown env: %s", env)
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Logger(), nil
}

// Component tags l with the name of the subsystem using it.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
