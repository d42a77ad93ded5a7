package observability

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the root logger for a binary. format is "json" or "console".
func NewLogger(level, format string, out io.Writer) (zerolog.Logger, error) {
	parsedLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("failed to parse log level: %w", err)
	}
	if out == nil {
		out = os.Stderr
	}

	switch format {
	case "", "json":
	case "console":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	return zerolog.New(out).Level(parsedLevel).With().Timestamp().Logger(), nil
}
