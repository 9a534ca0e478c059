package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

var ProgramLevel = new(slog.LevelVar)

// SetupLogger initialiserer loggeren med JSON-format til stdout, og i
// tillegg til en varig loggfil under logs/ slik at kjøringen kan ettergås.
// Klarer vi ikke å åpne loggfilen logger vi bare til stdout.
func SetupLogger(name string, debug bool) {
	ProgramLevel.Set(slog.LevelInfo)
	if debug {
		ProgramLevel.Set(slog.LevelDebug)
	}

	var w io.Writer = os.Stdout
	if f := openLogFile(name); f != nil {
		w = io.MultiWriter(os.Stdout, f)
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     ProgramLevel,
		AddSource: false,
	}))
	slog.SetDefault(logger)
}

func openLogFile(name string) *os.File {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return nil
	}
	f, err := os.OpenFile(filepath.Join("logs", name+".log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil
	}
	return f
}
