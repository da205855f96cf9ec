// Package logging initializes the module's zerolog logger, ported from
// the teacher's log/main.go (per-user temp logfile, DebugLevel, short
// field names). The daemon, IPC client, and cmd/ entry points all call
// Init once at startup; components below that take a *zerolog.Logger by
// value or read the global github.com/rs/zerolog/log logger, matching
// the teacher's own use of the package-level logger throughout core/.
package logging

import (
	"fmt"
	stdLog "log"
	"os"
	"os/user"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options configures Init. The zero value logs to a per-user temp file at
// DebugLevel, matching the teacher's InitLogger default.
type Options struct {
	// Component names the process writing the log (e.g. "crossmacrod",
	// "crossmacroctl"), used in the log file name so daemon and client
	// logs don't collide when run on the same host.
	Component string
	// Level overrides the default zerolog.DebugLevel.
	Level zerolog.Level
	// Out overrides the destination; when nil, Init opens a temp file.
	Out *os.File
}

// Init wires zerolog's global level and field names, and routes the
// standard log package through a zerolog.ConsoleWriter — exactly the
// teacher's InitLogger, generalized to take an Options instead of hardcoding
// "term" and DebugLevel.
func Init(opts Options) (string, error) {
	if opts.Component == "" {
		opts.Component = "crossmacro"
	}

	file := opts.Out
	fileName := "(provided writer)"
	if file == nil {
		usr, err := user.Current()
		if err != nil {
			return "", fmt.Errorf("logging: resolve current user: %w", err)
		}
		fileName = filepath.Join(os.TempDir(), fmt.Sprintf("%s-%s.log", opts.Component, usr.Username))
		f, err := os.OpenFile(fileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return "", fmt.Errorf("logging: open log file: %w", err)
		}
		file = f
	}

	level := opts.Level
	if level == 0 {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimestampFieldName = "t"
	zerolog.LevelFieldName = "l"
	zerolog.MessageFieldName = "m"

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: file}).With().Str("component", opts.Component).Logger()

	stdLog.SetFlags(stdLog.Lshortfile)
	stdLog.SetOutput(log.Logger)

	stdLog.Printf("%s logger init: %s", opts.Component, fileName)
	return fileName, nil
}
