package types

import (
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// TerminalHook mirrors error and warning log events to pterm so that
// failures stay visible when structured logs are redirected to a file.
type TerminalHook struct{}

// Run implements zerolog.Hook.
func (h TerminalHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	switch level {
	case zerolog.ErrorLevel, zerolog.FatalLevel:
		pterm.Error.Println(msg)
	case zerolog.WarnLevel:
		pterm.Warning.Println(msg)
	}
}
