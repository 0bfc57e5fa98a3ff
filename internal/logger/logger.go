// Package logger is a deliberately small diagnostics sink, grounded on
// esbuild's internal/logger.Log (same Log/Msg/AddError/AddWarning shape)
// but trimmed to what this linker needs: it collects messages and does
// not itself render ANSI color or terminal width — that concern moved to
// pterm in cmd/scopelink.
package logger

import "fmt"

// MsgKind classifies a logged message.
type MsgKind uint8

const (
	MsgError MsgKind = iota
	MsgWarning
	MsgDebug
)

func (k MsgKind) String() string {
	switch k {
	case MsgError:
		return "error"
	case MsgWarning:
		return "warning"
	default:
		return "debug"
	}
}

// Msg is one logged diagnostic.
type Msg struct {
	Kind     MsgKind
	ModuleID string
	Text     string
}

// Log accumulates diagnostics for one build. It is passed explicitly
// through every pass rather than held as package state, which is what
// lets tests construct a fresh Log per case.
type Log struct {
	msgs *[]Msg
}

// New constructs an empty Log.
func New() Log {
	msgs := make([]Msg, 0, 4)
	return Log{msgs: &msgs}
}

func (l Log) add(kind MsgKind, moduleID, text string) {
	*l.msgs = append(*l.msgs, Msg{Kind: kind, ModuleID: moduleID, Text: text})
}

// AddError logs a fatal-grade diagnostic. Logging one does not itself
// stop the pipeline — callers that need to abort still return an error.
func (l Log) AddError(moduleID, text string) {
	l.add(MsgError, moduleID, text)
}

// AddErrorf is AddError with fmt.Sprintf formatting.
func (l Log) AddErrorf(moduleID, format string, args ...any) {
	l.AddError(moduleID, fmt.Sprintf(format, args...))
}

// AddWarning logs a non-fatal diagnostic, e.g. an unresolved import
// specifier that the linker recovers from by dropping the binding.
func (l Log) AddWarning(moduleID, text string) {
	l.add(MsgWarning, moduleID, text)
}

// AddWarningf is AddWarning with fmt.Sprintf formatting.
func (l Log) AddWarningf(moduleID, format string, args ...any) {
	l.AddWarning(moduleID, fmt.Sprintf(format, args...))
}

// AddDebug logs an informational message, used for dev-mode tracing.
func (l Log) AddDebug(moduleID, text string) {
	l.add(MsgDebug, moduleID, text)
}

// Msgs returns every message logged so far, in emission order.
func (l Log) Msgs() []Msg {
	return *l.msgs
}

// HasErrors reports whether any MsgError has been logged.
func (l Log) HasErrors() bool {
	for _, m := range *l.msgs {
		if m.Kind == MsgError {
			return true
		}
	}
	return false
}
