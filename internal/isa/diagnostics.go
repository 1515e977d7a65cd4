package isa

import "fmt"

// DiagnosticPhase names which pipeline stage raised a diagnostic.
type DiagnosticPhase int

const (
	PhaseLex DiagnosticPhase = iota
	PhaseParse
	PhaseInclude
	PhaseValidate
	PhaseSemantics
)

func (p DiagnosticPhase) String() string {
	switch p {
	case PhaseLex:
		return "lex"
	case PhaseParse:
		return "parse"
	case PhaseInclude:
		return "include"
	case PhaseValidate:
		return "validate"
	case PhaseSemantics:
		return "semantics"
	default:
		return "unknown"
	}
}

// DiagnosticLevel grades the severity of an IsaDiagnostic.
type DiagnosticLevel int

const (
	LevelWarning DiagnosticLevel = iota
	LevelError
)

func (l DiagnosticLevel) String() string {
	if l == LevelError {
		return "error"
	}
	return "warning"
}

// IsaDiagnostic is one problem found while lexing, parsing, resolving
// includes or validating a machine description.
type IsaDiagnostic struct {
	Phase   DiagnosticPhase
	Level   DiagnosticLevel
	Span    SourceSpan
	Message string
}

// FormatHuman renders a diagnostic the way the teacher's debug monitor
// renders a trace line: a single line with position, level and phase
// tagged up front.
func (d IsaDiagnostic) FormatHuman() string {
	return fmt.Sprintf("%s: %s [%s/%s]: %s", d.Span.Start.String(), d.Level, d.Phase, d.Phase, d.Message)
}

// Diagnostics collects IsaDiagnostic values across a compilation pass.
type Diagnostics struct {
	items []IsaDiagnostic
}

func (d *Diagnostics) Add(phase DiagnosticPhase, level DiagnosticLevel, span SourceSpan, format string, args ...interface{}) {
	d.items = append(d.items, IsaDiagnostic{
		Phase:   phase,
		Level:   level,
		Span:    span,
		Message: fmt.Sprintf(format, args...),
	})
}

func (d *Diagnostics) Errorf(phase DiagnosticPhase, span SourceSpan, format string, args ...interface{}) {
	d.Add(phase, LevelError, span, format, args...)
}

func (d *Diagnostics) Warnf(phase DiagnosticPhase, span SourceSpan, format string, args ...interface{}) {
	d.Add(phase, LevelWarning, span, format, args...)
}

func (d *Diagnostics) HasErrors() bool {
	for _, it := range d.items {
		if it.Level == LevelError {
			return true
		}
	}
	return false
}

func (d *Diagnostics) Items() []IsaDiagnostic { return d.items }
