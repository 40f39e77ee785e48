// Package ndgerrors defines the structured error kinds used across the
// markdown pipeline, modeled on the teacher's pipeline.HarvxError: an error
// that carries both a human-readable message and a process exit code, so
// the top-level build driver can map failures to the right status without
// string-matching error text.
package ndgerrors

import "fmt"

// Kind identifies which class of failure a BuildError represents, per
// spec.md §7.
type Kind int

const (
	// KindConfig covers config parse/validation failures, unknown override
	// keys, and malformed sidebar/option rule regexes. Fatal.
	KindConfig Kind = iota
	// KindIO covers file read/write failures. Fatal.
	KindIO
	// KindIncludeCycle covers MAX_INCLUDE_DEPTH exceeded. Fatal for the
	// enclosing top-level page.
	KindIncludeCycle
	// KindMissingInclude covers an unreadable listed include path. Non-fatal.
	KindMissingInclude
	// KindTemplate covers a missing template with no embedded fallback, or a
	// template-engine rendering failure. Fatal.
	KindTemplate
	// KindHighlighter covers a single code block failing to highlight.
	// Non-fatal.
	KindHighlighter
	// KindOptionValidation covers an {option} role referencing an unknown
	// option when validation is enabled. Non-fatal.
	KindOptionValidation
)

// String returns a short label for the kind, used in log output.
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindIO:
		return "io"
	case KindIncludeCycle:
		return "include-cycle"
	case KindMissingInclude:
		return "missing-include"
	case KindTemplate:
		return "template"
	case KindHighlighter:
		return "highlighter"
	case KindOptionValidation:
		return "option-validation"
	default:
		return "unknown"
	}
}

// Fatal reports whether errors of this kind should abort the build, per
// spec.md §7's fatal/non-fatal classification.
func (k Kind) Fatal() bool {
	switch k {
	case KindMissingInclude, KindHighlighter, KindOptionValidation:
		return false
	default:
		return true
	}
}

// Exit codes mirror the teacher's pipeline.ExitCode constants.
const (
	ExitSuccess = 0
	ExitError   = 1
)

// BuildError is a structured error carrying a Kind, optional file-path
// context, and an underlying cause. It implements error and supports
// errors.Is/errors.As via Unwrap.
type BuildError struct {
	Kind Kind
	Path string
	Msg  string
	Err  error
}

// New constructs a BuildError of the given kind.
func New(kind Kind, path, msg string, err error) *BuildError {
	return &BuildError{Kind: kind, Path: path, Msg: msg, Err: err}
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	prefix := e.Kind.String()
	if e.Path != "" {
		prefix = fmt.Sprintf("%s[%s]", prefix, e.Path)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Msg)
}

// Unwrap returns the underlying cause, if any.
func (e *BuildError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code appropriate for this error: 0 is
// never returned here (a BuildError always represents a failure); fatal
// kinds return ExitError, non-fatal kinds also return ExitError since a
// BuildError of a non-fatal kind should only ever be logged, never
// propagated to the top level.
func (e *BuildError) ExitCode() int {
	return ExitError
}
