package shaped

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType   = "invalid_type"
	CodeRequired      = "required"
	CodeTooSmall      = "too_small"
	CodeTooBig        = "too_big"
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	CodePattern       = "pattern"
	CodeInvalidEnum   = "invalid_enum"
	CodeInvalidFormat = "invalid_format"
	CodeUnionMismatch = "union_mismatch"
)

// Issue represents a single data-level validation entry.
type Issue struct {
	Path    string // Dotted/indexed field path (for example: profile.tags[2]).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, format names, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"min":1, "max":10, "got":42})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at profile.age
		fmt.Fprintf(b, "%s at %s", it.Code, renderPath(it.Path))
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

func renderPath(p string) string {
	if p == "" {
		return "(root)"
	}
	return p
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// Stage identifies the compilation phase a SchemaError originates from.
type Stage int

const (
	StageLex Stage = iota
	StageParse
	StageSemantic
)

// String returns the phase name.
func (s Stage) String() string {
	switch s {
	case StageLex:
		return "lex"
	case StageParse:
		return "parse"
	case StageSemantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// SchemaError kinds per stage. Any SchemaError is fatal: Compile returns a
// usable Schema only when it returns nil error.
const (
	KindUnexpectedChar       = "unexpected_char"
	KindUnterminatedString   = "unterminated_string"
	KindInvalidNumber        = "invalid_number"
	KindUnexpectedToken      = "unexpected_token"
	KindUnexpectedEOF        = "unexpected_eof"
	KindUnknownType          = "unknown_type"
	KindDuplicateField       = "duplicate_field"
	KindConstraintNotAllowed = "constraint_not_allowed"
	KindBadRange             = "bad_range"
	KindBadLengthBound       = "bad_length_bound"
	KindBadPattern           = "bad_pattern"
	KindBadEnum              = "bad_enum"
	KindBadDefault           = "bad_default"
)

// SchemaError reports a failure while compiling schema source text. Offset is
// the byte offset into the source for lex/parse errors (-1 when unknown);
// Path is the dotted field path for semantic errors.
type SchemaError struct {
	Stage   Stage
	Offset  int
	Path    string
	Kind    string
	Message string
	// Issues carries the underlying validation issues for bad_default.
	Issues Issues
}

// Error renders "stage: kind at <where>: message".
func (e *SchemaError) Error() string {
	where := ""
	switch e.Stage {
	case StageSemantic:
		where = " at " + renderPath(e.Path)
	default:
		if e.Offset >= 0 {
			where = fmt.Sprintf(" at offset %d", e.Offset)
		}
	}
	return fmt.Sprintf("%s: %s%s: %s", e.Stage, e.Kind, where, e.Message)
}

// Unwrap exposes embedded Issues (bad_default) to errors.As.
func (e *SchemaError) Unwrap() error {
	if len(e.Issues) > 0 {
		return e.Issues
	}
	return nil
}

// AsSchemaError extracts a *SchemaError from an error.
func AsSchemaError(err error) (*SchemaError, bool) {
	if err == nil {
		return nil, false
	}
	var se *SchemaError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
