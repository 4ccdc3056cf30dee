package tt

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a font decoding error.
type ErrorKind int

const (
	// OutOfBounds signals that a read would have exceeded buffer limits.
	// Always fatal to the specific decode in progress.
	OutOfBounds ErrorKind = iota
	// MalformedFont signals that the font header or table directory is
	// structurally invalid. Fatal to the whole load.
	MalformedFont
	// MissingTable signals that a table required by an operation is absent.
	// Fatal only to operations needing that table.
	MissingTable
	// MalformedTable signals that a table is present but its contents
	// violate the fixed layout expected for its version.
	MalformedTable
	// InvalidGlyphID signals a glyph index at or beyond the glyph count
	// declared by table 'maxp'.
	InvalidGlyphID
	// CompositeCycle signals a composite glyph referencing itself,
	// directly or through intermediate components.
	CompositeCycle
	// CompositeTooDeep signals composite nesting beyond the supported depth.
	CompositeTooDeep
)

// String returns the name of an error kind.
func (k ErrorKind) String() string {
	switch k {
	case OutOfBounds:
		return "OutOfBounds"
	case MalformedFont:
		return "MalformedFont"
	case MissingTable:
		return "MissingTable"
	case MalformedTable:
		return "MalformedTable"
	case InvalidGlyphID:
		return "InvalidGlyphID"
	case CompositeCycle:
		return "CompositeCycle"
	case CompositeTooDeep:
		return "CompositeTooDeep"
	}
	return "UNKNOWN"
}

// ErrorSeverity represents the severity level of a font decoding error.
type ErrorSeverity int

const (
	// SeverityCritical indicates a severe error that makes the font unusable or unreliable.
	SeverityCritical ErrorSeverity = iota
	// SeverityMajor indicates a significant error that may affect functionality but doesn't prevent usage.
	SeverityMajor
	// SeverityMinor indicates a minor issue that can be safely ignored in most cases.
	SeverityMinor
)

// String returns a human-readable representation of the error severity.
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityMajor:
		return "MAJOR"
	case SeverityMinor:
		return "MINOR"
	default:
		return "UNKNOWN"
	}
}

// FontError represents an error encountered while decoding font data.
// It carries enough context to diagnose a bad font without re-parsing:
// the table involved, the glyph index (if any) and the byte offset.
type FontError struct {
	Kind     ErrorKind     // Classification of the error
	Table    Tag           // Table where the error occurred (zero if the directory itself)
	Glyph    GlyphIndex    // Glyph involved, for per-glyph failures
	Issue    string        // Human-readable description of the issue
	Severity ErrorSeverity // Severity level of the error
	Offset   uint32        // Byte offset where the error occurred (0 if unknown)
}

// Error implements the error interface.
func (e FontError) Error() string {
	loc := e.Kind.String()
	if e.Table != 0 {
		loc = fmt.Sprintf("%s/%s", e.Table, e.Kind)
	}
	if e.Offset > 0 {
		return fmt.Sprintf("[%s] %s at offset %d: %s", e.Severity, loc, e.Offset, e.Issue)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, loc, e.Issue)
}

// HasKind reports whether err is (or wraps) a FontError of the given kind.
func HasKind(err error, kind ErrorKind) bool {
	var ferr FontError
	if errors.As(err, &ferr) {
		return ferr.Kind == kind
	}
	return false
}

// --- Constructors ----------------------------------------------------------

func errOutOfBounds(table Tag, offset uint32, issue string) FontError {
	return FontError{
		Kind:     OutOfBounds,
		Table:    table,
		Issue:    issue,
		Severity: SeverityCritical,
		Offset:   offset,
	}
}

func errMalformedFont(offset uint32, format string, args ...any) FontError {
	return FontError{
		Kind:     MalformedFont,
		Issue:    fmt.Sprintf(format, args...),
		Severity: SeverityCritical,
		Offset:   offset,
	}
}

func errMissingTable(table Tag) FontError {
	return FontError{
		Kind:     MissingTable,
		Table:    table,
		Issue:    "table not present in font",
		Severity: SeverityMajor,
	}
}

func errMalformedTable(table Tag, offset uint32, format string, args ...any) FontError {
	return FontError{
		Kind:     MalformedTable,
		Table:    table,
		Issue:    fmt.Sprintf(format, args...),
		Severity: SeverityCritical,
		Offset:   offset,
	}
}

func errInvalidGlyph(gid GlyphIndex, numGlyphs int) FontError {
	return FontError{
		Kind:     InvalidGlyphID,
		Glyph:    gid,
		Issue:    fmt.Sprintf("glyph index %d outside of range [0, %d)", gid, numGlyphs),
		Severity: SeverityMajor,
	}
}

func errCompositeCycle(gid GlyphIndex) FontError {
	return FontError{
		Kind:     CompositeCycle,
		Table:    T("glyf"),
		Glyph:    gid,
		Issue:    fmt.Sprintf("composite glyph %d references itself", gid),
		Severity: SeverityCritical,
	}
}

func errCompositeTooDeep(gid GlyphIndex) FontError {
	return FontError{
		Kind:     CompositeTooDeep,
		Table:    T("glyf"),
		Glyph:    gid,
		Issue:    fmt.Sprintf("composite nesting at glyph %d exceeds depth %d", gid, MaxCompositeDepth),
		Severity: SeverityCritical,
	}
}

// --- Warnings --------------------------------------------------------------

// FontWarning represents a non-critical issue encountered during font parsing.
// Warnings indicate potential problems but do not prevent font usage. Stale
// table checksums, which are common in real-world fonts, are the typical case.
type FontWarning struct {
	Table  Tag    // Table where the warning occurred
	Issue  string // Human-readable description of the warning
	Offset uint32 // Byte offset where the warning occurred (0 if unknown)
}

// String returns a human-readable representation of the warning.
func (w FontWarning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("[WARNING] %s at offset %d: %s", w.Table, w.Offset, w.Issue)
	}
	return fmt.Sprintf("[WARNING] %s: %s", w.Table, w.Issue)
}

// errorCollector accumulates warnings during font parsing.
// This is an internal helper used by the parser to collect issues as they
// are discovered without aborting the load.
type errorCollector struct {
	warnings []FontWarning
}

// addWarning records a parsing warning.
func (ec *errorCollector) addWarning(table Tag, issue string, offset uint32) {
	ec.warnings = append(ec.warnings, FontWarning{
		Table:  table,
		Issue:  issue,
		Offset: offset,
	})
}

// hasWarnings returns true if any warnings have been recorded.
func (ec *errorCollector) hasWarnings() bool {
	return len(ec.warnings) > 0
}
