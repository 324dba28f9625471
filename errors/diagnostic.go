package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Category is the severity of a diagnostic.
type Category uint8

const (
	// CategoryError marks problems that break the layout.
	CategoryError Category = iota
	// CategoryWarning marks suspicious but resolvable input.
	CategoryWarning
	// CategoryMessage marks informational findings.
	CategoryMessage
	// CategoryHint marks suggestions.
	CategoryHint
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryError:
		return "Error"
	case CategoryWarning:
		return "Warning"
	case CategoryMessage:
		return "Message"
	case CategoryHint:
		return "Hint"
	default:
		return "Unknown"
	}
}

// Label returns the upper-case form used by the plain-text formatter.
func (c Category) Label() string {
	return strings.ToUpper(c.String())
}

// Code identifies the rule that produced a diagnostic.
type Code string

const (
	// CodeSelectorSyntax indicates a scan or parse error in a selector expression.
	CodeSelectorSyntax Code = "selector-syntax"
	// CodeMarkupSyntax indicates the markup document is not well formed.
	CodeMarkupSyntax Code = "markup-syntax"
	// CodeRootMissing indicates the document has no root element.
	CodeRootMissing Code = "root-missing"

	// CodeElementUnknown indicates an element has no schema definition in its context.
	CodeElementUnknown Code = "element-unknown"
	// CodeAttributeRequired indicates a schema-mandated attribute is missing.
	CodeAttributeRequired Code = "attribute-required"
	// CodeAttributeNoEffect indicates an attribute matches no schema slot.
	CodeAttributeNoEffect Code = "attribute-no-effect"
	// CodeSpecialAttributeMissing indicates a required indeterminate attribute was not found.
	CodeSpecialAttributeMissing Code = "special-attribute-missing"
	// CodeValueInvalid indicates a value fails simple-type validation.
	CodeValueInvalid Code = "value-invalid"

	// CodeConstantUndeclared indicates a #constant reference has no declaration.
	CodeConstantUndeclared Code = "constant-undeclared"
	// CodeCaseMismatch indicates a reference resolved with different letter casing.
	CodeCaseMismatch Code = "case-mismatch"
	// CodeDescUnresolved indicates a desc path fragment could not be resolved.
	CodeDescUnresolved Code = "desc-unresolved"
	// CodeDescClassMismatch indicates a resolved desc has an unexpected class.
	CodeDescClassMismatch Code = "desc-class-mismatch"
	// CodePropertyBindNotAllowed indicates a property bind is used where the schema forbids it.
	CodePropertyBindNotAllowed Code = "property-bind-not-allowed"
	// CodePropertyUnresolved indicates the bound property does not exist on the target.
	CodePropertyUnresolved Code = "property-unresolved"
	// CodeStateUndeclared indicates a state group refers to an undeclared state.
	CodeStateUndeclared Code = "state-undeclared"

	// CodeHookupMissing indicates a required frame hookup is absent.
	CodeHookupMissing Code = "hookup-missing"
	// CodeHookupType indicates a hookup resolves to a frame of an incompatible class.
	CodeHookupType Code = "hookup-type"
	// CodeFileDescMissing indicates a file="X" override names an unknown file.
	CodeFileDescMissing Code = "file-desc-missing"
	// CodeFileDeclMissing indicates the overridden element does not exist in the file.
	CodeFileDeclMissing Code = "file-decl-missing"
	// CodeChildRedeclared indicates a name is declared twice in the same parent.
	CodeChildRedeclared Code = "child-redeclared"
	// CodeDescNotCreatable indicates a declaration could not be placed in the namespace.
	CodeDescNotCreatable Code = "desc-not-creatable"
)

// Diagnostic is a finding located by byte offsets in its owning document.
//
//nolint:errname // diagnostics are values first, errors second.
type Diagnostic struct {
	Code     Code
	Message  string
	Start    int
	End      int
	Category Category
}

// New builds a diagnostic spanning [start, end).
func New(category Category, code Code, start, end int, msg string) Diagnostic {
	return Diagnostic{Code: code, Message: msg, Start: start, End: end, Category: category}
}

// Newf formats a message and builds a diagnostic.
func Newf(category Category, code Code, start, end int, format string, args ...any) Diagnostic {
	return New(category, code, start, end, fmt.Sprintf(format, args...))
}

// Error formats the diagnostic with its category, code and span.
func (d *Diagnostic) Error() string {
	if d == nil {
		return "diagnostic <nil>"
	}
	return fmt.Sprintf("[%s] %s (%s at %d..%d)", d.Category.Label(), d.Message, d.Code, d.Start, d.End)
}

// List is an error that wraps one or more diagnostics.
type List []Diagnostic //nolint:errname // public API name.

// Error returns a compact summary of the diagnostics.
func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no diagnostics"
	case 1:
		return l[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", l[0].Error(), len(l)-1)
	}
}

// Shift returns a copy of l with every offset moved by delta.
// Selector diagnostics are expression-relative and are shifted by the
// offset of the attribute value in the document.
func (l List) Shift(delta int) List {
	if len(l) == 0 {
		return nil
	}
	out := make(List, len(l))
	for i, d := range l {
		d.Start += delta
		d.End += delta
		out[i] = d
	}
	return out
}

// Count reports how many diagnostics have the given category.
func (l List) Count(c Category) int {
	n := 0
	for _, d := range l {
		if d.Category == c {
			n++
		}
	}
	return n
}

// HasCode reports whether any diagnostic carries code.
func (l List) HasCode(code Code) bool {
	for _, d := range l {
		if d.Code == code {
			return true
		}
	}
	return false
}

// AsList extracts diagnostics from an error returned by this module.
func AsList(err error) (List, bool) {
	if err == nil {
		return nil, false
	}
	var list List
	if errors.As(err, &list) {
		return list, true
	}
	var listPtr *List
	if errors.As(err, &listPtr) && listPtr != nil {
		return *listPtr, true
	}
	return nil, false
}
