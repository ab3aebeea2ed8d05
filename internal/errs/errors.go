// Package errs defines the fixed error taxonomy raised by template expansion,
// triple store management, and SPARQL evaluation.
//
// Every error here is recoverable by the caller; none are fatal to the
// process. Errors carry structured fields for programmatic inspection and
// also implement a human-readable Error() string.
package errs

import "fmt"

// TemplateNotFoundError is raised when expansion references an undefined
// template, either directly by IRI or via an unresolved prefixed name.
type TemplateNotFoundError struct {
	Name string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("template not found: %s", e.Name)
}

// NoTemplateForPrefixError is raised when a prefix resolves to an IRI that has
// no corresponding template, distinct from an unresolvable prefix.
type NoTemplateForPrefixError struct {
	Prefix   string
	Resolved string
}

func (e *NoTemplateForPrefixError) Error() string {
	return fmt.Sprintf("no template for prefix %q (resolved to %s)", e.Prefix, e.Resolved)
}

// MissingParameterColumnError is raised when an input batch lacks a required
// column and the parameter carries no default value.
type MissingParameterColumnError struct {
	Param string
}

func (e *MissingParameterColumnError) Error() string {
	return fmt.Sprintf("missing parameter column: %s", e.Param)
}

// UnknownVariableError is raised when an argument references a variable not
// bound at the call site (neither a caller dynamic column nor a static one).
type UnknownVariableError struct {
	Variable string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("unknown variable: %s", e.Variable)
}

// ColumnTypeMismatchError is raised when an inferred RDFNodeType is
// incompatible with a parameter's declared PType.
type ColumnTypeMismatchError struct {
	Column   string
	Inferred string
	Declared string
}

func (e *ColumnTypeMismatchError) Error() string {
	return fmt.Sprintf("column %q: inferred type %s incompatible with declared type %s", e.Column, e.Inferred, e.Declared)
}

// ConstantWrongTypeError is raised when a constant term fails its
// parameter's declared PType.
type ConstantWrongTypeError struct {
	Constant string
	Declared string
}

func (e *ConstantWrongTypeError) Error() string {
	return fmt.Sprintf("constant %s does not satisfy declared type %s", e.Constant, e.Declared)
}

// InvalidPredicateConstantError is raised when a static verb slot is not an
// IRI constant.
type InvalidPredicateConstantError struct {
	Constant string
}

func (e *InvalidPredicateConstantError) Error() string {
	return fmt.Sprintf("invalid predicate constant: %s (must be an IRI)", e.Constant)
}

// ListOutsideExpanderError is raised when a list constant appears in an
// argument not marked list_expand.
type ListOutsideExpanderError struct {
	Argument string
}

func (e *ListOutsideExpanderError) Error() string {
	return fmt.Sprintf("list constant used outside a list expander: %s", e.Argument)
}

// ListArgumentUnsupportedError is raised for a general List(...) argument,
// which this revision leaves unimplemented.
type ListArgumentUnsupportedError struct {
	Argument string
}

func (e *ListArgumentUnsupportedError) Error() string {
	return fmt.Sprintf("list arguments are not supported in this revision: %s", e.Argument)
}

// RemoveSpillFileError is raised when deduplication fails to unlink a
// replaced spill file.
type RemoveSpillFileError struct {
	Path string
	Err  error
}

func (e *RemoveSpillFileError) Error() string {
	return fmt.Sprintf("failed to remove spill file %s: %v", e.Path, e.Err)
}

func (e *RemoveSpillFileError) Unwrap() error { return e.Err }

// InconsistentDatatypesError is raised when Union/Extend produce conflicting
// variable types.
type InconsistentDatatypesError struct {
	Variable string
	Type1    string
	Type2    string
	Context  string
}

func (e *InconsistentDatatypesError) Error() string {
	return fmt.Sprintf("inconsistent datatypes for ?%s: %s vs %s (at %s)", e.Variable, e.Type1, e.Type2, e.Context)
}

// VariableNotFoundError is raised when a projection or expression references
// an unbound variable.
type VariableNotFoundError struct {
	Variable string
	Context  string
}

func (e *VariableNotFoundError) Error() string {
	return fmt.Sprintf("variable ?%s not found (at %s)", e.Variable, e.Context)
}

// ParseError wraps an error surfaced from the SPARQL textual parser
// collaborator.
type ParseError struct {
	Inner error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse error: %v", e.Inner) }
func (e *ParseError) Unwrap() error { return e.Inner }

// QueryTypeNotSupportedError is raised for ASK/DESCRIBE or unsupported
// SPARQL updates.
type QueryTypeNotSupportedError struct {
	Kind string
}

func (e *QueryTypeNotSupportedError) Error() string {
	return fmt.Sprintf("query type not supported: %s", e.Kind)
}
