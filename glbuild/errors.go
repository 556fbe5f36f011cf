package glbuild

import (
	"errors"
	"strings"
)

// ErrUnknownPlaceholder is returned when a Symbol is set on a placeholder
// the function's template does not declare.
var ErrUnknownPlaceholder = errors.New("unknown placeholder")

// UnboundPlaceholderError is returned when a template placeholder has no
// Symbol assigned by the time the function is rendered.
type UnboundPlaceholderError struct {
	Function    string
	Placeholder string
}

func (e *UnboundPlaceholderError) Error() string {
	return "function " + e.Function + ": placeholder $" + e.Placeholder + " has no symbol bound"
}

// MissingRequiredHookError is returned when a mandatory hook has no function able to
// produce its value, or when a declared dependency cannot be found in the component list.
type MissingRequiredHookError struct {
	Hook string
	// Component is set when the hook was required by another component's dependency.
	Component string
	// RequiredBy is the name of the component that declared the dependency.
	RequiredBy string
}

func (e *MissingRequiredHookError) Error() string {
	if e.RequiredBy != "" {
		return "component " + e.RequiredBy + " requires hook " + e.Hook + " from component " + e.Component + " which is not present"
	}
	return "required hook " + e.Hook + " has no contributing function"
}

// NameCollisionError is returned when two distinct symbols or functions resolve to the same final name.
type NameCollisionError struct {
	Name   string
	First  string
	Second string
}

func (e *NameCollisionError) Error() string {
	return "name " + e.Name + " collision between " + e.First + " and " + e.Second
}

// InvalidSymbolTypeError is returned when a symbol's storage class or type
// is not compatible with how the placeholder or function is used.
type InvalidSymbolTypeError struct {
	Function    string
	Placeholder string
	Reason      string
}

func (e *InvalidSymbolTypeError) Error() string {
	var sb strings.Builder
	sb.WriteString("function ")
	sb.WriteString(e.Function)
	if e.Placeholder != "" {
		sb.WriteString(": placeholder $")
		sb.WriteString(e.Placeholder)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Reason)
	return sb.String()
}

// DependencyCycleError is returned when components or functions reference each other in a cycle.
type DependencyCycleError struct {
	// Cycle lists the participants in reference order, first element repeated at the end.
	Cycle []string
}

func (e *DependencyCycleError) Error() string {
	return "dependency cycle: " + strings.Join(e.Cycle, " -> ")
}
