// Package buildutil extracts call arguments from buildtools Starlark ASTs.
//
// Platform definition files are Starlark: a flat list of calls such as
// platform(name = "el", major_only = True). These helpers read keyword
// arguments from those calls without evaluating the file.
package buildutil

import (
	"github.com/bazelbuild/buildtools/build"
)

// Attr returns the right-hand side of the keyword argument called name.
func Attr(call *build.CallExpr, name string) (build.Expr, bool) {
	for _, arg := range call.List {
		assign, ok := arg.(*build.AssignExpr)
		if !ok {
			continue
		}
		lhs, ok := assign.LHS.(*build.Ident)
		if !ok || lhs.Name != name {
			continue
		}
		return assign.RHS, true
	}
	return nil, false
}

// String extracts a string attribute from a function call by name.
// If name is empty and the call has positional arguments, returns the first
// positional string argument.
// Returns empty string if the attribute is not found or not a string.
func String(call *build.CallExpr, name string) string {
	if name == "" {
		if len(call.List) > 0 {
			if str, ok := call.List[0].(*build.StringExpr); ok {
				return str.Value
			}
		}
		return ""
	}

	rhs, ok := Attr(call, name)
	if !ok {
		return ""
	}
	if str, ok := rhs.(*build.StringExpr); ok {
		return str.Value
	}
	return ""
}

// Bool extracts a boolean attribute from a function call by name.
// The second result is false if the attribute is missing or is not
// True or False.
func Bool(call *build.CallExpr, name string) (value, ok bool) {
	rhs, found := Attr(call, name)
	if !found {
		return false, false
	}
	ident, isIdent := rhs.(*build.Ident)
	if !isIdent {
		return false, false
	}
	switch ident.Name {
	case "True":
		return true, true
	case "False":
		return false, true
	}
	return false, false
}

// KeywordNames returns the keyword argument names of a call, in order.
// Positional arguments are skipped.
func KeywordNames(call *build.CallExpr) []string {
	var names []string
	for _, arg := range call.List {
		assign, ok := arg.(*build.AssignExpr)
		if !ok {
			continue
		}
		if lhs, ok := assign.LHS.(*build.Ident); ok {
			names = append(names, lhs.Name)
		}
	}
	return names
}

// HasPositional reports whether the call has any positional argument.
func HasPositional(call *build.CallExpr) bool {
	for _, arg := range call.List {
		if _, ok := arg.(*build.AssignExpr); !ok {
			return true
		}
	}
	return false
}

// FuncName returns the function name from a CallExpr.
// Returns empty string if the call is not a simple function call
// (e.g., method calls like foo.bar()).
func FuncName(call *build.CallExpr) string {
	if ident, ok := call.X.(*build.Ident); ok {
		return ident.Name
	}
	return ""
}
