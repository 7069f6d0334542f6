// Package template parses and evaluates the `${...}` template strings that
// may appear anywhere in an action's configuration.
//
// Templates use HCL template syntax. The following namespaces are available:
//
//	${actions.<kind>.<name>.<field>}  outputs of another action
//	${var.<name>}                     the action's merged variables
//	${project.name}                   the project name
//	${environment.name}               the active environment
//
// A small set of string and collection functions from go-cty's stdlib is
// available as well, e.g. ${upper(var.name)}.
package template
