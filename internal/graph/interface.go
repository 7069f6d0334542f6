package graph

import (
	"github.com/specialistvlad/actionref/internal/actions"
)

// EdgeKind tells why one action depends on another.
type EdgeKind string

const (
	// EdgeDependency comes from the `dependencies` key.
	EdgeDependency EdgeKind = "dependency"
	// EdgeBuild comes from the `build` key.
	EdgeBuild EdgeKind = "build"
	// EdgeTemplate comes from a `${actions...}` template reference.
	EdgeTemplate EdgeKind = "template"
)

// Edge is a dependency of To on From.
type Edge struct {
	From  actions.Reference
	To    actions.Reference
	Kinds []EdgeKind
}

// Graph is a read-only view of the action dependency graph.
//
// # Usage Patterns
//
// **Output resolution** walks Order() so every action is resolved after the
// actions it references.
//
// **The graph command** prints Order() with DependenciesOf() for each action.
//
// Implementations MUST be safe for concurrent reads.
type Graph interface {
	// Action returns the action with the given reference.
	Action(ref actions.Reference) (*actions.Action, bool)

	// DependenciesOf returns the actions that ref directly depends on, sorted
	// by reference.
	DependenciesOf(ref actions.Reference) ([]*actions.Action, error)

	// DependentsOf returns the actions that directly depend on ref, sorted by
	// reference.
	DependentsOf(ref actions.Reference) ([]*actions.Action, error)

	// Edges returns the incoming edges of ref with the reasons they exist.
	Edges(ref actions.Reference) []Edge

	// Order returns every action after all of its dependencies. The order is
	// deterministic.
	Order() ([]*actions.Action, error)
}
