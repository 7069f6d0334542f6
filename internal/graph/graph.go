package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/specialistvlad/actionref/internal/actions"
	"github.com/specialistvlad/actionref/internal/ctxlog"
	"github.com/specialistvlad/actionref/internal/dag"
	"github.com/specialistvlad/actionref/internal/schema"
)

// Manager is the reference implementation of Graph.
type Manager struct {
	dag     *dag.Graph
	actions map[string]*actions.Action
	edges   map[string]map[string][]EdgeKind // to -> from -> kinds
}

var _ Graph = (*Manager)(nil)

// Build creates the dependency graph of validated actions. It fails if an
// edge points at a missing action or if the graph contains a cycle.
func Build(ctx context.Context, list []*actions.Action) (*Manager, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Building action graph.", "actions", len(list))

	m := &Manager{
		dag:     dag.New(),
		actions: make(map[string]*actions.Action, len(list)),
		edges:   make(map[string]map[string][]EdgeKind),
	}

	for _, a := range list {
		id := a.Ref().String()
		if _, dup := m.actions[id]; dup {
			return nil, fmt.Errorf("duplicate action %s", id)
		}
		m.actions[id] = a
		m.dag.AddNode(id)
	}

	for _, a := range list {
		for _, dep := range a.Dependencies {
			if err := m.link(dep, a, EdgeDependency); err != nil {
				return nil, err
			}
		}
		if a.Build != "" {
			if err := m.link(actions.Reference{Kind: schema.KindBuild, Name: a.Build}, a, EdgeBuild); err != nil {
				return nil, err
			}
		}
		for _, ts := range a.Templates {
			refs, diags := ts.Template.ActionRefs()
			if diags.HasErrors() {
				return nil, fmt.Errorf("action %s, key %s: %w", a.Ref(), ts.Path, diags)
			}
			for _, ref := range refs {
				from := actions.Reference{Kind: ref.Kind, Name: ref.Name}
				if from == a.Ref() {
					continue
				}
				if err := m.link(from, a, EdgeTemplate); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := m.dag.DetectCycles(); err != nil {
		return nil, fmt.Errorf("invalid action graph: %w", err)
	}

	logger.Debug("Action graph built.", "nodes", m.dag.Len())
	return m, nil
}

func (m *Manager) link(from actions.Reference, to *actions.Action, kind EdgeKind) error {
	fromID, toID := from.String(), to.Ref().String()
	if !m.dag.HasNode(fromID) {
		return fmt.Errorf("action %s depends on %s, which does not exist", toID, fromID)
	}
	if err := m.dag.AddEdge(fromID, toID); err != nil {
		return fmt.Errorf("action %s: %w", toID, err)
	}

	if m.edges[toID] == nil {
		m.edges[toID] = make(map[string][]EdgeKind)
	}
	for _, k := range m.edges[toID][fromID] {
		if k == kind {
			return nil
		}
	}
	m.edges[toID][fromID] = append(m.edges[toID][fromID], kind)
	return nil
}

func (m *Manager) Action(ref actions.Reference) (*actions.Action, bool) {
	a, ok := m.actions[ref.String()]
	return a, ok
}

func (m *Manager) DependenciesOf(ref actions.Reference) ([]*actions.Action, error) {
	ids, err := m.dag.Dependencies(ref.String())
	if err != nil {
		return nil, err
	}
	return m.lookup(ids), nil
}

func (m *Manager) DependentsOf(ref actions.Reference) ([]*actions.Action, error) {
	ids, err := m.dag.Dependents(ref.String())
	if err != nil {
		return nil, err
	}
	return m.lookup(ids), nil
}

func (m *Manager) Edges(ref actions.Reference) []Edge {
	incoming := m.edges[ref.String()]
	edges := make([]Edge, 0, len(incoming))
	for fromID, kinds := range incoming {
		edges = append(edges, Edge{
			From:  m.actions[fromID].Ref(),
			To:    ref,
			Kinds: append([]EdgeKind(nil), kinds...),
		})
	}
	sort.Slice(edges, func(i, j int) bool {
		return edges[i].From.Less(edges[j].From)
	})
	return edges
}

func (m *Manager) Order() ([]*actions.Action, error) {
	ids, err := m.dag.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	return m.lookup(ids), nil
}

// lookup maps node IDs back to actions, preserving their order.
func (m *Manager) lookup(ids []string) []*actions.Action {
	out := make([]*actions.Action, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.actions[id])
	}
	return out
}
