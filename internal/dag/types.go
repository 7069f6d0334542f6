package dag

import "sync"

// Graph holds named nodes and the edges between them. It is safe for
// concurrent use.
type Graph struct {
	mutex sync.RWMutex
	nodes map[string]*node
}

// node is only reachable through its ID.
type node struct {
	id string
	// deps are the nodes this one depends on; dependents depend on it.
	deps       map[string]*node
	dependents map[string]*node
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}
