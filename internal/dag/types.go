package dag

import "sync"

// Graph is a set of nodes and the dependencies between them.
// All operations on the graph are concurrency-safe.
type Graph struct {
	mutex sync.RWMutex
	nodes map[string]*node
}

// node is un-exported so callers address nodes by id only.
type node struct {
	id string
	// deps are the nodes this node depends on (predecessors).
	deps map[string]*node
	// dependents are the nodes that depend on this node (successors).
	dependents map[string]*node
}
