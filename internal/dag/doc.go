// Package dag provides a small, concurrency-safe directed acyclic graph of
// string IDs. It knows nothing about actions; the graph package builds the
// action dependency graph on top of it.
package dag
