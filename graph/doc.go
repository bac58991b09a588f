// Package graph defines the static shape of a workflow: named nodes, the
// tool each node runs, and the routing table that picks the next node.
//
// A Graph is built once through New, which checks that the start node exists,
// and is immutable afterwards. Definitions can be read from JSON, YAML or HCL
// with Parse and LoadFile.
package graph
