// Package ioformat implements the external-collaborator I/O spec.md §6
// names: the problem/solution JSON codec and the GEXF graph-export writer.
// None of this is solver logic — it is the thin translation layer between
// the wire formats a loader/CLI deals with and the pkg/domain value types
// the rest of the pipeline is built on.
package ioformat
