// Package dag provides the directed graph that holds a resolved crate
// dependency graph.
//
// # Overview
//
// Nodes are resolved packages keyed by the resolver's package ID; edges are
// dependency relations annotated with [Metadata] (dependency kinds, the
// name the dependent uses for the crate). Cargo only permits cycles through
// dev-dependencies, and callers build the graph without those edges, so
// [DAG.Validate] rejects any cycle as resolver corruption.
//
// # Basic Usage
//
//	g := dag.New(nil)
//	_ = g.AddNode(dag.Node{ID: "app 0.1.0"})
//	_ = g.AddNode(dag.Node{ID: "serde 1.0.195"})
//	_ = g.AddEdge(dag.Edge{From: "app 0.1.0", To: "serde 1.0.195"})
//
// [DAG.ShortestPaths] returns, for every node reachable from a set of roots,
// the chain of edges that first reached it. The chain is what diagnostics
// print to explain why a crate was pulled in.
//
// # Visualisation
//
// [ToDOT] converts a graph to Graphviz DOT and [RenderSVG] renders DOT with
// the embedded Graphviz from github.com/goccy/go-graphviz.
//
// # Concurrency
//
// DAG instances are not safe for concurrent mutation. Read-only use from
// several goroutines is fine once the graph is built.
package dag
