// Package deps turns the output of the cargo resolver into the normalized
// dependency list the rest of crategen works on.
//
// # Overview
//
// Cargo is the resolver oracle: given a project directory it computes the
// full dependency graph. [CargoResolver] runs `cargo metadata` and decodes
// its JSON into [Metadata]. [Normalize] then loads the graph into a
// [dag.DAG] and produces one [Package] per resolved package with:
//
//   - the dependency kinds (normal, build, dev) it is reached through
//   - whether cargo bound it to a local path or to an upstream registry
//   - its library target, if any
//   - the chain of edges that first pulled it in, for diagnostics
//
// # Roots and Filters
//
// By default the workspace members are the roots and are left out of the
// result: for third-party generation the only member is the synthetic
// project. The standard-library pipeline instead passes an explicit root
// ("test") which stays in the result even though nothing depends on it.
//
//	pkgs, err := deps.Normalize(md, deps.Options{
//	    Roots: []string{"test"},
//	    Kinds: deps.KindSet(0).With(deps.Normal),
//	})
//
// A kind filter keeps packages carrying at least one of the requested kinds.
// Nothing is filtered unless the caller asks for it.
//
// [dag.DAG]: github.com/matzehuels/crategen/pkg/dag
package deps
