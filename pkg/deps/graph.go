package deps

import "github.com/matzehuels/crategen/pkg/dag"

// Graph rebuilds a graph from normalized packages. Edges to packages not
// in pkgs are dropped.
func Graph(pkgs []Package) *dag.DAG {
	g := dag.New(nil)
	for _, p := range pkgs {
		_ = g.AddNode(dag.Node{ID: p.ID(), Meta: dag.Metadata{
			"kinds": p.Kinds.String(),
			"local": p.IsLocal,
		}})
	}
	for _, p := range pkgs {
		for _, e := range p.Dependencies {
			to := e.Package + " " + e.Version.String()
			if _, ok := g.Node(to); !ok {
				continue
			}
			_ = g.AddEdge(dag.Edge{From: p.ID(), To: to, Meta: dag.Metadata{"kinds": e.Kinds.String()}})
		}
	}
	return g
}
