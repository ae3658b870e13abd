package analysis

import (
	"github.com/philipparndt/gomesh/pkg/geometry"
	"github.com/philipparndt/gomesh/pkg/mesh"
)

// Topology is a watertightness diagnostic. Vertices are welded by exact
// position before edges are matched.
type Topology struct {
	Vertices int
	Edges    int
	// BoundaryEdges are used by a single facet
	BoundaryEdges int
	// NonManifoldEdges are shared by more than two facets
	NonManifoldEdges int
	// InconsistentEdges are shared by two facets traversing them in the same
	// direction, i.e. neighbouring facets with opposite winding
	InconsistentEdges int
}

// Closed reports whether the mesh is a closed, consistently oriented
// 2-manifold, the precondition under which Volume is the enclosed volume.
func (t Topology) Closed() bool {
	return t.Edges > 0 && t.BoundaryEdges == 0 && t.NonManifoldEdges == 0 && t.InconsistentEdges == 0
}

type edgeKey struct {
	a, b int
}

type edgeUse struct {
	count int
	// balance counts a->b traversals minus b->a traversals
	balance int
}

// CheckTopology matches facet edges to classify the surface. Edges that
// collapse to a single welded vertex are ignored.
func CheckTopology(m *mesh.Mesh) Topology {
	ids := make(map[geometry.Vector3]int)
	id := func(v geometry.Vector3) int {
		if i, ok := ids[v]; ok {
			return i
		}
		i := len(ids)
		ids[v] = i
		return i
	}

	edges := make(map[edgeKey]*edgeUse)
	for _, t := range m.All() {
		corners := [3]int{id(t.V0), id(t.V1), id(t.V2)}
		for k := range 3 {
			from, to := corners[k], corners[(k+1)%3]
			if from == to {
				continue
			}
			key, dir := edgeKey{from, to}, 1
			if from > to {
				key, dir = edgeKey{to, from}, -1
			}
			use, ok := edges[key]
			if !ok {
				use = &edgeUse{}
				edges[key] = use
			}
			use.count++
			use.balance += dir
		}
	}

	topo := Topology{Vertices: len(ids), Edges: len(edges)}
	for _, use := range edges {
		switch {
		case use.count == 1:
			topo.BoundaryEdges++
		case use.count > 2:
			topo.NonManifoldEdges++
		case use.balance != 0:
			topo.InconsistentEdges++
		}
	}
	return topo
}
