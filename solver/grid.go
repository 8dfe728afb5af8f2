package solver

// Region classifies a grid node by the material that applies at it.
type Region int

const (
	RegionLayer1 Region = iota
	RegionInterface
	RegionLayer2
)

// Grid is the uniform node layout of the composite rod. Nodes 0..n1-1 belong
// to layer 1, node n1 is the interface, nodes n1+1..n-1 belong to layer 2.
// The spacing is uniform across both layers.
type Grid struct {
	n1 int
	n2 int
	n  int
	h  float64
}

func NewGrid(n1, n2 int, length float64) Grid {
	n := n1 + n2
	return Grid{
		n1: n1,
		n2: n2,
		n:  n,
		h:  length / float64(n),
	}
}

// N is the total node count.
func (g Grid) N() int { return g.n }

// H is the node spacing.
func (g Grid) H() float64 { return g.h }

// Interface is the index of the node shared by the two layers.
func (g Grid) Interface() int { return g.n1 }

// Region classifies node i. The grid only classifies; which blending rule
// applies at the interface is the assembler's decision.
func (g Grid) Region(i int) Region {
	switch {
	case i < g.n1:
		return RegionLayer1
	case i == g.n1:
		return RegionInterface
	default:
		return RegionLayer2
	}
}

// X is the spatial coordinate of node i.
func (g Grid) X(i int) float64 { return float64(i) * g.h }

// Coordinates returns the x position of every node, for rendering clients.
func (g Grid) Coordinates() []float64 {
	xs := make([]float64, g.n)
	for i := range xs {
		xs[i] = g.X(i)
	}
	return xs
}
