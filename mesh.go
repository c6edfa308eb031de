package satswarm

// Topology names the adjacency pattern connecting nodes in a Mesh Arena
// (spec §4.5).
type Topology uint8

const (
	TopologyGrid Topology = iota
	TopologyTorus
	TopologyDense
)

func (t Topology) String() string {
	switch t {
	case TopologyTorus:
		return "torus"
	case TopologyDense:
		return "dense"
	default:
		return "grid"
	}
}

// Mesh is the static adjacency structure connecting a fixed population of
// nodes (spec §4.5 "Mesh Arena", grounded on the reference project's
// Arena::grid/torus/dense constructors). Node 0 is always the designated
// seed activated at simulation start.
type Mesh struct {
	Topology  Topology
	Rows      int
	Cols      int
	neighbors [][]NodeId
}

// NumNodes returns the total node population.
func (m *Mesh) NumNodes() int { return len(m.neighbors) }

// Neighbors returns the node ids adjacent to id.
func (m *Mesh) Neighbors(id NodeId) []NodeId { return m.neighbors[id] }

// NewGrid builds a rows*cols rectangular mesh with 4-neighbor (N/S/E/W)
// adjacency and no wraparound; edge and corner nodes have fewer neighbors.
func NewGrid(rows, cols int) (*Mesh, error) {
	if rows <= 0 || cols <= 0 {
		return nil, inputErrorf("grid topology requires positive rows and cols, got %dx%d", rows, cols)
	}
	m := &Mesh{Topology: TopologyGrid, Rows: rows, Cols: cols}
	m.neighbors = make([][]NodeId, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			id := gridIndex(cols, r, c)
			var adj []NodeId
			if r > 0 {
				adj = append(adj, gridIndex(cols, r-1, c))
			}
			if r < rows-1 {
				adj = append(adj, gridIndex(cols, r+1, c))
			}
			if c > 0 {
				adj = append(adj, gridIndex(cols, r, c-1))
			}
			if c < cols-1 {
				adj = append(adj, gridIndex(cols, r, c+1))
			}
			m.neighbors[id] = adj
		}
	}
	return m, nil
}

// NewTorus builds a rows*cols mesh identical to NewGrid but with wraparound
// edges, so every node has exactly 4 neighbors.
func NewTorus(rows, cols int) (*Mesh, error) {
	if rows <= 0 || cols <= 0 {
		return nil, inputErrorf("torus topology requires positive rows and cols, got %dx%d", rows, cols)
	}
	m := &Mesh{Topology: TopologyTorus, Rows: rows, Cols: cols}
	m.neighbors = make([][]NodeId, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			id := gridIndex(cols, r, c)
			adj := []NodeId{
				gridIndex(cols, (r-1+rows)%rows, c),
				gridIndex(cols, (r+1)%rows, c),
				gridIndex(cols, r, (c-1+cols)%cols),
				gridIndex(cols, r, (c+1)%cols),
			}
			m.neighbors[id] = adj
		}
	}
	return m, nil
}

// NewDense builds a complete graph over n nodes: every node is adjacent to
// every other node.
func NewDense(n int) (*Mesh, error) {
	if n <= 0 {
		return nil, inputErrorf("dense topology requires a positive node count, got %d", n)
	}
	m := &Mesh{Topology: TopologyDense, Rows: 1, Cols: n}
	m.neighbors = make([][]NodeId, n)
	for i := 0; i < n; i++ {
		adj := make([]NodeId, 0, n-1)
		for j := 0; j < n; j++ {
			if j != i {
				adj = append(adj, NodeId(j))
			}
		}
		m.neighbors[i] = adj
	}
	return m, nil
}

func gridIndex(cols, row, col int) NodeId { return NodeId(row*cols + col) }
