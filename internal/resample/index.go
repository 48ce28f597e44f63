// Package resample maps output pixels to their nearest mesh cell and node.
package resample

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"

	"sandboxar/internal/frame"
	"sandboxar/internal/transform"
)

// MaxDistance is the model-space distance beyond which a pixel lies outside
// the simulation footprint.
const MaxDistance = 500.0

// Index is the per-pixel nearest-neighbour lookup, built once per mesh.
type Index struct {
	W, H int

	Cell     []int32
	Node     []int32
	CellDist []float64
	NodeDist []float64
	CellMask []bool
	NodeMask []bool

	cells, nodes int
}

// Build queries every pixel of a w×h raster, mapped to model space through
// imageToModel, against k-d trees over the cell centres and node positions.
func Build(mesh frame.Mesh, imageToModel transform.Homography, w, h int) (*Index, error) {
	if mesh.Cells() == 0 || len(mesh.CellY) != mesh.Cells() {
		return nil, &frame.DomainError{Field: "mesh.cells", Reason: "cannot index an empty or ragged cell set"}
	}
	if mesh.Nodes() == 0 || len(mesh.NodeY) != mesh.Nodes() {
		return nil, &frame.DomainError{Field: "mesh.nodes", Reason: "cannot index an empty or ragged node set"}
	}
	if w <= 0 || h <= 0 {
		return nil, &frame.DomainError{Field: "size", Reason: "output raster has no pixels"}
	}
	cellTree := kdtree.New(newSites(mesh.CellX, mesh.CellY), false)
	nodeTree := kdtree.New(newSites(mesh.NodeX, mesh.NodeY), false)

	n := w * h
	idx := &Index{
		W: w, H: h,
		Cell:     make([]int32, n),
		Node:     make([]int32, n),
		CellDist: make([]float64, n),
		NodeDist: make([]float64, n),
		CellMask: make([]bool, n),
		NodeMask: make([]bool, n),
		cells:    mesh.Cells(),
		nodes:    mesh.Nodes(),
	}
	for v := 0; v < h; v++ {
		for u := 0; u < w; u++ {
			i := v*w + u
			x, y := imageToModel.Apply(float64(u), float64(v))
			q := site{x: x, y: y, index: -1}

			c, d2 := cellTree.Nearest(q)
			idx.Cell[i] = c.(site).index
			idx.CellDist[i] = math.Sqrt(d2)
			idx.CellMask[i] = idx.CellDist[i] > MaxDistance

			nd, nd2 := nodeTree.Nearest(q)
			idx.Node[i] = nd.(site).index
			idx.NodeDist[i] = math.Sqrt(nd2)
			idx.NodeMask[i] = idx.NodeDist[i] > MaxDistance
		}
	}
	return idx, nil
}

// Stale reports whether the mesh no longer matches the one the index was
// built for.
func (idx *Index) Stale(mesh frame.Mesh) bool {
	return idx.cells != mesh.Cells() || idx.nodes != mesh.Nodes()
}

// MaskedCells counts pixels outside the cell footprint.
func (idx *Index) MaskedCells() int {
	n := 0
	for _, m := range idx.CellMask {
		if m {
			n++
		}
	}
	return n
}

// site is a mesh position carrying its original array index through the
// k-d tree's in-place partitioning.
type site struct {
	x, y  float64
	index int32
}

func (s site) coord(d kdtree.Dim) float64 {
	if d == 0 {
		return s.x
	}
	return s.y
}

func (s site) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return s.coord(d) - c.(site).coord(d)
}

func (s site) Dims() int { return 2 }

// Distance is the squared Euclidean distance, as kdtree expects.
func (s site) Distance(c kdtree.Comparable) float64 {
	o := c.(site)
	dx, dy := s.x-o.x, s.y-o.y
	return dx*dx + dy*dy
}

type sites []site

func newSites(xs, ys []float64) sites {
	s := make(sites, len(xs))
	for i := range xs {
		s[i] = site{x: xs[i], y: ys[i], index: int32(i)}
	}
	return s
}

func (s sites) Index(i int) kdtree.Comparable         { return s[i] }
func (s sites) Len() int                              { return len(s) }
func (s sites) Pivot(d kdtree.Dim) int                { return plane{sites: s, Dim: d}.Pivot() }
func (s sites) Slice(start, end int) kdtree.Interface { return s[start:end] }

type plane struct {
	kdtree.Dim
	sites
}

func (p plane) Less(i, j int) bool {
	return p.sites[i].coord(p.Dim) < p.sites[j].coord(p.Dim)
}
func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.sites = p.sites[start:end]
	return p
}
func (p plane) Swap(i, j int) {
	p.sites[i], p.sites[j] = p.sites[j], p.sites[i]
}
