package graph

import (
	"math"
	"sort"
)

// Point is a position in galactic coordinates, in light years.
type Point struct {
	X, Y, Z float64
}

// DistanceTo returns the euclidean distance between two points.
func (p Point) DistanceTo(o Point) float64 {
	dx, dy, dz := p.X-o.X, p.Y-o.Y, p.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Volume is an axis-aligned box.
type Volume struct {
	Min, Max Point
}

// GalaxyVolume covers every inhabited system in the dataset.
var GalaxyVolume = Volume{
	Min: Point{X: -2700, Y: -1000, Z: -1400},
	Max: Point{X: 1600, Y: 1200, Z: 4000},
}

// Contains reports whether p lies inside v (inclusive).
func (v Volume) Contains(p Point) bool {
	return p.X >= v.Min.X && p.X <= v.Max.X &&
		p.Y >= v.Min.Y && p.Y <= v.Max.Y &&
		p.Z >= v.Min.Z && p.Z <= v.Max.Z
}

// distanceSq is the squared distance from p to the closest point of v.
func (v Volume) distanceSq(p Point) float64 {
	axis := func(c, lo, hi float64) float64 {
		switch {
		case c < lo:
			return lo - c
		case c > hi:
			return c - hi
		}
		return 0
	}
	dx := axis(p.X, v.Min.X, v.Max.X)
	dy := axis(p.Y, v.Min.Y, v.Max.Y)
	dz := axis(p.Z, v.Min.Z, v.Max.Z)
	return dx*dx + dy*dy + dz*dz
}

func (v Volume) center() Point {
	return Point{
		X: (v.Min.X + v.Max.X) / 2,
		Y: (v.Min.Y + v.Max.Y) / 2,
		Z: (v.Min.Z + v.Max.Z) / 2,
	}
}

// octant returns the i-th child box (bit 0 = x, bit 1 = y, bit 2 = z upper half).
func (v Volume) octant(i int) Volume {
	c := v.center()
	out := v
	if i&1 != 0 {
		out.Min.X = c.X
	} else {
		out.Max.X = c.X
	}
	if i&2 != 0 {
		out.Min.Y = c.Y
	} else {
		out.Max.Y = c.Y
	}
	if i&4 != 0 {
		out.Min.Z = c.Z
	} else {
		out.Max.Z = c.Z
	}
	return out
}

func (v Volume) octantOf(p Point) int {
	c := v.center()
	i := 0
	if p.X >= c.X {
		i |= 1
	}
	if p.Y >= c.Y {
		i |= 2
	}
	if p.Z >= c.Z {
		i |= 4
	}
	return i
}

const (
	maxLeafItems = 16
	maxDepth     = 16
)

type octreeItem struct {
	pos   Point
	index int
}

type octreeNode struct {
	bounds   Volume
	items    []octreeItem
	children *[8]octreeNode
}

// Octree answers radius queries over a fixed set of points. Each point carries
// an integer payload, usually a position in the owning system array.
// Points outside the root volume are kept in a flat overflow list and scanned
// on every query.
type Octree struct {
	root     octreeNode
	overflow []octreeItem
	size     int
}

// NewOctree creates an empty tree over bounds.
func NewOctree(bounds Volume) *Octree {
	return &Octree{root: octreeNode{bounds: bounds}}
}

// Len returns the number of inserted points.
func (t *Octree) Len() int { return t.size }

// Insert adds a point with its payload.
func (t *Octree) Insert(pos Point, index int) {
	t.size++
	item := octreeItem{pos: pos, index: index}
	if !t.root.bounds.Contains(pos) {
		t.overflow = append(t.overflow, item)
		return
	}
	t.root.insert(item, 0)
}

func (n *octreeNode) insert(item octreeItem, depth int) {
	if n.children != nil {
		n.children[n.bounds.octantOf(item.pos)].insert(item, depth+1)
		return
	}
	n.items = append(n.items, item)
	if len(n.items) > maxLeafItems && depth < maxDepth {
		n.split(depth)
	}
}

func (n *octreeNode) split(depth int) {
	var children [8]octreeNode
	for i := range children {
		children[i].bounds = n.bounds.octant(i)
	}
	n.children = &children
	items := n.items
	n.items = nil
	for _, it := range items {
		n.children[n.bounds.octantOf(it.pos)].insert(it, depth+1)
	}
}

// WithinRadius returns the payloads of every point whose distance to center
// is at most radius, in ascending payload order.
func (t *Octree) WithinRadius(center Point, radius float64) []int {
	if radius < 0 {
		return nil
	}
	r2 := radius * radius
	var out []int
	t.root.collect(center, r2, &out)
	for _, it := range t.overflow {
		if distSq(it.pos, center) <= r2 {
			out = append(out, it.index)
		}
	}
	sort.Ints(out)
	return out
}

func (n *octreeNode) collect(center Point, r2 float64, out *[]int) {
	if n.bounds.distanceSq(center) > r2 {
		return
	}
	for _, it := range n.items {
		if distSq(it.pos, center) <= r2 {
			*out = append(*out, it.index)
		}
	}
	if n.children == nil {
		return
	}
	for i := range n.children {
		n.children[i].collect(center, r2, out)
	}
}

func distSq(a, b Point) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return dx*dx + dy*dy + dz*dz
}
