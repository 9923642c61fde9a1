// Package render lays out a sankey.Diagram and draws it as SVG or PNG.
//
// The layout follows the usual Sankey conventions: a node's column is its
// longest distance from a source, nodes without outgoing links are pushed to
// the last column, node height is proportional to max(inflow, outflow), and
// each link is a ribbon whose width is proportional to its value.
package render

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/meikuraledutech/sankey"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Options controls the canvas and node geometry.
// Zero fields take the defaults of DefaultOptions.
type Options struct {
	Width       int
	Height      int
	NodeWidth   float64
	NodePadding float64
	Title       string
}

// DefaultOptions matches the editor preview: an 800x600 canvas with 20px
// wide nodes spaced 15px apart.
func DefaultOptions() Options {
	return Options{Width: 800, Height: 600, NodeWidth: 20, NodePadding: 15}
}

const titleHeight = 30

// Node is a positioned node box.
type Node struct {
	Index  int
	Name   string
	Column int
	Value  float64
	X, Y   float64
	W, H   float64
	Color  color.RGBA
}

// Ribbon is a positioned link. Y0 and Y1 are the ribbon's centre line at the
// source and target node.
type Ribbon struct {
	Index  int
	Link   sankey.Link
	X0, Y0 float64
	X1, Y1 float64
	Width  float64
	Color  color.RGBA
}

// Layout is a diagram mapped onto a canvas.
type Layout struct {
	Width   int
	Height  int
	Title   string
	Columns int
	Nodes   []Node
	Ribbons []Ribbon
}

// Compute validates d and lays it out.
func Compute(d sankey.Diagram, opts Options) (*Layout, error) {
	if err := sankey.Validate(&d); err != nil {
		return nil, err
	}
	opts = withDefaults(opts)

	l := &Layout{Width: opts.Width, Height: opts.Height, Title: opts.Title}
	n := len(d.Nodes)
	if n == 0 {
		return l, nil
	}

	columns, err := assignColumns(n, d.Links)
	if err != nil {
		return nil, err
	}

	in := make([]float64, n)
	out := make([]float64, n)
	for _, link := range d.Links {
		out[link.Source] += link.Value
		in[link.Target] += link.Value
	}

	l.Nodes = make([]Node, n)
	for i, name := range d.Nodes {
		l.Nodes[i] = Node{
			Index:  i,
			Name:   name,
			Column: columns[i],
			Value:  math.Max(in[i], out[i]),
			W:      opts.NodeWidth,
			Color:  rainbow(i, n),
		}
		l.Columns = max(l.Columns, columns[i]+1)
	}

	top, bottom := 1.0, float64(opts.Height)-5
	if opts.Title != "" {
		top += titleHeight
	}
	left, right := 1.0, float64(opts.Width)-1

	byColumn := make([][]int, l.Columns)
	for i, node := range l.Nodes {
		byColumn[node.Column] = append(byColumn[node.Column], i)
	}

	ky := scaleY(l.Nodes, byColumn, bottom-top, opts.NodePadding)

	kx := 0.0
	if l.Columns > 1 {
		kx = (right - left - opts.NodeWidth) / float64(l.Columns-1)
	}
	for col, members := range byColumn {
		y := top
		for _, i := range members {
			node := &l.Nodes[i]
			node.X = left + float64(col)*kx
			node.Y = y
			node.H = math.Max(1, node.Value*ky)
			y += node.H + opts.NodePadding
		}
	}

	l.Ribbons = placeRibbons(l.Nodes, d.Links, ky)
	return l, nil
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.NodeWidth <= 0 {
		opts.NodeWidth = def.NodeWidth
	}
	if opts.NodePadding <= 0 {
		opts.NodePadding = def.NodePadding
	}
	return opts
}

// assignColumns walks the nodes in topological order and gives each node its
// longest distance from a source. Nodes without outgoing links move to the
// last column.
func assignColumns(n int, links []sankey.Link) ([]int, error) {
	g := simple.NewDirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(int64(i)))
	}
	outgoing := make([][]int, n)
	for _, link := range links {
		outgoing[link.Source] = append(outgoing[link.Source], link.Target)
		g.SetEdge(g.NewEdge(simple.Node(int64(link.Source)), simple.Node(int64(link.Target))))
	}

	order, err := topo.Sort(g)
	if err != nil {
		return nil, fmt.Errorf("render: order nodes: %w", err)
	}

	depth := make([]int, n)
	last := 0
	for _, v := range order {
		s := int(v.ID())
		for _, t := range outgoing[s] {
			depth[t] = max(depth[t], depth[s]+1)
			last = max(last, depth[t])
		}
	}
	for i := range depth {
		if len(outgoing[i]) == 0 {
			depth[i] = last
		}
	}
	return depth, nil
}

// scaleY returns pixels per unit of value: the largest scale at which every
// column still fits in height.
func scaleY(nodes []Node, byColumn [][]int, height, padding float64) float64 {
	ky := math.Inf(1)
	for _, members := range byColumn {
		var sum float64
		for _, i := range members {
			sum += nodes[i].Value
		}
		if sum == 0 {
			continue
		}
		avail := height - float64(len(members)-1)*padding
		ky = math.Min(ky, math.Max(avail, 0)/sum)
	}
	if math.IsInf(ky, 1) {
		return 0
	}
	return ky
}

// placeRibbons stacks each node's outgoing ribbons by the target's height and
// its incoming ribbons by the source's height, so ribbons leave and arrive
// in the order that crosses least.
func placeRibbons(nodes []Node, links []sankey.Link, ky float64) []Ribbon {
	ribbons := make([]Ribbon, len(links))
	outgoing := make([][]int, len(nodes))
	incoming := make([][]int, len(nodes))
	for i, link := range links {
		ribbons[i] = Ribbon{
			Index: i,
			Link:  link,
			X0:    nodes[link.Source].X + nodes[link.Source].W,
			X1:    nodes[link.Target].X,
			Width: link.Value * ky,
			Color: nodes[link.Source].Color,
		}
		outgoing[link.Source] = append(outgoing[link.Source], i)
		incoming[link.Target] = append(incoming[link.Target], i)
	}

	for v := range nodes {
		sort.SliceStable(outgoing[v], func(a, b int) bool {
			return nodes[links[outgoing[v][a]].Target].Y < nodes[links[outgoing[v][b]].Target].Y
		})
		y := nodes[v].Y
		for _, i := range outgoing[v] {
			ribbons[i].Y0 = y + ribbons[i].Width/2
			y += ribbons[i].Width
		}

		sort.SliceStable(incoming[v], func(a, b int) bool {
			return nodes[links[incoming[v][a]].Source].Y < nodes[links[incoming[v][b]].Source].Y
		})
		y = nodes[v].Y
		for _, i := range incoming[v] {
			ribbons[i].Y1 = y + ribbons[i].Width/2
			y += ribbons[i].Width
		}
	}
	return ribbons
}

// rainbow spreads n node colours evenly around the hue circle.
func rainbow(i, n int) color.RGBA {
	h := float64(i) / float64(n) * 6
	x := 1 - math.Abs(math.Mod(h, 2)-1)
	var r, g, b float64
	switch int(h) {
	case 0:
		r, g = 1, x
	case 1:
		r, g = x, 1
	case 2:
		g, b = 1, x
	case 3:
		g, b = x, 1
	case 4:
		r, b = x, 1
	default:
		r, b = 1, x
	}
	// Keep colours in a readable mid range.
	scale := func(c float64) uint8 { return uint8(math.Round(40 + c*175)) }
	return color.RGBA{R: scale(r), G: scale(g), B: scale(b), A: 0xff}
}
