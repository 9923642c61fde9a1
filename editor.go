package sankey

import (
	"fmt"
	"strings"
)

// Editor owns one live Diagram and is the only sanctioned way to mutate it.
//
// Every mutation is atomic: the candidate state is built on copies, checked,
// and committed only if the check passes, so a failed call leaves the diagram
// exactly as it was. Slices returned by an Editor are copies.
//
// An Editor is not safe for concurrent use.
type Editor struct {
	d Diagram
}

// NewEditor returns an editor on a fresh diagram: two nodes joined by one
// link of weight 1.
func NewEditor() *Editor {
	return &Editor{d: Diagram{
		Nodes: []string{defaultNodeName(0), defaultNodeName(1)},
		Links: []Link{{Source: 0, Target: 1, Value: 1}},
	}}
}

// Open returns an editor on a copy of d after checking it with Validate.
func Open(d *Diagram) (*Editor, error) {
	if err := Validate(d); err != nil {
		return nil, err
	}
	return &Editor{d: d.Clone()}, nil
}

// Diagram returns a deep copy of the current diagram.
func (e *Editor) Diagram() Diagram { return e.d.Clone() }

func (e *Editor) Name() string     { return e.d.Name }
func (e *Editor) Nodes() []string  { return cloneNodes(e.d.Nodes) }
func (e *Editor) Links() []Link    { return cloneLinks(e.d.Links) }
func (e *Editor) SetName(n string) { e.d.Name = n }

// RenameNode replaces the label at pos.
func (e *Editor) RenameNode(pos int, name string) ([]string, error) {
	if err := checkPosition(pos, len(e.d.Nodes)); err != nil {
		return nil, err
	}
	e.d.Nodes[pos] = name
	return e.Nodes(), nil
}

// AddNode appends a node at position N. A blank name gets the default label
// "Node <N+1>".
func (e *Editor) AddNode(name string) []string {
	if strings.TrimSpace(name) == "" {
		name = defaultNodeName(len(e.d.Nodes))
	}
	e.d.Nodes = append(e.d.Nodes, name)
	return e.Nodes()
}

// RemoveNode deletes the node at pos together with every link touching it,
// and renumbers the endpoints of the remaining links.
func (e *Editor) RemoveNode(pos int) ([]string, []Link, error) {
	if err := checkPosition(pos, len(e.d.Nodes)); err != nil {
		return nil, nil, err
	}
	e.d.Nodes, e.d.Links = removeNodeAt(e.d.Nodes, e.d.Links, pos)
	return e.Nodes(), e.Links(), nil
}

// AddLink appends the link source -> target unless it would close a cycle.
func (e *Editor) AddLink(source, target int, value float64) ([]Link, error) {
	n := len(e.d.Nodes)
	if err := checkPosition(source, n); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	if err := checkPosition(target, n); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	if err := checkValue(value); err != nil {
		return nil, err
	}

	candidate := append(cloneLinks(e.d.Links), Link{Source: source, Target: target, Value: value})
	if err := checkAcyclic(n, candidate); err != nil {
		return nil, err
	}
	e.d.Links = candidate
	return e.Links(), nil
}

// EditLinkEndpoint points one end of link index at pos unless that would
// close a cycle.
func (e *Editor) EditLinkEndpoint(index int, field Endpoint, pos int) ([]Link, error) {
	if err := e.checkLinkIndex(index); err != nil {
		return nil, err
	}
	n := len(e.d.Nodes)
	if err := checkPosition(pos, n); err != nil {
		return nil, err
	}

	candidate := cloneLinks(e.d.Links)
	switch field {
	case EndpointSource:
		candidate[index].Source = pos
	case EndpointTarget:
		candidate[index].Target = pos
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, field)
	}

	if err := checkAcyclic(n, candidate); err != nil {
		return nil, err
	}
	e.d.Links = candidate
	return e.Links(), nil
}

// EditLinkValue replaces the weight of link index.
func (e *Editor) EditLinkValue(index int, value float64) ([]Link, error) {
	if err := e.checkLinkIndex(index); err != nil {
		return nil, err
	}
	if err := checkValue(value); err != nil {
		return nil, err
	}
	e.d.Links[index].Value = value
	return e.Links(), nil
}

// RemoveLink deletes link index. Later links move down one index.
func (e *Editor) RemoveLink(index int) ([]Link, error) {
	if err := e.checkLinkIndex(index); err != nil {
		return nil, err
	}
	links := make([]Link, 0, len(e.d.Links)-1)
	links = append(links, e.d.Links[:index]...)
	links = append(links, e.d.Links[index+1:]...)
	e.d.Links = links
	return e.Links(), nil
}

func (e *Editor) checkLinkIndex(index int) error {
	if index < 0 || index >= len(e.d.Links) {
		return fmt.Errorf("%w: index %d of %d", ErrLinkNotFound, index, len(e.d.Links))
	}
	return nil
}

// removeNodeAt returns new node and link slices with the node at pos gone.
// It drops the links touching pos, then decrements endpoints above pos, then
// shifts the labels down; each step finishes before the next starts.
func removeNodeAt(nodes []string, links []Link, pos int) ([]string, []Link) {
	kept := make([]Link, 0, len(links))
	for _, l := range links {
		if l.Source != pos && l.Target != pos {
			kept = append(kept, l)
		}
	}

	for i := range kept {
		if kept[i].Source > pos {
			kept[i].Source--
		}
		if kept[i].Target > pos {
			kept[i].Target--
		}
	}

	shifted := make([]string, 0, len(nodes)-1)
	shifted = append(shifted, nodes[:pos]...)
	shifted = append(shifted, nodes[pos+1:]...)

	return shifted, kept
}

func defaultNodeName(pos int) string {
	return fmt.Sprintf("Node %d", pos+1)
}
