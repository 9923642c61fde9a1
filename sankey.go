package sankey

import "time"

// Link is a weighted, directed connection between two node positions.
type Link struct {
	Source int     `json:"source"`
	Target int     `json:"target"`
	Value  float64 `json:"value"`
}

// Diagram is a named Sankey diagram.
// A node is identified only by its position in Nodes, so positions shift when
// an earlier node is removed.
type Diagram struct {
	Name  string   `json:"name"`
	Nodes []string `json:"nodes"`
	Links []Link   `json:"links"`
}

// Clone returns a deep copy of the diagram.
func (d Diagram) Clone() Diagram {
	return Diagram{
		Name:  d.Name,
		Nodes: cloneNodes(d.Nodes),
		Links: cloneLinks(d.Links),
	}
}

// SavedDiagram is a Diagram as returned by a Store, with the identity the
// store attached to it.
type SavedDiagram struct {
	ID      string `json:"id"`
	OwnerID string `json:"user_id"`
	Diagram
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Endpoint selects which end of a link EditLinkEndpoint rewrites.
type Endpoint string

const (
	EndpointSource Endpoint = "source"
	EndpointTarget Endpoint = "target"
)

func cloneNodes(nodes []string) []string {
	out := make([]string, len(nodes))
	copy(out, nodes)
	return out
}

func cloneLinks(links []Link) []Link {
	out := make([]Link, len(links))
	copy(out, links)
	return out
}
