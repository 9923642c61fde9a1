package sankey

import (
	"errors"
	"math"
	"slices"
	"testing"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"pgregory.net/rapid"
)

func TestWouldCreateCycle(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		links []Link
		want  bool
	}{
		{name: "no nodes", n: 0, links: nil, want: false},
		{name: "no links", n: 3, links: nil, want: false},
		{name: "chain", n: 3, links: []Link{{0, 1, 1}, {1, 2, 1}}, want: false},
		{name: "diamond", n: 4, links: []Link{{0, 1, 1}, {0, 2, 1}, {1, 3, 1}, {2, 3, 1}}, want: false},
		{name: "multi-edge", n: 2, links: []Link{{0, 1, 1}, {0, 1, 4}}, want: false},
		{name: "self-loop", n: 2, links: []Link{{1, 1, 1}}, want: true},
		{name: "two-cycle", n: 2, links: []Link{{0, 1, 1}, {1, 0, 1}}, want: true},
		{name: "three-cycle", n: 3, links: []Link{{0, 1, 5}, {1, 2, 3}, {2, 0, 1}}, want: true},
		{name: "cycle away from node 0", n: 5, links: []Link{{0, 1, 1}, {3, 4, 1}, {4, 2, 1}, {2, 3, 1}}, want: true},
		{name: "visited node reached twice", n: 4, links: []Link{{0, 2, 1}, {1, 2, 1}, {2, 3, 1}}, want: false},
		{name: "cycle beyond n is ignored", n: 1, links: []Link{{0, 3, 1}, {3, 0, 1}}, want: false},
		{name: "huge endpoint", n: 2, links: []Link{{0, 1 << 40, 1}}, want: false},
		{name: "max int endpoint", n: 2, links: []Link{{0, math.MaxInt, 1}}, want: false},
		{name: "max int source", n: 2, links: []Link{{math.MaxInt, 0, 1}, {0, 1, 1}}, want: false},
		{name: "in-range cycle beside huge endpoint", n: 2, links: []Link{{0, 1 << 40, 1}, {0, 1, 1}, {1, 0, 1}}, want: true},
		{name: "negative n", n: -1, links: []Link{{0, 0, 1}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WouldCreateCycle(tt.n, tt.links); got != tt.want {
				t.Errorf("WouldCreateCycle(%d, %v) = %v, want %v", tt.n, tt.links, got, tt.want)
			}
		})
	}
}

func TestFindCyclePath(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		links []Link
		want  []int
	}{
		{name: "acyclic", n: 2, links: []Link{{0, 1, 1}}, want: nil},
		{name: "self-loop", n: 2, links: []Link{{0, 1, 1}, {1, 1, 1}}, want: []int{1, 1}},
		{name: "triangle", n: 3, links: []Link{{0, 1, 1}, {1, 2, 1}, {2, 0, 1}}, want: []int{0, 1, 2, 0}},
		{name: "tail before cycle", n: 4, links: []Link{{0, 1, 1}, {1, 2, 1}, {2, 3, 1}, {3, 1, 1}}, want: []int{1, 2, 3, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindCycle(tt.n, tt.links); !slices.Equal(got, tt.want) {
				t.Errorf("FindCycle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindCycleIgnoresOutOfRangeEndpoints(t *testing.T) {
	links := []Link{{-1, 0, 1}, {0, -1, 1}, {0, math.MaxInt, 1}, {math.MinInt, 1, 1}, {1 << 40, 1 << 40, 1}}
	if got := FindCycle(2, links); got != nil {
		t.Errorf("FindCycle() = %v, want nil", got)
	}
}

func TestCycleErrorIs(t *testing.T) {
	var err error = &CycleError{Path: []int{0, 1, 0}}
	if !errors.Is(err, ErrCycleRejected) {
		t.Fatal("CycleError should match ErrCycleRejected")
	}
	if got, want := err.Error(), "sankey: circular links are not allowed: 0 -> 1 -> 0"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

// hasCycleOracle answers the same question with gonum's topological sort.
func hasCycleOracle(n int, links []Link) bool {
	g := simple.NewDirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(int64(i)))
	}
	for _, l := range links {
		if l.Source == l.Target {
			return true
		}
		g.SetEdge(g.NewEdge(simple.Node(int64(l.Source)), simple.Node(int64(l.Target))))
	}
	_, err := topo.Sort(g)
	return err != nil
}

func linksGen(n int) *rapid.Generator[[]Link] {
	return rapid.SliceOfN(rapid.Custom(func(t *rapid.T) Link {
		return Link{
			Source: rapid.IntRange(0, n-1).Draw(t, "source"),
			Target: rapid.IntRange(0, n-1).Draw(t, "target"),
			Value:  float64(rapid.IntRange(0, 10).Draw(t, "value")),
		}
	}), 0, 3*n)
}

func TestWouldCreateCycleMatchesTopoSort(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(t, "n")
		links := linksGen(n).Draw(t, "links")

		got := WouldCreateCycle(n, links)
		if want := hasCycleOracle(n, links); got != want {
			t.Fatalf("WouldCreateCycle(%d, %v) = %v, topo.Sort says %v", n, links, got, want)
		}
		if again := WouldCreateCycle(n, links); again != got {
			t.Fatalf("second call returned %v, first returned %v", again, got)
		}
	})
}

func TestWouldCreateCycleOrderIndependent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(t, "n")
		links := linksGen(n).Draw(t, "links")
		permuted := rapid.Permutation(links).Draw(t, "permuted")

		if a, b := WouldCreateCycle(n, links), WouldCreateCycle(n, permuted); a != b {
			t.Fatalf("result changed under permutation: %v vs %v", a, b)
		}
	})
}

func TestRankOrderedLinksAreAcyclic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 10).Draw(t, "n")
		rank := rapid.Permutation(seq(n)).Draw(t, "rank")

		var links []Link
		for _, l := range linksGen(n).Draw(t, "candidates") {
			if rank[l.Source] < rank[l.Target] {
				links = append(links, l)
			}
		}
		if WouldCreateCycle(n, links) {
			t.Fatalf("rank-ordered links %v reported cyclic", links)
		}
	})
}

func TestClosingLinkIsCyclic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 10).Draw(t, "n")
		path := rapid.Permutation(seq(n)).Draw(t, "path")
		k := rapid.IntRange(1, n).Draw(t, "length")

		var links []Link
		for i := 0; i+1 < k; i++ {
			links = append(links, Link{Source: path[i], Target: path[i+1], Value: 1})
		}
		links = append(links, Link{Source: path[k-1], Target: path[0], Value: 1})

		if !WouldCreateCycle(n, links) {
			t.Fatalf("cycle %v not detected", links)
		}
	})
}

func seq(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}
