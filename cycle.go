package sankey

import (
	"fmt"
	"strconv"
	"strings"
)

// CycleError reports the closed path a rejected mutation would have created.
// It matches ErrCycleRejected under errors.Is.
type CycleError struct {
	Path []int
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, p := range e.Path {
		parts[i] = strconv.Itoa(p)
	}
	return fmt.Sprintf("%s: %s", ErrCycleRejected, strings.Join(parts, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycleRejected }

// WouldCreateCycle reports whether links, read as directed edges over n node
// positions, contain a directed cycle. It holds no state between calls, so it
// is safe to run against a hypothetical link set before committing an edit.
func WouldCreateCycle(n int, links []Link) bool {
	return FindCycle(n, links) != nil
}

// FindCycle returns the first directed cycle found as a closed path such as
// [0 1 2 0], or nil if the graph is acyclic. A self-loop on 3 is [3 3].
//
// Start points are tried in position order. Links with an endpoint outside
// [0, n) are ignored; callers that need range errors should use Validate.
// Work is bounded by n and len(links), never by endpoint values.
func FindCycle(n int, links []Link) []int {
	size := max(n, 0)

	// Multi-edges keep their duplicate entries; they never form a back-edge
	// on their own.
	adj := make([][]int, size)
	for _, l := range links {
		if l.Source < 0 || l.Source >= size || l.Target < 0 || l.Target >= size {
			continue
		}
		adj[l.Source] = append(adj[l.Source], l.Target)
	}

	const (
		unvisited = iota
		onStack
		done
	)

	state := make([]uint8, size)
	var stack, cycle []int

	var dfs func(v int) bool
	dfs = func(v int) bool {
		state[v] = onStack
		stack = append(stack, v)
		for _, next := range adj[v] {
			switch state[next] {
			case onStack:
				cycle = closeCycle(stack, next)
				return true
			case unvisited:
				if dfs(next) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[v] = done
		return false
	}

	for v := 0; v < size; v++ {
		if state[v] == unvisited && dfs(v) {
			return cycle
		}
	}
	return nil
}

// closeCycle returns the part of stack starting at v, closed with v again.
func closeCycle(stack []int, v int) []int {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == v {
			path := make([]int, 0, len(stack)-i+1)
			path = append(path, stack[i:]...)
			return append(path, v)
		}
	}
	return []int{v, v}
}
