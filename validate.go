package sankey

import (
	"fmt"
	"math"
	"strings"
)

// Validate checks a whole diagram against the invariants the Editor keeps:
// every link endpoint names an existing node, every value is a finite
// non-negative number, and the links form no directed cycle.
//
// Diagrams loaded from storage or received over the wire go through Validate
// before anything trusts them.
func Validate(d *Diagram) error {
	n := len(d.Nodes)
	for i, l := range d.Links {
		if err := checkPosition(l.Source, n); err != nil {
			return fmt.Errorf("link %d source: %w", i, err)
		}
		if err := checkPosition(l.Target, n); err != nil {
			return fmt.Errorf("link %d target: %w", i, err)
		}
		if err := checkValue(l.Value); err != nil {
			return fmt.Errorf("link %d: %w", i, err)
		}
	}
	return checkAcyclic(n, d.Links)
}

// ValidateForSave is Validate plus the requirement that the diagram is named.
func ValidateForSave(d *Diagram) error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrNameRequired
	}
	return Validate(d)
}

func checkPosition(pos, n int) error {
	if pos < 0 || pos >= n {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidPosition, pos, n)
	}
	return nil
}

// checkValue accepts zero: a zero-weight link is a valid degenerate link.
func checkValue(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidValue, v)
	}
	return nil
}

func checkAcyclic(n int, links []Link) error {
	if path := FindCycle(n, links); path != nil {
		return &CycleError{Path: path}
	}
	return nil
}
