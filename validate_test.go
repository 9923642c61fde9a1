package sankey

import (
	"errors"
	"math"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		d       Diagram
		wantErr error
	}{
		{"empty", Diagram{}, nil},
		{"valid", Diagram{Nodes: []string{"A", "B", "C"}, Links: []Link{{0, 1, 2}, {1, 2, 0}}}, nil},
		{"source out of range", Diagram{Nodes: []string{"A"}, Links: []Link{{1, 0, 1}}}, ErrInvalidPosition},
		{"target negative", Diagram{Nodes: []string{"A", "B"}, Links: []Link{{0, -1, 1}}}, ErrInvalidPosition},
		{"negative value", Diagram{Nodes: []string{"A", "B"}, Links: []Link{{0, 1, -3}}}, ErrInvalidValue},
		{"infinite value", Diagram{Nodes: []string{"A", "B"}, Links: []Link{{0, 1, math.Inf(-1)}}}, ErrInvalidValue},
		{"cycle", Diagram{Nodes: []string{"A", "B"}, Links: []Link{{0, 1, 1}, {1, 0, 1}}}, ErrCycleRejected},
		{"self-loop", Diagram{Nodes: []string{"A"}, Links: []Link{{0, 0, 1}}}, ErrCycleRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.d)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateForSave(t *testing.T) {
	d := Diagram{Name: "   ", Nodes: []string{"A", "B"}, Links: []Link{{0, 1, 1}}}
	if err := ValidateForSave(&d); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("ValidateForSave() error = %v, want ErrNameRequired", err)
	}
	d.Name = "Energy"
	if err := ValidateForSave(&d); err != nil {
		t.Fatalf("ValidateForSave() error = %v", err)
	}
}
