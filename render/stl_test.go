package render

import (
	"bytes"
	"errors"
	"testing"

	"github.com/soypat/metaball"
	"github.com/soypat/metaball/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestSTLWriteReadback(t *testing.T) {
	const tol = 1e-5
	f, err := metaball.New([]metaball.Ball{
		{Center: r3.Vec{X: 0.5}, Radius: 0.6},
		{Center: r3.Vec{X: -0.5, Y: 0.2}, Radius: 0.4},
	})
	if err != nil {
		t.Fatal(err)
	}
	r, err := NewGridRenderer(f, Grid{Steps: 48, Min: -2, Max: 2})
	if err != nil {
		t.Fatal(err)
	}
	input, err := RenderAll(r)
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	err = WriteSTL(&b, input)
	if err != nil {
		t.Fatal(err)
	}
	output, err := readBinarySTL(&b)
	if err != nil && !errors.Is(err, errCalculatedNormalMismatch) {
		t.Fatal(err)
	}
	if len(output) != len(input) {
		t.Fatal("length of triangles written/read not equal")
	}
	mismatches := 0
	for iface, expect := range input {
		got := output[iface]
		if got.Degenerate(1e-12) {
			t.Fatalf("triangle degenerate: %+v", got)
		}
		for i := range expect.V {
			if !d3.EqualWithin(got.V[i], expect.V[i], tol) {
				mismatches++
				t.Errorf("%dth triangle equality out of tolerance. got vertex %0.5g, want %0.5g", iface, got.V[i], expect.V[i])
			}
		}
		if mismatches > 10 {
			t.Fatal("too many mismatches")
		}
	}
}

func TestWriteSTLEmptyModel(t *testing.T) {
	var b bytes.Buffer
	if err := WriteSTL(&b, nil); err == nil {
		t.Error("expected error writing empty model")
	}
}
