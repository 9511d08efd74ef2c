package domain

import (
	"errors"
	"math"
	"testing"
)

func TestDistanceMetric_L2(t *testing.T) {
	d, err := DistanceL2.Distance([]float32{0, 0}, []float32{3, 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 5 {
		t.Errorf("expected 5, got %f", d)
	}
}

func TestDistanceMetric_Cosine(t *testing.T) {
	d, err := DistanceCosine.Distance([]float32{1, 0}, []float32{0, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(d-1) > 1e-9 {
		t.Errorf("expected 1 for orthogonal vectors, got %f", d)
	}

	d, _ = DistanceCosine.Distance([]float32{2, 2}, []float32{1, 1})
	if math.Abs(d) > 1e-9 {
		t.Errorf("expected 0 for parallel vectors, got %f", d)
	}
}

func TestDistanceMetric_ZeroVector(t *testing.T) {
	d, err := DistanceCosine.Distance([]float32{0, 0}, []float32{1, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 1 {
		t.Errorf("expected 1, got %f", d)
	}
}

func TestDistanceMetric_DimensionMismatch(t *testing.T) {
	_, err := DistanceL2.Distance([]float32{1, 2, 3}, []float32{1, 2})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}
