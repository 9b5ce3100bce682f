package preprocessing

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/salesml/pkg/errors"
)

func TestStandardScaler_FitTransform(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
	})

	scaler := NewStandardScaler()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	wantMean := []float64{2.5, 25}
	wantScale := []float64{math.Sqrt(1.25), math.Sqrt(125)}
	for j := range wantMean {
		if math.Abs(scaler.Mean()[j]-wantMean[j]) > 1e-12 {
			t.Errorf("Mean[%d] = %v, want %v", j, scaler.Mean()[j], wantMean[j])
		}
		if math.Abs(scaler.Scale()[j]-wantScale[j]) > 1e-12 {
			t.Errorf("Scale[%d] = %v, want %v", j, scaler.Scale()[j], wantScale[j])
		}
	}

	// 変換後は各列平均0、母分散1
	r, c := scaled.Dims()
	for j := 0; j < c; j++ {
		sum, sq := 0.0, 0.0
		for i := 0; i < r; i++ {
			v := scaled.At(i, j)
			sum += v
			sq += v * v
		}
		if math.Abs(sum/float64(r)) > 1e-12 {
			t.Errorf("column %d mean = %v, want 0", j, sum/float64(r))
		}
		if math.Abs(sq/float64(r)-1) > 1e-12 {
			t.Errorf("column %d variance = %v, want 1", j, sq/float64(r))
		}
	}
}

func TestStandardScaler_InverseTransformRoundTrip(t *testing.T) {
	X := mat.NewDense(5, 4, []float64{
		9700, 1017, 469, 0,
		9100, 980, 450, 1,
		8800, 1100, 500, 0,
		10200, 1005, 470, 1,
		9900, 1020, 480, 0,
	})

	scaler := NewStandardScaler()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}
	restored, err := scaler.InverseTransform(scaled)
	if err != nil {
		t.Fatalf("InverseTransform failed: %v", err)
	}
	if !mat.EqualApprox(X, restored, 1e-9) {
		t.Errorf("round trip mismatch:\n got %v\nwant %v", mat.Formatted(restored), mat.Formatted(X))
	}
}

func TestStandardScaler_ConstantColumn(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		5, 1,
		5, 2,
		5, 3,
	})
	scaler := NewStandardScaler()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}
	if scaler.Scale()[0] != 1.0 {
		t.Errorf("constant column scale = %v, want 1", scaler.Scale()[0])
	}
	for i := 0; i < 3; i++ {
		if scaled.At(i, 0) != 0 {
			t.Errorf("constant column row %d = %v, want 0", i, scaled.At(i, 0))
		}
	}
}

func TestStandardScaler_WithoutMean(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{2, 4})
	scaler := NewStandardScaler(WithMean(false))
	if err := scaler.Fit(X); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if scaler.Mean()[0] != 0 {
		t.Errorf("Mean = %v, want 0 when with_mean=false", scaler.Mean()[0])
	}
}

func TestStandardScaler_Errors(t *testing.T) {
	scaler := NewStandardScaler()

	_, err := scaler.Transform(mat.NewDense(1, 2, nil))
	var notFitted *errors.NotFittedError
	if !errors.As(err, &notFitted) {
		t.Errorf("expected NotFittedError, got %v", err)
	}

	if err := scaler.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	_, err = scaler.Transform(mat.NewDense(1, 3, nil))
	var dimErr *errors.DimensionError
	if !errors.As(err, &dimErr) {
		t.Errorf("expected DimensionError, got %v", err)
	}

	if err := scaler.Fit(mat.NewDense(1, 1, []float64{math.NaN()})); err == nil {
		t.Error("expected error for NaN input")
	}
}

func TestStandardScaler_ExportImport(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	src := NewStandardScaler()
	if err := src.Fit(X); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	w, err := src.ExportWeights()
	if err != nil {
		t.Fatalf("ExportWeights failed: %v", err)
	}

	dst := NewStandardScaler()
	if err := dst.ImportWeights(w); err != nil {
		t.Fatalf("ImportWeights failed: %v", err)
	}
	a, _ := src.Transform(X)
	b, _ := dst.Transform(X)
	if !mat.Equal(a, b) {
		t.Error("imported scaler transforms differently")
	}
}
