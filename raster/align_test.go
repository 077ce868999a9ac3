package raster

import (
	"math"
	"testing"
)

func constRaster(t *testing.T, rows, cols int, gt GeoTransform, values ...float64) *Raster {
	bands := make([]*Grid, len(values))
	for i, v := range values {
		bands[i] = NewGrid(rows, cols)
		bands[i].Fill(v)
	}
	r, err := NewRaster(gt, "", bands...)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

var redNir = BandMapping{Red: 1, Nir: 2}

func TestAlign(t *testing.T) {
	aGT := GeoTransform{100, 10, 0, 200, 0, -10}
	bGT := GeoTransform{120, 10, 0, 190, 0, -10}
	al, err := Align(4, 5, aGT, 3, 3, bGT)
	if err != nil {
		t.Fatal(err)
	}
	if !al.LargerIsA || al.StartA != (Pixel{1, 2}) || al.StartB != (Pixel{0, 0}) {
		t.Fatalf("unexpected alignment %+v", al)
	}
	if al.Rows != 3 || al.Cols != 3 || al.StartX != 120 || al.StartY != 190 {
		t.Fatalf("unexpected window %+v", al)
	}
	if gt := al.GeoTransform(aGT); gt != bGT {
		t.Fatalf("geotransform %v", gt)
	}

	al, err = Align(3, 3, bGT, 4, 5, aGT)
	if err != nil {
		t.Fatal(err)
	}
	if al.LargerIsA || al.StartA != (Pixel{0, 0}) || al.StartB != (Pixel{1, 2}) {
		t.Fatalf("unexpected swapped alignment %+v", al)
	}
}

func TestAlignFailures(t *testing.T) {
	aGT := GeoTransform{100, 10, 0, 200, 0, -10}
	if _, err := Align(4, 4, aGT, 3, 3, GeoTransform{125, 10, 0, 200, 0, -10}); err != ErrNoOverlap {
		t.Fatalf("expected no overlap, got %v", err)
	}
	if _, err := Align(4, 4, aGT, 3, 3, GeoTransform{100, 20, 0, 200, 0, -20}); err != ErrResolutionMismatch {
		t.Fatalf("expected resolution mismatch, got %v", err)
	}
}

func TestDifferenceConstantOffset(t *testing.T) {
	gt := GeoTransform{500000, 3, 0, 4100000, 0, -3}
	a := constRaster(t, 4, 4, gt, 0.5, 0.5) // pi 0.5
	b := constRaster(t, 4, 4, gt, 0.7, 0.3) // pi 0.3
	diff, al, err := Difference(a, b, PI, redNir)
	if err != nil {
		t.Fatal(err)
	}
	if al.Rows != 4 || al.Cols != 4 {
		t.Fatalf("window %dx%d", al.Rows, al.Cols)
	}
	for _, v := range diff.Data {
		if math.Abs(v-0.2) > 1e-9 {
			t.Fatalf("diff %v", v)
		}
	}
	pos, _, err := DifferenceHeatmaps(diff, 4)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range pos.Data {
		if v != HeatmapHigh {
			t.Fatalf("expected whole overlap high, got %v", pos.Data)
		}
	}
}

func TestDifferenceWindow(t *testing.T) {
	a := constRaster(t, 4, 5, GeoTransform{100, 10, 0, 200, 0, -10}, 0.5, 0.5)
	b := constRaster(t, 3, 3, GeoTransform{120, 10, 0, 190, 0, -10}, 0.5, 0.5)
	b.Bands[1].Set(0, 0, math.NaN())
	b.Bands[1].Set(2, 2, 1.5) // pi 0.75
	diff, _, err := Difference(a, b, PI, redNir)
	if err != nil {
		t.Fatal(err)
	}
	if diff.Rows != 3 || diff.Cols != 3 {
		t.Fatalf("diff %dx%d", diff.Rows, diff.Cols)
	}
	if !math.IsNaN(diff.At(0, 0)) || diff.At(1, 1) != 0 || math.Abs(diff.At(2, 2)+0.25) > 1e-9 {
		t.Fatalf("unexpected diff %v", diff.Data)
	}
}
