package raster

import (
	"math"
	"reflect"
	"testing"
)

var probs10 = []float64{0.1, 0.2, 0.31, 0.4, 0.5, 0.61, 0.7, 0.8, 0.91, 1}

func TestCreateHeatmapNoThresholds(t *testing.T) {
	g, _ := NewGridFrom(2, 5, append([]float64(nil), probs10...))
	heat := CreateHeatmap(g, nil)
	if heat.Rows != 2 || heat.Cols != 5 {
		t.Fatalf("shape %dx%d", heat.Rows, heat.Cols)
	}
	for _, v := range heat.Data {
		if v != 0 {
			t.Fatal("heatmap should be all zero")
		}
	}
}

func TestCreateHeatmapOneThreshold(t *testing.T) {
	g, _ := NewGridFrom(1, 10, append([]float64(nil), probs10...))
	heat := CreateHeatmap(g, []Threshold{{0.5, 1}})
	want := []int32{0, 0, 0, 0, 1, 1, 1, 1, 1, 1}
	if !reflect.DeepEqual(heat.Data, want) {
		t.Fatalf("got %v, want %v", heat.Data, want)
	}
}

func TestCreateHeatmapThreeThresholds(t *testing.T) {
	g, _ := NewGridFrom(1, 10, append([]float64(nil), probs10...))
	heat := CreateHeatmap(g, Thresholds{0.3, 0.6, 0.9}.List())
	want := []int32{0, 0, 1, 1, 1, 2, 2, 2, 3, 3}
	if !reflect.DeepEqual(heat.Data, want) {
		t.Fatalf("got %v, want %v", heat.Data, want)
	}
	for i := 1; i < len(heat.Data); i++ {
		if heat.Data[i] < heat.Data[i-1] {
			t.Fatal("heatmap not monotonic")
		}
	}
}

func TestNanMedian(t *testing.T) {
	if m := NanMedian([]float64{3, math.NaN(), 1, 2}); m != 2 {
		t.Fatalf("median %v", m)
	}
	if m := NanMedian([]float64{4, 1, math.NaN(), 2, 3}); m != 2.5 {
		t.Fatalf("median %v", m)
	}
	if !math.IsNaN(NanMedian([]float64{math.NaN()})) {
		t.Fatal("expected NaN")
	}
}

func TestDifferenceHeatmapsTrivial(t *testing.T) {
	diff, _ := NewGridFrom(2, 2, []float64{0, math.NaN(), 0, 0})
	pos, neg, err := DifferenceHeatmaps(diff, 4)
	if err != nil {
		t.Fatal(err)
	}
	for i := range pos.Data {
		if pos.Data[i] != 0 || neg.Data[i] != 0 {
			t.Fatal("expected zero heatmaps")
		}
	}
	if _, _, err = DifferenceHeatmaps(diff, 3); err != ErrInvalidSections {
		t.Fatalf("expected invalid sections, got %v", err)
	}
}

func TestDifferenceHeatmapsSplit(t *testing.T) {
	// 中位数为0，正向最大偏差为4、负向为8，分4段
	diff, _ := NewGridFrom(1, 7, []float64{4, 3, 2, 0, -2, -5, -8})
	pos, neg, err := DifferenceHeatmaps(diff, 4)
	if err != nil {
		t.Fatal(err)
	}
	wantPos := []int32{3, 3, 2, 0, 0, 0, 0}
	wantNeg := []int32{0, 0, 0, 0, 1, 2, 3}
	if !reflect.DeepEqual(pos.Data, wantPos) {
		t.Errorf("pos %v, want %v", pos.Data, wantPos)
	}
	if !reflect.DeepEqual(neg.Data, wantNeg) {
		t.Errorf("neg %v, want %v", neg.Data, wantNeg)
	}
}
