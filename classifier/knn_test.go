package classifier

import (
	"math"
	"path/filepath"
	"testing"
)

func testModel() Model {
	return Model{
		Bands:       []string{"pi", "ndwi"},
		Standardize: true,
		Prototypes: []Prototype{
			{Class: 100, Features: []float64{0.9, 0.1}},
			{Class: 100, Features: []float64{0.85, 0.15}},
			{Class: 200, Features: []float64{0.1, 0.9}},
			{Class: 200, Features: []float64{0.15, 0.8}},
			{Class: 300, Features: []float64{0.5, 0.5}},
		},
	}
}

func TestPredictProba(t *testing.T) {
	clf, err := New(testModel(), 3)
	if err != nil {
		t.Fatal(err)
	}
	classes := clf.Classes()
	if len(classes) != 3 || classes[0] != 100 || classes[2] != 300 {
		t.Fatalf("classes %v", classes)
	}
	probs, err := clf.PredictProba([][]float64{{0.88, 0.12}, {0.12, 0.85}})
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range probs {
		var sum float64
		for _, v := range p {
			sum += v
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("row %d sums to %v", i, sum)
		}
	}
	if probs[0][0] < 0.5 || probs[1][1] < 0.5 {
		t.Fatalf("unexpected probabilities %v", probs)
	}
	if _, err = clf.PredictProba([][]float64{{1}}); err != ErrFeatureCount {
		t.Fatalf("expected feature count error, got %v", err)
	}
}

func TestExactMatch(t *testing.T) {
	m := testModel()
	m.Standardize = false
	clf, err := New(m, 1)
	if err != nil {
		t.Fatal(err)
	}
	probs, _ := clf.PredictProba([][]float64{{0.5, 0.5}})
	if probs[0][2] != 1 {
		t.Fatalf("exact prototype match should be certain, got %v", probs[0])
	}
}

func TestNewInvalid(t *testing.T) {
	if _, err := New(testModel(), 0); err != ErrInvalidK {
		t.Fatalf("got %v", err)
	}
	if _, err := New(Model{}, 3); err != ErrNoPrototypes {
		t.Fatalf("got %v", err)
	}
	m := testModel()
	m.Prototypes[1].Features = []float64{1}
	if _, err := New(m, 3); err != ErrFeatureCount {
		t.Fatalf("got %v", err)
	}
	m = testModel()
	m.Prototypes[0].Class = 150
	if _, err := New(m, 3); err != ErrInvalidClassID {
		t.Fatalf("got %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	if err := Save(path, testModel()); err != nil {
		t.Fatal(err)
	}
	clf, err := Load(path, DefaultK)
	if err != nil {
		t.Fatal(err)
	}
	if clf.FeatureCount() != 2 || len(clf.Bands()) != 2 {
		t.Fatalf("loaded %d features, bands %v", clf.FeatureCount(), clf.Bands())
	}
	if _, err = Load(filepath.Join(t.TempDir(), "missing.json"), DefaultK); err == nil {
		t.Fatal("expected error for missing model")
	}
}
