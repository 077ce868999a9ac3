package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOutputPath(t *testing.T) {
	cases := []struct {
		inputs  []string
		postfix string
		ext     string
		workDir string
		want    string
	}{
		{[]string{"/data/scene.tif"}, "_classified", "tif", "", "/data/scene_classified.tif"},
		{[]string{"/data/scene.tif"}, "classified", ".tif", "", "/data/scene_classified.tif"},
		{[]string{"/data/scene.tif"}, "_classified", "tif", "out", filepath.Join("out", "scene_classified.tif")},
		{[]string{"/a/s1.tif", "/b/s2.tif"}, "_washed_up_before", "tif", "out", filepath.Join("out", "s1_s2_washed_up_before.tif")},
		{[]string{"/data/scene.tif"}, "_regions", "geojson", "out", filepath.Join("out", "scene_regions.geojson")},
	}
	for _, c := range cases {
		if got := OutputPath(c.inputs, c.postfix, c.ext, c.workDir); got != c.want {
			t.Errorf("OutputPath(%v, %q, %q, %q) = %q, want %q", c.inputs, c.postfix, c.ext, c.workDir, got, c.want)
		}
	}
}

func TestGetUniqSubDir(t *testing.T) {
	parent := t.TempDir()
	d1, err := GetUniqSubDir(parent)
	if err != nil {
		t.Fatal(err)
	}
	d2, err := GetUniqSubDir(parent)
	if err != nil {
		t.Fatal(err)
	}
	if d1 == d2 {
		t.Fatal("sub dirs should differ")
	}
	for _, d := range []string{d1, d2} {
		if fi, err := os.Stat(d); err != nil || !fi.IsDir() {
			t.Fatalf("%s not created: %v", d, err)
		}
	}
}

func TestEnsureParentDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "a", "b", "c.tif")
	if err := EnsureParentDir(file); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Dir(file)); err != nil {
		t.Fatal(err)
	}
	if GetFilenameWithoutExt(file) != "c" {
		t.Fatalf("name: %s", GetFilenameWithoutExt(file))
	}
}
