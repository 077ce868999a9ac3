package wastemap

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
)

func PolygonToWkt(p orb.Polygon) string {
	return wkt.MarshalString(p)
}

// 多边形集合的外包范围 [minX, maxX, minY, maxY]
func PolygonsSpan(polys []orb.Polygon) (span [4]float64, ok bool) {
	if len(polys) == 0 {
		return
	}
	b := polys[0].Bound()
	for _, p := range polys[1:] {
		b = b.Union(p.Bound())
	}
	span = [4]float64{b.Min.X(), b.Max.X(), b.Min.Y(), b.Max.Y()}
	ok = true
	return
}

func writeJSONFile(path string, v any) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err = os.MkdirAll(dir, os.ModePerm); err != nil {
			return
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	return os.WriteFile(path, data, 0o644)
}

// 写出FeatureCollection
func WriteGeoJSON(path string, fc *geojson.FeatureCollection) error {
	return writeJSONFile(path, fc)
}

func ReadGeoJSON(path string) (fc *geojson.FeatureCollection, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	return geojson.UnmarshalFeatureCollection(data)
}
