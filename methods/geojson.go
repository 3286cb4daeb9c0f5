package methods

import (
	"encoding/hex"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/geojson"
)

// MakeGeoJSON builds a feature collection from rows holding a hex WKB
// "geom" column next to plain attribute columns.
func MakeGeoJSON(items []map[string]interface{}) *geojson.FeatureCollection {
	var FeaturesList []*geojson.Feature
	for _, item := range items {
		geomStr, _ := item["geom"].(string)
		wkbBytes, _ := hex.DecodeString(strings.TrimSpace(geomStr))
		geom, err := wkb.Unmarshal(wkbBytes)
		if err != nil {
			continue
		}
		feature := geojson.NewFeature(geom)
		properties := make(map[string]interface{})
		for key, value := range item {
			if key != "geom" {
				properties[key] = value
			}
		}
		feature.Properties = properties
		FeaturesList = append(FeaturesList, feature)
	}
	features := geojson.NewFeatureCollection()
	features.Features = FeaturesList
	return features
}

// GeomToWKBHex marshals a geometry to hex WKB, promoting bare polygons so
// every border column stays MultiPolygon.
func GeomToWKBHex(geom orb.Geometry) (string, error) {
	if polygon, ok := geom.(orb.Polygon); ok {
		geom = orb.MultiPolygon{polygon}
	}
	raw, err := wkb.Marshal(geom)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// WKBHexToGeom is the inverse of GeomToWKBHex.
func WKBHexToGeom(s string) (orb.Geometry, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	return wkb.Unmarshal(raw)
}
