package gis

import (
	"errors"
	"fmt"
	"testing"

	"github.com/paulmach/orb"
)

func square(x, y float64) orb.Polygon {
	return orb.Polygon{{{x, y}, {x + 1, y}, {x + 1, y + 1}, {x, y + 1}, {x, y}}}
}

func pelakLayer(features ...ShapeFeature) *ShapeLayer {
	return &ShapeLayer{Features: features, GeomType: "MultiPolygon", SRID: "4326"}
}

func pelakFeature(title, number string, geom orb.Geometry) ShapeFeature {
	return ShapeFeature{
		Geometry: geom,
		Attrs:    map[string]string{"title": title, "number": number},
	}
}

func TestValidatePelakLayer(t *testing.T) {
	t.Run("empty layer", func(t *testing.T) {
		_, err := ValidatePelakLayer(pelakLayer(), "title", "number")
		if !errors.Is(err, ErrEmptyLayer) {
			t.Fatalf("got %v, want ErrEmptyLayer", err)
		}
	})

	t.Run("missing columns", func(t *testing.T) {
		layer := pelakLayer(ShapeFeature{
			Geometry: orb.MultiPolygon{square(46, 34)},
			Attrs:    map[string]string{"name": "x"},
		})
		_, err := ValidatePelakLayer(layer, "title", "number")
		var missing *MissingComponentsError
		if !errors.As(err, &missing) {
			t.Fatalf("got %v, want MissingComponentsError", err)
		}
		if len(missing.Missing) != 2 {
			t.Errorf("missing = %v, want both columns", missing.Missing)
		}
	})

	t.Run("empty number", func(t *testing.T) {
		layer := pelakLayer(
			pelakFeature("a", "100", orb.MultiPolygon{square(46, 34)}),
			pelakFeature("b", "", orb.MultiPolygon{square(48, 34)}),
		)
		_, err := ValidatePelakLayer(layer, "title", "number")
		var empty *EmptyFieldError
		if !errors.As(err, &empty) {
			t.Fatalf("got %v, want EmptyFieldError", err)
		}
		if empty.Row != 2 {
			t.Errorf("row = %d, want 2", empty.Row)
		}
	})

	t.Run("duplicate number", func(t *testing.T) {
		layer := pelakLayer(
			pelakFeature("a", "100", orb.MultiPolygon{square(46, 34)}),
			pelakFeature("b", "100", orb.MultiPolygon{square(48, 34)}),
		)
		_, err := ValidatePelakLayer(layer, "title", "number")
		var dup *DuplicateKeyError
		if !errors.As(err, &dup) {
			t.Fatalf("got %v, want DuplicateKeyError", err)
		}
		if dup.Value != "100" {
			t.Errorf("value = %q, want 100", dup.Value)
		}
	})

	t.Run("multipart polygon rejected", func(t *testing.T) {
		layer := pelakLayer(
			pelakFeature("a", "100", orb.MultiPolygon{square(46, 34), square(50, 34)}),
		)
		_, err := ValidatePelakLayer(layer, "title", "number")
		var unsupported *UnsupportedGeometryTypeError
		if !errors.As(err, &unsupported) {
			t.Fatalf("got %v, want UnsupportedGeometryTypeError", err)
		}
	})

	t.Run("case insensitive columns", func(t *testing.T) {
		layer := pelakLayer(ShapeFeature{
			Geometry: orb.MultiPolygon{square(46, 34)},
			Attrs:    map[string]string{"Title": "باغ شمالی", "NUMBER": "100"},
		})
		records, err := ValidatePelakLayer(layer, "title", "number")
		if err != nil {
			t.Fatalf("ValidatePelakLayer: %v", err)
		}
		if len(records) != 1 || records[0].Number != "100" || records[0].Title != "باغ شمالی" {
			t.Errorf("records = %+v", records)
		}
	})

	t.Run("valid layer", func(t *testing.T) {
		var features []ShapeFeature
		for i := 0; i < 5; i++ {
			features = append(features,
				pelakFeature("p", fmt.Sprintf("%d", 100+i), orb.MultiPolygon{square(float64(46+i), 34)}))
		}
		records, err := ValidatePelakLayer(pelakLayer(features...), "title", "number")
		if err != nil {
			t.Fatalf("ValidatePelakLayer: %v", err)
		}
		if len(records) != 5 {
			t.Errorf("got %d records, want 5", len(records))
		}
	})
}

func TestValidateGDBLayer(t *testing.T) {
	tests := []struct {
		name    string
		layer   GDBLayer
		wantErr bool
	}{
		{"valid", GDBLayer{Name: "parcels", GeomType: "MultiPolygon", SRID: "32639"}, false},
		{"surface counts as polygon", GDBLayer{Name: "parcels", GeomType: "MultiSurface", SRID: "4326"}, false},
		{"bad name", GDBLayer{Name: "old parcels", GeomType: "Polygon", SRID: "4326"}, true},
		{"point layer", GDBLayer{Name: "wells", GeomType: "Point", SRID: "4326"}, true},
		{"line layer", GDBLayer{Name: "roads", GeomType: "MultiLineString", SRID: "4326"}, true},
		{"missing crs", GDBLayer{Name: "parcels", GeomType: "MultiPolygon"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGDBLayer(tt.layer)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGDBLayer(%s) error = %v, wantErr %v", tt.layer.Name, err, tt.wantErr)
			}
		})
	}
}
