package gis

import (
	"strings"

	"github.com/jazijazi/jahadchecker/methods"
	"github.com/paulmach/orb"
)

// PelakRecord is one validated feature of a pelak border upload.
type PelakRecord struct {
	Title    string
	Number   string
	Geometry orb.MultiPolygon
}

// ValidatePelakLayer checks a shapefile layer against the pelak upload
// contract: the named columns must exist, every row needs a non-empty
// unique number, and geometries are already polygon-only by construction.
func ValidatePelakLayer(layer *ShapeLayer, titleField, numberField string) ([]PelakRecord, error) {
	if len(layer.Features) == 0 {
		return nil, ErrEmptyLayer
	}
	var missing []string
	if !layer.HasField(titleField) {
		missing = append(missing, titleField)
	}
	if !layer.HasField(numberField) {
		missing = append(missing, numberField)
	}
	if len(missing) > 0 {
		return nil, &MissingComponentsError{Missing: missing}
	}

	seen := make(map[string]bool)
	records := make([]PelakRecord, 0, len(layer.Features))
	for i, feature := range layer.Features {
		mp, _ := feature.Geometry.(orb.MultiPolygon)
		if len(mp) > 1 {
			return nil, &UnsupportedGeometryTypeError{GeomType: "MultiPolygon"}
		}

		number := feature.Attr(numberField)
		if number == "" {
			return nil, &EmptyFieldError{Row: i + 1, Field: numberField}
		}
		if seen[number] {
			return nil, &DuplicateKeyError{Field: numberField, Value: number}
		}
		seen[number] = true

		records = append(records, PelakRecord{
			Title:    feature.Attr(titleField),
			Number:   number,
			Geometry: mp,
		})
	}
	return records, nil
}

// ValidateGDBLayer checks a geodatabase layer before materialization: a
// usable layer name, polygon geometry only and a resolvable CRS.
func ValidateGDBLayer(layer GDBLayer) error {
	if !methods.IsSafeIdentifier(layer.Name) {
		return &InvalidLayerNameError{Name: layer.Name}
	}
	geoType := strings.ToUpper(layer.GeomType)
	if !strings.Contains(geoType, "POLYGON") && !strings.Contains(geoType, "SURFACE") {
		return &UnsupportedGeometryTypeError{Layer: layer.Name, GeomType: layer.GeomType}
	}
	if layer.SRID == "" {
		return ErrUnknownCRS
	}
	return nil
}
