package gis

import (
	"os"
	"path/filepath"
	"strings"

	"gitee.com/LJ_COOL/go-shp"
	"github.com/paulmach/orb"
)

// ShapeFeature is one shapefile record with its geometry assembled into orb
// form and its dbf attributes keyed by field name.
type ShapeFeature struct {
	Geometry orb.Geometry
	Attrs    map[string]string
}

// ShapeLayer is the fully read content of a .shp plus sidecars.
type ShapeLayer struct {
	Features []ShapeFeature
	GeomType string
	SRID     string
	// SkippedEmpty counts records dropped for having no coordinates.
	SkippedEmpty int
}

// ReadShapefile reads a polygon shapefile into memory. Non-polygon shape
// types are rejected and records with empty geometry are skipped.
func ReadShapefile(shpPath string) (*ShapeLayer, error) {
	shape, err := shp.Open(shpPath)
	if err != nil {
		return nil, err
	}
	defer shape.Close()

	fields := shape.Fields()
	layer := &ShapeLayer{}

	for shape.Next() {
		n, p := shape.Shape()

		var geom orb.Geometry
		switch s := p.(type) {
		case *shp.Polygon:
			geom = assemblePolygon(s.Points, s.Parts)
		case *shp.PolygonZ:
			geom = assemblePolygon(s.Points, s.Parts)
		case *shp.PolygonM:
			geom = assemblePolygon(s.Points, s.Parts)
		case *shp.Point, *shp.PointZ, *shp.PointM:
			return nil, &UnsupportedGeometryTypeError{GeomType: "Point"}
		case *shp.PolyLine, *shp.PolyLineZ, *shp.PolyLineM:
			return nil, &UnsupportedGeometryTypeError{GeomType: "LineString"}
		default:
			return nil, &UnsupportedGeometryTypeError{GeomType: "Unknown"}
		}

		mp, _ := geom.(orb.MultiPolygon)
		if len(mp) == 0 {
			layer.SkippedEmpty++
			continue
		}

		attrs := make(map[string]string)
		for k, f := range fields {
			attrs[strings.TrimRight(f.String(), "\x00")] = strings.TrimSpace(shape.ReadAttribute(n, k))
		}

		layer.Features = append(layer.Features, ShapeFeature{Geometry: mp, Attrs: attrs})
	}

	layer.GeomType = "MultiPolygon"
	srid, err := detectSRID(shpPath, layer)
	if err != nil {
		return nil, err
	}
	layer.SRID = srid
	return layer, nil
}

// HasField reports whether the dbf carries the named column, ignoring case.
func (l *ShapeLayer) HasField(name string) bool {
	if len(l.Features) == 0 {
		return false
	}
	for k := range l.Features[0].Attrs {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

// Attr returns the value of the named column on a feature, ignoring case.
func (f *ShapeFeature) Attr(name string) string {
	for k, v := range f.Attrs {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func splitPoints(points []shp.Point, parts []int32) [][]shp.Point {
	var rings [][]shp.Point
	for i, partIndex := range parts {
		start := partIndex
		var end int32
		if i < len(parts)-1 {
			end = parts[i+1]
		} else {
			end = int32(len(points))
		}
		rings = append(rings, points[start:end])
	}
	return rings
}

func isClockwise(points []orb.Point) bool {
	sum := 0.0
	for i := 0; i < len(points)-1; i++ {
		p1 := points[i]
		p2 := points[i+1]
		sum += (p2[0] - p1[0]) * (p2[1] + p1[1])
	}
	return sum > 0
}

// assemblePolygon groups shapefile rings into a MultiPolygon. Clockwise
// rings open a new polygon, counter-clockwise rings are holes of the
// preceding outer ring.
func assemblePolygon(points []shp.Point, parts []int32) orb.MultiPolygon {
	var multi orb.MultiPolygon
	var current orb.Polygon

	for _, part := range splitPoints(points, parts) {
		coords := make([]orb.Point, len(part))
		for j, vertex := range part {
			coords[j] = orb.Point{vertex.X, vertex.Y}
		}
		if len(coords) < 4 {
			continue
		}
		if isClockwise(coords) {
			if len(current) > 0 {
				multi = append(multi, current)
			}
			current = orb.Polygon{orb.Ring(coords)}
		} else if len(current) > 0 {
			current = append(current, orb.Ring(coords))
		} else {
			// counter-clockwise first ring, treat as outer anyway
			current = orb.Polygon{orb.Ring(coords)}
		}
	}
	if len(current) > 0 {
		multi = append(multi, current)
	}
	return multi
}

// detectSRID resolves the layer CRS from the .prj sidecar, falling back to a
// coordinate-range check when the sidecar is missing.
func detectSRID(shpPath string, layer *ShapeLayer) (string, error) {
	prjPath := strings.TrimSuffix(shpPath, filepath.Ext(shpPath)) + ".prj"
	if content, err := os.ReadFile(prjPath); err == nil {
		if srid := parsePrjSRID(string(content)); srid != "" {
			return srid, nil
		}
		return "", ErrUnknownCRS
	}

	for _, f := range layer.Features {
		if mp, ok := f.Geometry.(orb.MultiPolygon); ok && len(mp) > 0 && len(mp[0]) > 0 && len(mp[0][0]) > 0 {
			if srid := detectCRSFromPoint(mp[0][0][0]); srid != "" {
				return srid, nil
			}
			return "", ErrUnknownCRS
		}
	}
	return "", ErrUnknownCRS
}

// parsePrjSRID maps the WKT projection names seen in cadastral deliveries
// to their EPSG codes.
func parsePrjSRID(wkt string) string {
	switch {
	case strings.Contains(wkt, "UTM_Zone_38N"):
		return "32638"
	case strings.Contains(wkt, "UTM_Zone_39N"):
		return "32639"
	case strings.Contains(wkt, "UTM_Zone_40N"):
		return "32640"
	case strings.Contains(wkt, "UTM_Zone_41N"):
		return "32641"
	case strings.Contains(wkt, "GCS_WGS_1984"), strings.Contains(wkt, `GEOGCS["WGS 84"`):
		return "4326"
	default:
		return ""
	}
}

// detectCRSFromPoint guesses the CRS from coordinate magnitude. Iran spans
// UTM zones 38 to 41 north, so projected eastings sit well outside the
// longitude range.
func detectCRSFromPoint(p orb.Point) string {
	x, y := p[0], p[1]
	switch {
	case x >= 44 && x <= 64 && y >= 24 && y <= 40:
		return "4326"
	case x >= 100000 && x <= 900000 && y >= 2500000 && y <= 4600000:
		// projected, but the zone cannot be recovered from coordinates
		return ""
	default:
		return ""
	}
}
