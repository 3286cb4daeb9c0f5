package gis

import (
	"log"
	"strconv"

	"github.com/GrainArc/Gogeo"
)

// GDBField is one attribute column of a geodatabase layer with its mapped
// postgres type.
type GDBField struct {
	Name   string
	DBType string
}

// GDBFeature is one geodatabase feature, geometry kept as hex WKB the way
// postgis ingests it.
type GDBFeature struct {
	Attrs  map[string]interface{}
	WKBHex string
}

type GDBLayer struct {
	Name     string
	GeomType string
	SRID     string
	Fields   []GDBField
	Features []GDBFeature
}

// GeoDatabaseReader reads layers out of a FileGDB directory. The production
// implementation wraps Gogeo; tests substitute an in-memory one.
type GeoDatabaseReader interface {
	ReadLayers(gdbPath string, targetLayers []string) ([]GDBLayer, error)
	ListLayers(gdbPath string) ([]GDBLayer, error)
}

type GogeoReader struct{}

func (GogeoReader) ReadLayers(gdbPath string, targetLayers []string) ([]GDBLayer, error) {
	layers, err := Gogeo.GDBToPostGIS(gdbPath, targetLayers)
	if err != nil {
		return nil, err
	}

	metadataCollection, err := Gogeo.ReadGDBLayerMetadata(gdbPath)
	if err != nil {
		log.Printf("Failed to read gdb metadata for %s: %v", gdbPath, err)
		metadataCollection = nil
	}

	out := make([]GDBLayer, 0, len(layers))
	for _, layer := range layers {
		l := GDBLayer{
			Name:     layer.LayerName,
			GeomType: layer.GeoType,
		}
		if metadataCollection != nil {
			if meta := metadataCollection.GetLayerByName(layer.LayerName); meta != nil && meta.EPSG != 0 {
				l.SRID = strconv.Itoa(meta.EPSG)
			}
		}
		for _, field := range layer.FieldInfos {
			l.Fields = append(l.Fields, GDBField{Name: field.Name, DBType: field.DBType})
		}
		for _, feature := range layer.FeatureData {
			l.Features = append(l.Features, GDBFeature{
				Attrs:  feature.Properties,
				WKBHex: feature.WKBHex,
			})
		}
		out = append(out, l)
	}
	return out, nil
}

// ListLayers reads the full geodatabase and strips feature data, keeping
// only names, geometry types and schemas for inspection responses.
func (r GogeoReader) ListLayers(gdbPath string) ([]GDBLayer, error) {
	layers, err := r.ReadLayers(gdbPath, nil)
	if err != nil {
		return nil, err
	}
	for i := range layers {
		layers[i].Features = nil
	}
	return layers, nil
}
