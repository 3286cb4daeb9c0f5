package pgimport

import (
	"fmt"
	"log"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jazijazi/jahadchecker/gis"
	"github.com/jazijazi/jahadchecker/methods"
	"github.com/jazijazi/jahadchecker/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const insertBatchSize = 500

// MaterializeGeodatabase turns every polygon layer of a geodatabase into
// its own staging table plus a StagingDataset record. All layers are
// validated up front; a failure while loading any layer drops everything
// created so far.
func MaterializeGeodatabase(db *gorm.DB, layers []gis.GDBLayer, srcFileName string, userID, provinceID *int64) ([]models.StagingDataset, error) {
	for _, layer := range layers {
		if err := gis.ValidateGDBLayer(layer); err != nil {
			return nil, err
		}
	}

	saga := &Saga{}
	var datasets []models.StagingDataset

	for _, layer := range layers {
		tableName := methods.StagingTableName(layer.Name)

		if err := createStagingTable(db, tableName, layer); err != nil {
			saga.Rollback()
			return nil, err
		}
		name := tableName
		saga.Add("drop table "+name, func() error {
			return DropStagingTable(db, name)
		})

		inserted, err := insertLayerFeatures(db, tableName, layer)
		if err != nil {
			saga.Rollback()
			return nil, err
		}

		dataset := models.StagingDataset{
			TableName:    tableName,
			LayerName:    layer.Name,
			GeomType:     "MultiPolygon",
			FeatureCount: inserted,
			SrcFileName:  srcFileName,
			ProvinceID:   provinceID,
			Status:       models.StagingNotMatched,
			CreatedByID:  userID,
		}
		if err := db.Create(&dataset).Error; err != nil {
			saga.Rollback()
			return nil, err
		}
		id := dataset.ID
		saga.Add(fmt.Sprintf("delete staging record %d", id), func() error {
			return db.Delete(&models.StagingDataset{}, id).Error
		})

		datasets = append(datasets, dataset)
	}

	saga.Reset()
	return datasets, nil
}

func createStagingTable(db *gorm.DB, tableName string, layer gis.GDBLayer) error {
	if !methods.IsSafeIdentifier(tableName) {
		return &InvalidIdentifierError{Name: tableName}
	}

	var columns []string
	for _, field := range layer.Fields {
		name := methods.SanitizeIdentifier(field.Name)
		if strings.EqualFold(name, "id") || strings.EqualFold(name, "geom") {
			continue
		}
		columns = append(columns, fmt.Sprintf("%s %s", name, field.DBType))
	}
	columns = append(columns, "id SERIAL PRIMARY KEY")

	query := fmt.Sprintf(`CREATE TABLE "%s" (%s, geom GEOMETRY(MultiPolygon, 4326))`,
		tableName, strings.Join(columns, ","))
	return db.Exec(query).Error
}

// geomExpr builds the insert expression for one feature geometry: force 2D,
// promote to multi and reproject into 4326 when the layer is projected.
func geomExpr(wkbHex string, srid string) clause.Expr {
	if srid != "" && srid != "4326" {
		if code, err := strconv.Atoi(srid); err == nil {
			sql := fmt.Sprintf(
				`ST_Multi(ST_Force2D(ST_Transform(ST_SetSRID(ST_GeomFromWKB(decode(?, 'hex')), %d), 4326)))`, code)
			return clause.Expr{SQL: sql, Vars: []interface{}{wkbHex}}
		}
	}
	return clause.Expr{
		SQL:  `ST_Multi(ST_Force2D(ST_SetSRID(ST_GeomFromWKB(decode(?, 'hex')), 4326)))`,
		Vars: []interface{}{wkbHex},
	}
}

func insertLayerFeatures(db *gorm.DB, tableName string, layer gis.GDBLayer) (int, error) {
	fieldNames := make(map[string]string, len(layer.Fields))
	for _, field := range layer.Fields {
		name := methods.SanitizeIdentifier(field.Name)
		if strings.EqualFold(name, "id") || strings.EqualFold(name, "geom") {
			continue
		}
		fieldNames[field.Name] = name
	}

	workerCount := runtime.NumCPU() / 2
	if workerCount < 1 {
		workerCount = 1
	}

	recordChan := make(chan []map[string]interface{}, workerCount*2)
	var wg sync.WaitGroup
	var successCount, errorCount int64

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range recordChan {
				err := db.Table(tableName).CreateInBatches(batch, insertBatchSize/2).Error
				if err != nil {
					atomic.AddInt64(&errorCount, int64(len(batch)))
					log.Printf("Batch insert into %s failed: %v", tableName, err)
				} else {
					atomic.AddInt64(&successCount, int64(len(batch)))
				}
			}
		}()
	}

	var batch []map[string]interface{}
	skipped := 0
	for _, feature := range layer.Features {
		if feature.WKBHex == "" {
			skipped++
			continue
		}
		record := make(map[string]interface{}, len(fieldNames)+1)
		for original, column := range fieldNames {
			record[column] = feature.Attrs[original]
		}
		record["geom"] = geomExpr(feature.WKBHex, layer.SRID)

		batch = append(batch, record)
		if len(batch) >= insertBatchSize {
			recordChan <- batch
			batch = nil
		}
	}
	if len(batch) > 0 {
		recordChan <- batch
	}
	close(recordChan)
	wg.Wait()

	if skipped > 0 {
		log.Printf("Layer %s: skipped %d features without geometry", layer.Name, skipped)
	}
	if errorCount > 0 {
		return int(successCount), fmt.Errorf("درج %d ردیف از لایه %s با خطا مواجه شد", errorCount, layer.Name)
	}
	return int(successCount), nil
}

// DropStagingTable removes a staging table. The identifier guard keeps the
// interpolated name safe.
func DropStagingTable(db *gorm.DB, tableName string) error {
	if !methods.IsSafeIdentifier(tableName) {
		return &InvalidIdentifierError{Name: tableName}
	}
	return db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS "%s" CASCADE`, tableName)).Error
}
