package pgimport

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jazijazi/jahadchecker/methods"
	"github.com/jazijazi/jahadchecker/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxRowErrors caps how many row failures an import reports before giving up
// on collecting more.
const maxRowErrors = 10

var (
	ErrDatasetNotFound = errors.New("مجموعه داده مورد نظر یافت نشد")
	ErrAlreadyImported = errors.New("این مجموعه داده قبلا وارد شده است")
	ErrMappingRejected = errors.New("نگاشت ستون ها دارای خطا است و وارد کردن ممکن نیست")
)

type ImportRequest struct {
	DatasetID int64
	Pairs     []MappingPair
	PelakID   *int64
	UserID    int64
}

type ImportResult struct {
	Imported  int    `json:"imported"`
	TableName string `json:"table_name"`
}

// ImportStagingDataset copies a staging table into the cadaster table in
// two passes: validate every row first, then insert everything inside one
// transaction. Pairs targeting system-assigned columns are dropped without
// complaint and the geometry column is always carried over, regardless of
// the caller's pairs. A dataset is consumed exactly once; the matched flag
// is flipped with a compare-and-set inside the same transaction.
func ImportStagingDataset(db *gorm.DB, req ImportRequest) (*ImportResult, error) {
	var dataset models.StagingDataset
	if err := db.First(&dataset, req.DatasetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDatasetNotFound
		}
		return nil, err
	}
	if dataset.Status == models.StagingMatched {
		return nil, ErrAlreadyImported
	}

	sourceCols, err := TableColumns(db, dataset.TableName)
	if err != nil {
		return nil, err
	}
	destCols, err := TableColumns(db, "cadaster")
	if err != nil {
		return nil, err
	}
	report := ValidateMapping(sourceCols, destCols, req.Pairs)
	if report.Status == MappingErrors {
		return nil, ErrMappingRejected
	}

	pairs := filterImportPairs(report.ValidPairs)

	rows, err := readStagingRows(db, dataset.TableName, pairs)
	if err != nil {
		return nil, err
	}

	records, rowErrors, overflow := buildImportRecords(rows, pairs, req.PelakID, req.UserID, time.Now())
	if len(rowErrors) > 0 {
		return nil, &ImportValidationError{RowErrors: rowErrors, Truncated: overflow}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, record := range records {
			if err := tx.Table("cadaster").Create(record).Error; err != nil {
				return err
			}
		}
		ok, err := models.MarkStagingMatched(tx, dataset.ID, req.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAlreadyImported
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ImportResult{Imported: len(records), TableName: dataset.TableName}, nil
}

// filterImportPairs lowercases the validated pairs and drops those aimed
// at system-assigned columns.
func filterImportPairs(valid []PairResult) []MappingPair {
	pairs := make([]MappingPair, 0, len(valid))
	for _, pair := range valid {
		if IsProtectedTarget(pair.Dest) {
			continue
		}
		pairs = append(pairs, MappingPair{
			Source: strings.ToLower(pair.Source),
			Dest:   strings.ToLower(pair.Dest),
		})
	}
	return pairs
}

// buildImportRecords turns staging rows into cadaster insert records and
// collects per-row validation failures. Geometry, status and the audit
// columns are assigned here regardless of the pairs. At most maxRowErrors
// failures are kept; the bool reports whether more were found.
func buildImportRecords(rows []map[string]interface{}, pairs []MappingPair, pelakID *int64, userID int64, now time.Time) ([]map[string]interface{}, []string, bool) {
	records := make([]map[string]interface{}, 0, len(rows))
	var rowErrors []string
	overflow := false
	seenCodes := make(map[string]int)

	for i, row := range rows {
		geomHex, _ := row["geom_hex"].(string)

		record := make(map[string]interface{}, len(pairs)+6)
		for _, pair := range pairs {
			record[pair.Dest] = row[pair.Source]
		}
		record["border"] = clause.Expr{
			SQL:  `ST_Multi(ST_Force2D(ST_SetSRID(ST_GeomFromWKB(decode(?, 'hex')), 4326)))`,
			Vars: []interface{}{geomHex},
		}
		record["status"] = models.StatusUndecided
		record["pelak_id"] = pelakID
		record["created_by_id"] = userID
		record["created_at"] = now
		record["updated_at"] = now

		candidate := models.Cadaster{
			UniqueCode:   asString(record["unique_code"]),
			JaamCode:     asString(record["jaam_code"]),
			PlakAsli:     asString(record["plak_asli"]),
			PlakFarei:    asString(record["plak_farei"]),
			BakhshSabti:  asString(record["bakhsh_sabti"]),
			NationalCode: asString(record["national_code"]),
			Border:       geomHex,
			Status:       models.StatusUndecided,
		}
		if err := candidate.Validate(); err != nil {
			rowErrors, overflow = appendRowError(rowErrors, i+1, err.Error())
		} else if prev, dup := seenCodes[candidate.UniqueCode]; dup {
			rowErrors, overflow = appendRowError(rowErrors, i+1,
				fmt.Sprintf("کد یکتا %s با ردیف %d تکراری است", candidate.UniqueCode, prev))
		} else {
			seenCodes[candidate.UniqueCode] = i + 1
		}

		records = append(records, record)
	}
	return records, rowErrors, overflow
}

func readStagingRows(db *gorm.DB, tableName string, pairs []MappingPair) ([]map[string]interface{}, error) {
	if !methods.IsSafeIdentifier(tableName) {
		return nil, &InvalidIdentifierError{Name: tableName}
	}

	seen := make(map[string]bool, len(pairs))
	selects := make([]string, 0, len(pairs)+1)
	for _, pair := range pairs {
		if seen[pair.Source] {
			continue
		}
		seen[pair.Source] = true
		if !methods.IsSafeIdentifier(pair.Source) {
			return nil, &InvalidIdentifierError{Name: pair.Source}
		}
		selects = append(selects, fmt.Sprintf(`"%s"`, pair.Source))
	}
	selects = append(selects, `encode(ST_AsBinary(geom), 'hex') AS geom_hex`)

	var rows []map[string]interface{}
	err := db.Table(tableName).
		Select(strings.Join(selects, ", ")).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func appendRowError(rowErrors []string, row int, detail string) ([]string, bool) {
	if len(rowErrors) >= maxRowErrors {
		return rowErrors, true
	}
	return append(rowErrors, fmt.Sprintf("ردیف %d: %s", row, detail)), false
}

func asString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}
