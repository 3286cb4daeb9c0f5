package pgimport

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jazijazi/jahadchecker/models"
	"gorm.io/gorm/clause"
)

func importPairs() []MappingPair {
	return []MappingPair{
		{Source: "code", Dest: "unique_code"},
		{Source: "owner", Dest: "owner_name"},
	}
}

func stagingRow(code string) map[string]interface{} {
	return map[string]interface{}{
		"code":     code,
		"owner":    "رضایی",
		"geom_hex": "0106000020e6100000",
	}
}

func TestFilterImportPairsDropsSystemColumns(t *testing.T) {
	valid := []PairResult{
		{Source: "old_status", Dest: "Status"},
		{Source: "shape", Dest: "border"},
		{Source: "who", Dest: "created_by_id"},
		{Source: "Code", Dest: "Unique_Code"},
		{Source: "owner", Dest: "owner_name"},
	}

	got := filterImportPairs(valid)

	want := []MappingPair{
		{Source: "code", Dest: "unique_code"},
		{Source: "owner", Dest: "owner_name"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("filterImportPairs = %v, want %v", got, want)
	}
}

func TestBuildImportRecordsAssignsSystemColumns(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	pelakID := int64(3)

	records, rowErrors, truncated := buildImportRecords(
		[]map[string]interface{}{stagingRow("100")}, importPairs(), &pelakID, 7, now)

	if len(rowErrors) != 0 || truncated {
		t.Fatalf("rowErrors = %v truncated = %v, want none", rowErrors, truncated)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	rec := records[0]
	if rec["unique_code"] != "100" || rec["owner_name"] != "رضایی" {
		t.Errorf("mapped values not carried: %v", rec)
	}
	if _, ok := rec["border"].(clause.Expr); !ok {
		t.Errorf("border = %T, want clause.Expr", rec["border"])
	}
	if rec["status"] != models.StatusUndecided {
		t.Errorf("status = %v, want %d", rec["status"], models.StatusUndecided)
	}
	if rec["created_by_id"] != int64(7) || rec["pelak_id"] != &pelakID {
		t.Errorf("audit columns wrong: %v", rec)
	}
	if rec["created_at"] != now || rec["updated_at"] != now {
		t.Errorf("timestamps wrong: %v", rec)
	}
}

func TestBuildImportRecordsDuplicateCodes(t *testing.T) {
	rows := []map[string]interface{}{
		stagingRow("100"),
		stagingRow("100"),
		stagingRow("200"),
	}

	records, rowErrors, truncated := buildImportRecords(rows, importPairs(), nil, 1, time.Now())

	if truncated {
		t.Error("truncated = true, want false")
	}
	if len(records) != 3 {
		t.Errorf("records = %d, want 3", len(records))
	}
	if len(rowErrors) != 1 {
		t.Fatalf("rowErrors = %v, want exactly one", rowErrors)
	}
	if !strings.Contains(rowErrors[0], "ردیف 2") || !strings.Contains(rowErrors[0], "تکراری") {
		t.Errorf("error should name the duplicate row: %q", rowErrors[0])
	}
}

func TestBuildImportRecordsErrorCap(t *testing.T) {
	var rows []map[string]interface{}
	for i := 0; i < maxRowErrors+2; i++ {
		rows = append(rows, stagingRow(""))
	}

	_, rowErrors, truncated := buildImportRecords(rows, importPairs(), nil, 1, time.Now())

	if len(rowErrors) != maxRowErrors {
		t.Errorf("rowErrors = %d, want %d", len(rowErrors), maxRowErrors)
	}
	if !truncated {
		t.Error("truncated = false, want true")
	}
}

func TestBuildImportRecordsInvalidGeometry(t *testing.T) {
	row := stagingRow("100")
	row["geom_hex"] = ""

	_, rowErrors, _ := buildImportRecords(
		[]map[string]interface{}{row}, importPairs(), nil, 1, time.Now())

	if len(rowErrors) != 1 {
		t.Fatalf("rowErrors = %v, want one geometry error", rowErrors)
	}
}
