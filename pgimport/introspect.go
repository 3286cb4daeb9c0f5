package pgimport

import (
	"strings"

	"github.com/jazijazi/jahadchecker/methods"
	"gorm.io/gorm"
)

// ColumnInfo is one column of a public-schema table as reported by
// information_schema.
type ColumnInfo struct {
	Name       string
	DataType   string
	MaxLength  int
	IsNullable bool
}

// TableExists checks the public schema for the named table.
func TableExists(db *gorm.DB, tableName string) bool {
	var count int64
	query := `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_name = ? AND table_schema = 'public'
	`
	db.Raw(query, tableName).Scan(&count)
	return count > 0
}

// TableColumns reads the column inventory of a table. The caller gets a
// TableNotFoundError when the table is missing rather than an empty list.
func TableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	if !methods.IsSafeIdentifier(tableName) {
		return nil, &InvalidIdentifierError{Name: tableName}
	}
	if !TableExists(db, tableName) {
		return nil, &TableNotFoundError{Table: tableName}
	}

	query := `
		SELECT column_name, data_type,
		       COALESCE(character_maximum_length, 0) as max_length,
		       is_nullable
		FROM information_schema.columns
		WHERE table_name = ? AND table_schema = 'public'
		ORDER BY ordinal_position
	`

	rows, err := db.Raw(query, tableName).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []ColumnInfo
	for rows.Next() {
		var name, dataType, nullable string
		var maxLength int
		if err := rows.Scan(&name, &dataType, &maxLength, &nullable); err != nil {
			continue
		}
		columns = append(columns, ColumnInfo{
			Name:       name,
			DataType:   dataType,
			MaxLength:  maxLength,
			IsNullable: strings.EqualFold(nullable, "YES"),
		})
	}
	return columns, nil
}
