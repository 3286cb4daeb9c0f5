package pgimport

import (
	"fmt"
	"strings"
)

// InvalidIdentifierError reports a table or column name that failed the
// identifier guard before being interpolated into DDL.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("نام جدول یا ستون معتبر نیست: %s", e.Name)
}

// TableNotFoundError reports a staging table absent from the database.
type TableNotFoundError struct {
	Table string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("جدول %s در پایگاه داده وجود ندارد", e.Table)
}

// ImportValidationError carries the per-row failures of a rejected import.
// Collection stops after maxRowErrors rows.
type ImportValidationError struct {
	RowErrors []string
	Truncated bool
}

func (e *ImportValidationError) Error() string {
	msg := strings.Join(e.RowErrors, "؛ ")
	if e.Truncated {
		msg += "؛ ..."
	}
	return fmt.Sprintf("داده های ورودی معتبر نیستند: %s", msg)
}
