package pgimport

import (
	"fmt"
	"sort"
	"strings"
)

const (
	MappingOK       = 1
	MappingWarnings = 0
	MappingErrors   = -1
)

// Destination columns the importer assigns itself. Caller mappings onto
// them are ignored, never copied.
var protectedTargets = map[string]bool{
	"id":                  true,
	"border":              true,
	"status":              true,
	"change_status_date":  true,
	"change_status_by_id": true,
	"pelak_id":            true,
	"created_by_id":       true,
	"created_at":          true,
	"updated_at":          true,
}

// IsProtectedTarget reports whether the named cadaster column is
// system-assigned.
func IsProtectedTarget(name string) bool {
	return protectedTargets[strings.ToLower(name)]
}

// MappingPair is one caller-supplied source-to-destination column pair.
// Order matters: pairs are evaluated in input order.
type MappingPair struct {
	Source string `json:"old_cadaster_col"`
	Dest   string `json:"landreg_cadaster_col"`
}

// PairResult is the evaluated outcome of one pair.
type PairResult struct {
	Source   string   `json:"source"`
	Dest     string   `json:"dest"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

type MappingReport struct {
	Status         int          `json:"status"`
	ValidPairs     []PairResult `json:"valid_mappings"`
	InvalidPairs   []PairResult `json:"invalid_mappings"`
	Warnings       []string     `json:"warnings"`
	UnmappedSource []string     `json:"unmapped_source_columns"`
	UnmappedDest   []string     `json:"unmapped_destination_columns"`
}

// typeGroup buckets information_schema data types into families that can
// be copied into each other.
func typeGroup(dataType string) string {
	lower := strings.ToLower(dataType)
	switch lower {
	case "integer", "bigint", "smallint", "numeric", "decimal", "real", "double precision":
		return "numeric"
	case "character varying", "varchar", "character", "char", "text":
		return "text"
	case "date", "time without time zone", "time with time zone",
		"timestamp without time zone", "timestamp with time zone":
		return "temporal"
	case "boolean":
		return "boolean"
	case "user-defined":
		return "geometry"
	default:
		// unfamiliar types only match themselves
		return lower
	}
}

// TypesCompatible reports whether values of one column type can land in
// the other. The relation is symmetric.
func TypesCompatible(a, b string) bool {
	return typeGroup(a) == typeGroup(b)
}

// ValidateMapping evaluates the caller's pairs against the two column
// inventories. Missing columns are errors; duplicate usage, type-group
// mismatches and nullability changes are warnings. The derived status code
// is the sole gate the importer consults: -1 with any invalid pair, 0 with
// warnings only, 1 when clean.
func ValidateMapping(source, dest []ColumnInfo, pairs []MappingPair) *MappingReport {
	report := &MappingReport{Status: MappingOK}

	srcByName := make(map[string]ColumnInfo, len(source))
	for _, c := range source {
		srcByName[strings.ToLower(c.Name)] = c
	}
	dstByName := make(map[string]ColumnInfo, len(dest))
	for _, c := range dest {
		dstByName[strings.ToLower(c.Name)] = c
	}

	seenSrc := make(map[string]bool)
	seenDst := make(map[string]bool)
	generalWarnings := make(map[string]bool)

	for _, pair := range pairs {
		result := PairResult{Source: pair.Source, Dest: pair.Dest}
		srcKey := strings.ToLower(pair.Source)
		dstKey := strings.ToLower(pair.Dest)

		srcCol, srcOK := srcByName[srcKey]
		if !srcOK {
			result.Errors = append(result.Errors,
				fmt.Sprintf("ستون %s در جدول مبدا وجود ندارد", pair.Source))
		}
		dstCol, dstOK := dstByName[dstKey]
		if !dstOK {
			result.Errors = append(result.Errors,
				fmt.Sprintf("ستون %s در جدول مقصد وجود ندارد", pair.Dest))
		}

		if seenSrc[srcKey] {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("ستون مبدا %s بیش از یک بار نگاشت شده است", pair.Source))
		}
		if seenDst[dstKey] {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("ستون مقصد %s بیش از یک بار استفاده شده است", pair.Dest))
		}
		seenSrc[srcKey] = true
		seenDst[dstKey] = true

		if srcOK && dstOK {
			if !TypesCompatible(srcCol.DataType, dstCol.DataType) {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("نوع داده %s با %s هم‌گروه نیست", srcCol.DataType, dstCol.DataType))
			}
			if srcCol.IsNullable && !dstCol.IsNullable {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("ستون %s می‌تواند خالی باشد اما ستون %s اجباری است", pair.Source, pair.Dest))
			}
			if !srcCol.IsNullable && dstCol.IsNullable {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("ستون اجباری %s به ستون اختیاری %s نگاشت شده است", pair.Source, pair.Dest))
			}
		}

		for _, w := range result.Warnings {
			generalWarnings[w] = true
		}

		if len(result.Errors) > 0 {
			report.InvalidPairs = append(report.InvalidPairs, result)
		} else {
			report.ValidPairs = append(report.ValidPairs, result)
		}
	}

	for w := range generalWarnings {
		report.Warnings = append(report.Warnings, w)
	}
	sort.Strings(report.Warnings)

	mappedSrc := make(map[string]bool, len(report.ValidPairs))
	mappedDst := make(map[string]bool, len(report.ValidPairs))
	for _, pair := range report.ValidPairs {
		mappedSrc[strings.ToLower(pair.Source)] = true
		mappedDst[strings.ToLower(pair.Dest)] = true
	}
	for _, c := range source {
		key := strings.ToLower(c.Name)
		if key == "id" || key == "geom" || mappedSrc[key] {
			continue
		}
		report.UnmappedSource = append(report.UnmappedSource, c.Name)
	}
	for _, c := range dest {
		key := strings.ToLower(c.Name)
		if protectedTargets[key] || mappedDst[key] {
			continue
		}
		report.UnmappedDest = append(report.UnmappedDest, c.Name)
	}
	sort.Strings(report.UnmappedSource)
	sort.Strings(report.UnmappedDest)

	switch {
	case len(report.InvalidPairs) > 0:
		report.Status = MappingErrors
	case len(report.Warnings) > 0:
		report.Status = MappingWarnings
	default:
		report.Status = MappingOK
	}
	return report
}
