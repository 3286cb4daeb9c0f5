package pgimport

import (
	"reflect"
	"testing"
)

func sourceColumns() []ColumnInfo {
	return []ColumnInfo{
		{Name: "id", DataType: "integer", IsNullable: false},
		{Name: "geom", DataType: "USER-DEFINED", IsNullable: true},
		{Name: "code", DataType: "character varying", MaxLength: 100, IsNullable: true},
		{Name: "owner", DataType: "text", IsNullable: true},
		{Name: "surface", DataType: "double precision", IsNullable: true},
		{Name: "created", DataType: "date", IsNullable: true},
	}
}

func destColumns() []ColumnInfo {
	return []ColumnInfo{
		{Name: "id", DataType: "bigint", IsNullable: false},
		{Name: "border", DataType: "USER-DEFINED", IsNullable: false},
		{Name: "status", DataType: "integer", IsNullable: false},
		{Name: "pelak_id", DataType: "bigint", IsNullable: true},
		{Name: "created_by_id", DataType: "bigint", IsNullable: true},
		{Name: "created_at", DataType: "timestamp with time zone", IsNullable: true},
		{Name: "updated_at", DataType: "timestamp with time zone", IsNullable: true},
		{Name: "unique_code", DataType: "character varying", MaxLength: 100, IsNullable: false},
		{Name: "owner_name", DataType: "character varying", MaxLength: 255, IsNullable: true},
		{Name: "area", DataType: "double precision", IsNullable: true},
	}
}

func TestValidateMappingClean(t *testing.T) {
	pairs := []MappingPair{
		{Source: "owner", Dest: "owner_name"},
		{Source: "surface", Dest: "area"},
	}
	report := ValidateMapping(sourceColumns(), destColumns(), pairs)

	if report.Status != MappingOK {
		t.Fatalf("status = %d, want %d: %+v", report.Status, MappingOK, report)
	}
	if len(report.ValidPairs) != 2 || len(report.InvalidPairs) != 0 {
		t.Errorf("valid=%d invalid=%d, want 2/0", len(report.ValidPairs), len(report.InvalidPairs))
	}
}

func TestValidateMappingMissingColumnsAreErrors(t *testing.T) {
	pairs := []MappingPair{
		{Source: "nope", Dest: "owner_name"},
		{Source: "owner", Dest: "missing_dest"},
		{Source: "surface", Dest: "area"},
	}
	report := ValidateMapping(sourceColumns(), destColumns(), pairs)

	if report.Status != MappingErrors {
		t.Fatalf("status = %d, want %d", report.Status, MappingErrors)
	}
	if len(report.InvalidPairs) != 2 {
		t.Errorf("invalid = %d, want 2", len(report.InvalidPairs))
	}
	if len(report.ValidPairs) != 1 {
		t.Errorf("valid = %d, want 1", len(report.ValidPairs))
	}
}

func TestValidateMappingWarnings(t *testing.T) {
	t.Run("type group mismatch", func(t *testing.T) {
		pairs := []MappingPair{{Source: "surface", Dest: "owner_name"}}
		report := ValidateMapping(sourceColumns(), destColumns(), pairs)
		if report.Status != MappingWarnings {
			t.Fatalf("status = %d, want %d: %+v", report.Status, MappingWarnings, report)
		}
	})

	t.Run("duplicate destination", func(t *testing.T) {
		pairs := []MappingPair{
			{Source: "owner", Dest: "owner_name"},
			{Source: "code", Dest: "owner_name"},
		}
		report := ValidateMapping(sourceColumns(), destColumns(), pairs)
		if report.Status != MappingWarnings {
			t.Fatalf("status = %d, want %d", report.Status, MappingWarnings)
		}
	})

	t.Run("duplicate source", func(t *testing.T) {
		pairs := []MappingPair{
			{Source: "owner", Dest: "owner_name"},
			{Source: "owner", Dest: "unique_code"},
		}
		report := ValidateMapping(sourceColumns(), destColumns(), pairs)
		if report.Status != MappingWarnings {
			t.Fatalf("status = %d, want %d", report.Status, MappingWarnings)
		}
	})

	t.Run("nullability narrowing", func(t *testing.T) {
		pairs := []MappingPair{{Source: "code", Dest: "unique_code"}}
		report := ValidateMapping(sourceColumns(), destColumns(), pairs)
		if report.Status != MappingWarnings {
			t.Fatalf("status = %d, want %d: %+v", report.Status, MappingWarnings, report)
		}
	})
}

func TestValidateMappingUnmappedSetDifference(t *testing.T) {
	pairs := []MappingPair{
		{Source: "owner", Dest: "owner_name"},
	}
	report := ValidateMapping(sourceColumns(), destColumns(), pairs)

	// id and geom never count as unmapped source columns
	wantSource := []string{"code", "created", "surface"}
	if !reflect.DeepEqual(report.UnmappedSource, wantSource) {
		t.Errorf("UnmappedSource = %v, want %v", report.UnmappedSource, wantSource)
	}

	// protected destination columns never count as unmapped
	wantDest := []string{"area", "unique_code"}
	if !reflect.DeepEqual(report.UnmappedDest, wantDest) {
		t.Errorf("UnmappedDest = %v, want %v", report.UnmappedDest, wantDest)
	}
}

func TestValidateMappingIdempotent(t *testing.T) {
	pairs := []MappingPair{
		{Source: "owner", Dest: "owner_name"},
		{Source: "surface", Dest: "owner_name"},
		{Source: "nope", Dest: "area"},
	}
	first := ValidateMapping(sourceColumns(), destColumns(), pairs)
	second := ValidateMapping(sourceColumns(), destColumns(), pairs)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated validation differs:\n%+v\n%+v", first, second)
	}
}

func TestTypesCompatibleSymmetry(t *testing.T) {
	types := []string{
		"integer", "bigint", "double precision", "numeric",
		"character varying", "text",
		"date", "timestamp with time zone",
		"boolean", "USER-DEFINED", "bytea",
	}
	for _, a := range types {
		for _, b := range types {
			if TypesCompatible(a, b) != TypesCompatible(b, a) {
				t.Errorf("compatibility not symmetric for %s/%s", a, b)
			}
		}
		if !TypesCompatible(a, a) {
			t.Errorf("type %s not compatible with itself", a)
		}
	}
}

func TestTypesCompatibleUnfamiliarTypes(t *testing.T) {
	if TypesCompatible("bytea", "uuid") {
		t.Error("bytea and uuid should not be compatible")
	}
	if !TypesCompatible("bytea", "BYTEA") {
		t.Error("an unfamiliar type should match itself regardless of case")
	}
	if TypesCompatible("uuid", "text") {
		t.Error("uuid should not pass as text")
	}
}

func TestIsProtectedTarget(t *testing.T) {
	for _, name := range []string{"id", "Border", "STATUS", "pelak_id", "created_at"} {
		if !IsProtectedTarget(name) {
			t.Errorf("%s should be protected", name)
		}
	}
	if IsProtectedTarget("owner_name") {
		t.Error("owner_name should not be protected")
	}
}
