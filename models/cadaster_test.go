package models

import (
	"testing"
	"time"
)

func validCadaster() Cadaster {
	return Cadaster{
		UniqueCode:   "14020034",
		JaamCode:     "1234567",
		PlakAsli:     "44",
		PlakFarei:    "12",
		BakhshSabti:  "3",
		NationalCode: "0012345678",
		Status:       StatusUndecided,
		Border:       "0106000020e6100000",
	}
}

func TestCadasterValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Cadaster)
		wantErr bool
	}{
		{"valid", func(c *Cadaster) {}, false},
		{"empty border", func(c *Cadaster) { c.Border = "" }, true},
		{"empty unique code", func(c *Cadaster) { c.UniqueCode = "" }, true},
		{"short national code", func(c *Cadaster) { c.NationalCode = "123" }, true},
		{"national code optional", func(c *Cadaster) { c.NationalCode = "" }, false},
		{"non-digit jaam code", func(c *Cadaster) { c.JaamCode = "الف12" }, true},
		{"non-digit plak asli", func(c *Cadaster) { c.PlakAsli = "44/1" }, true},
		{"empty plak fields allowed", func(c *Cadaster) { c.PlakAsli, c.PlakFarei, c.BakhshSabti = "", "", "" }, false},
		{"unknown status", func(c *Cadaster) { c.Status = 9 }, true},
		{"zero status", func(c *Cadaster) { c.Status = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCadaster()
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMarkStatusChanged(t *testing.T) {
	c := validCadaster()
	at := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)

	c.MarkStatusChanged(StatusSubdivided, 7, at)

	if c.Status != StatusSubdivided {
		t.Fatalf("Status = %d, want %d", c.Status, StatusSubdivided)
	}
	if c.ChangeStatusDate == nil || !c.ChangeStatusDate.Equal(at) {
		t.Fatalf("ChangeStatusDate = %v, want %v", c.ChangeStatusDate, at)
	}
	if c.ChangeStatusByID == nil || *c.ChangeStatusByID != 7 {
		t.Fatalf("ChangeStatusByID = %v, want 7", c.ChangeStatusByID)
	}
}

func TestStatusLabelsShared(t *testing.T) {
	for status, label := range FlagStatusLabels {
		if CadasterStatusLabels[status] != label {
			t.Fatalf("label mismatch for status %d: %q vs %q", status, CadasterStatusLabels[status], label)
		}
	}
	if !ValidStatus(StatusUndecided) {
		t.Fatal("undecided must be a valid cadaster status")
	}
	if ValidFlagStatus(StatusUndecided) {
		t.Fatal("undecided must not be a valid flag status")
	}
}
