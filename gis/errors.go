package gis

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for archive and layer validation. Handlers map these to
// user-facing responses, so the messages are the Persian details shown to
// the uploader.
var (
	ErrInvalidArchive       = errors.New("فایل ارسال شده یک فایل فشرده معتبر نیست")
	ErrNoGeodatabaseFound   = errors.New("هیچ پایگاه داده مکانی (gdb) در فایل فشرده یافت نشد")
	ErrAmbiguousGeodatabase = errors.New("بیش از یک پایگاه داده مکانی (gdb) در فایل فشرده وجود دارد")
	ErrUnknownCRS           = errors.New("سیستم مختصات فایل مشخص نیست")
	ErrEmptyLayer           = errors.New("لایه انتخاب شده هیچ عارضه‌ای ندارد")
)

// MissingComponentsError reports shapefile sidecars absent from an archive.
type MissingComponentsError struct {
	Missing []string
}

func (e *MissingComponentsError) Error() string {
	return fmt.Sprintf("فایل های ضروری در فایل فشرده وجود ندارد: %s", strings.Join(e.Missing, ", "))
}

// UnsupportedGeometryTypeError reports a layer whose geometry type cannot
// become a cadaster border.
type UnsupportedGeometryTypeError struct {
	Layer    string
	GeomType string
}

func (e *UnsupportedGeometryTypeError) Error() string {
	if strings.Contains(strings.ToLower(e.GeomType), "multipolygon") {
		return "هندسه چندبخشی (MultiPolygon) پشتیبانی نمی‌شود؛ لطفا عارضه‌ها را به چندضلعی ساده تبدیل کنید"
	}
	if e.Layer != "" {
		return fmt.Sprintf("نوع هندسه لایه %s پشتیبانی نمی‌شود: %s", e.Layer, e.GeomType)
	}
	return fmt.Sprintf("نوع هندسه پشتیبانی نمی‌شود: %s", e.GeomType)
}

// InvalidLayerNameError reports a layer whose name cannot become a table
// identifier.
type InvalidLayerNameError struct {
	Name string
}

func (e *InvalidLayerNameError) Error() string {
	return fmt.Sprintf("نام لایه معتبر نیست: %s", e.Name)
}

// EmptyFieldError reports a required attribute missing on a specific row.
type EmptyFieldError struct {
	Row   int
	Field string
}

func (e *EmptyFieldError) Error() string {
	return fmt.Sprintf("مقدار فیلد %s در ردیف %d خالی است", e.Field, e.Row)
}

// DuplicateKeyError reports a key value seen more than once in one upload.
type DuplicateKeyError struct {
	Field string
	Value string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("مقدار تکراری برای فیلد %s: %s", e.Field, e.Value)
}
