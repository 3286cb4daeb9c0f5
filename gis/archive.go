package gis

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jazijazi/jahadchecker/methods"
)

// shapefile sidecars that must ship together
var requiredShapeParts = []string{".shp", ".shx", ".dbf"}

// UnpackShapefile extracts an uploaded zip into workDir and returns the path
// of the .shp inside it. The caller owns workDir and removes it when done.
func UnpackShapefile(zipPath string, workDir string) (string, error) {
	names, err := methods.ListZipNames(zipPath)
	if err != nil {
		return "", ErrInvalidArchive
	}

	var base string
	for _, name := range names {
		if strings.EqualFold(filepath.Ext(name), ".shp") {
			base = strings.TrimSuffix(strings.ToLower(filepath.Base(name)), ".shp")
			break
		}
	}
	if base == "" {
		return "", &MissingComponentsError{Missing: []string{".shp"}}
	}

	// sidecars must share the .shp basename, stray files don't count
	present := make(map[string]bool, len(names))
	for _, name := range names {
		present[strings.ToLower(filepath.Base(name))] = true
	}
	var missing []string
	for _, ext := range requiredShapeParts {
		if !present[base+ext] {
			missing = append(missing, ext)
		}
	}
	if len(missing) > 0 {
		return "", &MissingComponentsError{Missing: missing}
	}

	if err := methods.UnzipTo(zipPath, workDir); err != nil {
		return "", ErrInvalidArchive
	}

	shpPath := findByExt(workDir, ".shp")
	if shpPath == "" {
		return "", &MissingComponentsError{Missing: []string{".shp"}}
	}
	return shpPath, nil
}

// UnpackGeodatabase extracts an uploaded zip into workDir and returns the
// single .gdb directory inside it. Zero geodatabases or more than one are
// both rejected.
func UnpackGeodatabase(zipPath string, workDir string) (string, error) {
	if err := methods.UnzipTo(zipPath, workDir); err != nil {
		return "", ErrInvalidArchive
	}

	var gdbs []string
	filepath.Walk(workDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() && strings.EqualFold(filepath.Ext(path), ".gdb") {
			gdbs = append(gdbs, path)
			return filepath.SkipDir
		}
		return nil
	})

	switch len(gdbs) {
	case 0:
		return "", ErrNoGeodatabaseFound
	case 1:
		return gdbs[0], nil
	default:
		return "", ErrAmbiguousGeodatabase
	}
}

func findByExt(root string, ext string) string {
	var found string
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if found == "" && strings.EqualFold(filepath.Ext(path), ext) {
			found = path
		}
		return nil
	})
	return found
}
