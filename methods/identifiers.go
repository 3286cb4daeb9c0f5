package methods

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsSafeIdentifier reports whether name can be interpolated into DDL as a
// quoted table or column name.
func IsSafeIdentifier(name string) bool {
	return identRe.MatchString(name)
}

// SanitizeIdentifier lowercases name and rewrites it into a safe identifier.
// Characters outside [a-z0-9_] become underscores and a leading digit gets
// an underscore prefix.
func SanitizeIdentifier(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" {
		out = "layer"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}

// StagingTableName builds a collision-free staging table name from a layer
// name, keeping room for the random suffix inside the postgres limit.
func StagingTableName(layerName string) string {
	base := SanitizeIdentifier(layerName)
	if len(base) > 54 {
		base = base[:54]
	}
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return base + "_" + suffix
}
