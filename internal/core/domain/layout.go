package domain

import (
	"path/filepath"
	"strings"
)

// CleanSegment turns a classification value into a filesystem-safe token.
// Only ASCII letters, digits, underscore and hyphen survive.
func CleanSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return Unknown
	}
	value = strings.ReplaceAll(value, " ", "_")
	value = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '_', r == '-':
			return r
		default:
			return -1
		}
	}, value)
	if value == "" {
		return Unknown
	}
	return value
}

func cleanedSegments(f Fields) [4]string {
	return [4]string{
		CleanSegment(f.Country),
		CleanSegment(f.Insurer),
		CleanSegment(f.InsuranceLine),
		CleanSegment(f.ProductName),
	}
}

// BuildFilename returns "{country}_{insurer}_{line}_{product}.pdf".
func BuildFilename(f Fields) string {
	seg := cleanedSegments(f)
	return strings.Join(seg[:], "_") + ".pdf"
}

// DestinationDir returns root/{country}/{insurer}/{line}/{product}.
func DestinationDir(root string, f Fields) string {
	seg := cleanedSegments(f)
	return filepath.Join(root, seg[0], seg[1], seg[2], seg[3])
}

// RecordKey is the metadata key for a source document: its base name without extension.
func RecordKey(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
