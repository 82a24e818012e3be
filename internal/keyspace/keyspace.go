// Package keyspace owns the object key layout shared with existing stored
// data:
//
//	<category>/<owner_id>/<file_name>                      live documents
//	backups/<category>/<timestamp>/<owner_id>/<file_name>  folder backups
package keyspace

import (
	"strings"
	"time"
	"unicode"

	"github.com/abduss/docstore/internal/storeerr"
)

// BackupRoot is the top-level namespace for folder backups.
const BackupRoot = "backups"

// ISO-8601 in UTC with millisecond precision, the form record services emit.
const timestampLayout = "2006-01-02T15:04:05.000Z"

var timestampReplacer = strings.NewReplacer(":", "-", ".", "-")

// DocumentKey builds the key of a live document.
func DocumentKey(category, ownerID, fileName string) string {
	return OwnerPrefix(category, ownerID) + fileName
}

// OwnerPrefix is the folder holding all documents of one owner record.
func OwnerPrefix(category, ownerID string) string {
	return category + "/" + ownerID + "/"
}

// BackupPrefix is the folder a backup taken at the given instant copies into.
func BackupPrefix(category, ownerID string, at time.Time) string {
	return BackupRoot + "/" + category + "/" + Timestamp(at) + "/" + ownerID + "/"
}

// CategoryBackups is the prefix under which all backups of a category live.
func CategoryBackups(category string) string {
	return BackupRoot + "/" + category + "/"
}

// Timestamp renders at as a path-safe ISO-8601 segment, e.g. 2024-05-01T10-20-30-123Z.
func Timestamp(at time.Time) string {
	return timestampReplacer.Replace(at.UTC().Format(timestampLayout))
}

// Rebase moves key from one prefix to another.
func Rebase(key, from, to string) string {
	return to + strings.TrimPrefix(key, from)
}

// ValidateSegment checks a value used as a single path segment.
func ValidateSegment(field, value string) error {
	switch {
	case strings.TrimSpace(value) == "":
		return storeerr.Invalid("%s is required", field)
	case strings.Contains(value, "/"):
		return storeerr.Invalid("%s %q must not contain '/'", field, value)
	case value == "." || value == "..":
		return storeerr.Invalid("%s %q is not a valid path segment", field, value)
	case strings.IndexFunc(value, unicode.IsControl) >= 0:
		return storeerr.Invalid("%s %q contains control characters", field, value)
	}
	return nil
}

// ValidateKey checks a key supplied by a caller.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return storeerr.Invalid("file id is required")
	}
	if strings.HasSuffix(key, "/") {
		return storeerr.Invalid("file id %q names a folder", key)
	}
	return nil
}
