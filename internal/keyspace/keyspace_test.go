package keyspace

import (
	"errors"
	"testing"
	"time"

	"github.com/abduss/docstore/internal/storeerr"
	"github.com/stretchr/testify/assert"
)

func TestDocumentKey(t *testing.T) {
	assert.Equal(t, "licenses/LIC-100/A.pdf", DocumentKey("licenses", "LIC-100", "A.pdf"))
	assert.Equal(t, "licenses/LIC-100/", OwnerPrefix("licenses", "LIC-100"))
}

func TestBackupPrefixReplacesColonsAndDots(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 20, 30, 123_000_000, time.FixedZone("IST", 19800))

	assert.Equal(t, "2024-05-01T04-50-30-123Z", Timestamp(at))
	assert.Equal(t, "backups/licenses/2024-05-01T04-50-30-123Z/LIC-100/", BackupPrefix("licenses", "LIC-100", at))
}

func TestRebase(t *testing.T) {
	got := Rebase("licenses/LIC-1/scans/pan.png", "licenses/LIC-1/", "backups/licenses/T/LIC-1/")
	assert.Equal(t, "backups/licenses/T/LIC-1/scans/pan.png", got)
}

func TestValidateSegment(t *testing.T) {
	valid := []string{"LIC-100", "aadhaar card.pdf", "RC_book.v2.jpg"}
	for _, v := range valid {
		assert.NoError(t, ValidateSegment("file name", v), v)
	}

	invalid := []string{"", "  ", "a/b", "..", ".", "bad\nname"}
	for _, v := range invalid {
		err := ValidateSegment("file name", v)
		assert.True(t, errors.Is(err, storeerr.ErrInvalidInput), "expected invalid for %q", v)
	}
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey("licenses/LIC-1/a.pdf"))
	assert.ErrorIs(t, ValidateKey(""), storeerr.ErrInvalidInput)
	assert.ErrorIs(t, ValidateKey("licenses/LIC-1/"), storeerr.ErrInvalidInput)
}
