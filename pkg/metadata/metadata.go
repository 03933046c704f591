// Package metadata describes generated schedb documents: content digests,
// sizes and the generation stamp.
package metadata

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"

	"github.com/dustin/go-humanize"
)

// generatedAttr matches the root generated="..." attribute, which changes on
// every run and is excluded from the digest.
var generatedAttr = regexp.MustCompile(`(<schedb\b[^>]*?\s)generated="[^"]*"`)

// Metadata summarises one generated document.
type Metadata struct {
	Semester string
	Digest   string
	Size     int
}

// Describe computes the metadata for content.
func Describe(semester string, content []byte) Metadata {
	return Metadata{
		Semester: semester,
		Digest:   Digest(content),
		Size:     len(content),
	}
}

// Digest returns the hex SHA-256 of content with the generation stamp
// blanked, so two conversions of the same feed share a digest.
func Digest(content []byte) string {
	clean := generatedAttr.ReplaceAll(content, []byte(`${1}generated=""`))
	hash := sha256.Sum256(clean)

	return hex.EncodeToString(hash[:])
}

// Same reports whether a and b differ only in their generation stamp.
func Same(a, b []byte) bool {
	return bytes.Equal(
		generatedAttr.ReplaceAll(a, []byte(`${1}generated=""`)),
		generatedAttr.ReplaceAll(b, []byte(`${1}generated=""`)),
	)
}

// HumanSize renders the document size, e.g. "1.2 MB".
func (m Metadata) HumanSize() string {
	return humanize.Bytes(uint64(m.Size))
}

// ShortDigest returns the first 12 hex characters of the digest.
func (m Metadata) ShortDigest() string {
	if len(m.Digest) < 12 {
		return m.Digest
	}

	return m.Digest[:12]
}

// String returns a one-line description for logs.
func (m Metadata) String() string {
	return fmt.Sprintf("%s (%s, sha256 %s)", m.Semester, m.HumanSize(), m.ShortDigest())
}
