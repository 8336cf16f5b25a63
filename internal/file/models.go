package file

import (
	"time"

	"github.com/google/uuid"
)

// Record is the catalog entry for one stored file. The payload itself lives
// encrypted in the blob backend under BlobKey; EncryptionKey is the per-file
// key that seals it. Enrichment fields are optional and immutable once set.
type Record struct {
	ID          uuid.UUID `json:"id"`
	StoredName  string    `json:"stored_name"`
	DisplayName string    `json:"display_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	BlobKey     string    `json:"-"`
	OwnerEmail  string    `json:"owner_email"`
	CreatedAt   time.Time `json:"created_at"`
	// EncryptionKey is persisted alongside the record: catalog read access
	// implies decrypt access. Key custody is a deployment decision documented
	// in DESIGN.md.
	EncryptionKey string    `json:"-"`
	SharedWith    []string  `json:"shared_with"`
	Embedding     []float64 `json:"-"`
	Keywords      []string  `json:"keywords,omitempty"`
	Summary       string    `json:"summary,omitempty"`
}

// Clone returns an independent copy, including the slice-backed fields, so
// callers never alias catalog or cache storage.
func (r Record) Clone() Record {
	out := r
	if r.SharedWith != nil {
		out.SharedWith = append([]string(nil), r.SharedWith...)
	}
	if r.Embedding != nil {
		out.Embedding = append([]float64(nil), r.Embedding...)
	}
	if r.Keywords != nil {
		out.Keywords = append([]string(nil), r.Keywords...)
	}
	return out
}

// IsOwner reports whether the given principal owns the record.
func (r Record) IsOwner(principal string) bool {
	return r.OwnerEmail == principal
}

// IsSharedWith reports whether the record has a share grant for the principal.
func (r Record) IsSharedWith(principal string) bool {
	for _, grantee := range r.SharedWith {
		if grantee == principal {
			return true
		}
	}
	return false
}
