package model

import "fmt"

// OwnerType names the kind of entity a document is attached to.
type OwnerType string

const (
	OwnerLead  OwnerType = "lead"
	OwnerOrder OwnerType = "order"
)

// Valid reports whether t is one of the supported owner types.
func (t OwnerType) Valid() bool {
	return t == OwnerLead || t == OwnerOrder
}

// Owner identifies the lead or order a document belongs to.
// An ID of zero means the owning record has not been saved yet.
type Owner struct {
	Type OwnerType
	ID   int64
}

// Persisted reports whether the owner already exists server-side.
func (o Owner) Persisted() bool { return o.ID > 0 }

func (o Owner) String() string { return fmt.Sprintf("%s/%d", o.Type, o.ID) }

// Document represents a file attached to a lead or order.
// Documents are created on upload and deleted explicitly; they are never edited.
type Document struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	FilePath   string    `json:"file_path"`
	UploadedAt Timestamp `json:"uploaded_at"`
	Owner      Owner     `json:"-"`
}
