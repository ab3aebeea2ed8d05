// Package catalog persists a manifest of expansion calls and the buckets
// they fed.
package catalog

import (
	"time"

	"gorm.io/datatypes"
)

// CallRecord is one top-level expand() invocation: the freshly minted
// call_uuid, the template that drove it, and summary statistics useful for
// auditing a run after the fact.
type CallRecord struct {
	CallUUID     string `gorm:"primaryKey;type:varchar(36)"`
	TemplateName string `gorm:"type:text;not null"`

	RowCount   int64 `gorm:"not null"`
	ChunkCount int   `gorm:"not null;default:1"`

	// Params records the column->parameter binding used for this call, for
	// reproducing or auditing the expansion later.
	Params datatypes.JSON `gorm:"type:jsonb"`

	StartedAt  time.Time `gorm:"autoCreateTime"`
	FinishedAt *time.Time
	Error      string `gorm:"type:text"`
}

// BucketManifest is one (predicate, object type) bucket's contribution from
// a single call: which buckets got written, how many rows landed, and
// where the spill shards (if any) live on disk.
type BucketManifest struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	CallUUID   string `gorm:"type:varchar(36);index;not null"`
	Predicate  string `gorm:"type:text;not null"`
	ObjectType string `gorm:"type:varchar(20);not null"`

	RowCount   int64          `gorm:"not null"`
	SpillPaths datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (CallRecord) TableName() string     { return "call_records" }
func (BucketManifest) TableName() string { return "bucket_manifests" }
