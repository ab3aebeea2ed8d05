package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Catalog wraps the gorm handle used to record calls and bucket manifests.
type Catalog struct {
	db *gorm.DB
}

// Connect opens (creating if necessary) the catalog database at dsn and
// runs migrations.
func Connect(dsn string, debug bool) (*Catalog, error) {
	if dir := filepath.Dir(dsn); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create catalog directory: %w", err)
		}
	}

	cfg := &gorm.Config{}
	if debug {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("connect catalog: %w", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Exec("PRAGMA foreign_keys = ON")
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate catalog: %w", err)
	}

	return &Catalog{db: db}, nil
}

// Migrate runs the catalog's schema migrations.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&CallRecord{}, &BucketManifest{})
}

// RecordCall inserts the manifest row for a freshly started call.
func (c *Catalog) RecordCall(rec *CallRecord) error {
	return c.db.Create(rec).Error
}

// FinishCall stamps a call record with its final row/chunk counts and
// completion time (or error), once expansion and absorption have finished.
func (c *Catalog) FinishCall(callUUID string, rowCount int64, chunkCount int, callErr error) error {
	updates := map[string]any{
		"row_count":   rowCount,
		"chunk_count": chunkCount,
	}
	if callErr != nil {
		updates["error"] = callErr.Error()
	}
	tx := c.db.Model(&CallRecord{}).Where("call_uuid = ?", callUUID).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	return c.db.Exec("UPDATE call_records SET finished_at = CURRENT_TIMESTAMP WHERE call_uuid = ?", callUUID).Error
}

// RecordBucket inserts one bucket's contribution from a call.
func (c *Catalog) RecordBucket(m *BucketManifest) error {
	return c.db.Create(m).Error
}

// CallsForTemplate lists every recorded call for a given template name,
// most recent first, for ad hoc auditing.
func (c *Catalog) CallsForTemplate(templateName string) ([]CallRecord, error) {
	var out []CallRecord
	err := c.db.Where("template_name = ?", templateName).Order("started_at DESC").Find(&out).Error
	return out, err
}

// BucketsForCall lists every bucket manifest row written by a call.
func (c *Catalog) BucketsForCall(callUUID string) ([]BucketManifest, error) {
	var out []BucketManifest
	err := c.db.Where("call_uuid = ?", callUUID).Find(&out).Error
	return out, err
}

// Close releases the underlying database connection.
func (c *Catalog) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
