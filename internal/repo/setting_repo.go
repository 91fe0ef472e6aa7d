// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the schema-less
// SystemSetting key/value store.
//
// The store is read-mostly: every chat turn reads a handful of keys, while
// writes happen only on admin action. No locking beyond the database's own
// transaction isolation is required; staleness of at most one request's read
// is tolerable.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/medassist/llm-chat-backend/internal/domain"
)

// GetSetting returns the value for key, or ("", false) when the key is absent.
func GetSetting(ctx context.Context, db *gorm.DB, key string) (string, bool, error) {
	var s domain.SystemSetting
	err := db.WithContext(ctx).Where("key = ?", key).First(&s).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", false, nil
		}
		return "", false, err
	}
	return s.Value, true, nil
}

// GetAllSettings returns the full store as a map.
func GetAllSettings(ctx context.Context, db *gorm.DB) (map[string]string, error) {
	var rows []domain.SystemSetting
	if err := db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

// SetSetting upserts one key/value pair.
func SetSetting(ctx context.Context, db *gorm.DB, key, value string) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]any{"value": value, "updated_at": time.Now().UTC()}),
	}).Create(&domain.SystemSetting{
		Key:       key,
		Value:     value,
		CreatedAt: time.Now().UTC(),
	}).Error
}

// SetSettings upserts many key/value pairs inside one transaction.
func SetSettings(ctx context.Context, db *gorm.DB, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for k, v := range values {
			if err := SetSetting(ctx, tx, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}
