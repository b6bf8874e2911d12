package kvstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleetcheck/internal/errs"
	"fleetcheck/internal/infrastructure/persistence/sqlite/model"
	"fleetcheck/internal/ports"
)

// GormStore keeps entries in the kv_store table of the main database.
type GormStore struct {
	db *gorm.DB
}

var _ ports.KVStore = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(ctx context.Context, key string) (string, bool, error) {
	key, err := normalizeKey(ctx, key)
	if err != nil {
		return "", false, err
	}

	var row model.KV
	if err := s.db.WithContext(ctx).Where("key = ?", key).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, errs.Wrapf(err, "get kv %q", key)
	}
	return row.Value, true, nil
}

// Put inserts or overwrites key.
func (s *GormStore) Put(ctx context.Context, key string, value string) error {
	key, err := normalizeKey(ctx, key)
	if err != nil {
		return err
	}

	row := model.KV{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	upsert := clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}
	if err := s.db.WithContext(ctx).Clauses(upsert).Create(&row).Error; err != nil {
		return errs.Wrapf(err, "put kv %q", key)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	key, err := normalizeKey(ctx, key)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where("key = ?", key).Delete(&model.KV{}).Error; err != nil {
		return errs.Wrapf(err, "delete kv %q", key)
	}
	return nil
}

func (s *GormStore) List(ctx context.Context, prefix string) (map[string]string, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	var rows []model.KV
	if err := s.db.WithContext(ctx).
		Where("substr(key, 1, ?) = ?", len(prefix), prefix).
		Order("key asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrapf(err, "list kv prefix %q", prefix)
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

func normalizeKey(ctx context.Context, key string) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return "", errs.Wrap(err, "check context")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("key is required")
	}
	return key, nil
}
