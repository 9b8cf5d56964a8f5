package mysql

import (
	"context"
	"errors"

	kvDomain "collateral-lending/internal/domain/kv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type KVRepository struct{ db *gorm.DB }

func NewKVRepository(db *gorm.DB) *KVRepository { return &KVRepository{db: db} }

func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return r.get(r.db.WithContext(ctx), key)
}

// GetForUpdate is Get holding the row lock until the surrounding tx ends.
func (r *KVRepository) GetForUpdate(ctx context.Context, key string) ([]byte, bool, error) {
	return r.get(forUpdate(r.db.WithContext(ctx)), key)
}

func (r *KVRepository) get(q *gorm.DB, key string) ([]byte, bool, error) {
	var out kvDomain.Entry
	res := q.Where("entry_key = ?", key).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if res.Error != nil {
		return nil, false, res.Error
	}
	return out.Value, true, nil
}

func (r *KVRepository) Set(ctx context.Context, key string, value []byte) error {
	e := kvDomain.Entry{Key: key, Value: value}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"entry_value", "updated_at"}),
	}).Create(&e).Error
}

func (r *KVRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&kvDomain.Entry{}).Error
}

func (r *KVRepository) Has(ctx context.Context, key string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&kvDomain.Entry{}).Where("entry_key = ?", key).Count(&n).Error
	return n > 0, err
}

// lockingKV routes reads through GetForUpdate so read-modify-write sequences
// on a counter serialize.
type lockingKV struct{ *KVRepository }

func (l lockingKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return l.GetForUpdate(ctx, key)
}
