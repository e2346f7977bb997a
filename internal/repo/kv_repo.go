package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-support-desk/internal/domain"
	"github.com/tbourn/go-support-desk/internal/kvstore"
)

// KVStore is a kvstore.Store over the kv_entries table. Every key lives
// under Namespace, so one table serves many clients.
type KVStore struct {
	db        *gorm.DB
	namespace string
}

var _ kvstore.Store = (*KVStore)(nil)

// NewKVStore returns a store scoped to namespace.
func NewKVStore(db *gorm.DB, namespace string) *KVStore {
	return &KVStore{db: db, namespace: namespace}
}

// Get returns the stored value or kvstore.ErrNotFound.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var e domain.KVEntry
	err := s.db.WithContext(ctx).
		Where("namespace = ? AND key = ?", s.namespace, key).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, kvstore.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e.Value, nil
}

// Put stores value, replacing any previous one.
func (s *KVStore) Put(ctx context.Context, key string, value []byte) error {
	e := &domain.KVEntry{
		Namespace: s.namespace,
		Key:       key,
		Value:     append([]byte(nil), value...),
		UpdatedAt: time.Now().UTC(),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "namespace"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(e).Error
}
