package domain

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func TestIdempotency_AutoMigrateKeysPerUserAndEscalation(t *testing.T) {
	db := newTestDB(t)
	if err := db.AutoMigrate(&Idempotency{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	m := db.Migrator()
	if !m.HasTable("idempotency") || !m.HasIndex(&Idempotency{}, "ux_user_resource_key") {
		t.Fatal("expected idempotency table with ux_user_resource_key")
	}
	if !m.HasIndex(&Idempotency{}, "ExpiresAt") {
		t.Fatal("expected an index on expires_at for the purge sweep")
	}

	now := time.Now().UTC()
	rec := func(id, user, esc, key, action string) *Idempotency {
		return &Idempotency{ID: id, UserID: user, ResourceID: esc, Key: key, Action: action, Status: 200, ExpiresAt: now.Add(time.Hour)}
	}

	if err := db.Create(rec("r1", "user-001", "esc-001", "k1", "resolve")).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	var got Idempotency
	if err := db.First(&got, "id = ?", "r1").Error; err != nil {
		t.Fatalf("readback: %v", err)
	}
	if got.Action != "resolve" || got.CreatedAt.IsZero() || !got.ExpiresAt.After(got.CreatedAt) {
		t.Fatalf("row = %+v", got)
	}

	// the same key may be reused by another agent or on another escalation
	for _, r := range []*Idempotency{
		rec("r2", "user-002", "esc-001", "k1", "resolve"),
		rec("r3", "user-001", "esc-002", "k1", "take-over"),
	} {
		if err := db.Create(r).Error; err != nil {
			t.Fatalf("insert %s: %v", r.ID, err)
		}
	}
	if err := db.Create(rec("r4", "user-001", "esc-001", "k1", "reassign")).Error; err == nil {
		t.Fatal("duplicate (user, escalation, key) must violate the unique index")
	}

	// NOT NULL columns reject NULL
	for _, col := range []string{"user_id", "resource_id", "key", "action", "status", "expires_at"} {
		err := db.Exec("INSERT INTO idempotency (id, user_id, resource_id, key, action, status, created_at, expires_at) "+
			"VALUES ('n-"+col+"', 'u', 'e', 'k-"+col+"', 'resolve', 200, ?, ?)", now, now).Error
		if err != nil {
			t.Fatalf("baseline insert for %s: %v", col, err)
		}
		if err := db.Exec("UPDATE idempotency SET "+col+" = NULL WHERE id = ?", "n-"+col).Error; err == nil {
			t.Fatalf("NULL %s accepted", col)
		}
	}
}
