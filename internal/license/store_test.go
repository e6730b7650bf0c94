package license

import (
	"context"
	"testing"
	"time"

	"github.com/registra-app/registra-backend/pkg/db/models"
	"github.com/registra-app/registra-backend/pkg/enums"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return conn
}

func TestStore_GetMissing(t *testing.T) {
	store := NewStore(openTestDB(t))
	record, err := store.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record != nil {
		t.Fatalf("expected missing license, got %+v", record)
	}
}

func TestStore_ActivateClearsMarkers(t *testing.T) {
	conn := openTestDB(t)
	store := NewStore(conn)
	ctx := context.Background()

	activated := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	grant := &Grant{ExpiresAt: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), IssuedTo: strPtr("School A")}
	if _, err := store.Activate(ctx, "key-1", grant, activated); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	// Simulate a full activation window: expiry applied and initial purge done.
	if err := conn.Transaction(func(tx *gorm.DB) error {
		if txErr := store.MarkInitialPurgeDoneWithTx(tx, activated.AddDate(0, 3, 0)); txErr != nil {
			return txErr
		}
		return store.MarkExpiredWithTx(tx, activated.AddDate(0, 8, 0))
	}); err != nil {
		t.Fatalf("mark markers: %v", err)
	}

	record, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record.Status != enums.LicenseStatusExpired || record.InitialPurgeAt == nil || record.ExpiredAppliedAt == nil {
		t.Fatalf("precondition not met: %+v", record)
	}

	// Reactivation must wipe both markers, whatever their previous values.
	reactivated := activated.AddDate(1, 0, 0)
	if _, err := store.Activate(ctx, "key-2", &Grant{ExpiresAt: reactivated.AddDate(1, 0, 0)}, reactivated); err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	record, err = store.Get(ctx)
	if err != nil {
		t.Fatalf("Get after reactivation: %v", err)
	}
	if record.LicenseKey != "key-2" {
		t.Fatalf("licenseKey = %q, want key-2", record.LicenseKey)
	}
	if record.Status != enums.LicenseStatusActive {
		t.Fatalf("status = %s, want active", record.Status)
	}
	if record.InitialPurgeAt != nil || record.ExpiredAppliedAt != nil {
		t.Fatalf("markers must be cleared on reactivation: %+v", record)
	}
	if record.ActivatedAt == nil || !record.ActivatedAt.Equal(reactivated) {
		t.Fatalf("activatedAt = %v, want %v", record.ActivatedAt, reactivated)
	}
	if record.IssuedTo != nil {
		t.Fatalf("issuedTo should be overwritten to nil, got %v", *record.IssuedTo)
	}
}

func TestStore_Deactivate(t *testing.T) {
	store := NewStore(openTestDB(t))
	ctx := context.Background()

	now := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	if _, err := store.Activate(ctx, "key", &Grant{ExpiresAt: now.AddDate(1, 0, 0)}, now); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := store.Deactivate(ctx); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	record, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record != nil {
		t.Fatalf("expected missing after deactivate, got %+v", record)
	}
}

func TestStore_MarkExpiredLeavesActivationFields(t *testing.T) {
	conn := openTestDB(t)
	store := NewStore(conn)
	ctx := context.Background()

	activated := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	if _, err := store.Activate(ctx, "key", &Grant{ExpiresAt: activated.AddDate(0, 6, 0)}, activated); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	applied := activated.AddDate(0, 7, 0)
	if err := conn.Transaction(func(tx *gorm.DB) error {
		return store.MarkExpiredWithTx(tx, applied)
	}); err != nil {
		t.Fatalf("MarkExpiredWithTx: %v", err)
	}

	record, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record.Status != enums.LicenseStatusExpired {
		t.Fatalf("status = %s, want expired", record.Status)
	}
	if record.ExpiredAppliedAt == nil || !record.ExpiredAppliedAt.Equal(applied) {
		t.Fatalf("expiredAppliedAt = %v, want %v", record.ExpiredAppliedAt, applied)
	}
	if record.ActivatedAt == nil || !record.ActivatedAt.Equal(activated) {
		t.Fatalf("activatedAt must be untouched, got %v", record.ActivatedAt)
	}
	if record.InitialPurgeAt != nil {
		t.Fatalf("initialPurgeAt must be untouched, got %v", record.InitialPurgeAt)
	}
}
