package retention

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/registra-app/registra-backend/internal/license"
	"github.com/registra-app/registra-backend/internal/students"
	"github.com/registra-app/registra-backend/pkg/db/models"
	"github.com/registra-app/registra-backend/pkg/enums"
	"github.com/registra-app/registra-backend/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type fakeFileRemover struct {
	removed []string
	err     error
}

func (f *fakeFileRemover) Remove(storedPath string) error {
	f.removed = append(f.removed, storedPath)
	return f.err
}

type retentionHelper struct {
	conn     *gorm.DB
	licenses *license.Store
	students *students.Repository
	files    *fakeFileRemover
	enforcer *Enforcer
	purger   *Purger
}

func newRetentionHelper(t *testing.T) *retentionHelper {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	licenseStore := license.NewStore(conn)
	studentRepo := students.NewRepository()
	files := &fakeFileRemover{}
	runner := gormTxRunner{db: conn}

	enforcer, err := NewEnforcer(EnforcerParams{
		Logger:   logg,
		DB:       runner,
		Licenses: licenseStore,
		Students: studentRepo,
	})
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	purger, err := NewPurger(PurgerParams{
		Logger:   logg,
		DB:       runner,
		Licenses: licenseStore,
		Students: studentRepo,
		Files:    files,
	})
	if err != nil {
		t.Fatalf("NewPurger: %v", err)
	}

	return &retentionHelper{
		conn:     conn,
		licenses: licenseStore,
		students: studentRepo,
		files:    files,
		enforcer: enforcer,
		purger:   purger,
	}
}

func strPtr(s string) *string { return &s }

func logTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func (h *retentionHelper) activate(t *testing.T, activatedAt, expiresAt time.Time) {
	t.Helper()
	grant := &license.Grant{ExpiresAt: expiresAt}
	if _, err := h.licenses.Activate(context.Background(), "test-key", grant, activatedAt); err != nil {
		t.Fatalf("activate license: %v", err)
	}
}

func (h *retentionHelper) seedStudent(t *testing.T, status enums.StudentStatus, inactiveAt *time.Time, photoPath *string) int64 {
	t.Helper()
	row := models.Student{
		FirstName:  "Test",
		LastName:   "Student",
		Status:     status,
		InactiveAt: inactiveAt,
		PhotoPath:  photoPath,
	}
	if err := h.conn.Create(&row).Error; err != nil {
		t.Fatalf("seed student: %v", err)
	}
	return row.ID
}

func (h *retentionHelper) studentCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	if err := h.conn.Model(&models.Student{}).Count(&count).Error; err != nil {
		t.Fatalf("count students: %v", err)
	}
	return count
}
