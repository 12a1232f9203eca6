package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/wanderlust-backend/pkg/db"
	"github.com/angelmondragon/wanderlust-backend/pkg/db/models"
)

func TestMigrationsDirIsValid(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestBookingsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_bookings.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, matches, "no bookings migration file found")

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS bookings",
		"DEFAULT gen_random_uuid()",
		"CHECK (travelers >= 1)",
		"CHECK (status IN ('pending', 'confirmed'))",
		"CHECK (num_nonnulls(hotel_id, package_id, destination_id) = 1)",
		"payment_intent_id text NULL",
		"DROP TABLE IF EXISTS bookings",
	}
	for _, sub := range checks {
		assert.Contains(t, content, sub)
	}
	assert.NotContains(t, strings.ToLower(content), "unique index if not exists idx_bookings_payment_intent")
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Booking Notes!")
	require.NoError(t, err)
	assert.Regexp(t, `\d{14}_add_booking_notes\.sql$`, path)
	require.NoError(t, ValidateDir(dir))

	_, err = CreateSQLMigration(dir, "!!!")
	assert.Error(t, err)
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1_bad.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	assert.Error(t, ValidateDir(dir))
}

func TestValidateFS(t *testing.T) {
	body := []byte("-- +goose Up\nSELECT 1;\n-- +goose Down\n")
	tests := []struct {
		name    string
		files   fstest.MapFS
		wantErr string
	}{
		{name: "ok", files: fstest.MapFS{"20250101000000_a.sql": {Data: body}, "README.md": {Data: []byte("x")}}},
		{name: "duplicate version", files: fstest.MapFS{
			"20250101000000_a.sql": {Data: body},
			"20250101000000_b.sql": {Data: body},
		}, wantErr: "duplicate migration version"},
		{name: "missing down", files: fstest.MapFS{
			"20250101000000_a.sql": {Data: []byte("-- +goose Up\n")},
		}, wantErr: "-- +goose Down"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateFS(tc.files)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestCreateSQLMigrationRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	path, err := createSQLMigration(dir, "notes", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20260102030405_notes.sql"), path)

	_, err = createSQLMigration(dir, "notes", now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestAutoMigrateAndSeedSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:seedtest?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	client := db.NewFromConn(conn)
	ctx := context.Background()

	require.NoError(t, AutoMigrate(ctx, client))

	first, err := SeedDemoCatalog(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, int64(len(seedHotels)+len(seedPackages)+len(seedDestinations)), first)

	second, err := SeedDemoCatalog(ctx, client)
	require.NoError(t, err)
	assert.Zero(t, second, "seeding twice must not duplicate rows")

	var hotel models.Hotel
	require.NoError(t, conn.First(&hotel, "id = ?", "alpine-lodge").Error)
	require.NotNil(t, hotel.Price)
	assert.Equal(t, "$1,200", *hotel.Price)
}
