package registry

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"parcel-code-relay-go/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Shipment{}, &models.ProcessLog{}))

	return conn
}

// dropUniqueIndex lets fixtures insert duplicate tracking numbers so the
// ambiguous path can be exercised at all.
func dropUniqueIndex(t *testing.T, conn *gorm.DB) {
	t.Helper()
	require.NoError(t, conn.Migrator().DropIndex(&models.Shipment{}, "TrackingNumber"))
}

func TestResolveNotFound(t *testing.T) {
	reg := New(newTestDB(t))

	resolution, shipment, err := reg.Resolve("JJD0002233573349014")
	require.NoError(t, err)
	assert.Equal(t, NotFound, resolution)
	assert.Nil(t, shipment)
}

func TestResolveUnique(t *testing.T) {
	conn := newTestDB(t)
	require.NoError(t, conn.Create(&models.Shipment{TrackingNumber: "JJD0002233573349014"}).Error)

	reg := New(conn)
	resolution, shipment, err := reg.Resolve("JJD0002233573349014")
	require.NoError(t, err)
	assert.Equal(t, Unique, resolution)
	require.NotNil(t, shipment)
	assert.Equal(t, "JJD0002233573349014", shipment.TrackingNumber)
}

func TestResolveAmbiguous(t *testing.T) {
	conn := newTestDB(t)
	dropUniqueIndex(t, conn)
	require.NoError(t, conn.Create(&models.Shipment{TrackingNumber: "JJD0002233573349014"}).Error)
	require.NoError(t, conn.Create(&models.Shipment{TrackingNumber: "JJD0002233573349014"}).Error)

	reg := New(conn)
	resolution, shipment, err := reg.Resolve("JJD0002233573349014")
	require.NoError(t, err)
	assert.Equal(t, Ambiguous, resolution)
	assert.Nil(t, shipment, "an ambiguous match must never yield a shipment")
}

func TestCreateRecordsProvenance(t *testing.T) {
	conn := newTestDB(t)
	reg := New(conn)

	shipment, err := reg.Create("JJD0002233573349014", "inbox@example.com")
	require.NoError(t, err)
	assert.Equal(t, "JJD0002233573349014", shipment.TrackingNumber)
	assert.Equal(t, "inbox@example.com", shipment.SourceMailbox)
	assert.Nil(t, shipment.OwnerUserID)
	assert.Empty(t, shipment.ChatID)
}

func TestCreateConflictReturnsExistingRow(t *testing.T) {
	conn := newTestDB(t)
	reg := New(conn)

	first, err := reg.Create("JJD0002233573349014", "a@example.com")
	require.NoError(t, err)

	// A second insert loses the uniqueness race and must come back with
	// the already-existing row instead of an error.
	second, err := reg.Create("JJD0002233573349014", "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "a@example.com", second.SourceMailbox)
}

func TestRecordPickupCodeLeavesDeliveryUnstamped(t *testing.T) {
	conn := newTestDB(t)
	reg := New(conn)

	shipment, err := reg.Create("JJD0002233573349014", "a@example.com")
	require.NoError(t, err)

	require.NoError(t, reg.RecordPickupCode(shipment, "247089", "Co-operative NR13 5LP Norwich"))

	var row models.Shipment
	require.NoError(t, conn.First(&row, shipment.ID).Error)
	assert.Equal(t, "247089", row.PickupCode)
	assert.Equal(t, "Co-operative NR13 5LP Norwich", row.PickupCodeLocation)
	assert.Nil(t, row.PickupCodeDeliveredAt)
}

func TestMarkPickupDelivered(t *testing.T) {
	conn := newTestDB(t)
	reg := New(conn)

	shipment, err := reg.Create("JJD0002233573349014", "a@example.com")
	require.NoError(t, err)
	require.NoError(t, reg.RecordPickupCode(shipment, "247089", ""))
	require.NoError(t, reg.MarkPickupDelivered(shipment))

	var row models.Shipment
	require.NoError(t, conn.First(&row, shipment.ID).Error)
	assert.NotNil(t, row.PickupCodeDeliveredAt)
	assert.True(t, row.PickupHandled())
}

func TestRecordDropoffStampsInOneWrite(t *testing.T) {
	conn := newTestDB(t)
	reg := New(conn)

	shipment, err := reg.Create("JJD0002233573349014", "a@example.com")
	require.NoError(t, err)
	require.NoError(t, reg.RecordDropoff(shipment, "344924512", "Jan Kowalski"))

	var row models.Shipment
	require.NoError(t, conn.First(&row, shipment.ID).Error)
	assert.Equal(t, "344924512", row.DropoffCode)
	assert.Equal(t, "Jan Kowalski", row.DropoffRecipientName)
	assert.NotNil(t, row.DropoffCodeRecordedAt)
	assert.True(t, row.DropoffHandled())
}

func TestLogProcessing(t *testing.T) {
	conn := newTestDB(t)
	reg := New(conn)

	reg.LogProcessing("<msg-1@inpost.pl>", "inbox@example.com", "JJD0002233573349014", "processed", "")

	var logs []models.ProcessLog
	require.NoError(t, conn.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "<msg-1@inpost.pl>", logs[0].MessageID)
	assert.Equal(t, "processed", logs[0].Status)
}
