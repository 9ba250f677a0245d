package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wardenlock/warden/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Notification{}, &models.NotificationProvider{}))
	return db
}

func TestNotificationService_CreateAndList(t *testing.T) {
	service := NewNotificationService(setupTestDB(t))

	created, err := service.Create(models.NotificationTypeWarning, "Application blocked", "game was terminated (timeout)")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	list, err := service.List(false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Application blocked", list[0].Title)
	assert.False(t, list[0].Read)
}

func TestNotificationService_MarkAllAsRead(t *testing.T) {
	service := NewNotificationService(setupTestDB(t))

	_, err := service.Create(models.NotificationTypeInfo, "a", "b")
	require.NoError(t, err)
	_, err = service.Create(models.NotificationTypeInfo, "c", "d")
	require.NoError(t, err)

	require.NoError(t, service.MarkAllAsRead())

	unread, err := service.List(true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestNotificationService_Notify(t *testing.T) {
	service := NewNotificationService(setupTestDB(t))

	// No providers configured: Notify still records internally.
	service.Notify("challenge", "Temporary access granted", "game may run for 5m0s")

	list, err := service.List(false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationTypeWarning, list[0].Type)
}

func TestNotificationService_Providers(t *testing.T) {
	service := NewNotificationService(setupTestDB(t))

	provider := &models.NotificationProvider{
		Name: "ops", Type: "gotify", URL: "gotify://host/token",
		Enabled: true, NotifyChallenges: true,
	}
	require.NoError(t, service.CreateProvider(provider))
	assert.NotEmpty(t, provider.ID)

	providers, err := service.ListProviders()
	require.NoError(t, err)
	require.Len(t, providers, 1)

	provider.Enabled = false
	require.NoError(t, service.UpdateProvider(provider))

	require.NoError(t, service.DeleteProvider(provider.ID))
	providers, err = service.ListProviders()
	require.NoError(t, err)
	assert.Empty(t, providers)
}
