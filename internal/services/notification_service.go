package services

import (
	"fmt"

	"github.com/containrrr/shoutrrr"
	"gorm.io/gorm"

	"github.com/wardenlock/warden/internal/logger"
	"github.com/wardenlock/warden/internal/models"
)

// NotificationService stores internal notifications and fans engine events
// out to external providers over shoutrrr. Delivery happens on its own
// goroutine so the monitoring tick never waits on the network.
type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// Internal notifications (DB)

func (s *NotificationService) Create(nType models.NotificationType, title, message string) (*models.Notification, error) {
	notification := &models.Notification{
		Type:    nType,
		Title:   title,
		Message: message,
		Read:    false,
	}
	result := s.DB.Create(notification)
	return notification, result.Error
}

func (s *NotificationService) List(unreadOnly bool) ([]models.Notification, error) {
	var notifications []models.Notification
	query := s.DB.Order("created_at desc")
	if unreadOnly {
		query = query.Where("read = ?", false)
	}
	result := query.Find(&notifications)
	return notifications, result.Error
}

func (s *NotificationService) MarkAllAsRead() error {
	return s.DB.Model(&models.Notification{}).Where("read = ?", false).Update("read", true).Error
}

// Notify records the event and pushes it to every enabled provider that
// subscribed to the event class. It satisfies challenge.Notifier.
func (s *NotificationService) Notify(event, title, message string) {
	nType := models.NotificationTypeInfo
	switch event {
	case "challenge":
		nType = models.NotificationTypeWarning
	case "monitor":
		nType = models.NotificationTypeError
	}
	if _, err := s.Create(nType, title, message); err != nil {
		logger.WithComponent("notify").WithError(err).Warn("failed to store notification")
	}
	s.SendExternal(event, title, message)
}

// SendExternal delivers to enabled providers via shoutrrr.
func (s *NotificationService) SendExternal(event, title, message string) {
	var providers []models.NotificationProvider
	if err := s.DB.Where("enabled = ?", true).Find(&providers).Error; err != nil {
		logger.WithComponent("notify").WithError(err).Warn("failed to fetch notification providers")
		return
	}

	for _, provider := range providers {
		shouldSend := true
		switch event {
		case "challenge":
			shouldSend = provider.NotifyChallenges
		case "monitor":
			shouldSend = provider.NotifyMonitor
		}
		if !shouldSend {
			continue
		}

		go func(p models.NotificationProvider) {
			msg := fmt.Sprintf("%s\n\n%s", title, message)
			if err := shoutrrr.Send(p.URL, msg); err != nil {
				logger.WithComponent("notify").WithError(err).
					WithField("provider", p.Name).Warn("failed to send notification")
			}
		}(provider)
	}
}

// TestProvider sends a test message through a provider configuration.
func (s *NotificationService) TestProvider(provider models.NotificationProvider) error {
	return shoutrrr.Send(provider.URL, "Test notification from Warden")
}

// Provider management

func (s *NotificationService) ListProviders() ([]models.NotificationProvider, error) {
	var providers []models.NotificationProvider
	result := s.DB.Find(&providers)
	return providers, result.Error
}

func (s *NotificationService) CreateProvider(provider *models.NotificationProvider) error {
	return s.DB.Create(provider).Error
}

func (s *NotificationService) UpdateProvider(provider *models.NotificationProvider) error {
	return s.DB.Save(provider).Error
}

func (s *NotificationService) DeleteProvider(id string) error {
	return s.DB.Delete(&models.NotificationProvider{}, "id = ?", id).Error
}
