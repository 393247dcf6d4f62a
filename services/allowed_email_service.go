package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/yeremiapane/restaurant-ops/models"
	"gorm.io/gorm"
)

type AllowedEmailService struct {
	DB *gorm.DB
}

func NewAllowedEmailService(db *gorm.DB) *AllowedEmailService {
	return &AllowedEmailService{DB: db}
}

func (s *AllowedEmailService) FindAll(ctx context.Context) ([]models.AllowedEmail, error) {
	entries := []models.AllowedEmail{}
	err := s.DB.WithContext(ctx).Order("email ASC").Find(&entries).Error
	return entries, err
}

func (s *AllowedEmailService) Create(ctx context.Context, email, description, adminID string) (*models.AllowedEmail, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	var count int64
	if err := db.Model(&models.AllowedEmail{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflict("Email %s is already allowed", email)
	}
	entry := models.AllowedEmail{Email: email, Description: description}
	if adminID != "" {
		entry.CreatedBy = &adminID
	}
	if err := db.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *AllowedEmailService) Update(ctx context.Context, id string, email, description *string) (*models.AllowedEmail, error) {
	entry, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	if email != nil {
		normalized, err := normalizeEmail(*email)
		if err != nil {
			return nil, err
		}
		var count int64
		if err := db.Model(&models.AllowedEmail{}).
			Where("email = ? AND id <> ?", normalized, id).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, conflict("Email %s is already allowed", normalized)
		}
		entry.Email = normalized
	}
	if description != nil {
		entry.Description = *description
	}
	if err := db.Save(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *AllowedEmailService) Remove(ctx context.Context, id string) (*models.AllowedEmail, error) {
	entry, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Delete(&models.AllowedEmail{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *AllowedEmailService) find(ctx context.Context, id string) (*models.AllowedEmail, error) {
	var entry models.AllowedEmail
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Allowed email with ID %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", badRequest("Invalid email address %q", email)
	}
	return email, nil
}
