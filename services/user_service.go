package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-ops/models"
	"github.com/yeremiapane/restaurant-ops/utils"
	"gorm.io/gorm"
)

var (
	// ErrUserDeactivated: the account is on the revocation list.
	ErrUserDeactivated = errors.New("Your account has been deactivated. Please contact an administrator.")
	// ErrUserPendingApproval: valid identity, but the email is not allow-listed.
	ErrUserPendingApproval = errors.New("Your account is pending approval. Please contact an administrator.")
	// ErrUserNotProvisioned: no local user and nothing to create one from.
	ErrUserNotProvisioned = errors.New("User exists in the identity provider but not in the application database. Please log in again.")
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// Authenticate maps a verified principal onto a local user: it lifts
// revocation for admins, auto-provisions unknown users, honours the admin
// claim and enforces the allow-list for non-admins.
func (s *UserService) Authenticate(ctx context.Context, p *utils.Principal) (*models.User, error) {
	db := s.DB.WithContext(ctx)
	log := utils.InfoLogger.WithField("uid", p.UID)

	user, err := s.byExternalUID(db, p.UID)
	if err != nil {
		return nil, err
	}

	if user != nil && user.Revoked {
		if !user.IsAdmin() {
			log.Warn("rejecting request from revoked user")
			return nil, ErrUserDeactivated
		}
		log.Info("admin was on the revoked list, restoring automatically")
		if err := db.Model(user).Update("revoked", false).Error; err != nil {
			return nil, err
		}
		user.Revoked = false
	}

	if user == nil {
		if p.Email == "" {
			log.Warn("unknown user without email, cannot provision")
			return nil, ErrUserNotProvisioned
		}
		user = &models.User{
			ExternalUID: p.UID,
			Email:       strings.ToLower(p.Email),
			Name:        p.Name,
			Role:        models.RoleUser,
		}
		if p.Admin {
			user.Role = models.RoleAdmin
		}
		if err := db.Create(user).Error; err != nil {
			utils.ErrorLogger.WithField("uid", p.UID).Errorf("Failed to auto-create user: %v", err)
			return nil, ErrUserNotProvisioned
		}
		log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("auto-created user")
	}

	if p.Admin && !user.IsAdmin() {
		if err := db.Model(user).Update("role", models.RoleAdmin).Error; err != nil {
			return nil, err
		}
		user.Role = models.RoleAdmin
		log.Info("promoted user to ADMIN from identity claim")
	}

	if !user.IsAdmin() {
		allowed, err := s.IsEmailAllowed(ctx, user.Email)
		if err != nil {
			return nil, err
		}
		if !allowed {
			log.Warn("email not in allow-list")
			return nil, ErrUserPendingApproval
		}
	}
	return user, nil
}

func (s *UserService) IsEmailAllowed(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.AllowedEmail{}).
		Where("email = ?", strings.ToLower(email)).
		Count(&count).Error
	return count > 0, err
}

// UserView is a user plus its allow-list state, as shown to admins.
type UserView struct {
	models.User
	Allowed bool `json:"allowed"`
}

func (s *UserService) List(ctx context.Context, search string, page, limit int) ([]UserView, int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.User{})
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + search + "%"
		q = q.Where("email LIKE ? OR name LIKE ?", like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit = normalizePage(page, limit)
	var users []models.User
	if err := q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	emails := make([]string, 0, len(users))
	for _, u := range users {
		emails = append(emails, u.Email)
	}
	var allowed []string
	if len(emails) > 0 {
		if err := s.DB.WithContext(ctx).Model(&models.AllowedEmail{}).
			Where("email IN ?", emails).
			Pluck("email", &allowed).Error; err != nil {
			return nil, 0, err
		}
	}
	set := make(map[string]bool, len(allowed))
	for _, e := range allowed {
		set[e] = true
	}

	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, UserView{User: u, Allowed: set[u.Email]})
	}
	return views, total, nil
}

// SetAllowed adds or removes the user's email from the allow-list.
func (s *UserService) SetAllowed(ctx context.Context, id string, allowed bool, adminID string) (*UserView, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	if allowed {
		ok, err := s.IsEmailAllowed(ctx, user.Email)
		if err != nil {
			return nil, err
		}
		if !ok {
			entry := models.AllowedEmail{Email: user.Email, Description: "approved from user list", CreatedBy: &adminID}
			if err := db.Create(&entry).Error; err != nil {
				return nil, err
			}
		}
	} else if err := db.Where("email = ?", user.Email).Delete(&models.AllowedEmail{}).Error; err != nil {
		return nil, err
	}
	return &UserView{User: *user, Allowed: allowed}, nil
}

// SetRevoked puts a user on, or takes them off, the revocation list.
func (s *UserService) SetRevoked(ctx context.Context, id string, revoked bool) (*models.User, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if revoked && user.IsAdmin() {
		return nil, badRequest("Admin accounts cannot be revoked")
	}
	if err := s.DB.WithContext(ctx).Model(user).Update("revoked", revoked).Error; err != nil {
		return nil, err
	}
	user.Revoked = revoked
	return user, nil
}

func (s *UserService) find(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("User with ID %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) byExternalUID(db *gorm.DB, uid string) (*models.User, error) {
	var user models.User
	err := db.Where("external_uid = ?", uid).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
