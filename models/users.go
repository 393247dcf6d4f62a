package models

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

type User struct {
	Base
	ExternalUID string `gorm:"type:varchar(128);uniqueIndex;not null" json:"externalUid"`
	Name        string `gorm:"type:varchar(255)" json:"name"`
	Email       string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Role        Role   `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	Revoked     bool   `gorm:"not null;default:false" json:"revoked"`
}

// IsAdmin is the single admin capability check.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

type AllowedEmail struct {
	Base
	Email       string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Description string  `gorm:"type:text" json:"description,omitempty"`
	CreatedBy   *string `gorm:"type:varchar(36)" json:"createdBy,omitempty"`
}
