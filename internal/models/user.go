package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the closed set of account roles. Every role-sensitive branch
// switches on it explicitly.
type Role string

const (
	RoleStudent  Role = "student"
	RoleLandlord Role = "landlord"
)

// DefaultRole is assigned when a registration does not name a role.
const DefaultRole = RoleStudent

// ParseRole maps user input onto a Role.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleStudent:
		return RoleStudent, true
	case RoleLandlord:
		return RoleLandlord, true
	default:
		return "", false
	}
}

// User is the canonical identity. Shadow users are created by the WhatsApp
// bot from a phone number and carry an unusable password until upgraded.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string    `gorm:"size:150;not null;uniqueIndex" json:"username"`
	Email     string    `gorm:"size:255" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Shadow    bool      `gorm:"not null;default:false;index" json:"-"`
	IsStaff   bool      `gorm:"not null;default:false" json:"-"`
	Profile   Profile   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Profile extends User one-to-one. PhoneNumber is unique and is the lookup
// key for phone-originated identities.
type Profile struct {
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	Role           Role      `gorm:"size:10;not null;default:'student'" json:"role"`
	PhoneNumber    *string   `gorm:"size:32;uniqueIndex" json:"phone_number"`
	ProfilePicture string    `gorm:"size:500" json:"profile_picture"`
	Program        string    `gorm:"size:100" json:"program"`
	YearOfStudy    string    `gorm:"size:20" json:"year_of_study"`
	Bio            string    `gorm:"type:text" json:"bio"`
	CompanyName    string    `gorm:"size:100" json:"company_name"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Phone returns the profile phone or "" when none is on file.
func (p Profile) Phone() string {
	if p.PhoneNumber == nil {
		return ""
	}
	return *p.PhoneNumber
}
