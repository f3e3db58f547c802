package models

import (
	"time"

	"github.com/google/uuid"
)

type GenderPreference string

const (
	GenderMixed  GenderPreference = "Mixed"
	GenderGents  GenderPreference = "Gents"
	GenderLadies GenderPreference = "Ladies"
)

func (g GenderPreference) IsValid() bool {
	switch g {
	case GenderMixed, GenderGents, GenderLadies:
		return true
	default:
		return false
	}
}

// Property is a listing owned by a landlord. IsAvailable is the coarse
// "paused" switch; it is not reconciled with the flags of its rooms.
type Property struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	LandlordID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"landlord_id"`
	Landlord         User             `gorm:"foreignKey:LandlordID;constraint:OnDelete:CASCADE" json:"-"`
	Title            string           `gorm:"size:200;not null" json:"title"`
	Description      string           `gorm:"type:text" json:"description"`
	PricePerMonth    float64          `gorm:"type:decimal(10,2);not null;index" json:"price_per_month"`
	Address          string           `gorm:"size:255" json:"address"`
	Latitude         *float64         `json:"latitude"`
	Longitude        *float64         `json:"longitude"`
	GenderPreference GenderPreference `gorm:"size:10;not null;default:'Mixed'" json:"gender_preference"`
	IsAvailable      bool             `gorm:"not null;index" json:"is_available"`
	HasWifi          bool             `gorm:"not null;default:false" json:"has_wifi"`
	HasBorehole      bool             `gorm:"not null;default:false" json:"has_borehole"`
	HasSolar         bool             `gorm:"not null;default:false" json:"has_solar"`
	Curfew           *string          `gorm:"size:100" json:"curfew"`
	VisitorsAllowed  bool             `gorm:"not null" json:"visitors_allowed"`
	DepositAmount    float64          `gorm:"type:decimal(10,2);not null;default:0" json:"deposit_amount"`
	Rooms            []Room           `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"rooms,omitempty"`
	Images           []PropertyImage  `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Reviews          []Review         `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"reviews,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// Amenities lists the amenity flags in display order.
func (p Property) Amenities() []string {
	var out []string
	if p.HasWifi {
		out = append(out, "WiFi")
	}
	if p.HasSolar {
		out = append(out, "Solar")
	}
	if p.HasBorehole {
		out = append(out, "Borehole")
	}
	return out
}

type Room struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PropertyID  uint      `gorm:"not null;index" json:"property"`
	Label       string    `gorm:"size:100;not null" json:"label"`
	Capacity    int       `gorm:"not null;default:1" json:"capacity"`
	IsAvailable bool      `gorm:"not null" json:"is_available"`
	CreatedAt   time.Time `json:"-"`
}

// PropertyImage references media stored elsewhere; URL is opaque.
type PropertyImage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PropertyID uint      `gorm:"not null;index" json:"property"`
	RoomID     *uint     `gorm:"index" json:"room"`
	URL        string    `gorm:"size:500;not null" json:"image"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}
