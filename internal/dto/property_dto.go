package dto

import (
	"time"

	"github.com/campus-acc/campus-backend/internal/geo"
	"github.com/campus-acc/campus-backend/internal/models"
)

type CreatePropertyRequest struct {
	Title            string   `json:"title" validate:"required,max=200"`
	Description      string   `json:"description"`
	PricePerMonth    float64  `json:"price_per_month" validate:"gte=0"`
	Address          string   `json:"address" validate:"max=255"`
	Latitude         *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude        *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	GenderPreference string   `json:"gender_preference" validate:"omitempty,oneof=Mixed Gents Ladies"`
	IsAvailable      *bool    `json:"is_available"`
	HasWifi          bool     `json:"has_wifi"`
	HasBorehole      bool     `json:"has_borehole"`
	HasSolar         bool     `json:"has_solar"`
	Curfew           *string  `json:"curfew" validate:"omitempty,max=100"`
	VisitorsAllowed  *bool    `json:"visitors_allowed"`
	DepositAmount    float64  `json:"deposit_amount" validate:"gte=0"`
}

// UpdatePropertyRequest is a partial update. Availability is changed only
// through the toggle endpoint.
type UpdatePropertyRequest struct {
	Title            *string  `json:"title" validate:"omitempty,max=200"`
	Description      *string  `json:"description"`
	PricePerMonth    *float64 `json:"price_per_month" validate:"omitempty,gte=0"`
	Address          *string  `json:"address" validate:"omitempty,max=255"`
	Latitude         *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude        *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	GenderPreference *string  `json:"gender_preference" validate:"omitempty,oneof=Mixed Gents Ladies"`
	HasWifi          *bool    `json:"has_wifi"`
	HasBorehole      *bool    `json:"has_borehole"`
	HasSolar         *bool    `json:"has_solar"`
	Curfew           *string  `json:"curfew" validate:"omitempty,max=100"`
	VisitorsAllowed  *bool    `json:"visitors_allowed"`
	DepositAmount    *float64 `json:"deposit_amount" validate:"omitempty,gte=0"`
}

type CreateRoomRequest struct {
	Label    string `json:"label" validate:"required,max=100"`
	Capacity int    `json:"capacity" validate:"omitempty,gte=1"`
}

type AddImageRequest struct {
	URL    string `json:"image" validate:"required,max=500"`
	RoomID *uint  `json:"room"`
}

type AvailabilityResponse struct {
	ID          uint `json:"id"`
	IsAvailable bool `json:"is_available"`
}

type ReviewResponse struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type ImageResponse struct {
	ID        uint   `json:"id"`
	Image     string `json:"image"`
	Property  uint   `json:"property"`
	Room      *uint  `json:"room"`
	RoomLabel string `json:"room_label,omitempty"`
}

type PropertyResponse struct {
	ID                     uint             `json:"id"`
	LandlordName           string           `json:"landlord_name"`
	Title                  string           `json:"title"`
	Description            string           `json:"description"`
	PricePerMonth          float64          `json:"price_per_month"`
	Address                string           `json:"address"`
	Latitude               *float64         `json:"latitude"`
	Longitude              *float64         `json:"longitude"`
	Distance               *float64         `json:"distance,omitempty"`
	IsAvailable            bool             `json:"is_available"`
	GenderPreference       string           `json:"gender_preference"`
	HasWifi                bool             `json:"has_wifi"`
	HasBorehole            bool             `json:"has_borehole"`
	HasSolar               bool             `json:"has_solar"`
	Curfew                 *string          `json:"curfew"`
	VisitorsAllowed        bool             `json:"visitors_allowed"`
	DepositAmount          float64          `json:"deposit_amount"`
	LandlordProfilePicture string           `json:"landlord_profile_picture"`
	LandlordPhone          string           `json:"landlord_phone"`
	LandlordBio            string           `json:"landlord_bio"`
	LandlordCompany        string           `json:"landlord_company"`
	IsFavorited            bool             `json:"is_favorited"`
	Rooms                  []models.Room    `json:"rooms"`
	Images                 []ImageResponse  `json:"images"`
	Reviews                []ReviewResponse `json:"reviews"`
	CreatedAt              time.Time        `json:"created_at"`
}

// NewPropertyResponse expects Landlord.Profile, Rooms, Images and
// Reviews.User to be preloaded when they should appear in the output.
func NewPropertyResponse(p *models.Property, favorited bool) PropertyResponse {
	resp := PropertyResponse{
		ID:                     p.ID,
		LandlordName:           p.Landlord.Username,
		Title:                  p.Title,
		Description:            p.Description,
		PricePerMonth:          p.PricePerMonth,
		Address:                p.Address,
		Latitude:               p.Latitude,
		Longitude:              p.Longitude,
		IsAvailable:            p.IsAvailable,
		GenderPreference:       string(p.GenderPreference),
		HasWifi:                p.HasWifi,
		HasBorehole:            p.HasBorehole,
		HasSolar:               p.HasSolar,
		Curfew:                 p.Curfew,
		VisitorsAllowed:        p.VisitorsAllowed,
		DepositAmount:          p.DepositAmount,
		LandlordProfilePicture: p.Landlord.Profile.ProfilePicture,
		LandlordPhone:          p.Landlord.Profile.Phone(),
		LandlordBio:            p.Landlord.Profile.Bio,
		LandlordCompany:        p.Landlord.Profile.CompanyName,
		IsFavorited:            favorited,
		Rooms:                  p.Rooms,
		Images:                 make([]ImageResponse, 0, len(p.Images)),
		Reviews:                make([]ReviewResponse, 0, len(p.Reviews)),
		CreatedAt:              p.CreatedAt,
	}
	if resp.Rooms == nil {
		resp.Rooms = []models.Room{}
	}
	if km, ok := geo.DistanceFromCampus(p.Latitude, p.Longitude); ok {
		resp.Distance = &km
	}

	labels := make(map[uint]string, len(p.Rooms))
	for _, r := range p.Rooms {
		labels[r.ID] = r.Label
	}
	for _, img := range p.Images {
		ir := ImageResponse{ID: img.ID, Image: img.URL, Property: img.PropertyID, Room: img.RoomID}
		if img.RoomID != nil {
			ir.RoomLabel = labels[*img.RoomID]
		}
		resp.Images = append(resp.Images, ir)
	}
	for _, r := range p.Reviews {
		resp.Reviews = append(resp.Reviews, ReviewResponse{
			ID:        r.ID.String(),
			User:      r.User.Username,
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		})
	}
	return resp
}
