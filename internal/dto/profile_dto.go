package dto

import "github.com/campus-acc/campus-backend/internal/models"

type ProfileResponse struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	ProfilePicture string `json:"profile_picture"`
	PhoneNumber    string `json:"phone_number"`
	Program        string `json:"program,omitempty"`
	YearOfStudy    string `json:"year_of_study,omitempty"`
	Bio            string `json:"bio,omitempty"`
	CompanyName    string `json:"company_name,omitempty"`
}

// UpdateProfileRequest is a partial update; nil fields are left untouched.
type UpdateProfileRequest struct {
	Email          *string `json:"email" validate:"omitempty,email"`
	PhoneNumber    *string `json:"phone_number" validate:"omitempty,max=32"`
	ProfilePicture *string `json:"profile_picture" validate:"omitempty,max=500"`
	Program        *string `json:"program" validate:"omitempty,max=100"`
	YearOfStudy    *string `json:"year_of_study" validate:"omitempty,max=20"`
	Bio            *string `json:"bio"`
	CompanyName    *string `json:"company_name" validate:"omitempty,max=100"`
}

// NewProfileResponse renders role-specific attributes only for the role
// that owns them.
func NewProfileResponse(u *models.User) ProfileResponse {
	resp := ProfileResponse{
		Username:       u.Username,
		Email:          u.Email,
		Role:           string(u.Profile.Role),
		ProfilePicture: u.Profile.ProfilePicture,
		PhoneNumber:    u.Profile.Phone(),
	}
	switch u.Profile.Role {
	case models.RoleStudent:
		resp.Program = u.Profile.Program
		resp.YearOfStudy = u.Profile.YearOfStudy
	case models.RoleLandlord:
		resp.Bio = u.Profile.Bio
		resp.CompanyName = u.Profile.CompanyName
	}
	return resp
}
