package dto

import "github.com/google/uuid"

// RegisterRequest creates an account or upgrades the shadow account that the
// WhatsApp bot created for PhoneNumber.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,max=150"`
	Email       string `json:"email" validate:"omitempty,email"`
	Password    string `json:"password" validate:"required,min=8"`
	Role        string `json:"role" validate:"omitempty,oneof=student landlord"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=32"`
	Program     string `json:"program" validate:"max=100"`
	YearOfStudy string `json:"year_of_study" validate:"max=20"`
	CompanyName string `json:"company_name" validate:"max=100"`
	Bio         string `json:"bio"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
