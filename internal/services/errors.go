package services

import (
	"errors"
	"strings"

	"github.com/campus-acc/campus-backend/internal/notify"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Error kinds. Handlers map them onto HTTP statuses with errors.Is.
var (
	ErrNotFound    = errors.New("not found")
	ErrForbidden   = errors.New("forbidden")
	ErrConflict    = errors.New("conflict")
	ErrInvalid     = errors.New("invalid request")
	ErrUnavailable = notify.ErrUnavailable
)

// domainError carries a user-facing message and matches its kind.
type domainError struct {
	kind error
	msg  string
}

func (e *domainError) Error() string { return e.msg }
func (e *domainError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &domainError{kind: kind, msg: msg}
}

var (
	ErrUserNotFound       = newError(ErrNotFound, "user not found")
	ErrPropertyNotFound   = newError(ErrNotFound, "property not found")
	ErrRoomNotFound       = newError(ErrNotFound, "room not found")
	ErrBookingNotFound    = newError(ErrNotFound, "booking not found")
	ErrReportNotFound     = newError(ErrNotFound, "report not found")
	ErrNotOwner           = newError(ErrForbidden, "you do not own this property")
	ErrLandlordOnly       = newError(ErrForbidden, "only landlords can do this")
	ErrBookingForbidden   = newError(ErrForbidden, "you cannot change this booking")
	ErrUsernameTaken      = newError(ErrConflict, "username already taken")
	ErrPhoneTaken         = newError(ErrConflict, "phone number already registered")
	ErrAlreadyReviewed    = newError(ErrConflict, "you have already reviewed this property")
	ErrBookingClosed      = newError(ErrConflict, "booking has already been decided")
	ErrInvalidRole        = newError(ErrInvalid, "role must be student or landlord")
	ErrInvalidStatus      = newError(ErrInvalid, "status must be pending, accepted or rejected")
	ErrInvalidRating      = newError(ErrInvalid, "rating must be between 1 and 5")
	ErrInvalidReason      = newError(ErrInvalid, "reason must be fake, unavailable, inappropriate or other")
	ErrRoomMismatch       = newError(ErrInvalid, "room does not belong to this property")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
)

// isUniqueViolation reports whether err came from a unique index. GORM
// translates it for postgres; the SQLSTATE and message checks cover drivers
// that do not.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}

func notFoundOr(err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
