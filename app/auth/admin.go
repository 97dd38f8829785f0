package auth

import (
	"context"
	"errors"

	"github.com/vibast-solutions/ms-go-checkout/app/entity"
)

type AdminOutcome int

const (
	AdminOK AdminOutcome = iota
	AdminUnauthenticated
	AdminForbidden
	AdminProfileMissing
	AdminError
)

func (o AdminOutcome) String() string {
	switch o {
	case AdminOK:
		return "ok"
	case AdminUnauthenticated:
		return "unauthenticated"
	case AdminForbidden:
		return "forbidden"
	case AdminProfileMissing:
		return "profile_missing"
	default:
		return "error"
	}
}

// AdminCheck is the result of an administrator authorization check. Profile is set only
// when Outcome is AdminOK; Err carries the cause for AdminError.
type AdminCheck struct {
	Outcome AdminOutcome
	UserID  string
	Profile *entity.Profile
	Err     error
}

type profileRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Profile, error)
}

type AdminAuthorizer struct {
	tokens   *TokenVerifier
	profiles profileRepository
}

func NewAdminAuthorizer(tokens *TokenVerifier, profiles profileRepository) *AdminAuthorizer {
	return &AdminAuthorizer{tokens: tokens, profiles: profiles}
}

func (a *AdminAuthorizer) Check(ctx context.Context, authorization string) AdminCheck {
	userID, err := a.tokens.UserIDFromHeader(authorization)
	if err != nil {
		if errors.Is(err, ErrMissingToken) || errors.Is(err, ErrInvalidToken) {
			return AdminCheck{Outcome: AdminUnauthenticated, Err: err}
		}
		return AdminCheck{Outcome: AdminError, Err: err}
	}

	profile, err := a.profiles.FindByID(ctx, userID)
	if err != nil {
		return AdminCheck{Outcome: AdminError, UserID: userID, Err: err}
	}
	if profile == nil {
		return AdminCheck{Outcome: AdminProfileMissing, UserID: userID}
	}
	if !profile.IsAdmin() {
		return AdminCheck{Outcome: AdminForbidden, UserID: userID}
	}

	return AdminCheck{Outcome: AdminOK, UserID: userID, Profile: profile}
}
