package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/trendora/trendora-backend/api/middleware"
	"github.com/trendora/trendora-backend/internal/cart"
	pkgerrors "github.com/trendora/trendora-backend/pkg/errors"
)

func currentUserID(r *http.Request) (uuid.UUID, bool) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func requireUserID(r *http.Request) (uuid.UUID, error) {
	id, ok := currentUserID(r)
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}
	return id, nil
}

// resolveOwner identifies the cart or order owner for the request: the
// authenticated customer when a token was presented, otherwise the guest
// session token.
func resolveOwner(r *http.Request) (cart.Owner, error) {
	if id, ok := currentUserID(r); ok {
		return cart.CustomerOwner(id), nil
	}
	if token := middleware.SessionTokenFromContext(r.Context()); token != "" {
		return cart.GuestOwner(token), nil
	}
	return cart.Owner{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "a login or guest session is required")
}
