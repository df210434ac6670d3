package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/refabry-storefront/api/middleware"
	"github.com/angelmondragon/refabry-storefront/internal/shoppers"
	pkgerrors "github.com/angelmondragon/refabry-storefront/pkg/errors"
)

// Sessions resolves the shopper session behind a request.
type Sessions interface {
	Get(ctx context.Context, id string) (*shoppers.Session, error)
}

func shopperSession(r *http.Request, sessions Sessions) (*shoppers.Session, error) {
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session registry unavailable")
	}
	id := middleware.SessionIDFromContext(r.Context())
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session missing")
	}
	return sessions.Get(r.Context(), id)
}
