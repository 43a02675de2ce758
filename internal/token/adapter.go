package token

import (
	mw "canvass/internal/platform/middleware"
)

// MiddlewareAdapter narrows Service to the validator interface the HTTP
// middleware consumes.
type MiddlewareAdapter struct {
	svc *Service
}

func NewMiddlewareAdapter(svc *Service) *MiddlewareAdapter {
	return &MiddlewareAdapter{svc: svc}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*mw.Claims, error) {
	claims, err := a.svc.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &mw.Claims{
		OwnerID:   claims.OwnerID,
		SessionID: claims.SessionID,
	}, nil
}
