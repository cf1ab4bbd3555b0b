package jwttoken

import (
	"warranty/internal/platform/middleware"
)

// JWTServiceAdapter exposes a JWTService as a middleware.TokenValidator so the
// middleware package stays free of JWT types.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(raw string) (*middleware.IssuerClaims, error) {
	claims, err := a.service.ValidateToken(raw)
	if err != nil {
		return nil, err
	}
	return &middleware.IssuerClaims{Subject: claims.Subject, Role: claims.Role}, nil
}
