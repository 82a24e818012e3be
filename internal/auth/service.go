// Package auth issues and verifies the signed service tokens that record
// services present when calling the document API.
package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/abduss/docstore/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

const audience = "docstore-api"

// Service signs and validates HS256 service tokens.
type Service struct {
	cfg     config.AuthConfig
	nowFunc func() time.Time
	parser  *jwt.Parser
}

// ServiceClaims describes the validated caller extracted from a token.
type ServiceClaims struct {
	Service   string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// NewService creates a Service from the auth configuration.
func NewService(cfg config.AuthConfig) (*Service, error) {
	if strings.TrimSpace(cfg.ServiceTokenSecret) == "" {
		return nil, ErrNotConfigured
	}
	if cfg.ServiceTokenTTL <= 0 {
		return nil, fmt.Errorf("service token ttl must be positive, got %s", cfg.ServiceTokenTTL)
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "docstore"
	}
	s := &Service{cfg: cfg, nowFunc: time.Now}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.nowFunc() }),
	)
	return s, nil
}

// IssueToken signs a token naming the calling service as subject.
func (s *Service) IssueToken(service string) (string, time.Time, error) {
	service = strings.TrimSpace(service)
	if service == "" {
		return "", time.Time{}, ErrInvalidSubject
	}

	now := s.nowFunc()
	expiresAt := now.Add(s.cfg.ServiceTokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   service,
		Issuer:    s.cfg.Issuer,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.ServiceTokenSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign service token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken verifies the signature, issuer, audience and expiry.
func (s *Service) ValidateToken(tokenString string) (ServiceClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return ServiceClaims{}, ErrUnauthorized
	}

	var claims jwt.RegisteredClaims
	parsed, err := s.parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.ServiceTokenSecret), nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return ServiceClaims{}, ErrUnauthorized
	}

	result := ServiceClaims{
		Service:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	return result, nil
}
