package main

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Reviewer identity, derived exclusively from the verified session token.
// Client-supplied role or id fields in request bodies are never trusted.
type Reviewer struct {
	ID   string
	Role string
}

type reviewerClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

const reviewerContextKey = "reviewer"

func bearerToken(e echo.Context) (string, error) {
	authheader := e.Request().Header.Get("Authorization")
	pref := "Bearer "
	if !strings.HasPrefix(authheader, pref) {
		return "", echo.ErrUnauthorized
	}
	return authheader[len(pref):], nil
}

func (s *Server) checkReviewerAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(e echo.Context) error {
		token, err := bearerToken(e)
		if err != nil {
			return err
		}

		var claims reviewerClaims
		_, err = jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.jwtSecret, nil
		})
		if err != nil {
			return echo.ErrUnauthorized
		}
		if claims.Subject == "" || claims.Role == "" {
			return echo.ErrUnauthorized
		}

		e.Set(reviewerContextKey, Reviewer{ID: claims.Subject, Role: claims.Role})
		return next(e)
	}
}

func reviewerFromContext(e echo.Context) (Reviewer, error) {
	r, ok := e.Get(reviewerContextKey).(Reviewer)
	if !ok {
		return Reviewer{}, echo.ErrUnauthorized
	}
	return r, nil
}

// checkIngestAuth guards the internal ingestion endpoint with a fixed service
// token. Disabled entirely when no token is configured.
func (s *Server) checkIngestAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(e echo.Context) error {
		if s.ingestToken == "" {
			return echo.ErrForbidden
		}
		token, err := bearerToken(e)
		if err != nil {
			return err
		}
		if token != s.ingestToken {
			return echo.ErrForbidden
		}
		return next(e)
	}
}
