package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"zaimka/internal/models"
	"zaimka/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type sessionContextKey struct{}

// sessionFrom returns the owner session attached by withSession.
func sessionFrom(ctx context.Context) *models.Session {
	session, _ := ctx.Value(sessionContextKey{}).(*models.Session)
	return session
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	email := strings.TrimSpace(strings.ToLower(body.Email))
	if email == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := s.db.GetUserByEmail(r.Context(), email)
	if err != nil || !user.IsActive {
		// Same answer for unknown email and wrong password.
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	now := time.Now()
	session := &models.Session{
		Token:       uuid.NewString(),
		UserID:      user.ID,
		CompanySlug: user.CompanySlug,
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Duration(s.cfg.Auth.SessionTTLSeconds) * time.Second),
	}
	if err := s.sessions.SetSession(r.Context(), session); err != nil {
		s.logger.Error().Err(err).Msg("failed to store session")
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
		"company":    session.CompanySlug,
	})
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	if err := s.sessions.DeleteSession(r.Context(), session.Token); err != nil {
		s.logger.Error().Err(err).Msg("failed to delete session")
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// withSession authenticates the bearer token and rejects expired sessions.
func (s *HTTPServer) withSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		session, err := s.sessions.GetSession(r.Context(), token)
		if err == repository.ErrSessionNotFound {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		if err != nil {
			s.logger.Error().Err(err).Msg("session lookup failed")
			writeError(w, http.StatusInternalServerError, "session lookup failed")
			return
		}
		if !session.ExpiresAt.IsZero() && time.Now().After(session.ExpiresAt) {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey{}, session)
		next(w, r.WithContext(ctx))
	}
}

func bearerToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// HashPassword is used by seeding and tests to produce bcrypt hashes.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
