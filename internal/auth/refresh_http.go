package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/KromaEnergia/painel-parceiros/internal/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	RefreshTTL    = 30 * 24 * time.Hour
	RefreshCookie = "rt"
)

// Sessoes emite e renova tokens
type Sessoes struct {
	DB           *gorm.DB
	Chaves       *Chaves
	CookieSecure bool
}

func genRaw() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashRaw(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(h[:])
}

// Em localhost precisa ser Secure=false
func (s *Sessoes) setRTCookie(w http.ResponseWriter, raw string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    raw,
		Path:     "/auth", // cobre /auth/refresh e /auth/logout
		HttpOnly: true,
		Secure:   s.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

func (s *Sessoes) clearRTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    "",
		Path:     "/auth",
		HttpOnly: true,
		Secure:   s.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func escreverToken(w http.ResponseWriter, access string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int(AccessTTL.Seconds()),
	})
}

// EmitirNoLogin gera access + refresh após validar usuário/senha
func (s *Sessoes) EmitirNoLogin(w http.ResponseWriter, usuarioID, email string) error {
	access, err := s.Chaves.GerarAccessToken(usuarioID, email)
	if err != nil {
		return err
	}
	raw, err := genRaw()
	if err != nil {
		return err
	}
	rt := RefreshToken{
		UsuarioID: usuarioID,
		Email:     email,
		FamilyID:  "fam-" + usuarioID,
		Hash:      hashRaw(raw),
		ExpiresAt: time.Now().Add(RefreshTTL),
	}
	if err := s.DB.Create(&rt).Error; err != nil {
		return err
	}
	s.setRTCookie(w, raw, rt.ExpiresAt)
	escreverToken(w, access)
	return nil
}

// RefreshHTTPHandler atende POST /auth/refresh
func (s *Sessoes) RefreshHTTPHandler(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(RefreshCookie)
	if err != nil || c.Value == "" {
		http.Error(w, "no refresh", http.StatusUnauthorized)
		return
	}

	var cur RefreshToken
	if err := s.DB.Where("hash = ?", hashRaw(c.Value)).First(&cur).Error; err != nil {
		s.clearRTCookie(w)
		http.Error(w, "invalid refresh", http.StatusUnauthorized)
		return
	}
	if cur.RevokedAt != nil || time.Now().After(cur.ExpiresAt) {
		s.clearRTCookie(w)
		http.Error(w, "expired refresh", http.StatusUnauthorized)
		return
	}

	now := time.Now()
	if err := s.DB.Model(&cur).Update("revoked_at", &now).Error; err != nil {
		logger.Z().Warn("falha ao revogar refresh token", zap.String("usuario", cur.UsuarioID), zap.Error(err))
	}

	access, err := s.Chaves.GerarAccessToken(cur.UsuarioID, cur.Email)
	if err != nil {
		s.clearRTCookie(w)
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	newRaw, err := genRaw()
	if err != nil {
		s.clearRTCookie(w)
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	newRT := RefreshToken{
		UsuarioID: cur.UsuarioID,
		Email:     cur.Email,
		FamilyID:  cur.FamilyID,
		Hash:      hashRaw(newRaw),
		ExpiresAt: time.Now().Add(RefreshTTL),
	}
	if err := s.DB.Create(&newRT).Error; err != nil {
		s.clearRTCookie(w)
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	s.setRTCookie(w, newRaw, newRT.ExpiresAt)
	escreverToken(w, access)
}

// LogoutHTTPHandler atende POST /auth/logout
func (s *Sessoes) LogoutHTTPHandler(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(RefreshCookie); err == nil && c.Value != "" {
		now := time.Now()
		_ = s.DB.Model(&RefreshToken{}).Where("hash = ?", hashRaw(c.Value)).Update("revoked_at", &now).Error
	}
	s.clearRTCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Migrate cria a tabela de refresh tokens
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&RefreshToken{})
}
