package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims do access token. O papel não vai no token: é lido do perfil a cada requisição.
type Claims struct {
	UsuarioID string `json:"usuarioId"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// Tempo de vida do access token
const AccessTTL = 15 * time.Minute

// GerarAccessToken gera um JWT RS256 com kid, iss, aud, iat, nbf e jti
func (c *Chaves) GerarAccessToken(usuarioID, email string) (string, error) {
	if c == nil || c.priv == nil {
		return "", errors.New("chave privada não carregada")
	}
	now := time.Now()
	claims := &Claims{
		UsuarioID: usuarioID,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Audience:  []string{c.audience},
			Subject:   usuarioID,
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-1 * time.Minute)),
			ID:        uuid.NewString(),
		},
	}

	tok := jwt.NewWithClaims(signMethod(), claims)
	tok.Header["kid"] = c.activeKID
	return tok.SignedString(c.priv)
}

// ParseAndValidate valida assinatura, iss, aud e exp
func (c *Chaves) ParseAndValidate(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
	)
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		k, _ := t.Header["kid"].(string)
		if k == "" {
			return nil, errors.New("kid ausente")
		}
		pub, ok := c.getPub(k)
		if !ok {
			return nil, errors.New("kid desconhecido")
		}
		return pub, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token inválido: %w", err)
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, errors.New("claims inválidas")
	}
	if claims.UsuarioID == "" {
		return nil, errors.New("usuário ausente no token")
	}
	return claims, nil
}
