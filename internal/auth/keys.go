package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

// Config das chaves de assinatura
type Config struct {
	RSAPrivatePath string
	KID            string
	Issuer         string
	Audience       string
	CookieSecure   bool
}

// Chaves guarda a chave privada ativa e as públicas por kid
type Chaves struct {
	mu        sync.RWMutex
	priv      *rsa.PrivateKey
	pubKeys   map[string]*rsa.PublicKey // kid -> pub
	activeKID string
	issuer    string
	audience  string
}

// CarregarChaves lê a chave privada PEM (PKCS#1 ou PKCS#8)
func CarregarChaves(cfg Config) (*Chaves, error) {
	if cfg.RSAPrivatePath == "" || cfg.KID == "" || cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errors.New("configuração ausente: auth.rsa_private_path/kid/issuer/audience")
	}
	b, err := os.ReadFile(cfg.RSAPrivatePath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	block, _ := pem.Decode(b)
	if block == nil {
		return nil, errors.New("pem decode private key failed")
	}

	var pk any
	if k, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		pk = k
	} else if k8, err2 := x509.ParsePKCS8PrivateKey(block.Bytes); err2 == nil {
		pk = k8
	} else {
		return nil, fmt.Errorf("parse private key: %v / %v", err, err2)
	}

	priv, ok := pk.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not RSA")
	}
	return NovasChaves(priv, cfg.KID, cfg.Issuer, cfg.Audience), nil
}

// NovasChaves monta as chaves a partir de uma chave já carregada
func NovasChaves(priv *rsa.PrivateKey, kid, issuer, audience string) *Chaves {
	return &Chaves{
		priv:      priv,
		pubKeys:   map[string]*rsa.PublicKey{kid: &priv.PublicKey},
		activeKID: kid,
		issuer:    issuer,
		audience:  audience,
	}
}

func (c *Chaves) getPub(kid string) (*rsa.PublicKey, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.pubKeys[kid]
	return p, ok
}

func signMethod() jwt.SigningMethod { return jwt.SigningMethodRS256 }
