package auth

import (
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"sort"
)

// ChavePublica é uma entrada do documento JWKS
type ChavePublica struct {
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// Publicas lista as chaves de verificação, a ativa primeiro e as demais por kid
func (c *Chaves) Publicas() []ChavePublica {
	c.mu.RLock()
	defer c.mu.RUnlock()
	kids := make([]string, 0, len(c.pubKeys))
	for kid := range c.pubKeys {
		if kid != c.activeKID {
			kids = append(kids, kid)
		}
	}
	sort.Strings(kids)
	if _, ok := c.pubKeys[c.activeKID]; ok {
		kids = append([]string{c.activeKID}, kids...)
	}

	out := make([]ChavePublica, 0, len(kids))
	for _, kid := range kids {
		pub := c.pubKeys[kid]
		if pub == nil {
			continue
		}
		out = append(out, ChavePublica{
			Kty: "RSA",
			Alg: signMethod().Alg(),
			Use: "sig",
			Kid: kid,
			N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		})
	}
	return out
}

// GET /.well-known/jwks.json
func (c *Chaves) JWKSHandler(w http.ResponseWriter, r *http.Request) {
	chaves := c.Publicas()
	if len(chaves) == 0 {
		http.Error(w, "nenhuma chave pública disponível", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_ = json.NewEncoder(w).Encode(map[string][]ChavePublica{"keys": chaves})
}
