package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func novasChavesTeste(t *testing.T) *Chaves {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key failed: %v", err)
	}
	return NovasChaves(priv, "kid-teste", "painel", "painel-web")
}

func TestAccessTokenRoundTrip(t *testing.T) {
	c := novasChavesTeste(t)
	tok, err := c.GerarAccessToken("u1", "ana@kroma.com")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	claims, err := c.ParseAndValidate(tok)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.UsuarioID != "u1" || claims.Email != "ana@kroma.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	outra := novasChavesTeste(t)
	if _, err := outra.ParseAndValidate(tok); err == nil {
		t.Fatalf("token signed by another key must be rejected")
	}
}

func TestMiddlewareResolvePapelAtual(t *testing.T) {
	c := novasChavesTeste(t)
	papeis := map[string]string{"u1": "manager"}
	m := &Middleware{Chaves: c, PapelDe: func(id string) (string, bool) {
		p, ok := papeis[id]
		return p, ok
	}}

	var visto string
	h := m.Autenticar(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		visto = Papel(r.Context()) + "|" + Ator(r.Context())
	}))

	tok, _ := c.GerarAccessToken("u1", "ana@kroma.com")
	req := httptest.NewRequest(http.MethodGet, "/parceiros", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if visto != "manager|ana@kroma.com" {
		t.Fatalf("unexpected context identity %q", visto)
	}

	papeis["u1"] = "admin"
	h.ServeHTTP(httptest.NewRecorder(), req)
	if visto != "admin|ana@kroma.com" {
		t.Fatalf("role must be resolved per request, got %q", visto)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/parceiros", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestRefreshRotacionaToken(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	s := &Sessoes{DB: db, Chaves: novasChavesTeste(t)}

	login := httptest.NewRecorder()
	if err := s.EmitirNoLogin(login, "u1", "ana@kroma.com"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	cookies := login.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != RefreshCookie {
		t.Fatalf("expected refresh cookie, got %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	s.RefreshHTTPHandler(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "access_token") {
		t.Fatalf("refresh failed: %d %s", rec.Code, rec.Body.String())
	}

	// o refresh antigo foi revogado
	rec = httptest.NewRecorder()
	s.RefreshHTTPHandler(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("reused refresh must fail, got %d", rec.Code)
	}
}

func TestJWKSPublicaChaveAtivaPrimeiro(t *testing.T) {
	c := novasChavesTeste(t)
	antiga := novasChavesTeste(t)
	c.pubKeys["kid-antigo"] = &antiga.priv.PublicKey

	rr := httptest.NewRecorder()
	c.JWKSHandler(rr, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var doc struct {
		Keys []ChavePublica `json:"keys"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&doc); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(doc.Keys) != 2 || doc.Keys[0].Kid != "kid-teste" || doc.Keys[1].Kid != "kid-antigo" {
		t.Fatalf("unexpected keys %+v", doc.Keys)
	}
	if doc.Keys[0].Alg != "RS256" || doc.Keys[0].E != "AQAB" {
		t.Fatalf("unexpected key params %+v", doc.Keys[0])
	}
}
