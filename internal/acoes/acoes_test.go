package acoes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KromaEnergia/painel-parceiros/internal/auth"
	"github.com/KromaEnergia/painel-parceiros/internal/permissao"
	"github.com/gorilla/mux"
)

func ecoar(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(mux.Vars(r)["id"]))
}

func setupAcoesTest(t *testing.T) http.Handler {
	t.Helper()
	perm, err := permissao.NewService()
	if err != nil {
		t.Fatalf("permissions failed: %v", err)
	}
	d, err := NovoDespachante(perm, []Acao{
		{ID: "parceiro.buscar", Metodo: "GET", Caminho: "/parceiros/{id}", Recurso: permissao.RecursoParceiros, Operacao: permissao.Ler, Handler: ecoar},
		{ID: "parceiro.excluir", Metodo: "DELETE", Caminho: "/parceiros/{id}", Recurso: permissao.RecursoParceiros, Operacao: permissao.Escrever, Handler: ecoar},
		{ID: "perfil.me", Metodo: "GET", Caminho: "/me", Handler: ecoar},
	})
	if err != nil {
		t.Fatalf("dispatcher failed: %v", err)
	}
	r := mux.NewRouter()
	d.Registrar(r)
	return r
}

func chamar(h http.Handler, metodo, alvo, papel string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(metodo, alvo, nil)
	req = req.WithContext(auth.ComUsuario(req.Context(), "u1", "u1@kroma.com", papel))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestPortaoDePermissoes(t *testing.T) {
	h := setupAcoesTest(t)
	casos := []struct {
		metodo, alvo, papel string
		status              int
	}{
		{"GET", "/parceiros/P1", "user", http.StatusOK},
		{"DELETE", "/parceiros/P1", "user", http.StatusForbidden},
		{"DELETE", "/parceiros/P1", "manager", http.StatusOK},
		{"GET", "/me", "", http.StatusOK},
		{"GET", "/parceiros/P1", "", http.StatusForbidden},
	}
	for _, c := range casos {
		if rr := chamar(h, c.metodo, c.alvo, c.papel); rr.Code != c.status {
			t.Fatalf("%s %s as %q: got %d want %d", c.metodo, c.alvo, c.papel, rr.Code, c.status)
		}
	}
}

func TestDespacharPorID(t *testing.T) {
	h := setupAcoesTest(t)
	rr := chamar(h, "POST", "/acoes/parceiro.buscar?id=P7", "user")
	if rr.Code != http.StatusOK || rr.Body.String() != "P7" {
		t.Fatalf("dispatch failed: %d %q", rr.Code, rr.Body.String())
	}
	if rr := chamar(h, "POST", "/acoes/parceiro.excluir?id=P7", "user"); rr.Code != http.StatusForbidden {
		t.Fatalf("dispatch must apply the same gate, got %d", rr.Code)
	}
	if rr := chamar(h, "POST", "/acoes/nao.existe", "admin"); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestListarAcoesDoPapel(t *testing.T) {
	h := setupAcoesTest(t)
	rr := chamar(h, "GET", "/acoes", "user")
	var acoes []Acao
	if err := json.NewDecoder(rr.Body).Decode(&acoes); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(acoes) != 2 || acoes[0].ID != "parceiro.buscar" || acoes[1].ID != "perfil.me" {
		t.Fatalf("unexpected actions %+v", acoes)
	}
}

func TestTabelaSemIDsRepetidos(t *testing.T) {
	if _, err := NovoDespachante(nil, Tabela(Handlers{})); err != nil {
		t.Fatalf("dispatch table invalid: %v", err)
	}
	_, err := NovoDespachante(nil, []Acao{
		{ID: "a", Handler: ecoar},
		{ID: "a", Handler: ecoar},
	})
	if err == nil {
		t.Fatalf("expected duplicate id error")
	}
}
