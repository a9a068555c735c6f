package notificacao

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAlertarPostaJSON(t *testing.T) {
	var recebido struct {
		Mensagem string            `json:"mensagem"`
		Dados    map[string]string `json:"dados"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&recebido); err != nil {
			t.Errorf("decode failed: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := NovoWebhook(srv.URL).Alertar(context.Background(), "saldo inconsistente", map[string]string{"parceiro": "P1"})
	if err != nil {
		t.Fatalf("alert failed: %v", err)
	}
	if recebido.Mensagem != "saldo inconsistente" || recebido.Dados["parceiro"] != "P1" {
		t.Fatalf("unexpected payload %+v", recebido)
	}
}

func TestAlertarSemURLEStatusDeErro(t *testing.T) {
	if err := NovoWebhook("").Alertar(context.Background(), "x", nil); err != nil {
		t.Fatalf("empty url must be a no-op, got %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	if err := NovoWebhook(srv.URL).Alertar(context.Background(), "x", nil); err == nil {
		t.Fatalf("expected error on 500")
	}
}
