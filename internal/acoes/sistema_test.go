package acoes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KromaEnergia/painel-parceiros/internal/cache"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func saude(t *testing.T, s *Sistema) (int, map[string]string) {
	t.Helper()
	rr := httptest.NewRecorder()
	s.Saude(rr, httptest.NewRequest(http.MethodGet, "/saude", nil))
	var out map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return rr.Code, out
}

func TestSaude(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}

	code, out := saude(t, &Sistema{Banco: db, Cache: cache.NovaMemoria(0)})
	if code != http.StatusOK || out["banco"] != "ok" || out["cache"] != "ok" {
		t.Fatalf("expected healthy, got %d %v", code, out)
	}

	// nada escuta na porta 1
	redis := cache.NovoRedis(cache.RedisConfig{Host: "127.0.0.1", Port: 1})
	code, out = saude(t, &Sistema{Banco: db, Cache: redis})
	if code != http.StatusServiceUnavailable || out["banco"] != "ok" || out["cache"] == "ok" {
		t.Fatalf("expected unreachable redis to be reported, got %d %v", code, out)
	}
}
