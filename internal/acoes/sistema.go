package acoes

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/KromaEnergia/painel-parceiros/internal/auth"
	"github.com/KromaEnergia/painel-parceiros/internal/cache"
	"github.com/KromaEnergia/painel-parceiros/internal/estado"
	"github.com/KromaEnergia/painel-parceiros/internal/logacao"
	"github.com/KromaEnergia/painel-parceiros/internal/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const prazoSaude = 2 * time.Second

// Sistema atende a recarga do estado, o log de ações e a saúde das dependências
type Sistema struct {
	Store *estado.Store
	Log   *logacao.Service
	Banco *gorm.DB
	Cache cache.Cache
}

// POST /estado/recarregar
func (s *Sistema) Recarregar(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.RecarregarTudo(r.Context()); err != nil {
		logger.Z().Warn("recarga parcial do estado", zap.String("ator", auth.Ator(r.Context())), zap.Error(err))
		http.Error(w, "erro ao recarregar estado: "+err.Error(), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "estado recarregado"})
}

// GET /logs
func (s *Sistema) Logs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.Log.Listar())
}

// GET /saude
func (s *Sistema) Saude(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), prazoSaude)
	defer cancel()

	status := http.StatusOK
	out := map[string]string{"banco": "ok", "cache": "ok"}
	if err := s.pingBanco(ctx); err != nil {
		status, out["banco"] = http.StatusServiceUnavailable, err.Error()
	}
	if s.Cache != nil {
		if err := s.Cache.Ping(ctx); err != nil {
			status, out["cache"] = http.StatusServiceUnavailable, err.Error()
		}
	}
	if status != http.StatusOK {
		logger.Z().Warn("dependência indisponível", zap.Any("saude", out))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(out)
}

func (s *Sistema) pingBanco(ctx context.Context) error {
	if s.Banco == nil {
		return nil
	}
	sqlDB, err := s.Banco.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
