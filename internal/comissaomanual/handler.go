package comissaomanual

import (
	"encoding/json"
	"net/http"

	"github.com/KromaEnergia/painel-parceiros/internal/auth"
	"github.com/KromaEnergia/painel-parceiros/internal/gateway"
	"github.com/KromaEnergia/painel-parceiros/internal/logger"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

func responder(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func falha(w http.ResponseWriter, msg string, err error) {
	logger.Z().Warn(msg, zap.Error(err))
	http.Error(w, msg+": "+err.Error(), gateway.StatusHTTP(err))
}

// GET /comissoes-manuais
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	responder(w, http.StatusOK, h.Service.Listar())
}

// POST /comissoes-manuais
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var in CriarSolicitacaoDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	sol, aviso, err := h.Service.Criar(r.Context(), auth.Ator(r.Context()), in)
	if err != nil {
		falha(w, "erro ao registrar comissão manual", err)
		return
	}
	responder(w, http.StatusCreated, map[string]any{"solicitacao": sol, "aviso": aviso})
}

// POST /comissoes-manuais/{id}/aprovar
func (h *Handler) Aprovar(w http.ResponseWriter, r *http.Request) {
	sol, aviso, err := h.Service.Aprovar(r.Context(), auth.Ator(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		falha(w, "erro ao aprovar comissão manual", err)
		return
	}
	responder(w, http.StatusOK, map[string]any{"solicitacao": sol, "aviso": aviso})
}

// POST /comissoes-manuais/{id}/rejeitar
func (h *Handler) Rejeitar(w http.ResponseWriter, r *http.Request) {
	var in RejeitarDTO
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "payload inválido", http.StatusBadRequest)
			return
		}
	}
	sol, aviso, err := h.Service.Rejeitar(r.Context(), auth.Ator(r.Context()), mux.Vars(r)["id"], in)
	if err != nil {
		falha(w, "erro ao rejeitar comissão manual", err)
		return
	}
	responder(w, http.StatusOK, map[string]any{"solicitacao": sol, "aviso": aviso})
}
