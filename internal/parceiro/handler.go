package parceiro

import (
	"encoding/json"
	"net/http"

	"github.com/KromaEnergia/painel-parceiros/internal/auth"
	"github.com/KromaEnergia/painel-parceiros/internal/gateway"
	"github.com/KromaEnergia/painel-parceiros/internal/logger"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Handler encapsula o service
type Handler struct {
	Service *Service
}

// NewHandler retorna um handler inicializado
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

// GET /parceiros
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	responder(w, http.StatusOK, h.Service.Listar())
}

// GET /parceiros/{id}
func (h *Handler) Buscar(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Service.Buscar(mux.Vars(r)["id"])
	if !ok {
		http.Error(w, "parceiro não encontrado", http.StatusNotFound)
		return
	}
	responder(w, http.StatusOK, p)
}

// POST /parceiros
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var in CriarParceiroDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	p, aviso, err := h.Service.Criar(r.Context(), auth.Ator(r.Context()), in)
	if err != nil {
		falha(w, "erro ao cadastrar parceiro", err)
		return
	}
	responder(w, http.StatusCreated, map[string]any{"parceiro": p, "aviso": aviso})
}

// PUT /parceiros/{id}
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	var in AtualizarParceiroDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	p, aviso, err := h.Service.Atualizar(r.Context(), auth.Ator(r.Context()), mux.Vars(r)["id"], in)
	if err != nil {
		falha(w, "erro ao atualizar parceiro", err)
		return
	}
	responder(w, http.StatusOK, map[string]any{"parceiro": p, "aviso": aviso})
}

// DELETE /parceiros/{id}
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	aviso, err := h.Service.Deletar(r.Context(), auth.Ator(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		falha(w, "erro ao excluir parceiro", err)
		return
	}
	responder(w, http.StatusOK, map[string]any{"message": "parceiro excluído com sucesso", "aviso": aviso})
}
