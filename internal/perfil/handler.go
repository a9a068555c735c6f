package perfil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/KromaEnergia/painel-parceiros/internal/auth"
	"github.com/KromaEnergia/painel-parceiros/internal/gateway"
	"github.com/KromaEnergia/painel-parceiros/internal/logger"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Handler encapsula o service e a emissão de tokens
type Handler struct {
	Service *Service
	Sessoes *auth.Sessoes
}

func NewHandler(s *Service, sessoes *auth.Sessoes) *Handler {
	return &Handler{Service: s, Sessoes: sessoes}
}

func responder(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	p, err := h.Service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrCredenciais) || gateway.E(err, gateway.ErroValidacao) {
			http.Error(w, "credenciais inválidas", http.StatusUnauthorized)
			return
		}
		logger.Z().Error("falha no login", zap.Error(err))
		http.Error(w, "erro ao autenticar", http.StatusBadGateway)
		return
	}
	if err := h.Sessoes.EmitirNoLogin(w, p.ID, p.Email); err != nil {
		logger.Z().Error("falha ao emitir tokens", zap.String("usuario", p.ID), zap.Error(err))
		http.Error(w, "erro ao gerar token", http.StatusInternalServerError)
	}
}

// GET /perfis
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	responder(w, http.StatusOK, h.Service.Listar())
}

// GET /me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Service.Espelho.Buscar(auth.UsuarioID(r.Context()))
	if !ok {
		http.Error(w, "perfil não encontrado", http.StatusNotFound)
		return
	}
	responder(w, http.StatusOK, p)
}

// POST /perfis
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var in CriarPerfilDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	p, temporaria, aviso, err := h.Service.Criar(r.Context(), auth.Ator(r.Context()), in)
	if err != nil {
		http.Error(w, "erro ao cadastrar perfil: "+err.Error(), gateway.StatusHTTP(err))
		return
	}
	responder(w, http.StatusCreated, map[string]any{"perfil": p, "senhaTemporaria": temporaria, "aviso": aviso})
}

// PATCH /perfis/{id}/papel
func (h *Handler) AlterarPapel(w http.ResponseWriter, r *http.Request) {
	var in AlterarPapelDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	p, aviso, err := h.Service.AlterarPapel(r.Context(), auth.Ator(r.Context()), mux.Vars(r)["id"], in)
	if err != nil {
		http.Error(w, "erro ao alterar papel: "+err.Error(), gateway.StatusHTTP(err))
		return
	}
	responder(w, http.StatusOK, map[string]any{"perfil": p, "aviso": aviso})
}
