package visao

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/KromaEnergia/painel-parceiros/internal/auth"
	"github.com/KromaEnergia/painel-parceiros/internal/carteira"
	"github.com/KromaEnergia/painel-parceiros/internal/gateway"
	"github.com/KromaEnergia/painel-parceiros/internal/logger"
	"github.com/KromaEnergia/painel-parceiros/internal/permissao"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handler struct {
	Service    *Service
	Permissoes *permissao.Service
}

func NewHandler(s *Service, p *permissao.Service) *Handler {
	return &Handler{Service: s, Permissoes: p}
}

func responder(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GET /visoes
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	visoes := h.Permissoes.VisoesPermitidas(auth.Papel(r.Context()), Nomes, Recurso)
	responder(w, http.StatusOK, map[string]any{"visoes": visoes})
}

// GET /visoes/{nome}?formato=xlsx
func (h *Handler) Abrir(w http.ResponseWriter, r *http.Request) {
	nome := mux.Vars(r)["nome"]
	if !h.Permissoes.Permitido(auth.Papel(r.Context()), Recurso(nome), permissao.Ler) {
		http.Error(w, "acesso negado", http.StatusForbidden)
		return
	}
	q := r.URL.Query()
	forcar, _ := strconv.ParseBool(q.Get("forcar"))
	consulta := Consulta{Usuario: auth.UsuarioID(r.Context()), Periodo: q.Get("periodo"), Forcar: forcar}

	t, err := h.Service.Montar(r.Context(), nome, consulta)
	switch {
	case errors.Is(err, ErrVisaoDesconhecida):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, carteira.ErrFonteIndisponivel):
		// erro só da carteira; as demais visões seguem disponíveis
		logger.Z().Warn("carteira indisponível", zap.Error(err))
		responder(w, http.StatusBadGateway, map[string]string{"erro": err.Error()})
		return
	case err != nil:
		logger.Z().Warn("erro ao montar visão", zap.String("visao", nome), zap.Error(err))
		http.Error(w, "erro ao montar visão: "+err.Error(), gateway.StatusHTTP(err))
		return
	}

	if q.Get("formato") != "xlsx" {
		responder(w, http.StatusOK, t)
		return
	}
	arquivo, err := Exportar(t)
	if err != nil {
		logger.Z().Error("erro ao exportar visão", zap.String("visao", nome), zap.Error(err))
		http.Error(w, "erro ao exportar planilha", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", MimeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s-%s.xlsx", nome, time.Now().Format("20060102")))
	_, _ = w.Write(arquivo)
}

type ordenacaoRequest struct {
	Coluna string `json:"coluna"`
}

// POST /visoes/{nome}/ordenacao
func (h *Handler) Ordenar(w http.ResponseWriter, r *http.Request) {
	nome := mux.Vars(r)["nome"]
	if !h.Permissoes.Permitido(auth.Papel(r.Context()), Recurso(nome), permissao.Ler) {
		http.Error(w, "acesso negado", http.StatusForbidden)
		return
	}
	var in ordenacaoRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Coluna == "" {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	e, err := h.Service.Clicar(nome, auth.UsuarioID(r.Context()), in.Coluna)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	responder(w, http.StatusOK, e)
}
