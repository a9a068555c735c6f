package carteira

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/KromaEnergia/painel-parceiros/internal/auth"
	"github.com/KromaEnergia/painel-parceiros/internal/gateway"
	"github.com/KromaEnergia/painel-parceiros/internal/logger"
	"github.com/KromaEnergia/painel-parceiros/internal/ordenacao"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handler struct {
	Service   *Service
	Agregador *Agregador
}

func NewHandler(s *Service, a *Agregador) *Handler {
	return &Handler{Service: s, Agregador: a}
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

// GET /carteira?periodo=mensal&forcar=true&coluna=dias&direcao=desc
func (h *Handler) Indicadores(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	periodo, err := ParsePeriodo(q.Get("periodo"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	forcar, _ := strconv.ParseBool(q.Get("forcar"))

	res, err := h.Agregador.Calcular(r.Context(), periodo, forcar)
	if err != nil {
		// erro exibido só na carteira; o restante do painel segue funcionando
		status := http.StatusBadGateway
		if !errors.Is(err, ErrFonteIndisponivel) {
			status = http.StatusServiceUnavailable
		}
		responder(w, status, map[string]string{"erro": err.Error()})
		return
	}

	ordem := OrdemPadrao
	if c := q.Get("coluna"); c != "" {
		ordem = ordenacao.Estado{Coluna: c, Direcao: ordenacao.ParseDirecao(q.Get("direcao"))}
	}
	Ordenar(res.Linhas, ordem)
	responder(w, http.StatusOK, map[string]any{"resultado": res, "painel": MontarPainel(res.Linhas), "ordem": ordem})
}

// GET /carteira/entradas
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	responder(w, http.StatusOK, h.Service.Listar())
}

// POST /carteira/entradas
func (h *Handler) Adicionar(w http.ResponseWriter, r *http.Request) {
	var in AdicionarDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	e, aviso, err := h.Service.Adicionar(r.Context(), auth.Ator(r.Context()), in)
	if err != nil {
		falha(w, "erro ao incluir na carteira", err)
		return
	}
	h.Agregador.Invalidar(r.Context())
	responder(w, http.StatusCreated, map[string]any{"entrada": e, "aviso": aviso})
}

// DELETE /carteira/entradas/{id}
func (h *Handler) Remover(w http.ResponseWriter, r *http.Request) {
	aviso, err := h.Service.Remover(r.Context(), auth.Ator(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		falha(w, "erro ao remover da carteira", err)
		return
	}
	h.Agregador.Invalidar(r.Context())
	responder(w, http.StatusOK, map[string]any{"message": "removido da carteira", "aviso": aviso})
}
