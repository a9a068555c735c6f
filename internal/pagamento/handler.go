package pagamento

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/KromaEnergia/painel-parceiros/internal/auth"
	"github.com/KromaEnergia/painel-parceiros/internal/formato"
	"github.com/KromaEnergia/painel-parceiros/internal/gateway"
	"github.com/KromaEnergia/painel-parceiros/internal/logger"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// DTO usado no POST /{tipo}/lotes
type LoteDTO struct {
	Parceiros []string `json:"parceiros"` // só para resgate
}

// DTO usado no PATCH /{tipo}/{id}/valor
type ValorDTO struct {
	Valor decimal.Decimal `json:"valor"`
}

// DTO usado no POST /{tipo}/{id}/comprovante
type ComprovanteDTO struct {
	Nome    string `json:"nome"`
	DataURI string `json:"dataUri"`
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

// GET /pagamentos e /resgates
func (h *Handler) Listar(tipo Tipo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responder(w, http.StatusOK, h.Service.Listar(tipo))
	}
}

// GET /pagamentos/elegiveis
func (h *Handler) Elegiveis(w http.ResponseWriter, r *http.Request) {
	responder(w, http.StatusOK, map[string]any{
		"limiteMinimo": h.Service.LimiteMinimo(r.Context()),
		"parceiros":    h.Service.Elegiveis(r.Context()),
	})
}

// POST /pagamentos/lotes e /resgates/lotes
func (h *Handler) GerarLote(tipo Tipo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in LoteDTO
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				http.Error(w, "JSON mal formado", http.StatusBadRequest)
				return
			}
		}
		res, err := h.Service.GerarLote(r.Context(), auth.Ator(r.Context()), tipo, in.Parceiros)
		if err != nil {
			falha(w, "erro ao gerar lote", err)
			return
		}
		responder(w, http.StatusCreated, res)
	}
}

// DELETE /pagamentos/lotes?dia=dd/mm/aaaa (padrão: hoje)
func (h *Handler) ExcluirLote(tipo Tipo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dia := time.Now()
		if q := strings.TrimSpace(r.URL.Query().Get("dia")); q != "" {
			d, err := formato.ParseData(q, time.Local)
			if err != nil {
				http.Error(w, "dia inválido", http.StatusBadRequest)
				return
			}
			dia = d
		}
		res, err := h.Service.ExcluirLoteDoDia(r.Context(), auth.Ator(r.Context()), tipo, dia)
		if err != nil {
			falha(w, "erro ao excluir lote", err)
			return
		}
		responder(w, http.StatusOK, res)
	}
}

// PATCH /pagamentos/{id}/status
func (h *Handler) AlternarStatus(w http.ResponseWriter, r *http.Request) {
	reg, aviso, err := h.Service.AlternarStatus(r.Context(), auth.Ator(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		falha(w, "erro ao atualizar status", err)
		return
	}
	responder(w, http.StatusOK, map[string]any{"registro": reg, "aviso": aviso})
}

// PATCH /pagamentos/{id}/valor
func (h *Handler) AtualizarValor(w http.ResponseWriter, r *http.Request) {
	var in ValorDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	reg, aviso, err := h.Service.AtualizarValor(r.Context(), auth.Ator(r.Context()), mux.Vars(r)["id"], in.Valor)
	if err != nil {
		falha(w, "erro ao atualizar valor", err)
		return
	}
	responder(w, http.StatusOK, map[string]any{"registro": reg, "aviso": aviso})
}

// POST /pagamentos/{id}/comprovante
func (h *Handler) AnexarComprovante(w http.ResponseWriter, r *http.Request) {
	var in ComprovanteDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	reg, aviso, err := h.Service.AnexarComprovante(r.Context(), auth.Ator(r.Context()), mux.Vars(r)["id"], in.Nome, in.DataURI)
	if err != nil {
		falha(w, "erro ao anexar comprovante", err)
		return
	}
	responder(w, http.StatusOK, map[string]any{"registro": reg, "aviso": aviso})
}

// GET /parametros/limite-minimo
func (h *Handler) ObterLimite(w http.ResponseWriter, r *http.Request) {
	responder(w, http.StatusOK, map[string]any{"valor": h.Service.LimiteMinimo(r.Context())})
}

// PUT /parametros/limite-minimo
func (h *Handler) DefinirLimite(w http.ResponseWriter, r *http.Request) {
	var in ValorDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	aviso, err := h.Service.DefinirLimite(r.Context(), auth.Ator(r.Context()), in.Valor)
	if err != nil {
		falha(w, "erro ao salvar limite mínimo", err)
		return
	}
	responder(w, http.StatusOK, map[string]any{"valor": in.Valor, "aviso": aviso})
}
