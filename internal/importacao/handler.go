package importacao

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/KromaEnergia/painel-parceiros/internal/auth"
	"github.com/KromaEnergia/painel-parceiros/internal/gateway"
	"github.com/KromaEnergia/painel-parceiros/internal/logger"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const limiteUpload = 20 << 20

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

// lerArquivo aceita multipart com o campo "arquivo"
func lerArquivo(r *http.Request) (string, []byte, error) {
	if err := r.ParseMultipartForm(limiteUpload); err != nil {
		return "", nil, fmt.Errorf("formulário inválido: %w", err)
	}
	f, cab, err := r.FormFile("arquivo")
	if err != nil {
		return "", nil, fmt.Errorf("campo arquivo ausente: %w", err)
	}
	defer f.Close()
	if !strings.HasSuffix(strings.ToLower(cab.Filename), ".xlsx") {
		return "", nil, fmt.Errorf("tipo de arquivo inválido: apenas .xlsx")
	}
	b, err := io.ReadAll(io.LimitReader(f, limiteUpload))
	if err != nil {
		return "", nil, err
	}
	return cab.Filename, b, nil
}

// GET /importacoes
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	responder(w, http.StatusOK, h.Service.Listar())
}

// POST /importacoes/cabecalhos
func (h *Handler) Cabecalhos(w http.ResponseWriter, r *http.Request) {
	_, conteudo, err := lerArquivo(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cab, err := LerCabecalhos(conteudo)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	responder(w, http.StatusOK, map[string]any{"cabecalhos": cab, "obrigatorios": CamposObrigatorios})
}

// POST /importacoes (multipart: arquivo + mapeamento em JSON)
func (h *Handler) Importar(w http.ResponseWriter, r *http.Request) {
	nome, conteudo, err := lerArquivo(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var mapa Mapeamento
	if err := json.Unmarshal([]byte(r.FormValue("mapeamento")), &mapa); err != nil {
		http.Error(w, "mapeamento inválido", http.StatusBadRequest)
		return
	}

	res, err := h.Service.Importar(r.Context(), auth.Ator(r.Context()), nome, conteudo, mapa)
	if err != nil {
		if probs, ok := ProblemasDe(err); ok {
			responder(w, http.StatusBadRequest, map[string]any{"problemas": probs})
			return
		}
		logger.Z().Warn("falha na importação", zap.String("arquivo", nome), zap.Error(err))
		http.Error(w, "erro ao importar planilha: "+err.Error(), gateway.StatusHTTP(err))
		return
	}
	responder(w, http.StatusOK, res)
}

// GET /importacoes/{id}/arquivo
func (h *Handler) Baixar(w http.ResponseWriter, r *http.Request) {
	a, dados, err := h.Service.Baixar(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "arquivo não encontrado", gateway.StatusHTTP(err))
		return
	}
	w.Header().Set("Content-Type", dados.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.NomeArquivo))
	_, _ = w.Write(dados.Dados)
}
