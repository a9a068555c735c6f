// Package acoes liga cada ação da interface, por um id estável, ao handler que a executa.
// A mesma tabela registra as rotas REST e atende o despacho por POST /acoes/{acao}.
package acoes

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/KromaEnergia/painel-parceiros/internal/auth"
	"github.com/KromaEnergia/painel-parceiros/internal/permissao"
	"github.com/gorilla/mux"
)

// Acao é uma entrada da tabela de despacho. Recurso vazio exige apenas autenticação.
type Acao struct {
	ID       string           `json:"id"`
	Metodo   string           `json:"metodo"`
	Caminho  string           `json:"caminho"`
	Recurso  string           `json:"recurso,omitempty"`
	Operacao string           `json:"operacao,omitempty"`
	Handler  http.HandlerFunc `json:"-"`
}

// Despachante guarda a tabela e aplica o portão de permissões
type Despachante struct {
	Permissoes *permissao.Service
	acoes      []Acao
	porID      map[string]Acao
}

func NovoDespachante(p *permissao.Service, tabela []Acao) (*Despachante, error) {
	d := &Despachante{Permissoes: p, porID: make(map[string]Acao, len(tabela))}
	for _, a := range tabela {
		if a.ID == "" || a.Handler == nil {
			return nil, fmt.Errorf("ação inválida: %q", a.ID)
		}
		if _, dup := d.porID[a.ID]; dup {
			return nil, fmt.Errorf("ação duplicada: %s", a.ID)
		}
		d.porID[a.ID] = a
		d.acoes = append(d.acoes, a)
	}
	return d, nil
}

func (d *Despachante) permitido(r *http.Request, a Acao) bool {
	if a.Recurso == "" {
		return true
	}
	return d.Permissoes.Permitido(auth.Papel(r.Context()), a.Recurso, a.Operacao)
}

// Exigir envolve o handler com o portão de permissões da ação
func (d *Despachante) Exigir(a Acao) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !d.permitido(r, a) {
			http.Error(w, "acesso negado", http.StatusForbidden)
			return
		}
		a.Handler(w, r)
	}
}

// Registrar publica cada ação na sua rota e as rotas do próprio despachante
func (d *Despachante) Registrar(r *mux.Router) {
	r.HandleFunc("/acoes", d.Listar).Methods("GET")
	r.HandleFunc("/acoes/{acao}", d.Despachar).Methods("POST")
	for _, a := range d.acoes {
		r.HandleFunc(a.Caminho, d.Exigir(a)).Methods(a.Metodo)
	}
}

// GET /acoes: ações disponíveis para o papel do usuário
func (d *Despachante) Listar(w http.ResponseWriter, r *http.Request) {
	out := []Acao{}
	for _, a := range d.acoes {
		if d.permitido(r, a) {
			out = append(out, a)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// POST /acoes/{acao}?id=...: executa a ação pelo id; a query vira as variáveis de rota
func (d *Despachante) Despachar(w http.ResponseWriter, r *http.Request) {
	a, ok := d.porID[mux.Vars(r)["acao"]]
	if !ok {
		http.Error(w, "ação desconhecida", http.StatusNotFound)
		return
	}
	vars := map[string]string{}
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			vars[k] = v[0]
		}
	}
	d.Exigir(a)(w, mux.SetURLVars(r, vars))
}
