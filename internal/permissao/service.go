// Package permissao decide, por papel, quais recursos e visões cada usuário acessa.
package permissao

import (
	"fmt"
	"sort"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
)

const (
	Ler      = "ler"
	Escrever = "escrever"
)

// Recursos protegidos; as visões usam o mesmo nome do recurso que exibem
const (
	RecursoParceiros       = "parceiros"
	RecursoPagamentos      = "pagamentos"
	RecursoResgates        = "resgates"
	RecursoImportacoes     = "importacoes"
	RecursoComissoesManual = "comissoes-manuais"
	RecursoResultados      = "resultados"
	RecursoPermissoes      = "permissoes"
	RecursoPerfis          = "perfis"
	RecursoCarteira        = "carteira"
	RecursoParametros      = "parametros"
	RecursoLogs            = "logs"
	RecursoEstado          = "estado"
)

var todosRecursos = []string{
	RecursoParceiros, RecursoPagamentos, RecursoResgates, RecursoImportacoes,
	RecursoComissoesManual, RecursoResultados, RecursoPermissoes, RecursoPerfis,
	RecursoCarteira, RecursoParametros, RecursoLogs, RecursoEstado,
}

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (g(r.sub, p.sub) || r.sub == p.sub) && keyMatch(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

// Policy é uma linha da tabela de permissões
type Policy struct {
	Papel   string `json:"papel"`
	Recurso string `json:"recurso"`
	Acao    string `json:"acao"`
}

// Service encapsula o enforcer com as políticas fixas do painel
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

func NewService() (*Service, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model failed: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer failed: %w", err)
	}
	if _, err := enforcer.AddPolicies(politicasPadrao()); err != nil {
		return nil, fmt.Errorf("load authz policy failed: %w", err)
	}
	return &Service{enforcer: enforcer}, nil
}

// admin vê e altera tudo; manager tudo menos a gestão de perfis; user só carteira e parceiros (leitura)
func politicasPadrao() [][]string {
	regras := [][]string{{"admin", "*", "*"}}
	for _, rec := range todosRecursos {
		regras = append(regras, []string{"manager", rec, Ler})
		if rec != RecursoPerfis {
			regras = append(regras, []string{"manager", rec, Escrever})
		}
	}
	regras = append(regras,
		[]string{"user", RecursoCarteira, Ler},
		[]string{"user", RecursoParceiros, Ler},
	)
	return regras
}

// Permitido responde se o papel pode executar a ação no recurso
func (s *Service) Permitido(papel, recurso, acao string) bool {
	if s == nil || s.enforcer == nil || papel == "" {
		return false
	}
	ok, err := s.enforcer.Enforce(strings.TrimSpace(papel), strings.TrimSpace(recurso), acao)
	return err == nil && ok
}

// VisoesPermitidas lista as visões que o papel pode abrir. recurso traduz o nome da
// visão para o recurso protegido; nil usa o próprio nome.
func (s *Service) VisoesPermitidas(papel string, visoes []string, recurso func(string) string) []string {
	out := []string{}
	for _, v := range visoes {
		r := v
		if recurso != nil {
			r = recurso(v)
		}
		if s.Permitido(papel, r, Ler) {
			out = append(out, v)
		}
	}
	return out
}

// Politicas devolve a tabela de permissões ordenada
func (s *Service) Politicas() ([]Policy, error) {
	regras, err := s.enforcer.GetPolicy()
	if err != nil {
		return nil, err
	}
	out := make([]Policy, 0, len(regras))
	for _, r := range regras {
		if len(r) < 3 {
			continue
		}
		out = append(out, Policy{Papel: r[0], Recurso: r[1], Acao: r[2]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Papel != out[j].Papel {
			return out[i].Papel < out[j].Papel
		}
		if out[i].Recurso != out[j].Recurso {
			return out[i].Recurso < out[j].Recurso
		}
		return out[i].Acao < out[j].Acao
	})
	return out, nil
}
