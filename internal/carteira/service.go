// Package carteira mantém o rol de parceiros acompanhados e calcula seus indicadores
// a partir da API externa de vendas.
package carteira

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/KromaEnergia/painel-parceiros/internal/estado"
	"github.com/KromaEnergia/painel-parceiros/internal/gateway"
	"github.com/KromaEnergia/painel-parceiros/internal/logacao"
	"github.com/KromaEnergia/painel-parceiros/internal/parceiro"
	"gorm.io/gorm"
)

const Colecao = "carteira"

var ErrJaNaCarteira = errors.New("parceiro já está na carteira")

// AdicionarDTO usado no POST /carteira/entradas
type AdicionarDTO struct {
	ParceiroID string `json:"parceiroId" validate:"required,max=64"`
	Nome       string `json:"nome" validate:"max=255"`
}

// Service mantém o rol da carteira
type Service struct {
	colecao   *gateway.Colecao[Entrada]
	Espelho   *estado.Espelho[Entrada]
	Parceiros *parceiro.Service
	Log       *logacao.Service
}

func NewService(db *gorm.DB, store *estado.Store, parceiros *parceiro.Service, log *logacao.Service) *Service {
	c := gateway.NovaColecao[Entrada](db, Colecao)
	return &Service{
		colecao:   c,
		Espelho:   estado.NovoEspelho[Entrada](store, Colecao, c, func(e Entrada) string { return e.ID }),
		Parceiros: parceiros,
		Log:       log,
	}
}

// Listar devolve o rol ordenado por nome
func (s *Service) Listar() []Entrada {
	itens := s.Espelho.Listar()
	sort.SliceStable(itens, func(i, j int) bool { return itens[i].Nome < itens[j].Nome })
	return itens
}

// Adicionar inclui um parceiro; sem nome usa o do cadastro
func (s *Service) Adicionar(ctx context.Context, ator string, in AdicionarDTO) (*Entrada, string, error) {
	in.ParceiroID = strings.TrimSpace(in.ParceiroID)
	in.Nome = strings.TrimSpace(in.Nome)
	if err := gateway.Validar(Colecao, "inserir", in); err != nil {
		return nil, "", err
	}
	if _, ok := s.Espelho.Buscar(in.ParceiroID); ok {
		return nil, "", &gateway.Erro{Tipo: gateway.ErroConflito, Colecao: Colecao, Op: "inserir", Err: ErrJaNaCarteira}
	}
	if in.Nome == "" {
		p, ok := s.Parceiros.Buscar(in.ParceiroID)
		if !ok {
			return nil, "", gateway.NovoErroValidacao(Colecao, "inserir", "nome é obrigatório para parceiro sem cadastro")
		}
		in.Nome = p.Nome
	}

	e := Entrada{ID: in.ParceiroID, Nome: in.Nome}
	if err := s.colecao.Inserir(ctx, &e); err != nil {
		return nil, "", err
	}
	s.Espelho.Aplicar(e)
	return &e, s.Log.Avisar(ctx, ator, fmt.Sprintf("Incluiu %s (%s) na carteira", e.Nome, e.ID)), nil
}

// Remover tira o parceiro da carteira
func (s *Service) Remover(ctx context.Context, ator, id string) (string, error) {
	e, ok := s.Espelho.Buscar(id)
	if !ok {
		return "", &gateway.Erro{Tipo: gateway.ErroNaoEncontrado, Colecao: Colecao, Op: "deletar", Err: gorm.ErrRecordNotFound}
	}
	if err := s.colecao.Deletar(ctx, id); err != nil {
		return "", err
	}
	s.Espelho.Remover(id)
	return s.Log.Avisar(ctx, ator, fmt.Sprintf("Removeu %s (%s) da carteira", e.Nome, e.ID)), nil
}
