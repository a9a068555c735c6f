// Package parceiro mantém os parceiros comissionados e seus saldos.
package parceiro

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KromaEnergia/painel-parceiros/internal/estado"
	"github.com/KromaEnergia/painel-parceiros/internal/gateway"
	"github.com/KromaEnergia/painel-parceiros/internal/logacao"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrIDDuplicado       = errors.New("já existe parceiro com este id")
	ErrTaxaInvalida      = errors.New("taxa de comissão deve estar entre 0 e 1")
	ErrSaldoPendente     = errors.New("parceiro possui comissão acumulada a pagar")
	ErrSaldoInsuficiente = errors.New("comissão acumulada ficaria negativa")
	ErrEstornoExcedePago = errors.New("estorno maior que a comissão paga")
	ErrValorInvalido     = errors.New("valor da venda deve ser maior que zero")
)

// Service concentra as operações sobre parceiros
type Service struct {
	Repo    *Repository
	Espelho *estado.Espelho[Parceiro]
	Log     *logacao.Service
}

func NewService(db *gorm.DB, store *estado.Store, log *logacao.Service) *Service {
	repo := NewRepository(db)
	return &Service{
		Repo:    repo,
		Espelho: estado.NovoEspelho[Parceiro](store, Colecao, repo, func(p Parceiro) string { return p.ID }),
		Log:     log,
	}
}

// Listar devolve o espelho
func (s *Service) Listar() []Parceiro {
	return s.Espelho.Listar()
}

// Buscar consulta o espelho
func (s *Service) Buscar(id string) (Parceiro, bool) {
	return s.Espelho.Buscar(id)
}

func validarTaxa(t decimal.Decimal) error {
	if t.IsNegative() || t.GreaterThan(decimal.NewFromInt(1)) {
		return gateway.NovoErroValidacao(Colecao, "validar", ErrTaxaInvalida.Error())
	}
	return nil
}

// Criar cadastra um parceiro com saldos zerados
func (s *Service) Criar(ctx context.Context, ator string, in CriarParceiroDTO) (*Parceiro, string, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Nome = strings.TrimSpace(in.Nome)
	if err := gateway.Validar(Colecao, "inserir", in); err != nil {
		return nil, "", err
	}
	if err := validarTaxa(in.TaxaComissao); err != nil {
		return nil, "", err
	}
	existe, err := s.Repo.Existe(ctx, in.ID)
	if err != nil {
		return nil, "", err
	}
	if existe {
		return nil, "", &gateway.Erro{Tipo: gateway.ErroConflito, Colecao: Colecao, Op: "inserir", Err: ErrIDDuplicado}
	}

	p := Parceiro{
		ID:                in.ID,
		Nome:              in.Nome,
		Email:             strings.TrimSpace(in.Email),
		Telefone:          strings.TrimSpace(in.Telefone),
		Consultor:         strings.TrimSpace(in.Consultor),
		ChavePixTipo:      in.ChavePixTipo,
		ChavePix:          strings.TrimSpace(in.ChavePix),
		TaxaComissao:      in.TaxaComissao,
		ValorVendas:       decimal.Zero,
		ComissaoAcumulada: decimal.Zero,
		ComissaoPaga:      decimal.Zero,
	}
	if err := s.Repo.Inserir(ctx, &p); err != nil {
		return nil, "", err
	}
	s.Espelho.Aplicar(p)
	aviso := s.Log.Avisar(ctx, ator, fmt.Sprintf("Cadastrou o parceiro %s (%s)", p.Nome, p.ID))
	return &p, aviso, nil
}

// Atualizar altera contato, chave de pagamento e taxa
func (s *Service) Atualizar(ctx context.Context, ator, id string, in AtualizarParceiroDTO) (*Parceiro, string, error) {
	if err := gateway.Validar(Colecao, "atualizar", in); err != nil {
		return nil, "", err
	}
	campos := map[string]any{}
	if in.Nome != nil {
		campos["nome"] = strings.TrimSpace(*in.Nome)
	}
	if in.Email != nil {
		campos["email"] = strings.TrimSpace(*in.Email)
	}
	if in.Telefone != nil {
		campos["telefone"] = strings.TrimSpace(*in.Telefone)
	}
	if in.Consultor != nil {
		campos["consultor"] = strings.TrimSpace(*in.Consultor)
	}
	if in.ChavePixTipo != nil {
		campos["chave_pix_tipo"] = *in.ChavePixTipo
	}
	if in.ChavePix != nil {
		campos["chave_pix"] = strings.TrimSpace(*in.ChavePix)
	}
	if in.TaxaComissao != nil {
		if err := validarTaxa(*in.TaxaComissao); err != nil {
			return nil, "", err
		}
		campos["taxa_comissao"] = *in.TaxaComissao
	}

	if err := s.Repo.Atualizar(ctx, id, campos); err != nil {
		return nil, "", err
	}
	p, err := s.Repo.BuscarPorID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	s.Espelho.Aplicar(*p)
	aviso := s.Log.Avisar(ctx, ator, fmt.Sprintf("Editou o parceiro %s (%s)", p.Nome, p.ID))
	return p, aviso, nil
}

// Deletar recusa parceiros com comissão acumulada
func (s *Service) Deletar(ctx context.Context, ator, id string) (string, error) {
	p, err := s.Repo.BuscarPorID(ctx, id)
	if err != nil {
		return "", err
	}
	if p.ComissaoAcumulada.IsPositive() {
		return "", gateway.NovoErroValidacao(Colecao, "deletar", ErrSaldoPendente.Error())
	}
	if err := s.Repo.Deletar(ctx, id); err != nil {
		return "", err
	}
	s.Espelho.Remover(id)
	return s.Log.Avisar(ctx, ator, fmt.Sprintf("Excluiu o parceiro %s (%s)", p.Nome, p.ID)), nil
}

// Creditar lança uma venda: +1 venda, soma o valor, acumula valor × taxa e +1 ponto
func (s *Service) Creditar(ctx context.Context, id string, valor decimal.Decimal) (*Parceiro, error) {
	if !valor.IsPositive() {
		return nil, gateway.NovoErroValidacao(Colecao, "creditar", ErrValorInvalido.Error())
	}
	p, err := s.Repo.BuscarPorID(ctx, id)
	if err != nil {
		return nil, err
	}
	comissao := valor.Mul(p.TaxaComissao).Round(2)
	p.QtdVendas++
	p.ValorVendas = p.ValorVendas.Add(valor)
	p.ComissaoAcumulada = p.ComissaoAcumulada.Add(comissao)
	p.Pontos++

	campos := map[string]any{
		"qtd_vendas":         p.QtdVendas,
		"valor_vendas":       p.ValorVendas,
		"comissao_acumulada": p.ComissaoAcumulada,
		"pontos":             p.Pontos,
	}
	if err := s.Repo.Atualizar(ctx, id, campos); err != nil {
		return nil, err
	}
	s.Espelho.Aplicar(*p)
	return p, nil
}

// Movimentar transfere valor do acumulado para o pago; valor negativo estorna e
// nunca deixa o pago negativo
func (s *Service) Movimentar(ctx context.Context, id string, valor decimal.Decimal) (*Parceiro, error) {
	p, err := s.Repo.BuscarPorID(ctx, id)
	if err != nil {
		return nil, err
	}
	acumulada := p.ComissaoAcumulada.Sub(valor)
	if acumulada.IsNegative() {
		return nil, gateway.NovoErroValidacao(Colecao, "movimentar", ErrSaldoInsuficiente.Error())
	}
	paga := p.ComissaoPaga.Add(valor)
	if paga.IsNegative() {
		return nil, gateway.NovoErroValidacao(Colecao, "movimentar", ErrEstornoExcedePago.Error())
	}
	p.ComissaoAcumulada = acumulada
	p.ComissaoPaga = paga

	campos := map[string]any{
		"comissao_acumulada": p.ComissaoAcumulada,
		"comissao_paga":      p.ComissaoPaga,
	}
	if err := s.Repo.Atualizar(ctx, id, campos); err != nil {
		return nil, err
	}
	s.Espelho.Aplicar(*p)
	return p, nil
}
