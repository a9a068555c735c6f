// Package visao monta as tabelas de cada tela a partir do estado em memória.
// Cada visão tem um construtor; a ordenação segue a preferência do usuário.
package visao

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/KromaEnergia/painel-parceiros/internal/carteira"
	"github.com/KromaEnergia/painel-parceiros/internal/comissaomanual"
	"github.com/KromaEnergia/painel-parceiros/internal/estado"
	"github.com/KromaEnergia/painel-parceiros/internal/formato"
	"github.com/KromaEnergia/painel-parceiros/internal/importacao"
	"github.com/KromaEnergia/painel-parceiros/internal/logacao"
	"github.com/KromaEnergia/painel-parceiros/internal/ordenacao"
	"github.com/KromaEnergia/painel-parceiros/internal/pagamento"
	"github.com/KromaEnergia/painel-parceiros/internal/parceiro"
	"github.com/KromaEnergia/painel-parceiros/internal/permissao"
)

const (
	Parceiros        = permissao.RecursoParceiros
	Pagamentos       = permissao.RecursoPagamentos
	Resgates         = permissao.RecursoResgates
	Importacoes      = permissao.RecursoImportacoes
	ComissoesManuais = permissao.RecursoComissoesManual
	Resultados       = permissao.RecursoResultados
	Permissoes       = permissao.RecursoPermissoes
	Carteira         = permissao.RecursoCarteira
	Logs             = permissao.RecursoLogs
	Elegiveis        = "elegiveis"
)

// Nomes lista as visões na ordem das abas
var Nomes = []string{Parceiros, Pagamentos, Resgates, Elegiveis, Importacoes, ComissoesManuais, Resultados, Carteira, Permissoes, Logs}

var ErrVisaoDesconhecida = errors.New("visão desconhecida")

// Recurso é o recurso de permissão que protege a visão
func Recurso(nome string) string {
	if nome == Elegiveis {
		return permissao.RecursoPagamentos
	}
	return nome
}

// Fontes são os serviços lidos pelas visões
type Fontes struct {
	Parceiros   *parceiro.Service
	Pagamentos  *pagamento.Service
	Importacoes *importacao.Service
	Comissoes   *comissaomanual.Service
	Permissoes  *permissao.Service
	Logs        *logacao.Service
	Agregador   *carteira.Agregador
}

// Consulta são os parâmetros de uma abertura de visão
type Consulta struct {
	Usuario string
	Periodo string
	Forcar  bool
}

type construtor func(ctx context.Context, q Consulta) (*Tabela, error)

// Service monta as visões e memoriza o resumo de resultados
type Service struct {
	Fontes
	Prefs *ordenacao.Preferencias

	construtores map[string]construtor
	padroes      map[string]ordenacao.Estado

	mu     sync.Mutex
	resumo *Resumo
	versao uint64
}

func NewService(store *estado.Store, f Fontes) *Service {
	s := &Service{Fontes: f, Prefs: ordenacao.NovasPreferencias()}
	s.construtores = map[string]construtor{
		Parceiros:        s.parceiros,
		Pagamentos:       s.livro(pagamento.TipoPagamento),
		Resgates:         s.livro(pagamento.TipoResgate),
		Elegiveis:        s.elegiveis,
		Importacoes:      s.importacoes,
		ComissoesManuais: s.comissoes,
		Resultados:       s.resultados,
		Carteira:         s.carteira,
		Permissoes:       s.permissoes,
		Logs:             s.logs,
	}
	s.padroes = map[string]ordenacao.Estado{
		Parceiros:        {Coluna: "nome", Direcao: ordenacao.Asc},
		Pagamentos:       {Coluna: "data", Direcao: ordenacao.Desc},
		Resgates:         {Coluna: "data", Direcao: ordenacao.Desc},
		Elegiveis:        {Coluna: "acumulada", Direcao: ordenacao.Desc},
		Importacoes:      {Coluna: "dia", Direcao: ordenacao.Desc},
		ComissoesManuais: {Coluna: "criadaEm", Direcao: ordenacao.Desc},
		Carteira:         carteira.OrdemPadrao,
		Logs:             {Coluna: "quando", Direcao: ordenacao.Desc},
	}
	if store != nil {
		store.Inscrever(func(estado.Mudanca) { s.invalidarResumo() })
	}
	return s
}

// Montar constrói a visão e aplica a ordenação salva do usuário
func (s *Service) Montar(ctx context.Context, nome string, q Consulta) (*Tabela, error) {
	fn, ok := s.construtores[nome]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrVisaoDesconhecida, nome)
	}
	t, err := fn(ctx, q)
	if err != nil {
		return nil, err
	}
	t.Nome = nome
	if padrao, ok := s.padroes[nome]; ok {
		t.Ordenar(s.Prefs.Obter(q.Usuario, nome, padrao))
	}
	return t, nil
}

// Clicar registra o clique no cabeçalho e devolve o novo estado
func (s *Service) Clicar(nome, usuario, coluna string) (ordenacao.Estado, error) {
	padrao, ok := s.padroes[nome]
	if !ok {
		return ordenacao.Estado{}, fmt.Errorf("%w: %s", ErrVisaoDesconhecida, nome)
	}
	t, err := s.colunas(nome)
	if err != nil {
		return ordenacao.Estado{}, err
	}
	col, ok := ordenacao.BuscarColuna(t, coluna)
	if !ok {
		return ordenacao.Estado{}, fmt.Errorf("coluna desconhecida: %s", coluna)
	}
	return s.Prefs.Clicar(usuario, nome, col, padrao), nil
}

func (s *Service) colunas(nome string) ([]ordenacao.Coluna, error) {
	switch nome {
	case Parceiros:
		return colunasParceiros, nil
	case Pagamentos, Resgates:
		return colunasLivro, nil
	case Elegiveis:
		return colunasElegiveis, nil
	case Importacoes:
		return colunasImportacoes, nil
	case ComissoesManuais:
		return colunasComissoes, nil
	case Carteira:
		return carteira.Colunas, nil
	case Logs:
		return colunasLogs, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrVisaoDesconhecida, nome)
}

func iso(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.RFC3339)
}

func isoPtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return iso(*t)
}

var colunasParceiros = []ordenacao.Coluna{
	{Chave: "id", Titulo: "ID"},
	{Chave: "nome", Titulo: "Nome"},
	{Chave: "consultor", Titulo: "Consultor"},
	{Chave: "vendas", Titulo: "Vendas", Numerica: true},
	{Chave: "valorVendas", Titulo: "Valor vendido", Numerica: true},
	{Chave: "taxa", Titulo: "Taxa", Numerica: true},
	{Chave: "acumulada", Titulo: "Comissão a pagar", Numerica: true},
	{Chave: "paga", Titulo: "Comissão paga", Numerica: true},
	{Chave: "pontos", Titulo: "Pontos", Numerica: true},
}

func (s *Service) parceiros(ctx context.Context, q Consulta) (*Tabela, error) {
	t := &Tabela{Titulo: "Parceiros", Colunas: colunasParceiros}
	for _, p := range s.Fontes.Parceiros.Listar() {
		l := novaLinha(p.ID)
		l.set("id", p.ID)
		l.set("nome", p.Nome)
		l.set("consultor", p.Consultor)
		l.set("vendas", strconv.Itoa(p.QtdVendas))
		l.set("valorVendas", formato.Moeda(p.ValorVendas))
		l.set("taxa", formato.Percentual(p.TaxaComissao.InexactFloat64()*100))
		l.set("acumulada", formato.Moeda(p.ComissaoAcumulada))
		l.set("paga", formato.Moeda(p.ComissaoPaga))
		l.set("pontos", strconv.Itoa(p.Pontos))
		t.Linhas = append(t.Linhas, l)
	}
	return t, nil
}

var colunasLivro = []ordenacao.Coluna{
	{Chave: "data", Titulo: "Data"},
	{Chave: "parceiro", Titulo: "Parceiro"},
	{Chave: "consultor", Titulo: "Consultor"},
	{Chave: "valor", Titulo: "Valor RT", Numerica: true},
	{Chave: "status", Titulo: "Status"},
	{Chave: "comprovante", Titulo: "Comprovante"},
}

func (s *Service) livro(tipo pagamento.Tipo) construtor {
	return func(ctx context.Context, q Consulta) (*Tabela, error) {
		t := &Tabela{Titulo: tipo.Rotulo() + "s", Colunas: colunasLivro}
		for _, r := range s.Fontes.Pagamentos.Listar(tipo) {
			l := novaLinha(r.ID)
			l.setOrdenavel("data", formato.Data(r.DataGeracao), iso(r.DataGeracao))
			l.set("parceiro", r.ParceiroNome)
			l.set("consultor", r.Consultor)
			l.set("valor", formato.Moeda(r.ValorRT))
			if r.Pago {
				l.set("status", "Pago")
			} else {
				l.set("status", "Pendente")
			}
			if r.ComprovanteNome == "" {
				l.set("comprovante", "-")
			} else {
				l.set("comprovante", r.ComprovanteNome)
			}
			t.Linhas = append(t.Linhas, l)
		}
		return t, nil
	}
}

var colunasElegiveis = []ordenacao.Coluna{
	{Chave: "id", Titulo: "ID"},
	{Chave: "nome", Titulo: "Nome"},
	{Chave: "consultor", Titulo: "Consultor"},
	{Chave: "chavePix", Titulo: "Chave PIX"},
	{Chave: "acumulada", Titulo: "Comissão a pagar", Numerica: true},
}

func (s *Service) elegiveis(ctx context.Context, q Consulta) (*Tabela, error) {
	limite := s.Fontes.Pagamentos.LimiteMinimo(ctx)
	t := &Tabela{Titulo: "Elegíveis para pagamento", Colunas: colunasElegiveis, Extra: map[string]string{"limiteMinimo": formato.Moeda(limite)}}
	for _, p := range s.Fontes.Pagamentos.Elegiveis(ctx) {
		l := novaLinha(p.ID)
		l.set("id", p.ID)
		l.set("nome", p.Nome)
		l.set("consultor", p.Consultor)
		l.set("chavePix", p.ChavePix)
		l.set("acumulada", formato.Moeda(p.ComissaoAcumulada))
		t.Linhas = append(t.Linhas, l)
	}
	return t, nil
}

var colunasImportacoes = []ordenacao.Coluna{
	{Chave: "dia", Titulo: "Dia"},
	{Chave: "arquivo", Titulo: "Arquivo"},
	{Chave: "importadoEm", Titulo: "Importado em"},
}

func (s *Service) importacoes(ctx context.Context, q Consulta) (*Tabela, error) {
	t := &Tabela{Titulo: "Importações", Colunas: colunasImportacoes}
	for _, a := range s.Fontes.Importacoes.Listar() {
		l := novaLinha(a.ID)
		l.set("dia", a.Dia)
		l.set("arquivo", a.NomeArquivo)
		l.setOrdenavel("importadoEm", formato.DataHora(a.DataImportacao), iso(a.DataImportacao))
		t.Linhas = append(t.Linhas, l)
	}
	return t, nil
}

var colunasComissoes = []ordenacao.Coluna{
	{Chave: "criadaEm", Titulo: "Solicitada em"},
	{Chave: "parceiro", Titulo: "Parceiro"},
	{Chave: "venda", Titulo: "Venda"},
	{Chave: "valor", Titulo: "Valor", Numerica: true},
	{Chave: "dataVenda", Titulo: "Data da venda"},
	{Chave: "consultor", Titulo: "Consultor"},
	{Chave: "status", Titulo: "Status"},
	{Chave: "justificativa", Titulo: "Justificativa"},
}

func (s *Service) comissoes(ctx context.Context, q Consulta) (*Tabela, error) {
	t := &Tabela{Titulo: "Comissões manuais", Colunas: colunasComissoes}
	for _, c := range s.Fontes.Comissoes.Listar() {
		l := novaLinha(c.ID)
		l.setOrdenavel("criadaEm", formato.Data(c.CreatedAt), iso(c.CreatedAt))
		l.set("parceiro", c.ParceiroNome)
		if v := c.Venda(); v != "" {
			l.set("venda", v)
		} else {
			l.set("venda", "-")
		}
		l.set("valor", formato.Moeda(c.Valor))
		l.setOrdenavel("dataVenda", formato.DataPtr(c.DataVenda), isoPtr(c.DataVenda))
		l.set("consultor", c.Consultor)
		l.set("status", string(c.Status))
		l.set("justificativa", c.Justificativa)
		t.Linhas = append(t.Linhas, l)
	}
	return t, nil
}

func (s *Service) carteira(ctx context.Context, q Consulta) (*Tabela, error) {
	periodo, err := carteira.ParsePeriodo(q.Periodo)
	if err != nil {
		return nil, err
	}
	res, err := s.Fontes.Agregador.Calcular(ctx, periodo, q.Forcar)
	if err != nil {
		return nil, err
	}
	t := &Tabela{
		Titulo:  "Carteira",
		Colunas: carteira.Colunas,
		Aviso:   res.Aviso,
		Extra:   map[string]any{"periodo": res.Periodo, "calculadoEm": res.CalculadoEm, "doCache": res.DoCache, "painel": carteira.MontarPainel(res.Linhas)},
	}
	for _, r := range res.Linhas {
		l := novaLinha(r.ParceiroID)
		l.set("nome", r.Nome)
		l.set("fechados", strconv.Itoa(r.Fechados))
		l.set("enviados", strconv.Itoa(r.Enviados))
		l.set("volume", formato.Moeda(r.Volume))
		l.set("saude", r.SaudeTexto)
		l.set("dias", r.DiasTexto)
		l.setOrdenavel("ultimaEmissao", formato.DataPtr(r.UltimaEmissao), r.Celula("ultimaEmissao"))
		l.setOrdenavel("ultimaConclusao", formato.DataPtr(r.UltimaConclusao), r.Celula("ultimaConclusao"))
		l.set("comissao", formato.Moeda(r.Comissao))
		t.Linhas = append(t.Linhas, l)
	}
	return t, nil
}

func (s *Service) permissoes(ctx context.Context, q Consulta) (*Tabela, error) {
	regras, err := s.Fontes.Permissoes.Politicas()
	if err != nil {
		return nil, err
	}
	t := &Tabela{Titulo: "Permissões", Colunas: []ordenacao.Coluna{
		{Chave: "papel", Titulo: "Papel"},
		{Chave: "recurso", Titulo: "Recurso"},
		{Chave: "acao", Titulo: "Ação"},
	}}
	for i, r := range regras {
		l := novaLinha(strconv.Itoa(i))
		l.set("papel", r.Papel)
		l.set("recurso", r.Recurso)
		l.set("acao", r.Acao)
		t.Linhas = append(t.Linhas, l)
	}
	return t, nil
}

var colunasLogs = []ordenacao.Coluna{
	{Chave: "quando", Titulo: "Quando"},
	{Chave: "ator", Titulo: "Usuário"},
	{Chave: "descricao", Titulo: "Descrição"},
}

func (s *Service) logs(ctx context.Context, q Consulta) (*Tabela, error) {
	t := &Tabela{Titulo: "Log de ações", Colunas: colunasLogs}
	for _, r := range s.Fontes.Logs.Listar() {
		l := novaLinha(r.ID)
		l.setOrdenavel("quando", formato.DataHora(r.CriadoEm), iso(r.CriadoEm))
		l.set("ator", r.Ator)
		l.set("descricao", r.Descricao)
		t.Linhas = append(t.Linhas, l)
	}
	return t, nil
}
