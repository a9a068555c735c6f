package visao

import (
	"context"
	"strconv"

	"github.com/KromaEnergia/painel-parceiros/internal/comissaomanual"
	"github.com/KromaEnergia/painel-parceiros/internal/formato"
	"github.com/KromaEnergia/painel-parceiros/internal/ordenacao"
	"github.com/KromaEnergia/painel-parceiros/internal/pagamento"
	"github.com/shopspring/decimal"
)

// Resumo são os totais da tela de resultados
type Resumo struct {
	Parceiros          int             `json:"parceiros"`
	QtdVendas          int             `json:"qtdVendas"`
	ValorVendas        decimal.Decimal `json:"valorVendas"`
	ComissaoAcumulada  decimal.Decimal `json:"comissaoAcumulada"`
	ComissaoPaga       decimal.Decimal `json:"comissaoPaga"`
	Pagamentos         int             `json:"pagamentos"`
	PagamentosPendente decimal.Decimal `json:"pagamentosPendente"`
	Resgates           int             `json:"resgates"`
	ValorResgatado     decimal.Decimal `json:"valorResgatado"`
	ComissoesPendentes int             `json:"comissoesPendentes"`
	ValorPendente      decimal.Decimal `json:"valorPendente"`
	UltimaImportacao   string          `json:"ultimaImportacao"`
}

func (s *Service) invalidarResumo() {
	s.mu.Lock()
	s.resumo = nil
	s.versao++
	s.mu.Unlock()
}

// Resumo devolve os totais memorizados; qualquer mudança no estado descarta a cópia
func (s *Service) Resumo() Resumo {
	s.mu.Lock()
	if s.resumo != nil {
		r := *s.resumo
		s.mu.Unlock()
		return r
	}
	versao := s.versao
	s.mu.Unlock()

	r := s.calcularResumo()

	s.mu.Lock()
	if s.versao == versao {
		s.resumo = &r
	}
	s.mu.Unlock()
	return r
}

func (s *Service) calcularResumo() Resumo {
	r := Resumo{
		ValorVendas:        decimal.Zero,
		ComissaoAcumulada:  decimal.Zero,
		ComissaoPaga:       decimal.Zero,
		PagamentosPendente: decimal.Zero,
		ValorResgatado:     decimal.Zero,
		ValorPendente:      decimal.Zero,
		UltimaImportacao:   "-",
	}
	for _, p := range s.Fontes.Parceiros.Listar() {
		r.Parceiros++
		r.QtdVendas += p.QtdVendas
		r.ValorVendas = r.ValorVendas.Add(p.ValorVendas)
		r.ComissaoAcumulada = r.ComissaoAcumulada.Add(p.ComissaoAcumulada)
		r.ComissaoPaga = r.ComissaoPaga.Add(p.ComissaoPaga)
	}
	for _, reg := range s.Fontes.Pagamentos.Listar(pagamento.TipoPagamento) {
		r.Pagamentos++
		if !reg.Pago {
			r.PagamentosPendente = r.PagamentosPendente.Add(reg.ValorRT)
		}
	}
	for _, reg := range s.Fontes.Pagamentos.Listar(pagamento.TipoResgate) {
		r.Resgates++
		r.ValorResgatado = r.ValorResgatado.Add(reg.ValorRT)
	}
	for _, c := range s.Fontes.Comissoes.Listar() {
		if c.Status == comissaomanual.StatusPendente {
			r.ComissoesPendentes++
			r.ValorPendente = r.ValorPendente.Add(c.Valor)
		}
	}
	if arquivos := s.Fontes.Importacoes.Listar(); len(arquivos) > 0 {
		r.UltimaImportacao = formato.DataHora(arquivos[0].DataImportacao)
	}
	return r
}

func (s *Service) resultados(ctx context.Context, q Consulta) (*Tabela, error) {
	r := s.Resumo()
	t := &Tabela{Titulo: "Resultados", Extra: r, Colunas: []ordenacao.Coluna{
		{Chave: "indicador", Titulo: "Indicador"},
		{Chave: "valor", Titulo: "Valor"},
	}}
	linhas := [][2]string{
		{"Parceiros", strconv.Itoa(r.Parceiros)},
		{"Vendas", strconv.Itoa(r.QtdVendas)},
		{"Valor vendido", formato.Moeda(r.ValorVendas)},
		{"Comissão a pagar", formato.Moeda(r.ComissaoAcumulada)},
		{"Comissão paga", formato.Moeda(r.ComissaoPaga)},
		{"Pagamentos gerados", strconv.Itoa(r.Pagamentos)},
		{"Pagamentos não quitados", formato.Moeda(r.PagamentosPendente)},
		{"Resgates", strconv.Itoa(r.Resgates)},
		{"Valor resgatado", formato.Moeda(r.ValorResgatado)},
		{"Comissões manuais pendentes", strconv.Itoa(r.ComissoesPendentes)},
		{"Valor pendente de aprovação", formato.Moeda(r.ValorPendente)},
		{"Última importação", r.UltimaImportacao},
	}
	for i, par := range linhas {
		l := novaLinha(strconv.Itoa(i))
		l.set("indicador", par[0])
		l.set("valor", par[1])
		t.Linhas = append(t.Linhas, l)
	}
	return t, nil
}
