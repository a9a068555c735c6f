package carteira

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/KromaEnergia/painel-parceiros/internal/cache"
	"github.com/KromaEnergia/painel-parceiros/internal/logger"
	"github.com/KromaEnergia/painel-parceiros/internal/ordenacao"
	"github.com/KromaEnergia/painel-parceiros/internal/parceiro"
	"github.com/KromaEnergia/painel-parceiros/internal/vendas"
	"go.uber.org/zap"
)

// ErrFonteIndisponivel indica falha ao buscar as vendas externas
var ErrFonteIndisponivel = errors.New("API de vendas indisponível")

const (
	TTLPadrao           = 10 * time.Minute
	StatusFechadoPadrao = "FECHADO"
	lotePorPausa        = 25
)

// FonteVendas entrega o conjunto completo de vendas externas
type FonteVendas interface {
	BuscarTodas(ctx context.Context) ([]vendas.Venda, error)
}

// Resultado é a carteira calculada para um período
type Resultado struct {
	Periodo     Periodo   `json:"periodo"`
	Inicio      time.Time `json:"inicio"`
	CalculadoEm time.Time `json:"calculadoEm"`
	DoCache     bool      `json:"doCache"`
	Linhas      []Linha   `json:"linhas"`
	Aviso       string    `json:"aviso,omitempty"`
}

// Opcoes do agregador; zeros assumem os padrões
type Opcoes struct {
	TTL           time.Duration
	StatusFechado string
	Agora         func() time.Time
}

// Agregador cruza o rol da carteira com as vendas externas
type Agregador struct {
	fonte     FonteVendas
	cache     cache.Cache
	carteira  *Service
	parceiros *parceiro.Service
	ttl       time.Duration
	fechado   string
	agora     func() time.Time

	mu        sync.Mutex
	dataset   []vendas.Venda
	carregado bool
	geracao   map[Periodo]uint64
}

func NovoAgregador(fonte FonteVendas, c cache.Cache, carteira *Service, parceiros *parceiro.Service, op Opcoes) *Agregador {
	a := &Agregador{
		fonte:     fonte,
		cache:     c,
		carteira:  carteira,
		parceiros: parceiros,
		ttl:       op.TTL,
		fechado:   op.StatusFechado,
		agora:     op.Agora,
		geracao:   map[Periodo]uint64{},
	}
	if a.ttl <= 0 {
		a.ttl = TTLPadrao
	}
	if a.fechado == "" {
		a.fechado = StatusFechadoPadrao
	}
	if a.agora == nil {
		a.agora = time.Now
	}
	return a
}

func chaveCache(p Periodo) string { return "carteira:" + string(p) }

// vendas devolve o conjunto em memória; forcar busca de novo na API
func (a *Agregador) vendas(ctx context.Context, forcar bool) ([]vendas.Venda, error) {
	a.mu.Lock()
	if a.carregado && !forcar {
		d := a.dataset
		a.mu.Unlock()
		return d, nil
	}
	a.mu.Unlock()

	d, err := a.fonte.BuscarTodas(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFonteIndisponivel, err)
	}
	a.mu.Lock()
	a.dataset, a.carregado = d, true
	a.mu.Unlock()
	return d, nil
}

// Calcular devolve as linhas do período. Dentro da validade do cache e sem forcar,
// reaproveita o cálculo anterior. Um cálculo superado por outro mais novo do mesmo
// período não grava no cache.
func (a *Agregador) Calcular(ctx context.Context, p Periodo, forcar bool) (*Resultado, error) {
	chave := chaveCache(p)
	if !forcar {
		var res Resultado
		validoAte, ok, err := cache.GetJSON(ctx, a.cache, chave, &res)
		if err != nil {
			logger.Z().Warn("falha ao ler cache da carteira", zap.String("chave", chave), zap.Error(err))
		}
		if ok && a.agora().Before(validoAte) {
			res.DoCache = true
			return &res, nil
		}
	}

	a.mu.Lock()
	a.geracao[p]++
	geracao := a.geracao[p]
	a.mu.Unlock()

	registros, err := a.vendas(ctx, forcar)
	if err != nil {
		logger.Z().Warn("falha ao buscar vendas da carteira", zap.Error(err))
		return nil, err
	}

	agora := a.agora()
	inicio := p.Inicio(agora)
	porParceiro := particionar(registros)
	entradas := a.carteira.Listar()
	linhas := make([]Linha, 0, len(entradas))
	for i, e := range entradas {
		if i%lotePorPausa == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		l := calcular(e, porParceiro[e.ID], inicio, agora, a.fechado)
		if pc, ok := a.parceiros.Buscar(e.ID); ok {
			l.Comissao = pc.ComissaoAcumulada
		}
		linhas = append(linhas, l)
	}
	res := &Resultado{Periodo: p, Inicio: inicio, CalculadoEm: agora, Linhas: linhas}

	a.mu.Lock()
	superado := a.geracao[p] != geracao
	a.mu.Unlock()
	if superado {
		logger.Z().Debug("cálculo da carteira superado, cache não gravado", zap.String("periodo", string(p)))
		return res, nil
	}
	if err := cache.PutJSON(ctx, a.cache, chave, res, a.ttl); err != nil {
		logger.Z().Warn("falha ao gravar cache da carteira", zap.String("chave", chave), zap.Error(err))
		res.Aviso = "resultado calculado, mas não guardado em cache: " + err.Error()
	}
	return res, nil
}

// Invalidar descarta o cache de todos os períodos
func (a *Agregador) Invalidar(ctx context.Context) {
	for _, p := range Periodos {
		if err := a.cache.Del(ctx, chaveCache(p)); err != nil {
			logger.Z().Warn("falha ao invalidar cache da carteira", zap.String("periodo", string(p)), zap.Error(err))
		}
	}
}

// Colunas ordenáveis da carteira
var Colunas = []ordenacao.Coluna{
	{Chave: "nome", Titulo: "Parceiro"},
	{Chave: "fechados", Titulo: "Fechados", Numerica: true},
	{Chave: "enviados", Titulo: "Enviados", Numerica: true},
	{Chave: "volume", Titulo: "Volume", Numerica: true},
	{Chave: "saude", Titulo: "Saúde", Numerica: true},
	{Chave: "dias", Titulo: "Dias sem envio", Numerica: true, PadraoDesc: true},
	{Chave: "ultimaEmissao", Titulo: "Último envio"},
	{Chave: "ultimaConclusao", Titulo: "Último fechamento"},
	{Chave: "comissao", Titulo: "Comissão", Numerica: true},
}

// OrdemPadrao da carteira
var OrdemPadrao = ordenacao.Estado{Coluna: "nome", Direcao: ordenacao.Asc}

func dataISO(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02T15:04")
}

// Celula devolve o texto exibido de uma coluna
func (l Linha) Celula(coluna string) string {
	switch coluna {
	case "fechados":
		return fmt.Sprint(l.Fechados)
	case "enviados":
		return fmt.Sprint(l.Enviados)
	case "volume":
		return l.Volume.StringFixed(2)
	case "saude":
		return l.SaudeTexto
	case "dias":
		return l.DiasTexto
	case "ultimaEmissao":
		return dataISO(l.UltimaEmissao)
	case "ultimaConclusao":
		return dataISO(l.UltimaConclusao)
	case "comissao":
		return l.Comissao.StringFixed(2)
	}
	return l.Nome
}

// Ordenar aplica o estado de ordenação às linhas
func Ordenar(linhas []Linha, e ordenacao.Estado) {
	col, ok := ordenacao.BuscarColuna(Colunas, e.Coluna)
	if !ok {
		col, _ = ordenacao.BuscarColuna(Colunas, OrdemPadrao.Coluna)
	}
	ordenacao.Ordenar(linhas, e.Direcao, col.Numerica, func(l Linha) string { return l.Celula(col.Chave) })
}
