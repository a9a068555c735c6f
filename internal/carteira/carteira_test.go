package carteira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/KromaEnergia/painel-parceiros/internal/cache"
	"github.com/KromaEnergia/painel-parceiros/internal/estado"
	"github.com/KromaEnergia/painel-parceiros/internal/logacao"
	"github.com/KromaEnergia/painel-parceiros/internal/ordenacao"
	"github.com/KromaEnergia/painel-parceiros/internal/parceiro"
	"github.com/KromaEnergia/painel-parceiros/internal/vendas"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fonteFake struct {
	mu        sync.Mutex
	chamadas  int
	registros []vendas.Venda
	err       error

	// bloqueio, quando não nil, segura a primeira chamada até ser fechado
	entrou   chan struct{}
	bloqueio chan struct{}
}

func (f *fonteFake) BuscarTodas(ctx context.Context) ([]vendas.Venda, error) {
	f.mu.Lock()
	f.chamadas++
	n := f.chamadas
	f.mu.Unlock()
	if n == 1 && f.bloqueio != nil {
		close(f.entrou)
		<-f.bloqueio
	}
	return f.registros, f.err
}

func (f *fonteFake) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chamadas
}

type relogio struct {
	mu sync.Mutex
	t  time.Time
}

func (r *relogio) agora() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.t
}

func (r *relogio) avancar(d time.Duration) {
	r.mu.Lock()
	r.t = r.t.Add(d)
	r.mu.Unlock()
}

func ptr(t time.Time) *time.Time { return &t }

var hoje = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func setupCarteiraTest(t *testing.T, fonte *fonteFake, c cache.Cache, rel *relogio) (*Agregador, *Service) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	for _, m := range []func(*gorm.DB) error{Migrate, parceiro.Migrate, logacao.Migrate} {
		if err := m(db); err != nil {
			t.Fatalf("migrate failed: %v", err)
		}
	}
	store := estado.NewStore()
	log := logacao.NewService(db, store)
	parc := parceiro.NewService(db, store, log)
	ctx := context.Background()
	if _, _, err := parc.Criar(ctx, "t", parceiro.CriarParceiroDTO{ID: "X", Nome: "Xis", TaxaComissao: decimal.RequireFromString("0.1")}); err != nil {
		t.Fatalf("create partner failed: %v", err)
	}
	if _, err := parc.Creditar(ctx, "X", decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	s := NewService(db, store, parc, log)
	for _, in := range []AdicionarDTO{{ParceiroID: "X"}, {ParceiroID: "Y", Nome: "Ypsilon"}, {ParceiroID: "Z", Nome: "Zeta"}} {
		if _, _, err := s.Adicionar(ctx, "t", in); err != nil {
			t.Fatalf("add to portfolio failed: %v", err)
		}
	}
	return NovoAgregador(fonte, c, s, parc, Opcoes{Agora: rel.agora}), s
}

func registrosPadrao() []vendas.Venda {
	return []vendas.Venda{
		// X: um fechado hoje, nenhum envio no período
		{ParceiroID: "X", PedidoID: "1", Status: "FECHADO", ValorNota: decimal.NewFromInt(5000), DataConclusao: ptr(hoje.Add(-time.Hour))},
		// Y: envios antigos, dois fechados no mês, um envio no mês
		{ParceiroID: "Y", PedidoID: "2", Status: "FECHADO", ValorNota: decimal.NewFromInt(100), DataEmissao: ptr(hoje.AddDate(0, -4, 0)), DataConclusao: ptr(hoje.AddDate(0, 0, -3))},
		{ParceiroID: "Y", PedidoID: "3", Status: "FECHADO", ValorNota: decimal.NewFromInt(300), DataEmissao: ptr(hoje.AddDate(0, -4, 0)), DataConclusao: ptr(hoje.AddDate(0, 0, -2))},
		{ParceiroID: "Y", PedidoID: "4", Status: "ABERTO", DataEmissao: ptr(hoje.Add(-36 * time.Hour))},
		{ParceiroID: "Y", PedidoID: "4", Status: "ABERTO", DataEmissao: ptr(hoje.Add(-48 * time.Hour)), Versao: strPtr("1")},
	}
}

func strPtr(s string) *string { return &s }

func linhaDe(t *testing.T, res *Resultado, id string) Linha {
	t.Helper()
	for _, l := range res.Linhas {
		if l.ParceiroID == id {
			return l
		}
	}
	t.Fatalf("row %s not found", id)
	return Linha{}
}

func TestCalcularIndicadores(t *testing.T) {
	rel := &relogio{t: hoje}
	fonte := &fonteFake{registros: registrosPadrao()}
	a, _ := setupCarteiraTest(t, fonte, cache.NovaMemoria(0).ComRelogio(rel.agora), rel)

	res, err := a.Calcular(context.Background(), Mensal, false)
	if err != nil {
		t.Fatalf("calculate failed: %v", err)
	}

	x := linhaDe(t, res, "X")
	if x.Fechados != 1 || x.Enviados != 0 || x.SaudeTexto != "0%" || x.DiasTexto != "-" {
		t.Fatalf("unexpected X row %+v", x)
	}
	if !x.Comissao.Equal(decimal.NewFromInt(100)) || x.Nome != "Xis" {
		t.Fatalf("X must carry lifetime accrued commission, got %+v", x)
	}

	y := linhaDe(t, res, "Y")
	if y.Fechados != 2 || y.Enviados != 1 || y.SaudeTexto != "200%" {
		t.Fatalf("health must stay uncapped, got %+v", y)
	}
	if !y.Volume.Equal(decimal.NewFromInt(400)) || y.DiasTexto != "2 dias" {
		t.Fatalf("unexpected Y row %+v", y)
	}

	z := linhaDe(t, res, "Z")
	if z.Registros != 0 || z.SaudeTexto != "0%" || z.DiasTexto != "N/A" {
		t.Fatalf("portfolio entry without records still renders, got %+v", z)
	}

	p := MontarPainel(res.Linhas)
	if !p.VolumeTotal.Equal(decimal.NewFromInt(5400)) || p.FechadosTotal != 3 || p.SaudeMedia != 200 {
		t.Fatalf("unexpected dashboard %+v", p)
	}
	if !p.TicketMedio.Equal(decimal.NewFromInt(1800)) || p.RiscoChurn != 0 {
		t.Fatalf("unexpected dashboard %+v", p)
	}
}

func TestDiasSemEnvioNaoDiminui(t *testing.T) {
	emissao := hoje.Add(-30 * time.Hour)
	anterior := -1
	for h := 0; h < 24*120; h += 7 {
		n := diasDesde(emissao, hoje.Add(time.Duration(h)*time.Hour))
		if n < anterior {
			t.Fatalf("days decreased at +%dh: %d < %d", h, n, anterior)
		}
		anterior = n
	}
	if diasDesde(emissao, hoje) != 2 {
		t.Fatalf("30 hours must round up to 2 days")
	}
}

func TestCacheReaproveitaEForcarRecalcula(t *testing.T) {
	rel := &relogio{t: hoje}
	fonte := &fonteFake{registros: registrosPadrao()}
	a, _ := setupCarteiraTest(t, fonte, cache.NovaMemoria(0).ComRelogio(rel.agora), rel)
	ctx := context.Background()

	primeiro, err := a.Calcular(ctx, Mensal, false)
	if err != nil {
		t.Fatalf("calculate failed: %v", err)
	}
	rel.avancar(9 * time.Minute)
	segundo, err := a.Calcular(ctx, Mensal, false)
	if err != nil {
		t.Fatalf("calculate failed: %v", err)
	}
	if !segundo.DoCache {
		t.Fatalf("second call within ttl must come from cache")
	}
	b1, _ := json.Marshal(primeiro.Linhas)
	b2, _ := json.Marshal(segundo.Linhas)
	if string(b1) != string(b2) {
		t.Fatalf("cached rows differ:\n%s\n%s", b1, b2)
	}
	if fonte.total() != 1 {
		t.Fatalf("expected one fetch, got %d", fonte.total())
	}

	forcado, err := a.Calcular(ctx, Mensal, true)
	if err != nil {
		t.Fatalf("forced calculate failed: %v", err)
	}
	if forcado.DoCache || fonte.total() != 2 {
		t.Fatalf("forced refresh must refetch, calls=%d", fonte.total())
	}

	rel.avancar(11 * time.Minute)
	expirado, _ := a.Calcular(ctx, Mensal, false)
	if expirado.DoCache {
		t.Fatalf("expired entry must be recomputed")
	}
	if fonte.total() != 2 {
		t.Fatalf("dataset stays in memory until forced refresh, calls=%d", fonte.total())
	}
}

func TestFalhaNaFonte(t *testing.T) {
	rel := &relogio{t: hoje}
	fonte := &fonteFake{err: errors.New("timeout")}
	a, _ := setupCarteiraTest(t, fonte, cache.NovaMemoria(0), rel)
	if _, err := a.Calcular(context.Background(), Trimestral, false); !errors.Is(err, ErrFonteIndisponivel) {
		t.Fatalf("expected unavailable source, got %v", err)
	}
}

func TestCotaDoCacheNaoImpedeResultado(t *testing.T) {
	rel := &relogio{t: hoje}
	fonte := &fonteFake{registros: registrosPadrao()}
	a, _ := setupCarteiraTest(t, fonte, cache.NovaMemoria(1), rel)
	res, err := a.Calcular(context.Background(), Mensal, false)
	if err != nil {
		t.Fatalf("cache failure must not fail the calculation: %v", err)
	}
	if len(res.Linhas) != 3 || res.Aviso == "" {
		t.Fatalf("expected rows and a warning, got %+v", res)
	}
	res, _ = a.Calcular(context.Background(), Mensal, false)
	if res.DoCache {
		t.Fatalf("nothing was cached")
	}
}

func TestCalculoSuperadoNaoGravaCache(t *testing.T) {
	rel := &relogio{t: hoje}
	fonte := &fonteFake{registros: registrosPadrao(), entrou: make(chan struct{}), bloqueio: make(chan struct{})}
	a, _ := setupCarteiraTest(t, fonte, cache.NovaMemoria(0).ComRelogio(rel.agora), rel)
	ctx := context.Background()

	antigo := make(chan *Resultado)
	go func() {
		res, _ := a.Calcular(ctx, Mensal, true)
		antigo <- res
	}()
	<-fonte.entrou

	novo, err := a.Calcular(ctx, Mensal, true)
	if err != nil {
		t.Fatalf("calculate failed: %v", err)
	}
	rel.avancar(time.Minute)
	close(fonte.bloqueio)
	velho := <-antigo
	if !velho.CalculadoEm.After(novo.CalculadoEm) {
		t.Fatalf("stale computation should finish later")
	}

	cacheado, _ := a.Calcular(ctx, Mensal, false)
	if !cacheado.DoCache || !cacheado.CalculadoEm.Equal(novo.CalculadoEm) {
		t.Fatalf("superseded computation overwrote the cache: %v", cacheado.CalculadoEm)
	}
}

func TestOrdenarCarteira(t *testing.T) {
	um, cem := 1, 100
	linhas := []Linha{
		{ParceiroID: "a", Nome: "Ana", DiasTexto: "N/A"},
		{ParceiroID: "b", Nome: "Bruno", DiasSemEnvio: &cem, DiasTexto: "100 dias"},
		{ParceiroID: "c", Nome: "Caio", DiasSemEnvio: &um, DiasTexto: "1 dias"},
		{ParceiroID: "d", Nome: "Davi", DiasTexto: "-"},
	}
	ordem := OrdemPadrao
	col, _ := ordenacao.BuscarColuna(Colunas, "dias")
	ordem = ordem.Clicar(col)
	if ordem.Direcao != ordenacao.Desc {
		t.Fatalf("days column starts descending")
	}
	Ordenar(linhas, ordem)
	if linhas[0].ParceiroID != "b" || linhas[1].ParceiroID != "c" {
		t.Fatalf("unexpected order %v %v", linhas[0].ParceiroID, linhas[1].ParceiroID)
	}
	ordem = ordem.Clicar(col)
	Ordenar(linhas, ordem)
	if linhas[2].ParceiroID != "c" || linhas[3].ParceiroID != "b" {
		t.Fatalf("sentinels must sort lowest ascending, got %+v", linhas)
	}
}

func TestInicioDoPeriodo(t *testing.T) {
	casos := []struct {
		p    Periodo
		want time.Time
	}{
		{Mensal, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{Trimestral, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Semestral, time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range casos {
		if got := c.p.Inicio(hoje); !got.Equal(c.want) {
			t.Fatalf("%s: got %v want %v", c.p, got, c.want)
		}
	}
	if _, err := ParsePeriodo("anual"); err == nil {
		t.Fatalf("expected invalid period")
	}
}
