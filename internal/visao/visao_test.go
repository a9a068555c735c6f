package visao

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KromaEnergia/painel-parceiros/internal/auth"
	"github.com/KromaEnergia/painel-parceiros/internal/cache"
	"github.com/KromaEnergia/painel-parceiros/internal/carteira"
	"github.com/KromaEnergia/painel-parceiros/internal/comissaomanual"
	"github.com/KromaEnergia/painel-parceiros/internal/estado"
	"github.com/KromaEnergia/painel-parceiros/internal/importacao"
	"github.com/KromaEnergia/painel-parceiros/internal/logacao"
	"github.com/KromaEnergia/painel-parceiros/internal/notificacao"
	"github.com/KromaEnergia/painel-parceiros/internal/pagamento"
	"github.com/KromaEnergia/painel-parceiros/internal/parceiro"
	"github.com/KromaEnergia/painel-parceiros/internal/permissao"
	"github.com/KromaEnergia/painel-parceiros/internal/vendas"
	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type fonteFake struct {
	registros []vendas.Venda
	err       error
}

func (f fonteFake) BuscarTodas(ctx context.Context) ([]vendas.Venda, error) {
	return f.registros, f.err
}

type ambiente struct {
	svc       *Service
	parc      *parceiro.Service
	carteira  *carteira.Service
	permissao *permissao.Service
}

func setupVisaoTest(t *testing.T, fonte carteira.FonteVendas) *ambiente {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	migracoes := []func(*gorm.DB) error{
		parceiro.Migrate, pagamento.Migrate, importacao.Migrate, comissaomanual.Migrate, carteira.Migrate, logacao.Migrate,
	}
	for _, m := range migracoes {
		if err := m(db); err != nil {
			t.Fatalf("migrate failed: %v", err)
		}
	}
	store := estado.NewStore()
	log := logacao.NewService(db, store)
	parc := parceiro.NewService(db, store, log)
	imp := importacao.NewService(db, store, parc, log)
	cart := carteira.NewService(db, store, parc, log)
	perm, err := permissao.NewService()
	if err != nil {
		t.Fatalf("permissions failed: %v", err)
	}
	f := Fontes{
		Parceiros:   parc,
		Pagamentos:  pagamento.NewService(db, store, parc, log, notificacao.NovoWebhook(""), decimal.NewFromInt(300)),
		Importacoes: imp,
		Comissoes:   comissaomanual.NewService(db, store, imp.Ledger, parc, log),
		Permissoes:  perm,
		Logs:        log,
		Agregador:   carteira.NovoAgregador(fonte, cache.NovaMemoria(0), cart, parc, carteira.Opcoes{}),
	}
	return &ambiente{svc: NewService(store, f), parc: parc, carteira: cart, permissao: perm}
}

func (a *ambiente) parceiro(t *testing.T, id, nome string, saldo int64) {
	t.Helper()
	ctx := context.Background()
	in := parceiro.CriarParceiroDTO{ID: id, Nome: nome, TaxaComissao: decimal.NewFromInt(1)}
	if _, _, err := a.parc.Criar(ctx, "teste", in); err != nil {
		t.Fatalf("create partner failed: %v", err)
	}
	if saldo > 0 {
		if _, err := a.parc.Creditar(ctx, id, decimal.NewFromInt(saldo)); err != nil {
			t.Fatalf("credit failed: %v", err)
		}
	}
}

func ids(t *Tabela) []string {
	var out []string
	for _, l := range t.Linhas {
		out = append(out, l.ID)
	}
	return out
}

func TestParceirosSeguemOrdenacaoDoUsuario(t *testing.T) {
	a := setupVisaoTest(t, fonteFake{})
	a.parceiro(t, "B", "Bruno", 50)
	a.parceiro(t, "A", "Ana", 1500)
	a.parceiro(t, "C", "caio", 0)
	ctx := context.Background()

	tab, err := a.svc.Montar(ctx, Parceiros, Consulta{Usuario: "u1"})
	if err != nil {
		t.Fatalf("build view failed: %v", err)
	}
	if got := fmt.Sprint(ids(tab)); got != "[A B C]" {
		t.Fatalf("default order by name, got %s", got)
	}
	if tab.Linhas[0].Celulas["acumulada"] != "R$ 1.500,00" {
		t.Fatalf("unexpected formatted balance %q", tab.Linhas[0].Celulas["acumulada"])
	}

	if _, err := a.svc.Clicar(Parceiros, "u1", "acumulada"); err != nil {
		t.Fatalf("click failed: %v", err)
	}
	tab, _ = a.svc.Montar(ctx, Parceiros, Consulta{Usuario: "u1"})
	if got := fmt.Sprint(ids(tab)); got != "[C B A]" {
		t.Fatalf("currency column must sort numerically, got %s", got)
	}
	outro, _ := a.svc.Montar(ctx, Parceiros, Consulta{Usuario: "u2"})
	if got := fmt.Sprint(ids(outro)); got != "[A B C]" {
		t.Fatalf("sort state is per user, got %s", got)
	}
	if _, err := a.svc.Clicar(Parceiros, "u1", "inexistente"); err == nil {
		t.Fatalf("expected unknown column error")
	}
}

func TestResumoInvalidadoPorMudanca(t *testing.T) {
	a := setupVisaoTest(t, fonteFake{})
	a.parceiro(t, "A", "Ana", 100)

	r := a.svc.Resumo()
	if r.Parceiros != 1 || !r.ComissaoAcumulada.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected summary %+v", r)
	}
	a.svc.mu.Lock()
	memorizado := a.svc.resumo != nil
	a.svc.mu.Unlock()
	if !memorizado {
		t.Fatalf("summary should be memoized")
	}

	a.parceiro(t, "B", "Bruno", 0)
	if r := a.svc.Resumo(); r.Parceiros != 2 {
		t.Fatalf("summary not invalidated by store change: %+v", r)
	}
}

func TestExportarPlanilha(t *testing.T) {
	a := setupVisaoTest(t, fonteFake{})
	a.parceiro(t, "A", "Ana", 100)
	a.parceiro(t, "B", "Bruno", 0)

	tab, err := a.svc.Montar(context.Background(), Parceiros, Consulta{})
	if err != nil {
		t.Fatalf("build view failed: %v", err)
	}
	arquivo, err := Exportar(tab)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(arquivo))
	if err != nil {
		t.Fatalf("open export failed: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Parceiros")
	if err != nil {
		t.Fatalf("read export failed: %v", err)
	}
	if len(rows) != 3 || rows[0][1] != "Nome" || rows[1][1] != "Ana" {
		t.Fatalf("unexpected export %v", rows)
	}
}

func TestCarteiraNaVisao(t *testing.T) {
	a := setupVisaoTest(t, fonteFake{})
	a.parceiro(t, "A", "Ana", 100)
	if _, _, err := a.carteira.Adicionar(context.Background(), "t", carteira.AdicionarDTO{ParceiroID: "A"}); err != nil {
		t.Fatalf("add to portfolio failed: %v", err)
	}
	tab, err := a.svc.Montar(context.Background(), Carteira, Consulta{Usuario: "u1", Periodo: "trimestral"})
	if err != nil {
		t.Fatalf("build view failed: %v", err)
	}
	if len(tab.Linhas) != 1 {
		t.Fatalf("expected one row, got %d", len(tab.Linhas))
	}
	l := tab.Linhas[0]
	if l.Celulas["saude"] != "0%" || l.Celulas["dias"] != "N/A" || l.Celulas["comissao"] != "R$ 100,00" {
		t.Fatalf("unexpected row %+v", l.Celulas)
	}
	if _, err := a.svc.Montar(context.Background(), Carteira, Consulta{Periodo: "anual"}); err == nil {
		t.Fatalf("expected invalid period")
	}
}

func TestCarteiraIndisponivel(t *testing.T) {
	a := setupVisaoTest(t, fonteFake{err: errors.New("conexão recusada")})
	_, err := a.svc.Montar(context.Background(), Carteira, Consulta{})
	if !errors.Is(err, carteira.ErrFonteIndisponivel) {
		t.Fatalf("expected unavailable source, got %v", err)
	}
	if _, err := a.svc.Montar(context.Background(), Parceiros, Consulta{}); err != nil {
		t.Fatalf("other views must keep working: %v", err)
	}
}

func TestHandlerRespeitaPapel(t *testing.T) {
	a := setupVisaoTest(t, fonteFake{})
	h := NewHandler(a.svc, a.permissao)

	req := httptest.NewRequest(http.MethodGet, "/visoes", nil)
	req = req.WithContext(auth.ComUsuario(req.Context(), "u1", "u1@kroma.com", "user"))
	rr := httptest.NewRecorder()
	h.Listar(rr, req)
	var body struct {
		Visoes []string `json:"visoes"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if fmt.Sprint(body.Visoes) != "[parceiros carteira]" {
		t.Fatalf("unexpected views for user: %v", body.Visoes)
	}

	req = httptest.NewRequest(http.MethodGet, "/visoes/pagamentos", nil)
	req = mux.SetURLVars(req.WithContext(auth.ComUsuario(req.Context(), "u1", "u1@kroma.com", "user")), map[string]string{"nome": Pagamentos})
	rr = httptest.NewRecorder()
	h.Abrir(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/visoes/elegiveis?formato=xlsx", nil)
	req = mux.SetURLVars(req.WithContext(auth.ComUsuario(req.Context(), "u2", "g@kroma.com", "manager")), map[string]string{"nome": Elegiveis})
	rr = httptest.NewRecorder()
	h.Abrir(rr, req)
	if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != MimeXLSX {
		t.Fatalf("expected xlsx export, got %d %s", rr.Code, rr.Header().Get("Content-Type"))
	}
}
