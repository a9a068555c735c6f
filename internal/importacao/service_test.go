package importacao

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/KromaEnergia/painel-parceiros/internal/estado"
	"github.com/KromaEnergia/painel-parceiros/internal/gateway"
	"github.com/KromaEnergia/painel-parceiros/internal/logacao"
	"github.com/KromaEnergia/painel-parceiros/internal/parceiro"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func setupImportacaoTest(t *testing.T) (*Service, *parceiro.Service) {
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
	for _, id := range []string{"P1", "P2"} {
		in := parceiro.CriarParceiroDTO{ID: id, Nome: "Parceiro " + id, TaxaComissao: decimal.RequireFromString("0.1")}
		if _, _, err := parc.Criar(context.Background(), "teste", in); err != nil {
			t.Fatalf("create partner failed: %v", err)
		}
	}
	return NewService(db, store, parc, log), parc
}

func planilha(t *testing.T, linhas [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, l := range linhas {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &l); err != nil {
			t.Fatalf("set row failed: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write xlsx failed: %v", err)
	}
	return buf.Bytes()
}

var mapaPadrao = Mapeamento{
	CampoParceiroID: "Parceiro",
	CampoVendaID:    "Pedido",
	CampoValor:      "Valor",
	CampoDataVenda:  "Data",
}

func TestLerCabecalhos(t *testing.T) {
	conteudo := planilha(t, [][]any{{"Parceiro", " Pedido ", "Valor"}, {"P1", "V1", "100"}})
	cab, err := LerCabecalhos(conteudo)
	if err != nil {
		t.Fatalf("read headers failed: %v", err)
	}
	if strings.Join(cab, "|") != "Parceiro|Pedido|Valor" {
		t.Fatalf("unexpected headers %v", cab)
	}
}

func TestImportarCreditaEIgnoraDuplicadas(t *testing.T) {
	s, parc := setupImportacaoTest(t)
	ctx := context.Background()

	primeira := planilha(t, [][]any{
		{"Parceiro", "Pedido", "Valor", "Data"},
		{"P1", "V1", "1.000,00", "15/03/2024"},
		{"P2", "V2", "500", ""},
	})
	res, err := s.Importar(ctx, "ana@kroma.com", "vendas.xlsx", primeira, mapaPadrao)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if res.Importadas != 2 || len(res.Ignoradas) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	p1, _ := parc.Buscar("P1")
	if p1.QtdVendas != 1 || !p1.ComissaoAcumulada.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("P1 not credited: %+v", p1)
	}

	segunda := planilha(t, [][]any{
		{"Parceiro", "Pedido", "Valor", "Data"},
		{"P1", "V1", "1000", "15/03/2024"},
		{"P1", "V3", "200", "16/03/2024"},
	})
	res, err = s.Importar(ctx, "ana@kroma.com", "vendas-2.xlsx", segunda, mapaPadrao)
	if err != nil {
		t.Fatalf("second import failed: %v", err)
	}
	if res.Importadas != 1 || len(res.Ignoradas) != 1 || res.Ignoradas[0] != "V1" {
		t.Fatalf("expected V1 skipped and reported, got %+v", res)
	}
	p1, _ = parc.Buscar("P1")
	if p1.QtdVendas != 2 || !p1.ComissaoAcumulada.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("V1 must not be credited twice: %+v", p1)
	}

	// mesmo dia: um único arquivo, sobrescrito
	arquivos := s.Listar()
	if len(arquivos) != 1 || arquivos[0].NomeArquivo != "vendas-2.xlsx" {
		t.Fatalf("expected one overwritten file, got %+v", arquivos)
	}
	_, dados, err := s.Baixar(arquivos[0].ID)
	if err != nil || dados.MimeType != MimeXLSX || len(dados.Dados) != len(segunda) {
		t.Fatalf("download failed: %v", err)
	}
}

func TestImportarValidaTudoAntesDeGravar(t *testing.T) {
	s, parc := setupImportacaoTest(t)
	ctx := context.Background()

	conteudo := planilha(t, [][]any{
		{"Parceiro", "Pedido", "Valor", "Data"},
		{"P1", "V1", "100", ""},
		{"P9", "V2", "abc", "31/02/2024"},
		{"P2", "V1", "50", ""},
	})
	_, err := s.Importar(ctx, "ana@kroma.com", "ruim.xlsx", conteudo, mapaPadrao)
	if !gateway.E(err, gateway.ErroValidacao) {
		t.Fatalf("expected validation error, got %v", err)
	}
	probs, ok := ProblemasDe(err)
	if !ok || len(probs) != 4 {
		t.Fatalf("expected 4 problems, got %v", probs)
	}
	if !strings.HasPrefix(probs[0], "Linha 3:") {
		t.Fatalf("problems must reference sheet rows, got %q", probs[0])
	}
	p1, _ := parc.Buscar("P1")
	if p1.QtdVendas != 0 {
		t.Fatalf("nothing may be credited when validation fails")
	}
	if len(s.Listar()) != 0 {
		t.Fatalf("file must not be stored when validation fails")
	}
}

func TestImportarExigeMapeamento(t *testing.T) {
	s, _ := setupImportacaoTest(t)
	conteudo := planilha(t, [][]any{{"Parceiro", "Pedido"}, {"P1", "V1"}})
	_, err := s.Importar(context.Background(), "a", "x.xlsx", conteudo, Mapeamento{CampoParceiroID: "Parceiro", CampoVendaID: "Pedido", CampoValor: "Valor"})
	probs, ok := ProblemasDe(err)
	if !ok || len(probs) != 1 || !strings.Contains(probs[0], "Valor") {
		t.Fatalf("expected missing column problem, got %v", err)
	}
	_, err = s.Importar(context.Background(), "a", "x.xlsx", conteudo, Mapeamento{CampoParceiroID: "Parceiro"})
	if probs, _ := ProblemasDe(err); len(probs) != 2 {
		t.Fatalf("expected two unmapped required fields, got %v", err)
	}
}

func TestLedgerRecusaRepetida(t *testing.T) {
	s, _ := setupImportacaoTest(t)
	ctx := context.Background()
	v := VendaImportada{ID: "V1", ParceiroID: "P1", Valor: decimal.NewFromInt(10), Origem: OrigemComissaoManual, ImportadoEm: time.Now()}
	if err := s.Ledger.Registrar(ctx, v); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := s.Ledger.Registrar(ctx, v); !gateway.E(err, gateway.ErroConflito) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if ok, err := s.Ledger.Contem(ctx, " V1 "); err != nil || !ok {
		t.Fatalf("expected ledger to contain V1: %v %v", ok, err)
	}
}

func TestImportarLeCelulaNumericaSemMilhar(t *testing.T) {
	s, parc := setupImportacaoTest(t)

	conteudo := planilha(t, [][]any{
		{"Parceiro", "Pedido", "Valor", "Data"},
		{"P1", "V1", 1234.567, ""},
		{"P2", "V2", "1.500", ""},
	})
	res, err := s.Importar(context.Background(), "ana@kroma.com", "numeros.xlsx", conteudo, mapaPadrao)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !res.Total.Equal(decimal.RequireFromString("2734.57")) {
		t.Fatalf("expected total 2734.57, got %s", res.Total)
	}
	p1, _ := parc.Buscar("P1")
	if !p1.ValorVendas.Equal(decimal.RequireFromString("1234.57")) {
		t.Fatalf("numeric cell read as thousands: %s", p1.ValorVendas)
	}
	p2, _ := parc.Buscar("P2")
	if !p2.ValorVendas.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("text cell must keep pt-BR reading: %s", p2.ValorVendas)
	}
}

func TestImportarRemoveLedgerQuandoCreditoFalha(t *testing.T) {
	s, parc := setupImportacaoTest(t)
	ctx := context.Background()

	// some do banco mas continua no espelho, então passa pela validação
	if err := parc.Repo.DB().Exec("DELETE FROM parceiros WHERE id = ?", "P2").Error; err != nil {
		t.Fatalf("delete partner failed: %v", err)
	}
	conteudo := planilha(t, [][]any{
		{"Parceiro", "Pedido", "Valor", "Data"},
		{"P1", "V1", "100", ""},
		{"P2", "V2", "50", ""},
	})
	res, err := s.Importar(ctx, "ana@kroma.com", "parcial.xlsx", conteudo, mapaPadrao)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if res.Importadas != 1 || res.Interrompido == "" || len(res.SemCredito) != 0 {
		t.Fatalf("expected V1 imported and V2 interrupted, got %+v", res)
	}
	if ok, _ := s.Ledger.Contem(ctx, "V1"); !ok {
		t.Fatalf("V1 must be in the ledger")
	}
	if ok, _ := s.Ledger.Contem(ctx, "V2"); ok {
		t.Fatalf("V2 was not credited and must not stay in the ledger")
	}
}
