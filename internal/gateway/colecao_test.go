package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type registroTeste struct {
	ID   string `gorm:"primaryKey"`
	Nome string
}

func setupColecaoTest(t *testing.T) *Colecao[registroTeste] {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&registroTeste{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return NovaColecao[registroTeste](db, "registros")
}

func TestColecaoCRUD(t *testing.T) {
	ctx := context.Background()
	c := setupColecaoTest(t)

	if err := c.Inserir(ctx, &registroTeste{ID: "a", Nome: "Alfa"}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := c.Inserir(ctx, &registroTeste{ID: "b", Nome: "Beta"}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := c.Atualizar(ctx, "a", map[string]any{"nome": "Alfa 2"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	got, err := c.BuscarPorID(ctx, "a")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if got.Nome != "Alfa 2" {
		t.Fatalf("expected updated name, got %q", got.Nome)
	}
	if err := c.Deletar(ctx, "b"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	todos, err := c.ListarTodos(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(todos) != 1 || todos[0].ID != "a" {
		t.Fatalf("unexpected list: %+v", todos)
	}
}

func TestColecaoErrosEstruturados(t *testing.T) {
	ctx := context.Background()
	c := setupColecaoTest(t)

	_, err := c.BuscarPorID(ctx, "nao-existe")
	if !E(err, ErroNaoEncontrado) {
		t.Fatalf("expected nao_encontrado, got %v", err)
	}
	if err := c.Atualizar(ctx, "nao-existe", map[string]any{"nome": "x"}); !E(err, ErroNaoEncontrado) {
		t.Fatalf("expected nao_encontrado on update, got %v", err)
	}
	if err := c.Deletar(ctx, "nao-existe"); !E(err, ErroNaoEncontrado) {
		t.Fatalf("expected nao_encontrado on delete, got %v", err)
	}
	err = c.Atualizar(ctx, "a", nil)
	if TipoDe(err) != ErroValidacao {
		t.Fatalf("expected validacao, got %v", err)
	}
	var ge *Erro
	if !errors.As(err, &ge) || ge.Colecao != "registros" || ge.Op != "atualizar" {
		t.Fatalf("unexpected structured error: %+v", ge)
	}
}

func TestClassificar(t *testing.T) {
	cases := []struct {
		err  error
		want TipoErro
	}{
		{err: gorm.ErrRecordNotFound, want: ErroNaoEncontrado},
		{err: gorm.ErrDuplicatedKey, want: ErroConflito},
		{err: fmt.Errorf("wrap: %w", gorm.ErrForeignKeyViolated), want: ErroConflito},
		{err: gorm.ErrMissingWhereClause, want: ErroValidacao},
		{err: context.DeadlineExceeded, want: ErroRede},
		{err: errors.New("connection reset"), want: ErroRede},
	}
	for _, item := range cases {
		got := TipoDe(classificar("x", "op", item.err))
		if got != item.want {
			t.Fatalf("classificar %v want=%s got=%s", item.err, item.want, got)
		}
	}
	if classificar("x", "op", nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

type dtoTeste struct {
	Nome  string `validate:"required"`
	Papel string `validate:"omitempty,oneof=admin manager user"`
}

func TestValidar(t *testing.T) {
	if err := Validar("registros", "inserir", dtoTeste{Nome: "x", Papel: "admin"}); err != nil {
		t.Fatalf("expected valid dto, got %v", err)
	}
	err := Validar("registros", "inserir", dtoTeste{Papel: "root"})
	if !E(err, ErroValidacao) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !errors.Is(err, ErrValidacao) {
		t.Fatalf("expected ErrValidacao in chain")
	}
	if !strings.Contains(err.Error(), "Nome é obrigatório") || !strings.Contains(err.Error(), "Papel deve ser um de") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestStatusHTTP(t *testing.T) {
	casos := map[TipoErro]int{
		ErroValidacao:     400,
		ErroConflito:      409,
		ErroNaoEncontrado: 404,
		ErroRede:          502,
	}
	for tipo, want := range casos {
		if got := StatusHTTP(&Erro{Tipo: tipo, Err: errors.New("x")}); got != want {
			t.Fatalf("%s: expected %d, got %d", tipo, want, got)
		}
	}
}
