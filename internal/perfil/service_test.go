package perfil

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/KromaEnergia/painel-parceiros/internal/estado"
	"github.com/KromaEnergia/painel-parceiros/internal/gateway"
	"github.com/KromaEnergia/painel-parceiros/internal/logacao"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupPerfilTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if err := logacao.Migrate(db); err != nil {
		t.Fatalf("migrate log failed: %v", err)
	}
	store := estado.NewStore()
	return NewService(db, store, logacao.NewService(db, store))
}

func TestLoginEGarantirAdmin(t *testing.T) {
	s := setupPerfilTest(t)
	ctx := context.Background()

	criado, err := s.GarantirAdmin(ctx, "Admin@Kroma.com", "senha-forte")
	if err != nil || !criado {
		t.Fatalf("expected admin seeded, got %v %v", criado, err)
	}
	if criado, _ := s.GarantirAdmin(ctx, "outro@kroma.com", "senha-forte"); criado {
		t.Fatalf("seed must run only on empty table")
	}

	p, err := s.Login(ctx, LoginRequest{Email: "admin@kroma.com", Password: "senha-forte"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if p.Papel != PapelAdmin {
		t.Fatalf("expected admin role, got %q", p.Papel)
	}
	if _, err := s.Login(ctx, LoginRequest{Email: "admin@kroma.com", Password: "errada"}); !errors.Is(err, ErrCredenciais) {
		t.Fatalf("expected ErrCredenciais, got %v", err)
	}
}

func TestCriarGeraSenhaTemporariaEConflita(t *testing.T) {
	s := setupPerfilTest(t)
	ctx := context.Background()

	p, temporaria, _, err := s.Criar(ctx, "admin@kroma.com", CriarPerfilDTO{Email: "bia@kroma.com", Papel: PapelUser})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if temporaria == "" {
		t.Fatalf("expected temporary password")
	}
	if _, err := s.Login(ctx, LoginRequest{Email: p.Email, Password: temporaria}); err != nil {
		t.Fatalf("login with temporary password failed: %v", err)
	}
	if _, _, _, err := s.Criar(ctx, "admin@kroma.com", CriarPerfilDTO{Email: "BIA@kroma.com", Papel: PapelUser}); !gateway.E(err, gateway.ErroConflito) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, _, _, err := s.Criar(ctx, "admin@kroma.com", CriarPerfilDTO{Email: "c@kroma.com", Papel: "root"}); !gateway.E(err, gateway.ErroValidacao) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAlterarPapelValeAposRecarga(t *testing.T) {
	s := setupPerfilTest(t)
	ctx := context.Background()

	if _, err := s.GarantirAdmin(ctx, "admin@kroma.com", "senha-forte"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	p, _, _, err := s.Criar(ctx, "admin@kroma.com", CriarPerfilDTO{Email: "bia@kroma.com", Papel: PapelUser, Senha: "12345678"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if papel, _ := s.PapelDe(p.ID); papel != PapelUser {
		t.Fatalf("expected user role, got %q", papel)
	}

	if _, _, err := s.AlterarPapel(ctx, "admin@kroma.com", p.ID, AlterarPapelDTO{Papel: PapelManager}); err != nil {
		t.Fatalf("change role failed: %v", err)
	}
	if papel, _ := s.PapelDe(p.ID); papel != PapelManager {
		t.Fatalf("expected manager after reload, got %q", papel)
	}
}

func TestAlterarPapelProtegeUltimoAdmin(t *testing.T) {
	s := setupPerfilTest(t)
	ctx := context.Background()
	if _, err := s.GarantirAdmin(ctx, "admin@kroma.com", "senha-forte"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	admin := s.Listar()[0]
	if _, _, err := s.AlterarPapel(ctx, "admin@kroma.com", admin.ID, AlterarPapelDTO{Papel: PapelUser}); !gateway.E(err, gateway.ErroValidacao) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
