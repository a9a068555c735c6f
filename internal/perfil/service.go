// Package perfil cuida dos usuários do painel e de seus papéis.
package perfil

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KromaEnergia/painel-parceiros/internal/estado"
	"github.com/KromaEnergia/painel-parceiros/internal/gateway"
	"github.com/KromaEnergia/painel-parceiros/internal/logacao"
	"github.com/KromaEnergia/painel-parceiros/internal/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const Colecao = "perfis"

var (
	ErrCredenciais = errors.New("credenciais inválidas")
	ErrEmailEmUso  = errors.New("e-mail já cadastrado")
	ErrUltimoAdmin = errors.New("não é possível rebaixar o último admin")
)

type Service struct {
	colecao *gateway.Colecao[Perfil]
	Espelho *estado.Espelho[Perfil]
	Log     *logacao.Service
}

func NewService(db *gorm.DB, store *estado.Store, log *logacao.Service) *Service {
	c := gateway.NovaColecao[Perfil](db, Colecao)
	return &Service{
		colecao: c,
		Espelho: estado.NovoEspelho[Perfil](store, Colecao, c, func(p Perfil) string { return p.ID }),
		Log:     log,
	}
}

func (s *Service) Listar() []Perfil {
	return s.Espelho.Listar()
}

// PapelDe consulta o espelho; só reflete uma troca de papel depois da recarga
func (s *Service) PapelDe(id string) (string, bool) {
	p, ok := s.Espelho.Buscar(id)
	if !ok {
		return "", false
	}
	return p.Papel, true
}

// Login valida e-mail e senha contra o banco
func (s *Service) Login(ctx context.Context, in LoginRequest) (*Perfil, error) {
	if err := gateway.Validar(Colecao, "login", in); err != nil {
		return nil, err
	}
	itens, err := s.colecao.Onde(ctx, "lower(email) = ?", strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, err
	}
	if len(itens) == 0 || !utils.CheckSenha(itens[0].Senha, in.Password) {
		return nil, ErrCredenciais
	}
	return &itens[0], nil
}

// Criar cadastra um perfil; sem senha informada gera uma temporária e a devolve
func (s *Service) Criar(ctx context.Context, ator string, in CriarPerfilDTO) (*Perfil, string, string, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := gateway.Validar(Colecao, "inserir", in); err != nil {
		return nil, "", "", err
	}
	existentes, err := s.colecao.Onde(ctx, "lower(email) = ?", in.Email)
	if err != nil {
		return nil, "", "", err
	}
	if len(existentes) > 0 {
		return nil, "", "", &gateway.Erro{Tipo: gateway.ErroConflito, Colecao: Colecao, Op: "inserir", Err: ErrEmailEmUso}
	}

	temporaria := ""
	senha := in.Senha
	if senha == "" {
		if senha, err = utils.GerarSenhaTemporaria(); err != nil {
			return nil, "", "", err
		}
		temporaria = senha
	}
	hash, err := utils.HashSenha(senha)
	if err != nil {
		return nil, "", "", fmt.Errorf("erro ao processar senha: %w", err)
	}

	p := Perfil{
		ID:     uuid.NewString(),
		Email:  in.Email,
		Nome:   strings.TrimSpace(in.Nome),
		Papel:  in.Papel,
		Avatar: in.Avatar,
		Senha:  hash,
	}
	if err := s.colecao.Inserir(ctx, &p); err != nil {
		return nil, "", "", err
	}
	s.Espelho.Aplicar(p)
	aviso := s.Log.Avisar(ctx, ator, fmt.Sprintf("Cadastrou o perfil %s como %s", p.Email, p.Papel))
	return &p, temporaria, aviso, nil
}

// AlterarPapel grava o novo papel e recarrega a lista de perfis
func (s *Service) AlterarPapel(ctx context.Context, ator, id string, in AlterarPapelDTO) (*Perfil, string, error) {
	if err := gateway.Validar(Colecao, "atualizar", in); err != nil {
		return nil, "", err
	}
	atual, err := s.colecao.BuscarPorID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if atual.Papel == PapelAdmin && in.Papel != PapelAdmin {
		admins, err := s.colecao.Onde(ctx, "papel = ?", PapelAdmin)
		if err != nil {
			return nil, "", err
		}
		if len(admins) <= 1 {
			return nil, "", gateway.NovoErroValidacao(Colecao, "atualizar", ErrUltimoAdmin.Error())
		}
	}
	if err := s.colecao.Atualizar(ctx, id, map[string]any{"papel": in.Papel}); err != nil {
		return nil, "", err
	}
	aviso := s.Log.Avisar(ctx, ator, fmt.Sprintf("Alterou o papel de %s de %s para %s", atual.Email, atual.Papel, in.Papel))
	if err := s.Espelho.Recarregar(ctx); err != nil {
		aviso = strings.TrimSpace(aviso + " papel gravado, mas a lista de perfis não foi recarregada: " + err.Error())
	}
	atual.Papel = in.Papel
	return atual, aviso, nil
}

// GarantirAdmin cria o primeiro admin quando a tabela está vazia
func (s *Service) GarantirAdmin(ctx context.Context, email, senha string) (bool, error) {
	if email == "" || senha == "" {
		return false, nil
	}
	todos, err := s.colecao.ListarTodos(ctx)
	if err != nil {
		return false, err
	}
	if len(todos) > 0 {
		return false, nil
	}
	_, _, _, err = s.Criar(ctx, "sistema", CriarPerfilDTO{Email: email, Papel: PapelAdmin, Senha: senha})
	return err == nil, err
}
