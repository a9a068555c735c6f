package logacao

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/KromaEnergia/painel-parceiros/internal/estado"
	"github.com/KromaEnergia/painel-parceiros/internal/gateway"
	"github.com/KromaEnergia/painel-parceiros/internal/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const Colecao = "logs_acao"

// Service grava o journal de ações (append-only)
type Service struct {
	colecao *gateway.Colecao[Registro]
	Espelho *estado.Espelho[Registro]
	agora   func() time.Time
}

func NewService(db *gorm.DB, store *estado.Store) *Service {
	c := gateway.NovaColecao[Registro](db, Colecao)
	return &Service{
		colecao: c,
		Espelho: estado.NovoEspelho[Registro](store, Colecao, c, func(r Registro) string { return r.ID }),
		agora:   time.Now,
	}
}

// Registrar acrescenta uma entrada ao journal
func (s *Service) Registrar(ctx context.Context, ator, descricao string) error {
	descricao = strings.TrimSpace(descricao)
	if descricao == "" {
		return gateway.NovoErroValidacao(Colecao, "inserir", "descrição vazia")
	}
	r := Registro{
		ID:        uuid.NewString(),
		Ator:      ator,
		Descricao: descricao,
		CriadoEm:  s.agora(),
	}
	if err := s.colecao.Inserir(ctx, &r); err != nil {
		return err
	}
	s.Espelho.Aplicar(r)
	return nil
}

// Avisar registra a ação já concluída; a falha do journal vira aviso e não desfaz nada
func (s *Service) Avisar(ctx context.Context, ator, descricao string) string {
	if err := s.Registrar(ctx, ator, descricao); err != nil {
		logger.Z().Warn("falha ao registrar ação no log",
			zap.String("ator", ator), zap.String("descricao", descricao), zap.Error(err))
		return fmt.Sprintf("operação concluída, mas o registro no log de ações falhou: %v", err)
	}
	return ""
}

// Listar devolve as entradas mais recentes primeiro
func (s *Service) Listar() []Registro {
	itens := s.Espelho.Listar()
	sort.SliceStable(itens, func(i, j int) bool { return itens[i].CriadoEm.After(itens[j].CriadoEm) })
	return itens
}
