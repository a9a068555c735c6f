// Package comissaomanual trata as solicitações de comissão lançadas à mão.
package comissaomanual

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/KromaEnergia/painel-parceiros/internal/estado"
	"github.com/KromaEnergia/painel-parceiros/internal/formato"
	"github.com/KromaEnergia/painel-parceiros/internal/gateway"
	"github.com/KromaEnergia/painel-parceiros/internal/importacao"
	"github.com/KromaEnergia/painel-parceiros/internal/logacao"
	"github.com/KromaEnergia/painel-parceiros/internal/logger"
	"github.com/KromaEnergia/painel-parceiros/internal/parceiro"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const Colecao = "comissoes_manuais"

var (
	ErrParceiroInexistente = errors.New("parceiro não cadastrado")
	ErrValorInvalido       = errors.New("valor da venda deve ser maior que zero")
	ErrVendaDuplicada      = errors.New("já existe solicitação para esta venda")
	ErrJaAprovada          = errors.New("solicitação já aprovada")
	ErrJaRejeitada         = errors.New("solicitação já rejeitada")
)

type Service struct {
	colecao   *gateway.Colecao[Solicitacao]
	Espelho   *estado.Espelho[Solicitacao]
	Ledger    *importacao.Ledger
	Parceiros *parceiro.Service
	Log       *logacao.Service
	Location  *time.Location
	agora     func() time.Time
}

func NewService(db *gorm.DB, store *estado.Store, ledger *importacao.Ledger, parceiros *parceiro.Service, log *logacao.Service) *Service {
	c := gateway.NovaColecao[Solicitacao](db, Colecao)
	return &Service{
		colecao:   c,
		Espelho:   estado.NovoEspelho[Solicitacao](store, Colecao, c, func(s Solicitacao) string { return s.ID }),
		Ledger:    ledger,
		Parceiros: parceiros,
		Log:       log,
		Location:  time.Local,
		agora:     time.Now,
	}
}

// Listar devolve as solicitações mais recentes primeiro
func (s *Service) Listar() []Solicitacao {
	itens := s.Espelho.Listar()
	sort.SliceStable(itens, func(i, j int) bool { return itens[i].CreatedAt.After(itens[j].CreatedAt) })
	return itens
}

func (s *Service) buscar(id string) (Solicitacao, error) {
	sol, ok := s.Espelho.Buscar(id)
	if !ok {
		return sol, &gateway.Erro{Tipo: gateway.ErroNaoEncontrado, Colecao: Colecao, Op: "buscar", Err: gorm.ErrRecordNotFound}
	}
	return sol, nil
}

// Criar registra a solicitação como pendente. Venda já presente no ledger é recusada.
func (s *Service) Criar(ctx context.Context, ator string, in CriarSolicitacaoDTO) (*Solicitacao, string, error) {
	in.ParceiroID = strings.TrimSpace(in.ParceiroID)
	in.VendaID = strings.TrimSpace(in.VendaID)
	in.Justificativa = strings.TrimSpace(in.Justificativa)
	if err := gateway.Validar(Colecao, "inserir", in); err != nil {
		return nil, "", err
	}
	p, ok := s.Parceiros.Buscar(in.ParceiroID)
	if !ok {
		return nil, "", gateway.NovoErroValidacao(Colecao, "inserir", ErrParceiroInexistente.Error())
	}
	if !in.Valor.IsPositive() {
		return nil, "", gateway.NovoErroValidacao(Colecao, "inserir", ErrValorInvalido.Error())
	}

	sol := Solicitacao{
		ID:            uuid.NewString(),
		ParceiroID:    p.ID,
		ParceiroNome:  p.Nome,
		Valor:         in.Valor.Round(2),
		Justificativa: in.Justificativa,
		Consultor:     strings.TrimSpace(in.Consultor),
		Status:        StatusPendente,
		Solicitante:   ator,
	}
	if sol.Consultor == "" {
		sol.Consultor = p.Consultor
	}
	if in.DataVenda != "" {
		d, err := formato.ParseData(in.DataVenda, s.Location)
		if err != nil {
			return nil, "", gateway.NovoErroValidacao(Colecao, "inserir", err.Error())
		}
		sol.DataVenda = &d
	}

	if in.VendaID != "" {
		if _, err := s.colecao.Primeiro(ctx, "venda_id = ?", in.VendaID); err == nil {
			return nil, "", &gateway.Erro{Tipo: gateway.ErroConflito, Colecao: Colecao, Op: "inserir", Err: ErrVendaDuplicada}
		} else if !gateway.E(err, gateway.ErroNaoEncontrado) {
			return nil, "", err
		}
		importada, err := s.Ledger.Contem(ctx, in.VendaID)
		if err != nil {
			return nil, "", err
		}
		if importada {
			return nil, "", &gateway.Erro{Tipo: gateway.ErroConflito, Colecao: Colecao, Op: "inserir", Err: importacao.ErrJaImportada}
		}
		venda := in.VendaID
		sol.VendaID = &venda
	}

	if err := s.colecao.Inserir(ctx, &sol); err != nil {
		return nil, "", err
	}
	s.Espelho.Aplicar(sol)
	aviso := s.Log.Avisar(ctx, ator, fmt.Sprintf("Solicitou comissão manual de %s para %s", formato.Moeda(sol.Valor), p.Nome))
	return &sol, aviso, nil
}

func recusarDecidida(sol Solicitacao, op string) error {
	switch sol.Status {
	case StatusAprovada:
		return &gateway.Erro{Tipo: gateway.ErroConflito, Colecao: Colecao, Op: op, Err: ErrJaAprovada}
	case StatusRejeitada:
		return &gateway.Erro{Tipo: gateway.ErroConflito, Colecao: Colecao, Op: op, Err: ErrJaRejeitada}
	}
	return nil
}

// Aprovar grava a venda no ledger e credita o parceiro. Só sai de pendente;
// qualquer falha devolve a solicitação a pendente e desfaz o ledger.
func (s *Service) Aprovar(ctx context.Context, ator, id string) (*Solicitacao, string, error) {
	sol, err := s.buscar(id)
	if err != nil {
		return nil, "", err
	}
	if err := recusarDecidida(sol, "aprovar"); err != nil {
		return nil, "", err
	}

	agora := s.agora()
	if err := s.decidir(ctx, &sol, StatusPendente, StatusAprovada, ator, "", agora); err != nil {
		return nil, "", err
	}
	venda := sol.Venda()
	if venda != "" {
		err := s.Ledger.Registrar(ctx, importacao.VendaImportada{
			ID:          venda,
			ParceiroID:  sol.ParceiroID,
			Valor:       sol.Valor,
			DataVenda:   sol.DataVenda,
			Consultor:   sol.Consultor,
			Origem:      importacao.OrigemComissaoManual,
			ImportadoEm: agora,
		})
		if err != nil {
			s.voltarPendente(ctx, &sol)
			return nil, "", err
		}
	}
	if _, err := s.Parceiros.Creditar(ctx, sol.ParceiroID, sol.Valor); err != nil {
		if venda != "" {
			if errRm := s.Ledger.Remover(ctx, venda); errRm != nil {
				logger.Z().Error("venda no ledger sem crédito", zap.String("venda", venda), zap.Error(errRm))
			}
		}
		s.voltarPendente(ctx, &sol)
		return nil, "", err
	}

	aviso := s.Log.Avisar(ctx, ator, fmt.Sprintf("Aprovou comissão manual de %s para %s", formato.Moeda(sol.Valor), sol.ParceiroNome))
	return &sol, aviso, nil
}

func (s *Service) voltarPendente(ctx context.Context, sol *Solicitacao) {
	if err := s.decidir(ctx, sol, StatusAprovada, StatusPendente, "", "", time.Time{}); err != nil {
		logger.Z().Error("solicitação aprovada sem crédito ao parceiro",
			zap.String("solicitacao", sol.ID), zap.String("parceiro", sol.ParceiroID), zap.Error(err))
	}
}

// Rejeitar encerra a solicitação pendente sem crédito
func (s *Service) Rejeitar(ctx context.Context, ator, id string, in RejeitarDTO) (*Solicitacao, string, error) {
	if err := gateway.Validar(Colecao, "rejeitar", in); err != nil {
		return nil, "", err
	}
	sol, err := s.buscar(id)
	if err != nil {
		return nil, "", err
	}
	if err := recusarDecidida(sol, "rejeitar"); err != nil {
		return nil, "", err
	}
	if err := s.decidir(ctx, &sol, StatusPendente, StatusRejeitada, ator, strings.TrimSpace(in.Motivo), s.agora()); err != nil {
		return nil, "", err
	}
	aviso := s.Log.Avisar(ctx, ator, fmt.Sprintf("Rejeitou comissão manual de %s para %s", formato.Moeda(sol.Valor), sol.ParceiroNome))
	return &sol, aviso, nil
}

// decidir só troca o status se o banco ainda estiver em de.
// Se outra decisão chegou antes, o espelho é atualizado e a transição recusada.
func (s *Service) decidir(ctx context.Context, sol *Solicitacao, de, para Status, ator, motivo string, quando time.Time) error {
	var em *time.Time
	if !quando.IsZero() {
		em = &quando
	}
	campos := map[string]any{"status": para, "decidido_por": ator, "decidido_em": em, "motivo": motivo}
	res := s.colecao.DB().WithContext(ctx).Model(&Solicitacao{}).
		Where("id = ? AND status = ?", sol.ID, de).
		Updates(campos)
	if res.Error != nil {
		return s.colecao.Classificar("atualizar", res.Error)
	}
	if res.RowsAffected == 0 {
		atual, err := s.colecao.BuscarPorID(ctx, sol.ID)
		if err != nil {
			return err
		}
		s.Espelho.Aplicar(*atual)
		if err := recusarDecidida(*atual, "decidir"); err != nil {
			return err
		}
		return &gateway.Erro{Tipo: gateway.ErroConflito, Colecao: Colecao, Op: "decidir", Err: fmt.Errorf("solicitação não está %s", de)}
	}
	sol.Status, sol.DecididoPor, sol.DecididoEm, sol.Motivo = para, ator, em, motivo
	s.Espelho.Aplicar(*sol)
	return nil
}

// Pendentes soma o valor aguardando decisão
func (s *Service) Pendentes() (int, decimal.Decimal) {
	n, total := 0, decimal.Zero
	for _, sol := range s.Espelho.Listar() {
		if sol.Status == StatusPendente {
			n++
			total = total.Add(sol.Valor)
		}
	}
	return n, total
}
