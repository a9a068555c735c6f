package importacao

import (
	"context"
	"errors"
	"strings"

	"github.com/KromaEnergia/painel-parceiros/internal/gateway"
	"gorm.io/gorm"
)

const ColecaoLedger = "vendas_importadas"

// ErrJaImportada indica id de venda já presente no ledger
var ErrJaImportada = errors.New("venda já importada")

// Ledger é o registro de escrita única das vendas já creditadas
type Ledger struct {
	colecao *gateway.Colecao[VendaImportada]
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{colecao: gateway.NovaColecao[VendaImportada](db, ColecaoLedger)}
}

// Contem verifica se o id de venda já foi importado
func (l *Ledger) Contem(ctx context.Context, vendaID string) (bool, error) {
	_, err := l.colecao.BuscarPorID(ctx, strings.TrimSpace(vendaID))
	if gateway.E(err, gateway.ErroNaoEncontrado) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Existentes devolve, dentre os ids informados, os que já estão no ledger
func (l *Ledger) Existentes(ctx context.Context, ids []string) (map[string]bool, error) {
	out := map[string]bool{}
	if len(ids) == 0 {
		return out, nil
	}
	itens, err := l.colecao.Onde(ctx, "id IN ?", ids)
	if err != nil {
		return nil, err
	}
	for _, v := range itens {
		out[v.ID] = true
	}
	return out, nil
}

// Registrar grava a entrada; id repetido é conflito
func (l *Ledger) Registrar(ctx context.Context, v VendaImportada) error {
	v.ID = strings.TrimSpace(v.ID)
	if v.ID == "" {
		return gateway.NovoErroValidacao(ColecaoLedger, "inserir", "id da venda é obrigatório")
	}
	existe, err := l.Contem(ctx, v.ID)
	if err != nil {
		return err
	}
	if existe {
		return &gateway.Erro{Tipo: gateway.ErroConflito, Colecao: ColecaoLedger, Op: "inserir", Err: ErrJaImportada}
	}
	return l.colecao.Inserir(ctx, &v)
}

// Remover desfaz uma entrada cujo crédito não chegou a ser aplicado
func (l *Ledger) Remover(ctx context.Context, vendaID string) error {
	return l.colecao.Deletar(ctx, strings.TrimSpace(vendaID))
}
