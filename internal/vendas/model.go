package vendas

import (
	"time"

	"github.com/shopspring/decimal"
)

// Venda é um registro da API externa de vendas (somente leitura)
type Venda struct {
	ParceiroID    string          `json:"parceiroId"`
	PedidoID      string          `json:"pedidoId"`
	Status        string          `json:"status"`
	ValorLiquido  decimal.Decimal `json:"valorLiquido"`
	ValorNota     decimal.Decimal `json:"valorNota"`
	DataEmissao   *time.Time      `json:"dataEmissao,omitempty"`
	DataConclusao *time.Time      `json:"dataConclusao,omitempty"`
	Versao        *string         `json:"versao,omitempty"` // nil ou vazio = revisão atual
}

// RevisaoAtual indica a revisão corrente do pedido
func (v Venda) RevisaoAtual() bool {
	return v.Versao == nil || *v.Versao == ""
}
