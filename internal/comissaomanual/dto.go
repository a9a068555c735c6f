package comissaomanual

import "github.com/shopspring/decimal"

// CriarSolicitacaoDTO usado no POST /comissoes-manuais
type CriarSolicitacaoDTO struct {
	ParceiroID    string          `json:"parceiroId" validate:"required,max=64"`
	VendaID       string          `json:"vendaId" validate:"max=100"`
	Valor         decimal.Decimal `json:"valor"`
	DataVenda     string          `json:"dataVenda"`
	Justificativa string          `json:"justificativa" validate:"required,max=2000"`
	Consultor     string          `json:"consultor" validate:"max=255"`
}

// RejeitarDTO usado no POST /comissoes-manuais/{id}/rejeitar
type RejeitarDTO struct {
	Motivo string `json:"motivo" validate:"max=2000"`
}
