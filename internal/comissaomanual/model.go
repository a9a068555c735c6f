package comissaomanual

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Status de uma solicitação de comissão manual
type Status string

const (
	StatusPendente  Status = "pendente"
	StatusAprovada  Status = "aprovada"
	StatusRejeitada Status = "rejeitada"
)

// Solicitacao é o pedido de crédito de uma venda fora da planilha.
// VendaID é opcional, mas único quando informado.
type Solicitacao struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	ParceiroID    string          `gorm:"size:64;index;not null" json:"parceiroId"`
	ParceiroNome  string          `gorm:"size:255" json:"parceiroNome"`
	VendaID       *string         `gorm:"size:100;uniqueIndex" json:"vendaId,omitempty"`
	Valor         decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"valor"`
	DataVenda     *time.Time      `json:"dataVenda,omitempty"`
	Justificativa string          `gorm:"type:text;not null" json:"justificativa"`
	Consultor     string          `gorm:"size:255" json:"consultor"`
	Status        Status          `gorm:"size:20;not null;default:'pendente';index" json:"status"`
	Solicitante   string          `gorm:"size:255" json:"solicitante"`
	DecididoPor   string          `gorm:"size:255" json:"decididoPor,omitempty"`
	DecididoEm    *time.Time      `json:"decididoEm,omitempty"`
	Motivo        string          `gorm:"type:text" json:"motivo,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (Solicitacao) TableName() string { return "comissoes_manuais" }

// Venda devolve o id da venda ou vazio
func (s Solicitacao) Venda() string {
	if s.VendaID == nil {
		return ""
	}
	return *s.VendaID
}

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Solicitacao{})
}
