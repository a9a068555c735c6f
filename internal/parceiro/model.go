package parceiro

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Parceiro é o indicador comissionado
type Parceiro struct {
	ID                string          `gorm:"primaryKey;size:64" json:"id"`
	Nome              string          `gorm:"size:255;not null" json:"nome"`
	Email             string          `gorm:"size:255" json:"email"`
	Telefone          string          `gorm:"size:50" json:"telefone"`
	Consultor         string          `gorm:"size:255" json:"consultor"`
	ChavePixTipo      string          `gorm:"size:30" json:"chavePixTipo"`
	ChavePix          string          `gorm:"size:255" json:"chavePix"`
	QtdVendas         int             `gorm:"not null;default:0" json:"qtdVendas"`
	ValorVendas       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"valorVendas"`
	TaxaComissao      decimal.Decimal `gorm:"type:numeric(6,4);not null;default:0" json:"taxaComissao"`
	ComissaoAcumulada decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"comissaoAcumulada"`
	ComissaoPaga      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"comissaoPaga"`
	Pontos            int             `gorm:"not null;default:0" json:"pontos"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func (Parceiro) TableName() string { return "parceiros" }

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Parceiro{})
}
