package importacao

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Arquivo é a planilha importada em um dia; reimportar no mesmo dia sobrescreve
type Arquivo struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Dia            string    `gorm:"size:10;uniqueIndex;not null" json:"dia"` // aaaa-mm-dd
	DataImportacao time.Time `gorm:"not null" json:"dataImportacao"`
	NomeArquivo    string    `gorm:"size:255;not null" json:"nomeArquivo"`
	Conteudo       string    `gorm:"type:text" json:"conteudo,omitempty"` // data URI
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (Arquivo) TableName() string { return "arquivos_importados" }

// Origem de uma venda no ledger
const (
	OrigemPlanilha       = "planilha"
	OrigemComissaoManual = "comissao_manual"
)

// VendaImportada é a entrada do ledger anti-duplicidade: uma por id de venda externa
type VendaImportada struct {
	ID          string          `gorm:"primaryKey;size:100" json:"id"` // id da venda externa
	ParceiroID  string          `gorm:"size:64;index" json:"parceiroId"`
	Valor       decimal.Decimal `gorm:"type:numeric(14,2)" json:"valor"`
	DataVenda   *time.Time      `json:"dataVenda,omitempty"`
	Consultor   string          `gorm:"size:255" json:"consultor"`
	Origem      string          `gorm:"size:30;not null" json:"origem"`
	ArquivoID   string          `gorm:"size:36" json:"arquivoId,omitempty"`
	ImportadoEm time.Time       `gorm:"not null" json:"importadoEm"`
}

func (VendaImportada) TableName() string { return "vendas_importadas" }

// Migrate cria as tabelas no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Arquivo{}, &VendaImportada{})
}
