package pagamento

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tipo distingue os dois livros gravados na mesma tabela
type Tipo string

const (
	TipoPagamento Tipo = "pagamento"
	TipoResgate   Tipo = "resgate"
)

func (t Tipo) Valido() bool {
	return t == TipoPagamento || t == TipoResgate
}

// Rotulo é o nome exibido nos logs e exportações
func (t Tipo) Rotulo() string {
	if t == TipoResgate {
		return "Resgate"
	}
	return "Pagamento"
}

// Registro é uma linha do livro de pagamentos ou de resgates.
// ValorTransferido é o que saiu do acumulado na geração; não muda com edições do ValorRT.
type Registro struct {
	ID               string          `gorm:"primaryKey;size:36" json:"id"`
	Tipo             Tipo            `gorm:"size:20;not null;index" json:"tipo"`
	ParceiroID       string          `gorm:"size:64;not null;index" json:"parceiroId"`
	ParceiroNome     string          `gorm:"size:255" json:"parceiroNome"`
	Consultor        string          `gorm:"size:255" json:"consultor"`
	ValorRT          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"valorRT"`
	ValorTransferido decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"valorTransferido"`
	Pago             bool            `gorm:"not null;default:false" json:"pago"`
	DataGeracao      time.Time       `gorm:"not null;index" json:"dataGeracao"`
	ComprovanteNome  string          `gorm:"size:255" json:"comprovanteNome"`
	Comprovante      string          `gorm:"type:text" json:"comprovante,omitempty"` // data URI
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func (Registro) TableName() string { return "pagamentos" }

// Parametro guarda valores editáveis pelo operador
type Parametro struct {
	Chave     string    `gorm:"primaryKey;size:64" json:"chave"`
	Valor     string    `gorm:"size:255;not null" json:"valor"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Parametro) TableName() string { return "parametros" }

// Migrate cria as tabelas no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Registro{}, &Parametro{})
}
