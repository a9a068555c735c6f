package carteira

import (
	"time"

	"gorm.io/gorm"
)

// Entrada declara um parceiro acompanhado pela carteira; o id é o do parceiro
type Entrada struct {
	ID        string    `gorm:"primaryKey;size:64" json:"parceiroId"`
	Nome      string    `gorm:"size:255;not null" json:"nome"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Entrada) TableName() string { return "carteira" }

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Entrada{})
}
