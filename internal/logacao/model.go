package logacao

import (
	"time"

	"gorm.io/gorm"
)

// Registro é uma entrada do journal de ações; nunca é alterada nem removida
type Registro struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Ator      string    `gorm:"size:255;index" json:"ator"`
	Descricao string    `gorm:"type:text;not null" json:"descricao"`
	CriadoEm  time.Time `gorm:"index;not null" json:"criadoEm"`
}

func (Registro) TableName() string { return "logs_acao" }

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Registro{})
}
