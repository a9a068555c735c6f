package perfil

import (
	"time"

	"gorm.io/gorm"
)

const (
	PapelAdmin   = "admin"
	PapelManager = "manager"
	PapelUser    = "user"
)

// Perfil é o usuário do painel
type Perfil struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Nome      string    `gorm:"size:255" json:"nome"`
	Papel     string    `gorm:"size:20;not null;default:'user'" json:"papel"`
	Avatar    string    `gorm:"type:text" json:"avatar"`
	Senha     string    `gorm:"size:255" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Perfil) TableName() string { return "perfis" }

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Perfil{})
}
