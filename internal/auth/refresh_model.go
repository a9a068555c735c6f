package auth

import "time"

type RefreshToken struct {
	ID        uint       `gorm:"primaryKey"`
	UsuarioID string     `gorm:"size:64;index"`
	Email     string     `gorm:"size:255"`
	FamilyID  string     `gorm:"index"`
	Hash      string     `gorm:"uniqueIndex"`
	ExpiresAt time.Time  `gorm:"index"`
	RevokedAt *time.Time
	CreatedAt time.Time
}
