package parceiro

import (
	"context"

	"github.com/KromaEnergia/painel-parceiros/internal/gateway"
	"gorm.io/gorm"
)

const Colecao = "parceiros"

// Repository encapsula o acesso a dados de parceiros
type Repository struct {
	*gateway.Colecao[Parceiro]
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Colecao: gateway.NovaColecao[Parceiro](db, Colecao)}
}

// ListarTodos traz os parceiros ordenados por nome
func (r *Repository) ListarTodos(ctx context.Context) ([]Parceiro, error) {
	var parceiros []Parceiro
	if err := r.DB().WithContext(ctx).Order("nome ASC").Find(&parceiros).Error; err != nil {
		return nil, r.Classificar("listar", err)
	}
	return parceiros, nil
}

// Existe verifica o id sem carregar o registro inteiro
func (r *Repository) Existe(ctx context.Context, id string) (bool, error) {
	var n int64
	if err := r.DB().WithContext(ctx).Model(&Parceiro{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, r.Classificar("buscar", err)
	}
	return n > 0, nil
}
