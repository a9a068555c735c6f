// Package gateway expõe as coleções persistidas com list/insert/update/delete genéricos.
// Cada chamada é independente; nenhuma transação atravessa coleções.
package gateway

import (
	"context"

	"gorm.io/gorm"
)

// Colecao é o acesso CRUD a uma tabela
type Colecao[T any] struct {
	db   *gorm.DB
	nome string
}

// NovaColecao cria o acesso a uma coleção nomeada
func NovaColecao[T any](db *gorm.DB, nome string) *Colecao[T] {
	return &Colecao[T]{db: db, nome: nome}
}

// Nome da coleção
func (c *Colecao[T]) Nome() string { return c.nome }

// DB devolve o *gorm.DB usado (para consultas específicas dos repositórios)
func (c *Colecao[T]) DB() *gorm.DB { return c.db }

// WithDB devolve uma cópia usando outro *gorm.DB (ex.: tx)
func (c *Colecao[T]) WithDB(db *gorm.DB) *Colecao[T] {
	if db == nil {
		db = c.db
	}
	return &Colecao[T]{db: db, nome: c.nome}
}

// ListarTodos traz a coleção inteira
func (c *Colecao[T]) ListarTodos(ctx context.Context) ([]T, error) {
	var itens []T
	if err := c.db.WithContext(ctx).Find(&itens).Error; err != nil {
		return nil, classificar(c.nome, "listar", err)
	}
	return itens, nil
}

// BuscarPorID busca um registro pela chave primária "id"
func (c *Colecao[T]) BuscarPorID(ctx context.Context, id string) (*T, error) {
	var item T
	if err := c.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, classificar(c.nome, "buscar", err)
	}
	return &item, nil
}

// Inserir grava um novo registro
func (c *Colecao[T]) Inserir(ctx context.Context, item *T) error {
	return classificar(c.nome, "inserir", c.db.WithContext(ctx).Create(item).Error)
}

// Atualizar aplica uma atualização parcial; nenhum registro afetado vira nao_encontrado
func (c *Colecao[T]) Atualizar(ctx context.Context, id string, campos map[string]any) error {
	if len(campos) == 0 {
		return NovoErroValidacao(c.nome, "atualizar", "nenhum campo informado")
	}
	res := c.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(campos)
	if res.Error != nil {
		return classificar(c.nome, "atualizar", res.Error)
	}
	if res.RowsAffected == 0 {
		return classificar(c.nome, "atualizar", gorm.ErrRecordNotFound)
	}
	return nil
}

// Deletar remove um registro
func (c *Colecao[T]) Deletar(ctx context.Context, id string) error {
	res := c.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return classificar(c.nome, "deletar", res.Error)
	}
	if res.RowsAffected == 0 {
		return classificar(c.nome, "deletar", gorm.ErrRecordNotFound)
	}
	return nil
}

// Onde lista com filtro simples
func (c *Colecao[T]) Onde(ctx context.Context, query string, args ...any) ([]T, error) {
	var itens []T
	if err := c.db.WithContext(ctx).Where(query, args...).Find(&itens).Error; err != nil {
		return nil, classificar(c.nome, "listar", err)
	}
	return itens, nil
}

// Primeiro busca o primeiro registro que atende ao filtro
func (c *Colecao[T]) Primeiro(ctx context.Context, query string, args ...any) (*T, error) {
	var item T
	if err := c.db.WithContext(ctx).Where(query, args...).First(&item).Error; err != nil {
		return nil, classificar(c.nome, "buscar", err)
	}
	return &item, nil
}

// Classificar embrulha um erro de consulta específica no formato do gateway
func (c *Colecao[T]) Classificar(op string, err error) error {
	return classificar(c.nome, op, err)
}
