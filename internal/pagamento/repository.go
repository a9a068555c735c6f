package pagamento

import (
	"context"
	"time"

	"github.com/KromaEnergia/painel-parceiros/internal/formato"
	"github.com/KromaEnergia/painel-parceiros/internal/gateway"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	Colecao           = "pagamentos"
	ColecaoParametros = "parametros"
	chaveLimiteMinimo = "limite_minimo_pagamento"
)

// Repository encapsula o acesso ao livro de pagamentos/resgates
type Repository struct {
	*gateway.Colecao[Registro]
	parametros *gateway.Colecao[Parametro]
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Colecao:    gateway.NovaColecao[Registro](db, Colecao),
		parametros: gateway.NovaColecao[Parametro](db, ColecaoParametros),
	}
}

// ListarTodos traz os dois livros, mais recentes primeiro
func (r *Repository) ListarTodos(ctx context.Context) ([]Registro, error) {
	var regs []Registro
	if err := r.DB().WithContext(ctx).Order("data_geracao DESC").Find(&regs).Error; err != nil {
		return nil, r.Classificar("listar", err)
	}
	return regs, nil
}

// ListarDoDia busca os registros de um tipo gerados no mesmo dia de referencia
func (r *Repository) ListarDoDia(ctx context.Context, tipo Tipo, referencia time.Time) ([]Registro, error) {
	regs, err := r.Onde(ctx, "tipo = ?", tipo)
	if err != nil {
		return nil, err
	}
	var doDia []Registro
	for _, reg := range regs {
		if formato.MesmoDia(referencia, reg.DataGeracao) {
			doDia = append(doDia, reg)
		}
	}
	return doDia, nil
}

// Parametro lê um valor; ausente devolve ok=false
func (r *Repository) Parametro(ctx context.Context, chave string) (string, bool, error) {
	p, err := r.parametros.Primeiro(ctx, "chave = ?", chave)
	if gateway.E(err, gateway.ErroNaoEncontrado) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return p.Valor, true, nil
}

// SalvarParametro faz upsert do valor
func (r *Repository) SalvarParametro(ctx context.Context, chave, valor string) error {
	p := Parametro{Chave: chave, Valor: valor, UpdatedAt: time.Now()}
	err := r.parametros.DB().WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "chave"}}, DoUpdates: clause.AssignmentColumns([]string{"valor", "updated_at"})}).
		Create(&p).Error
	return r.parametros.Classificar("salvar", err)
}
