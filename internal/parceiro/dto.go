package parceiro

import "github.com/shopspring/decimal"

// CriarParceiroDTO usado no POST /parceiros
type CriarParceiroDTO struct {
	ID           string          `json:"id" validate:"required,max=64"`
	Nome         string          `json:"nome" validate:"required,max=255"`
	Email        string          `json:"email" validate:"omitempty,email"`
	Telefone     string          `json:"telefone" validate:"max=50"`
	Consultor    string          `json:"consultor" validate:"max=255"`
	ChavePixTipo string          `json:"chavePixTipo" validate:"omitempty,oneof=cpf cnpj email telefone aleatoria"`
	ChavePix     string          `json:"chavePix" validate:"required_with=ChavePixTipo,max=255"`
	TaxaComissao decimal.Decimal `json:"taxaComissao"`
}

// AtualizarParceiroDTO usado no PUT /parceiros/{id}; saldos nunca mudam por aqui
type AtualizarParceiroDTO struct {
	Nome         *string          `json:"nome" validate:"omitempty,min=1,max=255"`
	Email        *string          `json:"email" validate:"omitempty,email"`
	Telefone     *string          `json:"telefone" validate:"omitempty,max=50"`
	Consultor    *string          `json:"consultor" validate:"omitempty,max=255"`
	ChavePixTipo *string          `json:"chavePixTipo" validate:"omitempty,oneof=cpf cnpj email telefone aleatoria"`
	ChavePix     *string          `json:"chavePix" validate:"omitempty,max=255"`
	TaxaComissao *decimal.Decimal `json:"taxaComissao"`
}
