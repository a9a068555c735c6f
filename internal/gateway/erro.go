package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"

	"gorm.io/gorm"
)

// TipoErro classifica a falha de uma chamada ao banco
type TipoErro string

const (
	ErroRede          TipoErro = "rede"
	ErroValidacao     TipoErro = "validacao"
	ErroConflito      TipoErro = "conflito"
	ErroNaoEncontrado TipoErro = "nao_encontrado"
)

// Erro é a falha estruturada devolvida por qualquer operação de coleção
type Erro struct {
	Tipo    TipoErro
	Colecao string
	Op      string
	Err     error
}

func (e *Erro) Error() string {
	return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Colecao, e.Tipo, e.Err)
}

func (e *Erro) Unwrap() error { return e.Err }

// ErrValidacao é usado por quem precisa recusar um registro antes de gravar
var ErrValidacao = errors.New("registro inválido")

// TipoDe devolve o tipo da falha; erros fora do gateway contam como rede
func TipoDe(err error) TipoErro {
	var e *Erro
	if errors.As(err, &e) {
		return e.Tipo
	}
	return ErroRede
}

// E verifica o tipo de um erro qualquer
func E(err error, tipo TipoErro) bool {
	var e *Erro
	return errors.As(err, &e) && e.Tipo == tipo
}

// NovoErroValidacao cria uma falha de validação associada a uma coleção
func NovoErroValidacao(colecao, op, msg string) error {
	return &Erro{Tipo: ErroValidacao, Colecao: colecao, Op: op, Err: fmt.Errorf("%w: %s", ErrValidacao, msg)}
}

func classificar(colecao, op string, err error) error {
	if err == nil {
		return nil
	}
	var existente *Erro
	if errors.As(err, &existente) {
		return err
	}
	tipo := ErroRede
	var netErr net.Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		tipo = ErroNaoEncontrado
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		tipo = ErroConflito
	case errors.Is(err, gorm.ErrInvalidData), errors.Is(err, gorm.ErrInvalidField),
		errors.Is(err, gorm.ErrPrimaryKeyRequired), errors.Is(err, gorm.ErrMissingWhereClause),
		errors.Is(err, ErrValidacao), errors.Is(err, gorm.ErrCheckConstraintViolated):
		tipo = ErroValidacao
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr):
		tipo = ErroRede
	}
	return &Erro{Tipo: tipo, Colecao: colecao, Op: op, Err: err}
}
