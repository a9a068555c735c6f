// Package cache define o cache com validade usado pelo agregador da carteira.
// Falhas de escrita (inclusive cota excedida) nunca impedem o uso do valor calculado.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrCotaExcedida indica que o cache não comporta o valor
var ErrCotaExcedida = errors.New("cota do cache excedida")

// Entrada é um valor em cache com o instante até o qual ele vale
type Entrada struct {
	Valor     []byte
	ValidoAte time.Time
}

// Cache é a abstração get/put com ttl
type Cache interface {
	Get(ctx context.Context, chave string) (Entrada, bool, error)
	Put(ctx context.Context, chave string, valor []byte, ttl time.Duration) error
	Del(ctx context.Context, chave string) error
	Ping(ctx context.Context) error
}

// GetJSON lê e decodifica uma entrada
func GetJSON(ctx context.Context, c Cache, chave string, dest any) (time.Time, bool, error) {
	e, ok, err := c.Get(ctx, chave)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	if err := json.Unmarshal(e.Valor, dest); err != nil {
		return time.Time{}, false, err
	}
	return e.ValidoAte, true, nil
}

// PutJSON codifica e grava uma entrada
func PutJSON(ctx context.Context, c Cache, chave string, valor any, ttl time.Duration) error {
	payload, err := json.Marshal(valor)
	if err != nil {
		return err
	}
	return c.Put(ctx, chave, payload, ttl)
}
