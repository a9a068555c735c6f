// Package estado mantém em memória o espelho das coleções persistidas.
// O espelho é recarregado por inteiro na inicialização e alterado item a item após cada escrita.
package estado

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// TipoMudanca descreve o que aconteceu com uma coleção
type TipoMudanca string

const (
	MudancaRecarga TipoMudanca = "recarga"
	MudancaUpsert  TipoMudanca = "upsert"
	MudancaRemocao TipoMudanca = "remocao"
)

// Mudanca é enviada aos inscritos após cada alteração
type Mudanca struct {
	Colecao string
	Tipo    TipoMudanca
	ID      string
}

// Recarregavel é qualquer espelho que sabe se recarregar por inteiro
type Recarregavel interface {
	Nome() string
	Recarregar(ctx context.Context) error
}

// Store agrupa os espelhos e distribui notificações de mudança
type Store struct {
	mu        sync.RWMutex
	espelhos  []Recarregavel
	inscritos []func(Mudanca)
}

// NewStore cria um store vazio
func NewStore() *Store {
	return &Store{}
}

// Registrar adiciona um espelho ao store
func (s *Store) Registrar(r Recarregavel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.espelhos = append(s.espelhos, r)
}

// Inscrever registra um observador de mudanças
func (s *Store) Inscrever(fn func(Mudanca)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inscritos = append(s.inscritos, fn)
}

func (s *Store) notificar(m Mudanca) {
	s.mu.RLock()
	inscritos := append([]func(Mudanca){}, s.inscritos...)
	s.mu.RUnlock()
	for _, fn := range inscritos {
		fn(m)
	}
}

// RecarregarTudo recarrega todos os espelhos; falhas não interrompem os demais
func (s *Store) RecarregarTudo(ctx context.Context) error {
	s.mu.RLock()
	espelhos := append([]Recarregavel{}, s.espelhos...)
	s.mu.RUnlock()

	var errs []error
	for _, e := range espelhos {
		if err := e.Recarregar(ctx); err != nil {
			errs = append(errs, fmt.Errorf("recarregar %s: %w", e.Nome(), err))
		}
	}
	return errors.Join(errs...)
}

// Fonte é de onde o espelho busca a coleção inteira
type Fonte[T any] interface {
	ListarTodos(ctx context.Context) ([]T, error)
}

// Espelho é a cópia em memória de uma coleção
type Espelho[T any] struct {
	mu          sync.RWMutex
	nome        string
	fonte       Fonte[T]
	chave       func(T) string
	itens       []T
	indice      map[string]int
	carregadoEm time.Time
	store       *Store
}

// NovoEspelho cria o espelho e o registra no store
func NovoEspelho[T any](store *Store, nome string, fonte Fonte[T], chave func(T) string) *Espelho[T] {
	e := &Espelho[T]{
		nome:   nome,
		fonte:  fonte,
		chave:  chave,
		indice: map[string]int{},
		store:  store,
	}
	if store != nil {
		store.Registrar(e)
	}
	return e
}

func (e *Espelho[T]) Nome() string { return e.nome }

// Recarregar substitui o conteúdo inteiro; em caso de falha o conteúdo anterior é mantido
func (e *Espelho[T]) Recarregar(ctx context.Context) error {
	itens, err := e.fonte.ListarTodos(ctx)
	if err != nil {
		return err
	}
	indice := make(map[string]int, len(itens))
	for i, item := range itens {
		indice[e.chave(item)] = i
	}
	e.mu.Lock()
	e.itens = itens
	e.indice = indice
	e.carregadoEm = time.Now()
	e.mu.Unlock()

	e.avisar(Mudanca{Colecao: e.nome, Tipo: MudancaRecarga})
	return nil
}

// Listar devolve uma cópia dos itens na ordem de carga
func (e *Espelho[T]) Listar() []T {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]T(nil), e.itens...)
}

// Buscar procura pela chave
func (e *Espelho[T]) Buscar(id string) (T, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	i, ok := e.indice[id]
	if !ok {
		var zero T
		return zero, false
	}
	return e.itens[i], true
}

// Aplicar insere ou substitui um item
func (e *Espelho[T]) Aplicar(item T) {
	id := e.chave(item)
	e.mu.Lock()
	if i, ok := e.indice[id]; ok {
		e.itens[i] = item
	} else {
		e.indice[id] = len(e.itens)
		e.itens = append(e.itens, item)
	}
	e.mu.Unlock()

	e.avisar(Mudanca{Colecao: e.nome, Tipo: MudancaUpsert, ID: id})
}

// Remover tira um item do espelho
func (e *Espelho[T]) Remover(id string) {
	e.mu.Lock()
	i, ok := e.indice[id]
	if !ok {
		e.mu.Unlock()
		return
	}
	e.itens = append(e.itens[:i], e.itens[i+1:]...)
	delete(e.indice, id)
	for j := i; j < len(e.itens); j++ {
		e.indice[e.chave(e.itens[j])] = j
	}
	e.mu.Unlock()

	e.avisar(Mudanca{Colecao: e.nome, Tipo: MudancaRemocao, ID: id})
}

// CarregadoEm informa a última recarga completa
func (e *Espelho[T]) CarregadoEm() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.carregadoEm
}

func (e *Espelho[T]) avisar(m Mudanca) {
	if e.store != nil {
		e.store.notificar(m)
	}
}
