package cache

import (
	"context"
	"sync"
	"time"
)

// Memoria é um cache local limitado por bytes
type Memoria struct {
	mu       sync.Mutex
	entradas map[string]Entrada
	usados   int
	limite   int
	agora    func() time.Time
}

// NovaMemoria cria um cache em memória; limite <= 0 significa sem limite
func NovaMemoria(limiteBytes int) *Memoria {
	return &Memoria{
		entradas: map[string]Entrada{},
		limite:   limiteBytes,
		agora:    time.Now,
	}
}

// ComRelogio troca a fonte de tempo (testes)
func (m *Memoria) ComRelogio(agora func() time.Time) *Memoria {
	m.agora = agora
	return m
}

func (m *Memoria) Get(ctx context.Context, chave string) (Entrada, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entradas[chave]
	if !ok {
		return Entrada{}, false, nil
	}
	if !m.agora().Before(e.ValidoAte) {
		m.remover(chave)
		return Entrada{}, false, nil
	}
	return e, true, nil
}

func (m *Memoria) Put(ctx context.Context, chave string, valor []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	anterior := len(m.entradas[chave].Valor)
	if m.limite > 0 && m.usados-anterior+len(valor) > m.limite {
		return ErrCotaExcedida
	}
	m.usados += len(valor) - anterior
	m.entradas[chave] = Entrada{
		Valor:     append([]byte(nil), valor...),
		ValidoAte: m.agora().Add(ttl),
	}
	return nil
}

func (m *Memoria) Ping(ctx context.Context) error { return nil }

func (m *Memoria) Del(ctx context.Context, chave string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remover(chave)
	return nil
}

func (m *Memoria) remover(chave string) {
	if e, ok := m.entradas[chave]; ok {
		m.usados -= len(e.Valor)
		delete(m.entradas, chave)
	}
}
