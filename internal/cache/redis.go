package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configura o cache compartilhado
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

// Redis guarda as entradas no Redis com o mesmo TTL
type Redis struct {
	client *redis.Client
	prefix string
}

type envelope struct {
	Valor     []byte    `json:"valor"`
	ValidoAte time.Time `json:"valido_ate"`
}

// NovoRedis cria o cliente
func NovoRedis(cfg RedisConfig) *Redis {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = "painel"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Redis{client: client, prefix: prefix}
}

// Ping confirma que o servidor responde
func (r *Redis) Ping(ctx context.Context) error { return r.client.Ping(ctx).Err() }

func (r *Redis) Get(ctx context.Context, chave string) (Entrada, bool, error) {
	val, err := r.client.Get(ctx, r.key(chave)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entrada{}, false, nil
	}
	if err != nil {
		return Entrada{}, false, err
	}
	var env envelope
	if err := json.Unmarshal(val, &env); err != nil {
		return Entrada{}, false, err
	}
	return Entrada{Valor: env.Valor, ValidoAte: env.ValidoAte}, true, nil
}

func (r *Redis) Put(ctx context.Context, chave string, valor []byte, ttl time.Duration) error {
	payload, err := json.Marshal(envelope{Valor: valor, ValidoAte: time.Now().Add(ttl)})
	if err != nil {
		return err
	}
	err = r.client.Set(ctx, r.key(chave), payload, ttl).Err()
	if err != nil && strings.Contains(err.Error(), "OOM") {
		return fmt.Errorf("%w: %v", ErrCotaExcedida, err)
	}
	return err
}

func (r *Redis) Del(ctx context.Context, chave string) error {
	return r.client.Del(ctx, r.key(chave)).Err()
}

func (r *Redis) key(chave string) string {
	return r.prefix + ":" + strings.TrimSpace(chave)
}
