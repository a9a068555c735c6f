package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const (
	CtxUsuarioID ctxKey = "usuarioID"
	CtxEmail     ctxKey = "email"
	CtxPapel     ctxKey = "papel"
)

// PapelDe resolve o papel atual de um usuário (espelho de perfis)
type PapelDe func(usuarioID string) (string, bool)

// Middleware autentica o bearer token e injeta usuário e papel no contexto
type Middleware struct {
	Chaves  *Chaves
	PapelDe PapelDe
}

func (m *Middleware) Autenticar(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		h := r.Header.Get("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			http.Error(w, "Token ausente", http.StatusUnauthorized)
			return
		}
		claims, err := m.Chaves.ParseAndValidate(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			http.Error(w, "Token inválido", http.StatusUnauthorized)
			return
		}
		papel, ok := m.PapelDe(claims.UsuarioID)
		if !ok {
			http.Error(w, "Perfil não encontrado", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(ComUsuario(r.Context(), claims.UsuarioID, claims.Email, papel)))
	})
}

// ComUsuario injeta a identidade no contexto
func ComUsuario(ctx context.Context, id, email, papel string) context.Context {
	ctx = context.WithValue(ctx, CtxUsuarioID, id)
	ctx = context.WithValue(ctx, CtxEmail, email)
	return context.WithValue(ctx, CtxPapel, papel)
}

// UsuarioID do contexto autenticado
func UsuarioID(ctx context.Context) string {
	v, _ := ctx.Value(CtxUsuarioID).(string)
	return v
}

// Ator é o e-mail usado no log de ações
func Ator(ctx context.Context) string {
	v, _ := ctx.Value(CtxEmail).(string)
	return v
}

// Papel do usuário autenticado
func Papel(ctx context.Context) string {
	v, _ := ctx.Value(CtxPapel).(string)
	return v
}
