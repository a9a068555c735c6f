package visao

import (
	"github.com/KromaEnergia/painel-parceiros/internal/ordenacao"
)

// Tabela é o modelo de uma visão pronto para exibir ou exportar
type Tabela struct {
	Nome    string             `json:"nome"`
	Titulo  string             `json:"titulo"`
	Colunas []ordenacao.Coluna `json:"colunas"`
	Linhas  []Linha            `json:"linhas"`
	Ordem   ordenacao.Estado   `json:"ordem"`
	Aviso   string             `json:"aviso,omitempty"`
	Extra   any                `json:"extra,omitempty"`
}

// Linha guarda o texto exibido por coluna. chaves, quando presente,
// substitui o texto na ordenação (datas em ISO).
type Linha struct {
	ID      string            `json:"id"`
	Celulas map[string]string `json:"celulas"`
	chaves  map[string]string
}

func novaLinha(id string) Linha {
	return Linha{ID: id, Celulas: map[string]string{}}
}

func (l *Linha) set(coluna, texto string) {
	l.Celulas[coluna] = texto
}

func (l *Linha) setOrdenavel(coluna, texto, chave string) {
	l.Celulas[coluna] = texto
	if l.chaves == nil {
		l.chaves = map[string]string{}
	}
	l.chaves[coluna] = chave
}

func (l Linha) chave(coluna string) string {
	if c, ok := l.chaves[coluna]; ok {
		return c
	}
	return l.Celulas[coluna]
}

// Ordenar aplica o estado; coluna desconhecida mantém a ordem atual
func (t *Tabela) Ordenar(e ordenacao.Estado) {
	col, ok := ordenacao.BuscarColuna(t.Colunas, e.Coluna)
	if !ok {
		return
	}
	t.Ordem = e
	ordenacao.Ordenar(t.Linhas, e.Direcao, col.Numerica, func(l Linha) string { return l.chave(col.Chave) })
}

// Celulas devolve a linha na ordem das colunas
func (t *Tabela) Celulas(l Linha) []string {
	out := make([]string, len(t.Colunas))
	for i, c := range t.Colunas {
		out[i] = l.Celulas[c.Chave]
	}
	return out
}
