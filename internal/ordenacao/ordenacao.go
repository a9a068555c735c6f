// Package ordenacao implementa a política de ordenação por coluna única
// compartilhada pela tabela de parceiros e pela carteira.
package ordenacao

import (
	"sort"
	"strings"
	"sync"

	"github.com/KromaEnergia/painel-parceiros/internal/formato"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Direcao string

const (
	Asc  Direcao = "asc"
	Desc Direcao = "desc"
)

// Coluna descreve uma coluna ordenável
type Coluna struct {
	Chave      string `json:"chave"`
	Titulo     string `json:"titulo"`
	Numerica   bool   `json:"numerica"`
	PadraoDesc bool   `json:"padraoDesc"` // primeiro clique ordena decrescente (dias sem envio)
}

// Estado é a coluna e a direção correntes
type Estado struct {
	Coluna  string  `json:"coluna"`
	Direcao Direcao `json:"direcao"`
}

// Clicar aplica o clique no cabeçalho: mesma coluna inverte, coluna nova reinicia
func (e Estado) Clicar(col Coluna) Estado {
	if e.Coluna == col.Chave {
		if e.Direcao == Asc {
			return Estado{Coluna: col.Chave, Direcao: Desc}
		}
		return Estado{Coluna: col.Chave, Direcao: Asc}
	}
	if col.PadraoDesc {
		return Estado{Coluna: col.Chave, Direcao: Desc}
	}
	return Estado{Coluna: col.Chave, Direcao: Asc}
}

// ParseDirecao normaliza o texto vindo da query
func ParseDirecao(s string) Direcao {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

func sentinela(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "-", "N/A":
		return true
	}
	return false
}

// Comparador compara células de texto; não é seguro para uso concorrente
type Comparador struct {
	collator *collate.Collator
}

// NovoComparador cria um comparador com collation pt-BR
func NovoComparador() *Comparador {
	return &Comparador{collator: collate.New(language.BrazilianPortuguese, collate.IgnoreCase)}
}

// Comparar devolve -1, 0 ou 1. Sentinelas ("-", "N/A") ficam abaixo de qualquer valor;
// textos numéricos comparam como números.
func (c *Comparador) Comparar(a, b string, numerica bool) int {
	sa, sb := sentinela(a), sentinela(b)
	var na, nb bool
	da, errA := formato.ParseNumero(a)
	db, errB := formato.ParseNumero(b)
	if !sa {
		na = errA == nil
		if numerica && !na {
			sa = true
		}
	}
	if !sb {
		nb = errB == nil
		if numerica && !nb {
			sb = true
		}
	}

	switch {
	case sa && sb:
		return 0
	case sa:
		return -1
	case sb:
		return 1
	case na && nb:
		return da.Cmp(db)
	}
	return c.collator.CompareString(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Ordenar ordena de forma estável pelo valor textual de cada item
func Ordenar[T any](itens []T, direcao Direcao, numerica bool, valor func(T) string) {
	c := NovoComparador()
	chaves := make([]string, len(itens))
	for i, it := range itens {
		chaves[i] = valor(it)
	}
	idx := make([]int, len(itens))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		r := c.Comparar(chaves[idx[i]], chaves[idx[j]], numerica)
		if direcao == Desc {
			return r > 0
		}
		return r < 0
	})
	ordenados := make([]T, len(itens))
	for i, k := range idx {
		ordenados[i] = itens[k]
	}
	copy(itens, ordenados)
}

// Preferencias guarda o estado de ordenação por usuário e tabela
type Preferencias struct {
	mu      sync.Mutex
	estados map[string]Estado
}

func NovasPreferencias() *Preferencias {
	return &Preferencias{estados: map[string]Estado{}}
}

func chavePref(usuario, tabela string) string { return usuario + "|" + tabela }

// Obter devolve o estado salvo ou o padrão
func (p *Preferencias) Obter(usuario, tabela string, padrao Estado) Estado {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.estados[chavePref(usuario, tabela)]; ok {
		return e
	}
	return padrao
}

// Clicar aplica um clique de cabeçalho e guarda o novo estado
func (p *Preferencias) Clicar(usuario, tabela string, col Coluna, padrao Estado) Estado {
	p.mu.Lock()
	defer p.mu.Unlock()
	k := chavePref(usuario, tabela)
	atual, ok := p.estados[k]
	if !ok {
		atual = padrao
	}
	novo := atual.Clicar(col)
	p.estados[k] = novo
	return novo
}

// BuscarColuna procura a coluna pela chave
func BuscarColuna(colunas []Coluna, chave string) (Coluna, bool) {
	for _, c := range colunas {
		if c.Chave == chave {
			return c, true
		}
	}
	return Coluna{}, false
}
