package carteira

import (
	"math"
	"time"

	"github.com/KromaEnergia/painel-parceiros/internal/formato"
	"github.com/KromaEnergia/painel-parceiros/internal/vendas"
	"github.com/shopspring/decimal"
)

// DiasChurn é o limite de dias sem envio para risco de churn
const DiasChurn = 90

// Linha reúne os indicadores de um parceiro da carteira
type Linha struct {
	ParceiroID      string          `json:"parceiroId"`
	Nome            string          `json:"nome"`
	Fechados        int             `json:"fechados"`
	Enviados        int             `json:"enviados"`
	Volume          decimal.Decimal `json:"volume"`
	Saude           float64         `json:"saude"`
	SaudeTexto      string          `json:"saudeTexto"`
	DiasSemEnvio    *int            `json:"diasSemEnvio,omitempty"`
	DiasTexto       string          `json:"diasTexto"`
	UltimaEmissao   *time.Time      `json:"ultimaEmissao,omitempty"`
	UltimaConclusao *time.Time      `json:"ultimaConclusao,omitempty"`
	Comissao        decimal.Decimal `json:"comissao"`
	Registros       int             `json:"registros"`
}

func noIntervalo(t *time.Time, inicio, agora time.Time) bool {
	return t != nil && !t.Before(inicio) && !t.After(agora)
}

// calcular monta a linha de um parceiro a partir de todos os registros dele.
// Saúde acima de 100% é válida: o fechamento pode ser de um envio de outro período.
func calcular(e Entrada, registros []vendas.Venda, inicio, agora time.Time, fechado string) Linha {
	l := Linha{
		ParceiroID: e.ID,
		Nome:       e.Nome,
		Volume:     decimal.Zero,
		Comissao:   decimal.Zero,
		Registros:  len(registros),
	}
	for _, v := range registros {
		if v.Status == fechado && noIntervalo(v.DataConclusao, inicio, agora) {
			l.Fechados++
			l.Volume = l.Volume.Add(v.ValorNota)
		}
		if v.RevisaoAtual() && noIntervalo(v.DataEmissao, inicio, agora) {
			l.Enviados++
		}
		if v.DataEmissao != nil && (l.UltimaEmissao == nil || v.DataEmissao.After(*l.UltimaEmissao)) {
			d := *v.DataEmissao
			l.UltimaEmissao = &d
		}
		if v.DataConclusao != nil && (l.UltimaConclusao == nil || v.DataConclusao.After(*l.UltimaConclusao)) {
			d := *v.DataConclusao
			l.UltimaConclusao = &d
		}
	}

	if l.Enviados > 0 {
		l.Saude = float64(l.Fechados) / float64(l.Enviados) * 100
	}
	l.SaudeTexto = formato.Percentual(l.Saude)

	switch {
	case len(registros) == 0:
		l.DiasTexto = "N/A"
	case l.UltimaEmissao == nil:
		l.DiasTexto = "-"
	default:
		n := diasDesde(*l.UltimaEmissao, agora)
		l.DiasSemEnvio = &n
		l.DiasTexto = formato.Dias(n)
	}
	return l
}

// diasDesde arredonda as horas decorridas para cima, em dias
func diasDesde(t, agora time.Time) int {
	horas := agora.Sub(t).Hours()
	if horas <= 0 {
		return 0
	}
	return int(math.Ceil(horas / 24))
}

// particionar agrupa os registros por parceiro em uma passada
func particionar(registros []vendas.Venda) map[string][]vendas.Venda {
	out := make(map[string][]vendas.Venda)
	for _, v := range registros {
		out[v.ParceiroID] = append(out[v.ParceiroID], v)
	}
	return out
}
