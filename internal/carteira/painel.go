package carteira

import "github.com/shopspring/decimal"

// Painel são os agregados exibidos no topo da carteira
type Painel struct {
	Parceiros     int             `json:"parceiros"`
	VolumeTotal   decimal.Decimal `json:"volumeTotal"`
	ComissaoTotal decimal.Decimal `json:"comissaoTotal"`
	FechadosTotal int             `json:"fechadosTotal"`
	SaudeMedia    float64         `json:"saudeMedia"`
	TicketMedio   decimal.Decimal `json:"ticketMedio"`
	RiscoChurn    int             `json:"riscoChurn"`
}

// MontarPainel soma as linhas. A saúde média considera só quem tem saúde > 0.
func MontarPainel(linhas []Linha) Painel {
	p := Painel{Parceiros: len(linhas), VolumeTotal: decimal.Zero, ComissaoTotal: decimal.Zero, TicketMedio: decimal.Zero}
	var somaSaude float64
	var comSaude int
	for _, l := range linhas {
		p.VolumeTotal = p.VolumeTotal.Add(l.Volume)
		p.ComissaoTotal = p.ComissaoTotal.Add(l.Comissao)
		p.FechadosTotal += l.Fechados
		if l.Saude > 0 {
			somaSaude += l.Saude
			comSaude++
		}
		if l.DiasSemEnvio != nil && *l.DiasSemEnvio > DiasChurn {
			p.RiscoChurn++
		}
	}
	if comSaude > 0 {
		p.SaudeMedia = somaSaude / float64(comSaude)
	}
	if p.FechadosTotal > 0 {
		p.TicketMedio = p.VolumeTotal.Div(decimal.NewFromInt(int64(p.FechadosTotal))).Round(2)
	}
	return p
}
