// Package formato converte entre textos no padrão brasileiro e valores numéricos ou datas.
package formato

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNumeroInvalido indica texto que não representa um número
var ErrNumeroInvalido = errors.New("número inválido")

// Moeda formata um valor como "R$ 1.234,56"
func Moeda(v decimal.Decimal) string {
	if v.IsNegative() {
		return "-R$ " + Numero(v.Abs(), 2)
	}
	return "R$ " + Numero(v, 2)
}

// Numero formata com separador de milhar "." e decimal ","
func Numero(v decimal.Decimal, casas int32) string {
	s := v.StringFixed(casas)
	negativo := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	inteiro, fracao, _ := strings.Cut(s, ".")
	var b strings.Builder
	if negativo {
		b.WriteByte('-')
	}
	for i, r := range inteiro {
		if i > 0 && (len(inteiro)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if fracao != "" {
		b.WriteByte(',')
		b.WriteString(fracao)
	}
	return b.String()
}

// Percentual formata um valor já multiplicado por 100: 0 → "0%", 66.666 → "66,7%", 150 → "150%".
// Valores acima de 100 são mantidos.
func Percentual(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0%"
	}
	arred := math.Round(v*10) / 10
	if arred == math.Trunc(arred) {
		return strconv.FormatFloat(arred, 'f', 0, 64) + "%"
	}
	return strings.Replace(strconv.FormatFloat(arred, 'f', 1, 64), ".", ",", 1) + "%"
}

// Dias formata a contagem de dias como "N dias"
func Dias(n int) string {
	return fmt.Sprintf("%d dias", n)
}

// ParseNumero aceita "R$ 1.234,56", "1234.56", "1,234.56", "66,7%" e "12 dias".
func ParseNumero(s string) (decimal.Decimal, error) {
	limpo := strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(limpo, "-R$"); ok {
		limpo = "-" + rest
	}
	limpo = strings.TrimPrefix(limpo, "R$")
	limpo = strings.TrimSuffix(limpo, "%")
	limpo = strings.TrimSuffix(limpo, "dias")
	limpo = strings.TrimSuffix(limpo, "dia")
	limpo = strings.ReplaceAll(limpo, "\u00a0", "")
	limpo = strings.ReplaceAll(limpo, " ", "")
	if limpo == "" || limpo == "-" || limpo == "+" {
		return decimal.Zero, ErrNumeroInvalido
	}

	virgula := strings.LastIndex(limpo, ",")
	ponto := strings.LastIndex(limpo, ".")
	switch {
	case virgula >= 0 && ponto >= 0:
		if virgula > ponto {
			limpo = strings.ReplaceAll(limpo, ".", "")
			limpo = strings.Replace(limpo, ",", ".", 1)
		} else {
			limpo = strings.ReplaceAll(limpo, ",", "")
		}
	case virgula >= 0:
		if strings.Count(limpo, ",") > 1 {
			return decimal.Zero, ErrNumeroInvalido
		}
		limpo = strings.Replace(limpo, ",", ".", 1)
	case ponto >= 0:
		// "1.500" e "1.234.567" são milhares no padrão brasileiro
		if strings.Count(limpo, ".") > 1 || len(limpo)-ponto-1 == 3 {
			limpo = strings.ReplaceAll(limpo, ".", "")
		}
	}

	d, err := decimal.NewFromString(limpo)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNumeroInvalido, s)
	}
	return d, nil
}

// ParseNumeroBruto lê notação de máquina ("1234.567", "1e3") sem heurística de milhares
func ParseNumeroBruto(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNumeroInvalido, s)
	}
	return d, nil
}

// ParseMoeda é ParseNumero arredondado a centavos
func ParseMoeda(s string) (decimal.Decimal, error) {
	d, err := ParseNumero(s)
	if err != nil {
		return d, err
	}
	return d.Round(2), nil
}
