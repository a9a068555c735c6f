package carteira

import (
	"fmt"
	"strings"
	"time"
)

// Periodo de apuração dos indicadores
type Periodo string

const (
	Mensal     Periodo = "mensal"
	Trimestral Periodo = "trimestral"
	Semestral  Periodo = "semestral"
)

var Periodos = []Periodo{Mensal, Trimestral, Semestral}

// ParsePeriodo aceita o nome do período; vazio vale mensal
func ParsePeriodo(s string) (Periodo, error) {
	switch Periodo(strings.ToLower(strings.TrimSpace(s))) {
	case "", Mensal:
		return Mensal, nil
	case Trimestral:
		return Trimestral, nil
	case Semestral:
		return Semestral, nil
	}
	return "", fmt.Errorf("período inválido: %q", s)
}

// Inicio é o primeiro dia do mês corrente recuado 0, 2 ou 5 meses
func (p Periodo) Inicio(agora time.Time) time.Time {
	recuo := 0
	switch p {
	case Trimestral:
		recuo = 2
	case Semestral:
		recuo = 5
	}
	return time.Date(agora.Year(), agora.Month()-time.Month(recuo), 1, 0, 0, 0, 0, agora.Location())
}
