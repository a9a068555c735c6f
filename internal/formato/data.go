package formato

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	LayoutData     = "02/01/2006"
	LayoutDataHora = "02/01/2006 15:04"
)

var (
	ErrDataInvalida    = errors.New("data inválida")
	ErrDataURIInvalida = errors.New("data URI inválida")
)

var layoutsAceitos = []string{
	LayoutData,
	LayoutDataHora,
	"02/01/2006 15:04:05",
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.000Z",
}

// excel conta dias a partir de 30/12/1899
var epocaExcel = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// Data formata como dd/mm/aaaa; zero vira "-"
func Data(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(LayoutData)
}

// DataPtr formata uma data opcional
func DataPtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return Data(*t)
}

// DataHora formata como dd/mm/aaaa hh:mm
func DataHora(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(LayoutDataHora)
}

// ParseData interpreta datas nos formatos usados pela API de vendas e pelas planilhas,
// inclusive o número serial do Excel. Datas sem fuso ficam no fuso informado.
func ParseData(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrDataInvalida
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range layoutsAceitos {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 && serial < 2958466 {
		dias := int(serial)
		fracao := time.Duration((serial - float64(dias)) * float64(24*time.Hour))
		t := epocaExcel.AddDate(0, 0, dias).Add(fracao)
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrDataInvalida, s)
}

// InicioDoDia trunca para 00:00 no mesmo fuso
func InicioDoDia(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MesmoDia compara apenas a data do calendário
func MesmoDia(a, b time.Time) bool {
	ya, ma, da := a.Date()
	yb, mb, db := b.In(a.Location()).Date()
	return ya == yb && ma == mb && da == db
}

// DataURI é o conteúdo decodificado de um "data:" URI
type DataURI struct {
	MimeType string
	Dados    []byte
}

// ParseDataURI valida e decodifica "data:<mime>;base64,<dados>"
func ParseDataURI(s string) (*DataURI, error) {
	resto, ok := strings.CutPrefix(strings.TrimSpace(s), "data:")
	if !ok {
		return nil, ErrDataURIInvalida
	}
	cabecalho, dados, ok := strings.Cut(resto, ",")
	if !ok {
		return nil, ErrDataURIInvalida
	}
	mime, base64Flag := strings.CutSuffix(cabecalho, ";base64")
	if mime == "" {
		mime = "text/plain"
	}
	if base64Flag {
		b, err := base64.StdEncoding.DecodeString(dados)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDataURIInvalida, err)
		}
		return &DataURI{MimeType: mime, Dados: b}, nil
	}
	texto, err := url.PathUnescape(dados)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataURIInvalida, err)
	}
	return &DataURI{MimeType: mime, Dados: []byte(texto)}, nil
}

// MontarDataURI codifica bytes em base64
func MontarDataURI(mime string, dados []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(dados)
}
