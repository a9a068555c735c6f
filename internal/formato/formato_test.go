package formato

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMoeda(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "0", want: "R$ 0,00"},
		{in: "350", want: "R$ 350,00"},
		{in: "1234.5", want: "R$ 1.234,50"},
		{in: "1234567.891", want: "R$ 1.234.567,89"},
		{in: "-99.9", want: "-R$ 99,90"},
	}
	for _, item := range cases {
		got := Moeda(decimal.RequireFromString(item.in))
		if got != item.want {
			t.Fatalf("moeda in=%s want=%q got=%q", item.in, item.want, got)
		}
	}
}

func TestParseNumero(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "R$ 1.234,56", want: "1234.56"},
		{in: "1234.56", want: "1234.56"},
		{in: "1,234.56", want: "1234.56"},
		{in: "1.500", want: "1500"},
		{in: "299,99", want: "299.99"},
		{in: "66,7%", want: "66.7"},
		{in: "12 dias", want: "12"},
		{in: "-R$ 10,00", want: "-10"},
		{in: "7", want: "7"},
	}
	for _, item := range cases {
		got, err := ParseNumero(item.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", item.in, err)
		}
		if !got.Equal(decimal.RequireFromString(item.want)) {
			t.Fatalf("parse %q want=%s got=%s", item.in, item.want, got)
		}
	}
}

func TestParseNumeroRejeitaSentinelas(t *testing.T) {
	for _, in := range []string{"", "-", "N/A", "abc", "1,2,3"} {
		if _, err := ParseNumero(in); !errors.Is(err, ErrNumeroInvalido) {
			t.Fatalf("expected ErrNumeroInvalido for %q, got %v", in, err)
		}
	}
}

func TestParseNumeroBrutoSemMilhar(t *testing.T) {
	for in, want := range map[string]string{"1234.567": "1234.567", "1.500": "1.5", " 1e3 ": "1000", "-0.125": "-0.125"} {
		got, err := ParseNumeroBruto(in)
		if err != nil || !got.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("parse %q want=%s got=%s err=%v", in, want, got, err)
		}
	}
	if _, err := ParseNumeroBruto("1.234,56"); !errors.Is(err, ErrNumeroInvalido) {
		t.Fatalf("expected ErrNumeroInvalido, got %v", err)
	}
}

func TestPercentual(t *testing.T) {
	cases := map[float64]string{
		0:         "0%",
		50:        "50%",
		66.666666: "66,7%",
		150:       "150%",
	}
	for in, want := range cases {
		if got := Percentual(in); got != want {
			t.Fatalf("percentual %v want=%q got=%q", in, want, got)
		}
	}
}

func TestParseData(t *testing.T) {
	loc := time.UTC
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, loc)
	for _, in := range []string{"15/03/2024", "2024-03-15", "45366"} {
		got, err := ParseData(in, loc)
		if err != nil {
			t.Fatalf("parse %q failed: %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("parse %q want=%v got=%v", in, want, got)
		}
	}
	if _, err := ParseData("ontem", loc); !errors.Is(err, ErrDataInvalida) {
		t.Fatalf("expected ErrDataInvalida, got %v", err)
	}
}

func TestDataURI(t *testing.T) {
	uri := MontarDataURI("application/pdf", []byte("comprovante"))
	parsed, err := ParseDataURI(uri)
	if err != nil {
		t.Fatalf("parse data uri failed: %v", err)
	}
	if parsed.MimeType != "application/pdf" || string(parsed.Dados) != "comprovante" {
		t.Fatalf("unexpected data uri content: %+v", parsed)
	}
	if _, err := ParseDataURI("http://exemplo.com/a.pdf"); !errors.Is(err, ErrDataURIInvalida) {
		t.Fatalf("expected ErrDataURIInvalida, got %v", err)
	}
}

func TestMesmoDia(t *testing.T) {
	a := time.Date(2024, 5, 10, 23, 59, 0, 0, time.UTC)
	b := time.Date(2024, 5, 10, 0, 1, 0, 0, time.UTC)
	if !MesmoDia(a, b) {
		t.Fatalf("expected same day")
	}
	if MesmoDia(a, b.AddDate(0, 0, 1)) {
		t.Fatalf("expected different days")
	}
}
