package visao

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// nomeAba respeita o limite de 31 caracteres do Excel
func nomeAba(titulo string) string {
	if titulo == "" {
		return "Sheet1"
	}
	for utf8.RuneCountInString(titulo) > 31 {
		_, tam := utf8.DecodeLastRuneInString(titulo)
		titulo = titulo[:len(titulo)-tam]
	}
	return titulo
}

// Exportar gera o XLSX da tabela: cabeçalho em negrito e uma linha por registro
func Exportar(t *Tabela) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	aba := nomeAba(t.Titulo)
	if err := f.SetSheetName("Sheet1", aba); err != nil {
		return nil, fmt.Errorf("falha ao nomear aba: %w", err)
	}
	negrito, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	for i, c := range t.Colunas {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(aba, cell, c.Titulo); err != nil {
			return nil, err
		}
	}
	if len(t.Colunas) > 0 {
		fim, _ := excelize.CoordinatesToCellName(len(t.Colunas), 1)
		if err := f.SetCellStyle(aba, "A1", fim, negrito); err != nil {
			return nil, err
		}
	}

	for r, l := range t.Linhas {
		for i, v := range t.Celulas(l) {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			if err := f.SetCellValue(aba, cell, v); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("falha ao gerar planilha: %w", err)
	}
	return buf.Bytes(), nil
}
