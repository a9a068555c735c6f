package importacao

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/KromaEnergia/painel-parceiros/internal/formato"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Campo é o significado de uma coluna da planilha
type Campo string

const (
	CampoParceiroID Campo = "parceiro_id"
	CampoVendaID    Campo = "venda_id"
	CampoValor      Campo = "valor"
	CampoDataVenda  Campo = "data_venda"
	CampoConsultor  Campo = "consultor"
)

// CamposObrigatorios precisam estar mapeados para importar
var CamposObrigatorios = []Campo{CampoParceiroID, CampoVendaID, CampoValor}

var camposConhecidos = map[Campo]bool{
	CampoParceiroID: true, CampoVendaID: true, CampoValor: true, CampoDataVenda: true, CampoConsultor: true,
}

// Mapeamento liga cada campo ao título da coluna escolhido pelo operador
type Mapeamento map[Campo]string

// ErrPlanilhaVazia indica arquivo sem cabeçalho
var ErrPlanilhaVazia = errors.New("planilha sem linhas")

// Problemas reúne todas as falhas de validação da planilha
type Problemas []string

func (p Problemas) Error() string {
	return fmt.Sprintf("%d problema(s) na planilha: %s", len(p), strings.Join(p, "; "))
}

// abaLida guarda as linhas da primeira aba com valores brutos.
// numericas marca as células gravadas como número, que não passam pela leitura pt-BR.
type abaLida struct {
	linhas    [][]string
	numericas map[[2]int]bool
}

// ler abre a primeira aba do arquivo
func ler(conteudo []byte) (*abaLida, error) {
	f, err := excelize.OpenReader(bytes.NewReader(conteudo))
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir planilha: %w", err)
	}
	defer f.Close()

	abas := f.GetSheetList()
	if len(abas) == 0 {
		return nil, ErrPlanilhaVazia
	}
	rows, err := f.GetRows(abas[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("falha ao ler aba %s: %w", abas[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrPlanilhaVazia
	}

	p := &abaLida{linhas: rows, numericas: map[[2]int]bool{}}
	for i, row := range rows {
		for j, v := range row {
			if strings.TrimSpace(v) == "" {
				continue
			}
			nome, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				continue
			}
			tipo, err := f.GetCellType(abas[0], nome)
			if err == nil && (tipo == excelize.CellTypeUnset || tipo == excelize.CellTypeNumber) {
				p.numericas[[2]int{i, j}] = true
			}
		}
	}
	return p, nil
}

// moeda lê o valor da célula; números gravados como número usam notação de máquina
func (p *abaLida) moeda(linha, coluna int) (decimal.Decimal, error) {
	txt := celula(p.linhas[linha], coluna, true)
	if p.numericas[[2]int{linha, coluna}] {
		d, err := formato.ParseNumeroBruto(txt)
		return d.Round(2), err
	}
	return formato.ParseMoeda(txt)
}

// LerCabecalhos devolve os títulos da primeira linha
func LerCabecalhos(conteudo []byte) ([]string, error) {
	p, err := ler(conteudo)
	if err != nil {
		return nil, err
	}
	var cab []string
	for _, c := range p.linhas[0] {
		cab = append(cab, strings.TrimSpace(c))
	}
	return cab, nil
}

// indices resolve o mapeamento para posições de coluna
func (m Mapeamento) indices(cabecalho []string) (map[Campo]int, Problemas) {
	var probs Problemas
	pos := map[string]int{}
	for i, c := range cabecalho {
		chave := strings.ToLower(strings.TrimSpace(c))
		if _, ok := pos[chave]; !ok {
			pos[chave] = i
		}
	}

	idx := map[Campo]int{}
	for campo, titulo := range m {
		if !camposConhecidos[campo] {
			probs = append(probs, fmt.Sprintf("campo desconhecido: %s", campo))
			continue
		}
		if strings.TrimSpace(titulo) == "" {
			continue
		}
		i, ok := pos[strings.ToLower(strings.TrimSpace(titulo))]
		if !ok {
			probs = append(probs, fmt.Sprintf("coluna %q não existe na planilha", titulo))
			continue
		}
		idx[campo] = i
	}
	for _, campo := range CamposObrigatorios {
		if _, ok := idx[campo]; !ok && strings.TrimSpace(m[campo]) == "" {
			probs = append(probs, fmt.Sprintf("campo obrigatório sem coluna: %s", campo))
		}
	}
	return idx, probs
}

func celula(row []string, i int, ok bool) string {
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func linhaVazia(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
