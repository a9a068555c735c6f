// Package importacao importa planilhas diárias de vendas e mantém o ledger anti-duplicidade.
package importacao

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/KromaEnergia/painel-parceiros/internal/estado"
	"github.com/KromaEnergia/painel-parceiros/internal/formato"
	"github.com/KromaEnergia/painel-parceiros/internal/gateway"
	"github.com/KromaEnergia/painel-parceiros/internal/logacao"
	"github.com/KromaEnergia/painel-parceiros/internal/logger"
	"github.com/KromaEnergia/painel-parceiros/internal/parceiro"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	Colecao  = "arquivos_importados"
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// linha validada, pronta para crédito
type linha struct {
	numero     int
	parceiroID string
	vendaID    string
	valor      decimal.Decimal
	data       *time.Time
	consultor  string
}

// Resultado resume uma importação. Ignoradas traz os ids já presentes no ledger;
// SemCredito as entradas que ficaram no ledger sem o crédito correspondente.
type Resultado struct {
	Arquivo      *Arquivo        `json:"arquivo"`
	Importadas   int             `json:"importadas"`
	Total        decimal.Decimal `json:"total"`
	Ignoradas    []string        `json:"ignoradas"`
	SemCredito   []string        `json:"semCredito,omitempty"`
	Interrompido string          `json:"interrompido,omitempty"`
	Aviso        string          `json:"aviso,omitempty"`
}

type Service struct {
	colecao   *gateway.Colecao[Arquivo]
	Espelho   *estado.Espelho[Arquivo]
	Ledger    *Ledger
	Parceiros *parceiro.Service
	Log       *logacao.Service
	Location  *time.Location
	agora     func() time.Time
}

func NewService(db *gorm.DB, store *estado.Store, parceiros *parceiro.Service, log *logacao.Service) *Service {
	c := gateway.NovaColecao[Arquivo](db, Colecao)
	return &Service{
		colecao:   c,
		Espelho:   estado.NovoEspelho[Arquivo](store, Colecao, c, func(a Arquivo) string { return a.ID }),
		Ledger:    NewLedger(db),
		Parceiros: parceiros,
		Log:       log,
		Location:  time.Local,
		agora:     time.Now,
	}
}

// Listar devolve o histórico sem o conteúdo, mais recente primeiro
func (s *Service) Listar() []Arquivo {
	itens := s.Espelho.Listar()
	for i := range itens {
		itens[i].Conteudo = ""
	}
	sort.SliceStable(itens, func(i, j int) bool { return itens[i].Dia > itens[j].Dia })
	return itens
}

// Baixar devolve o arquivo decodificado
func (s *Service) Baixar(id string) (*Arquivo, *formato.DataURI, error) {
	a, ok := s.Espelho.Buscar(id)
	if !ok {
		return nil, nil, &gateway.Erro{Tipo: gateway.ErroNaoEncontrado, Colecao: Colecao, Op: "buscar", Err: gorm.ErrRecordNotFound}
	}
	d, err := formato.ParseDataURI(a.Conteudo)
	if err != nil {
		return nil, nil, err
	}
	return &a, d, nil
}

// Importar valida a planilha inteira antes de gravar qualquer coisa.
// Vendas já presentes no ledger são ignoradas e listadas pelo id.
func (s *Service) Importar(ctx context.Context, ator, nomeArquivo string, conteudo []byte, mapa Mapeamento) (*Resultado, error) {
	linhas, err := s.validar(conteudo, mapa)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(linhas))
	for _, l := range linhas {
		ids = append(ids, l.vendaID)
	}
	jaImportadas, err := s.Ledger.Existentes(ctx, ids)
	if err != nil {
		return nil, err
	}

	arq, err := s.salvarArquivo(ctx, nomeArquivo, conteudo)
	if err != nil {
		return nil, err
	}

	res := &Resultado{Arquivo: arq, Total: decimal.Zero, Ignoradas: []string{}}
	for _, l := range linhas {
		if jaImportadas[l.vendaID] {
			res.Ignoradas = append(res.Ignoradas, l.vendaID)
			continue
		}
		err := s.Ledger.Registrar(ctx, VendaImportada{
			ID:          l.vendaID,
			ParceiroID:  l.parceiroID,
			Valor:       l.valor,
			DataVenda:   l.data,
			Consultor:   l.consultor,
			Origem:      OrigemPlanilha,
			ArquivoID:   arq.ID,
			ImportadoEm: s.agora(),
		})
		if gateway.E(err, gateway.ErroConflito) {
			res.Ignoradas = append(res.Ignoradas, l.vendaID)
			continue
		}
		if err != nil {
			res.Interrompido = fmt.Sprintf("Linha %d (venda %s): %v", l.numero, l.vendaID, err)
			break
		}
		if _, err := s.Parceiros.Creditar(ctx, l.parceiroID, l.valor); err != nil {
			res.Interrompido = fmt.Sprintf("Linha %d (venda %s): %v", l.numero, l.vendaID, err)
			if errRm := s.Ledger.Remover(ctx, l.vendaID); errRm != nil {
				res.SemCredito = append(res.SemCredito, l.vendaID)
				logger.Z().Error("venda no ledger sem crédito",
					zap.String("venda", l.vendaID), zap.String("parceiro", l.parceiroID), zap.Error(errRm))
			}
			break
		}
		res.Importadas++
		res.Total = res.Total.Add(l.valor)
	}

	res.Aviso = s.Log.Avisar(ctx, ator, fmt.Sprintf("Importou %s: %d venda(s), total %s, %d ignorada(s)",
		arq.NomeArquivo, res.Importadas, formato.Moeda(res.Total), len(res.Ignoradas)))
	return res, nil
}

func (s *Service) validar(conteudo []byte, mapa Mapeamento) ([]linha, error) {
	p, err := ler(conteudo)
	if err != nil {
		return nil, gateway.NovoErroValidacao(Colecao, "importar", err.Error())
	}
	idx, probs := mapa.indices(p.linhas[0])
	if len(probs) > 0 {
		return nil, &gateway.Erro{Tipo: gateway.ErroValidacao, Colecao: Colecao, Op: "importar", Err: probs}
	}

	iData, temData := idx[CampoDataVenda]
	iCons, temCons := idx[CampoConsultor]
	vistos := map[string]int{}
	var linhas []linha
	for i, row := range p.linhas[1:] {
		n := i + 2
		if linhaVazia(row) {
			continue
		}
		l := linha{
			numero:     n,
			parceiroID: celula(row, idx[CampoParceiroID], true),
			vendaID:    celula(row, idx[CampoVendaID], true),
			consultor:  celula(row, iCons, temCons),
		}
		if l.parceiroID == "" {
			probs = append(probs, fmt.Sprintf("Linha %d: id do parceiro vazio", n))
		} else if _, ok := s.Parceiros.Buscar(l.parceiroID); !ok {
			probs = append(probs, fmt.Sprintf("Linha %d: parceiro %s não cadastrado", n, l.parceiroID))
		}
		if l.vendaID == "" {
			probs = append(probs, fmt.Sprintf("Linha %d: id da venda vazio", n))
		} else if anterior, ok := vistos[l.vendaID]; ok {
			probs = append(probs, fmt.Sprintf("Linha %d: venda %s duplicada (já na linha %d)", n, l.vendaID, anterior))
		} else {
			vistos[l.vendaID] = n
		}
		valor, err := p.moeda(i+1, idx[CampoValor])
		switch {
		case err != nil:
			probs = append(probs, fmt.Sprintf("Linha %d: valor %q não é numérico", n, celula(row, idx[CampoValor], true)))
		case !valor.IsPositive():
			probs = append(probs, fmt.Sprintf("Linha %d: valor deve ser maior que zero", n))
		default:
			l.valor = valor
		}
		if txt := celula(row, iData, temData); txt != "" {
			d, err := formato.ParseData(txt, s.Location)
			if err != nil {
				probs = append(probs, fmt.Sprintf("Linha %d: data %q inválida", n, txt))
			} else {
				l.data = &d
			}
		}
		linhas = append(linhas, l)
	}
	if len(probs) > 0 {
		return nil, &gateway.Erro{Tipo: gateway.ErroValidacao, Colecao: Colecao, Op: "importar", Err: probs}
	}
	if len(linhas) == 0 {
		return nil, gateway.NovoErroValidacao(Colecao, "importar", "planilha sem linhas de dados")
	}
	return linhas, nil
}

// salvarArquivo mantém um arquivo por dia de importação
func (s *Service) salvarArquivo(ctx context.Context, nome string, conteudo []byte) (*Arquivo, error) {
	agora := s.agora()
	dia := agora.Format("2006-01-02")
	uri := formato.MontarDataURI(MimeXLSX, conteudo)
	nome = strings.TrimSpace(nome)
	if nome == "" {
		nome = "importacao-" + dia + ".xlsx"
	}

	existente, err := s.colecao.Primeiro(ctx, "dia = ?", dia)
	switch {
	case err == nil:
		campos := map[string]any{"nome_arquivo": nome, "conteudo": uri, "data_importacao": agora}
		if err := s.colecao.Atualizar(ctx, existente.ID, campos); err != nil {
			return nil, err
		}
		existente.NomeArquivo, existente.Conteudo, existente.DataImportacao = nome, uri, agora
		s.Espelho.Aplicar(*existente)
		return existente, nil
	case gateway.E(err, gateway.ErroNaoEncontrado):
		a := Arquivo{ID: uuid.NewString(), Dia: dia, DataImportacao: agora, NomeArquivo: nome, Conteudo: uri}
		if err := s.colecao.Inserir(ctx, &a); err != nil {
			return nil, err
		}
		s.Espelho.Aplicar(a)
		return &a, nil
	default:
		return nil, err
	}
}

// ProblemasDe extrai a lista de problemas de uma falha de validação da planilha
func ProblemasDe(err error) (Problemas, bool) {
	var p Problemas
	if errors.As(err, &p) {
		return p, true
	}
	return nil, false
}
