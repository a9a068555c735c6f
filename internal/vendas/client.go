package vendas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/KromaEnergia/painel-parceiros/internal/formato"
	"github.com/shopspring/decimal"
)

var (
	ErrNaoConfigurada = errors.New("API de vendas não configurada")
	ErrResposta       = errors.New("resposta inválida da API de vendas")
)

// Config da API de vendas
type Config struct {
	URL      string
	Token    string
	Timeout  time.Duration
	Location *time.Location
}

// Client busca a lista completa de vendas; a API não pagina
type Client struct {
	cfg  Config
	http *http.Client
}

func NovoClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

// campo aceita número ou string no JSON; numero marca o token sem aspas
type campo struct {
	texto  string
	numero bool
}

func (c *campo) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*c = campo{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = campo{texto: s}
		return nil
	}
	*c = campo{texto: string(b), numero: true}
	return nil
}

type vendaAPI struct {
	ParceiroID    campo  `json:"id_parceiro"`
	PedidoID      campo  `json:"id_pedido"`
	Status        campo  `json:"status"`
	ValorLiquido  campo  `json:"valor_liquido"`
	ValorNota     campo  `json:"valor_nota"`
	DataEmissao   campo  `json:"data_emissao"`
	DataConclusao campo  `json:"data_conclusao"`
	Versao        *campo `json:"versao"`
}

// BuscarTodas faz o GET completo
func (c *Client) BuscarTodas(ctx context.Context) ([]Venda, error) {
	if strings.TrimSpace(c.cfg.URL) == "" {
		return nil, ErrNaoConfigurada
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erro ao chamar API de vendas: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler resposta da API de vendas: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrResposta, resp.StatusCode)
	}
	return c.decodificar(body)
}

func (c *Client) decodificar(body []byte) ([]Venda, error) {
	var brutos []vendaAPI
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env struct {
			Data []vendaAPI `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResposta, err)
		}
		brutos = env.Data
	} else if err := json.Unmarshal(trimmed, &brutos); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResposta, err)
	}

	vendas := make([]Venda, 0, len(brutos))
	for _, b := range brutos {
		v := Venda{
			ParceiroID:    strings.TrimSpace(b.ParceiroID.texto),
			PedidoID:      strings.TrimSpace(b.PedidoID.texto),
			Status:        strings.TrimSpace(b.Status.texto),
			ValorLiquido:  valor(b.ValorLiquido),
			ValorNota:     valor(b.ValorNota),
			DataEmissao:   c.data(b.DataEmissao),
			DataConclusao: c.data(b.DataConclusao),
		}
		if b.Versao != nil {
			s := strings.TrimSpace(b.Versao.texto)
			v.Versao = &s
		}
		vendas = append(vendas, v)
	}
	return vendas, nil
}

// valores ilegíveis contam como zero; só texto passa pela leitura pt-BR
func valor(c campo) decimal.Decimal {
	ler := formato.ParseNumero
	if c.numero {
		ler = formato.ParseNumeroBruto
	}
	d, err := ler(c.texto)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (c *Client) data(s campo) *time.Time {
	t, err := formato.ParseData(s.texto, c.cfg.Location)
	if err != nil {
		return nil
	}
	return &t
}
