// Package pagamento gera e mantém os lotes de pagamento e de resgate de comissões.
package pagamento

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

var (
	ErrTipoInvalido     = errors.New("tipo deve ser pagamento ou resgate")
	ErrNenhumElegivel   = errors.New("nenhum parceiro elegível")
	ErrLimiteInvalido   = errors.New("limite mínimo deve ser maior ou igual a zero")
	ErrLoteDeOutroDia   = errors.New("só é possível excluir lotes gerados hoje")
	ErrValorInvalido    = errors.New("valor deve ser maior que zero")
	ErrSemSaldo         = errors.New("parceiro sem comissão acumulada")
	ErrComprovanteVazio = errors.New("nome do comprovante é obrigatório")
)

// Alertador recebe os avisos de reconciliação manual
type Alertador interface {
	Alertar(ctx context.Context, mensagem string, dados map[string]string) error
}

// Inconsistencia descreve um parceiro cujo saldo não acompanhou o registro gravado
type Inconsistencia struct {
	ParceiroID string          `json:"parceiroId"`
	RegistroID string          `json:"registroId"`
	Valor      decimal.Decimal `json:"valor"`
	Erro       string          `json:"erro"`
}

// ResultadoLote é a resposta de geração/exclusão de lote
type ResultadoLote struct {
	Tipo            Tipo             `json:"tipo"`
	Registros       []Registro       `json:"registros"`
	Total           decimal.Decimal  `json:"total"`
	Inconsistencias []Inconsistencia `json:"inconsistencias,omitempty"`
	Ignorados       []string         `json:"ignorados,omitempty"` // abaixo do limite na releitura do banco
	Interrompido    string           `json:"interrompido,omitempty"` // falha que parou o lote antes do fim
	Aviso           string           `json:"aviso,omitempty"`
}

// Service concentra as operações de pagamento
type Service struct {
	Repo         *Repository
	Espelho      *estado.Espelho[Registro]
	Parceiros    *parceiro.Service
	Log          *logacao.Service
	Alertas      Alertador
	LimitePadrao decimal.Decimal
	agora        func() time.Time
}

func NewService(db *gorm.DB, store *estado.Store, parceiros *parceiro.Service, log *logacao.Service, alertas Alertador, limitePadrao decimal.Decimal) *Service {
	repo := NewRepository(db)
	return &Service{
		Repo:         repo,
		Espelho:      estado.NovoEspelho[Registro](store, Colecao, repo, func(r Registro) string { return r.ID }),
		Parceiros:    parceiros,
		Log:          log,
		Alertas:      alertas,
		LimitePadrao: limitePadrao,
		agora:        time.Now,
	}
}

// Listar devolve o livro de um tipo, mais recentes primeiro
func (s *Service) Listar(tipo Tipo) []Registro {
	var out []Registro
	for _, r := range s.Espelho.Listar() {
		if r.Tipo == tipo {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DataGeracao.After(out[j].DataGeracao) })
	return out
}

// LimiteMinimo lê o parâmetro; ausente ou ilegível usa o padrão configurado
func (s *Service) LimiteMinimo(ctx context.Context) decimal.Decimal {
	v, ok, err := s.Repo.Parametro(ctx, chaveLimiteMinimo)
	if err != nil {
		logger.Z().Warn("falha ao ler limite mínimo, usando padrão", zap.Error(err))
		return s.LimitePadrao
	}
	if !ok {
		return s.LimitePadrao
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return s.LimitePadrao
	}
	return d
}

// DefinirLimite altera o limite mínimo de pagamento
func (s *Service) DefinirLimite(ctx context.Context, ator string, valor decimal.Decimal) (string, error) {
	if valor.IsNegative() {
		return "", gateway.NovoErroValidacao(ColecaoParametros, "salvar", ErrLimiteInvalido.Error())
	}
	if err := s.Repo.SalvarParametro(ctx, chaveLimiteMinimo, valor.String()); err != nil {
		return "", err
	}
	return s.Log.Avisar(ctx, ator, "Alterou o limite mínimo de pagamento para "+formato.Moeda(valor)), nil
}

// Elegiveis lista os parceiros com comissão acumulada ≥ limite
func (s *Service) Elegiveis(ctx context.Context) []parceiro.Parceiro {
	limite := s.LimiteMinimo(ctx)
	var out []parceiro.Parceiro
	for _, p := range s.Parceiros.Listar() {
		if p.ComissaoAcumulada.IsPositive() && p.ComissaoAcumulada.GreaterThanOrEqual(limite) {
			out = append(out, p)
		}
	}
	return out
}

// GerarLote cria um registro por parceiro e transfere o acumulado para o pago.
// Pagamento processa todos os elegíveis; resgate processa os parceiros escolhidos com saldo.
// Se a atualização de saldo falhar depois do registro gravado, a inconsistência é reportada e não desfeita.
func (s *Service) GerarLote(ctx context.Context, ator string, tipo Tipo, parceiroIDs []string) (*ResultadoLote, error) {
	if !tipo.Valido() {
		return nil, gateway.NovoErroValidacao(Colecao, "gerar", ErrTipoInvalido.Error())
	}
	alvos, err := s.alvos(ctx, tipo, parceiroIDs)
	if err != nil {
		return nil, err
	}

	limite := s.LimiteMinimo(ctx)
	res := &ResultadoLote{Tipo: tipo, Total: decimal.Zero}
	hoje := s.agora()
	for _, alvo := range alvos {
		// o banco é a fonte de verdade do saldo
		atual, err := s.Parceiros.Repo.BuscarPorID(ctx, alvo.ID)
		if err != nil {
			res.Interrompido = fmt.Sprintf("parceiro %s: %v", alvo.ID, err)
			break
		}
		valor := atual.ComissaoAcumulada
		if !valor.IsPositive() {
			continue
		}
		if tipo == TipoPagamento && valor.LessThan(limite) {
			res.Ignorados = append(res.Ignorados, atual.ID)
			continue
		}

		reg := Registro{
			ID:               uuid.NewString(),
			Tipo:             tipo,
			ParceiroID:       atual.ID,
			ParceiroNome:     atual.Nome,
			Consultor:        atual.Consultor,
			ValorRT:          valor,
			ValorTransferido: valor,
			DataGeracao:      hoje,
		}
		if err := s.Repo.Inserir(ctx, &reg); err != nil {
			res.Interrompido = fmt.Sprintf("parceiro %s: %v", alvo.ID, err)
			break
		}
		if _, err := s.Parceiros.Movimentar(ctx, atual.ID, valor); err != nil {
			s.inconsistencia(ctx, res, reg, valor, err)
			// nada saiu do acumulado: a exclusão do lote não deve estornar
			if uerr := s.Repo.Atualizar(ctx, reg.ID, map[string]any{"valor_transferido": decimal.Zero}); uerr != nil {
				logger.Z().Error("falha ao zerar valor transferido", zap.String("registro", reg.ID), zap.Error(uerr))
			} else {
				reg.ValorTransferido = decimal.Zero
			}
		}
		s.Espelho.Aplicar(reg)
		res.Registros = append(res.Registros, reg)
		res.Total = res.Total.Add(valor)
	}

	if len(res.Registros) == 0 && res.Interrompido != "" {
		return nil, errors.New(res.Interrompido)
	}
	if len(res.Registros) == 0 && len(res.Ignorados) > 0 {
		return nil, gateway.NovoErroValidacao(Colecao, "gerar", ErrNenhumElegivel.Error())
	}
	if len(res.Registros) > 0 {
		res.Aviso = s.Log.Avisar(ctx, ator, fmt.Sprintf("Gerou lote de %s com %d registro(s), total %s",
			strings.ToLower(tipo.Rotulo()), len(res.Registros), formato.Moeda(res.Total)))
	}
	return res, nil
}

func (s *Service) alvos(ctx context.Context, tipo Tipo, parceiroIDs []string) ([]parceiro.Parceiro, error) {
	if tipo == TipoPagamento {
		elegiveis := s.Elegiveis(ctx)
		if len(elegiveis) == 0 {
			return nil, gateway.NovoErroValidacao(Colecao, "gerar", ErrNenhumElegivel.Error())
		}
		return elegiveis, nil
	}

	if len(parceiroIDs) == 0 {
		return nil, gateway.NovoErroValidacao(Colecao, "gerar", "selecione ao menos um parceiro para o resgate")
	}
	vistos := map[string]bool{}
	var alvos []parceiro.Parceiro
	for _, id := range parceiroIDs {
		id = strings.TrimSpace(id)
		if vistos[id] {
			continue
		}
		vistos[id] = true
		p, ok := s.Parceiros.Buscar(id)
		if !ok {
			return nil, gateway.NovoErroValidacao(Colecao, "gerar", fmt.Sprintf("parceiro %s não encontrado", id))
		}
		if !p.ComissaoAcumulada.IsPositive() {
			return nil, gateway.NovoErroValidacao(Colecao, "gerar", fmt.Sprintf("%s: %s", id, ErrSemSaldo.Error()))
		}
		alvos = append(alvos, p)
	}
	return alvos, nil
}

func (s *Service) inconsistencia(ctx context.Context, res *ResultadoLote, reg Registro, valor decimal.Decimal, err error) {
	inc := Inconsistencia{ParceiroID: reg.ParceiroID, RegistroID: reg.ID, Valor: valor, Erro: err.Error()}
	res.Inconsistencias = append(res.Inconsistencias, inc)
	logger.Z().Error("saldo do parceiro não acompanhou o registro gerado",
		zap.String("parceiro", reg.ParceiroID), zap.String("registro", reg.ID),
		zap.String("valor", valor.String()), zap.Error(err))
	if s.Alertas == nil {
		return
	}
	dados := map[string]string{
		"parceiro": reg.ParceiroID,
		"registro": reg.ID,
		"tipo":     string(reg.Tipo),
		"valor":    valor.String(),
		"erro":     err.Error(),
	}
	if aerr := s.Alertas.Alertar(ctx, "Reconciliação manual necessária: saldo do parceiro inconsistente com o registro gerado", dados); aerr != nil {
		logger.Z().Warn("falha ao enviar alerta de reconciliação", zap.Error(aerr))
	}
}

// ExcluirLoteDoDia apaga os registros de hoje do tipo e devolve ao acumulado o valor
// transferido na geração, mesmo que o ValorRT tenha sido editado depois
func (s *Service) ExcluirLoteDoDia(ctx context.Context, ator string, tipo Tipo, dia time.Time) (*ResultadoLote, error) {
	if !tipo.Valido() {
		return nil, gateway.NovoErroValidacao(Colecao, "excluir", ErrTipoInvalido.Error())
	}
	hoje := s.agora()
	if !formato.MesmoDia(hoje, dia) {
		return nil, gateway.NovoErroValidacao(Colecao, "excluir", ErrLoteDeOutroDia.Error())
	}
	regs, err := s.Repo.ListarDoDia(ctx, tipo, hoje)
	if err != nil {
		return nil, err
	}
	if len(regs) == 0 {
		return nil, gateway.NovoErroValidacao(Colecao, "excluir", "nenhum registro gerado hoje")
	}

	res := &ResultadoLote{Tipo: tipo, Total: decimal.Zero}
	for _, reg := range regs {
		if err := s.Repo.Deletar(ctx, reg.ID); err != nil {
			res.Interrompido = fmt.Sprintf("registro %s: %v", reg.ID, err)
			break
		}
		s.Espelho.Remover(reg.ID)
		res.Registros = append(res.Registros, reg)
		res.Total = res.Total.Add(reg.ValorTransferido)

		if !reg.ValorTransferido.IsPositive() {
			continue
		}
		if _, err := s.Parceiros.Movimentar(ctx, reg.ParceiroID, reg.ValorTransferido.Neg()); err != nil {
			s.inconsistencia(ctx, res, reg, reg.ValorTransferido.Neg(), err)
		}
	}
	if len(res.Registros) > 0 {
		res.Aviso = s.Log.Avisar(ctx, ator, fmt.Sprintf("Excluiu o lote de %s de %s (%d registro(s), total %s)",
			strings.ToLower(tipo.Rotulo()), formato.Data(hoje), len(res.Registros), formato.Moeda(res.Total)))
	}
	return res, nil
}

func (s *Service) atualizar(ctx context.Context, id string, campos map[string]any) (*Registro, error) {
	if err := s.Repo.Atualizar(ctx, id, campos); err != nil {
		return nil, err
	}
	reg, err := s.Repo.BuscarPorID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Espelho.Aplicar(*reg)
	return reg, nil
}

// AlternarStatus inverte o indicador de pago
func (s *Service) AlternarStatus(ctx context.Context, ator, id string) (*Registro, string, error) {
	atual, err := s.Repo.BuscarPorID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	reg, err := s.atualizar(ctx, id, map[string]any{"pago": !atual.Pago})
	if err != nil {
		return nil, "", err
	}
	status := "pendente"
	if reg.Pago {
		status = "pago"
	}
	aviso := s.Log.Avisar(ctx, ator, fmt.Sprintf("Marcou %s de %s (%s) como %s",
		strings.ToLower(reg.Tipo.Rotulo()), reg.ParceiroNome, formato.Moeda(reg.ValorRT), status))
	return reg, aviso, nil
}

// AtualizarValor corrige o valor RT do registro; saldos do parceiro não mudam
func (s *Service) AtualizarValor(ctx context.Context, ator, id string, valor decimal.Decimal) (*Registro, string, error) {
	if !valor.IsPositive() {
		return nil, "", gateway.NovoErroValidacao(Colecao, "atualizar", ErrValorInvalido.Error())
	}
	antes, err := s.Repo.BuscarPorID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	reg, err := s.atualizar(ctx, id, map[string]any{"valor_rt": valor.Round(2)})
	if err != nil {
		return nil, "", err
	}
	aviso := s.Log.Avisar(ctx, ator, fmt.Sprintf("Alterou o valor de %s de %s de %s para %s",
		strings.ToLower(reg.Tipo.Rotulo()), reg.ParceiroNome, formato.Moeda(antes.ValorRT), formato.Moeda(reg.ValorRT)))
	return reg, aviso, nil
}

// AnexarComprovante grava nome e data URI do comprovante
func (s *Service) AnexarComprovante(ctx context.Context, ator, id, nome, dataURI string) (*Registro, string, error) {
	nome = strings.TrimSpace(nome)
	if nome == "" {
		return nil, "", gateway.NovoErroValidacao(Colecao, "anexar", ErrComprovanteVazio.Error())
	}
	if _, err := formato.ParseDataURI(dataURI); err != nil {
		return nil, "", gateway.NovoErroValidacao(Colecao, "anexar", err.Error())
	}
	reg, err := s.atualizar(ctx, id, map[string]any{"comprovante_nome": nome, "comprovante": strings.TrimSpace(dataURI)})
	if err != nil {
		return nil, "", err
	}
	aviso := s.Log.Avisar(ctx, ator, fmt.Sprintf("Anexou comprovante %s em %s de %s",
		nome, strings.ToLower(reg.Tipo.Rotulo()), reg.ParceiroNome))
	return reg, aviso, nil
}
