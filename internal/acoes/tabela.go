package acoes

import (
	"github.com/KromaEnergia/painel-parceiros/internal/carteira"
	"github.com/KromaEnergia/painel-parceiros/internal/comissaomanual"
	"github.com/KromaEnergia/painel-parceiros/internal/importacao"
	"github.com/KromaEnergia/painel-parceiros/internal/pagamento"
	"github.com/KromaEnergia/painel-parceiros/internal/parceiro"
	"github.com/KromaEnergia/painel-parceiros/internal/perfil"
	"github.com/KromaEnergia/painel-parceiros/internal/permissao"
	"github.com/KromaEnergia/painel-parceiros/internal/visao"
)

// Handlers reúne os handlers de cada domínio
type Handlers struct {
	Parceiros   *parceiro.Handler
	Pagamentos  *pagamento.Handler
	Importacoes *importacao.Handler
	Comissoes   *comissaomanual.Handler
	Carteira    *carteira.Handler
	Perfis      *perfil.Handler
	Visoes      *visao.Handler
	Sistema     *Sistema
}

const (
	ler      = permissao.Ler
	escrever = permissao.Escrever
)

// Tabela monta a tabela de despacho do painel
func Tabela(h Handlers) []Acao {
	return []Acao{
		{ID: "parceiro.listar", Metodo: "GET", Caminho: "/parceiros", Recurso: permissao.RecursoParceiros, Operacao: ler, Handler: h.Parceiros.Listar},
		{ID: "parceiro.buscar", Metodo: "GET", Caminho: "/parceiros/{id}", Recurso: permissao.RecursoParceiros, Operacao: ler, Handler: h.Parceiros.Buscar},
		{ID: "parceiro.criar", Metodo: "POST", Caminho: "/parceiros", Recurso: permissao.RecursoParceiros, Operacao: escrever, Handler: h.Parceiros.Criar},
		{ID: "parceiro.editar", Metodo: "PUT", Caminho: "/parceiros/{id}", Recurso: permissao.RecursoParceiros, Operacao: escrever, Handler: h.Parceiros.Atualizar},
		{ID: "parceiro.excluir", Metodo: "DELETE", Caminho: "/parceiros/{id}", Recurso: permissao.RecursoParceiros, Operacao: escrever, Handler: h.Parceiros.Deletar},

		{ID: "pagamento.listar", Metodo: "GET", Caminho: "/pagamentos", Recurso: permissao.RecursoPagamentos, Operacao: ler, Handler: h.Pagamentos.Listar(pagamento.TipoPagamento)},
		{ID: "pagamento.elegiveis", Metodo: "GET", Caminho: "/pagamentos/elegiveis", Recurso: permissao.RecursoPagamentos, Operacao: ler, Handler: h.Pagamentos.Elegiveis},
		{ID: "pagamento.gerar-lote", Metodo: "POST", Caminho: "/pagamentos/lotes", Recurso: permissao.RecursoPagamentos, Operacao: escrever, Handler: h.Pagamentos.GerarLote(pagamento.TipoPagamento)},
		{ID: "pagamento.excluir-lote", Metodo: "DELETE", Caminho: "/pagamentos/lotes", Recurso: permissao.RecursoPagamentos, Operacao: escrever, Handler: h.Pagamentos.ExcluirLote(pagamento.TipoPagamento)},
		{ID: "pagamento.alternar-status", Metodo: "PATCH", Caminho: "/pagamentos/{id}/status", Recurso: permissao.RecursoPagamentos, Operacao: escrever, Handler: h.Pagamentos.AlternarStatus},
		{ID: "pagamento.editar-valor", Metodo: "PATCH", Caminho: "/pagamentos/{id}/valor", Recurso: permissao.RecursoPagamentos, Operacao: escrever, Handler: h.Pagamentos.AtualizarValor},
		{ID: "pagamento.anexar-comprovante", Metodo: "POST", Caminho: "/pagamentos/{id}/comprovante", Recurso: permissao.RecursoPagamentos, Operacao: escrever, Handler: h.Pagamentos.AnexarComprovante},
		{ID: "resgate.listar", Metodo: "GET", Caminho: "/resgates", Recurso: permissao.RecursoResgates, Operacao: ler, Handler: h.Pagamentos.Listar(pagamento.TipoResgate)},
		{ID: "resgate.gerar-lote", Metodo: "POST", Caminho: "/resgates/lotes", Recurso: permissao.RecursoResgates, Operacao: escrever, Handler: h.Pagamentos.GerarLote(pagamento.TipoResgate)},
		{ID: "resgate.excluir-lote", Metodo: "DELETE", Caminho: "/resgates/lotes", Recurso: permissao.RecursoResgates, Operacao: escrever, Handler: h.Pagamentos.ExcluirLote(pagamento.TipoResgate)},
		{ID: "parametro.limite-minimo", Metodo: "GET", Caminho: "/parametros/limite-minimo", Recurso: permissao.RecursoParametros, Operacao: ler, Handler: h.Pagamentos.ObterLimite},
		{ID: "parametro.definir-limite-minimo", Metodo: "PUT", Caminho: "/parametros/limite-minimo", Recurso: permissao.RecursoParametros, Operacao: escrever, Handler: h.Pagamentos.DefinirLimite},

		{ID: "importacao.listar", Metodo: "GET", Caminho: "/importacoes", Recurso: permissao.RecursoImportacoes, Operacao: ler, Handler: h.Importacoes.Listar},
		{ID: "importacao.cabecalhos", Metodo: "POST", Caminho: "/importacoes/cabecalhos", Recurso: permissao.RecursoImportacoes, Operacao: escrever, Handler: h.Importacoes.Cabecalhos},
		{ID: "importacao.importar", Metodo: "POST", Caminho: "/importacoes", Recurso: permissao.RecursoImportacoes, Operacao: escrever, Handler: h.Importacoes.Importar},
		{ID: "importacao.baixar", Metodo: "GET", Caminho: "/importacoes/{id}/arquivo", Recurso: permissao.RecursoImportacoes, Operacao: ler, Handler: h.Importacoes.Baixar},

		{ID: "comissao-manual.listar", Metodo: "GET", Caminho: "/comissoes-manuais", Recurso: permissao.RecursoComissoesManual, Operacao: ler, Handler: h.Comissoes.Listar},
		{ID: "comissao-manual.criar", Metodo: "POST", Caminho: "/comissoes-manuais", Recurso: permissao.RecursoComissoesManual, Operacao: escrever, Handler: h.Comissoes.Criar},
		{ID: "comissao-manual.aprovar", Metodo: "POST", Caminho: "/comissoes-manuais/{id}/aprovar", Recurso: permissao.RecursoComissoesManual, Operacao: escrever, Handler: h.Comissoes.Aprovar},
		{ID: "comissao-manual.rejeitar", Metodo: "POST", Caminho: "/comissoes-manuais/{id}/rejeitar", Recurso: permissao.RecursoComissoesManual, Operacao: escrever, Handler: h.Comissoes.Rejeitar},

		{ID: "carteira.indicadores", Metodo: "GET", Caminho: "/carteira", Recurso: permissao.RecursoCarteira, Operacao: ler, Handler: h.Carteira.Indicadores},
		{ID: "carteira.listar", Metodo: "GET", Caminho: "/carteira/entradas", Recurso: permissao.RecursoCarteira, Operacao: ler, Handler: h.Carteira.Listar},
		{ID: "carteira.adicionar", Metodo: "POST", Caminho: "/carteira/entradas", Recurso: permissao.RecursoCarteira, Operacao: escrever, Handler: h.Carteira.Adicionar},
		{ID: "carteira.remover", Metodo: "DELETE", Caminho: "/carteira/entradas/{id}", Recurso: permissao.RecursoCarteira, Operacao: escrever, Handler: h.Carteira.Remover},

		{ID: "perfil.me", Metodo: "GET", Caminho: "/me", Handler: h.Perfis.Me},
		{ID: "perfil.listar", Metodo: "GET", Caminho: "/perfis", Recurso: permissao.RecursoPerfis, Operacao: ler, Handler: h.Perfis.Listar},
		{ID: "perfil.criar", Metodo: "POST", Caminho: "/perfis", Recurso: permissao.RecursoPerfis, Operacao: escrever, Handler: h.Perfis.Criar},
		{ID: "perfil.alterar-papel", Metodo: "PATCH", Caminho: "/perfis/{id}/papel", Recurso: permissao.RecursoPerfis, Operacao: escrever, Handler: h.Perfis.AlterarPapel},

		{ID: "visao.listar", Metodo: "GET", Caminho: "/visoes", Handler: h.Visoes.Listar},
		{ID: "visao.abrir", Metodo: "GET", Caminho: "/visoes/{nome}", Handler: h.Visoes.Abrir},
		{ID: "visao.ordenar", Metodo: "POST", Caminho: "/visoes/{nome}/ordenacao", Handler: h.Visoes.Ordenar},

		{ID: "estado.recarregar", Metodo: "POST", Caminho: "/estado/recarregar", Recurso: permissao.RecursoEstado, Operacao: escrever, Handler: h.Sistema.Recarregar},
		{ID: "log.listar", Metodo: "GET", Caminho: "/logs", Recurso: permissao.RecursoLogs, Operacao: ler, Handler: h.Sistema.Logs},
	}
}
