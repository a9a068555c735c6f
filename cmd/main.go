package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KromaEnergia/painel-parceiros/internal/acoes"
	"github.com/KromaEnergia/painel-parceiros/internal/auth"
	"github.com/KromaEnergia/painel-parceiros/internal/cache"
	"github.com/KromaEnergia/painel-parceiros/internal/carteira"
	"github.com/KromaEnergia/painel-parceiros/internal/comissaomanual"
	"github.com/KromaEnergia/painel-parceiros/internal/config"
	"github.com/KromaEnergia/painel-parceiros/internal/estado"
	"github.com/KromaEnergia/painel-parceiros/internal/importacao"
	"github.com/KromaEnergia/painel-parceiros/internal/logacao"
	"github.com/KromaEnergia/painel-parceiros/internal/logger"
	"github.com/KromaEnergia/painel-parceiros/internal/notificacao"
	"github.com/KromaEnergia/painel-parceiros/internal/pagamento"
	"github.com/KromaEnergia/painel-parceiros/internal/parceiro"
	"github.com/KromaEnergia/painel-parceiros/internal/perfil"
	"github.com/KromaEnergia/painel-parceiros/internal/permissao"
	"github.com/KromaEnergia/painel-parceiros/internal/utils/db"
	"github.com/KromaEnergia/painel-parceiros/internal/vendas"
	"github.com/KromaEnergia/painel-parceiros/internal/visao"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// cota do cache local quando não há Redis
const cotaMemoria = 5 << 20

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Z().Fatal("erro ao carregar configuração", zap.Error(err))
	}
	log := logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := db.ConnectDataBase(ctx, cfg.Database)
	if err != nil {
		if errors.Is(err, db.ErrSemConfiguracao) {
			log.Fatal("painel sem banco configurado", zap.Error(err))
		}
		log.Fatal("erro ao conectar no banco", zap.Error(err))
	}
	if err := migrar(conn); err != nil {
		log.Fatal("erro no AutoMigrate", zap.Error(err))
	}

	store := estado.NewStore()
	logSvc := logacao.NewService(conn, store)
	parceiroSvc := parceiro.NewService(conn, store, logSvc)
	perfilSvc := perfil.NewService(conn, store, logSvc)

	alertas := notificacao.NovoWebhook(cfg.Notificacao.WebhookURL)
	pagamentoSvc := pagamento.NewService(conn, store, parceiroSvc, logSvc, alertas, decimal.NewFromFloat(cfg.Pagamento.LimiteMinimo))
	importacaoSvc := importacao.NewService(conn, store, parceiroSvc, logSvc)
	comissaoSvc := comissaomanual.NewService(conn, store, importacaoSvc.Ledger, parceiroSvc, logSvc)
	carteiraSvc := carteira.NewService(conn, store, parceiroSvc, logSvc)

	if err := store.RecarregarTudo(ctx); err != nil {
		log.Warn("estado carregado parcialmente", zap.Error(err))
	}
	if criado, err := perfilSvc.GarantirAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminSenha); err != nil {
		log.Error("falha ao criar admin inicial", zap.Error(err))
	} else if criado {
		log.Info("admin inicial criado", zap.String("email", cfg.Auth.AdminEmail))
	}

	chaves, err := auth.CarregarChaves(auth.Config{
		RSAPrivatePath: cfg.Auth.RSAPrivatePath,
		KID:            cfg.Auth.KID,
		Issuer:         cfg.Auth.Issuer,
		Audience:       cfg.Auth.Audience,
		CookieSecure:   cfg.Auth.CookieSecure,
	})
	if err != nil {
		log.Fatal("erro ao carregar chaves", zap.Error(err))
	}
	sessoes := &auth.Sessoes{DB: conn, Chaves: chaves, CookieSecure: cfg.Auth.CookieSecure}
	autenticacao := &auth.Middleware{Chaves: chaves, PapelDe: perfilSvc.PapelDe}

	var c cache.Cache = cache.NovaMemoria(cotaMemoria)
	if cfg.Redis.Enabled {
		c = cache.NovoRedis(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	}
	fonte := vendas.NovoClient(vendas.Config{
		URL:     cfg.VendasAPI.URL,
		Token:   cfg.VendasAPI.Token,
		Timeout: time.Duration(cfg.VendasAPI.TimeoutSeconds) * time.Second,
	})
	agregador := carteira.NovoAgregador(fonte, c, carteiraSvc, parceiroSvc, carteira.Opcoes{
		TTL:           time.Duration(cfg.Carteira.CacheTTLMinutes) * time.Minute,
		StatusFechado: cfg.VendasAPI.StatusFechado,
	})

	permissoes, err := permissao.NewService()
	if err != nil {
		log.Fatal("erro ao montar permissões", zap.Error(err))
	}
	visaoSvc := visao.NewService(store, visao.Fontes{
		Parceiros:   parceiroSvc,
		Pagamentos:  pagamentoSvc,
		Importacoes: importacaoSvc,
		Comissoes:   comissaoSvc,
		Permissoes:  permissoes,
		Logs:        logSvc,
		Agregador:   agregador,
	})

	perfilHandler := perfil.NewHandler(perfilSvc, sessoes)
	sistema := &acoes.Sistema{Store: store, Log: logSvc, Banco: conn, Cache: c}
	despachante, err := acoes.NovoDespachante(permissoes, acoes.Tabela(acoes.Handlers{
		Parceiros:   parceiro.NewHandler(parceiroSvc),
		Pagamentos:  pagamento.NewHandler(pagamentoSvc),
		Importacoes: importacao.NewHandler(importacaoSvc),
		Comissoes:   comissaomanual.NewHandler(comissaoSvc),
		Carteira:    carteira.NewHandler(carteiraSvc, agregador),
		Perfis:      perfilHandler,
		Visoes:      visao.NewHandler(visaoSvc, permissoes),
		Sistema:     sistema,
	}))
	if err != nil {
		log.Fatal("tabela de ações inválida", zap.Error(err))
	}

	r := mux.NewRouter()
	r.Use(registrarRequisicoes)

	// Rotas públicas
	r.HandleFunc("/auth/login", perfilHandler.Login).Methods("POST")
	r.HandleFunc("/auth/refresh", sessoes.RefreshHTTPHandler).Methods("POST")
	r.HandleFunc("/auth/logout", sessoes.LogoutHTTPHandler).Methods("POST")
	r.HandleFunc("/.well-known/jwks.json", chaves.JWKSHandler).Methods("GET")
	r.HandleFunc("/saude", sistema.Saude).Methods("GET")

	// Rotas autenticadas
	protegidas := r.PathPrefix("/").Subrouter()
	protegidas.Use(autenticacao.Autenticar)
	despachante.Registrar(protegidas)

	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(r)

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("servidor rodando", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("servidor parou", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	desligar, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(desligar); err != nil {
		log.Error("erro no shutdown", zap.Error(err))
		os.Exit(1)
	}
	log.Info("servidor encerrado")
}

func migrar(conn *gorm.DB) error {
	for _, m := range []func(*gorm.DB) error{
		auth.Migrate,
		logacao.Migrate,
		parceiro.Migrate,
		perfil.Migrate,
		pagamento.Migrate,
		importacao.Migrate,
		comissaomanual.Migrate,
		carteira.Migrate,
	} {
		if err := m(conn); err != nil {
			return err
		}
	}
	return nil
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// registrarRequisicoes loga método, caminho, status e duração
func registrarRequisicoes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inicio := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		logger.Z().Info("requisição",
			zap.String("metodo", r.Method),
			zap.String("caminho", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("duracao", time.Since(inicio)),
		)
	})
}
