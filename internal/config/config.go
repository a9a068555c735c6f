package config

import (
	"fmt"
	"strings"

	"github.com/KromaEnergia/painel-parceiros/internal/logger"
	"github.com/spf13/viper"
)

// Config reúne toda a configuração do painel
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	VendasAPI   VendasAPIConfig   `mapstructure:"vendas_api"`
	Pagamento   PagamentoConfig   `mapstructure:"pagamento"`
	Carteira    CarteiraConfig    `mapstructure:"carteira"`
	CORS        CORSConfig        `mapstructure:"cors"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Notificacao NotificacaoConfig `mapstructure:"notificacao"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions converte para as opções do logger
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabaseConfig aceita um DSN pronto ou as partes separadas.
// Quando SecretID vem preenchido e não há usuário/senha, as credenciais saem do Secrets Manager.
type DatabaseConfig struct {
	DSN        string `mapstructure:"dsn"`
	Host       string `mapstructure:"host"`
	Port       uint   `mapstructure:"port"`
	Name       string `mapstructure:"name"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	SecretID   string `mapstructure:"secret_id"`
	SSLDisable bool   `mapstructure:"ssl_disable"`
}

// Configurado indica se há o mínimo para abrir conexão
func (c DatabaseConfig) Configurado() bool {
	if strings.TrimSpace(c.DSN) != "" {
		return true
	}
	if strings.TrimSpace(c.Host) == "" {
		return false
	}
	return (c.User != "" && c.Password != "") || c.SecretID != ""
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type VendasAPIConfig struct {
	URL            string `mapstructure:"url"`
	Token          string `mapstructure:"token"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	StatusFechado  string `mapstructure:"status_fechado"`
}

type PagamentoConfig struct {
	LimiteMinimo float64 `mapstructure:"limite_minimo"`
}

type CarteiraConfig struct {
	CacheTTLMinutes int `mapstructure:"cache_ttl_minutes"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type AuthConfig struct {
	RSAPrivatePath string `mapstructure:"rsa_private_path"`
	KID            string `mapstructure:"kid"`
	Issuer         string `mapstructure:"issuer"`
	Audience       string `mapstructure:"audience"`
	CookieSecure   bool   `mapstructure:"cookie_secure"`
	AdminEmail     string `mapstructure:"admin_email"` // primeiro admin, criado só com a tabela vazia
	AdminSenha     string `mapstructure:"admin_senha"`
}

type NotificacaoConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

// Load lê config.yml (opcional) e variáveis de ambiente
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvs(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("erro ao ler config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("erro ao decodificar config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")

	v.SetDefault("log.dir", "logs")
	v.SetDefault("log.filename", "painel.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)

	v.SetDefault("database.port", 5432)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.prefix", "painel")

	v.SetDefault("vendas_api.timeout_seconds", 30)
	v.SetDefault("vendas_api.status_fechado", "FECHADO")

	v.SetDefault("pagamento.limite_minimo", 300)
	v.SetDefault("carteira.cache_ttl_minutes", 10)
	v.SetDefault("cors.allowed_origins", []string{"*"})
}

// nomes herdados do deploy antigo (DB_HOST, JWT etc.)
func bindEnvs(v *viper.Viper) {
	_ = v.BindEnv("database.host", "DB_HOST", "DATABASE_HOST")
	_ = v.BindEnv("database.port", "DB_PORT", "DATABASE_PORT")
	_ = v.BindEnv("database.name", "DB_NAME", "DATABASE_NAME")
	_ = v.BindEnv("database.user", "DB_USERNAME", "DATABASE_USER")
	_ = v.BindEnv("database.password", "DB_PASSWORD", "DATABASE_PASSWORD")
	_ = v.BindEnv("database.secret_id", "DB_SECRET_ID", "DATABASE_SECRET_ID")
	_ = v.BindEnv("database.ssl_disable", "DB_SSL_MODE_DISABLE", "DATABASE_SSL_DISABLE")
	_ = v.BindEnv("auth.rsa_private_path", "AUTH_RSA_PRIVATE_PATH")
	_ = v.BindEnv("auth.kid", "AUTH_KID")
	_ = v.BindEnv("auth.issuer", "AUTH_ISSUER")
	_ = v.BindEnv("auth.audience", "AUTH_AUDIENCE")
	_ = v.BindEnv("auth.cookie_secure", "COOKIE_SECURE")
	_ = v.BindEnv("auth.admin_email", "ADMIN_EMAIL")
	_ = v.BindEnv("auth.admin_senha", "ADMIN_SENHA")
	_ = v.BindEnv("notificacao.webhook_url", "WEBHOOK_URL")
}
