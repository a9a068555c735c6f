package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KromaEnergia/painel-parceiros/internal/config"
	"github.com/KromaEnergia/painel-parceiros/internal/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrSemConfiguracao é a única falha fatal do painel
var ErrSemConfiguracao = errors.New("configuração do banco ausente")

// ConnectDataBase abre a conexão postgres com as credenciais do config ou do Secrets Manager
func ConnectDataBase(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	if !cfg.Configurado() {
		return nil, ErrSemConfiguracao
	}
	dsn := cfg.DSN
	if dsn == "" {
		username, password, err := retrieveCredentials(ctx, cfg)
		if err != nil {
			return nil, err
		}
		dsn = montarDSN(cfg, username, password)
	}

	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Error),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("abrir conexão: %w", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping banco: %w", err)
	}
	logger.Z().Info("banco conectado", zap.String("host", cfg.Host), zap.String("db", cfg.Name))
	return database, nil
}

func montarDSN(cfg config.DatabaseConfig, username, password string) string {
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	var sslMode string
	if cfg.SSLDisable {
		sslMode = " sslmode=disable"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d%s", cfg.Host, username, password, cfg.Name, port, sslMode)
}
