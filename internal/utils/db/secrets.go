package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KromaEnergia/painel-parceiros/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SecretsAPI é o trecho do cliente do Secrets Manager usado aqui
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// novoSecrets pode ser trocado nos testes
var novoSecrets = func(ctx context.Context) (SecretsAPI, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return secretsmanager.NewFromConfig(cfg), nil
}

func retrieveCredentials(ctx context.Context, cfg config.DatabaseConfig) (string, string, error) {
	if cfg.User != "" && cfg.Password != "" {
		return cfg.User, cfg.Password, nil
	}
	if cfg.SecretID == "" {
		return "", "", ErrSemConfiguracao
	}

	secrets, err := novoSecrets(ctx)
	if err != nil {
		return "", "", fmt.Errorf("aws config: %w", err)
	}
	result, err := secrets.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(cfg.SecretID),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return "", "", fmt.Errorf("buscar segredo %s: %w", cfg.SecretID, err)
	}
	if result.SecretString == nil {
		return "", "", errors.New("segredo sem SecretString")
	}

	var secret Credentials
	if err := json.Unmarshal([]byte(*result.SecretString), &secret); err != nil {
		return "", "", fmt.Errorf("decodificar segredo: %w", err)
	}
	if secret.Username == "" || secret.Password == "" {
		return "", "", ErrSemConfiguracao
	}
	return secret.Username, secret.Password, nil
}
