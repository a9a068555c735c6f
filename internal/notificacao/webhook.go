// Package notificacao envia alertas de reconciliação para um webhook externo.
package notificacao

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/KromaEnergia/painel-parceiros/internal/logger"
	"go.uber.org/zap"
)

// Webhook posta alertas em JSON; sem URL configurada só registra no log
type Webhook struct {
	URL  string
	http *http.Client
}

func NovoWebhook(url string) *Webhook {
	return &Webhook{URL: url, http: &http.Client{Timeout: 10 * time.Second}}
}

// Alertar envia {"mensagem": ..., "dados": {...}}; não há nova tentativa
func (w *Webhook) Alertar(ctx context.Context, mensagem string, dados map[string]string) error {
	logger.Z().Warn("alerta de reconciliação", zap.String("mensagem", mensagem), zap.Any("dados", dados))
	if w == nil || w.URL == "" {
		return nil
	}
	body, err := json.Marshal(map[string]any{
		"mensagem": mensagem,
		"dados":    dados,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.http.Do(req)
	if err != nil {
		logger.Z().Error("erro ao enviar webhook", zap.Error(err))
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook respondeu %d", resp.StatusCode)
	}
	return nil
}
