package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-donations/app/factory"
)

const defaultTelegramAPIBaseURL = "https://api.telegram.org"

type TelegramConfig struct {
	BotToken    string
	ChatID      string
	APIBaseURL  string
	HTTPTimeout time.Duration
}

// TelegramNotifier posts donation messages to a single chat via the Bot
// API. When the token or chat id is not configured, Notify logs a warning
// and reports success so callers keep degrading gracefully.
type TelegramNotifier struct {
	cfg    TelegramConfig
	client *http.Client
	logger logrus.FieldLogger
}

func NewTelegramNotifier(cfg TelegramConfig) *TelegramNotifier {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		cfg.APIBaseURL = defaultTelegramAPIBaseURL
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	return &TelegramNotifier{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: factory.NewModuleLogger("telegram-notifier"),
	}
}

func (n *TelegramNotifier) Configured() bool {
	return strings.TrimSpace(n.cfg.BotToken) != "" && strings.TrimSpace(n.cfg.ChatID) != ""
}

func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	if !n.Configured() {
		n.logger.Warn("Telegram bot token or chat id is not configured, skipping notification")
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"chat_id":    n.cfg.ChatID,
		"text":       text,
		"parse_mode": "MarkdownV2",
	})
	if err != nil {
		return err
	}

	url := n.cfg.APIBaseURL + "/bot" + n.cfg.BotToken + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram sendMessage failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	return nil
}
