package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-pkgz/repeater/v2"

	"AnimeNewsBot/internal/config"
	"AnimeNewsBot/internal/domain"
	"AnimeNewsBot/internal/ports"
)

const apiBase = "https://api.telegram.org"

// errTerminal marks bot API rejections that retrying cannot fix.
var errTerminal = errors.New("terminal telegram error")

// Publisher sends one message per article to a Telegram chat via bot API.
type Publisher struct {
	botToken   string
	chatID     string
	decorate   bool
	apiURL     string
	retries    int
	retryDelay time.Duration
	client     *http.Client
	logger     *slog.Logger
}

var _ ports.Publisher = (*Publisher)(nil)

// NewPublisher registers bot token and chat identifier.
func NewPublisher(cfg config.TelegramConfig, client *http.Client, log *slog.Logger) *Publisher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Publisher{
		botToken:   cfg.BotToken,
		chatID:     cfg.ChatID,
		decorate:   cfg.Decorate,
		apiURL:     apiBase,
		retries:    3,
		retryDelay: time.Second,
		client:     client,
		logger:     log,
	}
}

// Publish formats the article and posts it to the chat. When the article
// carries an image, a photo message goes out first, best effort: a failed
// photo is logged and the text message is still sent. Transient failures
// (network, 429, 5xx) are retried with backoff; other rejections are
// terminal. All failures are reported as publish errors carrying the
// article id.
func (p *Publisher) Publish(ctx context.Context, article domain.Article) error {
	if p.botToken == "" || p.chatID == "" {
		return fmt.Errorf("%w: publisher misconfigured", domain.ErrPublish)
	}

	if article.ImageURL != "" {
		if err := p.sendPhoto(ctx, article.ImageURL); err != nil {
			p.warn("photo send failed", "article", article.ID, "error", err)
		}
	}

	if err := p.sendMessage(ctx, FormatMessage(article, p.decorate)); err != nil {
		return fmt.Errorf("%w: article %s: %v", domain.ErrPublish, article.ID, err)
	}

	return nil
}

func (p *Publisher) sendMessage(ctx context.Context, text string) error {
	form := url.Values{}
	form.Set("chat_id", p.chatID)
	form.Set("text", text)
	form.Set("parse_mode", "Markdown")
	form.Set("disable_web_page_preview", "false")
	return p.call(ctx, "sendMessage", form)
}

func (p *Publisher) sendPhoto(ctx context.Context, photoURL string) error {
	form := url.Values{}
	form.Set("chat_id", p.chatID)
	form.Set("photo", photoURL)
	return p.call(ctx, "sendPhoto", form)
}

func (p *Publisher) call(ctx context.Context, method string, form url.Values) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", p.apiURL, p.botToken, method)

	retrier := repeater.NewBackoff(p.retries, p.retryDelay, repeater.WithMaxDelay(10*time.Second))
	return retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return fmt.Errorf("%w: new request: %v", errTerminal, err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := p.client.Do(req)
		if err != nil {
			return fmt.Errorf("do request: %w", err) // retry
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			return nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("telegram %s: %s", method, resp.Status) // retry
		default:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("%w: %s: %s: %s", errTerminal, method, resp.Status, strings.TrimSpace(string(body)))
		}
	}, errTerminal)
}

func (p *Publisher) warn(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
