package task

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/shaiso/Srota/internal/sse"
	"github.com/shaiso/Srota/internal/telemetry"
)

// SSEHandler — обработчик одного SSE события.
type SSEHandler func(ctx context.Context, ev sse.Event) error

// SSEConfig — конфигурация SSE задачи.
type SSEConfig struct {
	Name    string
	URL     string
	Header  http.Header
	Handler SSEHandler

	// Client — HTTP клиент (опционально). Таймаут клиента должен быть 0:
	// поток живёт до отмены ctx.
	Client *http.Client
}

// SSE открывает долгоживущий поток text/event-stream и вызывает
// обработчик на каждое событие.
//
// Конец потока и отмена ctx завершают задачу без ошибки.
// Ошибка соединения или статус не 2xx возвращаются как ErrTransport.
type SSE struct {
	name    string
	url     string
	header  http.Header
	handler SSEHandler
	client  *http.Client
}

// NewSSE создаёт SSE задачу.
func NewSSE(cfg SSEConfig) (*SSE, error) {
	if cfg.Name == "" {
		return nil, invalidConfig("", "name is required")
	}
	if cfg.Handler == nil {
		return nil, invalidConfig(cfg.Name, "handler is required")
	}
	if cfg.URL == "" {
		return nil, invalidConfig(cfg.Name, "url is required")
	}
	if _, err := url.ParseRequestURI(cfg.URL); err != nil {
		return nil, invalidConfig(cfg.Name, fmt.Sprintf("invalid url: %v", err))
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}

	return &SSE{
		name:    cfg.Name,
		url:     cfg.URL,
		header:  cfg.Header.Clone(),
		handler: cfg.Handler,
		client:  client,
	}, nil
}

// Name возвращает имя задачи.
func (s *SSE) Name() string { return s.name }

// URL возвращает адрес потока.
func (s *SSE) URL() string { return s.url }

// Run подключается к потоку и обрабатывает события до его конца или отмены ctx.
func (s *SSE) Run(ctx context.Context) error {
	logger := telemetry.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", ErrTransport, err)
	}
	for key, values := range s.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status %d", ErrTransport, resp.StatusCode)
	}

	logger.Debug("sse stream connected", "url", s.url)

	dec := sse.NewDecoder(resp.Body)
	for {
		ev, err := dec.Next()
		if errors.Is(err, io.EOF) {
			logger.Debug("sse stream ended", "url", s.url)
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("%w: read stream: %v", ErrTransport, err)
		}
		if ctx.Err() != nil {
			return nil
		}

		err = call(ctx, s.name, func(ctx context.Context) error {
			return s.handler(ctx, ev)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("%w: %w", ErrHandlerFailed, err)
		}
	}
}
