package steps

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shaiso/Srota/internal/task"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	maxResponseBody    = 10 * 1024 * 1024 // 10 MB
)

// HTTPConfig — конфигурация HTTP шага.
type HTTPConfig struct {
	// Method (по умолчанию GET).
	Method string
	URL    string
	Header map[string]string

	// Body: string и []byte отправляются как есть, остальное — JSON.
	Body any

	// Timeout на весь запрос (по умолчанию 30s).
	Timeout time.Duration

	NoRedirects        bool
	InsecureSkipVerify bool

	// OnResponse вызывается для успешного ответа (опционально).
	OnResponse func(ctx context.Context, resp *Response) error
}

// Response — разобранный ответ.
type Response struct {
	StatusCode int
	Header     map[string]string

	// Body — распарсенный JSON для application/json, иначе строка.
	Body any
}

// HTTP возвращает шаг, выполняющий запрос по cfg.
func HTTP(cfg HTTPConfig) (task.Step, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: http: url is required", ErrInvalidConfig)
	}
	if _, err := url.ParseRequestURI(cfg.URL); err != nil {
		return nil, fmt.Errorf("%w: http: invalid url: %v", ErrInvalidConfig, err)
	}

	// Метод по умолчанию — GET
	if cfg.Method == "" {
		cfg.Method = http.MethodGet
	}
	cfg.Method = strings.ToUpper(cfg.Method)

	var body []byte
	if cfg.Body != nil {
		b, err := serializeBody(cfg.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: http: serialize body: %v", ErrInvalidConfig, err)
		}
		body = b
	}

	client := buildClient(cfg)

	return func(ctx context.Context) error {
		req, err := buildRequest(ctx, cfg, body)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("http request failed: %w", err)
		}
		defer resp.Body.Close()

		parsed, raw, err := parseResponse(resp)
		if err != nil {
			return err
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Body: raw}
		}

		if cfg.OnResponse != nil {
			return cfg.OnResponse(ctx, parsed)
		}
		return nil
	}, nil
}

// buildClient создаёт HTTP клиент с нужными настройками.
func buildClient(cfg HTTPConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	var checkRedirect func(*http.Request, []*http.Request) error
	if cfg.NoRedirects {
		checkRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify}

	return &http.Client{
		Timeout:       timeout,
		CheckRedirect: checkRedirect,
		Transport:     transport,
	}
}

// buildRequest создаёт HTTP запрос.
func buildRequest(ctx context.Context, cfg HTTPConfig, body []byte) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, cfg.Method, cfg.URL, bodyReader)
	if err != nil {
		return nil, err
	}

	for key, value := range cfg.Header {
		req.Header.Set(key, value)
	}
	// Content-Type по умолчанию для body
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// serializeBody сериализует body в bytes.
func serializeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return json.Marshal(v)
	}
}

// parseResponse читает ответ. Возвращает также сырое тело для HTTPError.
func parseResponse(resp *http.Response) (*Response, string, error) {
	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, "", fmt.Errorf("read response body: %w", err)
	}

	var body any
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(bodyBytes, &body); err != nil {
			// Если не удалось распарсить JSON, возвращаем как строку
			body = string(bodyBytes)
		}
	} else {
		body = string(bodyBytes)
	}

	headers := make(map[string]string, len(resp.Header))
	for key := range resp.Header {
		headers[key] = resp.Header.Get(key)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     headers,
		Body:       body,
	}, string(bodyBytes), nil
}
