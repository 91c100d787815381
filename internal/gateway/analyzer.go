package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// Параметры генерации по умолчанию.
const (
	DefaultMaxNewTokens = 512
)

// AnalyzerConfig настраивает HTTPAnalyzer.
type AnalyzerConfig struct {
	URL          string // адрес модели, например https://api-inference.huggingface.co/models/<model>
	APIKey       string
	MaxNewTokens int
	HTTPClient   *http.Client
}

// HTTPAnalyzer анализирует расшифровку через API генерации текста,
// совместимое с Hugging Face Inference.
type HTTPAnalyzer struct {
	cfg    AnalyzerConfig
	client *http.Client
	cb     *gobreaker.CircuitBreaker
	log    logrus.FieldLogger
}

// NewHTTPAnalyzer создает HTTPAnalyzer.
func NewHTTPAnalyzer(cfg AnalyzerConfig, log logrus.FieldLogger) *HTTPAnalyzer {
	if cfg.MaxNewTokens <= 0 {
		cfg.MaxNewTokens = DefaultMaxNewTokens
	}
	log = log.WithField("component", "Analyzer")
	return &HTTPAnalyzer{
		cfg:    cfg,
		client: newHTTPClient(cfg.HTTPClient),
		cb:     newBreaker("Analyzer", log),
		log:    log,
	}
}

type generationParameters struct {
	MaxNewTokens int  `json:"max_new_tokens"`
	DoSample     bool `json:"do_sample"`
}

type generationRequest struct {
	Inputs     string               `json:"inputs"`
	Parameters generationParameters `json:"parameters"`
}

type generationResult struct {
	GeneratedText string `json:"generated_text"`
}

// Analyze возвращает анализ встречи по ее расшифровке.
func (a *HTTPAnalyzer) Analyze(ctx context.Context, transcript string) (string, error) {
	prompt := BuildMeetingPrompt(transcript)
	body, err := json.Marshal(generationRequest{
		Inputs:     prompt,
		Parameters: generationParameters{MaxNewTokens: a.cfg.MaxNewTokens, DoSample: false},
	})
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации запроса генерации: %w", err)
	}

	return execute(a.cb, func() (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.URL, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("ошибка создания запроса генерации: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if a.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
		}

		resp, err := a.client.Do(req)
		if err != nil {
			return "", fmt.Errorf("ошибка запроса генерации: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return "", statusError(resp)
		}

		var results []generationResult
		if err = json.NewDecoder(resp.Body).Decode(&results); err != nil {
			return "", fmt.Errorf("%w: некорректный JSON: %w", ErrUpstream, err)
		}
		if len(results) == 0 {
			return "", ErrEmptyGeneration
		}

		// Модели с return_full_text возвращают запрос вместе с ответом.
		text := strings.TrimSpace(strings.TrimPrefix(results[0].GeneratedText, prompt))
		a.log.Debugf("Получен анализ длиной %d символов", len(text))
		return text, nil
	})
}

// Ошибки анализа.
var (
	ErrEmptyGeneration = errors.New("сервис генерации вернул пустой ответ")
)
