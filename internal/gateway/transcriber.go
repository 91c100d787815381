package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// Параметры опроса задания по умолчанию.
const (
	DefaultPollInterval = 5 * time.Second
	DefaultMaxPolls     = 30
	DefaultLanguage     = "ar"
)

// TranscriberConfig настраивает HTTPTranscriber.
type TranscriberConfig struct {
	BaseURL      string // например, https://api.assemblyai.com
	APIKey       string
	Language     string
	PollInterval time.Duration
	MaxPolls     uint64
	HTTPClient   *http.Client
}

// HTTPTranscriber расшифровывает аудио через API, совместимое с AssemblyAI:
// загрузка файла, создание задания и опрос до завершения.
type HTTPTranscriber struct {
	cfg    TranscriberConfig
	client *http.Client
	cb     *gobreaker.CircuitBreaker
	log    logrus.FieldLogger
}

// NewHTTPTranscriber создает HTTPTranscriber. Пустые поля cfg заменяются значениями по умолчанию.
func NewHTTPTranscriber(cfg TranscriberConfig, log logrus.FieldLogger) *HTTPTranscriber {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.MaxPolls == 0 {
		cfg.MaxPolls = DefaultMaxPolls
	}
	log = log.WithField("component", "Transcriber")
	return &HTTPTranscriber{
		cfg:    cfg,
		client: newHTTPClient(cfg.HTTPClient),
		cb:     newBreaker("Transcriber", log),
		log:    log,
	}
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type transcriptRequest struct {
	AudioURL     string `json:"audio_url"`
	LanguageCode string `json:"language_code"`
}

type transcriptResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

// Transcribe возвращает текст аудиофайла audioPath.
func (t *HTTPTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	return execute(t.cb, func() (string, error) {
		uploadURL, err := t.upload(ctx, audioPath)
		if err != nil {
			return "", err
		}

		id, err := t.createJob(ctx, uploadURL)
		if err != nil {
			return "", err
		}
		t.log.Infof("Создано задание расшифровки %s", id)

		return t.waitForJob(ctx, id)
	})
}

func (t *HTTPTranscriber) upload(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("ошибка открытия аудиофайла: %w", err)
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.BaseURL+"/v2/upload", f)
	if err != nil {
		return "", fmt.Errorf("ошибка создания запроса загрузки: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	var out uploadResponse
	if err = t.do(req, &out); err != nil {
		return "", fmt.Errorf("ошибка загрузки аудио: %w", err)
	}
	if out.UploadURL == "" {
		return "", fmt.Errorf("%w: в ответе нет upload_url", ErrUpstream)
	}
	return out.UploadURL, nil
}

func (t *HTTPTranscriber) createJob(ctx context.Context, uploadURL string) (string, error) {
	body, err := json.Marshal(transcriptRequest{AudioURL: uploadURL, LanguageCode: t.cfg.Language})
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации задания: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.BaseURL+"/v2/transcript", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ошибка создания запроса задания: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out transcriptResponse
	if err = t.do(req, &out); err != nil {
		return "", fmt.Errorf("ошибка создания задания расшифровки: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("%w: в ответе нет id задания", ErrUpstream)
	}
	return out.ID, nil
}

// waitForJob опрашивает задание с постоянным интервалом, пока оно не завершится.
func (t *HTTPTranscriber) waitForJob(ctx context.Context, id string) (string, error) {
	backoff := retry.WithMaxRetries(t.cfg.MaxPolls-1, retry.NewConstant(t.cfg.PollInterval))

	var text string
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.cfg.BaseURL+"/v2/transcript/"+id, nil)
		if err != nil {
			return err
		}

		var out transcriptResponse
		if err = t.do(req, &out); err != nil {
			t.log.Debugf("Ошибка опроса задания %s: %v", id, err)
			return retry.RetryableError(err)
		}

		switch out.Status {
		case "completed":
			text = out.Text
			return nil
		case "error":
			return fmt.Errorf("%w: %s", ErrTranscriptionJob, out.Error)
		default:
			return retry.RetryableError(errJobPending)
		}
	})
	if errors.Is(err, errJobPending) {
		return "", fmt.Errorf("%w: задание %s", ErrTranscriptionTimeout, id)
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

func (t *HTTPTranscriber) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", t.cfg.APIKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: некорректный JSON: %w", ErrUpstream, err)
	}
	return nil
}

var errJobPending = errors.New("задание еще выполняется")

// Ошибки расшифровки.
var (
	ErrTranscriptionJob     = errors.New("задание расшифровки завершилось с ошибкой")
	ErrTranscriptionTimeout = errors.New("задание расшифровки не завершилось вовремя")
)
