// Package gateway содержит HTTP-клиенты внешних сервисов расшифровки и анализа.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// DefaultHTTPTimeout ограничивает один запрос к внешнему сервису.
const DefaultHTTPTimeout = 15 * time.Minute

// maxErrorBody ограничивает часть тела ответа, попадающую в текст ошибки.
const maxErrorBody = 1024

func newBreaker(name string, log logrus.FieldLogger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warnf("CircuitBreaker[%s] состояние изменилось: %s -> %s", name, from, to)
		},
		IsSuccessful: isBreakerSuccess,
	})
}

// isBreakerSuccess не считает отказом сервиса отмену запроса клиентом
// и ошибки конкретного задания при исправно отвечающем сервисе.
func isBreakerSuccess(err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, context.Canceled):
		return true
	case errors.Is(err, ErrTranscriptionJob), errors.Is(err, ErrEmptyGeneration):
		return true
	default:
		return false
	}
}

// execute выполняет fn через breaker и приводит открытое состояние к ErrUnavailable.
func execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %s", ErrUnavailable, cb.Name())
		}
		return zero, err
	}
	return res.(T), nil
}

func newHTTPClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: DefaultHTTPTimeout}
}

// statusError читает начало тела неуспешного ответа.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("%w: статус %d: %s", ErrUpstream, resp.StatusCode, body)
}

// Ошибки внешних сервисов.
var (
	ErrUpstream    = errors.New("внешний сервис вернул ошибку")
	ErrUnavailable = errors.New("внешний сервис временно недоступен")
)
