// Package cleanup удаляет временные файлы загрузок, оставшиеся после аварийного завершения.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Значения по умолчанию.
const (
	DefaultSchedule = "@every 10m"
	DefaultMaxAge   = time.Hour
)

// Config настраивает Sweeper.
type Config struct {
	Dir      string        // каталог временных файлов
	Prefix   string        // удаляются только файлы с этим префиксом
	MaxAge   time.Duration // и только старше MaxAge
	Schedule string        // расписание в формате cron или @every
}

// Sweeper по расписанию удаляет устаревшие временные файлы.
type Sweeper struct {
	cfg  Config
	cron *cron.Cron
	now  func() time.Time
	log  logrus.FieldLogger
}

// NewSweeper создает Sweeper и регистрирует задачу в планировщике.
func NewSweeper(cfg Config, log logrus.FieldLogger) (*Sweeper, error) {
	if cfg.Prefix == "" {
		return nil, ErrEmptyPrefix
	}
	if cfg.Dir == "" {
		cfg.Dir = os.TempDir()
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultMaxAge
	}
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}

	log = log.WithField("component", "Sweeper")
	s := &Sweeper{
		cfg:  cfg,
		cron: cron.New(cron.WithLogger(cron.PrintfLogger(log))),
		now:  time.Now,
		log:  log,
	}

	if _, err := s.cron.AddFunc(cfg.Schedule, s.run); err != nil {
		return nil, fmt.Errorf("некорректное расписание очистки %q: %w", cfg.Schedule, err)
	}
	return s, nil
}

// Start запускает планировщик в отдельной горутине.
func (s *Sweeper) Start() {
	s.log.Infof("Очистка %s/%s* запущена по расписанию %s", s.cfg.Dir, s.cfg.Prefix, s.cfg.Schedule)
	s.cron.Start()
}

// Stop останавливает планировщик и ждет завершения текущего прохода.
func (s *Sweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *Sweeper) run() {
	removed, err := s.Sweep()
	if err != nil {
		s.log.Warnf("Ошибка очистки временных файлов: %v", err)
	}
	if removed > 0 {
		s.log.Infof("Удалено устаревших временных файлов: %d", removed)
	}
}

// Sweep выполняет один проход и возвращает число удаленных файлов.
func (s *Sweeper) Sweep() (int, error) {
	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		return 0, fmt.Errorf("ошибка чтения каталога %s: %w", s.cfg.Dir, err)
	}

	cutoff := s.now().Add(-s.cfg.MaxAge)
	removed := 0
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), s.cfg.Prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue // файл мог быть удален запросом
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		err = os.Remove(filepath.Join(s.cfg.Dir, entry.Name()))
		switch {
		case err == nil:
			removed++
		case !errors.Is(err, os.ErrNotExist):
			errs = append(errs, err)
		}
	}
	return removed, errors.Join(errs...)
}

// ErrEmptyPrefix возвращается, если не задан префикс удаляемых файлов.
var ErrEmptyPrefix = errors.New("не задан префикс временных файлов")
