package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Abdox72/ITZone/internal/cleanup"
	"github.com/Abdox72/ITZone/internal/handlers"
	"github.com/Abdox72/ITZone/internal/logging"
	"github.com/Abdox72/ITZone/internal/services"
)

const (
	defaultServerPort      = "8000"
	defaultTranscriberURL  = "https://api.assemblyai.com"
	defaultAnalyzerURL     = "https://api-inference.huggingface.co/models/Qwen/Qwen1.5-1.8B-Chat"
	defaultMinioBucket     = "itzone-reports"
	defaultRateLimitRPS    = 5
	defaultRateLimitBurst  = 20
	defaultTranscriberLang = "ar"

	// Переменные окружения.
	envServerPort      = "SERVER_PORT"
	envDatabaseDSN     = "DATABASE_DSN"
	envJWTSecret       = "JWT_SECRET" //nolint:gosec // Это имя переменной окружения
	envTokenTTL        = "ACCESS_TOKEN_TTL"
	envTLSCertFile     = "TLS_CERT_FILE"
	envTLSKeyFile      = "TLS_KEY_FILE"
	envLogLevel        = "LOG_LEVEL"
	envLogFormat       = "LOG_FORMAT"
	envMinioEndpoint   = "MINIO_ENDPOINT"
	envMinioUser       = "MINIO_USER"
	envMinioPassword   = "MINIO_PASSWORD" //nolint:gosec // Это имя переменной окружения
	envMinioBucket     = "MINIO_BUCKET"
	envMinioUseSSL     = "MINIO_USE_SSL"
	envTranscriberURL  = "TRANSCRIBER_URL"
	envTranscriberKey  = "TRANSCRIBER_API_KEY"
	envTranscriberLang = "TRANSCRIBER_LANGUAGE"
	envAnalyzerURL     = "ANALYZER_URL"
	envAnalyzerKey     = "ANALYZER_API_KEY"
	envRedisAddr       = "REDIS_ADDR"
	envRateLimitRPS    = "RATE_LIMIT_RPS"
	envRateLimitBurst  = "RATE_LIMIT_BURST"
	envUploadDir       = "UPLOAD_DIR"
	envMaxUploadBytes  = "MAX_UPLOAD_BYTES"
	envSweepSchedule   = "SWEEP_SCHEDULE"
	envSweepMaxAge     = "SWEEP_MAX_AGE"
	envSeedData        = "SEED_DATA"
)

// config хранит конфигурацию сервера.
type config struct {
	Port        string
	DatabaseDSN string
	JWTSecret   string
	TokenTTL    time.Duration
	CertFile    string
	KeyFile     string
	LogLevel    string
	LogFormat   string

	MinioEndpoint string
	MinioUser     string
	MinioPassword string
	MinioBucket   string
	MinioUseSSL   bool

	TranscriberURL  string
	TranscriberKey  string
	TranscriberLang string
	AnalyzerURL     string
	AnalyzerKey     string

	RedisAddr      string
	RateLimitRPS   float64
	RateLimitBurst int

	UploadDir      string
	MaxUploadBytes int64
	SweepSchedule  string
	SweepMaxAge    time.Duration

	Seed bool
}

// TLSEnabled сообщает, заданы ли сертификат и ключ.
func (c *config) TLSEnabled() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

// parseFlags разбирает флаги и переменные окружения, возвращает config или ошибку.
// Явно заданный флаг важнее переменной окружения, переменная окружения важнее значения по умолчанию.
func parseFlags() (*config, error) {
	cfg := &config{}
	fs := flag.CommandLine

	// Таблица флаг -> переменная окружения
	envByFlag := map[string]string{}
	bind := func(name, env string) string {
		envByFlag[name] = env
		return name
	}

	fs.StringVar(&cfg.Port, bind("port", envServerPort), defaultServerPort,
		fmt.Sprintf("Порт HTTP(S)-сервера (env: %s)", envServerPort))
	fs.StringVar(&cfg.DatabaseDSN, bind("database-dsn", envDatabaseDSN), "",
		fmt.Sprintf("Строка подключения к базе данных (env: %s)", envDatabaseDSN))
	fs.StringVar(&cfg.JWTSecret, bind("jwt-secret", envJWTSecret), "",
		fmt.Sprintf("Секрет подписи токенов доступа (env: %s)", envJWTSecret))
	fs.DurationVar(&cfg.TokenTTL, bind("token-ttl", envTokenTTL), services.DefaultAccessTokenTTL,
		fmt.Sprintf("Время жизни токена доступа (env: %s)", envTokenTTL))
	fs.StringVar(&cfg.CertFile, bind("cert-file", envTLSCertFile), "",
		fmt.Sprintf("Путь к файлу TLS-сертификата (env: %s)", envTLSCertFile))
	fs.StringVar(&cfg.KeyFile, bind("key-file", envTLSKeyFile), "",
		fmt.Sprintf("Путь к файлу TLS-ключа (env: %s)", envTLSKeyFile))
	fs.StringVar(&cfg.LogLevel, bind("log-level", envLogLevel), "info",
		fmt.Sprintf("Уровень логирования (env: %s)", envLogLevel))
	fs.StringVar(&cfg.LogFormat, bind("log-format", envLogFormat), logging.FormatJSON,
		fmt.Sprintf("Формат логов: json или text (env: %s)", envLogFormat))

	fs.StringVar(&cfg.MinioEndpoint, bind("minio-endpoint", envMinioEndpoint), "",
		fmt.Sprintf("Адрес MinIO, пусто - архив отчетов отключен (env: %s)", envMinioEndpoint))
	fs.StringVar(&cfg.MinioUser, bind("minio-user", envMinioUser), "",
		fmt.Sprintf("Access key MinIO (env: %s)", envMinioUser))
	fs.StringVar(&cfg.MinioPassword, bind("minio-password", envMinioPassword), "",
		fmt.Sprintf("Secret key MinIO (env: %s)", envMinioPassword))
	fs.StringVar(&cfg.MinioBucket, bind("minio-bucket", envMinioBucket), defaultMinioBucket,
		fmt.Sprintf("Бакет архива отчетов (env: %s)", envMinioBucket))
	fs.BoolVar(&cfg.MinioUseSSL, bind("minio-use-ssl", envMinioUseSSL), false,
		fmt.Sprintf("Подключаться к MinIO по TLS (env: %s)", envMinioUseSSL))

	fs.StringVar(&cfg.TranscriberURL, bind("transcriber-url", envTranscriberURL), defaultTranscriberURL,
		fmt.Sprintf("Базовый адрес API расшифровки (env: %s)", envTranscriberURL))
	fs.StringVar(&cfg.TranscriberKey, bind("transcriber-api-key", envTranscriberKey), "",
		fmt.Sprintf("Ключ API расшифровки (env: %s)", envTranscriberKey))
	fs.StringVar(&cfg.TranscriberLang, bind("transcriber-language", envTranscriberLang), defaultTranscriberLang,
		fmt.Sprintf("Язык расшифровки (env: %s)", envTranscriberLang))
	fs.StringVar(&cfg.AnalyzerURL, bind("analyzer-url", envAnalyzerURL), defaultAnalyzerURL,
		fmt.Sprintf("Адрес модели анализа (env: %s)", envAnalyzerURL))
	fs.StringVar(&cfg.AnalyzerKey, bind("analyzer-api-key", envAnalyzerKey), "",
		fmt.Sprintf("Ключ API модели анализа (env: %s)", envAnalyzerKey))

	fs.StringVar(&cfg.RedisAddr, bind("redis-addr", envRedisAddr), "",
		fmt.Sprintf("Адрес Redis, пусто - ограничение частоты отключено (env: %s)", envRedisAddr))
	fs.Float64Var(&cfg.RateLimitRPS, bind("rate-limit-rps", envRateLimitRPS), defaultRateLimitRPS,
		fmt.Sprintf("Средняя частота запросов с одного IP (env: %s)", envRateLimitRPS))
	fs.IntVar(&cfg.RateLimitBurst, bind("rate-limit-burst", envRateLimitBurst), defaultRateLimitBurst,
		fmt.Sprintf("Допустимый всплеск запросов с одного IP (env: %s)", envRateLimitBurst))

	fs.StringVar(&cfg.UploadDir, bind("upload-dir", envUploadDir), os.TempDir(),
		fmt.Sprintf("Каталог временных файлов загрузок (env: %s)", envUploadDir))
	fs.Int64Var(&cfg.MaxUploadBytes, bind("max-upload-bytes", envMaxUploadBytes), handlers.DefaultMaxUploadBytes,
		fmt.Sprintf("Максимальный размер загрузки в байтах (env: %s)", envMaxUploadBytes))
	fs.StringVar(&cfg.SweepSchedule, bind("sweep-schedule", envSweepSchedule), cleanup.DefaultSchedule,
		fmt.Sprintf("Расписание очистки временных файлов (env: %s)", envSweepSchedule))
	fs.DurationVar(&cfg.SweepMaxAge, bind("sweep-max-age", envSweepMaxAge), cleanup.DefaultMaxAge,
		fmt.Sprintf("Возраст, после которого временный файл удаляется (env: %s)", envSweepMaxAge))

	fs.BoolVar(&cfg.Seed, bind("seed", envSeedData), false,
		fmt.Sprintf("Заполнить пустую БД демонстрационными данными (env: %s)", envSeedData))

	// Парсим флаги
	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, err
	}

	// Применяем переменные окружения для флагов, не заданных явно
	explicit := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	for name, env := range envByFlag {
		if explicit[name] {
			continue
		}
		if value, ok := os.LookupEnv(env); ok {
			if err := fs.Set(name, value); err != nil {
				return nil, fmt.Errorf("некорректное значение %s=%q: %w", env, value, err)
			}
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate проверяет обязательные и взаимосвязанные параметры.
func (c *config) validate() error {
	if c.DatabaseDSN == "" {
		return errors.New("не указана строка подключения к БД (--database-dsn или " + envDatabaseDSN + ")")
	}
	if c.JWTSecret == "" {
		return errors.New("не указан секрет токенов (--jwt-secret или " + envJWTSecret + ")")
	}
	if c.TokenTTL <= 0 {
		return errors.New("время жизни токена должно быть положительным (--token-ttl или " + envTokenTTL + ")")
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		return errors.New("сертификат и ключ TLS задаются только вместе (" + envTLSCertFile + ", " + envTLSKeyFile + ")")
	}
	if c.RedisAddr != "" && (c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0) {
		return errors.New("параметры ограничения частоты должны быть положительными")
	}
	return nil
}
