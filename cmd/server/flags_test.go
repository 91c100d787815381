package main

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Вспомогательная функция для сброса флагов между тестами.
func resetFlags() {
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
}

// withArgs подменяет os.Args и сбрасывает флаги на время теста.
func withArgs(t *testing.T, args ...string) {
	t.Helper()
	originalArgs := os.Args
	t.Cleanup(func() { os.Args = originalArgs })
	resetFlags()
	os.Args = append([]string{"cmd"}, args...)
}

// clearEnv убирает переменные конфигурации, заданные в окружении разработчика.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		envServerPort, envDatabaseDSN, envJWTSecret, envTokenTTL, envTLSCertFile, envTLSKeyFile,
		envLogLevel, envLogFormat, envMinioEndpoint, envMinioUseSSL, envRedisAddr,
		envRateLimitRPS, envRateLimitBurst, envSweepMaxAge, envSeedData, envMaxUploadBytes, envTranscriberURL,
	} {
		if value, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { _ = os.Setenv(key, value) })
		}
	}
}

func TestParseFlags(t *testing.T) {
	clearEnv(t)

	t.Run("Все параметры из флагов", func(t *testing.T) {
		withArgs(t, "-port=8080", "-cert-file=cert.pem", "-key-file=key.pem",
			"-database-dsn=postgres://...", "-jwt-secret=s3cret", "-token-ttl=45m", "-seed")

		cfg, err := parseFlags()
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "cert.pem", cfg.CertFile)
		assert.Equal(t, "key.pem", cfg.KeyFile)
		assert.True(t, cfg.TLSEnabled())
		assert.Equal(t, "postgres://...", cfg.DatabaseDSN)
		assert.Equal(t, "s3cret", cfg.JWTSecret)
		assert.Equal(t, 45*time.Minute, cfg.TokenTTL)
		assert.True(t, cfg.Seed)
	})

	t.Run("Все параметры из переменных окружения", func(t *testing.T) {
		withArgs(t)
		t.Setenv(envServerPort, "9090")
		t.Setenv(envDatabaseDSN, "env_postgres://...")
		t.Setenv(envJWTSecret, "env-secret")
		t.Setenv(envTokenTTL, "10m")
		t.Setenv(envMinioUseSSL, "true")
		t.Setenv(envRateLimitRPS, "2.5")
		t.Setenv(envSeedData, "true")

		cfg, err := parseFlags()
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, "env_postgres://...", cfg.DatabaseDSN)
		assert.Equal(t, "env-secret", cfg.JWTSecret)
		assert.Equal(t, 10*time.Minute, cfg.TokenTTL)
		assert.True(t, cfg.MinioUseSSL)
		assert.InEpsilon(t, 2.5, cfg.RateLimitRPS, 1e-9)
		assert.True(t, cfg.Seed)
		assert.False(t, cfg.TLSEnabled())
	})

	t.Run("Флаг важнее переменной окружения", func(t *testing.T) {
		withArgs(t, "-port=7070", "-database-dsn=flag-dsn", "-jwt-secret=x")
		t.Setenv(envServerPort, "9090")

		cfg, err := parseFlags()
		require.NoError(t, err)
		assert.Equal(t, "7070", cfg.Port)
	})

	t.Run("Значения по умолчанию", func(t *testing.T) {
		withArgs(t, "-database-dsn=postgres://...", "-jwt-secret=x")

		cfg, err := parseFlags()
		require.NoError(t, err)
		assert.Equal(t, defaultServerPort, cfg.Port)
		assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, defaultTranscriberURL, cfg.TranscriberURL)
		assert.Empty(t, cfg.MinioEndpoint)
		assert.Empty(t, cfg.RedisAddr)
		assert.False(t, cfg.Seed)
	})

	errorCases := []struct {
		name string
		args []string
		env  map[string]string
		want string
	}{
		{
			name: "Ошибка: Нет DSN",
			args: []string{"-jwt-secret=x"},
			want: "не указана строка подключения к БД",
		},
		{
			name: "Ошибка: Нет секрета",
			args: []string{"-database-dsn=postgres://..."},
			want: "не указан секрет токенов",
		},
		{
			name: "Ошибка: Нулевой TTL",
			args: []string{"-database-dsn=postgres://...", "-jwt-secret=x", "-token-ttl=0s"},
			want: "время жизни токена должно быть положительным",
		},
		{
			name: "Ошибка: Сертификат без ключа",
			args: []string{"-database-dsn=postgres://...", "-jwt-secret=x", "-cert-file=cert.pem"},
			want: "сертификат и ключ TLS задаются только вместе",
		},
		{
			name: "Ошибка: Некорректная длительность в окружении",
			args: []string{"-database-dsn=postgres://...", "-jwt-secret=x"},
			env:  map[string]string{envTokenTTL: "полчаса"},
			want: "некорректное значение " + envTokenTTL,
		},
		{
			name: "Ошибка: Нулевой burst при включенном Redis",
			args: []string{"-database-dsn=postgres://...", "-jwt-secret=x", "-redis-addr=localhost:6379", "-rate-limit-burst=0"},
			want: "параметры ограничения частоты должны быть положительными",
		},
	}

	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			withArgs(t, tc.args...)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := parseFlags()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
