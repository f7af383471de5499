package config

import (
	"errors"
	"flag"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	pkgerrors "github.com/pkg/errors"
)

const (
	defaultRunAddress          = "localhost:8080"
	defaultMigrationsDir       = "internal/db/migrations"
	defaultSettleRatePerMinute = 60
)

var (
	ErrDatabaseDSNNotSet = errors.New("database DSN is not set")
	ErrJWTSecretNotSet   = errors.New("jwt secret is not set")
)

type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	DatabaseDSN   string `env:"DATABASE_URI"`
	MigrationsDir string `env:"MIGRATIONS_DIR"`
	JWTSecret     string `env:"JWT_SECRET"`
	// RedisAddr адрес redis для кеша ответов по Idempotency-Key. Если пусто, кеш отключен.
	RedisAddr string `env:"REDIS_ADDR"`
	// AdminEmail и AdminPassword учетная запись админа, создаваемая при старте. Если пусто, админ не создается.
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	// SettleRatePerMinute ограничение кол-ва проводимых транзакций на пользователя в минуту.
	SettleRatePerMinute int `env:"SETTLE_RATE_PER_MINUTE"`
	// LogFile файл для дублирования логов (с ротацией). Если пусто, логи пишутся только в stdout.
	LogFile string `env:"LOG_FILE"`
}

// LoadConfig загружает конфигурацию из переменных окружения и флагов командной строки. Переменные окружения
// имеют приоритет. Если в рабочей директории есть файл .env, переменные из него добавляются в окружение.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, pkgerrors.Wrap(err, "load .env file")
	}
	return load(os.Args[1:])
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return config
}

func load(args []string) (*Config, error) {
	var envConfig Config
	if envParseErr := env.Parse(&envConfig); envParseErr != nil {
		return nil, pkgerrors.Wrap(envParseErr, "parse env config")
	}

	flagsConfig, flagsErr := loadFlags(args)
	if flagsErr != nil {
		return nil, flagsErr
	}

	conf := mergeConfig(&envConfig, flagsConfig)
	if conf.DatabaseDSN == "" {
		return nil, ErrDatabaseDSNNotSet
	}
	if conf.JWTSecret == "" {
		return nil, ErrJWTSecretNotSet
	}
	return conf, nil
}

func loadFlags(args []string) (*Config, error) {
	var flagConfig Config
	fl := flag.NewFlagSet("points", flag.ContinueOnError)

	fl.StringVar(&flagConfig.RunAddress, "a", defaultRunAddress, "Run address in format host:port")
	fl.StringVar(&flagConfig.DatabaseDSN, "d", "", "Database DSN")
	fl.StringVar(&flagConfig.MigrationsDir, "m", defaultMigrationsDir, "Database migrations directory")
	fl.StringVar(&flagConfig.JWTSecret, "j", "", "JWT secret key")
	fl.StringVar(&flagConfig.RedisAddr, "r", "", "Redis address in format host:port")
	fl.IntVar(&flagConfig.SettleRatePerMinute, "l", defaultSettleRatePerMinute,
		"Transactions per minute allowed for one user")
	fl.StringVar(&flagConfig.LogFile, "log-file", "", "Duplicate logs to this file")

	if err := fl.Parse(args); err != nil {
		return nil, pkgerrors.Wrap(err, "parse flags")
	}
	return &flagConfig, nil
}

func mergeConfig(envConfig, flagsConfig *Config) *Config {
	return &Config{
		RunAddress:          defaultIfBlank(envConfig.RunAddress, flagsConfig.RunAddress),
		DatabaseDSN:         defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN),
		MigrationsDir:       defaultIfBlank(envConfig.MigrationsDir, flagsConfig.MigrationsDir),
		JWTSecret:           defaultIfBlank(envConfig.JWTSecret, flagsConfig.JWTSecret),
		RedisAddr:           defaultIfBlank(envConfig.RedisAddr, flagsConfig.RedisAddr),
		AdminEmail:          envConfig.AdminEmail,
		AdminPassword:       envConfig.AdminPassword,
		SettleRatePerMinute: defaultIfBlank(envConfig.SettleRatePerMinute, flagsConfig.SettleRatePerMinute),
		LogFile:             defaultIfBlank(envConfig.LogFile, flagsConfig.LogFile),
	}
}

func defaultIfBlank[T comparable](value T, defaultValue T) T {
	var zero T
	if value == zero {
		return defaultValue
	}
	return value
}
