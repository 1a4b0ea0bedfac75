package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseDSN string
	Env         string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

// Load 从环境变量加载配置，支持可选的 .env 文件，缺省值适用于本地开发。
func Load() Config {
	_ = godotenv.Load()
	port := getenv("APP_PORT", "4000")
	dsn := getenv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=chat port=5432 sslmode=disable TimeZone=UTC")
	env := getenv("APP_ENV", "dev")
	return Config{
		Port:        port,
		DatabaseDSN: dsn,
		Env:         env,
	}
}

// Validate 校验配置是否完整，启动前调用。
func Validate(cfg Config) error {
	if cfg.Port == "" {
		return errors.New("config: empty port")
	}
	if cfg.DatabaseDSN == "" {
		return errors.New("config: empty database dsn")
	}
	return nil
}
