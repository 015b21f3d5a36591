package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Server     Server     `yaml:"server"`
	Logger     Logger     `yaml:"logger"`
	PostgresDB PostgresDB `yaml:"db"`
	Auth       Auth       `yaml:"auth"`
	RedisCache RedisCache `yaml:"rdb"`
	Media      Media      `yaml:"media"`
}

type Server struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

type Logger struct {
	Level     string   `yaml:"level"`
	Output    []string `yaml:"output"`
	ErrOutput []string `yaml:"errOutput"`
}

type PostgresDB struct {
	Host           string        `env:"DB_HOST" env-required:"true" yaml:"host"`
	Port           string        `yaml:"port"`
	Username       string        `env:"DB_USER" env-required:"true" yaml:"username"`
	Password       string        `env:"DB_PASS" yaml:"password"`
	DB             string        `env:"DB_NAME" env-required:"true" yaml:"db"`
	SSLmode        string        `yaml:"sslmode"`
	MaxConns       string        `yaml:"maxConns"`
	ConnectTimeout time.Duration `yaml:"connectTimeout"`
	Reload         bool          `yaml:"reload"`
	Version        int           `yaml:"version"`
}

func (p PostgresDB) Addr() string {
	port := p.Port
	if port == "" {
		port = "5432"
	}

	return p.Host + ":" + port
}

type Auth struct {
	TTL    time.Duration `yaml:"ttl"`
	Secret string        `env:"SECRET" env-required:"true" yaml:"secret"`
}

type RedisCache struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	ExpTime  time.Duration `yaml:"exp"`
}

type Media struct {
	Dir            string `yaml:"dir"`
	BaseURL        string `yaml:"baseURL"`
	MaxUploadBytes int64  `yaml:"maxUploadBytes"`
}

func New(configPath string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return Config{}, fmt.Errorf("read config error: %w", err)
	}

	return cfg, nil
}
