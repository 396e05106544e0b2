package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type HTTP struct {
	Addr              string        `default:":8080" envconfig:"ADDR"`
	GinMode           string        `default:"debug" envconfig:"GIN_MODE"`
	ReadTimeout       time.Duration `default:"10s" envconfig:"READ_TIMEOUT"`
	WriteTimeout      time.Duration `default:"10s" envconfig:"WRITE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `default:"5s" envconfig:"READ_HEADER_TIMEOUT"`
	IdleTimeout       time.Duration `default:"60s" envconfig:"IDLE_TIMEOUT"`
	GracefulTimeout   time.Duration `default:"5s" envconfig:"GRACEFUL_TIMEOUT"`
}

type Tracing struct {
	Enabled     bool    `default:"false" envconfig:"OTEL_ENABLED"`
	ServiceName string  `default:"farmdash" envconfig:"OTEL_SERVICE_NAME"`
	Endpoint    string  `default:"jaeger:4318" envconfig:"OTEL_ENDPOINT"`
	SampleRatio float64 `default:"1" envconfig:"OTEL_SAMPLE_RATIO"`
}

type OrderAPI struct {
	BaseURL string        `default:"http://orders-api:3000/api" envconfig:"BASE_URL"`
	Timeout time.Duration `default:"15s" envconfig:"TIMEOUT"`
}

type Farmer struct {
	ID    string `default:"" envconfig:"ID"`
	Email string `default:"" envconfig:"EMAIL"`
	Name  string `default:"" envconfig:"NAME"`
}

type Sync struct {
	Interval   time.Duration `default:"60s" envconfig:"INTERVAL"`
	RetryMax   int           `default:"3" envconfig:"RETRY_MAX"`
	RetryDelay time.Duration `default:"1s" envconfig:"RETRY_DELAY"`
}

type Cache struct {
	TTL time.Duration `default:"5m" envconfig:"TTL"`
}

type Kafka struct {
	Enabled bool     `default:"false" envconfig:"ENABLED"`
	Brokers []string `default:"kafka:9092" envconfig:"BROKERS"`
	Topic   string   `default:"order-status-events" envconfig:"TOPIC"`
}

type Logger struct {
	IsProd bool `default:"false" envconfig:"IS_PROD"`
}

type Config struct {
	HTTP     HTTP
	Tracing  Tracing
	OrderAPI OrderAPI `envconfig:"ORDERAPI"`
	Farmer   Farmer
	Sync     Sync
	Cache    Cache
	Kafka    Kafka
	Logger   Logger
}

// Load — конфигурация из окружения с префиксом DASH.
func Load() (Config, error) {
	return LoadWithPrefix("DASH")
}

// LoadWithPrefix — то же с произвольным префиксом (для тестов).
func LoadWithPrefix(prefix string) (Config, error) {
	var c Config
	if err := envconfig.Process(prefix, &c); err != nil {
		return Config{}, err
	}
	return c, nil
}
