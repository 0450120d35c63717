package configuration

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/transapp/opct/pkg/logging"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		panic(err)
	}
	return c
})

// Use returns the process-wide configuration, loading it on first call.
func Use() *Configuration {
	return singleton()
}

type DatabaseOptions struct {
	Name     string `env:"DB_NAME" envDefault:"opct"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

type UploadOptions struct {
	Dir string `env:"UPLOADS_DIR" envDefault:"uploads"`
	// MaxFileSize is the per-file cap in bytes. Defaults to 300MB,
	// matching the message attachment limit.
	MaxFileSize int64 `env:"UPLOADS_MAX_FILE_SIZE" envDefault:"314572800"`
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type Configuration struct {
	Database   DatabaseOptions
	Uploads    UploadOptions
	Prometheus PrometheusOptions

	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"local"`
	SocketAddress    string `env:"SOCKET_ADDRESS" envDefault:":8080"`
	Origin           string `env:"ORIGIN" envDefault:"http://localhost:8080"`
	AllowedOrigins   []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	SessionDuration  string `env:"SESSION_DURATION" envDefault:"720h"`
	RequestIDHeader  string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
	RealIPHeader     string `env:"REAL_IP_HEADER" envDefault:"X-Real-IP"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON          bool   `env:"LOG_JSON" envDefault:"false"`

	logger *logrus.Logger
}

func (c *Configuration) load(envFiles []string) error {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return err
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}
	c.logger = logging.NewLogger(c.LogLevel, c.LogJSON || c.GoAppEnvironment == Production)
	return nil
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

// SessionLifetime parses SESSION_DURATION, falling back to 30 days on
// malformed input.
func (c *Configuration) SessionLifetime() time.Duration {
	d, err := time.ParseDuration(c.SessionDuration)
	if err != nil || d <= 0 {
		return 720 * time.Hour
	}
	return d
}
