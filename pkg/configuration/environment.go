package configuration

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/iota-uz/utils/fs"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/utilization/pkg/logging"
)

const (
	Production = "production"

	MaxImportBatchSize = 100
)

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

// LoadEnv loads the env files that exist in the working directory, or else in the
// nearest parent directory holding a go.mod.
func LoadEnv(envFiles []string) (int, error) {
	existing := existingFiles("", envFiles)
	if len(existing) == 0 {
		if root := moduleRoot(); root != "" {
			existing = existingFiles(root, envFiles)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

func existingFiles(dir string, envFiles []string) []string {
	out := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		p := file
		if dir != "" {
			p = filepath.Join(dir, file)
		}
		if fs.FileExists(p) {
			out = append(out, p)
		}
	}
	return out
}

func moduleRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if fs.FileExists(filepath.Join(dir, "go.mod")) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

type DatabaseOptions struct {
	Opts     string `env:"-"`
	Name     string `env:"DB_NAME" envDefault:"utilization"`
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

type QueueOptions struct {
	// RedisURL is a redis:// or rediss:// URL, or a bare host:port.
	RedisURL    string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	Key         string        `env:"UPLOAD_QUEUE_KEY" envDefault:"utilization:object-finalized"`
	PollTimeout time.Duration `env:"UPLOAD_QUEUE_POLL_TIMEOUT" envDefault:"5s"`
}

// RedisOptions parses RedisURL into client options.
func (o *QueueOptions) RedisOptions() (*redis.Options, error) {
	raw := strings.TrimSpace(o.RedisURL)
	if raw == "" {
		return nil, fmt.Errorf("REDIS_URL must not be empty")
	}
	if !strings.Contains(raw, "://") {
		return &redis.Options{Addr: raw}, nil
	}
	opts, err := redis.ParseURL(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	return opts, nil
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type ImportOptions struct {
	// BatchSize is the number of entry documents committed per write batch.
	BatchSize       int    `env:"IMPORT_BATCH_SIZE" envDefault:"100"`
	SuggestionLimit int    `env:"IMPORT_SUGGESTION_LIMIT" envDefault:"3"`
	FormatsFile     string `env:"IMPORT_FORMATS_FILE"`
}

// Validate checks the import configuration for errors
func (o *ImportOptions) Validate() error {
	if o.BatchSize < 1 || o.BatchSize > MaxImportBatchSize {
		return fmt.Errorf("IMPORT_BATCH_SIZE must be within 1..%d, got %d", MaxImportBatchSize, o.BatchSize)
	}
	if o.SuggestionLimit < 0 {
		return fmt.Errorf("IMPORT_SUGGESTION_LIMIT must be non-negative, got %d", o.SuggestionLimit)
	}
	if o.FormatsFile != "" && !fs.FileExists(o.FormatsFile) {
		return fmt.Errorf("IMPORT_FORMATS_FILE %q does not exist", o.FormatsFile)
	}
	return nil
}

type Configuration struct {
	Database   DatabaseOptions
	Queue      QueueOptions
	Prometheus PrometheusOptions
	Import     ImportOptions

	// DocStore selects the document store backend (postgres or memory).
	DocStore         string `env:"DOCSTORE" envDefault:"postgres"`
	BlobRoot         string `env:"BLOB_ROOT" envDefault:"./data/blobs"`
	BlobBucket       string `env:"BLOB_BUCKET" envDefault:"utilization-uploads"`
	ServerPort       int    `env:"PORT" envDefault:"3200"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress    string `env:"-"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"error"`
	LogPath          string `env:"LOG_PATH" envDefault:"./logs/app.log"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

func Use() *Configuration {
	return singleton()
}

// Load reads configuration from the given env files and the process environment.
// Binaries use Use; tests call Load directly.
func Load(envFiles []string) (*Configuration, error) {
	c := &Configuration{}
	if err := c.load(envFiles); err != nil {
		c.Unload()
		return nil, err
	}
	return c, nil
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}

	if err := c.Import.Validate(); err != nil {
		return fmt.Errorf("import configuration error: %w", err)
	}
	if _, err := c.Queue.RedisOptions(); err != nil {
		return err
	}
	if err := c.validateDocStore(); err != nil {
		return err
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger

	c.Database.Opts = c.Database.ConnectionString()
	if c.GoAppEnvironment == Production {
		c.SocketAddress = fmt.Sprintf(":%d", c.ServerPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}
	return nil
}

func (c *Configuration) validateDocStore() error {
	backend := strings.ToLower(strings.TrimSpace(c.DocStore))
	if backend == "" {
		backend = "postgres"
	}
	switch backend {
	case "postgres", "memory":
	default:
		return fmt.Errorf("invalid DOCSTORE=%q (expected postgres|memory)", c.DocStore)
	}
	c.DocStore = backend
	return nil
}

// Unload handles a graceful shutdown.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
