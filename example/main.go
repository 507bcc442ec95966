// FILE: example/main.go
package main

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/lixenwraith/envconfig"
)

// AppConfig represents our application configuration
type AppConfig struct {
	Host    string        `env:",required"`
	Port    int           `toml:"port"`
	Debug   bool          `toml:"debug"`
	Origins []string      `toml:"origins"`
	Timeout time.Duration `toml:"timeout"`
	Token   string        `env:"API_TOKEN"`

	Database struct {
		URL      string `toml:"url"`
		MaxConns int    `toml:"max_conns"`
	} `toml:"database" envPrefix:"DB"`
}

func main() {
	// =========================================================================
	// PART 1: STRUCT BINDING
	// Current field values are the defaults; the environment overrides them.
	// =========================================================================
	log.Println("➡️  PART 1: Binding a struct...")

	os.Setenv("APP_HOST", "0.0.0.0")
	os.Setenv("APP_DEBUG", "False")
	os.Setenv("APP_ORIGINS", `["https://a.example", "https://b.example"]`)
	os.Setenv("DB_URL", "postgres://localhost/app")

	cfg := AppConfig{Port: 8080, Debug: true, Timeout: 5 * time.Second}
	cfg.Database.MaxConns = 10

	if _, err := envconfig.Bind(&cfg, envconfig.WithPrefix("APP")); err != nil {
		log.Fatalf("❌ Bind failed: %v", err)
	}
	log.Printf("✅ host=%s port=%d debug=%t origins=%v timeout=%s",
		cfg.Host, cfg.Port, cfg.Debug, cfg.Origins, cfg.Timeout)
	log.Printf("✅ database url=%s max_conns=%d", cfg.Database.URL, cfg.Database.MaxConns)

	// =========================================================================
	// PART 2: DECLARED SCHEMA RESOLVED PER INSTANCE
	// Each New call re-reads the environment.
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 2: Resolving at instantiation...")

	schema, err := envconfig.NewBuilder("worker").
		WithPrefix("WORKER").
		WithLifecycle(envconfig.AtInstantiation).
		Default("concurrency", envconfig.Int, 4).
		Default("queues", envconfig.SetOf(envconfig.String), envconfig.Set{"default": {}}).
		Variable("secret", envconfig.String, envconfig.NewVariable("WORKER_SECRET_V2",
			envconfig.VarDefault("changeme"))).
		Build()
	if err != nil {
		log.Fatalf("❌ Build failed: %v", err)
	}

	first, err := schema.New()
	if err != nil {
		log.Fatalf("❌ New failed: %v", err)
	}
	os.Setenv("WORKER_CONCURRENCY", "16")
	second, err := schema.New()
	if err != nil {
		log.Fatalf("❌ New failed: %v", err)
	}

	c1, _ := first.Int("concurrency")
	c2, _ := second.Int("concurrency")
	log.Printf("✅ concurrency before=%d after=%d", c1, c2)

	// =========================================================================
	// PART 3: ERRORS
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 3: Classified errors...")

	os.Setenv("LIMIT", "lots")
	_, err = envconfig.NewBuilder("limits").
		Field("limit", envconfig.Int).
		Field("burst", envconfig.Int).
		Build()
	switch {
	case errors.Is(err, envconfig.ErrInvalidValue):
		log.Printf("✅ invalid value reported: %v", err)
	case errors.Is(err, envconfig.ErrMissingValue):
		log.Printf("✅ missing value reported: %v", err)
	default:
		log.Fatalf("❌ unexpected result: %v", err)
	}
}
