package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Auth      OIDCConfig      `mapstructure:"auth"`
	Embed     EmbedConfig     `mapstructure:"embed"`
	Billing   BillingConfig   `mapstructure:"billing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
	Worker    WorkerConfig    `mapstructure:"worker"`
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout    time.Duration `mapstructure:"idleTimeout"`
	ShutdownPeriod time.Duration `mapstructure:"shutdownPeriod"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
	AutoMigrate     bool          `mapstructure:"autoMigrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OIDCConfig points at the hosted identity provider whose access tokens
// the dashboard sends as bearer tokens.
type OIDCConfig struct {
	IssuerURL string `mapstructure:"issuerURL"`
	ClientID  string `mapstructure:"clientID"`
}

type EmbedConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type BillingConfig struct {
	StripeSecretKey string `mapstructure:"stripeSecretKey"`
	WebhookSecret   string `mapstructure:"webhookSecret"`
	BaseURL         string `mapstructure:"baseURL"`
	MonthlyPriceID  string `mapstructure:"monthlyPriceID"`
	YearlyPriceID   string `mapstructure:"yearlyPriceID"`
	MaxFreeProjects int    `mapstructure:"maxFreeProjects"`
}

// PriceIDs lists the plan prices a checkout may be opened for.
func (b BillingConfig) PriceIDs() []string {
	ids := make([]string, 0, 2)
	for _, id := range []string{b.MonthlyPriceID, b.YearlyPriceID} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

type CORSConfig struct {
	DashboardOrigins []string `mapstructure:"dashboardOrigins"`
}

type RateLimitConfig struct {
	// Widget is the per-project rate in ulule/limiter format, e.g. "30-M".
	// Empty disables.
	Widget string `mapstructure:"widget"`
	// WidgetClient is the per-IP rate applied before the embed token is
	// checked. Empty disables.
	WidgetClient string `mapstructure:"widgetClient"`
}

type WorkerConfig struct {
	Concurrency      int    `mapstructure:"concurrency"`
	FreeTierSchedule string `mapstructure:"freeTierSchedule"`
}

func LoadConfig(configPath string) (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables and config file")
	}

	v := viper.New()

	// Keys without a real default still need registering so that
	// Unmarshal picks them up from the environment.
	for _, key := range []string{
		"database.url",
		"redis.password",
		"auth.issuerURL",
		"auth.clientID",
		"embed.secret",
		"billing.stripeSecretKey",
		"billing.webhookSecret",
		"billing.monthlyPriceID",
		"billing.yearlyPriceID",
	} {
		v.SetDefault(key, "")
	}

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.shutdownPeriod", 15*time.Second)

	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 25)
	v.SetDefault("database.connMaxLifetime", 5*time.Minute)
	v.SetDefault("database.autoMigrate", true)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("embed.ttl", time.Hour)

	v.SetDefault("billing.baseURL", "http://localhost:3000")
	v.SetDefault("billing.maxFreeProjects", 3)

	v.SetDefault("cors.dashboardOrigins", []string{"http://localhost:3000"})
	v.SetDefault("rateLimit.widget", "30-M")
	v.SetDefault("rateLimit.widgetClient", "120-M")

	v.SetDefault("worker.concurrency", 10)
	v.SetDefault("worker.freeTierSchedule", "@every 1h")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(true)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			log.Printf("Warning: could not read config file: %s. Error: %v\n", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
