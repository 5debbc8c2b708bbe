package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Port                  string
	AllowedOrigin         string
	SlotDriver            string
	SlotDSN               string
	SlotNamespace         string
	RedisPassword         string
	RedisDB               int
	LedgerKey             string
	CatalogKey            string
	Timezone              string
	AuthSecret            string
	AccessTokenTTLMinutes int
	OperatorUsername      string
	OperatorPassword      string
	KafkaBrokers          string
	KafkaTopic            string
	LogLevel              string
	LogFormat             string
}

var defaults = map[string]interface{}{
	"PORT":                     "8080",
	"ALLOWED_ORIGIN":           "http://127.0.0.1:3000",
	"SLOT_DRIVER":              "sqlite",
	"SLOT_DSN":                 "billing.db",
	"SLOT_NAMESPACE":           "sps",
	"REDIS_DB":                 0,
	"LEDGER_KEY":               "billRecords",
	"CATALOG_KEY":              "customProducts",
	"TIMEZONE":                 "Asia/Kolkata",
	"ACCESS_TOKEN_TTL_MINUTES": 480,
	"OPERATOR_USERNAME":        "sps",
	"KAFKA_TOPIC":              "bills.issued",
	"LOG_LEVEL":                "info",
	"LOG_FORMAT":               "json",
}

// Load reads the environment on top of an optional billing.yaml. configFile
// names the file explicitly; when empty, billing.yaml is looked up in
// CONFIG_DIR and the working directory and may be absent.
func Load(configFile string) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("billing")
		v.SetConfigType("yaml")
		if dir := strings.TrimSpace(os.Getenv("CONFIG_DIR")); dir != "" {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	tokenTTL := v.GetInt("ACCESS_TOKEN_TTL_MINUTES")
	if tokenTTL < 1 {
		tokenTTL = 480
	}
	redisDB := v.GetInt("REDIS_DB")
	if redisDB < 0 {
		redisDB = 0
	}

	return Config{
		Port:                  v.GetString("PORT"),
		AllowedOrigin:         v.GetString("ALLOWED_ORIGIN"),
		SlotDriver:            strings.ToLower(strings.TrimSpace(v.GetString("SLOT_DRIVER"))),
		SlotDSN:               strings.TrimSpace(v.GetString("SLOT_DSN")),
		SlotNamespace:         v.GetString("SLOT_NAMESPACE"),
		RedisPassword:         v.GetString("REDIS_PASSWORD"),
		RedisDB:               redisDB,
		LedgerKey:             v.GetString("LEDGER_KEY"),
		CatalogKey:            v.GetString("CATALOG_KEY"),
		Timezone:              v.GetString("TIMEZONE"),
		AuthSecret:            strings.TrimSpace(v.GetString("AUTH_SECRET")),
		AccessTokenTTLMinutes: tokenTTL,
		OperatorUsername:      strings.TrimSpace(v.GetString("OPERATOR_USERNAME")),
		OperatorPassword:      strings.TrimSpace(v.GetString("OPERATOR_PASSWORD")),
		KafkaBrokers:          strings.TrimSpace(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:            v.GetString("KAFKA_TOPIC"),
		LogLevel:              v.GetString("LOG_LEVEL"),
		LogFormat:             strings.ToLower(v.GetString("LOG_FORMAT")),
	}, nil
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil || c.Timezone == "" {
		return time.UTC
	}
	return loc
}

func (c Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zc zap.Config
	if c.LogFormat == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
