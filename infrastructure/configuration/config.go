package configuration

import (
	"fmt"
	"os"

	"vendor-portal/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	Shopify     Shopify     `json:"shopify"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
	Logger      Logger      `json:"logger"`
	Publish     Publish     `json:"publish"`
}

type App struct {
	Port      int    `json:"port"`
	SecretKey string `json:"secretKey"`
}

type Database struct {
	Psql  Db `json:"psql"`
	Mongo Db `json:"mongo"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type RedisClient struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Password     string `json:"password"`
	DatabaseName string `json:"databaseName"`
	Username     string `json:"username"`
}

// Shopify holds the storefront connection: the shop this deployment publishes
// to plus the app client identity used for token exchange.
type Shopify struct {
	ShopDomain   string `json:"shopDomain"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	APIVersion   string `json:"apiVersion"`
	RedirectURI  string `json:"redirectURI"`
}

type Pubsub struct {
	ProjectID string `json:"projectID"`
	Topic     string `json:"topic"`
}

type ServiceBus struct {
	Namespace string `json:"namespace"`
	Queue     string `json:"queue"`
}

type Logger struct {
	Format string `json:"format"`
}

// Publish holds tuning for the catalog publishing pipeline.
type Publish struct {
	RetryIntervalSeconds int `json:"retryIntervalSeconds"`
	RetryBatchSize       int `json:"retryBatchSize"`
	UploadRatePerMinute  int `json:"uploadRatePerMinute"`
}

var C Config

func init() {
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	initShopify(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	if C.Database.Psql.Name == "" {
		C.Database.Psql.Name = os.Getenv("DB_NAME")
	}
	if C.Database.Psql.Host == "" {
		C.Database.Psql.Host = os.Getenv("DB_HOST")
	}
	if C.Database.Psql.User == "" {
		C.Database.Psql.User = os.Getenv("DB_USER")
	}
	if C.Database.Psql.Password == "" {
		C.Database.Psql.Password = os.Getenv("DB_PASSWORD")
	}
	if C.Database.Psql.Port == "" {
		C.Database.Psql.Port = os.Getenv("DB_PORT")
	}
	if C.Database.Psql.Port == "" {
		C.Database.Psql.Port = "5432"
	}
}

func initApp(C *Config) {
	// SECRET_KEY from environment overrides the config file when provided.
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}
	if C.Publish.RetryIntervalSeconds == 0 {
		C.Publish.RetryIntervalSeconds = 60
	}
	if C.Publish.RetryBatchSize == 0 {
		C.Publish.RetryBatchSize = 10
	}
	if C.Publish.UploadRatePerMinute == 0 {
		C.Publish.UploadRatePerMinute = 40
	}
}

func initShopify(C *Config) {
	if v := os.Getenv("SHOPIFY_SHOP_DOMAIN"); v != "" {
		C.Shopify.ShopDomain = v
	}
	if v := os.Getenv("SHOPIFY_CLIENT_ID"); v != "" {
		C.Shopify.ClientID = v
	}
	if v := os.Getenv("SHOPIFY_CLIENT_SECRET"); v != "" {
		C.Shopify.ClientSecret = v
	}
	if v := os.Getenv("SHOPIFY_API_VERSION"); v != "" {
		C.Shopify.APIVersion = v
	}
	if C.Shopify.APIVersion == "" {
		C.Shopify.APIVersion = "2024-10"
	}
	if C.Shopify.RedirectURI == "" {
		C.Shopify.RedirectURI = fmt.Sprintf("http://localhost:%d/auth/shopify/callback", C.App.Port)
	}
}
