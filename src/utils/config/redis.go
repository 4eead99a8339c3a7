package config

import (
	"time"

	"github.com/spf13/viper"
)

type Redis struct {
	Enabled  bool
	Port     uint16
	Host     string
	User     string
	Password string
	DB       int

	ClientKey  string
	ClientCert string
	CaCert     string

	// Name of the channel approval events are published to
	ChannelName string

	MinIdleConns    int
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration

	MaxWorkers   int
	MaxQueueSize int

	// Backoff limits for failed publishes
	MaxElapsedTime time.Duration
	MaxInterval    time.Duration
}

func setRedisDefaults() {
	viper.SetDefault("Redis.Enabled", "false")
	viper.SetDefault("Redis.Port", "6379")
	viper.SetDefault("Redis.Host", "127.0.0.1")
	viper.SetDefault("Redis.User", "")
	viper.SetDefault("Redis.Password", "")
	viper.SetDefault("Redis.DB", "0")
	viper.SetDefault("Redis.ChannelName", "intentions:approved")
	viper.SetDefault("Redis.MinIdleConns", "1")
	viper.SetDefault("Redis.MaxIdleConns", "4")
	viper.SetDefault("Redis.MaxOpenConns", "8")
	viper.SetDefault("Redis.ConnMaxIdleTime", "5m")
	viper.SetDefault("Redis.ConnMaxLifetime", "1h")
	viper.SetDefault("Redis.MaxWorkers", "2")
	viper.SetDefault("Redis.MaxQueueSize", "100")
	viper.SetDefault("Redis.MaxElapsedTime", "2m")
	viper.SetDefault("Redis.MaxInterval", "10s")
}
