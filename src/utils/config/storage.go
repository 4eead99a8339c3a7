package config

import (
	"github.com/spf13/viper"
)

type Storage struct {
	// S3 compatible endpoint, host:port
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool

	// Bucket holding both the temp/ and final/ namespaces
	Bucket string

	// Public base URL the rewritten preview links point at, e.g. https://files.dedicart.online
	PublicUrl string
}

func setStorageDefaults() {
	viper.SetDefault("Storage.Endpoint", "127.0.0.1:9000")
	viper.SetDefault("Storage.AccessKey", "")
	viper.SetDefault("Storage.SecretKey", "")
	viper.SetDefault("Storage.UseSSL", "false")
	viper.SetDefault("Storage.Bucket", "dedicart")
	viper.SetDefault("Storage.PublicUrl", "https://files.dedicart.online")
}
