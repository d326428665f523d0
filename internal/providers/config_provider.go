package providers

import (
	"fcd/internal/structures"
	"fmt"
	"github.com/spf13/viper"
	"path/filepath"
	"strings"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("api.baseUrl", "FCD_API_BASE_URL")
	viper.BindEnv("api.requestsPerMinute", "FCD_API_REQUESTS_PER_MINUTE")
	viper.BindEnv("sync.interval", "FCD_SYNC_INTERVAL")
	viper.BindEnv("logger.level", "FCD_LOG_LEVEL")
	viper.BindEnv("persistence.saveInterval", "FCD_SAVE_INTERVAL")
	viper.BindEnv("cache.enabled", "FCD_CACHE_ENABLED")
	viper.BindEnv("cache.size", "FCD_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "FactionChainDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
