package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type ApiConfig struct {
	BaseUrl           string        `yaml:"baseUrl" validate:"required|fullUrl"`
	RequestsPerMinute int           `yaml:"requestsPerMinute" validate:"required|uint|min:1"`
	Timeout           time.Duration `yaml:"timeout"`
	RetryBackoff      time.Duration `yaml:"retryBackoff"`
}

type SyncConfig struct {
	Interval     time.Duration `yaml:"interval" validate:"required|min:1"`
	FeedPageSize int           `yaml:"feedPageSize"`
}

type Persistence struct {
	FilePath     string        `yaml:"filePath" validate:"required|unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type ArchiveConfig struct {
	Dir           string        `yaml:"dir"`
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweepInterval"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	Api         ApiConfig     `yaml:"api"`
	Sync        SyncConfig    `yaml:"sync"`
	WebServer   Server        `yaml:"webServer"`
	Persistence Persistence   `yaml:"persistence"`
	Archive     ArchiveConfig `yaml:"archive"`
	Logger      LoggerConfig  `yaml:"logger"`
	Cache       CacheConfig   `yaml:"cache"`
	Metrics     MetricsConfig `yaml:"metrics"`
}
