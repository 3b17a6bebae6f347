package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	// Store selects where parsed reports live. Mongo is the default; the
	// SQL backends keep the same document-per-row shape.
	Store struct {
		Driver string `yaml:"driver"` // mongo | mysql | postgres

		// mongo
		URI        string `yaml:"uri"`
		Database   string `yaml:"database"`
		Collection string `yaml:"collection"`

		// mysql / postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"store"`

	OpenAI struct {
		APIKey         string `yaml:"apiKey"`
		Model          string `yaml:"model"`
		MaxTokens      int    `yaml:"maxTokens"`
		ChunkThreshold int    `yaml:"chunkThreshold"`
		ChunkChars     int    `yaml:"chunkChars"`
		ChunkOverlap   int    `yaml:"chunkOverlap"`
	} `yaml:"openai"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Auth struct {
		// tenant → API key; empty map disables auth
		APIKeys map[string]string `yaml:"apiKeys"`
	} `yaml:"auth"`

	RateLimit struct {
		Capacity   int `yaml:"capacity"`
		RefillRate int `yaml:"refillRate"`
	} `yaml:"rateLimit"`
}

// Load baca file config.yaml, lalu override rahasia dari env
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		c.Store.URI = v
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "mongo"
	}
	if c.Store.Database == "" {
		c.Store.Database = "json_db"
	}
}

// Validate enforces the fail-fast startup contract: no API key or store
// target means the process must not come up.
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set (config openai.apiKey or env)")
	}
	switch c.Store.Driver {
	case "mongo":
		if c.Store.URI == "" {
			return fmt.Errorf("MONGO_URI is not set (config store.uri or env)")
		}
	case "mysql", "postgres":
		if c.Store.Host == "" || c.Store.Name == "" {
			return fmt.Errorf("store.host and store.name are required for driver %q", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown store driver %q (mongo, mysql, postgres)", c.Store.Driver)
	}
	return nil
}

// MySQLDSN helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Store.User,
		c.Store.Password,
		c.Store.Host,
		c.Store.Port,
		c.Store.Name,
	)
}

// PostgresDSN helper untuk build DSN Postgres
func (c *Config) PostgresDSN() string {
	ssl := c.Store.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Store.Host,
		c.Store.Port,
		c.Store.User,
		c.Store.Password,
		c.Store.Name,
		ssl,
	)
}
