package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	Server struct {
		Port               string   `yaml:"port"`
		Env                string   `yaml:"env"`
		CORSAllowOrigins   []string `yaml:"corsAllowOrigins"`
		RateLimitPerMinute int      `yaml:"rateLimitPerMinute"`
		RateLimitBurst     int      `yaml:"rateLimitBurst"`
		MaxUploadBytes     int      `yaml:"maxUploadBytes"`
	} `yaml:"server"`

	LLM struct {
		Provider       string `yaml:"provider"`
		Model          string `yaml:"model"`
		TimeoutSeconds int    `yaml:"timeoutSeconds"`
		RatePerMinute  int    `yaml:"ratePerMinute"`
		Burst          int    `yaml:"burst"`
	} `yaml:"llm"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	Audit struct {
		DatabaseURL string `yaml:"databaseUrl"`
		SQLitePath  string `yaml:"sqlitePath"`
	} `yaml:"audit"`

	Archive struct {
		Store       string `yaml:"store"`
		LocalDir    string `yaml:"localDir"`
		AWSRegion   string `yaml:"awsRegion"`
		S3Bucket    string `yaml:"s3Bucket"`
		S3Prefix    string `yaml:"s3Prefix"`
		SSEKMSKeyID string `yaml:"sseKmsKeyId"`
	} `yaml:"archive"`

	Events struct {
		QueueURL string `yaml:"queueUrl"`
	} `yaml:"events"`
}

// loadFile reads a YAML config file. API keys are never read from it.
func loadFile(path string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
