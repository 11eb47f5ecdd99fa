package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		BaseURL string `yaml:"base_url"`
		PushURL string `yaml:"push_url"`
	} `yaml:"server"`
	Client struct {
		Presenter bool `yaml:"presenter"`
	} `yaml:"client"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Environment overrides for deployment without editing the file.
	config.Server.BaseURL = getEnv("QUIZ_API_URL", config.Server.BaseURL)
	config.Server.PushURL = getEnv("QUIZ_PUSH_URL", config.Server.PushURL)
	config.Log.Level = getEnv("LOG_LEVEL", config.Log.Level)
	if value := os.Getenv("QUIZ_PRESENTER"); value != "" {
		presenter, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid QUIZ_PRESENTER value %q: %w", value, err)
		}
		config.Client.Presenter = presenter
	}

	if config.Server.BaseURL == "" {
		return nil, fmt.Errorf("server.base_url is required")
	}
	if config.Server.PushURL == "" {
		return nil, fmt.Errorf("server.push_url is required")
	}

	return &config, nil
}
