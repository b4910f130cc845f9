// Copyright 2025 Radio Room Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type ConsoleConfig struct {
	EnableNLP   bool `yaml:"enable_nlp"`
	HistorySize int  `yaml:"history_size"`
}

type LoggingConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Console ConsoleConfig `yaml:"console"`
	Logging LoggingConfig `yaml:"logging"`
}

var defaultConfig = Config{
	Server: ServerConfig{
		BaseURL:        "http://localhost:8650",
		TimeoutSeconds: 10,
	},
	Console: ConsoleConfig{
		EnableNLP:   true,
		HistorySize: 50,
	},
	Logging: LoggingConfig{
		File:  "~/.cadline.log",
		Level: "info",
	},
}

func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// LoadConfig reads ~/.cadline.yaml. Any failure falls back to defaults so
// the console always starts; a broken config file is never fatal.
func LoadConfig() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return &defaultConfig, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &defaultConfig, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return &defaultConfig, nil
	}

	config := defaultConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return &defaultConfig, nil
	}

	return &config, nil
}

func getConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".cadline.yaml"), nil
}

// expandHome resolves a leading ~/ against the user's home directory.
func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, path[2:])
}

func createDefaultConfigFile() error {
	configPath, err := getConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %v", err)
	}

	data, err := yaml.Marshal(&defaultConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %v", err)
	}

	err = os.WriteFile(configPath, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}

	return nil
}

func displaySettings() {
	configPath, err := getConfigPath()
	if err != nil {
		fmt.Printf("❌ Failed to get config path: %v\n", err)
		return
	}

	config, err := LoadConfig()
	if err != nil {
		fmt.Printf("❌ Failed to load configuration: %v\n", err)
		return
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf("📝 Configuration file not found. Creating default configuration...\n\n")

		if err := createDefaultConfigFile(); err != nil {
			fmt.Printf("❌ Failed to create default config file: %v\n", err)
			return
		}
		fmt.Printf("✅ Created default configuration at: %s\n\n", configPath)
	}

	fmt.Printf("🔧 Cadline Configuration\n")
	fmt.Printf("═══════════════════════════\n\n")
	fmt.Printf("📍 Config file: %s\n\n", configPath)

	fmt.Printf("  %sserver.base_url%s:        %s\n", Green, Reset, config.Server.BaseURL)
	apiKey := "(not set)"
	if config.Server.APIKey != "" {
		apiKey = "(set)"
	}
	fmt.Printf("  %sserver.api_key%s:         %s\n", Green, Reset, apiKey)
	fmt.Printf("  %sserver.timeout_seconds%s: %d\n\n", Green, Reset, config.Server.TimeoutSeconds)

	fmt.Printf("  %sconsole.enable_nlp%s:     %v\n", Green, Reset, config.Console.EnableNLP)
	fmt.Printf("  %sconsole.history_size%s:   %d\n\n", Green, Reset, config.Console.HistorySize)

	fmt.Printf("  %slogging.file%s:           %s\n", Green, Reset, config.Logging.File)
	fmt.Printf("  %slogging.level%s:          %s\n\n", Green, Reset, config.Logging.Level)

	if !config.Console.EnableNLP {
		fmt.Printf("💡 Conversational input is disabled. To enable it, edit %s:\n", configPath)
		fmt.Printf("   console:\n     enable_nlp: true\n")
	}
}
