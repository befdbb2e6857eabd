package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// GlobalConfig is the CLI state stored in config.json.
type GlobalConfig struct {
	UserID    string `json:"user_id"`
	APIURL    string `json:"api_url"`
	SessionID string `json:"session_id,omitempty"`
}

var (
	getConfigDirFunc  = defaultGetConfigDir
	getConfigPathFunc = defaultGetConfigPath
)

func defaultGetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "kozi"), nil
}

func defaultGetConfigPath() (string, error) {
	configDir, err := getConfigDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetConfigDir returns the platform-specific configuration directory
func GetConfigDir() (string, error) {
	return getConfigDirFunc()
}

// GetConfigPath returns the full path to the config.json file
func GetConfigPath() (string, error) {
	return getConfigPathFunc()
}

// LoadGlobalConfig reads and parses the global config.json file
// Returns nil config (not error) if file doesn't exist
func LoadGlobalConfig() (*GlobalConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config GlobalConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveGlobalConfig writes the config to config.json with 0600 permissions
func SaveGlobalConfig(config *GlobalConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DeleteGlobalConfig removes the config.json file
func DeleteGlobalConfig() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.Remove(configPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete config file: %w", err)
	}

	return nil
}

// updateSession records the active session id in the global config, keeping
// the rest of it. An empty id clears the session.
func updateSession(sessionID string) error {
	config, err := LoadGlobalConfig()
	if err != nil {
		return err
	}
	if config == nil {
		config = &GlobalConfig{}
	}
	config.SessionID = sessionID
	return SaveGlobalConfig(config)
}

// CredentialSource represents where credentials came from
type CredentialSource string

const (
	SourceFlag         CredentialSource = "flag"
	SourceEnv          CredentialSource = "env"
	SourceGlobalConfig CredentialSource = "global_config"
	SourceNone         CredentialSource = "none"
)

// GetCredentialSource returns where the user id comes from.
// Checks in order: flag -> env -> global_config -> none
func GetCredentialSource(flagUserID string) (CredentialSource, string) {
	if flagUserID != "" {
		return SourceFlag, flagUserID
	}

	if envUserID := os.Getenv(envUserID); envUserID != "" {
		return SourceEnv, envUserID
	}

	config, err := LoadGlobalConfig()
	if err == nil && config != nil && config.UserID != "" {
		return SourceGlobalConfig, config.UserID
	}

	return SourceNone, ""
}
