package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// config is the resolved CLI configuration. Flags win over environment
// variables, which win over the config file.
type config struct {
	APIURL string `yaml:"api_url"`
	Token  string `yaml:"token"`
	ShopID string `yaml:"shop_id"`
}

const defaultConfigName = ".crankshaft.yaml"

// loadConfig reads the config file (if any) and layers env vars and flags
// on top.
func loadConfig() (config, error) {
	var cfg config

	path := cfgPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, defaultConfigName)
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		case os.IsNotExist(err) && cfgPath == "":
			// Default config file is optional.
		default:
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if v := os.Getenv("CRANKSHAFT_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("CRANKSHAFT_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("CRANKSHAFT_SHOP_ID"); v != "" {
		cfg.ShopID = v
	}

	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if token != "" {
		cfg.Token = token
	}
	if shopID != "" {
		cfg.ShopID = shopID
	}

	if cfg.APIURL == "" {
		cfg.APIURL = "http://localhost:8080"
	}
	return cfg, nil
}

// requireShop returns the configured shop ID or a usage error.
func (c config) requireShop() (string, error) {
	if c.ShopID == "" {
		return "", fmt.Errorf("shop ID is required: pass --shop, set CRANKSHAFT_SHOP_ID, or add shop_id to %s", defaultConfigName)
	}
	return c.ShopID, nil
}
