package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings that can also be given on the command line. Pointers distinguish
// "not set" from the zero value.
type fileConfig struct {
	Engine     string `yaml:"engine"`
	Sourcemap  *bool  `yaml:"sourcemap"`
	Color      *bool  `yaml:"color"`
	LogLevel   string `yaml:"logLevel"`
	Outdir     string `yaml:"outdir"`
	Root       string `yaml:"root"`
	IgnoreFile string `yaml:"ignoreFile"`
	Timing     *bool  `yaml:"timing"`
	NoMinify   *bool  `yaml:"noMinify"`
}

func loadConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (*fileConfig, error) {
	var config fileConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &config, nil
}
