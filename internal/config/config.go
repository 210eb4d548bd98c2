package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port        string   `yaml:"port"`
		CORSOrigins []string `yaml:"corsOrigins"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Quiz struct {
		BankID      string `yaml:"bankId"`
		BankFile    string `yaml:"bankFile"`
		TTL         string `yaml:"ttl"`
		RevealDelay string `yaml:"revealDelay"`
		ResetDelay  string `yaml:"resetDelay"`
	} `yaml:"quiz"`
	EmailJS struct {
		Endpoint   string `yaml:"endpoint"`
		ServiceID  string `yaml:"serviceId"`
		TemplateID string `yaml:"templateId"`
		PublicKey  string `yaml:"publicKey"`
		PrivateKey string `yaml:"privateKey"`
		Timeout    string `yaml:"timeout"`
	} `yaml:"emailjs"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// EmailConfigured reports whether enough EmailJS settings exist to send mail.
func (c Config) EmailConfigured() bool {
	return c.EmailJS.ServiceID != "" && c.EmailJS.TemplateID != "" && c.EmailJS.PublicKey != ""
}

// Duration parses a duration string or returns the fallback if empty or malformed.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
