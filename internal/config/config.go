package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrNotFound = errors.New("config not found")

type Driver interface {
	Exists() (bool, error)
	Write(config Config) error
	Read() (Config, error)
}

// DefaultPath is $XDG_CONFIG_HOME/xtile/config.yaml, falling back to
// ~/.config/xtile/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "xtile", "config.yaml"), nil
}

// NewDriver picks a driver from the file extension of filePath.
func NewDriver(filePath string) Driver {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".json":
		return NewJSON(filePath)
	default:
		return NewYAML(filePath)
	}
}

// Init writes the default configuration when none exists and reports whether
// it did.
func Init(driver Driver) (bool, error) {
	exists, err := driver.Exists()
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := driver.Write(Default()); err != nil {
		return false, err
	}
	return true, nil
}

// Load reads and validates the configuration behind driver.
func Load(driver Driver) (Config, error) {
	exists, err := driver.Exists()
	if err != nil {
		return Config{}, err
	}
	if !exists {
		return Config{}, ErrNotFound
	}

	cfg, err := driver.Read()
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config:\n%w", err)
	}

	return cfg, nil
}

func NewStore(driver Driver) (Store, error) {
	if _, err := Init(driver); err != nil {
		return Store{}, err
	}

	return Store{
		driver: driver,
	}, nil
}

type Store struct {
	driver Driver
}

func (p *Store) GetConfig() (Config, error) {
	return p.driver.Read()
}

// UpdateConfig applies fn and writes the result only when it validates.
func (p *Store) UpdateConfig(fn func(cfg Config) (Config, error)) error {
	cfg, err := p.driver.Read()
	if err != nil {
		return err
	}

	cfg, err = fn(cfg)
	if err != nil {
		return err
	}
	if err := Validate(cfg); err != nil {
		return err
	}

	return p.driver.Write(cfg)
}
