package config

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ItsNotGoodName/xtile/internal/core"
	"gopkg.in/yaml.v3"
)

// writeAtomic encodes into filePath.tmp and renames it over filePath.
func writeAtomic(filePath string, encode func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return err
	}

	filePathTmp := filePath + ".tmp"
	file, err := os.OpenFile(filePathTmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	if err := encode(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	return os.Rename(filePathTmp, filePath)
}

// decodeBase is the default config with its lists cleared, so that a list in
// the file replaces the default one instead of being decoded over it.
func decodeBase() Config {
	cfg := Default()
	cfg.Keybindings = nil
	cfg.Rules = nil
	cfg.Status.Blocks = nil
	return cfg
}

// restoreLists puts back the default lists the file left out. An explicit
// empty list stays empty.
func restoreLists(cfg *Config) {
	def := Default()
	if cfg.Keybindings == nil {
		cfg.Keybindings = def.Keybindings
	}
	if cfg.Rules == nil {
		cfg.Rules = def.Rules
	}
	if cfg.Status.Blocks == nil {
		cfg.Status.Blocks = def.Status.Blocks
	}
}

func NewYAML(filePath string) YAML {
	return YAML{
		filePath: filePath,
	}
}

type YAML struct {
	filePath string
}

// Exists implements Driver.
func (y YAML) Exists() (bool, error) {
	return core.FileExists(y.filePath)
}

func (y YAML) Read() (Config, error) {
	file, err := os.Open(y.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, ErrNotFound
		}
		return Config{}, err
	}
	defer file.Close()

	cfg := decodeBase()
	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	restoreLists(&cfg)
	return cfg, nil
}

func (y YAML) Write(cfg Config) error {
	return writeAtomic(y.filePath, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	})
}

func NewJSON(filePath string) JSON {
	return JSON{
		filePath: filePath,
	}
}

type JSON struct {
	filePath string
}

// Exists implements Driver.
func (j JSON) Exists() (bool, error) {
	return core.FileExists(j.filePath)
}

func (j JSON) Read() (Config, error) {
	file, err := os.Open(j.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, ErrNotFound
		}
		return Config{}, err
	}
	defer file.Close()

	cfg := decodeBase()
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return Config{}, err
	}
	restoreLists(&cfg)
	return cfg, nil
}

func (j JSON) Write(cfg Config) error {
	return writeAtomic(j.filePath, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	})
}

// Memory keeps the configuration in memory.
type Memory struct {
	mu  sync.RWMutex
	cfg *Config
}

func NewMemory(cfg *Config) *Memory {
	return &Memory{cfg: cfg}
}

// Exists implements Driver.
func (m *Memory) Exists() (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg != nil, nil
}

func (m *Memory) Read() (Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cfg == nil {
		return Config{}, ErrNotFound
	}
	return *m.cfg, nil
}

func (m *Memory) Write(cfg Config) error {
	m.mu.Lock()
	m.cfg = &cfg
	m.mu.Unlock()
	return nil
}
