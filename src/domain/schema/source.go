package schema

import (
	"encoding/json"
	"fmt"
	"os"
)

// ConfigSource fornece a configuração declarativa de tipos. O detector de
// schema lê fresco a cada verificação; implementações não devem cachear.
type ConfigSource interface {
	Load() (*TypeConfig, error)
}

// FileConfigSource lê a configuração de um arquivo JSON a cada chamada.
type FileConfigSource struct {
	path string
}

func NewFileConfigSource(path string) *FileConfigSource {
	return &FileConfigSource{path: path}
}

func (s *FileConfigSource) Load() (*TypeConfig, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("FileConfigSource.Load - failed to read %s: %w", s.path, err)
	}

	var cfg TypeConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("FileConfigSource.Load - failed to parse %s: %w", s.path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("FileConfigSource.Load - invalid config %s: %w", s.path, err)
	}

	return &cfg, nil
}

// StaticConfigSource serve uma configuração fixa. Usado em testes e no
// bootstrap.
type StaticConfigSource struct {
	cfg TypeConfig
}

func NewStaticConfigSource(cfg *TypeConfig) *StaticConfigSource {
	return &StaticConfigSource{cfg: *cfg}
}

func (s *StaticConfigSource) Load() (*TypeConfig, error) {
	cfg := s.cfg
	return &cfg, nil
}
