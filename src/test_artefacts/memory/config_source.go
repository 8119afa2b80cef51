package memory

import (
	"sync"

	"debategraph/src/domain/schema"
)

// MutableConfigSource serve uma configuração trocável em tempo de teste,
// simulando a edição do arquivo de tipos entre verificações de schema.
type MutableConfigSource struct {
	mu  sync.Mutex
	cfg schema.TypeConfig
}

func NewMutableConfigSource(cfg *schema.TypeConfig) *MutableConfigSource {
	return &MutableConfigSource{cfg: *cfg}
}

func (s *MutableConfigSource) Load() (*schema.TypeConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.cfg
	return &cfg, nil
}

func (s *MutableConfigSource) Set(cfg *schema.TypeConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = *cfg
}
