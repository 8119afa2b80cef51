package schema

// Registry é um snapshot imutável de uma TypeConfig com lookups O(1).
// Recarregar a configuração produz um Registry novo; nunca há mutação.
type Registry struct {
	cfg       TypeConfig
	nodeTypes map[string]NodeTypeDef
	edgeTypes map[string]EdgeTypeDef
	polls     map[string]PollDef
}

func NewRegistry(cfg *TypeConfig) *Registry {
	r := &Registry{
		cfg:       *cfg,
		nodeTypes: make(map[string]NodeTypeDef, len(cfg.NodeTypes)),
		edgeTypes: make(map[string]EdgeTypeDef, len(cfg.EdgeTypes)),
		polls:     make(map[string]PollDef, len(cfg.Polls)),
	}
	for _, nt := range cfg.NodeTypes {
		r.nodeTypes[nt.Name] = nt
	}
	for _, et := range cfg.EdgeTypes {
		r.edgeTypes[et.Name] = et
	}
	for _, p := range cfg.Polls {
		r.polls[p.Name] = p
	}
	return r
}

func (r *Registry) Config() TypeConfig { return r.cfg }

func (r *Registry) Fingerprint() string { return r.cfg.Fingerprint() }

func (r *Registry) HasNodeType(name string) bool {
	_, ok := r.nodeTypes[name]
	return ok
}

func (r *Registry) NodeType(name string) (NodeTypeDef, bool) {
	nt, ok := r.nodeTypes[name]
	return nt, ok
}

func (r *Registry) HasEdgeType(name string) bool {
	_, ok := r.edgeTypes[name]
	return ok
}

func (r *Registry) EdgeType(name string) (EdgeTypeDef, bool) {
	et, ok := r.edgeTypes[name]
	return et, ok
}

func (r *Registry) Poll(name string) (PollDef, bool) {
	p, ok := r.polls[name]
	return p, ok
}

func (r *Registry) Polls() []PollDef {
	return append([]PollDef(nil), r.cfg.Polls...)
}

// AllowsEndpoint reporta se o tipo de aresta aceita o par de tipos de nó
// nos seus endpoints. Listas vazias não restringem.
func (r *Registry) AllowsEndpoint(edgeType, sourceNodeType, targetNodeType string) bool {
	et, ok := r.edgeTypes[edgeType]
	if !ok {
		return false
	}
	if len(et.SourceTypes) > 0 && !contains(et.SourceTypes, sourceNodeType) {
		return false
	}
	if len(et.TargetTypes) > 0 && !contains(et.TargetTypes, targetNodeType) {
		return false
	}
	return true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
