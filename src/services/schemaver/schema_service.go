package schemaver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"debategraph/src/domain"
	"debategraph/src/domain/schema"
)

// SnapshotStore persiste snapshots versionados e a auditoria de migrações.
type SnapshotStore interface {
	ActiveSnapshot(ctx context.Context) (*domain.SchemaSnapshot, error)
	Promote(ctx context.Context, snapshot domain.SchemaSnapshot, migration *domain.SchemaMigration) (*domain.SchemaSnapshot, error)
}

// EntityCounter responde quantas entidades vivas um tipo tem. Alimenta o
// impact scan.
type EntityCounter interface {
	CountLiveByType(ctx context.Context, kind domain.EntityKind, typeName string) (int, error)
}

// RatingCounter responde quantos ratings um poll acumulou.
type RatingCounter interface {
	CountByPoll(ctx context.Context, poll string) (int, error)
}

// ChangeReport é o resultado de uma verificação: o diff estrutural e os
// warnings de impacto contra o log vivo.
type ChangeReport struct {
	FromVersion     string                `json:"from_version"`
	FromFingerprint string                `json:"from_fingerprint"`
	ToFingerprint   string                `json:"to_fingerprint"`
	Changes         []domain.SchemaChange `json:"changes"`
	Warnings        []string              `json:"warnings"`
}

// SchemaService detecta mudanças entre a configuração viva e o snapshot
// ativo, avalia o risco contra o conteúdo do log e promove versões com
// trilha de auditoria.
type SchemaService struct {
	logger    *slog.Logger
	source    schema.ConfigSource
	snapshots SnapshotStore
	entities  EntityCounter
	ratings   RatingCounter
}

func NewSchemaService(
	logger *slog.Logger,
	source schema.ConfigSource,
	snapshots SnapshotStore,
	entities EntityCounter,
	ratings RatingCounter,
) *SchemaService {
	return &SchemaService{
		logger:    logger,
		source:    source,
		snapshots: snapshots,
		entities:  entities,
		ratings:   ratings,
	}
}

// EnsureInitialized cria o snapshot v1.0.0 a partir da configuração viva se
// nenhum snapshot existir ainda. Bootstrap de primeira execução: não passa
// por diff nem impact scan.
func (s *SchemaService) EnsureInitialized(ctx context.Context, username string) error {
	_, err := s.snapshots.ActiveSnapshot(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrSnapshotNotFound) {
		return fmt.Errorf("SchemaService.EnsureInitialized - %w", err)
	}

	cfg, err := s.source.Load()
	if err != nil {
		return fmt.Errorf("SchemaService.EnsureInitialized - failed to load config: %w", err)
	}

	snapshot, err := buildSnapshot(cfg, "1.0.0", username)
	if err != nil {
		return fmt.Errorf("SchemaService.EnsureInitialized - %w", err)
	}

	if _, err := s.snapshots.Promote(ctx, snapshot, nil); err != nil {
		return fmt.Errorf("SchemaService.EnsureInitialized - %w", err)
	}

	s.logger.Info("SchemaService - bootstrapped schema snapshot",
		"version", snapshot.Version, "fingerprint", snapshot.Fingerprint)

	return nil
}

// ActiveSnapshot expõe o snapshot corrente para a camada HTTP.
func (s *SchemaService) ActiveSnapshot(ctx context.Context) (*domain.SchemaSnapshot, error) {
	snapshot, err := s.snapshots.ActiveSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("SchemaService.ActiveSnapshot - %w", err)
	}
	return snapshot, nil
}

// CheckForChanges carrega a configuração fresca, diffa contra o snapshot
// ativo e roda o impact scan sobre as mudanças destrutivas.
func (s *SchemaService) CheckForChanges(ctx context.Context) (*ChangeReport, error) {
	cfg, err := s.source.Load()
	if err != nil {
		return nil, fmt.Errorf("SchemaService.CheckForChanges - failed to load config: %w", err)
	}

	active, err := s.snapshots.ActiveSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("SchemaService.CheckForChanges - %w", err)
	}

	report := &ChangeReport{
		FromVersion:     active.Version,
		FromFingerprint: active.Fingerprint,
		ToFingerprint:   cfg.Fingerprint(),
	}

	if report.FromFingerprint == report.ToFingerprint {
		return report, nil
	}

	var oldCfg schema.TypeConfig
	if err := json.Unmarshal(active.Config, &oldCfg); err != nil {
		return nil, fmt.Errorf("SchemaService.CheckForChanges - corrupt stored snapshot %s: %w", active.Version, err)
	}

	report.Changes = Diff(&oldCfg, cfg)
	report.Warnings = s.ImpactScan(ctx, report.Changes)

	return report, nil
}

// ImpactScan consulta os logs por entidades/ratings vivos afetados por cada
// mudança destrutiva. Best-effort: falha de consulta degrada para um
// warning descrevendo a falha, nunca derruba a verificação.
func (s *SchemaService) ImpactScan(ctx context.Context, changes []domain.SchemaChange) []string {
	var warnings []string

	warn := func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	for _, change := range changes {
		if !change.Destructive {
			continue
		}

		switch change.Kind {
		case domain.ChangeNodeTypeRemoved:
			count, err := s.entities.CountLiveByType(ctx, domain.KindNode, change.Subject)
			if err != nil {
				warn("impact scan failed for node type %q: %v", change.Subject, err)
			} else if count > 0 {
				warn("removing node type %q affects %d live nodes", change.Subject, count)
			}
		case domain.ChangeEdgeTypeRemoved:
			count, err := s.entities.CountLiveByType(ctx, domain.KindEdge, change.Subject)
			if err != nil {
				warn("impact scan failed for edge type %q: %v", change.Subject, err)
			} else if count > 0 {
				warn("removing edge type %q affects %d live edges", change.Subject, count)
			}
		case domain.ChangePropertyRemoved:
			// O subject de uma remoção de propriedade pode ser tipo de nó ou
			// de aresta; tenta os dois e soma.
			nodeCount, nodeErr := s.entities.CountLiveByType(ctx, domain.KindNode, change.Subject)
			edgeCount, edgeErr := s.entities.CountLiveByType(ctx, domain.KindEdge, change.Subject)
			if nodeErr != nil && edgeErr != nil {
				warn("impact scan failed for property %q of type %q: %v", change.Detail, change.Subject, nodeErr)
			} else if nodeCount+edgeCount > 0 {
				warn("removing property %q from type %q affects %d live entities", change.Detail, change.Subject, nodeCount+edgeCount)
			}
		case domain.ChangePollRemoved, domain.ChangePollScaleChanged:
			count, err := s.ratings.CountByPoll(ctx, change.Subject)
			if err != nil {
				warn("impact scan failed for poll %q: %v", change.Subject, err)
			} else if count > 0 {
				warn("changing poll %q affects %d logged ratings", change.Subject, count)
			}
		case domain.ChangeEndpointConstraint:
			count, err := s.entities.CountLiveByType(ctx, domain.KindEdge, change.Subject)
			if err != nil {
				warn("impact scan failed for edge type %q: %v", change.Subject, err)
			} else if count > 0 {
				warn("tightening endpoints of edge type %q affects %d live edges", change.Subject, count)
			}
		}
	}

	return warnings
}

// Promote aplica a configuração viva como novo snapshot ativo. Sem mudanças
// é erro; com warnings e force=false é conflito enumerando os warnings, sem
// aplicar nada. A promoção em si é transacional no store: nunca dois
// snapshots ativos.
func (s *SchemaService) Promote(ctx context.Context, username string, force bool) (*domain.SchemaSnapshot, error) {
	report, err := s.CheckForChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("SchemaService.Promote - %w", err)
	}

	if len(report.Changes) == 0 {
		return nil, fmt.Errorf("SchemaService.Promote - %w", domain.ErrNoSchemaChanges)
	}

	if len(report.Warnings) > 0 && !force {
		return nil, fmt.Errorf("SchemaService.Promote - %w: %s",
			domain.ErrSchemaConflict, strings.Join(report.Warnings, "; "))
	}

	cfg, err := s.source.Load()
	if err != nil {
		return nil, fmt.Errorf("SchemaService.Promote - failed to load config: %w", err)
	}

	nextVersion, err := bumpPatch(report.FromVersion)
	if err != nil {
		return nil, fmt.Errorf("SchemaService.Promote - %w", err)
	}

	snapshot, err := buildSnapshot(cfg, nextVersion, username)
	if err != nil {
		return nil, fmt.Errorf("SchemaService.Promote - %w", err)
	}

	migration := &domain.SchemaMigration{
		FromVersion: report.FromVersion,
		ToVersion:   nextVersion,
		Changes:     report.Changes,
		Warnings:    report.Warnings,
		Username:    username,
	}

	promoted, err := s.snapshots.Promote(ctx, snapshot, migration)
	if err != nil {
		return nil, fmt.Errorf("SchemaService.Promote - %w", err)
	}

	s.logger.Info("SchemaService - promoted schema snapshot",
		"from", report.FromVersion, "to", nextVersion,
		"changes", len(report.Changes), "warnings", len(report.Warnings), "forced", force)

	return promoted, nil
}

func buildSnapshot(cfg *schema.TypeConfig, version string, username string) (domain.SchemaSnapshot, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return domain.SchemaSnapshot{}, fmt.Errorf("failed to marshal config: %w", err)
	}

	return domain.SchemaSnapshot{
		Version:     version,
		Fingerprint: cfg.Fingerprint(),
		Config:      raw,
		CreatedBy:   username,
	}, nil
}

// bumpPatch incrementa o componente patch de major.minor.patch.
func bumpPatch(version string) (string, error) {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: malformed version %q", domain.ErrValidation, version)
	}

	patch, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", fmt.Errorf("%w: malformed patch component in %q", domain.ErrValidation, version)
	}

	return fmt.Sprintf("%s.%s.%d", parts[0], parts[1], patch+1), nil
}
