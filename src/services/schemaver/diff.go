package schemaver

import (
	"fmt"
	"sort"
	"strings"

	"debategraph/src/domain"
	"debategraph/src/domain/schema"
)

// Diff computa as diferenças estruturais entre duas configurações de tipos:
// set-difference sobre nomes de tipos de nó e aresta, sobre os conjuntos de
// propriedades por tipo, sobre as restrições de endpoints e sobre as
// definições de polls. Puro; a ordem da saída é determinística.
func Diff(old, new *schema.TypeConfig) []domain.SchemaChange {
	var changes []domain.SchemaChange

	changes = append(changes, diffNodeTypes(old, new)...)
	changes = append(changes, diffEdgeTypes(old, new)...)
	changes = append(changes, diffPolls(old, new)...)

	return changes
}

func diffNodeTypes(old, new *schema.TypeConfig) []domain.SchemaChange {
	oldTypes := make(map[string]schema.NodeTypeDef, len(old.NodeTypes))
	for _, nt := range old.NodeTypes {
		oldTypes[nt.Name] = nt
	}
	newTypes := make(map[string]schema.NodeTypeDef, len(new.NodeTypes))
	for _, nt := range new.NodeTypes {
		newTypes[nt.Name] = nt
	}

	var changes []domain.SchemaChange

	for _, name := range sortedKeys(newTypes) {
		if _, ok := oldTypes[name]; !ok {
			changes = append(changes, domain.SchemaChange{
				Kind:    domain.ChangeNodeTypeAdded,
				Subject: name,
			})
		}
	}

	for _, name := range sortedKeys(oldTypes) {
		newType, stillThere := newTypes[name]
		if !stillThere {
			changes = append(changes, domain.SchemaChange{
				Kind:        domain.ChangeNodeTypeRemoved,
				Subject:     name,
				Destructive: true,
				Risk:        fmt.Sprintf("live nodes of type %q will disappear from reads", name),
			})
			continue
		}
		changes = append(changes, diffProperties(name, "node", oldTypes[name].Properties, newType.Properties)...)
	}

	return changes
}

func diffEdgeTypes(old, new *schema.TypeConfig) []domain.SchemaChange {
	oldTypes := make(map[string]schema.EdgeTypeDef, len(old.EdgeTypes))
	for _, et := range old.EdgeTypes {
		oldTypes[et.Name] = et
	}
	newTypes := make(map[string]schema.EdgeTypeDef, len(new.EdgeTypes))
	for _, et := range new.EdgeTypes {
		newTypes[et.Name] = et
	}

	var changes []domain.SchemaChange

	for _, name := range sortedKeys(newTypes) {
		if _, ok := oldTypes[name]; !ok {
			changes = append(changes, domain.SchemaChange{
				Kind:    domain.ChangeEdgeTypeAdded,
				Subject: name,
			})
		}
	}

	for _, name := range sortedKeys(oldTypes) {
		newType, stillThere := newTypes[name]
		if !stillThere {
			changes = append(changes, domain.SchemaChange{
				Kind:        domain.ChangeEdgeTypeRemoved,
				Subject:     name,
				Destructive: true,
				Risk:        fmt.Sprintf("live edges of type %q will disappear from reads", name),
			})
			continue
		}

		oldType := oldTypes[name]
		changes = append(changes, diffProperties(name, "edge", oldType.Properties, newType.Properties)...)

		if !sameStringSet(oldType.SourceTypes, newType.SourceTypes) || !sameStringSet(oldType.TargetTypes, newType.TargetTypes) {
			changes = append(changes, domain.SchemaChange{
				Kind:    domain.ChangeEndpointConstraint,
				Subject: name,
				Detail: fmt.Sprintf("endpoints (%s -> %s) became (%s -> %s)",
					joinOrAny(oldType.SourceTypes), joinOrAny(oldType.TargetTypes),
					joinOrAny(newType.SourceTypes), joinOrAny(newType.TargetTypes)),
				Destructive: true,
				Risk:        fmt.Sprintf("existing edges of type %q may violate the new endpoint constraint", name),
			})
		}
	}

	return changes
}

func diffProperties(typeName, kind string, oldProps, newProps []string) []domain.SchemaChange {
	oldSet := toSet(oldProps)
	newSet := toSet(newProps)

	var changes []domain.SchemaChange

	for _, prop := range sortedKeys(newSet) {
		if !oldSet[prop] {
			changes = append(changes, domain.SchemaChange{
				Kind:    domain.ChangePropertyAdded,
				Subject: typeName,
				Detail:  prop,
			})
		}
	}

	for _, prop := range sortedKeys(oldSet) {
		if !newSet[prop] {
			changes = append(changes, domain.SchemaChange{
				Kind:        domain.ChangePropertyRemoved,
				Subject:     typeName,
				Detail:      prop,
				Destructive: true,
				Risk:        fmt.Sprintf("property %q stored on live %s entities of type %q becomes undeclared", prop, kind, typeName),
			})
		}
	}

	return changes
}

func diffPolls(old, new *schema.TypeConfig) []domain.SchemaChange {
	oldPolls := make(map[string]schema.PollDef, len(old.Polls))
	for _, p := range old.Polls {
		oldPolls[p.Name] = p
	}
	newPolls := make(map[string]schema.PollDef, len(new.Polls))
	for _, p := range new.Polls {
		newPolls[p.Name] = p
	}

	var changes []domain.SchemaChange

	for _, name := range sortedKeys(newPolls) {
		if _, ok := oldPolls[name]; !ok {
			changes = append(changes, domain.SchemaChange{
				Kind:    domain.ChangePollAdded,
				Subject: name,
			})
		}
	}

	for _, name := range sortedKeys(oldPolls) {
		newPoll, stillThere := newPolls[name]
		if !stillThere {
			changes = append(changes, domain.SchemaChange{
				Kind:        domain.ChangePollRemoved,
				Subject:     name,
				Destructive: true,
				Risk:        fmt.Sprintf("ratings logged for poll %q become unreadable", name),
			})
			continue
		}

		oldPoll := oldPolls[name]

		// A ordem da escala é significativa: trocar a ordem muda todas as
		// posições ordinais.
		if !sameStringSlice(oldPoll.Scale, newPoll.Scale) {
			changes = append(changes, domain.SchemaChange{
				Kind:        domain.ChangePollScaleChanged,
				Subject:     name,
				Detail:      fmt.Sprintf("scale [%s] became [%s]", strings.Join(oldPoll.Scale, ", "), strings.Join(newPoll.Scale, ", ")),
				Destructive: true,
				Risk:        fmt.Sprintf("existing ratings for poll %q may fall off the new scale or shift ordinal position", name),
			})
		}

		if !sameStringSet(oldPoll.NodeTypes, newPoll.NodeTypes) ||
			!sameStringSet(oldPoll.EdgeTypes, newPoll.EdgeTypes) ||
			oldPoll.Aggregation != newPoll.Aggregation {
			changes = append(changes, domain.SchemaChange{
				Kind:    domain.ChangePollDefinition,
				Subject: name,
				Detail:  "applicability or aggregation method changed",
			})
		}
	}

	return changes
}

func toSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, s := range list {
		set[s] = true
	}
	return set
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sameStringSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	setA := toSet(a)
	for _, s := range b {
		if !setA[s] {
			return false
		}
	}
	return true
}

func sameStringSlice(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func joinOrAny(list []string) string {
	if len(list) == 0 {
		return "any"
	}
	return strings.Join(list, "|")
}
