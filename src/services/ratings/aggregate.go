package ratings

import (
	"sort"

	"debategraph/src/domain"
)

// latestOf reduz uma lista de ratings ao mais recente (timestamp, empate
// por id).
func latestOf(events []domain.RatingEvent) (domain.RatingEvent, bool) {
	var latest domain.RatingEvent
	found := false
	for _, event := range events {
		if !found || latest.Before(event) {
			latest = event
			found = true
		}
	}
	return latest, found
}

// latestPerUser é o primeiro estágio da agregação: para cada usuário
// distinto, só o rating mais recente conta. Saída ordenada por username
// para resultados determinísticos.
func latestPerUser(events []domain.RatingEvent) []domain.RatingEvent {
	byUser := make(map[string]domain.RatingEvent)
	for _, event := range events {
		if prev, ok := byUser[event.Username]; !ok || prev.Before(event) {
			byUser[event.Username] = event
		}
	}

	out := make([]domain.RatingEvent, 0, len(byUser))
	for _, event := range byUser {
		out = append(out, event)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })

	return out
}

// medianOrdinal é o segundo estágio: mediana estatística sobre posições
// ordinais. Contagem ímpar pega o valor central; contagem par pega a
// mediana inferior (índice (n-1)/2), deterministicamente.
func medianOrdinal(ordinals []int) (int, bool) {
	if len(ordinals) == 0 {
		return 0, false
	}

	sorted := append([]int(nil), ordinals...)
	sort.Ints(sorted)

	return sorted[(len(sorted)-1)/2], true
}
