package progression

import "github.com/praxisapp/praxis/internal/types"

// Award is one resolved (stat, amount) pair for a completed task.
type Award struct {
	StatID string `json:"stat_id"`
	Amount int    `json:"amount"`
}

// UniformAwards builds one award per distinct stat id, first occurrence
// order, all carrying the same amount. Callers with a flat id list
// (quest completion) use this so a stat listed twice is still paid once.
func UniformAwards(statIDs []string, amount int) []Award {
	seen := make(map[string]struct{})
	var awards []Award
	for _, id := range statIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		awards = append(awards, Award{StatID: id, Amount: amount})
	}
	return awards
}

// ResolveAwards determines the final set of stat awards for a task about
// to be (or just) marked complete. The adhoc definition and the focus's
// default stat are passed in by the caller; missing secondary targets are
// simply absent from the union rather than failing resolution.
//
// Precedence:
//  1. An ad-hoc definition with a stat is authoritative: its stat and XP
//     value win, other sources are ignored.
//  2. Otherwise the candidates are the union of LinkedStatIDs, the legacy
//     StatID, and the focus's default stat, deduplicated in that order.
//     Every candidate receives the task's single estimated XP; per-stat
//     differential amounts within one completion are not supported.
//
// Tasks that are not completed resolve to no awards at all, as do tasks
// from the "todo" source (their XP and stat links are already zeroed at
// write time; the guard here is defense in depth).
func ResolveAwards(task types.Task, adhoc *types.AdhocTask, focusStatID string) []Award {
	if task.Status != types.TaskCompleted {
		return nil
	}
	if task.Source == types.SourceTodo {
		return nil
	}

	if adhoc != nil && adhoc.StatID != "" {
		return []Award{{StatID: adhoc.StatID, Amount: adhoc.XP}}
	}

	seen := make(map[string]struct{})
	var awards []Award
	add := func(statID string) {
		if statID == "" {
			return
		}
		if _, ok := seen[statID]; ok {
			return
		}
		seen[statID] = struct{}{}
		awards = append(awards, Award{StatID: statID, Amount: task.EstimatedXP})
	}

	for _, id := range task.LinkedStatIDs {
		add(id)
	}
	add(task.StatID)
	add(focusStatID)

	return awards
}
