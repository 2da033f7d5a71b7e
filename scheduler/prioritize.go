package scheduler

import (
	"fmt"
	"math"
	"sort"

	"github.com/prodhub/mcp-m365/graph"
)

// Criteria selects the prioritization weighting.
type Criteria string

const (
	// CriteriaUrgency weights due-date proximity (the default).
	CriteriaUrgency Criteria = "urgency"
	// CriteriaImportance adds extra weight to high-importance tasks.
	CriteriaImportance Criteria = "importance"
	// CriteriaBalanced currently scores identically to urgency; kept
	// as a distinct value for callers that already pass it.
	CriteriaBalanced Criteria = "balanced"
)

// PrioritizedTask is a task annotated with its computed priority.
type PrioritizedTask struct {
	graph.Task
	PriorityScore   int      `json:"priority_score"`
	PriorityReasons []string `json:"priority_reasons"`
	Recommendation  string   `json:"recommendation"`
}

// PrioritizeTasks scores open tasks by importance and due-date
// proximity and returns them in descending score order. Completed
// tasks are excluded; ties keep their input order. Unrecognized
// criteria fall back to urgency.
func (s *Service) PrioritizeTasks(tasks []graph.Task, criteria Criteria) []PrioritizedTask {
	now := s.now()
	var prioritized []PrioritizedTask
	for _, task := range tasks {
		if task.Status == "completed" {
			continue
		}
		score := 0
		var reasons []string

		switch task.Importance {
		case "high":
			score += 30
			reasons = append(reasons, "High importance")
		case "low":
			score -= 10
		}

		if due, ok := parseTimestamp(task.DueDate); ok {
			// Whole days, floored, so a task due 12 hours ago counts
			// as one day overdue.
			days := int(math.Floor(due.Sub(now).Hours() / 24))
			switch {
			case days < 0:
				score += 50
				reasons = append(reasons, fmt.Sprintf("OVERDUE by %d days", -days))
			case days == 0:
				score += 40
				reasons = append(reasons, "Due TODAY")
			case days <= 2:
				score += 30
				reasons = append(reasons, fmt.Sprintf("Due in %d days", days))
			case days <= 7:
				score += 15
				reasons = append(reasons, "Due this week")
			}
		}

		if criteria == CriteriaImportance && task.Importance == "high" {
			score += 20
		}

		prioritized = append(prioritized, PrioritizedTask{
			Task:            task,
			PriorityScore:   score,
			PriorityReasons: reasons,
			Recommendation:  recommendation(score),
		})
	}
	sort.SliceStable(prioritized, func(i, j int) bool {
		return prioritized[i].PriorityScore > prioritized[j].PriorityScore
	})
	return prioritized
}

func recommendation(score int) string {
	switch {
	case score >= 50:
		return "🔴 Do this immediately"
	case score >= 30:
		return "🟠 High priority - tackle today"
	case score >= 15:
		return "🟡 Schedule time this week"
	default:
		return "🟢 Can wait - schedule when convenient"
	}
}
