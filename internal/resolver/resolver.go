package resolver

import (
	"errors"

	"github.com/alexanderramin/coursepath/internal/client"
	"github.com/alexanderramin/coursepath/internal/domain"
)

// Levelize partitions a topologically ordered course sequence into levels of
// mutually independent courses: level 0 holds dependency-free courses, and
// every other course sits one level above its deepest dependency.
//
// The input order is trusted to be dependency-consistent (the authority
// already validated it), so a single linear pass suffices. Dependency ids
// that never appear in the order are skipped for the max and returned as
// anomalies for the caller to log.
func Levelize(order []domain.Course) ([][]domain.Course, []string) {
	assigned := make(map[string]int, len(order))
	var levels [][]domain.Course
	var anomalies []string

	for _, course := range order {
		level := 0
		for _, dep := range course.Dependencies {
			depLevel, ok := assigned[dep]
			if !ok {
				anomalies = append(anomalies, dep)
				continue
			}
			if depLevel+1 > level {
				level = depLevel + 1
			}
		}
		assigned[course.ID] = level
		for len(levels) <= level {
			levels = append(levels, nil)
		}
		levels[level] = append(levels[level], course)
	}
	return levels, anomalies
}

// CycleReport names the courses implicated in a dependency cycle, in the
// order the authority reported them. Members may be empty when the authority
// detected a cycle but did not enumerate it.
type CycleReport struct {
	Members []string
}

// OtherFailure wraps a topological-order failure that is not a cycle.
type OtherFailure struct {
	Err error
}

// Outcome is the interpreted result of a failed topological-order request:
// exactly one of Cycle or Other is set.
type Outcome struct {
	Cycle *CycleReport
	Other *OtherFailure
}

// InterpretFailure inspects a TopologicalOrder error. A conflict-class
// remote error means the graph has a cycle; its members are pulled from the
// structured details. Anything else passes through as OtherFailure.
func InterpretFailure(err error) Outcome {
	var rerr *client.RemoteError
	if errors.As(err, &rerr) && rerr.Kind == client.KindConflict {
		return Outcome{Cycle: &CycleReport{Members: cycleMembers(rerr.Details)}}
	}
	return Outcome{Other: &OtherFailure{Err: err}}
}

func cycleMembers(details map[string]any) []string {
	if details == nil {
		return nil
	}
	if members := stringSlice(details["cycle"]); members != nil {
		return members
	}
	// Some responses nest the cycle under the detail object.
	if nested, ok := details["detail"].(map[string]any); ok {
		return stringSlice(nested["cycle"])
	}
	return nil
}

func stringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
