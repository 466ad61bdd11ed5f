package resolver

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/alexanderramin/coursepath/internal/client"
	"github.com/alexanderramin/coursepath/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(level []domain.Course) []string {
	out := make([]string, 0, len(level))
	for _, c := range level {
		out = append(out, c.ID)
	}
	return out
}

func TestLevelize_BasicGrouping(t *testing.T) {
	order := []domain.Course{
		{ID: "A"},
		{ID: "B", Dependencies: []string{"A"}},
		{ID: "C", Dependencies: []string{"A"}},
		{ID: "D", Dependencies: []string{"B", "C"}},
	}

	levels, anomalies := Levelize(order)
	require.Empty(t, anomalies)
	require.Len(t, levels, 3)
	assert.ElementsMatch(t, []string{"A"}, ids(levels[0]))
	assert.ElementsMatch(t, []string{"B", "C"}, ids(levels[1]))
	assert.ElementsMatch(t, []string{"D"}, ids(levels[2]))
}

func TestLevelize_Empty(t *testing.T) {
	levels, anomalies := Levelize(nil)
	assert.Empty(t, levels)
	assert.Empty(t, anomalies)
}

func TestLevelize_ChainIsOneCoursePerLevel(t *testing.T) {
	order := []domain.Course{
		{ID: "A"},
		{ID: "B", Dependencies: []string{"A"}},
		{ID: "C", Dependencies: []string{"B"}},
	}
	levels, _ := Levelize(order)
	require.Len(t, levels, 3)
	for i, level := range levels {
		assert.Len(t, level, 1, "level %d", i)
	}
}

func TestLevelize_UnknownDependencyReportedNotFatal(t *testing.T) {
	order := []domain.Course{
		{ID: "A", Dependencies: []string{"ghost"}},
		{ID: "B", Dependencies: []string{"A"}},
	}
	levels, anomalies := Levelize(order)
	assert.Equal(t, []string{"ghost"}, anomalies)
	require.Len(t, levels, 2)
	assert.Equal(t, []string{"A"}, ids(levels[0]), "unknown dep treated as absent")
	assert.Equal(t, []string{"B"}, ids(levels[1]))
}

// Property: every dependency sits on a strictly lower level, and no two
// courses on the same level are related directly or transitively.
func TestLevelize_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 50; trial++ {
		// Random DAG: course i may only depend on courses before it,
		// so the construction order is already topological.
		n := 2 + rng.Intn(20)
		order := make([]domain.Course, n)
		for i := 0; i < n; i++ {
			c := domain.Course{ID: fmt.Sprintf("c%d", i)}
			for j := 0; j < i; j++ {
				if rng.Intn(3) == 0 {
					c.Dependencies = append(c.Dependencies, fmt.Sprintf("c%d", j))
				}
			}
			order[i] = c
		}

		levels, anomalies := Levelize(order)
		require.Empty(t, anomalies)

		levelOf := make(map[string]int)
		byID := make(map[string]domain.Course)
		for lvl, courses := range levels {
			for _, c := range courses {
				levelOf[c.ID] = lvl
				byID[c.ID] = c
			}
		}

		// Dependencies precede dependents.
		for _, c := range order {
			for _, dep := range c.Dependencies {
				assert.Less(t, levelOf[dep], levelOf[c.ID],
					"trial %d: dep %s of %s must sit lower", trial, dep, c.ID)
			}
		}

		// No path between same-level courses.
		var reaches func(from, to string) bool
		reaches = func(from, to string) bool {
			if from == to {
				return true
			}
			for _, dep := range byID[from].Dependencies {
				if reaches(dep, to) {
					return true
				}
			}
			return false
		}
		for _, courses := range levels {
			for i := range courses {
				for j := i + 1; j < len(courses); j++ {
					assert.False(t, reaches(courses[i].ID, courses[j].ID))
					assert.False(t, reaches(courses[j].ID, courses[i].ID))
				}
			}
		}
	}
}

func TestInterpretFailure_CycleReport(t *testing.T) {
	err := &client.RemoteError{
		Status: 409,
		Kind:   client.KindConflict,
		Details: map[string]any{
			"detail": "circular dependency detected",
			"cycle":  []any{"A", "B", "C"},
		},
	}

	outcome := InterpretFailure(err)
	require.NotNil(t, outcome.Cycle)
	assert.Nil(t, outcome.Other)
	assert.Equal(t, []string{"A", "B", "C"}, outcome.Cycle.Members)
}

func TestInterpretFailure_NestedCycleDetail(t *testing.T) {
	err := &client.RemoteError{
		Status: 409,
		Kind:   client.KindConflict,
		Details: map[string]any{
			"detail": map[string]any{
				"message": "circular dependency detected",
				"cycle":   []any{"X", "Y"},
			},
		},
	}
	outcome := InterpretFailure(err)
	require.NotNil(t, outcome.Cycle)
	assert.Equal(t, []string{"X", "Y"}, outcome.Cycle.Members)
}

func TestInterpretFailure_CycleWithoutMembers(t *testing.T) {
	err := &client.RemoteError{Status: 409, Kind: client.KindConflict}
	outcome := InterpretFailure(err)
	require.NotNil(t, outcome.Cycle)
	assert.Empty(t, outcome.Cycle.Members)
}

func TestInterpretFailure_OtherFailurePassesThrough(t *testing.T) {
	cases := []error{
		&client.RemoteError{Status: 500, Kind: client.KindServerFault},
		&client.ConnectivityError{Op: "topological_order", Err: errors.New("refused")},
		errors.New("plain"),
	}
	for _, err := range cases {
		outcome := InterpretFailure(err)
		assert.Nil(t, outcome.Cycle)
		require.NotNil(t, outcome.Other)
		assert.Equal(t, err, outcome.Other.Err)
	}
}
