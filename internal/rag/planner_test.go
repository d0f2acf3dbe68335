package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	plain := `{"tasks": []}`
	fenced := "```json\n" + plain + "\n```"

	assert.Equal(t, plain, stripCodeFence(plain))
	assert.Equal(t, plain, stripCodeFence(fenced))
	assert.Equal(t, plain, stripCodeFence("  "+fenced+"  "))
}

func TestParseTaskSuggestions_WrapperObject(t *testing.T) {
	raw := `{"tasks": [
		{"title": "Morning check-in", "description": "Ask how they slept.", "suggested_time": "Morning"},
		{"title": "Quiet corner", "description": "", "suggested_time": ""}
	]}`

	tasks := parseTaskSuggestions(raw, 6)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Morning check-in", tasks[0].Title)
	assert.Equal(t, "morning", tasks[0].SuggestedTime)

	// Missing fields get defaults.
	assert.Equal(t, "Quiet corner", tasks[1].Description)
	assert.Equal(t, "anytime", tasks[1].SuggestedTime)
}

func TestParseTaskSuggestions_BareList(t *testing.T) {
	raw := `[{"title": "Practice transitions", "description": "Use a timer.", "suggested_time": "afternoon"}]`

	tasks := parseTaskSuggestions(raw, 6)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Practice transitions", tasks[0].Title)
}

func TestParseTaskSuggestions_DropsUntitledAndCaps(t *testing.T) {
	raw := `{"tasks": [
		{"title": "", "description": "no title"},
		{"title": "One"},
		{"title": "Two"},
		{"title": "Three"}
	]}`

	tasks := parseTaskSuggestions(raw, 2)
	require.Len(t, tasks, 2)
	assert.Equal(t, "One", tasks[0].Title)
	assert.Equal(t, "Two", tasks[1].Title)
}

func TestParseTaskSuggestions_InvalidJSON(t *testing.T) {
	assert.Nil(t, parseTaskSuggestions("the model rambled instead", 6))
}

func TestEstimateTaskCap(t *testing.T) {
	bullets := "- one\n- two\n- three\n- four"
	assert.Equal(t, 4, estimateTaskCap(bullets))

	manyBullets := strings.Repeat("- item\n", 9)
	assert.Equal(t, maxPlannedTasks, estimateTaskCap(manyBullets))

	sentences := "Keep the morning routine the same every day so nothing surprises them. " +
		"Offer a short sensory break after school before starting homework together. " +
		"Celebrate the small wins out loud at dinner so they hear it."
	assert.Equal(t, 3, estimateTaskCap(sentences))

	assert.Equal(t, minPlannedTasks, estimateTaskCap("Short tip."))
	assert.Equal(t, minPlannedTasks, estimateTaskCap(""))
}

func TestPlanTasks(t *testing.T) {
	completer := &fakeCompleter{response: `{"tasks": [
		{"title": "Two-minute warning", "description": "Announce transitions early.", "suggested_time": "anytime"}
	]}`}
	planner := NewPlanner(completer)

	tasks, err := planner.PlanTasks(context.Background(),
		"How can I help with transitions?",
		"Give warnings before transitions and keep routines predictable.",
		"Maya", 0)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Two-minute warning", tasks[0].Title)
	assert.InDelta(t, plannerTemperature, completer.lastTemp, 1e-9)
	assert.Contains(t, completer.lastSystem, "Maya")
	assert.Contains(t, completer.lastUser, "How can I help with transitions?")
}

func TestPlanTasks_RequiresQuestionAndGuidance(t *testing.T) {
	planner := NewPlanner(&fakeCompleter{})

	_, err := planner.PlanTasks(context.Background(), "", "guidance", "", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = planner.PlanTasks(context.Background(), "question", "   ", "", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPlanTasks_CompletionFailure(t *testing.T) {
	planner := NewPlanner(&fakeCompleter{err: errors.New("rate limited")})

	_, err := planner.PlanTasks(context.Background(), "q", "g", "", 0)
	assert.ErrorIs(t, err, ErrCompletion)
}

func TestPlanTasks_UnparseableResponse(t *testing.T) {
	planner := NewPlanner(&fakeCompleter{response: "no json here"})

	_, err := planner.PlanTasks(context.Background(), "q", "g", "", 0)
	require.Error(t, err)
}
