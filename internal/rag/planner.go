package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
)

// Task cap bounds when the caller does not fix a count.
const (
	minPlannedTasks = 2
	maxPlannedTasks = 6
)

const plannerTemperature = 0.5

// TaskSuggestion is one actionable caregiver task derived from a guidance
// answer.
type TaskSuggestion struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	SuggestedTime string `json:"suggested_time"`
}

// Planner turns a guidance answer into a short list of caregiver tasks.
type Planner struct {
	completer Completer
}

// NewPlanner creates a planner.
func NewPlanner(completer Completer) *Planner {
	return &Planner{completer: completer}
}

// PlanTasks asks the completion model to convert the guidance into up to
// maxTasks tasks. maxTasks <= 0 estimates a cap from the guidance shape.
// childName personalizes the tasks; empty means "the child".
func (p *Planner) PlanTasks(ctx context.Context, question, guidance, childName string, maxTasks int) ([]TaskSuggestion, error) {
	question = strings.TrimSpace(question)
	guidance = strings.TrimSpace(guidance)
	if question == "" || guidance == "" {
		return nil, fmt.Errorf("%w: both the question and the guidance answer are required", ErrInvalidInput)
	}

	if childName == "" {
		childName = "the child"
	}
	taskCap := maxTasks
	if taskCap <= 0 {
		taskCap = estimateTaskCap(guidance)
	}

	systemPrompt := fmt.Sprintf(
		"You are an autism parenting coach. Based on the parent's original question and the guidance "+
			"already given, create up to %d simple caregiver tasks for %s. Each task should be practical, "+
			"phrased as an action, and mapped to a part of the day (morning, afternoon, evening, bedtime, "+
			"or anytime). Respond ONLY with JSON using this structure: "+
			`{"tasks": [{"title": str, "description": str, "suggested_time": str}]}. `+
			"Keep titles under 8 words and descriptions under 25 words.",
		taskCap, childName)

	userPrompt := fmt.Sprintf("Parent question: %s\n\nGuidance that should be converted into tasks:\n%s",
		question, guidance)

	raw, err := p.completer.Complete(ctx, systemPrompt, userPrompt, plannerTemperature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompletion, err)
	}

	tasks := parseTaskSuggestions(raw, taskCap)
	if len(tasks) == 0 {
		return nil, fmt.Errorf("the model did not return any usable task suggestions")
	}
	return tasks, nil
}

// stripCodeFence removes a surrounding markdown code fence, if any.
func stripCodeFence(payload string) string {
	text := strings.TrimSpace(payload)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	if _, rest, ok := strings.Cut(text, "\n"); ok {
		text = rest
	}
	if end := strings.LastIndex(text, "```"); end >= 0 {
		text = text[:end]
	}
	return strings.TrimSpace(text)
}

// parseTaskSuggestions decodes the model output, accepting either a bare
// list or a {"tasks": [...]} object, and normalizes the entries.
func parseTaskSuggestions(raw string, maxTasks int) []TaskSuggestion {
	cleaned := stripCodeFence(raw)

	var entries []TaskSuggestion
	if err := json.Unmarshal([]byte(cleaned), &entries); err != nil {
		var wrapper struct {
			Tasks []TaskSuggestion `json:"tasks"`
		}
		if err := json.Unmarshal([]byte(cleaned), &wrapper); err != nil {
			log.Printf("Failed to parse task suggestions JSON: %q", raw)
			return nil
		}
		entries = wrapper.Tasks
	}

	var tasks []TaskSuggestion
	for _, entry := range entries {
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			continue
		}

		description := strings.TrimSpace(entry.Description)
		if description == "" {
			description = title
		}

		suggestedTime := strings.ToLower(strings.TrimSpace(entry.SuggestedTime))
		if suggestedTime == "" {
			suggestedTime = "anytime"
		}

		tasks = append(tasks, TaskSuggestion{
			Title:         title,
			Description:   description,
			SuggestedTime: suggestedTime,
		})
		if len(tasks) >= maxTasks {
			break
		}
	}

	return tasks
}

var (
	bulletLineRe  = regexp.MustCompile(`^\s*(?:[-*]|\d+[.)])\s+`)
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
)

// estimateTaskCap guesses how many tasks a guidance text supports: bullet
// lines first, then substantial sentences, then paragraphs, then raw length.
func estimateTaskCap(guidance string) int {
	text := strings.TrimSpace(guidance)
	if text == "" {
		return minPlannedTasks
	}

	bullets := 0
	for _, line := range strings.Split(text, "\n") {
		if bulletLineRe.MatchString(line) {
			bullets++
		}
	}
	if bullets > 0 {
		return clampTaskCap(bullets)
	}

	longSentences := 0
	for _, sentence := range sentenceSplit.Split(text, -1) {
		if len(strings.Fields(sentence)) >= 8 {
			longSentences++
		}
	}
	if longSentences > 0 {
		return clampTaskCap(longSentences)
	}

	paragraphs := 0
	for _, block := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(block) != "" {
			paragraphs++
		}
	}
	if paragraphs > 0 {
		return clampTaskCap(paragraphs)
	}

	words := len(strings.Fields(text))
	switch {
	case words <= 40:
		return minPlannedTasks
	case words <= 120:
		return clampTaskCap(minPlannedTasks + 1)
	default:
		return clampTaskCap(minPlannedTasks + 2)
	}
}

func clampTaskCap(n int) int {
	if n < minPlannedTasks {
		return minPlannedTasks
	}
	if n > maxPlannedTasks {
		return maxPlannedTasks
	}
	return n
}
