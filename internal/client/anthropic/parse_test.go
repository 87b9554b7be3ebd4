package anthropic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minutemate/task-engine/internal/models"
)

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences(`{"a":1}`))
}

func TestParseExtraction(t *testing.T) {
	raw := "```json\n" + `{
		"commitments": [
			{"description": "Send the budget", "assignee": "Alice", "deadline": "2025-11-14", "priority": "high", "suggested_approach": "reuse last quarter's template"}
		],
		"action_items": [
			{"description": "File the report", "assignee": "TBD", "needs_confirmation": true}
		],
		"follow_ups": [],
		"risks": []
	}` + "\n```"

	result, err := parseExtraction(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total())

	commitment := result.Commitments[0]
	assert.Equal(t, "Send the budget", commitment.Description)
	assert.Equal(t, models.PriorityHigh, commitment.Priority)
	assert.Equal(t, "reuse last quarter's template", commitment.SuggestedApproach)
	require.NotNil(t, commitment.Deadline)
	assert.Equal(t, time.Date(2025, time.November, 14, 0, 0, 0, 0, time.UTC), *commitment.Deadline)

	action := result.ActionItems[0]
	assert.Nil(t, action.Deadline, "absent deadline stays nil for the fallback to fill")
	assert.Equal(t, models.PriorityMedium, action.Priority, "absent priority defaults to medium")
	assert.True(t, action.NeedsConfirmation)
}

func TestParseExtractionFailsClosed(t *testing.T) {
	cases := map[string]string{
		"not json":          `the meeting was productive`,
		"missing desc":      `{"action_items": [{"assignee": "Alice"}]}`,
		"garbled deadline":  `{"action_items": [{"description": "x", "deadline": "next friday"}]}`,
		"unknown priority":  `{"action_items": [{"description": "x", "priority": "urgent"}]}`,
		"whitespace desc":   `{"risks": [{"description": "   "}]}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseExtraction(raw)
			assert.Error(t, err)
		})
	}
}

func TestParseExtractionEmptyLists(t *testing.T) {
	result, err := parseExtraction(`{}`)
	require.NoError(t, err)
	assert.Zero(t, result.Total())
}

func TestParseClustersLenient(t *testing.T) {
	assert.Nil(t, parseClusters("I could not find any groups."))
	assert.Nil(t, parseClusters(`{"clusters": "oops"}`))
	assert.Nil(t, parseClusters(`{"clusters": [{"name": "", "task_indices": [1]}]}`))
	assert.Nil(t, parseClusters(`{"clusters": [{"name": "Empty", "task_indices": []}]}`))
}

func TestParseClusters(t *testing.T) {
	raw := "```json\n" + `{
		"clusters": [
			{"name": "Reporting", "reasoning": "same deliverable", "task_indices": [0, 2]},
			{"name": "", "task_indices": [1]},
			{"name": "Infra", "task_indices": [3]}
		]
	}` + "\n```"

	clusters := parseClusters(raw)
	require.Len(t, clusters, 2)
	assert.Equal(t, "Reporting", clusters[0].Name)
	assert.Equal(t, []int{0, 2}, clusters[0].TaskIndices)
	assert.Equal(t, "Infra", clusters[1].Name)
}
