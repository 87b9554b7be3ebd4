package anthropic

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/minutemate/task-engine/internal/models"
)

type extractionPayload struct {
	Commitments []itemPayload `json:"commitments"`
	ActionItems []itemPayload `json:"action_items"`
	FollowUps   []itemPayload `json:"follow_ups"`
	Risks       []itemPayload `json:"risks"`
}

type itemPayload struct {
	Description       string `json:"description"`
	Assignee          string `json:"assignee"`
	Deadline          string `json:"deadline"`
	Priority          string `json:"priority"`
	SuggestedApproach string `json:"suggested_approach"`
	NeedsConfirmation bool   `json:"needs_confirmation"`
}

type clusterPayload struct {
	Clusters []struct {
		Name        string `json:"name"`
		Reasoning   string `json:"reasoning"`
		TaskIndices []int  `json:"task_indices"`
	} `json:"clusters"`
}

// stripFences removes a markdown code fence if the model wrapped its JSON in
// one despite instructions.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parseExtraction validates model output against the expected schema and
// fails closed: malformed JSON, an item without a description, a garbled
// deadline or an unknown priority all reject the whole response. An absent
// deadline or priority is fine; garbage is not.
func parseExtraction(raw string) (*models.ExtractionResult, error) {
	var payload extractionPayload
	if err := json.Unmarshal([]byte(stripFences(raw)), &payload); err != nil {
		return nil, fmt.Errorf("extraction response is not valid JSON: %w", err)
	}

	result := &models.ExtractionResult{}
	lists := []struct {
		items []itemPayload
		out   *[]models.ExtractedItem
		name  string
	}{
		{payload.Commitments, &result.Commitments, "commitments"},
		{payload.ActionItems, &result.ActionItems, "action_items"},
		{payload.FollowUps, &result.FollowUps, "follow_ups"},
		{payload.Risks, &result.Risks, "risks"},
	}

	for _, list := range lists {
		for i, item := range list.items {
			converted, err := convertItem(item)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", list.name, i, err)
			}
			*list.out = append(*list.out, converted)
		}
	}

	return result, nil
}

func convertItem(item itemPayload) (models.ExtractedItem, error) {
	if strings.TrimSpace(item.Description) == "" {
		return models.ExtractedItem{}, fmt.Errorf("missing description")
	}

	out := models.ExtractedItem{
		Description:       strings.TrimSpace(item.Description),
		Assignee:          strings.TrimSpace(item.Assignee),
		SuggestedApproach: strings.TrimSpace(item.SuggestedApproach),
		NeedsConfirmation: item.NeedsConfirmation,
	}

	if item.Deadline != "" {
		t, err := time.Parse("2006-01-02", item.Deadline)
		if err != nil {
			return models.ExtractedItem{}, fmt.Errorf("unparseable deadline %q", item.Deadline)
		}
		utc := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		out.Deadline = &utc
	}

	switch strings.ToLower(item.Priority) {
	case "":
		out.Priority = models.PriorityMedium
	case string(models.PriorityLow):
		out.Priority = models.PriorityLow
	case string(models.PriorityMedium):
		out.Priority = models.PriorityMedium
	case string(models.PriorityHigh):
		out.Priority = models.PriorityHigh
	case string(models.PriorityHighest):
		out.Priority = models.PriorityHighest
	default:
		return models.ExtractedItem{}, fmt.Errorf("unknown priority %q", item.Priority)
	}

	return out, nil
}

// parseClusters is deliberately lenient: anything that does not decode into
// the cluster schema yields no clusters instead of an error.
func parseClusters(raw string) []models.Cluster {
	var payload clusterPayload
	if err := json.Unmarshal([]byte(stripFences(raw)), &payload); err != nil {
		return nil
	}

	var clusters []models.Cluster
	for _, c := range payload.Clusters {
		if c.Name == "" || len(c.TaskIndices) == 0 {
			continue
		}
		clusters = append(clusters, models.Cluster{
			Name:        c.Name,
			Reasoning:   c.Reasoning,
			TaskIndices: c.TaskIndices,
		})
	}
	return clusters
}
