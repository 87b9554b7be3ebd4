package anthropic

import (
	"fmt"
	"strings"

	"github.com/minutemate/task-engine/internal/models"
)

func extractionPrompt(transcript string, dateContext string) string {
	return fmt.Sprintf(`You are a productivity assistant reviewing a meeting transcript to extract actionable items.

%s

Transcript:
%s

Identify four kinds of items:
- commitments: things a named person promised to do
- action_items: concrete work items discussed
- follow_ups: things to check on or circle back to
- risks: problems or concerns that need attention

Deadline guidance (relative to the meeting date):
- If a date is mentioned explicitly, use it.
- "urgent" or "ASAP" items: meeting date + 3 days.
- "this week" items: meeting date + 5 days.
- research or investigation items: meeting date + 10 days.
- Everything else: meeting date + 7 days.

Set "needs_confirmation" to true when the responsible person is unclear, unnamed, or "TBD".

Respond in JSON format:
{
  "commitments": [
    {
      "description": "what needs to happen",
      "assignee": "person or TBD",
      "deadline": "YYYY-MM-DD or empty string",
      "priority": "low|medium|high|highest",
      "suggested_approach": "optional hint",
      "needs_confirmation": false
    }
  ],
  "action_items": [],
  "follow_ups": [],
  "risks": []
}`, dateContext, transcript)
}

func clusteringPrompt(tasks []models.ClusterTask) string {
	var list strings.Builder
	for _, t := range tasks {
		deadline := "none"
		if t.Deadline != nil {
			deadline = t.Deadline.Format("2006-01-02")
		}
		fmt.Fprintf(&list, "%d. %s (deadline: %s)\n", t.Index, t.Description, deadline)
	}

	return fmt.Sprintf(`Analyze these tasks and group related ones into clusters/themes:

%s
Identify common themes, projects, or related work. Create meaningful clusters. Refer to tasks by the number shown.

Respond in JSON format:
{
  "clusters": [
    {
      "name": "Cluster Name",
      "reasoning": "Brief explanation",
      "task_indices": [0, 2, 4]
    }
  ]
}`, list.String())
}
