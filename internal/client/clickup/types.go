package clickup

type ClickUpErrors struct {
	Err  string `json:"err"`
	Code string `json:"ECODE"`
}

type ClickUpStatus struct {
	Status string `json:"status"`
	Color  string `json:"color"`
	Type   string `json:"type"`
}

type ClickUpTask struct {
	Id     string        `json:"id"`
	Name   string        `json:"name"`
	Status ClickUpStatus `json:"status"`
}

type CreateTaskRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	DueDate     *int64 `json:"due_date,omitempty"`
	Priority    *int   `json:"priority,omitempty"`
}
