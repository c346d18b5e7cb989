package model

import "time"

const (
	AuditStatusSuccess = "success"
	AuditStatusFailure = "failure"
)

const (
	AuditActionRegister   = "auth.register"
	AuditActionLogin      = "auth.login"
	AuditActionRefresh    = "auth.refresh"
	AuditActionLogout     = "auth.logout"
	AuditActionTodoCreate = "todo.create"
	AuditActionTodoUpdate = "todo.update"
	AuditActionTodoDelete = "todo.delete"
)

type AuditActor struct {
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	IP       string `json:"ip,omitempty"`
}

type AuditEntry struct {
	ID         int64      `json:"id"`
	Action     string     `json:"action"`
	OccurredAt time.Time  `json:"occurred_at"`
	Actor      AuditActor `json:"actor"`
	Status     string     `json:"status"`
	Resource   string     `json:"resource,omitempty"`
	Error      string     `json:"error,omitempty"`
}

type AuditListData struct {
	Items []AuditEntry `json:"items"`
}
