package bootstrap

import "context"

// AuditLog is one process-level event worth keeping, such as a start or a
// shutdown.
type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
