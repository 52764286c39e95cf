package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for the inbound HTTP request ID.
	RequestIDKey contextKey = "request_id"

	// CaseIDKey is the context key for the case a request/operation acts on.
	CaseIDKey contextKey = "case_id"

	// SubmissionIDKey is the context key for the submission a request/operation acts on.
	SubmissionIDKey contextKey = "submission_id"

	// ActorRoleKey is the context key for the acting role (spec.md §3 actor roles).
	ActorRoleKey contextKey = "actor_role"

	// ActorIDKey is the context key for the acting identity.
	ActorIDKey contextKey = "actor_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithCaseID adds a case ID to the context.
func WithCaseID(ctx context.Context, caseID string) context.Context {
	return context.WithValue(ctx, CaseIDKey, caseID)
}

// GetCaseID retrieves the case ID from the context.
func GetCaseID(ctx context.Context) string {
	if caseID, ok := ctx.Value(CaseIDKey).(string); ok {
		return caseID
	}
	return ""
}

// WithSubmissionID adds a submission ID to the context.
func WithSubmissionID(ctx context.Context, submissionID string) context.Context {
	return context.WithValue(ctx, SubmissionIDKey, submissionID)
}

// GetSubmissionID retrieves the submission ID from the context.
func GetSubmissionID(ctx context.Context) string {
	if submissionID, ok := ctx.Value(SubmissionIDKey).(string); ok {
		return submissionID
	}
	return ""
}

// WithActor adds the acting role and identity to the context.
func WithActor(ctx context.Context, role, id string) context.Context {
	ctx = context.WithValue(ctx, ActorRoleKey, role)
	return context.WithValue(ctx, ActorIDKey, id)
}

// GetActorRole retrieves the acting role from the context.
func GetActorRole(ctx context.Context) string {
	if role, ok := ctx.Value(ActorRoleKey).(string); ok {
		return role
	}
	return ""
}

// GetActorID retrieves the acting identity from the context.
func GetActorID(ctx context.Context) string {
	if id, ok := ctx.Value(ActorIDKey).(string); ok {
		return id
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}
	if caseID := GetCaseID(ctx); caseID != "" {
		fields = append(fields, "case_id", caseID)
	}
	if submissionID := GetSubmissionID(ctx); submissionID != "" {
		fields = append(fields, "submission_id", submissionID)
	}
	if role := GetActorRole(ctx); role != "" {
		fields = append(fields, "actor_role", role)
	}
	if actorID := GetActorID(ctx); actorID != "" {
		fields = append(fields, "actor_id", actorID)
	}

	return fields
}

// ContextLogger is a logger that automatically includes context fields.
type ContextLogger struct {
	logger *Logger
	ctx    context.Context
}

// NewContextLogger creates a logger that automatically includes context fields.
func NewContextLogger(logger *Logger, ctx context.Context) *ContextLogger {
	return &ContextLogger{
		logger: logger.WithContext(ctx),
		ctx:    ctx,
	}
}

// Debug logs a debug message with context fields.
func (cl *ContextLogger) Debug(msg string, args ...any) {
	cl.logger.DebugContext(cl.ctx, msg, args...)
}

// Info logs an info message with context fields.
func (cl *ContextLogger) Info(msg string, args ...any) {
	cl.logger.InfoContext(cl.ctx, msg, args...)
}

// Warn logs a warning message with context fields.
func (cl *ContextLogger) Warn(msg string, args ...any) {
	cl.logger.WarnContext(cl.ctx, msg, args...)
}

// Error logs an error message with context fields.
func (cl *ContextLogger) Error(msg string, args ...any) {
	cl.logger.ErrorContext(cl.ctx, msg, args...)
}

// With creates a new context logger with additional fields.
func (cl *ContextLogger) With(args ...any) *ContextLogger {
	return &ContextLogger{
		logger: cl.logger.With(args...),
		ctx:    cl.ctx,
	}
}
