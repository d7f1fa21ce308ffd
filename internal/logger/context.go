package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields are added to every record logged with a context carrying them.
type LogFields struct {
	JobID     string
	Stage     string // coordinator state, e.g. "fixing"
	Component string // e.g. "pourfix.validator.eslint"
}

// WithLogFields merges fields into ctx. Non-empty values win over existing ones.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	return context.WithValue(ctx, logFieldsKey, mergeFields(GetLogFields(ctx), fields))
}

// GetLogFields returns the fields carried by ctx, or the zero value.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing
	if next.JobID != "" {
		result.JobID = next.JobID
	}
	if next.Stage != "" {
		result.Stage = next.Stage
	}
	if next.Component != "" {
		result.Component = next.Component
	}
	return result
}

// Truncate shortens s to maxLen bytes, appending "..." when cut.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
