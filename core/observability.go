package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// runtime carries the ambient dependencies shared by the provisioning and
// binding services.
type runtime struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorFactory    ErrorFactory
	errorMapper     ErrorMapper
}

func (r *runtime) mapError(err error) error {
	if err == nil {
		return nil
	}
	if r == nil || r.errorMapper == nil {
		return err
	}
	mapped := r.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (r *runtime) observeOperation(
	ctx context.Context,
	startedAt time.Time,
	operation string,
	err error,
	fields map[string]any,
) {
	if r == nil {
		return
	}
	operation = normalizeOperation(operation)
	if operation == "" {
		operation = "unknown"
	}
	status := "success"
	if err != nil {
		status = "failure"
	}

	contextFields := cloneFields(fields)
	contextFields["event_type"] = operation
	contextFields["status"] = status
	contextFields["duration_ms"] = time.Since(startedAt).Milliseconds()
	if err != nil {
		contextFields["error"] = err.Error()
	}

	tags := map[string]string{
		"operation": operation,
		"status":    status,
	}
	for _, key := range []string{"service_instance_id", "binding_id", "app_id", "outcome"} {
		if value := strings.TrimSpace(fmt.Sprint(contextFields[key])); value != "" && value != "<nil>" {
			tags[key] = value
		}
	}

	r.recordCounter(ctx, "broker."+operation+".total", 1, tags)
	r.recordHistogram(ctx, "broker."+operation+".duration_ms", float64(time.Since(startedAt).Milliseconds()), tags)

	if err != nil {
		r.logError(ctx, operation+" failed", contextFields)
		return
	}
	r.logInfo(ctx, operation+" succeeded", contextFields)
}

func (r *runtime) logInfo(ctx context.Context, message string, fields map[string]any) {
	r.logWithLevel(ctx, "info", message, fields)
}

func (r *runtime) logError(ctx context.Context, message string, fields map[string]any) {
	r.logWithLevel(ctx, "error", message, fields)
}

func (r *runtime) logWithLevel(ctx context.Context, level string, message string, fields map[string]any) {
	if r == nil || r.logger == nil {
		return
	}
	logger := r.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(cloneFields(fields))
	}
	args := flattenFields(fields)
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		logger.Error(message, args...)
	default:
		logger.Info(message, args...)
	}
}

func (r *runtime) recordCounter(ctx context.Context, name string, value int64, tags map[string]string) {
	if r == nil || r.metricsRecorder == nil {
		return
	}
	r.metricsRecorder.IncCounter(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func (r *runtime) recordHistogram(ctx context.Context, name string, value float64, tags map[string]string) {
	if r == nil || r.metricsRecorder == nil {
		return
	}
	r.metricsRecorder.ObserveHistogram(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func cloneFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}

func normalizeOperation(operation string) string {
	operation = strings.TrimSpace(strings.ToLower(operation))
	operation = strings.ReplaceAll(operation, " ", "_")
	operation = strings.ReplaceAll(operation, "-", "_")
	return operation
}
