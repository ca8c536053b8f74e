// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package telemetry provides OpenTelemetry tracing utilities for the
// reservation planner.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the planner.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"
	HTTPStatusCodeKey = "http.status_code"

	// Resolver attributes
	ResolverCandidateCountKey = "reservation.candidate_count"
	ResolverConflictCountKey  = "reservation.conflict_count"
	ResolverSkipCountKey      = "reservation.skip_count"
	ResolverDurationKey       = "reservation.resolve_duration_ms"

	// Tuner attributes
	TunerIndexKey = "tuner.index"
	TunerTypeKey  = "tuner.channel_type"

	// Catalogue attributes
	CatalogueRuleIDKey    = "catalogue.rule_id"
	CatalogueCacheHitKey  = "catalogue.cache_hit"
	CatalogueProgramIDKey = "catalogue.program_id"

	// Planner operation attributes
	PlannerOperationKey = "planner.operation"
	PlannerTriggerKey   = "planner.trigger"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// ResolverAttributes creates span attributes describing one resolver run.
func ResolverAttributes(candidateCount, conflictCount, skipCount int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(ResolverCandidateCountKey, candidateCount),
		attribute.Int(ResolverConflictCountKey, conflictCount),
		attribute.Int(ResolverSkipCountKey, skipCount),
	}
}

// TunerAttributes creates span attributes for one tuner-assignment attempt.
func TunerAttributes(index int, channelType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(TunerIndexKey, index),
		attribute.String(TunerTypeKey, channelType),
	}
}

// CatalogueAttributes creates span attributes for a catalogue collaborator call.
func CatalogueAttributes(ruleID string, programID int64, cacheHit bool) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if ruleID != "" {
		attrs = append(attrs, attribute.String(CatalogueRuleIDKey, ruleID))
	}
	if programID != 0 {
		attrs = append(attrs, attribute.Int64(CatalogueProgramIDKey, programID))
	}
	attrs = append(attrs, attribute.Bool(CatalogueCacheHitKey, cacheHit))
	return attrs
}

// PlannerAttributes creates span attributes for a planner façade operation.
func PlannerAttributes(operation, trigger string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String(PlannerOperationKey, operation)}
	if trigger != "" {
		attrs = append(attrs, attribute.String(PlannerTriggerKey, trigger))
	}
	return attrs
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
