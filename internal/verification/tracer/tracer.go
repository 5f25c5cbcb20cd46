// Package tracer provides a lightweight tracing abstraction for the
// verification workflow, keeping the session engine decoupled from the
// OpenTelemetry APIs. Production wiring uses the otel adapter; tests use the
// no-op implementation.
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording any error that occurred.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	SetAttributes(attrs ...Attribute)

	// AddEvent records a timestamped event within the span.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int64 creates an int64 attribute.
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashIdentity returns a short SHA-256 hash of an identity number for safe
// correlation in traces without exposing PII.
func HashIdentity(value string) string {
	if value == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}

// Span names used by the verification workflow.
const (
	SpanVerifyField   = "verification.field"
	SpanOTPInitiate   = "verification.otp.initiate"
	SpanOTPSubmit     = "verification.otp.submit"
	SpanProfileSubmit = "profile.submit"
)

// Attribute keys used by the verification workflow.
const (
	AttrChannel    = "verification.channel"
	AttrGeneration = "verification.generation"
	AttrStale      = "verification.stale"
	AttrDuration   = "verification.duration_ms"
	AttrIdentity   = "verification.identity_hash"
	AttrVariant    = "profile.variant"
	AttrOutcome    = "outcome"
)
