package activity

import (
	"strings"
	"time"
)

// Event verbs emitted by the style compiler.
const (
	VerbCompiled         = "styles.compiled"
	VerbCacheInvalidated = "styles.cache.invalidated"
	VerbFieldSkipped     = "styles.field.skipped"
)

// Object types attached to the events above.
const (
	ObjectStylesheet = "styles.stylesheet"
	ObjectCache      = "styles.cache"
	ObjectField      = "styles.field"
)

// StylesEventInput describes the common fields for style compiler events.
type StylesEventInput struct {
	ActorID  string
	UserID   string
	TenantID string
	// ObjectID is the scope id for compilations and skipped fields, and the
	// key or prefix for invalidations.
	ObjectID   string
	FieldID    string
	Reason     string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildCompiledEvent describes a finished (uncached) compilation.
func BuildCompiledEvent(input StylesEventInput) Event {
	return buildStylesEvent(VerbCompiled, ObjectStylesheet, input)
}

// BuildCacheInvalidatedEvent describes a cache invalidation by key or prefix.
func BuildCacheInvalidatedEvent(input StylesEventInput) Event {
	return buildStylesEvent(VerbCacheInvalidated, ObjectCache, input)
}

// BuildFieldSkippedEvent describes a field dropped from the output because of
// an invalid value or a failing condition. The object id becomes
// "<scope>#<field>".
func BuildFieldSkippedEvent(input StylesEventInput) Event {
	fieldID := strings.TrimSpace(input.FieldID)
	if fieldID != "" {
		scope := strings.TrimSpace(input.ObjectID)
		if scope == "" {
			input.ObjectID = fieldID
		} else {
			input.ObjectID = scope + "#" + fieldID
		}
	}
	return buildStylesEvent(VerbFieldSkipped, ObjectField, input)
}

func buildStylesEvent(verb, objectType string, input StylesEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if field := strings.TrimSpace(input.FieldID); field != "" {
		metadata = ensureMetadata(metadata)
		metadata["field_id"] = field
	}
	if reason := strings.TrimSpace(input.Reason); reason != "" {
		metadata = ensureMetadata(metadata)
		metadata["reason"] = reason
	}

	objectID := strings.TrimSpace(input.ObjectID)
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
