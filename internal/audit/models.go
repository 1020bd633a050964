package audit

import (
	"github.com/aixcyberchallenge/data-form/internal/types"
)

var schemaVersion = "0.1.0"
var logContext = "audit"

type Disposition string

const (
	DispositionNeutral Disposition = "neutral"
	DispositionGood    Disposition = "good"
	DispositionBad     Disposition = "bad"
)

type EventType string

const (
	EvtDataStored    EventType = "data_stored"
	EvtDataRejected  EventType = "data_rejected"
	EvtStorageFailed EventType = "storage_failed"
)

type Message struct {
	EventID       string      `json:"event_id"    validate:"required"`
	RequestID     string      `json:"request_id"`
	LogContext    string      `json:"log_context" validate:"required"`
	SchemaVersion string      `json:"version"     validate:"required"`
	Disposition   Disposition `json:"disposition" validate:"required"`
	Type          EventType   `json:"event_type"  validate:"required"`

	Timestamp types.UnixMilli `json:"timestamp" validate:"required"`
}

type DataStoredEvent struct {
	Key        string `json:"key"         validate:"required"`
	BucketName string `json:"bucket_name" validate:"required"`
	ObjectName string `json:"object_name" validate:"required"`
	SHA256     string `json:"sha256"      validate:"required"`
	Size       int    `json:"size"`
}

type DataStored struct {
	Event DataStoredEvent `json:"event" validate:"required"`
	Message
}

type DataRejectedEvent struct {
	Reason string `json:"reason" validate:"required"`
}

type DataRejected struct {
	Event DataRejectedEvent `json:"event" validate:"required"`
	Message
}

type StorageFailedEvent struct {
	Key        string `json:"key"`
	ObjectName string `json:"object_name"`
	Code       string `json:"code" validate:"required"`
}

type StorageFailed struct {
	Event StorageFailedEvent `json:"event" validate:"required"`
	Message
}
