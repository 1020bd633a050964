package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aixcyberchallenge/data-form/internal/logger"
	"github.com/aixcyberchallenge/data-form/internal/types"
)

type Context struct {
	RequestID string
}

func newMessage(c Context, evt EventType, disposition Disposition) Message {
	return Message{
		EventID:       uuid.NewString(),
		RequestID:     c.RequestID,
		LogContext:    logContext,
		SchemaVersion: schemaVersion,
		Disposition:   disposition,
		Type:          evt,
		Timestamp:     types.UnixMilli(time.Now().UTC().UnixMilli()),
	}
}

// events go to stdout, one JSON document per line, apart from the slog stream on stderr
func emit(event any, evt EventType) {
	evtStr, err := json.Marshal(event)
	if err != nil {
		logger.Logger.Error("could not serialize audit event", "event_type", evt, "error", err)
		return
	}

	fmt.Println(string(evtStr))
}

func LogDataStored(c Context, key string, bucketName string, objectName string, sha256 string, size int) {
	event := DataStored{Message: newMessage(c, EvtDataStored, DispositionGood)}

	event.Event.Key = key
	event.Event.BucketName = bucketName
	event.Event.ObjectName = objectName
	event.Event.SHA256 = sha256
	event.Event.Size = size

	emit(event, EvtDataStored)
}

func LogDataRejected(c Context, reason string) {
	event := DataRejected{Message: newMessage(c, EvtDataRejected, DispositionBad)}
	event.Event.Reason = reason

	emit(event, EvtDataRejected)
}

func LogStorageFailed(c Context, key string, objectName string, code string) {
	event := StorageFailed{Message: newMessage(c, EvtStorageFailed, DispositionBad)}

	event.Event.Key = key
	event.Event.ObjectName = objectName
	event.Event.Code = code

	emit(event, EvtStorageFailed)
}
