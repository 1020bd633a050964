package data

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	servermiddleware "github.com/aixcyberchallenge/data-form/cmd/server/internal/middleware"
	"github.com/aixcyberchallenge/data-form/cmd/server/internal/response"
	"github.com/aixcyberchallenge/data-form/internal/audit"
	"github.com/aixcyberchallenge/data-form/internal/hash"
	"github.com/aixcyberchallenge/data-form/internal/logger"
	"github.com/aixcyberchallenge/data-form/internal/queue"
	"github.com/aixcyberchallenge/data-form/internal/types"
	"github.com/aixcyberchallenge/data-form/internal/upload"
)

const name = "github.com/aixcyberchallenge/data-form/server/routes/data"

var tracer = otel.Tracer(name)

const (
	objectTimeFormat = "20060102_1504"
	contentType      = "application/json"
)

var errTrailingData = errors.New("unexpected data after JSON object")

// Endpoint descriptions served by GET /data
var Endpoints = map[string]string{
	"POST /data": "Save data to storage",
	"GET /data":  "Check API status",
}

type Handler struct {
	store upload.Uploader
	// nil when notifications are disabled
	notifier queue.Queuer
}

func NewHandler(store upload.Uploader, notifier queue.Queuer) *Handler {
	return &Handler{store: store, notifier: notifier}
}

func (h *Handler) AddRoutes(e *echo.Echo, allowOrigins []string) {
	e.OPTIONS("/*", Preflight)

	g := e.Group("/data", corsMiddleware(allowOrigins))
	g.OPTIONS("/", Preflight)
	g.GET("/", h.Status)
	g.POST("/", h.Save)
}

// ObjectName is where a record for `key` received at `t` is stored.
// The key is path escaped so it can not add or leave path segments.
func ObjectName(key string, t time.Time) string {
	return fmt.Sprintf("data/%s_%s.json", url.PathEscape(key), t.UTC().Format(objectTimeFormat))
}

func requestTime(c echo.Context) time.Time {
	t, ok := c.Get(servermiddleware.TimeKey).(time.Time)
	if !ok {
		return time.Now()
	}
	return t
}

func (h *Handler) Status(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Status")
	defer span.End()

	bucket, err := h.store.StoreIdentifier(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get store identifier")
		return response.InternalServerError
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "reported status")
	return c.JSON(http.StatusOK, types.StatusResponse{
		Endpoints: Endpoints,
		Message:   response.MessageRunning,
		Bucket:    bucket,
		Timestamp: types.FormatTimestamp(requestTime(c)),
	})
}

func (h *Handler) Save(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Save")
	defer span.End()

	auditContext := audit.Context{RequestID: c.Response().Header().Get(echo.HeaderXRequestID)}
	receivedAt := requestTime(c)

	span.AddEvent("parsing request body")
	submission, err := decodeSubmission(c.Request().Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Ok, "failed to parse request data")
		audit.LogDataRejected(auditContext, response.MessageInvalidJSON)
		return response.InvalidJSONError
	}

	span.AddEvent("validating request body")
	if err = c.Validate(submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Ok, "failed to validate request data")
		audit.LogDataRejected(auditContext, response.MessageRequired)
		return response.RequiredError(err)
	}

	objectName := ObjectName(submission.Key, receivedAt)
	span.SetAttributes(
		attribute.String("key", submission.Key),
		attribute.String("object.name", objectName),
		attribute.Int64("request.timestamp_ms", receivedAt.UnixMilli()),
	)

	span.AddEvent("checking store is reachable")
	if err = h.store.Check(ctx); err != nil {
		code := storeCode(err)
		logger.Logger.ErrorContext(ctx, "store unreachable", "code", code, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "store unreachable")
		audit.LogStorageFailed(auditContext, submission.Key, objectName, code)
		return response.StorageError(code)
	}

	content, err := json.MarshalIndent(submission, "", "  ")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to serialize record")
		return response.InternalServerError
	}

	span.AddEvent("uploading record")
	err = h.store.Upload(ctx, bytes.NewReader(content), int64(len(content)), objectName, contentType)
	if err != nil {
		code := storeCode(err)
		logger.Logger.ErrorContext(ctx, "failed to store record", "object", objectName, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to upload record")
		audit.LogStorageFailed(auditContext, submission.Key, objectName, code)
		return response.StorageError(code)
	}

	bucket, err := h.store.StoreIdentifier(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get store identifier")
		return response.InternalServerError
	}

	sum := hash.Buffer(content)
	audit.LogDataStored(auditContext, submission.Key, bucket, objectName, sum, len(content))
	logger.Logger.InfoContext(ctx, "stored record", "object", objectName, "bucket", bucket)

	if h.notifier != nil {
		span.AddEvent("sending notification")
		err = h.notifier.Enqueue(ctx, types.StoredNotification{
			Key:        submission.Key,
			ObjectName: objectName,
			Bucket:     bucket,
			SHA256:     sum,
			StoredAt:   types.FormatTimestamp(receivedAt),
		})
		if err != nil {
			// the record is stored, a lost notification is not worth failing the request
			logger.Logger.WarnContext(ctx, "failed to send notification", "object", objectName, "error", err)
			span.AddEvent("notification_failed")
		}
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "stored record")
	return c.JSON(http.StatusOK, types.SaveResponse{
		Message: response.MessageSaved,
		S3Key:   objectName,
		Bucket:  bucket,
		Data:    submission,
	})
}

// decodeSubmission reads exactly one JSON object. An empty body is an empty record.
func decodeSubmission(r io.Reader) (types.Submission, error) {
	var submission types.Submission

	dec := json.NewDecoder(r)
	if err := dec.Decode(&submission); err != nil {
		if errors.Is(err, io.EOF) {
			return submission, nil
		}
		return submission, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return submission, errTrailingData
	}

	return submission, nil
}

func storeCode(err error) string {
	var storeErr *upload.StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Code
	}
	return upload.CodeUnknown
}
