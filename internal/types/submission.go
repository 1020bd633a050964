package types

import "time"

// ISO-8601 with millisecond precision, the shape browsers emit from Date.toISOString
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

type (
	// One key/value entry posted to the data API. Built fresh for every submission.
	Submission struct {
		Key         string `json:"key"         validate:"required,notblank"`
		Value       string `json:"value"       validate:"required,notblank"`
		Category    string `json:"category"`
		Description string `json:"description"`
		// Capture time in TimestampFormat
		Timestamp string `json:"timestamp"`
	}
)

// FormatTimestamp renders t in UTC using TimestampFormat
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}
