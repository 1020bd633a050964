package audit

import (
	"bytes"
	"io"
	"os"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureStdout(fn func()) (string, error) {
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		return "", err
	}

	os.Stdout = w

	fn()

	if err := w.Close(); err != nil {
		return "", err
	}
	os.Stdout = orig

	var buf bytes.Buffer
	if _, err = io.Copy(&buf, r); err != nil {
		return "", err
	}

	if err := r.Close(); err != nil {
		return "", err
	}

	return buf.String(), nil
}

const uuidRegex = `[\da-f]{8}-[\da-f]{4}-[\da-f]{4}-[\da-f]{4}-[\da-f]{12}`

func TestLogDataStored(t *testing.T) {
	got, err := captureStdout(func() {
		LogDataStored(Context{RequestID: "req"}, "k1", "bucket", "data/k1_20261016_0930.json", "abc", 42)
	})
	require.NoError(t, err)

	expect := regexp.MustCompile(
		`^{"event":{"key":"k1","bucket_name":"bucket","object_name":"data/k1_20261016_0930.json","sha256":"abc","size":42},"event_id":"` + uuidRegex + `","request_id":"req","log_context":"audit","version":"\d\.\d\.\d","disposition":"good","event_type":"data_stored","timestamp":\d+}\n$`,
	)
	assert.Regexp(t, expect, got)
}

func TestLogDataRejected(t *testing.T) {
	got, err := captureStdout(func() {
		LogDataRejected(Context{}, "invalid JSON")
	})
	require.NoError(t, err)

	expect := regexp.MustCompile(
		`^{"event":{"reason":"invalid JSON"},"event_id":"` + uuidRegex + `","request_id":"","log_context":"audit","version":"\d\.\d\.\d","disposition":"bad","event_type":"data_rejected","timestamp":\d+}\n$`,
	)
	assert.Regexp(t, expect, got)
}

func TestLogStorageFailed(t *testing.T) {
	got, err := captureStdout(func() {
		LogStorageFailed(Context{RequestID: "req"}, "k1", "", "NoSuchBucket")
	})
	require.NoError(t, err)

	expect := regexp.MustCompile(
		`^{"event":{"key":"k1","object_name":"","code":"NoSuchBucket"},"event_id":"` + uuidRegex + `","request_id":"req","log_context":"audit","version":"\d\.\d\.\d","disposition":"bad","event_type":"storage_failed","timestamp":\d+}\n$`,
	)
	assert.Regexp(t, expect, got)
}
