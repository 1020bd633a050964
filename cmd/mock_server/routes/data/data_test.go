package data

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aixcyberchallenge/data-form/internal/types"
	"github.com/aixcyberchallenge/data-form/internal/validator"
)

var fixedNow = time.Date(2026, time.October, 16, 9, 30, 0, 0, time.UTC)

// Does a request and forwards errors to the error handler like the normal execution path
func doRequest(e *echo.Echo, c echo.Context, handler echo.HandlerFunc) {
	err := handler(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
}

func newEcho() *echo.Echo {
	e := echo.New()
	validate := validator.Create()
	e.Validator = &validate
	return e
}

func post(e *echo.Echo, s *Store, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/data/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	doRequest(e, e.NewContext(req, rec), s.Save)
	return rec
}

var saveTestTable = map[string]struct {
	body                 string
	expectedStatus       int
	expectedBodyFragment string
}{
	"Valid": {
		body:                 `{"key":"k1","value":"v1","timestamp":"2026-10-16T09:30:00.000Z"}`,
		expectedStatus:       http.StatusOK,
		expectedBodyFragment: `"s3_key":"data/k1_20261016_0930.json"`,
	},
	"MissingValue": {
		body:                 `{"key":"k1"}`,
		expectedStatus:       http.StatusBadRequest,
		expectedBodyFragment: `"message":"key and value are required"`,
	},
	"BlankKey": {
		body:                 `{"key":"  ","value":"v1"}`,
		expectedStatus:       http.StatusBadRequest,
		expectedBodyFragment: `"message":"key and value are required"`,
	},
	"InvalidJSON": {
		body:                 `{"key":`,
		expectedStatus:       http.StatusBadRequest,
		expectedBodyFragment: `"message":"invalid JSON"`,
	},
}

func TestSave(t *testing.T) {
	for name, tt := range saveTestTable {
		t.Run(name, func(t *testing.T) {
			e := newEcho()
			s := NewStore(func() time.Time { return fixedNow })

			rec := post(e, s, tt.body)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBodyFragment)
		})
	}
}

func TestSaveDuplicate(t *testing.T) {
	e := newEcho()
	s := NewStore(time.Now)

	first := post(e, s, `{"key":"k1","value":"v1"}`)
	require.Equal(t, http.StatusOK, first.Code)

	second := post(e, s, `{"key":"k1","value":"v2"}`)
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.JSONEq(t, `{"message":"duplicate key"}`, second.Body.String())
}

func TestList(t *testing.T) {
	e := newEcho()
	s := NewStore(time.Now)

	for _, body := range []string{`{"key":"b","value":"1"}`, `{"key":"a","value":"2"}`} {
		require.Equal(t, http.StatusOK, post(e, s, body).Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/data/", nil)
	rec := httptest.NewRecorder()
	doRequest(e, e.NewContext(req, rec), s.List)

	require.Equal(t, http.StatusOK, rec.Code)

	var records []types.Submission
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[0].Key)
	assert.Equal(t, "a", records[1].Key)
}

func TestListEmpty(t *testing.T) {
	e := newEcho()
	s := NewStore(time.Now)

	req := httptest.NewRequest(http.MethodGet, "/data/", nil)
	rec := httptest.NewRecorder()
	doRequest(e, e.NewContext(req, rec), s.List)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
