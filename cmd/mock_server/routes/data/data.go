package data

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aixcyberchallenge/data-form/internal/types"
)

const Bucket = "mock-bucket"

// In memory stand-in for the data API. Keys are unique for the life of the process.
type Store struct {
	now     func() time.Time
	byKey   map[string]struct{}
	records []types.Submission
	mu      sync.Mutex
}

func NewStore(now func() time.Time) *Store {
	return &Store{
		now:   now,
		byKey: map[string]struct{}{},
	}
}

func (s *Store) AddRoutes(e *echo.Echo) {
	g := e.Group("/data")
	g.GET("/", s.List)
	g.POST("/", s.Save)
}

// Save stores a record.
//
//	@Summary		Save a record
//	@Description	Stores the record in memory. A key can only be saved once.
//	@Tags			data
//	@Accept			json
//	@Produce		json
//
//	@Param			payload	body		types.Submission	true	"Record"
//
//	@Success		200		{object}	types.SaveResponse
//
//	@Failure		400		{object}	types.Error
//	@Failure		409		{object}	types.Error
//
//	@Router			/data/ [post]
func (s *Store) Save(c echo.Context) error {
	var submission types.Submission

	err := c.Bind(&submission)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, types.StringError("invalid JSON"))
	}

	err = c.Validate(submission)
	if err != nil {
		body := types.ValidationError(err)
		body.Message = "key and value are required"
		return echo.NewHTTPError(http.StatusBadRequest, body)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byKey[submission.Key]; ok {
		return echo.NewHTTPError(http.StatusConflict, types.StringError("duplicate key"))
	}

	s.byKey[submission.Key] = struct{}{}
	s.records = append(s.records, submission)

	return c.JSON(http.StatusOK, types.SaveResponse{
		Message: "Data saved successfully",
		S3Key:   "data/" + submission.Key + "_" + s.now().UTC().Format("20060102_1504") + ".json",
		Bucket:  Bucket,
		Data:    submission,
	})
}

// List returns every stored record in the order saved.
//
//	@Summary		List records
//	@Description	Every record saved since the mock started
//	@Tags			data
//	@Produce		json
//
//	@Success		200	{array}	types.Submission
//
//	@Router			/data/ [get]
func (s *Store) List(c echo.Context) error {
	s.mu.Lock()
	records := make([]types.Submission, len(s.records))
	copy(records, s.records)
	s.mu.Unlock()

	return c.JSON(http.StatusOK, records)
}
