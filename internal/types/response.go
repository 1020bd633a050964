package types

type (
	Message struct {
		Message string `json:"message" validate:"required"`
	}

	// Returned by POST /data once the record is stored
	SaveResponse struct {
		Message string     `json:"message" validate:"required"`
		S3Key   string     `json:"s3_key"  validate:"required"`
		Bucket  string     `json:"bucket"  validate:"required"`
		Data    Submission `json:"data"`
	}

	// Returned by GET /data
	StatusResponse struct {
		Endpoints map[string]string `json:"endpoints"`
		Message   string            `json:"message"   validate:"required"`
		Bucket    string            `json:"bucket"    validate:"required"`
		Timestamp string            `json:"timestamp" validate:"required"`
	}
)
