package types

type (
	// Epoch milliseconds
	UnixMilli int64

	// Queued by the data API for every stored record
	StoredNotification struct {
		Key        string `json:"key"         validate:"required"`
		ObjectName string `json:"object_name" validate:"required"`
		Bucket     string `json:"bucket"      validate:"required"`
		SHA256     string `json:"sha256"      validate:"required"`
		StoredAt   string `json:"stored_at"`
	}
)
