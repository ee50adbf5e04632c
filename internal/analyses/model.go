package analyses

import "time"

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Analysis represents one uploaded data set and its AI analysis job.
type Analysis struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Title        string     `json:"title"`
	DataType     string     `json:"dataType"`
	Status       string     `json:"status"`
	FileNames    []string   `json:"fileNames"`
	ObjectKeys   []string   `json:"-"`
	Result       *Result    `json:"result,omitempty"`
	ErrorCode    string     `json:"errorCode,omitempty"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

var dataTypes = map[string]bool{
	"sales":             true,
	"customer_feedback": true,
	"support_chats":     true,
	"product_reviews":   true,
	"mixed":             true,
	"other":             true,
}

// ValidDataType reports whether dataType is one of the accepted categories.
func ValidDataType(dataType string) bool {
	return dataTypes[dataType]
}

var allowedExtensions = map[string]bool{
	".csv":  true,
	".json": true,
	".txt":  true,
	".pdf":  true,
}

// AllowedFileExtension reports whether ext (including the dot) is accepted for upload.
func AllowedFileExtension(ext string) bool {
	return allowedExtensions[ext]
}
