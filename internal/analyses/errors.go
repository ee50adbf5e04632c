package analyses

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrNotCompleted = errors.New("analysis not completed")
	ErrPollLimited  = errors.New("poll rate exceeded")
)

const (
	ErrorCodeValidation        = "VALIDATION_ERROR"
	ErrorCodeLLMTimeout        = "LLM_TIMEOUT"
	ErrorCodeLLMSchemaMismatch = "LLM_SCHEMA_MISMATCH"
	ErrorCodeStorage           = "STORAGE_ERROR"
	ErrorCodeInternal          = "INTERNAL_ERROR"
)
