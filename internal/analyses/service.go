package analyses

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"insightgen-backend/internal/extract"
	"insightgen-backend/internal/llm"
	"insightgen-backend/internal/queue"
	"insightgen-backend/internal/shared/metrics"
	"insightgen-backend/internal/shared/storage/object"
	"insightgen-backend/internal/shared/telemetry"
)

// fileSeparator joins multiple extracted files into one prompt payload.
const fileSeparator = "\n\n---\n\n"

// Service contains business logic for analyses.
type Service struct {
	Repo  Repo
	Store object.ObjectStore
	LLM   llm.Client
	Queue queue.Client
}

// UploadFile is one multipart file from a submission.
type UploadFile struct {
	Name   string
	Reader io.Reader
}

// SubmitInput captures a new analysis submission.
type SubmitInput struct {
	UserID   string
	Title    string
	DataType string
	Files    []UploadFile
}

// Submit validates the submission, uploads all files, creates the processing
// record, and hands processing off to the queue or an in-process goroutine.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (Analysis, error) {
	if in.UserID == "" {
		return Analysis{}, errors.New("validation: userID is required")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Analysis{}, errors.New("validation: title is required")
	}
	if len(in.Files) == 0 {
		return Analysis{}, errors.New("validation: at least one file is required")
	}
	dataType := strings.TrimSpace(in.DataType)
	if dataType == "" {
		dataType = "other"
	}
	if !ValidDataType(dataType) {
		return Analysis{}, fmt.Errorf("validation: unknown data type %q", dataType)
	}
	for _, file := range in.Files {
		ext := strings.ToLower(filepath.Ext(file.Name))
		if !AllowedFileExtension(ext) {
			return Analysis{}, fmt.Errorf("validation: unsupported file type %q", file.Name)
		}
	}

	fileNames := make([]string, len(in.Files))
	objectKeys := make([]string, len(in.Files))
	g, gctx := errgroup.WithContext(ctx)
	for i, file := range in.Files {
		i, file := i, file
		g.Go(func() error {
			key, _, _, err := s.Store.Save(gctx, in.UserID, file.Name, file.Reader)
			if err != nil {
				return fmt.Errorf("upload %s: %w", file.Name, err)
			}
			fileNames[i] = file.Name
			objectKeys[i] = key
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Analysis{}, err
	}

	now := time.Now().UTC()
	analysis := Analysis{
		ID:         uuid.NewString(),
		UserID:     in.UserID,
		Title:      title,
		DataType:   dataType,
		Status:     StatusProcessing,
		FileNames:  fileNames,
		ObjectKeys: objectKeys,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Repo.Create(ctx, analysis); err != nil {
		return Analysis{}, err
	}
	metrics.IncAnalysisStarted()

	if s.Queue != nil {
		msg := queue.Message{
			Kind:       queue.KindAnalysis,
			AnalysisID: analysis.ID,
			RequestID:  requestIDFromContext(ctx),
			EnqueuedAt: now,
			Version:    queue.MessageVersion,
		}
		if err := s.Queue.Enqueue(ctx, msg); err == nil {
			return analysis, nil
		} else {
			telemetry.Warn("analysis.enqueue_fallback", map[string]any{
				"request_id":  requestIDFromContext(ctx),
				"analysis_id": analysis.ID,
				"error":       sanitizeError(err),
			})
		}
	}

	go s.processAsync(backgroundWithRequestID(ctx), analysis.ID)

	return analysis, nil
}

// Get returns an analysis owned by the user.
func (s *Service) Get(ctx context.Context, userID, analysisID string) (Analysis, error) {
	analysis, err := s.Repo.GetByID(ctx, analysisID)
	if err != nil {
		return Analysis{}, err
	}
	if analysis.UserID != userID {
		return Analysis{}, ErrNotFound
	}
	return analysis, nil
}

// List returns the user's analyses, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) processAsync(ctx context.Context, analysisID string) {
	defer func() {
		if r := recover(); r != nil {
			s.failAnalysis(ctx, analysisID, "", fmt.Errorf("panic: %v", r), nil)
		}
	}()
	_ = s.Process(ctx, analysisID)
}

// Process runs the analysis pipeline to completion, marking the record
// completed or failed. It is called in-process after Submit or by the
// queue worker.
func (s *Service) Process(ctx context.Context, analysisID string) error {
	startedAt := time.Now().UTC()

	analysis, err := s.Repo.GetByID(ctx, analysisID)
	if err != nil {
		err = fmt.Errorf("analysis lookup: %w", err)
		s.failAnalysis(ctx, analysisID, "", err, &startedAt)
		return err
	}
	if s.Store == nil {
		err := errors.New("missing object store")
		s.failAnalysis(ctx, analysisID, analysis.UserID, err, &startedAt)
		return err
	}
	if s.LLM == nil {
		err := errors.New("missing llm client")
		s.failAnalysis(ctx, analysisID, analysis.UserID, err, &startedAt)
		return err
	}
	requestID := requestIDFromContext(ctx)
	llmClient := newRetryingLLM(s.LLM, analysisID, requestID)

	texts := make([]string, 0, len(analysis.ObjectKeys))
	for i, key := range analysis.ObjectKeys {
		fileName := ""
		if i < len(analysis.FileNames) {
			fileName = analysis.FileNames[i]
		}
		text, err := extract.ExtractText(ctx, s.Store, key, "", fileName)
		if err != nil {
			err = fmt.Errorf("storage load %s: %w", fileName, err)
			s.failAnalysis(ctx, analysisID, analysis.UserID, err, &startedAt)
			return err
		}
		texts = append(texts, text)
	}
	combined := strings.Join(texts, fileSeparator)

	raw, err := llmClient.Invoke(ctx, llm.Request{
		Prompt:             llm.BuildAnalysisPrompt(combined),
		ResponseJSONSchema: ResultSchema,
	})
	if err != nil {
		err = fmt.Errorf("llm analyze: %w", err)
		s.failAnalysis(ctx, analysisID, analysis.UserID, err, &startedAt)
		return err
	}

	result, err := ParseResult(raw)
	if err != nil {
		err = fmt.Errorf("llm output invalid: %w", err)
		s.failAnalysis(ctx, analysisID, analysis.UserID, err, &startedAt)
		return err
	}

	if err := s.Repo.Complete(ctx, analysisID, result); err != nil {
		err = fmt.Errorf("set analysis result failed: %w", err)
		s.failAnalysis(ctx, analysisID, analysis.UserID, err, &startedAt)
		return err
	}

	completedAt := time.Now().UTC()
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDuration(completedAt.Sub(startedAt))
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        requestID,
		"user_id":           analysis.UserID,
		"analysis_id":       analysisID,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"duration_ms":       float64(completedAt.Sub(startedAt).Microseconds()) / 1000.0,
	})
	return nil
}

func (s *Service) failAnalysis(ctx context.Context, analysisID, userID string, err error, startedAt *time.Time) {
	code := classifyFailure(err)
	msg := sanitizeError(err)
	completedAt := time.Now().UTC()
	if updateErr := s.Repo.Fail(context.Background(), analysisID, code, msg); updateErr != nil {
		fmt.Printf("failAnalysis: update failed id=%s err=%v orig=%v\n", analysisID, updateErr, err)
	}
	metrics.IncAnalysisFailed()
	if startedAt != nil {
		metrics.ObserveAnalysisDuration(completedAt.Sub(*startedAt))
	}
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           userID,
		"analysis_id":       analysisID,
		"status":            StatusFailed,
		"status_transition": "processing->failed",
		"error_code":        code,
	})
}

func classifyFailure(err error) string {
	if err == nil {
		return ErrorCodeInternal
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorCodeLLMTimeout
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") && (strings.Contains(msg, "llm") || strings.Contains(msg, "anthropic")) {
		return ErrorCodeLLMTimeout
	}
	if strings.Contains(msg, "schema") || strings.Contains(msg, "llm output invalid") || strings.Contains(msg, "llm output parse") {
		return ErrorCodeLLMSchemaMismatch
	}
	if strings.Contains(msg, "validation") && !strings.Contains(msg, "llm") {
		return ErrorCodeValidation
	}
	if strings.Contains(msg, "storage") || strings.Contains(msg, "upload") || strings.Contains(msg, "set analysis result") {
		return ErrorCodeStorage
	}
	return ErrorCodeInternal
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}
