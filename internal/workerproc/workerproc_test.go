package workerproc

import (
	"context"
	"errors"
	"testing"
)

type fakeProcessor struct {
	calls []string
	err   error
}

func (f *fakeProcessor) Process(ctx context.Context, analysisID string) error {
	f.calls = append(f.calls, analysisID)
	return f.err
}

func TestParseMessageRejectsEmptyBody(t *testing.T) {
	_, _, err := ParseMessage("   ")
	var emptyErr ErrEmptyBody
	if !errors.As(err, &emptyErr) {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
}

func TestParseMessageRejectsMissingID(t *testing.T) {
	_, _, err := ParseMessage(`{"requestId":"r-1","version":1}`)
	var missingErr ErrMissingAnalysisID
	if !errors.As(err, &missingErr) {
		t.Fatalf("expected ErrMissingAnalysisID, got %v", err)
	}
	if missingErr.RequestID != "r-1" {
		t.Fatalf("request id not carried: %+v", missingErr)
	}
}

func TestHandleMessageProcesses(t *testing.T) {
	processor := &fakeProcessor{}
	err := HandleMessage(context.Background(), processor, `{"analysisId":"a-1","requestId":"r-1","version":1}`)
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(processor.calls) != 1 || processor.calls[0] != "a-1" {
		t.Fatalf("unexpected calls: %v", processor.calls)
	}
}

func TestHandleMessageWrapsProcessError(t *testing.T) {
	processor := &fakeProcessor{err: errors.New("boom")}
	err := HandleMessage(context.Background(), processor, `{"analysisId":"a-1","version":1}`)
	var procErr ErrProcess
	if !errors.As(err, &procErr) {
		t.Fatalf("expected ErrProcess, got %v", err)
	}
	if procErr.AnalysisID != "a-1" {
		t.Fatalf("analysis id not carried: %+v", procErr)
	}
}
