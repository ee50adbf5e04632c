// Package chat keeps per-analysis Q&A sessions in memory.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"insightgen-backend/internal/analyses"
	"insightgen-backend/internal/llm"
	"insightgen-backend/internal/shared/metrics"
	"insightgen-backend/internal/shared/telemetry"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	greeting     = "Hi! I'm your AI analyst. Ask me anything about this data — trends, recommendations, or specific metrics."
	apologyReply = "I apologize, but I encountered an error. Please try asking your question again."
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrBusy         = errors.New("a reply is already pending")
)

// Message is one transcript entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type session struct {
	messages []Message
	pending  bool
}

// Service runs chat sessions against completed analyses. Sessions are
// ephemeral and keyed by (user, analysis).
type Service struct {
	Analyses *analyses.Service
	LLM      llm.Client

	mu       sync.Mutex
	sessions map[string]*session
}

// NewService constructs a chat service.
func NewService(analysesSvc *analyses.Service, client llm.Client) *Service {
	return &Service{
		Analyses: analysesSvc,
		LLM:      client,
		sessions: make(map[string]*session),
	}
}

// Transcript returns the session transcript, creating the session with its
// greeting on first access.
func (s *Service) Transcript(ctx context.Context, userID, analysisID string) ([]Message, error) {
	if _, err := s.completedAnalysis(ctx, userID, analysisID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getOrCreateLocked(userID, analysisID)
	return copyMessages(sess.messages), nil
}

// Send appends the user message, asks the model, and appends the reply.
// While a reply is pending further sends are rejected and the transcript is
// left unchanged. A model failure appends the fixed apologetic reply and the
// session returns to idle.
func (s *Service) Send(ctx context.Context, userID, analysisID, message string) ([]Message, error) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}
	analysis, err := s.completedAnalysis(ctx, userID, analysisID)
	if err != nil {
		return nil, err
	}

	key := sessionKey(userID, analysisID)
	s.mu.Lock()
	sess := s.getOrCreateLocked(userID, analysisID)
	if sess.pending {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	sess.pending = true
	sess.messages = append(sess.messages, Message{Role: RoleUser, Content: trimmed})
	s.mu.Unlock()

	reply, replyErr := s.ask(ctx, analysis, trimmed)

	s.mu.Lock()
	defer s.mu.Unlock()
	sess = s.sessions[key]
	sess.pending = false
	if replyErr != nil {
		metrics.IncChatFailed()
		telemetry.Warn("chat.reply_failed", map[string]any{
			"analysis_id": analysisID,
			"error":       replyErr.Error(),
		})
		sess.messages = append(sess.messages, Message{Role: RoleAssistant, Content: apologyReply})
	} else {
		metrics.IncChatMessage()
		sess.messages = append(sess.messages, Message{Role: RoleAssistant, Content: reply})
	}
	return copyMessages(sess.messages), nil
}

func (s *Service) ask(ctx context.Context, analysis analyses.Analysis, question string) (string, error) {
	result := analysis.Result
	contextData := map[string]any{
		"title":           analysis.Title,
		"data_type":       analysis.DataType,
		"summary":         result.Summary,
		"key_insights":    result.KeyInsights,
		"recommendations": result.Recommendations,
		"anomalies":       result.Anomalies,
		"metrics":         result.Metrics,
	}
	contextJSON, err := json.MarshalIndent(contextData, "", "  ")
	if err != nil {
		return "", fmt.Errorf("chat context: %w", err)
	}

	reply, err := s.LLM.Invoke(ctx, llm.Request{
		Prompt: llm.BuildChatPrompt(string(contextJSON), question),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func (s *Service) completedAnalysis(ctx context.Context, userID, analysisID string) (analyses.Analysis, error) {
	analysis, err := s.Analyses.Get(ctx, userID, analysisID)
	if err != nil {
		return analyses.Analysis{}, err
	}
	if analysis.Status != analyses.StatusCompleted || analysis.Result == nil {
		return analyses.Analysis{}, analyses.ErrNotCompleted
	}
	return analysis, nil
}

func (s *Service) getOrCreateLocked(userID, analysisID string) *session {
	key := sessionKey(userID, analysisID)
	sess, ok := s.sessions[key]
	if !ok {
		sess = &session{
			messages: []Message{{Role: RoleAssistant, Content: greeting}},
		}
		s.sessions[key] = sess
	}
	return sess
}

func sessionKey(userID, analysisID string) string {
	return userID + "|" + analysisID
}

func copyMessages(messages []Message) []Message {
	out := make([]Message, len(messages))
	copy(out, messages)
	return out
}
