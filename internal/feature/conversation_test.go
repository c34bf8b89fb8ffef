package feature

import (
	"context"
	"strings"
	"testing"
	"time"

	apperrors "careerpilot/internal/errors"
	"careerpilot/internal/types"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	store := NewSessionStore(30*time.Minute, testLogger)
	t.Cleanup(store.Close)
	return store
}

func TestChatStartsNewSession(t *testing.T) {
	stub := &stubProvider{content: "Focus on system design practice."}
	store := newTestStore(t)
	advisor := NewChatAdvisor(newStubService(t, "chat", stub), store, 20, testLogger)

	output, err := advisor.Chat(context.Background(), types.CareerChatInput{
		Question: "How do I prepare for a staff interview?",
	})
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if output.SessionID == "" {
		t.Error("Expected a session id for a new conversation")
	}
	if output.Answer != "Focus on system design practice." {
		t.Errorf("Unexpected answer: %q", output.Answer)
	}
	if len(output.History) != 2 {
		t.Fatalf("Expected question and answer in history, got %d messages", len(output.History))
	}
	if output.History[0].Role != types.RoleUser || output.History[1].Role != types.RoleAssistant {
		t.Errorf("Unexpected history roles: %v, %v", output.History[0].Role, output.History[1].Role)
	}
	if store.Count() != 1 {
		t.Errorf("Expected one live session, got %d", store.Count())
	}
}

func TestChatContinuesSession(t *testing.T) {
	stub := &stubProvider{content: "first answer"}
	store := newTestStore(t)
	advisor := NewChatAdvisor(newStubService(t, "chat", stub), store, 20, testLogger)

	first, err := advisor.Chat(context.Background(), types.CareerChatInput{Question: "first question"})
	if err != nil {
		t.Fatalf("First chat returned error: %v", err)
	}

	stub.content = "second answer"
	second, err := advisor.Chat(context.Background(), types.CareerChatInput{
		SessionID: first.SessionID,
		Question:  "second question",
	})
	if err != nil {
		t.Fatalf("Second chat returned error: %v", err)
	}
	if second.SessionID != first.SessionID {
		t.Error("Expected the conversation to continue under the same session id")
	}
	if len(second.History) != 4 {
		t.Fatalf("Expected 4 history messages, got %d", len(second.History))
	}

	// The second prompt carries the earlier turns
	if len(stub.lastPrompt.History) != 2 {
		t.Fatalf("Expected 2 prior turns in the prompt, got %d", len(stub.lastPrompt.History))
	}
	if stub.lastPrompt.History[0].Content != "first question" {
		t.Errorf("Unexpected first prompt turn: %q", stub.lastPrompt.History[0].Content)
	}
}

func TestChatHistoryCappedInPrompt(t *testing.T) {
	stub := &stubProvider{content: "answer"}
	store := newTestStore(t)
	advisor := NewChatAdvisor(newStubService(t, "chat", stub), store, 4, testLogger)

	first, err := advisor.Chat(context.Background(), types.CareerChatInput{Question: "q1"})
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	for _, q := range []string{"q2", "q3", "q4"} {
		if _, err := advisor.Chat(context.Background(), types.CareerChatInput{SessionID: first.SessionID, Question: q}); err != nil {
			t.Fatalf("Chat %q returned error: %v", q, err)
		}
	}

	// The transcript keeps everything; the prompt only the last 4 turns
	session, err := store.Get(first.SessionID, SessionChat)
	if err != nil {
		t.Fatalf("Session lookup failed: %v", err)
	}
	if session.Len() != 8 {
		t.Errorf("Expected full transcript of 8 messages, got %d", session.Len())
	}
	if len(stub.lastPrompt.History) != 4 {
		t.Errorf("Expected prompt history capped at 4, got %d", len(stub.lastPrompt.History))
	}
}

func TestChatFailureLeavesHistoryUntouched(t *testing.T) {
	stub := &stubProvider{content: "answer"}
	store := newTestStore(t)
	advisor := NewChatAdvisor(newStubService(t, "chat", stub), store, 20, testLogger)

	first, err := advisor.Chat(context.Background(), types.CareerChatInput{Question: "q1"})
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}

	stub.err = apperrors.NewHTTPError(500, "boom")
	if _, err := advisor.Chat(context.Background(), types.CareerChatInput{SessionID: first.SessionID, Question: "q2"}); err == nil {
		t.Fatal("Expected error from failed completion")
	}

	session, err := store.Get(first.SessionID, SessionChat)
	if err != nil {
		t.Fatalf("Session lookup failed: %v", err)
	}
	if session.Len() != 2 {
		t.Errorf("Expected failed turn to leave the transcript at 2 messages, got %d", session.Len())
	}
}

func TestChatUnknownSession(t *testing.T) {
	stub := &stubProvider{}
	advisor := NewChatAdvisor(newStubService(t, "chat", stub), newTestStore(t), 20, testLogger)

	_, err := advisor.Chat(context.Background(), types.CareerChatInput{
		SessionID: "no-such-session",
		Question:  "hello?",
	})
	if err == nil {
		t.Fatal("Expected error for unknown session")
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatalf("Expected *AppError, got %T", err)
	}
	if appErr.Code != apperrors.ErrCodeSessionNotFound {
		t.Errorf("Expected code %s, got %s", apperrors.ErrCodeSessionNotFound, appErr.Code)
	}
	if stub.calls != 0 {
		t.Errorf("Expected no provider calls, got %d", stub.calls)
	}
}

func TestInterviewStartAndTurn(t *testing.T) {
	stub := &stubProvider{content: "**Question 1**: Tell me about a hard bug you fixed."}
	store := newTestStore(t)
	interviewer := NewInterviewer(newStubService(t, "interview", stub), store, 20, testLogger)

	started, err := interviewer.Start(context.Background(), types.InterviewStartInput{
		JobTitle:       "Backend Engineer",
		JobDescription: "Go services, PostgreSQL, on-call rotation.",
	})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if started.SessionID == "" {
		t.Fatal("Expected a session id")
	}
	if len(started.History) != 1 || started.History[0].Role != types.RoleAssistant {
		t.Errorf("Expected history to open with the interviewer's question: %+v", started.History)
	}
	if !strings.Contains(stub.lastPrompt.User, "Backend Engineer") {
		t.Error("Expected job title in the start prompt")
	}

	stub.content = "**Feedback**: Good detail.\n\n---\n\n**Question 2**: How do you test it?"
	turn, err := interviewer.Turn(context.Background(), types.InterviewTurnInput{
		SessionID: started.SessionID,
		Response:  "I bisected the regression and added a failing test first.",
	})
	if err != nil {
		t.Fatalf("Turn returned error: %v", err)
	}
	if turn.SessionID != started.SessionID {
		t.Error("Expected the turn to stay in the same session")
	}
	if len(turn.History) != 3 {
		t.Fatalf("Expected 3 history messages after one turn, got %d", len(turn.History))
	}

	// The turn prompt restates the opening from the session, not the caller
	if !strings.Contains(stub.lastPrompt.User, "Go services, PostgreSQL") {
		t.Error("Expected the stored job description in the turn prompt")
	}
}

func TestInterviewStartFailureCreatesNoSession(t *testing.T) {
	stub := &stubProvider{err: apperrors.NewHTTPError(502, "bad gateway")}
	store := newTestStore(t)
	interviewer := NewInterviewer(newStubService(t, "interview", stub), store, 20, testLogger)

	_, err := interviewer.Start(context.Background(), types.InterviewStartInput{
		JobTitle:       "Backend Engineer",
		JobDescription: "Go services.",
	})
	if err == nil {
		t.Fatal("Expected error from failed completion")
	}
	if store.Count() != 0 {
		t.Errorf("Expected no session after a failed start, got %d", store.Count())
	}
}

func TestInterviewTurnRequiresSession(t *testing.T) {
	stub := &stubProvider{}
	interviewer := NewInterviewer(newStubService(t, "interview", stub), newTestStore(t), 20, testLogger)

	_, err := interviewer.Turn(context.Background(), types.InterviewTurnInput{Response: "an answer"})
	if err == nil {
		t.Fatal("Expected validation error for missing session id")
	}
	if stub.calls != 0 {
		t.Errorf("Expected no provider calls, got %d", stub.calls)
	}
}

func TestInterviewSessionKindIsolation(t *testing.T) {
	stub := &stubProvider{content: "answer"}
	store := newTestStore(t)
	advisor := NewChatAdvisor(newStubService(t, "chat", stub), store, 20, testLogger)

	chat, err := advisor.Chat(context.Background(), types.CareerChatInput{Question: "hello"})
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}

	interviewer := NewInterviewer(newStubService(t, "interview", stub), store, 20, testLogger)
	_, err = interviewer.Turn(context.Background(), types.InterviewTurnInput{
		SessionID: chat.SessionID,
		Response:  "an answer",
	})
	if err == nil {
		t.Fatal("Expected a chat session to be invisible to the interviewer")
	}
}

func TestSessionExpiry(t *testing.T) {
	store := NewSessionStore(10*time.Millisecond, testLogger)
	defer store.Close()

	session := store.Create(SessionChat)
	time.Sleep(30 * time.Millisecond)

	if _, err := store.Get(session.ID, SessionChat); err == nil {
		t.Fatal("Expected expired session to be gone")
	}
}

func TestSessionRecentClone(t *testing.T) {
	store := newTestStore(t)
	session := store.Create(SessionChat)
	session.Append(types.RoleUser, "one")
	session.Append(types.RoleAssistant, "two")

	recent := session.Recent(10)
	recent[0].Content = "mutated"
	if session.History()[0].Content != "one" {
		t.Error("Expected Recent to return a copy, not the backing slice")
	}
}
