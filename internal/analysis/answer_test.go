package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmcateer/docsieve/internal/document"
	"github.com/dmcateer/docsieve/internal/llm"
)

func TestAnswerQuestion_EmptyInputs(t *testing.T) {
	e := testEngine(&fakeCompleter{})
	if _, err := e.AnswerQuestion(context.Background(), "", "what is the policy?"); !errors.Is(err, document.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput for empty text, got %v", err)
	}
	if _, err := e.AnswerQuestion(context.Background(), policyText(), "  "); !errors.Is(err, document.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput for empty question, got %v", err)
	}
}

func TestAnswerQuestion_ConfidentFirstPass(t *testing.T) {
	fc := &fakeCompleter{
		respond: func(req llm.Request) (*llm.Result, error) {
			return &llm.Result{
				Text:         "Hazard training is required before operating the press.",
				InputTokens:  40,
				OutputTokens: 15,
			}, nil
		},
	}
	e := testEngine(fc)

	ans, err := e.AnswerQuestion(context.Background(), policyText(), "When is hazard training required?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Escalated {
		t.Error("did not expect escalation for a confident answer")
	}
	if fc.callCount() != 1 {
		t.Errorf("expected exactly one completion call, got %d", fc.callCount())
	}
	if ans.InputTokens != 40 || ans.OutputTokens != 15 {
		t.Errorf("expected usage 40/15, got %d/%d", ans.InputTokens, ans.OutputTokens)
	}
}

func TestAnswerQuestion_EscalatesOnLowConfidence(t *testing.T) {
	fc := &fakeCompleter{
		respond: func(req llm.Request) (*llm.Result, error) {
			if strings.Contains(req.Prompt, "suggest which section") {
				return &llm.Result{
					Text:         "The respirator schedule is not stated; check the PPE appendix.",
					InputTokens:  90,
					OutputTokens: 30,
				}, nil
			}
			return &llm.Result{
				Text:         "I can't find this in the document.",
				InputTokens:  40,
				OutputTokens: 10,
			}, nil
		},
	}
	e := testEngine(fc)

	ans, err := e.AnswerQuestion(context.Background(), policyText(), "How often are respirators replaced?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ans.Escalated {
		t.Fatal("expected escalation")
	}
	if fc.callCount() != 2 {
		t.Fatalf("expected two completion calls, got %d", fc.callCount())
	}
	if !strings.Contains(ans.Text, "PPE appendix") {
		t.Errorf("expected the second-pass answer, got %q", ans.Text)
	}
	// Usage must sum both passes.
	if ans.InputTokens != 130 || ans.OutputTokens != 40 {
		t.Errorf("expected usage 130/40, got %d/%d", ans.InputTokens, ans.OutputTokens)
	}
}

func TestAnswerQuestion_EscalatesAtMostOnce(t *testing.T) {
	fc := &fakeCompleter{
		respond: func(req llm.Request) (*llm.Result, error) {
			return &llm.Result{Text: "I can't find this in the document."}, nil
		},
	}
	e := testEngine(fc)

	ans, err := e.AnswerQuestion(context.Background(), policyText(), "What is the permit retention period?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fc.callCount() != 2 {
		t.Fatalf("expected exactly two calls even when the second pass also fails to find it, got %d", fc.callCount())
	}
	if !ans.Escalated {
		t.Error("expected escalated flag set")
	}
}

func TestAnswerQuestion_CompletionFailureIsStageError(t *testing.T) {
	fc := &fakeCompleter{
		respond: func(req llm.Request) (*llm.Result, error) {
			return nil, errors.New("connection reset")
		},
	}
	e := testEngine(fc)

	_, err := e.AnswerQuestion(context.Background(), policyText(), "What is the policy?")
	var se *StageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StageError, got %v", err)
	}
	if se.Stage != "answer" {
		t.Errorf("expected answer stage, got %q", se.Stage)
	}
}
