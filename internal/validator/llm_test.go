package validator

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/solotrader/tradecraft/internal/llm"
	"github.com/solotrader/tradecraft/internal/quest"
)

func gradeJSON(entries ...string) json.RawMessage {
	return json.RawMessage(`{"criteria":[` + strings.Join(entries, ",") + `]}`)
}

func TestLLMValidatorGradesAllCriteria(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: gradeJSON(
			`{"criterion":"Higher High (HH)","passed":true,"message":"HH is right.","suggestion":""}`,
			`{"criterion":"Higher Low (HL)","passed":true,"message":"HL is right.","suggestion":""}`,
			`{"criterion":"Lower High (LH)","passed":false,"message":"LH is off.","suggestion":"Mark the lower peak."}`,
			`{"criterion":"Lower Low (LL)","passed":true,"message":"LL is right.","suggestion":""}`,
		),
	})
	v := NewLLM(mock, DefaultConfig())

	out, err := v.Validate(context.Background(), gradedQuest(), []quest.Marking{{Type: "HH", X: 10, Y: 20}})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if out.Score != 75 {
		t.Errorf("score = %d, want 75 for 3 of 4", out.Score)
	}
	if out.Passed {
		t.Error("75 should fail the 80 floor")
	}
	if out.PerCriterion["Lower High (LH)"] {
		t.Error("LH should be marked failed")
	}
	if len(out.Feedback) != 4 {
		t.Errorf("feedback has %d entries, want 4", len(out.Feedback))
	}

	if mock.CallCount() != 1 {
		t.Fatalf("CallCount = %d, want 1", mock.CallCount())
	}
	req := mock.Calls[0]
	if req.Schema == nil || req.Schema.Name != "marking-grade" {
		t.Errorf("request schema = %+v, want marking-grade", req.Schema)
	}
	if !strings.Contains(req.Messages[0].Content, "Higher High (HH)") {
		t.Error("prompt should list the criteria")
	}
	if !strings.Contains(req.Messages[0].Content, "type=HH") {
		t.Error("prompt should describe the markings")
	}
}

func TestLLMValidatorOmittedCriterionFails(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: gradeJSON(
			`{"criterion":"Higher High (HH)","passed":true,"message":"ok","suggestion":""}`,
		),
	})
	v := NewLLM(mock, DefaultConfig())

	out, err := v.Validate(context.Background(), gradedQuest(), nil)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if out.Score != 25 {
		t.Errorf("score = %d, want 25 when three criteria were omitted", out.Score)
	}
	if out.PerCriterion["Higher Low (HL)"] {
		t.Error("omitted criterion should count as failed")
	}
}

func TestLLMValidatorUnknownCriterionIgnored(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: gradeJSON(
			`{"criterion":"Invented","passed":true,"message":"?","suggestion":""}`,
			`{"criterion":"Higher High (HH)","passed":true,"message":"ok","suggestion":""}`,
			`{"criterion":"Higher Low (HL)","passed":true,"message":"ok","suggestion":""}`,
			`{"criterion":"Lower High (LH)","passed":true,"message":"ok","suggestion":""}`,
			`{"criterion":"Lower Low (LL)","passed":true,"message":"ok","suggestion":""}`,
		),
	})
	v := NewLLM(mock, DefaultConfig())

	out, err := v.Validate(context.Background(), gradedQuest(), nil)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if out.Score != 100 || !out.Passed {
		t.Errorf("outcome = %+v, want full marks", out)
	}
	if _, ok := out.PerCriterion["Invented"]; ok {
		t.Error("criteria the quest never asked for should be dropped")
	}
}

func TestLLMValidatorProviderError(t *testing.T) {
	mock := llm.NewMockProvider() // empty queue returns ErrProviderUnavailable
	v := NewLLM(mock, DefaultConfig())

	if _, err := v.Validate(context.Background(), gradedQuest(), nil); err == nil {
		t.Fatal("provider failure should surface as an error")
	}
}

func TestLLMValidatorMalformedResponse(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`not json`),
	})
	v := NewLLM(mock, DefaultConfig())

	if _, err := v.Validate(context.Background(), gradedQuest(), nil); err == nil {
		t.Fatal("malformed response should surface as an error")
	}
}
