package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PlanwiseAI/planwise-mvp/engine/plan"
	"github.com/PlanwiseAI/planwise-mvp/engine/retrieval"
)

type stubRetriever struct {
	out string
}

func (s *stubRetriever) Retrieve(_ context.Context, _ string, _, _ int) (string, error) {
	return s.out, nil
}

type stubLLM struct {
	out  string
	user string
}

func (s *stubLLM) Generate(_ context.Context, _, prompt string) (string, error) {
	s.user = prompt
	return s.out, nil
}

func newHandler(llm plan.LLM, retrieved string) http.HandlerFunc {
	svc := plan.NewService(plan.Deps{
		Retriever: &stubRetriever{out: retrieved},
		Generator: plan.NewGenerator(llm, nil, time.Second, nil),
	})
	return handlePlan(svc, nil, nil)
}

func validBody() string {
	return `{"age":35,"currentSavings":50000,"income":75000,"retirementAge":65,"retirementSavingsGoal":1000000}`
}

func TestHealthEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	handleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" {
		t.Fatalf("expected status ok, got %s", resp["status"])
	}
}

func TestPlanEndpoint_Success(t *testing.T) {
	// nil LLM forces the deterministic fallback, so the narrative
	// content is predictable.
	handler := newHandler(nil, "")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/retirement-plan", bytes.NewBufferString(validBody()))
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp PlanResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "success" {
		t.Fatalf("status = %s", resp.Status)
	}
	rp := resp.RetirementPlan
	if rp.YearsLeft != 30 {
		t.Errorf("years_left = %d, want 30", rp.YearsLeft)
	}
	if rp.ProjectedSavings <= 0 {
		t.Errorf("projected_savings = %v", rp.ProjectedSavings)
	}
	if rp.RequiredSavingsRate < 0.15 || rp.RequiredSavingsRate > 0.50 {
		t.Errorf("required_savings_rate = %v outside clamp", rp.RequiredSavingsRate)
	}
	if !strings.Contains(rp.Plan, "35") {
		t.Errorf("plan does not mention the user's age:\n%s", rp.Plan)
	}
	if !strings.Contains(rp.Plan, "$1,000,000") {
		t.Errorf("plan does not mention the dollar-formatted goal:\n%s", rp.Plan)
	}
}

func TestPlanEndpoint_ValidationError(t *testing.T) {
	handler := newHandler(nil, "")
	body := `{"age":40,"currentSavings":1000,"income":50000,"retirementAge":30,"retirementSavingsGoal":500000}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/retirement-plan", bytes.NewBufferString(body))
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "error" || resp.Error == "" {
		t.Fatalf("error body = %+v", resp)
	}
}

func TestPlanEndpoint_InvalidJSON(t *testing.T) {
	handler := newHandler(nil, "")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/retirement-plan", bytes.NewBufferString("not json"))
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPlanEndpoint_EmptyCorpus(t *testing.T) {
	llm := &stubLLM{out: "# Plan"}
	handler := newHandler(llm, retrieval.NoDocumentsIndexed)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/retirement-plan", bytes.NewBufferString(validBody()))
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with empty corpus, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(llm.user, "## Reference facts") {
		t.Errorf("sentinel leaked into the prompt:\n%s", llm.user)
	}
}

func TestPlanEndpoint_SmallMortgagePrompt(t *testing.T) {
	llm := &stubLLM{out: "# Plan"}
	handler := newHandler(llm, "")
	body := `{"age":35,"currentSavings":50000,"income":75000,"retirementAge":65,` +
		`"retirementSavingsGoal":1000000,"hasMortgage":"yes","mortgageAmount":5000}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/retirement-plan", bytes.NewBufferString(body))
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(llm.user, "not significant") {
		t.Errorf("small mortgage should render the dismissal sentence:\n%s", llm.user)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := loadConfig()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.IndexBackend != "memory" {
		t.Fatalf("expected default backend memory, got %s", cfg.IndexBackend)
	}
	if cfg.Collection != "planwise" {
		t.Fatalf("expected default collection planwise, got %s", cfg.Collection)
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("TEST_ENV_VAR_XYZ", "custom")
	if v := envOr("TEST_ENV_VAR_XYZ", "default"); v != "custom" {
		t.Fatalf("expected custom, got %s", v)
	}
	if v := envOr("NONEXISTENT_VAR_ABC", "fallback"); v != "fallback" {
		t.Fatalf("expected fallback, got %s", v)
	}
	t.Setenv("TEST_ENV_INT", "42")
	if v := envIntOr("TEST_ENV_INT", 7); v != 42 {
		t.Fatalf("expected 42, got %d", v)
	}
	if v := envFloatOr("NONEXISTENT_FLOAT", 1.5); v != 1.5 {
		t.Fatalf("expected 1.5, got %v", v)
	}
}
