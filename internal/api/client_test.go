package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"polship/internal/model"
)

func TestFetchLogs(t *testing.T) {
	var gotPath, gotAuth, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"logs":[
			{"timestamp":"2026-03-01T10:00:00Z","level":"info","message":"pulling bundle"},
			{"timestamp":"2026-03-01T10:00:01Z","level":"info","message":"phase change",
			 "metadata":{"action":"report_phase_change_success","details":{"phase":"sync"}}}
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL).WithToken("tok-123")
	entries, err := client.FetchLogs(context.Background(), "entity-1", "run-9", 200)
	if err != nil {
		t.Fatalf("FetchLogs error: %v", err)
	}

	if gotPath != "/v1/entities/entity-1/runs/run-9/logs" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "limit=200" {
		t.Errorf("query = %q, want limit=200", gotQuery)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Metadata != nil {
		t.Errorf("plain entry decoded metadata %+v, want nil", entries[0].Metadata)
	}
	meta := entries[1].Metadata
	if meta == nil || meta.Action != model.ActionPhaseChange {
		t.Fatalf("metadata = %+v", meta)
	}
	if meta.Details == nil || meta.Details.Phase != "sync" {
		t.Errorf("details = %+v", meta.Details)
	}
}

func TestFetchLogsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"insufficient privilege for entity"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).FetchLogs(context.Background(), "entity-1", "run-9", 10)
	if err == nil {
		t.Fatal("expected error for 403 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("statusCode = %d", apiErr.StatusCode)
	}
	if apiErr.Message != "insufficient privilege for entity" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if !IsPermissionDenied(err) {
		t.Error("IsPermissionDenied = false for 403")
	}
}

func TestFetchLogsServerErrorIsNotPermissionDenied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).FetchLogs(context.Background(), "entity-1", "run-9", 10)
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
	if IsPermissionDenied(err) {
		t.Error("IsPermissionDenied = true for transient 502")
	}
}

func TestTriggerDeployment(t *testing.T) {
	var gotIdemKey, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIdemKey = r.Header.Get("Idempotency-Key")
		gotContentType = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"run-42","entity_id":"entity-1","status":"running","created_at":"2026-03-01T10:00:00Z"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL).WithToken("tok-123")
	run, err := client.TriggerDeployment(context.Background(), "entity-1", DeployRequest{BundleRef: "bundles/policy:v7"})
	if err != nil {
		t.Fatalf("TriggerDeployment error: %v", err)
	}
	if run.ID != "run-42" || run.Status != "running" {
		t.Errorf("run = %+v", run)
	}
	if gotContentType != "application/json" {
		t.Errorf("content-type = %q", gotContentType)
	}
	if gotIdemKey == "" {
		t.Fatal("missing Idempotency-Key header")
	}
	// Same entity and bundle must always derive the same key.
	if gotIdemKey != idempotencyKey("entity-1", "bundles/policy:v7") {
		t.Errorf("idempotency key not deterministic: %q", gotIdemKey)
	}
	if gotIdemKey == idempotencyKey("entity-1", "bundles/policy:v8") {
		t.Error("idempotency key ignores the bundle ref")
	}
}

func TestWithTokenDoesNotMutateReceiver(t *testing.T) {
	base := NewClient("https://api.example.com")
	scoped := base.WithToken("tok-abc")
	if base.token != "" {
		t.Errorf("base token = %q, WithToken mutated the receiver", base.token)
	}
	if scoped.token != "tok-abc" {
		t.Errorf("scoped token = %q", scoped.token)
	}
}

func TestIsPermissionDeniedMessageMatch(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"401", &APIError{StatusCode: http.StatusUnauthorized, Message: "bad token"}, true},
		{"message match on 400", &APIError{StatusCode: http.StatusBadRequest, Message: "Insufficient Privilege"}, true},
		{"forbidden text", &APIError{StatusCode: http.StatusBadRequest, Message: "operation forbidden"}, true},
		{"plain 500", &APIError{StatusCode: http.StatusInternalServerError, Message: "boom"}, false},
		{"non-api error", errors.New("connection refused"), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsPermissionDenied(tc.err); got != tc.want {
				t.Errorf("IsPermissionDenied(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
