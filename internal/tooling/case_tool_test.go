package tooling

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCaseTool_Call_ShouldReturnMatchingRecords(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Query().Get("subject") != "billing" {
			t.Errorf("expected subject=billing, got %q", r.URL.Query().Get("subject"))
		}
		fmt.Fprint(w, `{"records":[
			{"id":"C-1","subject":"billing error","status":"open"},
			{"id":"C-2","subject":"billing question","status":"closed"}]}`)
	}))
	defer srv.Close()

	tool := NewCaseTool(srv.URL, "token-1")
	res, err := tool.Call(context.Background(), json.RawMessage(`{"subject":"billing"}`))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if gotPath != "/cases" {
		t.Errorf("expected /cases path, got %q", gotPath)
	}
	if gotAuth != "Bearer token-1" {
		t.Errorf("expected bearer token, got %q", gotAuth)
	}
	var records []CaseRecord
	if err := json.Unmarshal([]byte(res.Data), &records); err != nil {
		t.Fatalf("result data is not JSON: %v", err)
	}
	if len(records) != 2 || records[0].ID != "C-1" {
		t.Errorf("unexpected records: %+v", records)
	}
	if res.Metadata["matches"] != "2" {
		t.Errorf("expected matches metadata 2, got %q", res.Metadata["matches"])
	}
}

func TestCaseTool_Call_ShouldPassStatusFilter(t *testing.T) {
	var gotStatus string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStatus = r.URL.Query().Get("status")
		fmt.Fprint(w, `{"records":[]}`)
	}))
	defer srv.Close()

	tool := NewCaseTool(srv.URL, "t")
	if _, err := tool.Call(context.Background(), json.RawMessage(`{"subject":"x","status":"open"}`)); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if gotStatus != "open" {
		t.Errorf("expected status=open, got %q", gotStatus)
	}
}

func TestCaseTool_Call_WhenAPIFails_ShouldReturnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	tool := NewCaseTool(srv.URL, "bad")
	if _, err := tool.Call(context.Background(), json.RawMessage(`{"subject":"x"}`)); err == nil {
		t.Error("expected error on 403 response")
	}
}

func TestCaseTool_Call_WhenResponseNotJSON_ShouldReturnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>maintenance</html>")
	}))
	defer srv.Close()

	tool := NewCaseTool(srv.URL, "t")
	if _, err := tool.Call(context.Background(), json.RawMessage(`{"subject":"x"}`)); err == nil {
		t.Error("expected error for non-JSON response")
	}
}

func TestCaseTool_Definition_ShouldConstrainStatus(t *testing.T) {
	tool := NewCaseTool("https://cases.example.com", "t")
	schema := tool.Definition()
	if err := ValidateAgainstSchema(json.RawMessage(`{"subject":"x","status":"open"}`), schema); err != nil {
		t.Errorf("valid status rejected: %v", err)
	}
	if err := ValidateAgainstSchema(json.RawMessage(`{"subject":"x","status":"urgent"}`), schema); err == nil {
		t.Error("expected out-of-enum status to be rejected")
	}
}
