package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"dealhound/models"
)

func testFilm() models.Film {
	return models.Film{
		Title:             "House",
		Year:              1977,
		Director:          "Nobuhiko Obayashi",
		AlternativeTitles: []string{"Hausu"},
	}
}

// fakeGemini serves canned generateContent answers and counts requests.
func fakeGemini(t *testing.T, answer string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("key") == "" {
			t.Error("missing api key in request")
		}
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": answer}}}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	return srv, &calls
}

func newTestService(srv *httptest.Server) *Service {
	s := New("test-key", srv.Client())
	s.baseURL = srv.URL
	s.minInterval = 0
	return s
}

func TestDisabledService(t *testing.T) {
	s := New("", nil)
	if s.Enabled() {
		t.Fatal("empty key should disable the service")
	}
	if _, err := s.GenerateSearchQueries(context.Background(), testFilm()); !errors.Is(err, ErrDisabled) {
		t.Fatalf("want ErrDisabled, got %v", err)
	}
	if _, err := s.ValidateMovieMatch(context.Background(), testFilm(), "House Blu-ray"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("want ErrDisabled, got %v", err)
	}
}

func TestGenerateSearchQueriesParsesFencedJSON(t *testing.T) {
	answer := "```json\n{\"queries\": [\"Hausu criterion blu-ray\", \"House 1977 4K\"], \"reasoning\": \"title variants\"}\n```"
	srv, calls := fakeGemini(t, answer)
	defer srv.Close()

	s := newTestService(srv)
	got, err := s.GenerateSearchQueries(context.Background(), testFilm())
	if err != nil {
		t.Fatalf("GenerateSearchQueries: %v", err)
	}
	if len(got.Queries) != 2 || got.Queries[0] != "Hausu criterion blu-ray" {
		t.Errorf("queries = %v", got.Queries)
	}
	if calls.Load() != 1 {
		t.Errorf("got %d requests, want 1", calls.Load())
	}
}

func TestValidateMovieMatchPlainJSON(t *testing.T) {
	srv, _ := fakeGemini(t, `{"is_match": true, "confidence": 0.9, "reason": "Hausu is the Japanese title"}`)
	defer srv.Close()

	s := newTestService(srv)
	got, err := s.ValidateMovieMatch(context.Background(), testFilm(), "Hausu (1977) Criterion Blu-ray")
	if err != nil {
		t.Fatalf("ValidateMovieMatch: %v", err)
	}
	if !got.IsMatch || got.Confidence != 0.9 {
		t.Errorf("got %+v", got)
	}
}

func TestBatchValidateResultsIndices(t *testing.T) {
	srv, _ := fakeGemini(t, `{"valid_indices": [0, 2], "reasoning": "1 is a different film"}`)
	defer srv.Close()

	s := newTestService(srv)
	got, err := s.BatchValidateResults(context.Background(), testFilm(), []string{
		"House (1977) Blu-ray", "House of Mortal Sin", "Hausu 4K UHD",
	})
	if err != nil {
		t.Fatalf("BatchValidateResults: %v", err)
	}
	if len(got.ValidIndices) != 2 || got.ValidIndices[0] != 0 || got.ValidIndices[1] != 2 {
		t.Errorf("valid indices = %v", got.ValidIndices)
	}
}

func TestGenerateRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": `{"alternative_queries": ["Hausu import blu-ray"], "reasoning": "romanized title"}`}}}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	s := newTestService(srv)
	got, err := s.SuggestSearchRefinements(context.Background(), testFilm(), 1, `"House" blu-ray`)
	if err != nil {
		t.Fatalf("SuggestSearchRefinements: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("got %d requests, want 2 (one retry)", calls.Load())
	}
	if len(got.AlternativeQueries) != 1 {
		t.Errorf("queries = %v", got.AlternativeQueries)
	}
}

func TestGenerateUnparseableAnswer(t *testing.T) {
	srv, _ := fakeGemini(t, "I cannot answer that in JSON, sorry.")
	defer srv.Close()

	s := newTestService(srv)
	if _, err := s.DetectBundles(context.Background(), testFilm()); err == nil {
		t.Fatal("expected parse error for non-JSON answer")
	}
}
