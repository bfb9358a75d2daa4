// Package advisor wraps the Gemini generateContent API for the advisory
// search features: query expansion, bundle detection, match validation and
// sparse-result refinement. Every call is best-effort; callers treat an
// error as "no advice" and continue without it.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"dealhound/models"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemma-3n-e4b-it"
)

// Service is a Gemini-backed advisory client. The zero API key disables it;
// all methods then return ErrDisabled and the aggregator skips advisory
// steps entirely.
type Service struct {
	apiKey      string
	model       string
	baseURL     string
	httpc       *http.Client
	throttleMu  sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

// ErrDisabled is returned by every method when no API key is configured.
var ErrDisabled = errors.New("advisor not configured")

func New(apiKey string, httpc *http.Client) *Service {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Service{
		apiKey:      strings.TrimSpace(apiKey),
		model:       defaultModel,
		baseURL:     defaultBaseURL,
		httpc:       httpc,
		minInterval: 100 * time.Millisecond,
	}
}

// Enabled reports whether an API key is configured.
func (s *Service) Enabled() bool {
	return s != nil && s.apiKey != ""
}

// QueryExpansion is the result of expanding a film into search queries.
type QueryExpansion struct {
	Queries   []string `json:"queries"`
	Reasoning string   `json:"reasoning"`
}

// BundleQueries holds queries for box sets and collections that include the
// film.
type BundleQueries struct {
	BundleQueries []string `json:"bundle_queries"`
	Reasoning     string   `json:"reasoning"`
}

// MatchValidation is a yes/no judgement on whether a product listing is for
// a specific film.
type MatchValidation struct {
	IsMatch    bool    `json:"is_match"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// BatchValidation lists which of the submitted product titles actually
// belong to the film, by index.
type BatchValidation struct {
	ValidIndices []int  `json:"valid_indices"`
	Reasoning    string `json:"reasoning"`
}

// Refinements suggests alternative queries when a search came back sparse.
type Refinements struct {
	AlternativeQueries []string `json:"alternative_queries"`
	Reasoning          string   `json:"reasoning"`
}

// GenerateSearchQueries asks for shopping-search queries covering the film's
// title variants and notable physical editions.
func (s *Service) GenerateSearchQueries(ctx context.Context, film models.Film) (QueryExpansion, error) {
	var out QueryExpansion
	if !s.Enabled() {
		return out, ErrDisabled
	}

	prompt := fmt.Sprintf(`You help find physical media (Blu-ray, 4K UHD) listings for a specific film.

Film: %q (%d)
Director: %s
Alternative titles: %s

Produce up to 3 Google Shopping search queries likely to surface boutique
physical editions of THIS film and not films with similar names. Prefer
queries that combine a title variant with a format or label keyword.

Respond with ONLY a JSON object, no other text:
{"queries": ["...", "..."], "reasoning": "one sentence"}`,
		film.Title, film.Year, orUnknown(film.Director), joinOrNone(film.AlternativeTitles))

	err := s.generate(ctx, prompt, 0.7, 1024, &out)
	return out, err
}

// DetectBundles asks for box-set and collection queries that would include
// the film (director collections, label anthologies).
func (s *Service) DetectBundles(ctx context.Context, film models.Film) (BundleQueries, error) {
	var out BundleQueries
	if !s.Enabled() {
		return out, ErrDisabled
	}

	prompt := fmt.Sprintf(`You know the boutique physical-media market (Criterion, Arrow, Severin, Vinegar Syndrome box sets).

Film: %q (%d)
Director: %s

List up to 2 search queries for REAL box sets or collections this film is
known to appear in. If you are not confident a set exists, return an empty
list rather than guessing.

Respond with ONLY a JSON object, no other text:
{"bundle_queries": ["..."], "reasoning": "one sentence"}`,
		film.Title, film.Year, orUnknown(film.Director))

	err := s.generate(ctx, prompt, 0.4, 512, &out)
	return out, err
}

// ValidateMovieMatch asks whether a single product listing is for the film.
// Used for ambiguous titles where string matching alone cannot decide.
func (s *Service) ValidateMovieMatch(ctx context.Context, film models.Film, productTitle string) (MatchValidation, error) {
	var out MatchValidation
	if !s.Enabled() {
		return out, ErrDisabled
	}

	prompt := fmt.Sprintf(`A shopping search for the film %q (%d, dir. %s; also known as: %s) returned this product listing:

%q

Is this listing for that exact film (any physical edition counts, including
box sets that contain it)? Listings for remakes, sequels or different films
that share a word do NOT count.

Respond with ONLY a JSON object, no other text:
{"is_match": true, "confidence": 0.0, "reason": "one sentence"}`,
		film.Title, film.Year, orUnknown(film.Director), joinOrNone(film.AlternativeTitles), productTitle)

	err := s.generate(ctx, prompt, 0.2, 256, &out)
	return out, err
}

// BatchValidateResults judges a list of product titles at once and returns
// the indices of those that are for the film.
func (s *Service) BatchValidateResults(ctx context.Context, film models.Film, productTitles []string) (BatchValidation, error) {
	var out BatchValidation
	if !s.Enabled() {
		return out, ErrDisabled
	}

	var list strings.Builder
	for i, t := range productTitles {
		fmt.Fprintf(&list, "%d. %s\n", i, t)
	}

	prompt := fmt.Sprintf(`A shopping search for the film %q (%d, dir. %s) returned these product listings:

%s
Which listings are for that exact film? Any physical edition counts,
including box sets that contain it. Listings for remakes, sequels or
different films that share a word do NOT count.

Respond with ONLY a JSON object, no other text. valid_indices uses the
0-based numbers above:
{"valid_indices": [0, 2], "reasoning": "one sentence"}`,
		film.Title, film.Year, orUnknown(film.Director), list.String())

	err := s.generate(ctx, prompt, 0.2, 512, &out)
	return out, err
}

// SuggestSearchRefinements asks for alternative queries after a search found
// fewer results than expected.
func (s *Service) SuggestSearchRefinements(ctx context.Context, film models.Film, resultCount int, originalQuery string) (Refinements, error) {
	var out Refinements
	if !s.Enabled() {
		return out, ErrDisabled
	}

	prompt := fmt.Sprintf(`A shopping search for physical editions of the film %q (%d) used this query:

%s

It found only %d results. Suggest up to 2 alternative queries that might
surface listings the original missed (different title variants, label names,
format keywords). Do not repeat the original query.

Respond with ONLY a JSON object, no other text:
{"alternative_queries": ["..."], "reasoning": "one sentence"}`,
		film.Title, film.Year, originalQuery, resultCount)

	err := s.generate(ctx, prompt, 0.7, 512, &out)
	return out, err
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// generate sends one prompt, waits out the per-client throttle, retries
// transient failures with doubling backoff, and unmarshals the model's JSON
// answer into out. Markdown code fences around the JSON are stripped.
func (s *Service) generate(ctx context.Context, prompt string, temperature float64, maxTokens int, out any) error {
	s.throttleMu.Lock()
	since := time.Since(s.lastRequest)
	if since < s.minInterval {
		time.Sleep(s.minInterval - since)
	}
	s.lastRequest = time.Now()
	s.throttleMu.Unlock()

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)

	bodyBytes, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxTokens,
		},
	})
	if err != nil {
		return fmt.Errorf("marshal advisor request: %w", err)
	}

	var lastErr error
	backoff := 500 * time.Millisecond
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
		if err != nil {
			return fmt.Errorf("create advisor request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpc.Do(req)
		if err != nil {
			lastErr = err
			log.Printf("[advisor] http error (attempt %d/3): %v", attempt+1, err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("advisor request failed: status %d", resp.StatusCode)
			log.Printf("[advisor] rate limited or server error (attempt %d/3): status %d", attempt+1, resp.StatusCode)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("advisor API error %d: %s", resp.StatusCode, string(body))
		}

		var genResp generateResponse
		err = json.NewDecoder(resp.Body).Decode(&genResp)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode advisor response: %w", err)
		}

		if genResp.Error != nil {
			return fmt.Errorf("advisor API error: %s", genResp.Error.Message)
		}
		if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
			return errors.New("advisor returned empty response")
		}

		text := genResp.Candidates[0].Content.Parts[0].Text
		if err := json.Unmarshal([]byte(text), out); err != nil {
			cleaned := stripFences(text)
			if err2 := json.Unmarshal([]byte(cleaned), out); err2 != nil {
				return fmt.Errorf("parse advisor answer: %w (raw: %s)", err, truncate(text, 200))
			}
		}
		return nil
	}

	return fmt.Errorf("advisor request failed after 3 attempts: %w", lastErr)
}

// stripFences removes a markdown code fence wrapping, which the model emits
// despite being told not to.
func stripFences(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
