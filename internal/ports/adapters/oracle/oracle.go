// Package oracle implements the ports.ScoringOracle contract on top of an
// OpenRouter-compatible chat-completions HTTP endpoint: Bearer-auth
// requests, fenced-or-bare JSON reply extraction, credential redaction on
// every diagnostic path, and a base-URL allowlist.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/takecut/silencecutter/internal/errs"
	"github.com/takecut/silencecutter/internal/types"
)

const requestTimeout = 90 * time.Second

// Adapter implements ports.ScoringOracle against an OpenRouter-compatible
// chat-completions endpoint.
type Adapter struct {
	key     string
	model   string
	baseURL string
	client  *http.Client
}

// New builds an Adapter. An empty model falls back to a sane default; an
// empty baseURL falls back to the public OpenRouter API.
func New(apiKey, model, baseURL string) *Adapter {
	if model == "" {
		model = "anthropic/claude-3.5-sonnet"
	}
	baseURL = normalizeBaseURL(baseURL)
	return &Adapter{key: apiKey, model: model, baseURL: baseURL, client: &http.Client{Timeout: 5 * time.Minute}}
}

type promptGroup struct {
	GroupID int          `json:"group_id"`
	Takes   []promptTake `json:"takes"`
}

type promptTake struct {
	SegmentIndex int      `json:"segment_index"`
	Duration     float64  `json:"duration"`
	MeanVolume   *float64 `json:"mean_volume_db,omitempty"`
	Quality      string   `json:"quality"`
	Text         string   `json:"text"`
}

// Evaluate builds a structured prompt over the group/take metadata, sends
// it to the oracle, and parses the reply into a types.Evaluation.
func (a *Adapter) Evaluate(ctx context.Context, groups []types.Group) (types.Evaluation, error) {
	if a.key == "" {
		return types.Evaluation{}, &errs.MissingCredentialError{}
	}

	payload, err := a.buildPayload(groups)
	if err != nil {
		return types.Evaluation{}, fmt.Errorf("oracle: build payload: %w", err)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return types.Evaluation{}, fmt.Errorf("oracle: marshal request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	url := a.baseURL + "/api/v1/chat/completions"
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return types.Evaluation{}, fmt.Errorf("oracle: build http request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return types.Evaluation{}, fmt.Errorf("oracle: timeout after %s (model=%s)", requestTimeout, a.model)
		}
		return types.Evaluation{}, fmt.Errorf("oracle: request failed: %w", redactErr(err, a.key))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(resp.Body)
		return types.Evaluation{}, &errs.OracleProtocolError{
			StatusCode: resp.StatusCode,
			Body:       truncate(redactSecrets(string(rb), a.key), 800),
		}
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content any `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return types.Evaluation{}, &errs.OracleParseError{Raw: "", Err: err}
	}
	if len(raw.Choices) == 0 {
		return types.Evaluation{}, &errs.OracleShapeError{Missing: "choices"}
	}

	content, err := messageContentToString(raw.Choices[0].Message.Content)
	if err != nil {
		return types.Evaluation{}, &errs.OracleShapeError{Missing: "choices[0].message.content"}
	}

	jsonText, err := extractJSON(content)
	if err != nil {
		return types.Evaluation{}, &errs.OracleParseError{Raw: truncate(content, 400), Err: err}
	}

	var eval types.Evaluation
	if err := json.Unmarshal([]byte(jsonText), &eval); err != nil {
		return types.Evaluation{}, &errs.OracleParseError{Raw: truncate(jsonText, 400), Err: err}
	}
	if eval.Evaluations == nil {
		return types.Evaluation{}, &errs.OracleShapeError{Missing: "evaluations"}
	}

	if len(eval.SuggestedOrder) == 0 {
		eval.SuggestedOrder = identityGroupOrder(groups)
	}
	return eval, nil
}

func (a *Adapter) buildPayload(groups []types.Group) (map[string]any, error) {
	pg := make([]promptGroup, 0, len(groups))
	for _, g := range groups {
		pt := make([]promptTake, 0, len(g.Takes))
		for _, tk := range g.Takes {
			pt = append(pt, promptTake{
				SegmentIndex: tk.Index,
				Duration:     tk.Duration,
				MeanVolume:   tk.AudioMetrics.MeanDB,
				Quality:      tk.AudioMetrics.Quality,
				Text:         tk.Transcription.Text,
			})
		}
		pg = append(pg, promptGroup{GroupID: g.GroupID, Takes: pt})
	}
	groupsJSON, err := json.Marshal(pg)
	if err != nil {
		return nil, err
	}

	instructions := "Evaluate each take in each group of a spoken-word recording. " +
		"Return strictly valid JSON (no markdown, no code fences) with this shape: " +
		`{"evaluations":[{"group_id":0,"takes":[{"segment_index":0,"audio_quality":0,"content":0,"emotion":0,"overall":0,"comment":""}],"best_take_index":0,"reason":""}],"suggested_order":[0],"overall_notes":""}` +
		" Every numeric score is in [0, 10]. best_take_index is the index of the best take WITHIN that group's takes array, not a global segment index. " +
		"suggested_order is a permutation of the group_id values reflecting your recommended playback order.\n\nGroups JSON:\n" + string(groupsJSON)

	return map[string]any{
		"model":    a.model,
		"stream":   false,
		"messages": []map[string]any{{"role": "user", "content": instructions}},
	}, nil
}

func identityGroupOrder(groups []types.Group) []int {
	out := make([]int, len(groups))
	for i, g := range groups {
		out[i] = g.GroupID
	}
	return out
}

func messageContentToString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []any:
		var b strings.Builder
		for _, it := range x {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if t, ok := m["text"].(string); ok {
				b.WriteString(t)
			}
		}
		s := b.String()
		if strings.TrimSpace(s) == "" {
			return "", errors.New("oracle: empty content")
		}
		return s, nil
	default:
		return "", fmt.Errorf("oracle: unexpected content type %T", v)
	}
}

// extractJSON accepts either a bare JSON body or one wrapped in a fenced
// code block and returns the JSON substring.
func extractJSON(s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", errors.New("oracle: empty content")
	}
	if strings.HasPrefix(t, "```") {
		if i := strings.Index(t, "\n"); i >= 0 {
			t = t[i+1:]
		}
		if j := strings.LastIndex(t, "```"); j >= 0 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}
	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		return t[start : end+1], nil
	}
	return "", fmt.Errorf("oracle: could not locate JSON object in reply (%d bytes)", len(t))
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

// redactSecrets strips the credential and any bearer/auth-header-shaped
// text from a diagnostic string before it is ever stored in an error.
func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}

func redactErr(err error, apiKey string) error {
	if err == nil {
		return nil
	}
	return errors.New(redactSecrets(err.Error(), apiKey))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
