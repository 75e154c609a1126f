package strategy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/warp/business-admin/generic"
)

const (
	identityFunction   = "generate-strategic-identity"
	indicatorsFunction = "generate-strategic-indicators"
)

// FunctionClient calls the hosted generation functions over JSON POST.
type FunctionClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewFunctionClient returns a client with a 60s request timeout.
func NewFunctionClient(baseURL, apiKey string) *FunctionClient {
	return &FunctionClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *FunctionClient) GenerateIdentity(ctx context.Context, in IdentityInput) (IdentityDraft, error) {
	var out IdentityDraft
	if err := c.invoke(ctx, identityFunction, in, &out); err != nil {
		return IdentityDraft{}, err
	}
	return out, nil
}

func (c *FunctionClient) GenerateIndicators(ctx context.Context, in IndicatorInput) ([]IndicatorDraft, error) {
	in.Count = in.count()
	var out struct {
		Indicators []IndicatorDraft `json:"indicators"`
	}
	if err := c.invoke(ctx, indicatorsFunction, in, &out); err != nil {
		return nil, err
	}
	return out.Indicators, nil
}

func (c *FunctionClient) invoke(ctx context.Context, name string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/"+name, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", generic.ErrGeneratorUnavailable, name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: %s: read body: %v", generic.ErrGeneratorUnavailable, name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s returned %d: %s", generic.ErrGeneratorUnavailable, name, resp.StatusCode, snippet(data))
	}
	return decodeDraft(string(data), out)
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
