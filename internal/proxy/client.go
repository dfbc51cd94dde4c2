package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// Client talks to a running proxy server. Transport errors are folded into
// the same {success:false} shape as vendor errors, so callers have exactly
// one failure path and never partially commit.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) AssetTypes(ctx context.Context, creds Credentials) AssetTypesResponse {
	var out AssetTypesResponse
	c.post(ctx, "/api/asset-types", assetTypesRequest{Credentials: creds}, &out)
	return out
}

func (c *Client) Assets(ctx context.Context, creds Credentials, typeID string) AssetsResponse {
	var out AssetsResponse
	c.post(ctx, "/api/assets", assetsRequest{Credentials: creds, TypeID: typeID}, &out)
	return out
}

func (c *Client) SearchAssets(ctx context.Context, creds Credentials, query string) AssetsResponse {
	var out AssetsResponse
	c.post(ctx, "/api/assets/search", searchRequest{Credentials: creds, Query: query}, &out)
	return out
}

func (c *Client) LoadAsset(ctx context.Context, creds Credentials, assetID string) LoadResponse {
	var out LoadResponse
	c.post(ctx, "/api/assets/load", loadRequest{Credentials: creds, AssetID: assetID}, &out)
	return out
}

// post fills out's Result envelope on any failure; out must embed Result.
func (c *Client) post(ctx context.Context, path string, in any, out any) {
	fail := func(format string, args ...any) {
		b, _ := json.Marshal(failure(format, args...))
		_ = json.Unmarshal(b, out)
	}

	body, err := json.Marshal(in)
	if err != nil {
		fail("encoding request: %v", err)
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		fail("building request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		fail("proxy unreachable: %v", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		fail("proxy returned %s", resp.Status)
		return
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		fail("decoding response: %v", err)
	}
}
