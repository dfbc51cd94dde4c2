package proxy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"syncline/internal/model"
)

type fakeVendor struct {
	tokenFetches  atomic.Int64
	assetCalls    atomic.Int64
	rejectOnce    atomic.Bool
	tokenReject   atomic.Bool
	expiresIn     int
	assetsPayload string
}

func newFakeVendor() *fakeVendor {
	return &fakeVendor{
		expiresIn: 3600,
		assetsPayload: `{"_embedded":{"assets":[
			{"assetId":"as-1","name":"Pump 7","typeId":"pump","parentId":""},
			{"assetId":"as-2","name":"Pump 9","typeId":"pump","parentId":"as-1"}]}}`,
	}
}

func (f *fakeVendor) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
		if f.tokenReject.Load() {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		f.tokenFetches.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-1",
			"expires_in":   f.expiresIn,
		})
	})
	auth := func(w http.ResponseWriter, r *http.Request) bool {
		if f.rejectOnce.CompareAndSwap(true, false) {
			http.Error(w, "expired", http.StatusUnauthorized)
			return false
		}
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return false
		}
		if r.Header.Get("X-Correlation-ID") == "" {
			http.Error(w, "missing correlation id", http.StatusBadRequest)
			return false
		}
		return true
	}
	mux.HandleFunc("GET /api/assetmanagement/v3/assettypes", func(w http.ResponseWriter, r *http.Request) {
		if !auth(w, r) {
			return
		}
		_, _ = w.Write([]byte(`{"_embedded":{"assetTypes":[{"id":"pump","name":"Pump","description":"rotary"}]}}`))
	})
	mux.HandleFunc("GET /api/assetmanagement/v3/assets", func(w http.ResponseWriter, r *http.Request) {
		if !auth(w, r) {
			return
		}
		f.assetCalls.Add(1)
		_, _ = w.Write([]byte(f.assetsPayload))
	})
	mux.HandleFunc("GET /api/assetmanagement/v3/assets/as-1", func(w http.ResponseWriter, r *http.Request) {
		if !auth(w, r) {
			return
		}
		_, _ = w.Write([]byte(`{"assetId":"as-1","name":"Pump 7","typeId":"pump"}`))
	})
	mux.HandleFunc("GET /api/assetmanagement/v3/assets/as-1/aspects", func(w http.ResponseWriter, r *http.Request) {
		if !auth(w, r) {
			return
		}
		_, _ = w.Write([]byte(`{"_embedded":{"aspects":[
			{"name":"Temperature","variables":[
				{"name":"inlet","unit":"°C","dataType":"DOUBLE"},
				{"name":"alarm","unit":"","dataType":"BOOLEAN"}]},
			{"name":"Log","variables":[{"name":"raw","unit":"","dataType":"BIG_STRING"}]}]}}`))
	})
	return mux
}

func testCreds() Credentials {
	return Credentials{TenantID: "acme", ClientID: "cid", ClientSecret: "shh", Region: "eu1"}
}

// Spins up a fake vendor plus a proxy in front of it, returning a client.
func testProxy(t *testing.T) (*fakeVendor, *Server, *Client) {
	t.Helper()
	vendor := newFakeVendor()
	upstream := httptest.NewServer(vendor.handler())
	t.Cleanup(upstream.Close)

	srv, err := NewServer(ServerConfig{Addr: ":0", UpstreamBase: upstream.URL})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	front := httptest.NewServer(srv.Handler())
	t.Cleanup(front.Close)
	return vendor, srv, NewClient(front.URL)
}

func TestAssetTypesTranslated(t *testing.T) {
	_, _, client := testProxy(t)
	resp := client.AssetTypes(context.Background(), testCreds())
	if !resp.Success {
		t.Fatalf("expected success, got %q", resp.Message)
	}
	if len(resp.AssetTypes) != 1 || resp.AssetTypes[0].ID != "pump" || resp.AssetTypes[0].Name != "Pump" {
		t.Fatalf("unexpected asset types: %+v", resp.AssetTypes)
	}
}

func TestTokenCachedAcrossCalls(t *testing.T) {
	vendor, _, client := testProxy(t)
	creds := testCreds()
	for i := 0; i < 3; i++ {
		if resp := client.Assets(context.Background(), creds, "pump"); !resp.Success {
			t.Fatalf("call %d failed: %q", i, resp.Message)
		}
	}
	if got := vendor.tokenFetches.Load(); got != 1 {
		t.Fatalf("expected one token fetch, got %d", got)
	}
}

func TestTokenRefreshedNearExpiry(t *testing.T) {
	vendor, srv, client := testProxy(t)
	creds := testCreds()

	clock := time.Now()
	srv.tokens.now = func() time.Time { return clock }

	client.Assets(context.Background(), creds, "")
	// Move inside the 5-minute expiry buffer of a 3600s token.
	clock = clock.Add(3600*time.Second - 4*time.Minute)
	client.Assets(context.Background(), creds, "")
	if got := vendor.tokenFetches.Load(); got != 2 {
		t.Fatalf("expected a refresh inside the expiry buffer, got %d fetches", got)
	}
}

func TestTokenPerTenant(t *testing.T) {
	vendor, _, client := testProxy(t)
	client.Assets(context.Background(), testCreds(), "")
	other := testCreds()
	other.TenantID = "globex"
	client.Assets(context.Background(), other, "")
	if got := vendor.tokenFetches.Load(); got != 2 {
		t.Fatalf("tenants must not share tokens, got %d fetches", got)
	}
}

func TestRejectedTokenRetriedOnce(t *testing.T) {
	vendor, _, client := testProxy(t)
	vendor.rejectOnce.Store(true)
	resp := client.Assets(context.Background(), testCreds(), "")
	if !resp.Success {
		t.Fatalf("a single 401 must be retried with a fresh token: %q", resp.Message)
	}
	if got := vendor.tokenFetches.Load(); got != 2 {
		t.Fatalf("expected a re-fetch after the 401, got %d", got)
	}
}

func TestAuthFailureIsStructured(t *testing.T) {
	vendor, _, client := testProxy(t)
	vendor.tokenReject.Store(true)
	resp := client.AssetTypes(context.Background(), testCreds())
	if resp.Success {
		t.Fatalf("expected failure")
	}
	if resp.Message == "" {
		t.Fatalf("failure must carry a message")
	}
	if len(resp.AssetTypes) != 0 {
		t.Fatalf("failed call must not carry data")
	}
}

func TestMissingCredentialsRefusedLocally(t *testing.T) {
	vendor, _, client := testProxy(t)
	resp := client.Assets(context.Background(), Credentials{TenantID: "acme"}, "")
	if resp.Success {
		t.Fatalf("expected failure")
	}
	if vendor.tokenFetches.Load() != 0 {
		t.Fatalf("incomplete credentials must not reach the vendor")
	}
}

func TestLoadBuildsGroupSkeleton(t *testing.T) {
	_, _, client := testProxy(t)
	resp := client.LoadAsset(context.Background(), testCreds(), "as-1")
	if !resp.Success || resp.Group == nil {
		t.Fatalf("load failed: %q", resp.Message)
	}
	g := resp.Group
	if g.Name != "Pump 7" || len(g.Aspects) != 2 {
		t.Fatalf("unexpected skeleton: %+v", g)
	}
	temp := g.Aspects[0]
	if temp.Name != "Temperature" || len(temp.Tracks) != 2 {
		t.Fatalf("unexpected aspect: %+v", temp)
	}
	if temp.Tracks[0].Unit != "°C" || temp.Tracks[0].DataType != model.DataTypeDouble {
		t.Fatalf("unexpected track: %+v", temp.Tracks[0])
	}
	if g.Aspects[1].Tracks[0].DataType != model.DataTypeBigString {
		t.Fatalf("BIG_STRING must map to %s", model.DataTypeBigString)
	}
}

func TestSearchPassesQuery(t *testing.T) {
	_, _, client := testProxy(t)
	resp := client.SearchAssets(context.Background(), testCreds(), "Pump")
	if !resp.Success || len(resp.Assets) != 2 {
		t.Fatalf("search failed: %q (%d assets)", resp.Message, len(resp.Assets))
	}
	if resp.Assets[1].ParentID != "as-1" {
		t.Fatalf("parent ids must survive translation")
	}
}

func TestUnreachableProxyIsStructured(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	client.HTTP = &http.Client{Timeout: 500 * time.Millisecond}
	resp := client.AssetTypes(context.Background(), testCreds())
	if resp.Success || resp.Message == "" {
		t.Fatalf("dead proxy must yield a structured failure, got %+v", resp.Result)
	}
}
