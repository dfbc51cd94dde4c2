package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"syncline/internal/model"
)

// DefaultUpstreamBase is the vendor gateway URL pattern; {region} is
// substituted per request.
const DefaultUpstreamBase = "https://gateway.{region}.industrial-iot.io"

type ServerConfig struct {
	Addr string
	// UpstreamBase overrides the vendor gateway, mainly for tests. A
	// {region} placeholder is substituted from the request credentials.
	UpstreamBase string
}

// Server terminates the editor-facing JSON API and talks OAuth + vendor
// format upstream. Stateless apart from the token cache.
type Server struct {
	cfg    ServerConfig
	tokens *tokenCache
	http   *http.Client
}

func NewServer(cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.UpstreamBase = strings.TrimSpace(cfg.UpstreamBase)
	if cfg.Addr == "" {
		return nil, errors.New("proxy: addr is empty")
	}
	if cfg.UpstreamBase == "" {
		cfg.UpstreamBase = DefaultUpstreamBase
	}
	hc := &http.Client{Timeout: 30 * time.Second}
	return &Server{cfg: cfg, tokens: newTokenCache(hc), http: hc}, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/asset-types", s.handleAssetTypes)
	mux.HandleFunc("POST /api/assets", s.handleAssets)
	mux.HandleFunc("POST /api/assets/load", s.handleAssetLoad)
	mux.HandleFunc("POST /api/assets/search", s.handleAssetSearch)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) upstreamBase(region string) string {
	return strings.ReplaceAll(s.cfg.UpstreamBase, "{region}", region)
}

// writeJSON always answers 200; vendor and transport failures travel inside
// the Result envelope so callers can distinguish them from a dead proxy.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeRequest(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v)
}

func checkCredentials(c Credentials) error {
	if strings.TrimSpace(c.TenantID) == "" {
		return errors.New("missing tenantId")
	}
	if strings.TrimSpace(c.ClientID) == "" || strings.TrimSpace(c.ClientSecret) == "" {
		return errors.New("missing client credentials")
	}
	if strings.TrimSpace(c.Region) == "" {
		return errors.New("missing region")
	}
	return nil
}

// upstreamGET performs an authenticated vendor call and decodes the JSON
// body into out. Every call carries a fresh correlation id; a 401 drops the
// cached token and retries once.
func (s *Server) upstreamGET(ctx context.Context, creds Credentials, path string, out any) error {
	base := s.upstreamBase(creds.Region)
	token, err := s.tokens.get(ctx, base+"/oauth/token", creds)
	if err != nil {
		return fmt.Errorf("authenticating tenant %s: %w", creds.TenantID, err)
	}

	corrID := uuid.NewString()
	do := func(tok string) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+tok)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Correlation-ID", corrID)
		return s.http.Do(req)
	}

	resp, err := do(token)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		_ = resp.Body.Close()
		s.tokens.invalidate(creds)
		token, err = s.tokens.get(ctx, base+"/oauth/token", creds)
		if err != nil {
			return fmt.Errorf("re-authenticating tenant %s: %w", creds.TenantID, err)
		}
		resp, err = do(token)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("proxy: upstream %s returned %s (correlation %s)", path, resp.Status, corrID)
		return fmt.Errorf("upstream returned %s (correlation %s)", resp.Status, corrID)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Vendor wire shapes. These never leave this file.
type vendorAssetType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type vendorAsset struct {
	AssetID  string `json:"assetId"`
	Name     string `json:"name"`
	TypeID   string `json:"typeId"`
	ParentID string `json:"parentId"`
}

type vendorVariable struct {
	Name     string `json:"name"`
	Unit     string `json:"unit"`
	DataType string `json:"dataType"`
}

type vendorAspect struct {
	Name      string           `json:"name"`
	Variables []vendorVariable `json:"variables"`
}

func (s *Server) handleAssetTypes(w http.ResponseWriter, r *http.Request) {
	var req assetTypesRequest
	if err := decodeRequest(r, &req); err != nil {
		writeJSON(w, AssetTypesResponse{Result: failure("invalid request: %v", err)})
		return
	}
	if err := checkCredentials(req.Credentials); err != nil {
		writeJSON(w, AssetTypesResponse{Result: failure("%v", err)})
		return
	}

	var body struct {
		Embedded struct {
			AssetTypes []vendorAssetType `json:"assetTypes"`
		} `json:"_embedded"`
	}
	if err := s.upstreamGET(r.Context(), req.Credentials, "/api/assetmanagement/v3/assettypes", &body); err != nil {
		writeJSON(w, AssetTypesResponse{Result: failure("%v", err)})
		return
	}

	out := make([]AssetType, 0, len(body.Embedded.AssetTypes))
	for _, t := range body.Embedded.AssetTypes {
		out = append(out, AssetType{ID: t.ID, Name: t.Name, Description: t.Description})
	}
	writeJSON(w, AssetTypesResponse{Result: Result{Success: true}, AssetTypes: out})
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	var req assetsRequest
	if err := decodeRequest(r, &req); err != nil {
		writeJSON(w, AssetsResponse{Result: failure("invalid request: %v", err)})
		return
	}
	if err := checkCredentials(req.Credentials); err != nil {
		writeJSON(w, AssetsResponse{Result: failure("%v", err)})
		return
	}

	path := "/api/assetmanagement/v3/assets"
	if t := strings.TrimSpace(req.TypeID); t != "" {
		path += "?typeId=" + url.QueryEscape(t)
	}
	s.serveAssetList(w, r, req.Credentials, path)
}

func (s *Server) handleAssetSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeRequest(r, &req); err != nil {
		writeJSON(w, AssetsResponse{Result: failure("invalid request: %v", err)})
		return
	}
	if err := checkCredentials(req.Credentials); err != nil {
		writeJSON(w, AssetsResponse{Result: failure("%v", err)})
		return
	}
	q := strings.TrimSpace(req.Query)
	if q == "" {
		writeJSON(w, AssetsResponse{Result: failure("missing query")})
		return
	}
	s.serveAssetList(w, r, req.Credentials, "/api/assetmanagement/v3/assets?name="+url.QueryEscape(q))
}

func (s *Server) serveAssetList(w http.ResponseWriter, r *http.Request, creds Credentials, path string) {
	var body struct {
		Embedded struct {
			Assets []vendorAsset `json:"assets"`
		} `json:"_embedded"`
	}
	if err := s.upstreamGET(r.Context(), creds, path, &body); err != nil {
		writeJSON(w, AssetsResponse{Result: failure("%v", err)})
		return
	}
	out := make([]Asset, 0, len(body.Embedded.Assets))
	for _, a := range body.Embedded.Assets {
		out = append(out, Asset{AssetID: a.AssetID, Name: a.Name, TypeID: a.TypeID, ParentID: a.ParentID})
	}
	writeJSON(w, AssetsResponse{Result: Result{Success: true}, Assets: out})
}

func (s *Server) handleAssetLoad(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if err := decodeRequest(r, &req); err != nil {
		writeJSON(w, LoadResponse{Result: failure("invalid request: %v", err)})
		return
	}
	if err := checkCredentials(req.Credentials); err != nil {
		writeJSON(w, LoadResponse{Result: failure("%v", err)})
		return
	}
	assetID := strings.TrimSpace(req.AssetID)
	if assetID == "" {
		writeJSON(w, LoadResponse{Result: failure("missing assetId")})
		return
	}

	var asset vendorAsset
	if err := s.upstreamGET(r.Context(), req.Credentials, "/api/assetmanagement/v3/assets/"+url.PathEscape(assetID), &asset); err != nil {
		writeJSON(w, LoadResponse{Result: failure("%v", err)})
		return
	}

	var aspects struct {
		Embedded struct {
			Aspects []vendorAspect `json:"aspects"`
		} `json:"_embedded"`
	}
	if err := s.upstreamGET(r.Context(), req.Credentials, "/api/assetmanagement/v3/assets/"+url.PathEscape(assetID)+"/aspects", &aspects); err != nil {
		writeJSON(w, LoadResponse{Result: failure("%v", err)})
		return
	}

	writeJSON(w, LoadResponse{
		Result: Result{Success: true},
		Group:  translateAsset(asset, aspects.Embedded.Aspects),
	})
}

// translateAsset maps the vendor's asset+aspects shape onto the editor's
// Group/Aspect/Track skeleton.
func translateAsset(asset vendorAsset, aspects []vendorAspect) *GroupSkeleton {
	g := &GroupSkeleton{Name: asset.Name, Aspects: make([]AspectSkeleton, 0, len(aspects))}
	if g.Name == "" {
		g.Name = asset.AssetID
	}
	for _, a := range aspects {
		as := AspectSkeleton{Name: a.Name, Tracks: make([]TrackSkeleton, 0, len(a.Variables))}
		for _, v := range a.Variables {
			as.Tracks = append(as.Tracks, TrackSkeleton{
				Name:     v.Name,
				Unit:     v.Unit,
				DataType: translateDataType(v.DataType),
			})
		}
		g.Aspects = append(g.Aspects, as)
	}
	return g
}

func translateDataType(vendor string) model.DataType {
	switch strings.ToUpper(strings.TrimSpace(vendor)) {
	case "BOOLEAN":
		return model.DataTypeBoolean
	case "INT":
		return model.DataTypeInt
	case "LONG":
		return model.DataTypeLong
	case "DOUBLE":
		return model.DataTypeDouble
	case "STRING":
		return model.DataTypeString
	case "BIG_STRING":
		return model.DataTypeBigString
	case "TIMESTAMP":
		return model.DataTypeTimestamp
	default:
		return ""
	}
}

func failure(format string, args ...any) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...)}
}
