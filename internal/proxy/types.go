// Package proxy bridges the editor to the vendor's IoT asset APIs. The
// server side owns OAuth and vendor-format translation so nothing upstream
// of it ever sees vendor shapes; the client side returns structured results
// and never lets a caller commit state on a failed call.
package proxy

import "syncline/internal/model"

// Credentials identify one tenant against the vendor gateway. They ride in
// every request body instead of a server-side session, so one proxy process
// serves any number of tenants.
type Credentials struct {
	TenantID     string `json:"tenantId"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	Region       string `json:"region"`
}

// Result is the envelope of every proxy response. Failures carry
// Success=false and a human-readable Message; HTTP status stays 200 so
// transport errors and vendor errors are distinguishable.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type AssetType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Asset struct {
	AssetID  string `json:"assetId"`
	Name     string `json:"name"`
	TypeID   string `json:"typeId"`
	ParentID string `json:"parentId,omitempty"`
}

// TrackSkeleton, AspectSkeleton and GroupSkeleton mirror the editor's
// Group/Aspect/Track hierarchy, minus ids and clips: they are what a loaded
// asset contributes to a job.
type TrackSkeleton struct {
	Name     string         `json:"name"`
	Unit     string         `json:"unit,omitempty"`
	DataType model.DataType `json:"dataType,omitempty"`
}

type AspectSkeleton struct {
	Name   string          `json:"name"`
	Tracks []TrackSkeleton `json:"tracks"`
}

type GroupSkeleton struct {
	Name    string           `json:"name"`
	Aspects []AspectSkeleton `json:"aspects"`
}

type AssetTypesResponse struct {
	Result
	AssetTypes []AssetType `json:"assetTypes,omitempty"`
}

type AssetsResponse struct {
	Result
	Assets []Asset `json:"assets,omitempty"`
}

type LoadResponse struct {
	Result
	Group *GroupSkeleton `json:"group,omitempty"`
}

type assetTypesRequest struct {
	Credentials
}

type assetsRequest struct {
	Credentials
	TypeID string `json:"typeId,omitempty"`
}

type loadRequest struct {
	Credentials
	AssetID string `json:"assetId"`
}

type searchRequest struct {
	Credentials
	Query string `json:"query"`
}
