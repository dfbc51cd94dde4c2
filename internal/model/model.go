package model

import "time"

type SyncMode string

const (
	SyncModeFull        SyncMode = "full"
	SyncModeIncremental SyncMode = "incremental"
)

type DataType string

const (
	DataTypeBoolean   DataType = "Boolean"
	DataTypeInt       DataType = "Int"
	DataTypeLong      DataType = "Long"
	DataTypeDouble    DataType = "Double"
	DataTypeString    DataType = "String"
	DataTypeBigString DataType = "Big_string"
	DataTypeTimestamp DataType = "Timestamp"
)

type VisibilityMode string

const (
	// VisibilityExplicit means the user toggled this node directly (or a toggle
	// cascaded an explicit value onto it).
	VisibilityExplicit VisibilityMode = "explicit"
	// VisibilityImplicit means the node was made visible only as a side effect
	// of a descendant being shown. Rendered dimmed; carries no cascade power.
	VisibilityImplicit VisibilityMode = "implicit"
)

type ClipState string

const (
	ClipStateIdle       ClipState = "idle"
	ClipStateUploading  ClipState = "uploading"
	ClipStateProcessing ClipState = "processing"
	ClipStateComplete   ClipState = "complete"
	ClipStateError      ClipState = "error"
)

type LinkType string

const (
	LinkTypeNone        LinkType = ""
	LinkTypeSource      LinkType = "source"
	LinkTypeDestination LinkType = "destination"
	// LinkTypeFlexible syncs duration only, preserving the clip's own start.
	LinkTypeFlexible LinkType = "flexible"
)

// MasterTrackID is the sentinel track id for clips living in a job's master lane.
const MasterTrackID = "master"

// TimeRange is a clip's span in seconds relative to the job's timeline start.
// A nil End means the clip is live: it extends to the current time.
type TimeRange struct {
	Start float64  `json:"start"`
	End   *float64 `json:"end,omitempty"`
}

func (r TimeRange) Live() bool { return r.End == nil }

// Duration returns the span length, using now (relative seconds) for live clips.
func (r TimeRange) Duration(now float64) float64 {
	if r.End == nil {
		return now - r.Start
	}
	return *r.End - r.Start
}

// EndOr returns the end of the range, using now for live clips.
func (r TimeRange) EndOr(now float64) float64 {
	if r.End == nil {
		return now
	}
	return *r.End
}

func (r TimeRange) Equal(o TimeRange) bool {
	if r.Start != o.Start {
		return false
	}
	if (r.End == nil) != (o.End == nil) {
		return false
	}
	return r.End == nil || *r.End == *o.End
}

func EndAt(v float64) *float64 { return &v }

type Clip struct {
	ID      string `json:"id"`
	TrackID string `json:"trackId"` // MasterTrackID for master-lane clips
	Name    string `json:"name"`

	TimeRange TimeRange `json:"timeRange"`
	State     ClipState `json:"state"`
	Progress  float64   `json:"progress"` // 0-100
	Selected  bool      `json:"selected"`
	Color     string    `json:"color,omitempty"`

	// Inherited from the owning track at creation time.
	Unit     string   `json:"unit,omitempty"`
	DataType DataType `json:"dataType,omitempty"`

	// Shadow fields derived from TimeRange and the job's StartTime. They exist
	// so a timeline rebase can keep clip identity fixed in real time.
	AbsoluteStartTime *time.Time `json:"absoluteStartTime,omitempty"`
	AbsoluteEndTime   *time.Time `json:"absoluteEndTime,omitempty"`

	// LinkedToClipID references a master-lane clip whose time range this clip
	// follows according to LinkType.
	LinkedToClipID string   `json:"linkedToClipId,omitempty"`
	LinkType       LinkType `json:"linkType,omitempty"`
	// SourceClipID is a destination-only data-flow reference. It has no timing
	// effect; LinkedToClipID governs timing.
	SourceClipID string `json:"sourceClipId,omitempty"`
}

type Track struct {
	ID             string         `json:"id"`
	AspectID       string         `json:"aspectId"`
	Name           string         `json:"name"`
	Unit           string         `json:"unit,omitempty"`
	DataType       DataType       `json:"dataType,omitempty"`
	Index          int            `json:"index"`
	Muted          bool           `json:"muted"`
	Locked         bool           `json:"locked"`
	Visible        bool           `json:"visible"`
	VisibilityMode VisibilityMode `json:"visibilityMode"`
	Height         int            `json:"height"`
	Clips          []Clip         `json:"clips"`
}

type Aspect struct {
	ID             string         `json:"id"`
	GroupID        string         `json:"groupId"`
	Name           string         `json:"name"`
	Expanded       bool           `json:"expanded"`
	Visible        bool           `json:"visible"`
	VisibilityMode VisibilityMode `json:"visibilityMode"`
	Index          int            `json:"index"`
	Tracks         []Track        `json:"tracks"`
}

type Group struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	TenantID       string         `json:"tenantId,omitempty"`
	Color          string         `json:"color,omitempty"`
	Expanded       bool           `json:"expanded"`
	Visible        bool           `json:"visible"`
	VisibilityMode VisibilityMode `json:"visibilityMode"`
	Index          int            `json:"index"`
	Aspects        []Aspect       `json:"aspects"`
}

type Job struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	SyncMode SyncMode `json:"syncMode"`
	// SyncLinkedClipPositions re-aligns every clip linked to the same master
	// whenever one of them moves.
	SyncLinkedClipPositions bool `json:"syncLinkedClipPositions"`

	// StartTime is the timeline epoch; all TimeRange values are seconds from it.
	StartTime time.Time `json:"startTime"`

	Groups []Group `json:"groups"`
	// MasterClips is the master lane: at most a source and a destination in
	// full mode, exactly one live clip in incremental mode.
	MasterClips []Clip `json:"masterClips"`

	CreatedAt time.Time `json:"createdAt"`
}

// Tenant holds stored credentials for one upstream tenant.
type Tenant struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenantId"`
	ClientID     string    `json:"clientId"`
	ClientSecret string    `json:"clientSecret"`
	Region       string    `json:"region,omitempty"`
	Color        string    `json:"color,omitempty"`
	IsDefault    bool      `json:"isDefault"`
	CreatedAt    time.Time `json:"createdAt"`
	LastUsed     time.Time `json:"lastUsed,omitempty"`
}
