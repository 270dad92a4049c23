package catalog

import "github.com/deep-esdl/deep-code/pkg/config"

// Link is a STAC/OGC link object shared by all generated records.
type Link struct {
	Rel   string `json:"rel"`
	Href  string `json:"href"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
}

// SpatialExtent holds the bounding boxes of a collection.
type SpatialExtent struct {
	Bbox [][]float64 `json:"bbox"`
}

// TemporalExtent holds the time intervals of a collection. Interval entries
// are nullable to express open-ended ranges.
type TemporalExtent struct {
	Interval [][]*string `json:"interval"`
}

// Extent combines spatial and temporal extents.
type Extent struct {
	Spatial  SpatialExtent  `json:"spatial"`
	Temporal TemporalExtent `json:"temporal"`
}

// StacCollection is a STAC collection record carrying the OSC and CF
// extension fields the target catalog expects.
type StacCollection struct {
	Type           string               `json:"type"`
	ID             string               `json:"id"`
	StacVersion    string               `json:"stac_version"`
	StacExtensions []string             `json:"stac_extensions"`
	Description    string               `json:"description"`
	Extent         Extent               `json:"extent"`
	License        string               `json:"license,omitempty"`
	Links          []Link               `json:"links"`
	OscProject     string               `json:"osc:project"`
	OscType        string               `json:"osc:type"`
	OscStatus      string               `json:"osc:status"`
	OscRegion      string               `json:"osc:region"`
	OscThemes      []string             `json:"osc:themes"`
	OscVariables   []string             `json:"osc:variables,omitempty"`
	OscMissions    []string             `json:"osc:missions,omitempty"`
	CfParameter    []config.CfParameter `json:"cf:parameter"`
	Created        string               `json:"created"`
	Updated        string               `json:"updated"`
}

// StacCatalog is a lightweight STAC catalog, used for per-variable records
// nested beneath their parent collection.
type StacCatalog struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	StacVersion string `json:"stac_version"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Links       []Link `json:"links"`
	Created     string `json:"created"`
	Updated     string `json:"updated"`
}

// ThemeConcept is a single concept reference inside a record theme.
type ThemeConcept struct {
	ID string `json:"id"`
}

// Theme groups concepts under a concept scheme.
type Theme struct {
	Concepts []ThemeConcept `json:"concepts"`
	Scheme   string         `json:"scheme"`
}

// RecordContact is a contact entry in a record's properties. Links are fully
// specified or absent; the builder enforces this.
type RecordContact struct {
	Name                string               `json:"name"`
	Organization        string               `json:"organization"`
	Position            string               `json:"position,omitempty"`
	Links               []config.ContactLink `json:"links,omitempty"`
	ContactInstructions string               `json:"contactInstructions,omitempty"`
	Roles               []string             `json:"roles"`
}

// RecordProperties are the descriptive properties of an OGC API Record.
type RecordProperties struct {
	Created           string                   `json:"created"`
	Updated           string                   `json:"updated"`
	Type              string                   `json:"type"`
	Title             string                   `json:"title"`
	Description       string                   `json:"description"`
	JupyterKernelInfo config.JupyterKernelInfo `json:"jupyter_kernel_info"`
	Keywords          []string                 `json:"keywords,omitempty"`
	Contacts          []RecordContact          `json:"contacts,omitempty"`
	Themes            []Theme                  `json:"themes,omitempty"`
	License           string                   `json:"license,omitempty"`
}

// RecordTime is the temporal element of an OGC API Record.
type RecordTime struct {
	Interval []*string `json:"interval"`
}

// OgcRecord is an OGC API Record describing a workflow or experiment.
type OgcRecord struct {
	ID            string           `json:"id"`
	Type          string           `json:"type"`
	ConformsTo    []string         `json:"conformsTo"`
	Time          RecordTime       `json:"time"`
	Geometry      interface{}      `json:"geometry"`
	Properties    RecordProperties `json:"properties"`
	LinkTemplates []interface{}    `json:"linkTemplates"`
	Links         []Link           `json:"links"`
}
