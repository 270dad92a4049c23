package catalog

const (
	// OscSchemaURI and CfSchemaURI are the STAC extension schemas the
	// generated collections declare.
	OscSchemaURI = "https://stac-extensions.github.io/osc/v1.0.0-rc.3/schema.json"
	CfSchemaURI  = "https://stac-extensions.github.io/cf/v0.2.0/schema.json"

	// OgcRecordSpec is the conformance URI for OGC API Records.
	OgcRecordSpec = "http://www.opengis.net/spec/ogcapi-records-1/1.0/req/record-core"

	// DefaultThemeScheme is the concept scheme used for workflow themes.
	DefaultThemeScheme = "https://gcmd.earthdata.nasa.gov/kms/concepts/concept_scheme/sciencekeywords"

	// OscProject is the fixed osc:project value for all generated collections.
	OscProject = "deep-earth-system-data-lab"

	// StacVersion is the STAC version the generated records declare.
	StacVersion = "1.0.0"

	// PlatformBaseURL is the platform entry point used for "open in
	// platform" notebook links.
	PlatformBaseURL = "https://deep.earthsystemdatalab.net"
)
