// Package catalog builds STAC and OGC API Record artifacts from validated
// config models. Building is pure: no I/O, no network, deterministic output
// for a fixed clock.
package catalog

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/deep-esdl/deep-code/pkg/config"
)

// Builder turns config models into catalog artifacts.
type Builder struct {
	// Now supplies record timestamps. Defaults to time.Now.
	Now func() time.Time
}

// NewBuilder creates a Builder with the default clock.
func NewBuilder() *Builder {
	return &Builder{Now: time.Now}
}

func (b *Builder) timestamp() string {
	now := b.Now
	if now == nil {
		now = time.Now
	}
	return now().UTC().Format(time.RFC3339)
}

// normalizeName lowercases a name and replaces spaces with hyphens, matching
// the catalog's identifier conventions.
func normalizeName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}

// CollectionPath returns the record path for a dataset collection.
func CollectionPath(collectionID string) string {
	return fmt.Sprintf("products/%s/collection.json", collectionID)
}

// VariablePath returns the record path for a variable catalog.
func VariablePath(variableName string) string {
	return fmt.Sprintf("variables/%s/catalog.json", normalizeName(variableName))
}

// WorkflowPath returns the record path for a workflow record.
func WorkflowPath(workflowID string) string {
	return fmt.Sprintf("workflows/%s/record.json", workflowID)
}

// ExperimentPath returns the record path for an experiment record.
func ExperimentPath(experimentID string) string {
	return fmt.Sprintf("experiments/%s/record.json", experimentID)
}

// VariableID derives the merge identifier of a variable record.
func VariableID(collectionID, variableName string) string {
	return collectionID + "/" + normalizeName(variableName)
}

// ExperimentID derives the merge identifier of a workflow's experiment
// record. It is distinct from the workflow identifier so both can live in
// the same index.
func ExperimentID(workflowID string) string {
	return workflowID + "-experiment"
}

// BuildDataset builds the collection artifact plus one variable artifact per
// declared variable.
func (b *Builder) BuildDataset(cfg *config.DatasetConfig) ([]Artifact, error) {
	if cfg.DatasetID == "" {
		return nil, validationErrorf("dataset_id", "must not be empty")
	}
	if cfg.CollectionID == "" {
		return nil, validationErrorf("collection_id", "must not be empty")
	}
	if cfg.AccessLink == "" {
		return nil, validationErrorf("access_link", "must not be empty")
	}

	status := cfg.DatasetStatus
	if status == "" {
		status = config.StatusOngoing
	}
	if !status.Valid() {
		return nil, validationErrorf("dataset_status", "invalid value %q", status)
	}

	region := cfg.OscRegion
	if region == "" {
		region = "Global"
	}

	extent, err := buildExtent(cfg)
	if err != nil {
		return nil, err
	}

	variables := make([]string, 0, len(cfg.Variables))
	for _, v := range cfg.Variables {
		if v.Name == "" {
			return nil, validationErrorf("variables", "variable name must not be empty")
		}
		variables = append(variables, variableLabel(v))
	}

	cfParams := cfg.CfParameters
	if len(cfParams) == 0 {
		cfParams = []config.CfParameter{{Name: cfg.CollectionID}}
	}

	now := b.timestamp()

	links := []Link{
		{Rel: "root", Href: "../../catalog.json", Type: "application/json", Title: "Open Science Catalog"},
		{Rel: "via", Href: cfg.AccessLink, Title: "Access"},
	}
	if cfg.DocumentationLink != "" {
		links = append(links, Link{Rel: "via", Href: cfg.DocumentationLink, Title: "Documentation"})
	}
	links = append(links, Link{Rel: "parent", Href: "../catalog.json", Type: "application/json", Title: "Products"})

	collection := StacCollection{
		Type:           "Collection",
		ID:             cfg.CollectionID,
		StacVersion:    StacVersion,
		StacExtensions: []string{OscSchemaURI, CfSchemaURI},
		Description:    datasetDescription(cfg),
		Extent:         extent,
		Links:          links,
		OscProject:     OscProject,
		OscType:        "product",
		OscStatus:      string(status),
		OscRegion:      region,
		OscThemes:      append([]string{}, cfg.OscThemes...),
		OscVariables:   variables,
		CfParameter:    cfParams,
		Created:        now,
		Updated:        now,
	}

	artifacts := []Artifact{{
		ID:     cfg.CollectionID,
		Path:   CollectionPath(cfg.CollectionID),
		Kind:   KindDataset,
		Title:  cfg.CollectionID,
		Record: collection,
	}}

	for _, v := range cfg.Variables {
		artifacts = append(artifacts, b.buildVariable(cfg, v, now))
	}

	return artifacts, nil
}

// variableLabel picks the descriptive name of a variable, preferring the
// long name, then the standard name, then the raw key.
func variableLabel(v config.Variable) string {
	if v.LongName != "" {
		return normalizeName(v.LongName)
	}
	if v.StandardName != "" {
		return normalizeName(v.StandardName)
	}
	return normalizeName(v.Name)
}

func (b *Builder) buildVariable(cfg *config.DatasetConfig, v config.Variable, now string) Artifact {
	title := v.LongName
	if title == "" {
		title = v.Name
	}

	record := StacCatalog{
		Type:        "Catalog",
		ID:          VariableID(cfg.CollectionID, v.Name),
		StacVersion: StacVersion,
		Title:       title,
		Description: fmt.Sprintf("Variable %s of dataset %s", v.Name, cfg.DatasetID),
		Links: []Link{
			{Rel: "root", Href: "../../catalog.json", Type: "application/json", Title: "Open Science Catalog"},
			{Rel: "child", Href: fmt.Sprintf("../../products/%s/collection.json", cfg.CollectionID), Type: "application/json", Title: cfg.CollectionID},
		},
		Created: now,
		Updated: now,
	}

	return Artifact{
		ID:     VariableID(cfg.CollectionID, v.Name),
		Path:   VariablePath(v.Name),
		Kind:   KindVariable,
		Title:  title,
		Record: record,
	}
}

func datasetDescription(cfg *config.DatasetConfig) string {
	if cfg.DocumentationLink != "" {
		return fmt.Sprintf("Dataset %s. Documentation: %s", cfg.DatasetID, cfg.DocumentationLink)
	}
	return fmt.Sprintf("Dataset %s", cfg.DatasetID)
}

func buildExtent(cfg *config.DatasetConfig) (Extent, error) {
	bbox := []float64{-180, -90, 180, 90}
	if len(cfg.SpatialExtent) > 0 {
		if len(cfg.SpatialExtent) != 4 {
			return Extent{}, validationErrorf("spatial_extent", "expected 4 values, got %d", len(cfg.SpatialExtent))
		}
		bbox = cfg.SpatialExtent
	}

	interval := []*string{nil, nil}
	if len(cfg.TemporalExtent) > 0 {
		if len(cfg.TemporalExtent) > 2 {
			return Extent{}, validationErrorf("temporal_extent", "expected at most 2 values, got %d", len(cfg.TemporalExtent))
		}
		for i, v := range cfg.TemporalExtent {
			if v == "" {
				continue
			}
			if _, err := time.Parse(time.RFC3339, v); err != nil {
				return Extent{}, validationErrorf("temporal_extent", "invalid timestamp %q", v)
			}
			value := v
			interval[i] = &value
		}
	}

	return Extent{
		Spatial:  SpatialExtent{Bbox: [][]float64{bbox}},
		Temporal: TemporalExtent{Interval: [][]*string{interval}},
	}, nil
}

// BuildWorkflow builds the workflow record artifact plus an experiment
// record when the config carries an experiment block.
func (b *Builder) BuildWorkflow(cfg *config.WorkflowConfig) ([]Artifact, error) {
	if cfg.WorkflowID == "" {
		return nil, validationErrorf("workflow_id", "must not be empty")
	}
	if cfg.Properties.Title == "" {
		return nil, validationErrorf("properties.title", "must not be empty")
	}
	if cfg.Properties.Description == "" {
		return nil, validationErrorf("properties.description", "must not be empty")
	}
	if cfg.JupyterNotebookURL == "" {
		return nil, validationErrorf("jupyter_notebook_url", "must not be empty")
	}

	contacts, err := buildContacts(cfg.Contacts)
	if err != nil {
		return nil, err
	}

	now := b.timestamp()

	props := RecordProperties{
		Created:           now,
		Updated:           now,
		Type:              "workflow",
		Title:             cfg.Properties.Title,
		Description:       cfg.Properties.Description,
		JupyterKernelInfo: cfg.Properties.JupyterKernelInfo,
		Keywords:          append([]string{}, cfg.Properties.Keywords...),
		Contacts:          contacts,
		Themes:            buildThemes(cfg.Properties.Themes),
		License:           cfg.Properties.License,
	}

	record := OgcRecord{
		ID:            cfg.WorkflowID,
		Type:          "Feature",
		ConformsTo:    []string{OgcRecordSpec},
		Time:          RecordTime{Interval: []*string{nil, nil}},
		Properties:    props,
		LinkTemplates: []interface{}{},
		Links:         workflowLinks(cfg),
	}

	artifacts := []Artifact{{
		ID:     cfg.WorkflowID,
		Path:   WorkflowPath(cfg.WorkflowID),
		Kind:   KindWorkflow,
		Title:  cfg.Properties.Title,
		Record: record,
	}}

	if cfg.Experiment != nil {
		artifacts = append(artifacts, b.buildExperiment(cfg, props))
	}

	return artifacts, nil
}

// buildContacts validates and converts config contacts. A link with any of
// rel/type/href missing is rejected rather than emitted with empty fields.
func buildContacts(contacts []config.Contact) ([]RecordContact, error) {
	out := make([]RecordContact, 0, len(contacts))
	for _, c := range contacts {
		if c.Name == "" {
			return nil, validationErrorf("contacts", "contact name must not be empty")
		}
		if c.Organization == "" {
			return nil, validationErrorf("contacts", "organization missing for contact %q", c.Name)
		}
		for _, l := range c.Links {
			if l.Rel == "" || l.Type == "" || l.Href == "" {
				return nil, validationErrorf("contacts",
					"link for contact %q must carry rel, type and href (got rel=%q type=%q href=%q)",
					c.Name, l.Rel, l.Type, l.Href)
			}
		}

		roles := c.Roles
		if len(roles) == 0 {
			roles = []string{"principal investigator"}
		}

		out = append(out, RecordContact{
			Name:         c.Name,
			Organization: c.Organization,
			Position:     c.Position,
			Links:        c.Links,
			Roles:        roles,
		})
	}
	return out, nil
}

func buildThemes(themes []string) []Theme {
	if len(themes) == 0 {
		return nil
	}
	concepts := make([]ThemeConcept, 0, len(themes))
	for _, t := range themes {
		concepts = append(concepts, ThemeConcept{ID: t})
	}
	return []Theme{{Concepts: concepts, Scheme: DefaultThemeScheme}}
}

// OpenPlatformURL builds the canonical "open in platform" redirect for a
// notebook. Only the public notebook URL is embedded; kernel details travel
// as structured record properties.
func OpenPlatformURL(notebookURL string) string {
	return fmt.Sprintf("%s/hub/user-redirect/lab?open=%s", PlatformBaseURL, url.QueryEscape(notebookURL))
}

func workflowLinks(cfg *config.WorkflowConfig) []Link {
	links := []Link{
		{Rel: "root", Href: "../../catalog.json", Type: "application/json", Title: "Open Science Catalog"},
		{Rel: "via", Href: cfg.JupyterNotebookURL, Type: "application/x-ipynb+json", Title: "Jupyter Notebook"},
		{Rel: "related", Href: OpenPlatformURL(cfg.JupyterNotebookURL), Title: "Open in DeepESDL JupyterLab"},
	}
	if env := cfg.Properties.JupyterKernelInfo.EnvFile; env != "" {
		links = append(links, Link{Rel: "related", Href: env, Title: "Execution environment"})
	}
	return links
}

func (b *Builder) buildExperiment(cfg *config.WorkflowConfig, workflowProps RecordProperties) Artifact {
	title := cfg.Experiment.Title
	if title == "" {
		title = cfg.Properties.Title
	}
	description := cfg.Experiment.Description
	if description == "" {
		description = cfg.Properties.Description
	}

	props := workflowProps
	props.Type = "experiment"
	props.Title = title
	props.Description = description

	id := ExperimentID(cfg.WorkflowID)
	record := OgcRecord{
		ID:            id,
		Type:          "Feature",
		ConformsTo:    []string{OgcRecordSpec},
		Time:          RecordTime{Interval: []*string{nil, nil}},
		Properties:    props,
		LinkTemplates: []interface{}{},
		Links: []Link{
			{Rel: "root", Href: "../../catalog.json", Type: "application/json", Title: "Open Science Catalog"},
			{Rel: "related", Href: fmt.Sprintf("../../workflows/%s/record.json", cfg.WorkflowID), Type: "application/json", Title: cfg.Properties.Title},
		},
	}

	return Artifact{
		ID:     id,
		Path:   ExperimentPath(id),
		Kind:   KindExperiment,
		Title:  title,
		Record: record,
	}
}
