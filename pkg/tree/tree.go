// Package tree models the working copy of the catalog repository and the
// merge of newly built artifacts into it. A merge computes the full set of
// file writes in isolation; nothing touches the working copy until the
// mutation is applied in a single pass.
package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// IndexFile is the catalog index at the root of the tree.
const IndexFile = "catalog.json"

// Entry is one child entry in the catalog index.
type Entry struct {
	Rel   string `json:"rel"`
	Href  string `json:"href"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
}

// Index is a typed read-only view of the catalog index.
type Index struct {
	Type        string  `json:"type"`
	ID          string  `json:"id"`
	StacVersion string  `json:"stac_version"`
	Description string  `json:"description,omitempty"`
	Links       []Entry `json:"links"`
}

// indexLink pairs a parsed link entry with its original raw JSON. The index
// file is owned by the upstream catalog, so links this run does not touch are
// written back from their raw form, unmodeled fields included.
type indexLink struct {
	entry Entry
	raw   json.RawMessage
}

// Catalog is a working copy of the catalog repository, fetched fresh per
// publish run and discarded after the commit is pushed.
type Catalog struct {
	fs    billy.Filesystem
	root  *jsonObject
	links []indexLink
}

// Load reads the catalog index from the working copy. A missing index yields
// an empty catalog so publishing into a fresh repository works.
func Load(fs billy.Filesystem) (*Catalog, error) {
	c := &Catalog{fs: fs}

	data, err := util.ReadFile(fs, IndexFile)
	if err != nil {
		if os.IsNotExist(err) {
			c.root = defaultIndexRoot()
			return c, nil
		}
		return nil, fmt.Errorf("failed to read catalog index: %w", err)
	}

	root, err := parseJSONObject(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog index: %w", err)
	}
	c.root = root

	if raw, ok := root.get("links"); ok {
		var rawLinks []json.RawMessage
		if err := json.Unmarshal(raw, &rawLinks); err != nil {
			return nil, fmt.Errorf("failed to parse catalog index links: %w", err)
		}
		for _, rl := range rawLinks {
			var entry Entry
			if err := json.Unmarshal(rl, &entry); err != nil {
				return nil, fmt.Errorf("failed to parse catalog index link: %w", err)
			}
			c.links = append(c.links, indexLink{entry: entry, raw: rl})
		}
	}
	return c, nil
}

func defaultIndexRoot() *jsonObject {
	root := newJSONObject()
	root.set("type", json.RawMessage(`"Catalog"`))
	root.set("id", json.RawMessage(`"osc"`))
	root.set("stac_version", json.RawMessage(`"1.0.0"`))
	root.set("description", json.RawMessage(`"Open Science Catalog"`))
	root.set("links", json.RawMessage(`[]`))
	return root
}

// FS returns the underlying working-copy filesystem.
func (c *Catalog) FS() billy.Filesystem {
	return c.fs
}

// Index returns a typed view of the catalog index.
func (c *Catalog) Index() Index {
	var idx Index
	fields := map[string]*string{
		"type":         &idx.Type,
		"id":           &idx.ID,
		"stac_version": &idx.StacVersion,
		"description":  &idx.Description,
	}
	for key, dst := range fields {
		if raw, ok := c.root.get(key); ok {
			_ = json.Unmarshal(raw, dst)
		}
	}
	for _, l := range c.links {
		idx.Links = append(idx.Links, l.entry)
	}
	return idx
}

// HasRecord reports whether a record file exists at the given path.
func (c *Catalog) HasRecord(path string) bool {
	_, err := c.fs.Stat(path)
	return err == nil
}

// ReadRecord returns the raw content of a record file.
func (c *Catalog) ReadRecord(path string) ([]byte, error) {
	data, err := util.ReadFile(c.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read record %s: %w", path, err)
	}
	return data, nil
}

// renderIndex writes the index back with an updated links array. Every other
// root field passes through from the loaded file.
func renderIndex(root *jsonObject, links []indexLink) ([]byte, error) {
	var arr bytes.Buffer
	arr.WriteByte('[')
	for i, l := range links {
		if i > 0 {
			arr.WriteByte(',')
		}
		arr.Write(l.raw)
	}
	arr.WriteByte(']')

	obj := root.clone()
	obj.set("links", json.RawMessage(arr.Bytes()))
	return obj.marshalIndent()
}

// jsonObject is a JSON object whose fields are kept raw and in file order, so
// a read-modify-write cycle never drops or reorders fields it does not model.
type jsonObject struct {
	keys   []string
	values map[string]json.RawMessage
}

func newJSONObject() *jsonObject {
	return &jsonObject{values: make(map[string]json.RawMessage)}
}

func parseJSONObject(data []byte) (*jsonObject, error) {
	obj := newJSONObject()

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected an object key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		obj.set(key, raw)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func (o *jsonObject) get(key string) (json.RawMessage, bool) {
	raw, ok := o.values[key]
	return raw, ok
}

// set replaces the field in place, or appends it when absent.
func (o *jsonObject) set(key string, raw json.RawMessage) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = raw
}

func (o *jsonObject) clone() *jsonObject {
	c := newJSONObject()
	c.keys = append(c.keys, o.keys...)
	for k, v := range o.values {
		c.values[k] = v
	}
	return c
}

// marshalIndent renders the object in field order with the catalog's
// canonical form (2-space indent, trailing newline).
func (o *jsonObject) marshalIndent() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, key := range o.keys {
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.WriteString("  ")
		buf.Write(keyJSON)
		buf.WriteString(": ")

		var value bytes.Buffer
		if err := json.Indent(&value, o.values[key], "  ", "  "); err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		buf.Write(value.Bytes())

		if i < len(o.keys)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}
