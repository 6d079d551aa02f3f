// Package export builds dataset manifests and their content hashes
package export

import (
	_ "crypto/sha256" // registers the digest algorithm
	"encoding/json"
	"fmt"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"github.com/opencontainers/go-digest"

	"github.com/sheriffhq/sheriff/internal/assettree"
	"github.com/sheriffhq/sheriff/internal/errors"
	"github.com/sheriffhq/sheriff/internal/labeling"
)

// SchemaVersion is written into every manifest
const SchemaVersion = "1.0.0"

// Category is the manifest form of a label
type Category struct {
	ID           labeling.LabelID `json:"id"`
	Name         string           `json:"name"`
	DisplayOrder int              `json:"display_order"`
	IsActive     bool             `json:"is_active"`
}

// Asset is the manifest form of an asset
type Asset struct {
	ID   string `json:"id"`
	URI  string `json:"uri"`
	Type string `json:"type"`
}

// Annotation is the manifest form of a committed annotation
type Annotation struct {
	ID      string          `json:"id"`
	AssetID string          `json:"asset_id"`
	Status  labeling.Status `json:"status"`
	Payload map[string]any  `json:"payload"`
}

// Manifest describes one dataset version
type Manifest struct {
	ProjectID     string       `json:"project_id"`
	SchemaVersion string       `json:"schema_version"`
	Categories    []Category   `json:"categories"`
	Assets        []Asset      `json:"assets"`
	Annotations   []Annotation `json:"annotations"`
}

// BuildManifest collects the project's data in the given order
func BuildManifest(projectID string, labels []labeling.Label, assets []assettree.Asset, annotations []labeling.Annotation) Manifest {
	m := Manifest{
		ProjectID:     projectID,
		SchemaVersion: SchemaVersion,
		Categories:    make([]Category, 0, len(labels)),
		Assets:        make([]Asset, 0, len(assets)),
		Annotations:   make([]Annotation, 0, len(annotations)),
	}
	for _, l := range labels {
		m.Categories = append(m.Categories, Category{ID: l.ID, Name: l.Name, DisplayOrder: l.DisplayOrder, IsActive: l.IsActive})
	}
	for _, a := range assets {
		typ := a.Type
		if typ == "" {
			typ = "image"
		}
		m.Assets = append(m.Assets, Asset{ID: a.ID, URI: a.URI, Type: typ})
	}
	for _, n := range annotations {
		payload := n.Payload
		if payload == nil {
			payload = map[string]any{}
		}
		m.Annotations = append(m.Annotations, Annotation{ID: n.ID, AssetID: n.AssetID, Status: n.Status, Payload: payload})
	}
	return m
}

// Canonical returns the RFC 8785 form of v: object keys sorted, no
// insignificant whitespace.
func Canonical(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, exportError(err, "marshal")
	}
	out, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return nil, exportError(err, "canonicalize")
	}
	return out, nil
}

// StableHash returns the hex SHA-256 of the canonical JSON of v
func StableHash(v any) (string, error) {
	canonical, err := Canonical(v)
	if err != nil {
		return "", err
	}
	return digest.SHA256.FromBytes(canonical).Encoded(), nil
}

// URI is the storage location of an export archive
func URI(projectID, hash string) string {
	return fmt.Sprintf("exports/%s/%s.zip", projectID, hash)
}

// Result is a built manifest with its hash and URI
type Result struct {
	Manifest Manifest
	Hash     string
	URI      string
}

// Build assembles the manifest and hashes it
func Build(projectID string, labels []labeling.Label, assets []assettree.Asset, annotations []labeling.Annotation) (Result, error) {
	m := BuildManifest(projectID, labels, assets, annotations)
	hash, err := StableHash(m)
	if err != nil {
		return Result{}, err
	}
	return Result{Manifest: m, Hash: hash, URI: URI(projectID, hash)}, nil
}

// AsMap converts the manifest to the generic form stored in JSON columns
func (m Manifest) AsMap() (map[string]any, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, exportError(err, "marshal")
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, exportError(err, "unmarshal")
	}
	return out, nil
}

func exportError(err error, operation string) error {
	return errors.New(err).
		Component("export").
		Category(errors.CategoryExport).
		Context("operation", operation).
		Build()
}
