// model.go defines the persisted data model
package datastore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sheriffhq/sheriff/internal/assettree"
	"github.com/sheriffhq/sheriff/internal/labeling"
)

const (
	TaskTypeClassificationSingle = "classification_single"
	SchemaVersion                = "1.0.0"

	AssetTypeImage = "image"
	AssetTypeVideo = "video"
	AssetTypeFrame = "frame"
)

// Project groups categories, assets and annotations
type Project struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name          string    `gorm:"not null" json:"name"`
	TaskType      string    `gorm:"type:varchar(32);not null" json:"task_type"`
	SchemaVersion string    `gorm:"type:varchar(16);not null" json:"schema_version"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

// Category is a label a project's assets can be classified with
type Category struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID    string `gorm:"index;type:varchar(36);not null" json:"project_id"`
	Name         string `gorm:"not null" json:"name"`
	DisplayOrder int    `json:"display_order"`
	IsActive     bool   `json:"is_active"`
}

// CategoryPatch holds the optional fields of a category update
type CategoryPatch struct {
	Name         *string `json:"name,omitempty"`
	DisplayOrder *int    `json:"display_order,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

// Asset is an imported image. Folders are not stored; they derive from
// metadata_json.relative_path.
type Asset struct {
	ID        string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProjectID string         `gorm:"index;type:varchar(36);not null" json:"project_id"`
	Type      string         `gorm:"type:varchar(16);not null" json:"type"`
	URI       string         `gorm:"not null" json:"uri"`
	MIMEType  string         `gorm:"type:varchar(128);not null" json:"mime_type"`
	Width     *int           `json:"width"`
	Height    *int           `json:"height"`
	Checksum  string         `gorm:"type:varchar(128);not null" json:"checksum"`
	Metadata  map[string]any `gorm:"serializer:json" json:"metadata_json"`
	CreatedAt time.Time      `json:"-"`
}

// Annotation is the single committed classification of an asset
type Annotation struct {
	ID          string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	AssetID     string          `gorm:"uniqueIndex:uq_annotation_asset;type:varchar(36);not null" json:"asset_id"`
	ProjectID   string          `gorm:"index;type:varchar(36);not null" json:"project_id"`
	Status      labeling.Status `gorm:"type:varchar(16);not null" json:"status"`
	Payload     map[string]any  `gorm:"serializer:json" json:"payload_json"`
	AnnotatedBy *string         `json:"annotated_by"`
	CreatedAt   time.Time       `json:"-"`
	UpdatedAt   time.Time       `json:"-"`
}

// DatasetVersion records one export of a project
type DatasetVersion struct {
	ID                string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProjectID         string         `gorm:"index;type:varchar(36);not null" json:"project_id"`
	SelectionCriteria map[string]any `gorm:"serializer:json" json:"selection_criteria_json"`
	Manifest          map[string]any `gorm:"serializer:json" json:"manifest_json"`
	ExportURI         string         `gorm:"not null" json:"export_uri"`
	Hash              string         `gorm:"type:varchar(64);not null" json:"hash"`
	CreatedAt         time.Time      `json:"-"`
}

// Model is a registered suggestion model, referenced by URI
type Model struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	URI       string    `gorm:"not null" json:"uri"`
	CreatedAt time.Time `json:"-"`
}

// Suggestion is a model's proposed payload for one asset
type Suggestion struct {
	ID        string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	AssetID   string         `gorm:"index;type:varchar(36);not null" json:"asset_id"`
	ModelID   string         `gorm:"index;type:varchar(36);not null" json:"model_id"`
	Payload   map[string]any `gorm:"serializer:json" json:"payload_json"`
	CreatedAt time.Time      `json:"-"`
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// BeforeCreate assigns an ID and the project defaults
func (p *Project) BeforeCreate(*gorm.DB) error {
	newID(&p.ID)
	if p.TaskType == "" {
		p.TaskType = TaskTypeClassificationSingle
	}
	if p.SchemaVersion == "" {
		p.SchemaVersion = SchemaVersion
	}
	return nil
}

// BeforeCreate assigns an ID and the asset defaults
func (a *Asset) BeforeCreate(*gorm.DB) error {
	newID(&a.ID)
	if a.Type == "" {
		a.Type = AssetTypeImage
	}
	if a.Metadata == nil {
		a.Metadata = map[string]any{}
	}
	return nil
}

// BeforeCreate assigns an ID
func (a *Annotation) BeforeCreate(*gorm.DB) error {
	newID(&a.ID)
	if a.Payload == nil {
		a.Payload = map[string]any{}
	}
	return nil
}

// BeforeCreate assigns an ID
func (v *DatasetVersion) BeforeCreate(*gorm.DB) error {
	newID(&v.ID)
	return nil
}

// BeforeCreate assigns an ID
func (m *Model) BeforeCreate(*gorm.DB) error {
	newID(&m.ID)
	return nil
}

// BeforeCreate assigns an ID
func (s *Suggestion) BeforeCreate(*gorm.DB) error {
	newID(&s.ID)
	if s.Payload == nil {
		s.Payload = map[string]any{}
	}
	return nil
}

// Label converts the row to the workspace label type
func (c Category) Label() labeling.Label {
	return labeling.Label{
		ID:           labeling.LabelID(c.ID),
		ProjectID:    c.ProjectID,
		Name:         c.Name,
		DisplayOrder: c.DisplayOrder,
		IsActive:     c.IsActive,
	}
}

// TreeAsset converts the row to the asset tree type
func (a Asset) TreeAsset() assettree.Asset {
	return assettree.Asset{
		ID:        a.ID,
		ProjectID: a.ProjectID,
		Type:      a.Type,
		URI:       a.URI,
		MIMEType:  a.MIMEType,
		Width:     a.Width,
		Height:    a.Height,
		Checksum:  a.Checksum,
		Metadata:  a.Metadata,
	}
}

// Committed converts the row to the workspace annotation type
func (a Annotation) Committed() labeling.Annotation {
	return labeling.Annotation{
		ID:          a.ID,
		AssetID:     a.AssetID,
		ProjectID:   a.ProjectID,
		Status:      a.Status,
		Payload:     a.Payload,
		AnnotatedBy: a.AnnotatedBy,
	}
}
