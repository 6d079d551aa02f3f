// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"context"

	"gorm.io/gorm"

	"github.com/sheriffhq/sheriff/internal/conf"
	"github.com/sheriffhq/sheriff/internal/labeling"
)

// Interface abstracts the underlying database implementation
type Interface interface {
	Open() error
	Close() error
	SetMetrics(m *Metrics) error
	Gorm() *gorm.DB

	CreateProject(ctx context.Context, project *Project) error
	ListProjects(ctx context.Context) ([]Project, error)
	GetProject(ctx context.Context, id string) (Project, error)
	DeleteProject(ctx context.Context, id string) error

	CreateCategory(ctx context.Context, category *Category) error
	ListCategories(ctx context.Context, projectID string) ([]Category, error)
	UpdateCategory(ctx context.Context, id int64, patch CategoryPatch) (Category, error)

	CreateAsset(ctx context.Context, asset *Asset) error
	ListAssets(ctx context.Context, projectID string, status labeling.Status) ([]Asset, error)
	DeleteAsset(ctx context.Context, projectID, assetID string) error

	UpsertAnnotation(ctx context.Context, annotation *Annotation) error
	ListAnnotations(ctx context.Context, projectID string) ([]Annotation, error)

	CreateDatasetVersion(ctx context.Context, version *DatasetVersion) error
	ListDatasetVersions(ctx context.Context, projectID string) ([]DatasetVersion, error)

	CreateModel(ctx context.Context, model *Model) error
	ListModels(ctx context.Context) ([]Model, error)
	CreateSuggestion(ctx context.Context, suggestion *Suggestion) error
	ListSuggestions(ctx context.Context, assetID string) ([]Suggestion, error)
}

// DataStore implements Interface using a GORM database
type DataStore struct {
	DB *gorm.DB
}

// Gorm returns the underlying connection, nil before Open
func (ds *DataStore) Gorm() *gorm.DB {
	return ds.DB
}

// New returns the store selected by settings.Database.Type, or nil when
// the type is unknown.
func New(settings *conf.Settings) Interface {
	switch settings.Database.Type {
	case conf.DatabaseSQLite, "":
		return &SQLiteStore{Settings: settings}
	case conf.DatabaseMySQL:
		return &MySQLStore{Settings: settings}
	default:
		return nil
	}
}

// models lists every table managed by AutoMigrate
func models() []any {
	return []any{&Project{}, &Category{}, &Asset{}, &Annotation{}, &DatasetVersion{}, &Model{}, &Suggestion{}}
}
