package datastore

import (
	"context"
	"strconv"

	"gorm.io/gorm"

	"github.com/sheriffhq/sheriff/internal/errors"
	"github.com/sheriffhq/sheriff/internal/labeling"
	"github.com/sheriffhq/sheriff/internal/logger"
)

func (ds *DataStore) db(ctx context.Context, operation string) (*gorm.DB, error) {
	if ds.DB == nil {
		return nil, notInitialized(operation)
	}
	return ds.DB.WithContext(ctx), nil
}

// CreateProject inserts a project, filling ID and defaults
func (ds *DataStore) CreateProject(ctx context.Context, project *Project) error {
	db, err := ds.db(ctx, "create_project")
	if err != nil {
		return err
	}
	if project.Name == "" {
		return errors.ValidationError("project name is required")
	}
	if project.TaskType != "" && project.TaskType != TaskTypeClassificationSingle {
		return errors.ValidationError("unsupported task type " + project.TaskType)
	}
	if err := db.Create(project).Error; err != nil {
		return dbError(err, "create_project", "Project", project.ID)
	}
	GetLogger().Debug("project created",
		logger.String("project_id", project.ID),
		logger.String("name", project.Name))
	return nil
}

// ListProjects returns every project, oldest first
func (ds *DataStore) ListProjects(ctx context.Context) ([]Project, error) {
	db, err := ds.db(ctx, "list_projects")
	if err != nil {
		return nil, err
	}
	projects := []Project{}
	if err := db.Order("created_at ASC").Order("id ASC").Find(&projects).Error; err != nil {
		return nil, dbError(err, "list_projects", "Project", "")
	}
	return projects, nil
}

// GetProject returns the project or a not-found error
func (ds *DataStore) GetProject(ctx context.Context, id string) (Project, error) {
	db, err := ds.db(ctx, "get_project")
	if err != nil {
		return Project{}, err
	}
	var project Project
	if err := db.Where("id = ?", id).First(&project).Error; err != nil {
		return Project{}, dbError(err, "get_project", "Project", id)
	}
	return project, nil
}

// DeleteProject removes a project with all of its categories, assets,
// annotations, suggestions and dataset versions in one transaction.
func (ds *DataStore) DeleteProject(ctx context.Context, id string) error {
	db, err := ds.db(ctx, "delete_project")
	if err != nil {
		return err
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&Project{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		assetIDs := tx.Model(&Asset{}).Select("id").Where("project_id = ?", id)
		if err := tx.Where("asset_id IN (?)", assetIDs).Delete(&Suggestion{}).Error; err != nil {
			return err
		}
		for _, model := range []any{&Annotation{}, &Asset{}, &Category{}, &DatasetVersion{}} {
			if err := tx.Where("project_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return dbError(err, "delete_project", "Project", id)
	}
	GetLogger().Info("project deleted", logger.String("project_id", id))
	return nil
}

func (ds *DataStore) requireProject(db *gorm.DB, operation, projectID string) error {
	var count int64
	if err := db.Model(&Project{}).Where("id = ?", projectID).Count(&count).Error; err != nil {
		return dbError(err, operation, "Project", projectID)
	}
	if count == 0 {
		return dbError(gorm.ErrRecordNotFound, operation, "Project", projectID)
	}
	return nil
}

// CreateCategory inserts a category into an existing project
func (ds *DataStore) CreateCategory(ctx context.Context, category *Category) error {
	db, err := ds.db(ctx, "create_category")
	if err != nil {
		return err
	}
	if category.Name == "" {
		return errors.ValidationError("category name is required")
	}
	if err := ds.requireProject(db, "create_category", category.ProjectID); err != nil {
		return err
	}
	if err := db.Create(category).Error; err != nil {
		return dbError(err, "create_category", "Category", category.ProjectID)
	}
	return nil
}

// ListCategories returns a project's categories by display order
func (ds *DataStore) ListCategories(ctx context.Context, projectID string) ([]Category, error) {
	db, err := ds.db(ctx, "list_categories")
	if err != nil {
		return nil, err
	}
	categories := []Category{}
	err = db.Where("project_id = ?", projectID).
		Order("display_order ASC").
		Order("id ASC").
		Find(&categories).Error
	if err != nil {
		return nil, dbError(err, "list_categories", "Category", projectID)
	}
	return categories, nil
}

// UpdateCategory applies the non-nil fields of patch
func (ds *DataStore) UpdateCategory(ctx context.Context, id int64, patch CategoryPatch) (Category, error) {
	db, err := ds.db(ctx, "update_category")
	if err != nil {
		return Category{}, err
	}
	if patch.Name != nil && *patch.Name == "" {
		return Category{}, errors.ValidationError("category name must not be empty")
	}

	var category Category
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&category).Error; err != nil {
			return err
		}
		if patch.Name != nil {
			category.Name = *patch.Name
		}
		if patch.DisplayOrder != nil {
			category.DisplayOrder = *patch.DisplayOrder
		}
		if patch.IsActive != nil {
			category.IsActive = *patch.IsActive
		}
		return tx.Save(&category).Error
	})
	if err != nil {
		return Category{}, dbError(err, "update_category", "Category", strconv.FormatInt(id, 10))
	}
	return category, nil
}

// CreateAsset inserts an asset into an existing project
func (ds *DataStore) CreateAsset(ctx context.Context, asset *Asset) error {
	db, err := ds.db(ctx, "create_asset")
	if err != nil {
		return err
	}
	if asset.URI == "" {
		return errors.ValidationError("asset uri is required")
	}
	switch asset.Type {
	case "", AssetTypeImage, AssetTypeVideo, AssetTypeFrame:
	default:
		return errors.ValidationError("asset type must be image, video or frame")
	}
	if asset.MIMEType == "" {
		asset.MIMEType = "image/jpeg"
	}
	if err := ds.requireProject(db, "create_asset", asset.ProjectID); err != nil {
		return err
	}
	if err := db.Create(asset).Error; err != nil {
		return dbError(err, "create_asset", "Asset", asset.ID)
	}
	return nil
}

// ListAssets returns a project's assets. A non-empty status keeps only
// assets whose annotation has that status; unannotated assets never match.
func (ds *DataStore) ListAssets(ctx context.Context, projectID string, status labeling.Status) ([]Asset, error) {
	db, err := ds.db(ctx, "list_assets")
	if err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, errors.ValidationError("unknown annotation status " + string(status))
	}
	query := db.Model(&Asset{}).Select("assets.*").Where("assets.project_id = ?", projectID)
	if status != "" {
		query = query.
			Joins("JOIN annotations ON annotations.asset_id = assets.id").
			Where("annotations.status = ?", status)
	}
	assets := []Asset{}
	if err := query.Order("assets.created_at ASC").Order("assets.id ASC").Find(&assets).Error; err != nil {
		return nil, dbError(err, "list_assets", "Asset", projectID)
	}
	return assets, nil
}

// DeleteAsset removes an asset and its annotation
func (ds *DataStore) DeleteAsset(ctx context.Context, projectID, assetID string) error {
	db, err := ds.db(ctx, "delete_asset")
	if err != nil {
		return err
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND project_id = ?", assetID, projectID).Delete(&Asset{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("asset_id = ?", assetID).Delete(&Suggestion{}).Error; err != nil {
			return err
		}
		return tx.Where("asset_id = ?", assetID).Delete(&Annotation{}).Error
	})
	if err != nil {
		return dbError(err, "delete_asset", "Asset", assetID)
	}
	return nil
}

// UpsertAnnotation creates the annotation of an asset or replaces its
// status, payload and author. On return annotation holds the stored row.
func (ds *DataStore) UpsertAnnotation(ctx context.Context, annotation *Annotation) error {
	db, err := ds.db(ctx, "upsert_annotation")
	if err != nil {
		return err
	}
	if annotation.AssetID == "" {
		return errors.ValidationError("asset_id is required")
	}
	if annotation.Status == "" {
		annotation.Status = labeling.StatusLabeled
	}
	if !annotation.Status.Valid() {
		return errors.ValidationError("unknown annotation status " + string(annotation.Status))
	}
	if annotation.Payload == nil {
		annotation.Payload = map[string]any{}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var asset Asset
		if err := tx.Where("id = ? AND project_id = ?", annotation.AssetID, annotation.ProjectID).First(&asset).Error; err != nil {
			return err
		}
		var existing Annotation
		err := tx.Where("asset_id = ?", annotation.AssetID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			annotation.ID = ""
			return tx.Create(annotation).Error
		case err != nil:
			return err
		}
		existing.Status = annotation.Status
		existing.Payload = annotation.Payload
		existing.AnnotatedBy = annotation.AnnotatedBy
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		*annotation = existing
		return nil
	})
	if err != nil {
		return dbError(err, "upsert_annotation", "Asset", annotation.AssetID)
	}
	return nil
}

// ListAnnotations returns every annotation of a project
func (ds *DataStore) ListAnnotations(ctx context.Context, projectID string) ([]Annotation, error) {
	db, err := ds.db(ctx, "list_annotations")
	if err != nil {
		return nil, err
	}
	annotations := []Annotation{}
	if err := db.Where("project_id = ?", projectID).Order("created_at ASC").Order("id ASC").Find(&annotations).Error; err != nil {
		return nil, dbError(err, "list_annotations", "Annotation", projectID)
	}
	return annotations, nil
}

// CreateDatasetVersion records an export
func (ds *DataStore) CreateDatasetVersion(ctx context.Context, version *DatasetVersion) error {
	db, err := ds.db(ctx, "create_dataset_version")
	if err != nil {
		return err
	}
	if err := ds.requireProject(db, "create_dataset_version", version.ProjectID); err != nil {
		return err
	}
	if version.SelectionCriteria == nil {
		version.SelectionCriteria = map[string]any{"status": string(labeling.StatusApproved)}
	}
	if err := db.Create(version).Error; err != nil {
		return dbError(err, "create_dataset_version", "DatasetVersion", version.ProjectID)
	}
	return nil
}

// ListDatasetVersions returns a project's exports, oldest first
func (ds *DataStore) ListDatasetVersions(ctx context.Context, projectID string) ([]DatasetVersion, error) {
	db, err := ds.db(ctx, "list_dataset_versions")
	if err != nil {
		return nil, err
	}
	versions := []DatasetVersion{}
	if err := db.Where("project_id = ?", projectID).Order("created_at ASC").Order("id ASC").Find(&versions).Error; err != nil {
		return nil, dbError(err, "list_dataset_versions", "DatasetVersion", projectID)
	}
	return versions, nil
}
