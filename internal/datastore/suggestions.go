package datastore

import (
	"context"

	"gorm.io/gorm"

	"github.com/sheriffhq/sheriff/internal/errors"
	"github.com/sheriffhq/sheriff/internal/logger"
)

// CreateModel registers a suggestion model
func (ds *DataStore) CreateModel(ctx context.Context, model *Model) error {
	db, err := ds.db(ctx, "create_model")
	if err != nil {
		return err
	}
	if model.Name == "" {
		return errors.ValidationError("model name is required")
	}
	if model.URI == "" {
		return errors.ValidationError("model uri is required")
	}
	if err := db.Create(model).Error; err != nil {
		return dbError(err, "create_model", "Model", model.ID)
	}
	GetLogger().Info("model registered",
		logger.String("model_id", model.ID),
		logger.String("name", model.Name))
	return nil
}

// ListModels returns every registered model, oldest first
func (ds *DataStore) ListModels(ctx context.Context) ([]Model, error) {
	db, err := ds.db(ctx, "list_models")
	if err != nil {
		return nil, err
	}
	all := []Model{}
	if err := db.Order("created_at ASC").Order("id ASC").Find(&all).Error; err != nil {
		return nil, dbError(err, "list_models", "Model", "")
	}
	return all, nil
}

// CreateSuggestion stores a model's payload for an existing asset
func (ds *DataStore) CreateSuggestion(ctx context.Context, suggestion *Suggestion) error {
	db, err := ds.db(ctx, "create_suggestion")
	if err != nil {
		return err
	}
	if suggestion.AssetID == "" || suggestion.ModelID == "" {
		return errors.ValidationError("asset_id and model_id are required")
	}
	var count int64
	if err := db.Model(&Asset{}).Where("id = ?", suggestion.AssetID).Count(&count).Error; err != nil {
		return dbError(err, "create_suggestion", "Asset", suggestion.AssetID)
	}
	if count == 0 {
		return dbError(gorm.ErrRecordNotFound, "create_suggestion", "Asset", suggestion.AssetID)
	}
	if err := db.Model(&Model{}).Where("id = ?", suggestion.ModelID).Count(&count).Error; err != nil {
		return dbError(err, "create_suggestion", "Model", suggestion.ModelID)
	}
	if count == 0 {
		return dbError(gorm.ErrRecordNotFound, "create_suggestion", "Model", suggestion.ModelID)
	}
	if err := db.Create(suggestion).Error; err != nil {
		return dbError(err, "create_suggestion", "Suggestion", suggestion.AssetID)
	}
	return nil
}

// ListSuggestions returns an asset's suggestions, oldest first. Unknown
// assets have none.
func (ds *DataStore) ListSuggestions(ctx context.Context, assetID string) ([]Suggestion, error) {
	db, err := ds.db(ctx, "list_suggestions")
	if err != nil {
		return nil, err
	}
	suggestions := []Suggestion{}
	err = db.Where("asset_id = ?", assetID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&suggestions).Error
	if err != nil {
		return nil, dbError(err, "list_suggestions", "Suggestion", assetID)
	}
	return suggestions, nil
}
