package datastore

import (
	"context"
	"fmt"
	"io"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sheriffhq/sheriff/internal/errors"
	"github.com/sheriffhq/sheriff/internal/logger"
)

const (
	DefaultTransferBatchSize = 500
	MaxTransferBatchSize     = 10000
)

// TransferOptions controls a store to store copy
type TransferOptions struct {
	BatchSize int
	// Clean deletes every target row before copying
	Clean bool
}

// TableStats records the outcome of copying one table
type TableStats struct {
	Name     string
	Source   int64
	Copied   int64
	Skipped  int64
	Failed   int64
	Duration time.Duration
}

// TransferStats aggregates the per-table results of a transfer
type TransferStats struct {
	Tables   []TableStats
	Duration time.Duration
}

// Failed reports the total number of rows that could not be written
func (s *TransferStats) Failed() int64 {
	var n int64
	for _, t := range s.Tables {
		n += t.Failed
	}
	return n
}

// Print writes a summary table to w
func (s *TransferStats) Print(w io.Writer) {
	fmt.Fprintf(w, "%-20s %10s %10s %10s %10s\n", "Table", "Source", "Copied", "Skipped", "Failed")
	for _, t := range s.Tables {
		fmt.Fprintf(w, "%-20s %10d %10d %10d %10d\n", t.Name, t.Source, t.Copied, t.Skipped, t.Failed)
	}
	fmt.Fprintf(w, "completed in %s\n", s.Duration.Round(time.Millisecond))
}

// Transfer copies every project and its rows from source into target.
// Rows whose primary key already exists in target are skipped, so a
// transfer can be repeated. Tables are copied parents first.
func Transfer(ctx context.Context, source, target Interface, opts TransferOptions) (*TransferStats, error) {
	if opts.BatchSize == 0 {
		opts.BatchSize = DefaultTransferBatchSize
	}
	if opts.BatchSize < 1 || opts.BatchSize > MaxTransferBatchSize {
		return nil, errors.Newf("batch size must be between 1 and %d", MaxTransferBatchSize).
			Component(component).
			Category(errors.CategoryValidation).
			Context("batch_size", opts.BatchSize).
			Build()
	}

	src, dst := source.Gorm(), target.Gorm()
	if src == nil || dst == nil {
		return nil, notInitialized("transfer")
	}
	src, dst = src.WithContext(ctx), dst.WithContext(ctx)

	if opts.Clean {
		if err := cleanTables(dst); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	stats := &TransferStats{}
	steps := []func() (TableStats, error){
		func() (TableStats, error) { return transferTable[Project](ctx, src, dst, "projects", opts.BatchSize) },
		func() (TableStats, error) { return transferTable[Category](ctx, src, dst, "categories", opts.BatchSize) },
		func() (TableStats, error) { return transferTable[Asset](ctx, src, dst, "assets", opts.BatchSize) },
		func() (TableStats, error) { return transferTable[Annotation](ctx, src, dst, "annotations", opts.BatchSize) },
		func() (TableStats, error) {
			return transferTable[DatasetVersion](ctx, src, dst, "dataset_versions", opts.BatchSize)
		},
		func() (TableStats, error) { return transferTable[Model](ctx, src, dst, "models", opts.BatchSize) },
		func() (TableStats, error) { return transferTable[Suggestion](ctx, src, dst, "suggestions", opts.BatchSize) },
	}
	for _, step := range steps {
		ts, err := step()
		stats.Tables = append(stats.Tables, ts)
		if err != nil {
			return stats, err
		}
	}
	stats.Duration = time.Since(start)

	GetLogger().Info("transfer completed",
		logger.Int("tables", len(stats.Tables)),
		logger.Int64("failed_rows", stats.Failed()),
		logger.Duration("duration", stats.Duration))
	return stats, nil
}

// cleanTables removes target rows children first
func cleanTables(db *gorm.DB) error {
	all := models()
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(all[i]).Error; err != nil {
			return errors.New(err).
				Component(component).
				Category(errors.CategoryDatabase).
				Context("operation", "transfer_clean").
				Context("model", fmt.Sprintf("%T", all[i])).
				Build()
		}
	}
	return nil
}

// transferTable copies one table in batches. A failing batch is counted and
// skipped; only read failures abort the copy.
func transferTable[T any](ctx context.Context, src, dst *gorm.DB, table string, batchSize int) (TableStats, error) {
	start := time.Now()
	stats := TableStats{Name: table}
	log := GetLogger().With(logger.String("table", table))

	if err := src.Model(new(T)).Count(&stats.Source).Error; err != nil {
		return stats, dbError(err, "transfer_count", table, "")
	}
	if stats.Source == 0 {
		stats.Duration = time.Since(start)
		return stats, nil
	}

	batch := 0
	err := src.Model(new(T)).FindInBatches(new([]T), batchSize, func(tx *gorm.DB, _ int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch++
		records := tx.Statement.Dest.(*[]T)
		n := int64(len(*records))

		result := dst.Clauses(clause.OnConflict{DoNothing: true}).Create(records)
		if result.Error != nil {
			stats.Failed += n
			log.Warn("batch failed",
				logger.Int("batch", batch),
				logger.Int64("rows", n),
				logger.Error(result.Error))
			return nil
		}
		stats.Copied += result.RowsAffected
		stats.Skipped += n - result.RowsAffected
		return nil
	}).Error
	stats.Duration = time.Since(start)
	if err != nil {
		return stats, dbError(err, "transfer_read", table, "")
	}

	log.Debug("table copied",
		logger.Int64("copied", stats.Copied),
		logger.Int64("skipped", stats.Skipped),
		logger.Int64("failed", stats.Failed))
	return stats, nil
}
