package scriptgen

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hairizuanbinnoorazman/design-testgen/logger"
	"gorm.io/gorm"
)

// MySQLStore implements the Store interface using GORM. It runs on MySQL and SQLite.
type MySQLStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewMySQLStore creates a new GORM-backed generation history store.
func NewMySQLStore(db *gorm.DB, log logger.Logger) *MySQLStore {
	return &MySQLStore{
		db:     db,
		logger: log,
	}
}

// Create creates a new generation record in the database.
func (s *MySQLStore) Create(ctx context.Context, rec *GenerationRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		s.logger.Error(ctx, "failed to create generation record", map[string]interface{}{
			"error":     err.Error(),
			"framework": rec.Framework,
		})
		return err
	}

	s.logger.Info(ctx, "generation record created", map[string]interface{}{
		"generation_id": rec.ID.String(),
		"framework":     rec.Framework,
		"status":        rec.Status,
	})

	return nil
}

// GetByID retrieves a record by its ID.
func (s *MySQLStore) GetByID(ctx context.Context, id uuid.UUID) (*GenerationRecord, error) {
	var rec GenerationRecord
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&rec).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGenerationNotFound
		}
		s.logger.Error(ctx, "failed to get generation by ID", map[string]interface{}{
			"error":         err.Error(),
			"generation_id": id.String(),
		})
		return nil, err
	}

	return &rec, nil
}

// List retrieves records ordered by creation time, newest first.
func (s *MySQLStore) List(ctx context.Context, limit, offset int) ([]*GenerationRecord, error) {
	var recs []*GenerationRecord
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&recs).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list generations", map[string]interface{}{
			"error":  err.Error(),
			"limit":  limit,
			"offset": offset,
		})
		return nil, err
	}

	return recs, nil
}

// Count returns the number of stored records.
func (s *MySQLStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&GenerationRecord{}).Count(&count).Error; err != nil {
		s.logger.Error(ctx, "failed to count generations", map[string]interface{}{
			"error": err.Error(),
		})
		return 0, err
	}
	return count, nil
}

// Update merges the column maps of all setters into a single UPDATE.
func (s *MySQLStore) Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error {
	columns := make(map[string]interface{})
	for _, setter := range setters {
		for k, v := range setter() {
			columns[k] = v
		}
	}
	if len(columns) == 0 {
		return nil
	}

	result := s.db.WithContext(ctx).
		Model(&GenerationRecord{}).
		Where("id = ?", id).
		Updates(columns)

	if result.Error != nil {
		s.logger.Error(ctx, "failed to update generation", map[string]interface{}{
			"error":         result.Error.Error(),
			"generation_id": id.String(),
		})
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrGenerationNotFound
	}

	s.logger.Info(ctx, "generation updated", map[string]interface{}{
		"generation_id": id.String(),
	})

	return nil
}

// Delete deletes a record by its ID.
func (s *MySQLStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&GenerationRecord{})

	if result.Error != nil {
		s.logger.Error(ctx, "failed to delete generation", map[string]interface{}{
			"error":         result.Error.Error(),
			"generation_id": id.String(),
		})
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrGenerationNotFound
	}

	s.logger.Info(ctx, "generation deleted", map[string]interface{}{
		"generation_id": id.String(),
	})

	return nil
}
