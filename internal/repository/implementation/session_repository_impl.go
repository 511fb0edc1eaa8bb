package implementation

import (
	"context"
	"time"

	"temple-sessions-be/internal/entity"
	"temple-sessions-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionRepositoryImpl struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) contract.SessionRepository {
	return &SessionRepositoryImpl{db: db}
}

func (r *SessionRepositoryImpl) Create(ctx context.Context, record *entity.SessionRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *SessionRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.SessionRecord, error) {
	var record entity.SessionRecord
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *SessionRepositoryImpl) FindUpcomingByExercise(ctx context.Context, exerciseId string, after time.Time) ([]*entity.SessionRecord, error) {
	var records []*entity.SessionRecord
	err := r.db.WithContext(ctx).
		Where("exercise_id = ? AND start_time > ?", exerciseId, after).
		Order("start_time ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *SessionRepositoryImpl) MarkStarted(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entity.SessionRecord{}).
		Where("id = ?", id).
		Update("started", true).Error
}
