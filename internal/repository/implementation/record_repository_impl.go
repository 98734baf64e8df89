package implementation

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"clinic-erp-be/internal/pkg/apperrors"
	"clinic-erp-be/internal/record"
	"clinic-erp-be/internal/repository/contract"
	"clinic-erp-be/internal/repository/specification"
)

type RecordRepositoryImpl struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) contract.RecordRepository {
	return &RecordRepositoryImpl{db: db}
}

func (r *RecordRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *RecordRepositoryImpl) Insert(ctx context.Context, rec *record.Record) error {
	m := rec.Model()
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperrors.TranslateDBError(m.TableName(), err)
	}
	return nil
}

func (r *RecordRepositoryImpl) Save(ctx context.Context, rec *record.Record) error {
	m := rec.Model()
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return apperrors.TranslateDBError(m.TableName(), err)
	}
	return nil
}

func (r *RecordRepositoryImpl) FindOne(ctx context.Context, proto record.Model, specs ...specification.Specification) (*record.Record, error) {
	rec := record.New(proto)
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(rec.Model()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.TranslateDBError(proto.TableName(), err)
	}
	return rec, nil
}

func (r *RecordRepositoryImpl) HardDelete(ctx context.Context, rec *record.Record) error {
	m := rec.Model()
	if err := r.db.WithContext(ctx).Delete(m).Error; err != nil {
		return apperrors.TranslateDBError(m.TableName(), err)
	}
	return nil
}
