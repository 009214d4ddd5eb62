package repository

import (
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"timesheet-consolidator/internal/models"
)

const insertBatchSize = 200

var ErrInvalidRecord = errors.New("invalid record")

type RunRepository interface {
	Save(run *models.ProcessingRun, shifts []*models.ConsolidatedShift, summaries []*models.MonthlyOvertimeSummary) error
	GetByID(id string) (*models.ProcessingRun, error)
	GetRecent(limit int) ([]*models.ProcessingRun, error)
	Delete(id string) error
}

type GormRunRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormRunRepository(db *gorm.DB, logger *logrus.Logger) (*GormRunRepository, error) {
	if err := db.AutoMigrate(&models.ProcessingRun{}, &models.ConsolidatedShift{}, &models.MonthlyOvertimeSummary{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate run tables")
		return nil, err
	}

	logger.Debug("Run repository initialized")

	return &GormRunRepository{
		db:     db,
		logger: logger,
	}, nil
}

// Save stores a run together with its shifts and monthly summaries in one
// transaction. Every child record is stamped with the run ID.
func (r *GormRunRepository) Save(run *models.ProcessingRun, shifts []*models.ConsolidatedShift, summaries []*models.MonthlyOvertimeSummary) error {
	log := r.logger.WithFields(logrus.Fields{
		"run_id":    run.ID,
		"shifts":    len(shifts),
		"summaries": len(summaries),
	})

	if run.ID == "" {
		log.Warn("Run has no ID")
		return ErrInvalidRecord
	}
	for _, s := range shifts {
		if !s.IsValid() {
			log.WithField("shift", s.Period()).Warn("Invalid consolidated shift")
			return ErrInvalidRecord
		}
		s.RunID = run.ID
	}
	for _, m := range summaries {
		if !m.IsValid() {
			log.WithField("month", m.Label()).Warn("Invalid monthly summary")
			return ErrInvalidRecord
		}
		m.RunID = run.ID
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return err
		}
		if len(shifts) > 0 {
			if err := tx.CreateInBatches(shifts, insertBatchSize).Error; err != nil {
				return err
			}
		}
		if len(summaries) > 0 {
			if err := tx.CreateInBatches(summaries, insertBatchSize).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Failed to save processing run")
		return err
	}

	log.Info("Processing run saved")
	return nil
}

func (r *GormRunRepository) GetByID(id string) (*models.ProcessingRun, error) {
	var run models.ProcessingRun
	result := r.db.Where("id = ?", id).First(&run)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		r.logger.WithField("run_id", id).Debug("Processing run not found")
		return nil, nil
	}
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get processing run")
		return nil, result.Error
	}

	return &run, nil
}

func (r *GormRunRepository) GetRecent(limit int) ([]*models.ProcessingRun, error) {
	var runs []*models.ProcessingRun

	query := r.db.Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&runs).Error; err != nil {
		r.logger.WithError(err).Error("Failed to list processing runs")
		return nil, err
	}

	return runs, nil
}

// Delete removes a run and everything recorded under it.
func (r *GormRunRepository) Delete(id string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_id = ?", id).Delete(&models.ConsolidatedShift{}).Error; err != nil {
			return err
		}
		if err := tx.Where("run_id = ?", id).Delete(&models.MonthlyOvertimeSummary{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.ProcessingRun{}).Error
	})
	if err != nil {
		r.logger.WithError(err).WithField("run_id", id).Error("Failed to delete processing run")
		return err
	}

	r.logger.WithField("run_id", id).Info("Processing run deleted")
	return nil
}
