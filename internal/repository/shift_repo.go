package repository

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"timesheet-consolidator/internal/models"
)

type ShiftRepository interface {
	GetByRun(runID string) ([]*models.ConsolidatedShift, error)
	GetByRunEmployeeAndMonth(runID, name string, year, month int) ([]*models.ConsolidatedShift, error)
	GetAnomaliesByRun(runID string) ([]*models.ConsolidatedShift, error)
	CountByRun(runID string) (int64, error)
}

type GormShiftRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormShiftRepository(db *gorm.DB, logger *logrus.Logger) (*GormShiftRepository, error) {
	if err := db.AutoMigrate(&models.ConsolidatedShift{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate consolidated_shifts table")
		return nil, err
	}

	logger.Debug("Shift repository initialized")

	return &GormShiftRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *GormShiftRepository) GetByRun(runID string) ([]*models.ConsolidatedShift, error) {
	var shifts []*models.ConsolidatedShift

	result := r.db.Where("run_id = ?", runID).
		Order("employee_name ASC, shift_date ASC").
		Find(&shifts)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get shifts by run")
		return nil, result.Error
	}

	r.logger.WithFields(logrus.Fields{
		"run_id": runID,
		"count":  len(shifts),
	}).Debug("Retrieved shifts by run")

	return shifts, nil
}

func (r *GormShiftRepository) GetByRunEmployeeAndMonth(runID, name string, year, month int) ([]*models.ConsolidatedShift, error) {
	var shifts []*models.ConsolidatedShift

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	result := r.db.Where("run_id = ? AND employee_name = ? AND shift_date >= ? AND shift_date < ?", runID, name, from, to).
		Order("shift_date ASC").
		Find(&shifts)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get shifts by employee and month")
		return nil, result.Error
	}

	r.logger.WithFields(logrus.Fields{
		"run_id":   runID,
		"employee": name,
		"year":     year,
		"month":    month,
		"count":    len(shifts),
	}).Debug("Retrieved shifts by employee and month")

	return shifts, nil
}

// GetAnomaliesByRun returns the estimated records of a run.
func (r *GormShiftRepository) GetAnomaliesByRun(runID string) ([]*models.ConsolidatedShift, error) {
	var shifts []*models.ConsolidatedShift

	result := r.db.Where("run_id = ? AND anomaly <> ?", runID, models.AnomalyNone).
		Order("employee_name ASC, shift_date ASC").
		Find(&shifts)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get anomalies by run")
		return nil, result.Error
	}

	return shifts, nil
}

func (r *GormShiftRepository) CountByRun(runID string) (int64, error) {
	var count int64
	result := r.db.Model(&models.ConsolidatedShift{}).Where("run_id = ?", runID).Count(&count)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to count shifts")
		return 0, result.Error
	}
	return count, nil
}
