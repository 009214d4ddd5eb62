package repository

import (
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"timesheet-consolidator/internal/models"
)

type MonthlyOvertimeRepository interface {
	GetLatest(name string, year, month int) (*models.MonthlyOvertimeSummary, error)
	GetByRun(runID string) ([]*models.MonthlyOvertimeSummary, error)
	GetByMonth(runID string, year, month int) ([]*models.MonthlyOvertimeSummary, error)
}

type GormMonthlyOvertimeRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormMonthlyOvertimeRepository(db *gorm.DB, logger *logrus.Logger) (*GormMonthlyOvertimeRepository, error) {
	if err := db.AutoMigrate(&models.MonthlyOvertimeSummary{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate monthly_overtime_summaries table")
		return nil, err
	}

	logger.Debug("Monthly overtime repository initialized")

	return &GormMonthlyOvertimeRepository{
		db:     db,
		logger: logger,
	}, nil
}

// GetLatest returns the summary from the most recent run that covered the
// employee and month, or nil when no run did.
func (r *GormMonthlyOvertimeRepository) GetLatest(name string, year, month int) (*models.MonthlyOvertimeSummary, error) {
	var summary models.MonthlyOvertimeSummary
	result := r.db.Where("employee_name = ? AND year = ? AND month = ?", name, year, month).
		Order("created_at DESC, id DESC").
		First(&summary)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		r.logger.WithFields(logrus.Fields{
			"employee": name,
			"year":     year,
			"month":    month,
		}).Debug("Monthly overtime summary not found")
		return nil, nil
	}
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get monthly overtime summary")
		return nil, result.Error
	}

	return &summary, nil
}

func (r *GormMonthlyOvertimeRepository) GetByRun(runID string) ([]*models.MonthlyOvertimeSummary, error) {
	var summaries []*models.MonthlyOvertimeSummary

	result := r.db.Where("run_id = ?", runID).
		Order("employee_name ASC, year ASC, month ASC").
		Find(&summaries)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get monthly summaries by run")
		return nil, result.Error
	}

	return summaries, nil
}

func (r *GormMonthlyOvertimeRepository) GetByMonth(runID string, year, month int) ([]*models.MonthlyOvertimeSummary, error) {
	var summaries []*models.MonthlyOvertimeSummary

	result := r.db.Where("run_id = ? AND year = ? AND month = ?", runID, year, month).
		Order("total_overtime_hours DESC, employee_name ASC").
		Find(&summaries)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get monthly summaries by month")
		return nil, result.Error
	}

	r.logger.WithFields(logrus.Fields{
		"run_id": runID,
		"year":   year,
		"month":  month,
		"count":  len(summaries),
	}).Debug("Retrieved monthly summaries")

	return summaries, nil
}
