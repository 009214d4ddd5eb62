package repository

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"timesheet-consolidator/internal/models"
)

type NonWorkingDayRepository interface {
	ReplaceYear(year int, days []models.NonWorkingDay) error
	GetBetween(from, to time.Time) ([]models.NonWorkingDay, error)
	GetByYearMonth(year, month int) ([]models.NonWorkingDay, error)
}

type GormNonWorkingDayRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormNonWorkingDayRepository(db *gorm.DB, logger *logrus.Logger) (*GormNonWorkingDayRepository, error) {
	if err := db.AutoMigrate(&models.NonWorkingDay{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate non_working_days table")
		return nil, err
	}

	return &GormNonWorkingDayRepository{db: db, logger: logger}, nil
}

// ReplaceYear swaps the stored calendar of one year for days.
func (r *GormNonWorkingDayRepository) ReplaceYear(year int, days []models.NonWorkingDay) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("year = ?", year).Delete(&models.NonWorkingDay{}).Error; err != nil {
			return err
		}
		if len(days) == 0 {
			return nil
		}
		return tx.CreateInBatches(days, insertBatchSize).Error
	})
	if err != nil {
		r.logger.WithError(err).WithField("year", year).Error("Failed to replace calendar year")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"year": year,
		"days": len(days),
	}).Info("Calendar year stored")
	return nil
}

// GetBetween returns the days off in [from, to].
func (r *GormNonWorkingDayRepository) GetBetween(from, to time.Time) ([]models.NonWorkingDay, error) {
	var days []models.NonWorkingDay
	err := r.db.Where("date >= ? AND date <= ?", models.DayOf(from), models.DayOf(to)).
		Order("date ASC").
		Find(&days).Error
	return days, err
}

func (r *GormNonWorkingDayRepository) GetByYearMonth(year, month int) ([]models.NonWorkingDay, error) {
	var days []models.NonWorkingDay
	err := r.db.Where("year = ? AND month = ?", year, month).Order("day ASC").Find(&days).Error
	return days, err
}
