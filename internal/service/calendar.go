package service

import (
	"time"

	"github.com/sirupsen/logrus"

	"timesheet-consolidator/internal/models"
	"timesheet-consolidator/internal/repository"
	"timesheet-consolidator/pkg/weekends"
)

type CalendarService struct {
	repo   repository.NonWorkingDayRepository
	logger *logrus.Logger
}

func NewCalendarService(repo repository.NonWorkingDayRepository, logger *logrus.Logger) *CalendarService {
	return &CalendarService{repo: repo, logger: logger}
}

// Import loads a production calendar file and replaces that year in the
// database. It returns the number of days off stored.
func (s *CalendarService) Import(path string) (int, error) {
	year, daysOff, err := weekends.ParseFile(path)
	if err != nil {
		s.logger.WithError(err).WithField("file", path).Error("Failed to parse calendar")
		return 0, err
	}

	days := make([]models.NonWorkingDay, 0, len(daysOff))
	for _, d := range daysOff {
		kind := models.DayOffRegular
		if d.Transferred {
			kind = models.DayOffTransferred
		}
		days = append(days, models.NewNonWorkingDay(d.Date, kind))
	}

	if err := s.repo.ReplaceYear(year, days); err != nil {
		return 0, err
	}

	s.logger.WithFields(logrus.Fields{
		"file": path,
		"year": year,
		"days": len(days),
	}).Info("Calendar imported")

	return len(days), nil
}

// MarkRestDays flags every shift that falls on a stored day off and returns
// how many were flagged.
func (s *CalendarService) MarkRestDays(shifts []*models.ConsolidatedShift) (int, error) {
	if len(shifts) == 0 {
		return 0, nil
	}

	from, to := shifts[0].ShiftDate, shifts[0].ShiftDate
	for _, sh := range shifts {
		if sh.ShiftDate.Before(from) {
			from = sh.ShiftDate
		}
		if sh.ShiftDate.After(to) {
			to = sh.ShiftDate
		}
	}

	days, err := s.repo.GetBetween(from, to)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load non-working days")
		return 0, err
	}

	off := make(map[time.Time]bool, len(days))
	for _, d := range days {
		off[models.DayOf(d.Date)] = true
	}

	marked := 0
	for _, sh := range shifts {
		sh.RestDay = off[models.DayOf(sh.ShiftDate)]
		if sh.RestDay {
			marked++
		}
	}
	return marked, nil
}

// DaysOff lists the stored days off of one month.
func (s *CalendarService) DaysOff(year, month int) ([]models.NonWorkingDay, error) {
	return s.repo.GetByYearMonth(year, month)
}
