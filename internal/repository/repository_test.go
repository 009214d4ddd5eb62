package repository

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"timesheet-consolidator/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newTestLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testShift(name string, day time.Time, overtime string, anomaly models.Anomaly) *models.ConsolidatedShift {
	ot := decimal.RequireFromString(overtime)
	total := decimal.NewFromInt(9).Add(ot)
	return &models.ConsolidatedShift{
		EmployeeName:  name,
		ShiftDate:     day,
		StartTime:     models.NewClock(8, 0, 0),
		EndTime:       models.NewClock(17, 0, 0),
		ShiftType:     models.DayShift,
		TotalHours:    total,
		RegularHours:  decimal.NewFromInt(9),
		OvertimeHours: ot,
		EntryCount:    2,
		Anomaly:       anomaly,
	}
}

func testRun(started time.Time) *models.ProcessingRun {
	return &models.ProcessingRun{
		ID:                 uuid.NewString(),
		SourceFile:         "attendance.xlsx",
		StartedAt:          started,
		FinishedAt:         started.Add(time.Second),
		TotalHours:         decimal.Zero,
		TotalOvertimeHours: decimal.Zero,
	}
}

func summaryOf(name string, year, month int, shifts ...*models.ConsolidatedShift) *models.MonthlyOvertimeSummary {
	m := &models.MonthlyOvertimeSummary{
		EmployeeName:       name,
		Year:               year,
		Month:              month,
		TotalHours:         decimal.Zero,
		TotalOvertimeHours: decimal.Zero,
	}
	for _, s := range shifts {
		m.Add(s)
	}
	return m
}

func TestRunRepository_SaveAndQuery(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger()
	runs, err := NewGormRunRepository(db, log)
	require.NoError(t, err)
	shiftRepo, err := NewGormShiftRepository(db, log)
	require.NoError(t, err)
	monthly, err := NewGormMonthlyOvertimeRepository(db, log)
	require.NoError(t, err)

	a := testShift("Somchai", date(2025, 8, 4), "1.5", models.AnomalyNone)
	b := testShift("Somchai", date(2025, 8, 5), "0", models.AnomalyMissingCheckOut)
	c := testShift("Somchai", date(2025, 9, 1), "0.5", models.AnomalyNone)
	d := testShift("Malee", date(2025, 8, 4), "0", models.AnomalyNone)
	shifts := []*models.ConsolidatedShift{a, b, c, d}
	summaries := []*models.MonthlyOvertimeSummary{
		summaryOf("Malee", 2025, 8, d),
		summaryOf("Somchai", 2025, 8, a, b),
		summaryOf("Somchai", 2025, 9, c),
	}
	run := testRun(time.Now().Add(-time.Hour))
	run.Tally(shifts)

	require.NoError(t, runs.Save(run, shifts, summaries))
	assert.Equal(t, run.ID, a.RunID)

	stored, err := runs.GetByID(run.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 4, stored.Shifts)
	assert.Equal(t, "2.00", stored.TotalOvertimeHours.StringFixed(2))

	all, err := shiftRepo.GetByRun(run.ID)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "Malee", all[0].EmployeeName)
	assert.Equal(t, models.NewClock(17, 0, 0), all[1].EndTime)

	aug, err := shiftRepo.GetByRunEmployeeAndMonth(run.ID, "Somchai", 2025, 8)
	require.NoError(t, err)
	require.Len(t, aug, 2)
	assert.True(t, aug[0].ShiftDate.Equal(date(2025, 8, 4)))

	anomalies, err := shiftRepo.GetAnomaliesByRun(run.ID)
	require.NoError(t, err)
	require.Len(t, anomalies, 1)
	assert.Equal(t, models.AnomalyMissingCheckOut, anomalies[0].Anomaly)

	count, err := shiftRepo.CountByRun(run.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, count)

	latest, err := monthly.GetLatest("Somchai", 2025, 8)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 1, latest.OvertimeDays)
	assert.Equal(t, "1.50", latest.TotalOvertimeHours.StringFixed(2))

	byMonth, err := monthly.GetByMonth(run.ID, 2025, 8)
	require.NoError(t, err)
	require.Len(t, byMonth, 2)
	assert.Equal(t, "Somchai", byMonth[0].EmployeeName)

	byRun, err := monthly.GetByRun(run.ID)
	require.NoError(t, err)
	assert.Len(t, byRun, 3)
}

func TestRunRepository_LatestRunWins(t *testing.T) {
	db := newTestDB(t)
	runs, err := NewGormRunRepository(db, newTestLogger())
	require.NoError(t, err)
	monthly, err := NewGormMonthlyOvertimeRepository(db, newTestLogger())
	require.NoError(t, err)

	first := testShift("Somchai", date(2025, 8, 4), "0.5", models.AnomalyNone)
	require.NoError(t, runs.Save(testRun(time.Now().Add(-2*time.Hour)), []*models.ConsolidatedShift{first},
		[]*models.MonthlyOvertimeSummary{summaryOf("Somchai", 2025, 8, first)}))

	second := testShift("Somchai", date(2025, 8, 4), "1", models.AnomalyNone)
	require.NoError(t, runs.Save(testRun(time.Now().Add(-time.Hour)), []*models.ConsolidatedShift{second},
		[]*models.MonthlyOvertimeSummary{summaryOf("Somchai", 2025, 8, second)}))

	latest, err := monthly.GetLatest("Somchai", 2025, 8)
	require.NoError(t, err)
	assert.Equal(t, "1.00", latest.TotalOvertimeHours.StringFixed(2))

	recent, err := runs.GetRecent(1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, second.RunID, recent[0].ID)

	missing, err := monthly.GetLatest("Nobody", 2025, 8)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRunRepository_RejectsInvalidRecords(t *testing.T) {
	runs, err := NewGormRunRepository(newTestDB(t), newTestLogger())
	require.NoError(t, err)

	bad := testShift("Somchai", date(2025, 8, 4), "0", models.AnomalyNone)
	bad.OvertimeHours = decimal.NewFromInt(20)

	err = runs.Save(testRun(time.Now()), []*models.ConsolidatedShift{bad}, nil)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	err = runs.Save(&models.ProcessingRun{}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestRunRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	runs, err := NewGormRunRepository(db, newTestLogger())
	require.NoError(t, err)
	shiftRepo, err := NewGormShiftRepository(db, newTestLogger())
	require.NoError(t, err)

	run := testRun(time.Now())
	require.NoError(t, runs.Save(run, []*models.ConsolidatedShift{testShift("Somchai", date(2025, 8, 4), "0", models.AnomalyNone)}, nil))

	require.NoError(t, runs.Delete(run.ID))

	gone, err := runs.GetByID(run.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	count, err := shiftRepo.CountByRun(run.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNonWorkingDayRepository(t *testing.T) {
	repo, err := NewGormNonWorkingDayRepository(newTestDB(t), newTestLogger())
	require.NoError(t, err)

	days := []models.NonWorkingDay{
		models.NewNonWorkingDay(date(2025, 8, 2), models.DayOffRegular),
		models.NewNonWorkingDay(date(2025, 8, 3), models.DayOffRegular),
		models.NewNonWorkingDay(date(2025, 8, 11), models.DayOffTransferred),
	}
	require.NoError(t, repo.ReplaceYear(2025, days))
	// replacing twice must not duplicate the unique dates
	require.NoError(t, repo.ReplaceYear(2025, days))

	between, err := repo.GetBetween(time.Date(2025, 8, 1, 14, 30, 0, 0, time.UTC), date(2025, 8, 10))
	require.NoError(t, err)
	require.Len(t, between, 2)
	assert.True(t, between[0].Date.Equal(date(2025, 8, 2)))

	none, err := repo.GetBetween(date(2025, 8, 4), date(2025, 8, 10))
	require.NoError(t, err)
	assert.Empty(t, none)

	month, err := repo.GetByYearMonth(2025, 8)
	require.NoError(t, err)
	require.Len(t, month, 3)
	assert.Equal(t, models.DayOffTransferred, month[2].Kind)
}
