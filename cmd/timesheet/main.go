package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"timesheet-consolidator/internal/config"
	"timesheet-consolidator/internal/repository"
	"timesheet-consolidator/internal/service"
	"timesheet-consolidator/internal/shift"
)

const appVersion = "0.3.0"

// app holds the dependencies shared by every command. The database is
// opened on first use.
type app struct {
	envFile   string
	rulesFile string
	workers   int

	cfg    *config.Config
	logger *logrus.Logger
	rules  config.Rules

	db          *gorm.DB
	runRepo     *repository.GormRunRepository
	shiftRepo   *repository.GormShiftRepository
	monthlyRepo *repository.GormMonthlyOvertimeRepository
	dayRepo     *repository.GormNonWorkingDayRepository
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	root := &cobra.Command{
		Use:           "timesheet",
		Short:         "Consolidate attendance swipes into shifts with overtime",
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	root.SetVersionTemplate("timesheet v{{.Version}}\n")

	root.PersistentFlags().StringVar(&a.envFile, "env", ".env", "Env file to load before reading the environment")
	root.PersistentFlags().StringVar(&a.rulesFile, "rules", "", "JSON rules document (overrides RULES_FILE)")
	root.PersistentFlags().IntVar(&a.workers, "workers", 0, "Employees consolidated in parallel (overrides WORKERS)")

	root.AddCommand(
		newProcessCmd(a),
		newRulesCmd(a),
		newRunsCmd(a),
		newSummaryCmd(a),
		newCalendarCmd(a),
		newBotCmd(a),
	)

	if err := root.ExecuteContext(ctx); err != nil {
		if a.logger != nil {
			a.logger.WithError(err).Error("Command failed")
		} else {
			logrus.WithError(err).Error("Command failed")
		}
		os.Exit(1)
	}
}

func (a *app) init() error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	if a.rulesFile != "" {
		cfg.RulesFile = a.rulesFile
	}
	if a.workers > 0 {
		cfg.Workers = a.workers
	}
	a.cfg = cfg
	a.logger = cfg.NewLogger()

	rules, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		return err
	}
	a.rules = rules

	a.logger.WithFields(logrus.Fields{
		"database": cfg.DatabaseURL,
		"rules":    cfg.RulesFile,
		"workers":  cfg.Workers,
	}).Debug("Config initialized")
	return nil
}

// openDB connects to SQLite and builds the repositories.
func (a *app) openDB() error {
	if a.db != nil {
		return nil
	}

	gormLogger := logger.Default.LogMode(logger.Silent)
	if a.logger.IsLevelEnabled(logrus.DebugLevel) {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(sqlite.Open(a.cfg.DatabaseURL), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger,
	})
	if err != nil {
		a.logger.WithError(err).Error("Failed to connect to database")
		return err
	}
	a.db = db

	if a.runRepo, err = repository.NewGormRunRepository(db, a.logger); err != nil {
		return err
	}
	if a.shiftRepo, err = repository.NewGormShiftRepository(db, a.logger); err != nil {
		return err
	}
	if a.monthlyRepo, err = repository.NewGormMonthlyOvertimeRepository(db, a.logger); err != nil {
		return err
	}
	if a.dayRepo, err = repository.NewGormNonWorkingDayRepository(db, a.logger); err != nil {
		return err
	}
	return nil
}

func (a *app) close() {
	if a.db == nil {
		return
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		a.logger.WithError(err).Warn("Error closing database")
	}
}

func (a *app) options() shift.Options {
	return shift.Options{Workers: a.cfg.Workers, SampleLimit: a.cfg.SampleLimit}
}

func (a *app) calendarService() *service.CalendarService {
	return service.NewCalendarService(a.dayRepo, a.logger)
}

func (a *app) summaryService() *service.SummaryService {
	return service.NewSummaryService(a.runRepo, a.shiftRepo, a.monthlyRepo, a.logger)
}

func (a *app) timesheetService(notifier service.Notifier) *service.TimesheetService {
	return service.NewTimesheetService(a.rules, a.options(), a.runRepo, a.calendarService(), notifier, a.logger)
}
