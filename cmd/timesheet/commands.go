package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"timesheet-consolidator/internal/handler"
	"timesheet-consolidator/internal/models"
	"timesheet-consolidator/internal/service"
	"timesheet-consolidator/internal/shift"
	"timesheet-consolidator/pkg/telegram"
)

func newProcessCmd(a *app) *cobra.Command {
	var (
		xlsxOut string
		csvOut  string
		persist bool
		notify  bool
	)

	cmd := &cobra.Command{
		Use:   "process FILE",
		Short: "Consolidate an attendance export (.xlsx, .xls or .csv)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.openDB(); err != nil {
				return err
			}

			var notifier service.Notifier
			if notify {
				if !a.cfg.NotificationsEnabled() {
					return fmt.Errorf("--notify needs TELEGRAM_BOT_TOKEN and ADMIN_CHAT_ID")
				}
				client, err := telegram.NewClient(a.cfg.TelegramToken, false)
				if err != nil {
					return fmt.Errorf("failed to create Telegram client: %w", err)
				}
				notifier = telegram.NewNotifier(client, a.cfg.AdminChatID)
			}

			svc := a.timesheetService(notifier)
			result, err := svc.ProcessFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if xlsxOut != "" {
				if err := writeOutput(xlsxOut, result.Export().WriteXLSX); err != nil {
					return err
				}
				a.logger.WithField("file", xlsxOut).Info("Workbook written")
			}
			if csvOut != "" {
				if err := writeOutput(csvOut, result.Export().WriteCSV); err != nil {
					return err
				}
				a.logger.WithField("file", csvOut).Info("CSV written")
			}
			if xlsxOut == "" && csvOut == "" {
				printSummaries(cmd, result)
			}

			if persist {
				if err := svc.Save(result); err != nil {
					return err
				}
			}
			if notify {
				if err := svc.Notify(result); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&xlsxOut, "out", "o", "", "Write the consolidated workbook to this .xlsx file")
	cmd.Flags().StringVar(&csvOut, "csv", "", "Write the consolidated shifts to this .csv file")
	cmd.Flags().BoolVar(&persist, "persist", false, "Store the run in the database")
	cmd.Flags().BoolVar(&notify, "notify", false, "Send the run digest to the admin Telegram chat")
	return cmd
}

func writeOutput(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := write(w); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func printSummaries(cmd *cobra.Command, result *service.Result) {
	out := cmd.OutOrStdout()
	for _, m := range result.Summaries {
		fmt.Fprintf(out, "%-30s %s  %s\n", m.EmployeeName, m.Label(), shift.SummaryLine(m))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, service.FormatRunDigest(result.Run, result.Report))
}

func newRulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the effective rules document as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.rules.MarshalJSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newRunsCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.openDB(); err != nil {
				return err
			}
			runs, err := a.summaryService().RecentRuns(limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), service.FormatRunList(runs))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to list")

	cmd.AddCommand(&cobra.Command{
		Use:   "rm ID",
		Short: "Delete a stored run with its shifts and summaries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.openDB(); err != nil {
				return err
			}
			run, err := a.runRepo.GetByID(args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %s not found", args[0])
			}
			return a.runRepo.Delete(run.ID)
		},
	})
	return cmd
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary NAME MM/YYYY",
		Short: "Show the stored monthly overtime of one employee",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := service.ParseMonth(args[len(args)-1])
			if err != nil {
				return err
			}
			name := strings.Join(args[:len(args)-1], " ")

			if err := a.openDB(); err != nil {
				return err
			}
			summary, shifts, err := a.summaryService().EmployeeMonth(name, year, month)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), service.FormatEmployeeMonth(summary, shifts))
			return nil
		},
	}
}

func newCalendarCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Manage the non-working day calendar",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import [FILE]",
		Short: "Import a production calendar JSON file (defaults to CALENDAR_FILE)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.CalendarFile
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no calendar file given and CALENDAR_FILE is empty")
			}

			if err := a.openDB(); err != nil {
				return err
			}
			n, err := a.calendarService().Import(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d days off imported\n", n)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show MM/YYYY",
		Short: "List the stored days off of a month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := service.ParseMonth(args[0])
			if err != nil {
				return err
			}
			if err := a.openDB(); err != nil {
				return err
			}
			days, err := a.calendarService().DaysOff(year, month)
			if err != nil {
				return err
			}
			for _, d := range days {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", d.Date.Format(models.DateLayout), d.Kind)
			}
			return nil
		},
	})
	return cmd
}

func newBotCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot that accepts attendance files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.TelegramToken == "" {
				return fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
			}
			if err := a.openDB(); err != nil {
				return err
			}

			client, err := telegram.NewClient(a.cfg.TelegramToken, a.logger.IsLevelEnabled(logrus.DebugLevel))
			if err != nil {
				return fmt.Errorf("failed to create Telegram client: %w", err)
			}
			a.logger.Infof("Authorized on account %s", client.Bot.Self.UserName)

			// digests go back to the chat that uploaded the file
			botHandler := handler.NewHandler(
				client,
				a.timesheetService(nil),
				a.summaryService(),
				a.calendarService(),
				a.cfg,
				a.logger,
			)

			updates := client.Bot.GetUpdatesChan(client.UpdateConfig)
			a.logger.Info("Bot started. Press Ctrl+C to stop.")

			botHandler.HandleUpdates(cmd.Context(), updates)

			client.Bot.StopReceivingUpdates()
			a.logger.Info("Bot stopped gracefully")
			return nil
		},
	}
}
