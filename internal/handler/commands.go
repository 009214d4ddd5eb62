package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"timesheet-consolidator/internal/models"
	"timesheet-consolidator/internal/service"
)

const defaultRunListSize = 10

// respond returns the reply to a bot command.
func (h *Handler) respond(command, args string) string {
	args = strings.TrimSpace(args)

	switch command {
	case "start":
		return startText
	case "help":
		return helpText
	case "runs":
		return h.listRuns(args)
	case "summary":
		return h.employeeSummary(args)
	case "overtime":
		return h.monthOvertime(args)
	case "anomalies":
		return h.lastRunAnomalies()
	case "calendar":
		return h.monthCalendar(args)
	default:
		return "❌ Unknown command. Use /help for the list of commands."
	}
}

const startText = `👋 Attendance consolidation bot.

Send an attendance export (.xlsx, .xls or .csv) and you get back the consolidated shifts with overtime per employee and month.

Use /help for the list of commands.`

const helpText = `📋 Commands:

/runs [N] - last N processed files (default 10)
/summary <name> <MM/YYYY> - monthly overtime of one employee
/overtime <MM/YYYY> - overtime ranking from the latest file
/anomalies - estimated shifts from the latest file
/calendar <MM/YYYY> - days off stored for a month

Any attendance file sent to this chat is processed and stored.`

func (h *Handler) listRuns(args string) string {
	limit := defaultRunListSize
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n < 1 {
			return "❌ Invalid number.\nExample: /runs 5"
		}
		limit = n
	}

	runs, err := h.summaryService.RecentRuns(limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get recent runs")
		return "❌ Failed to load runs: " + err.Error()
	}
	return service.FormatRunList(runs)
}

// employeeSummary expects "<name> <MM/YYYY>"; the name may contain spaces.
func (h *Handler) employeeSummary(args string) string {
	i := strings.LastIndex(args, " ")
	if i < 0 {
		return "❌ Invalid format.\nExample: /summary Somchai Jaidee 08/2025"
	}
	name, monthArg := strings.TrimSpace(args[:i]), args[i+1:]

	year, month, err := service.ParseMonth(monthArg)
	if err != nil {
		return "❌ " + err.Error() + "\nExample: /summary Somchai Jaidee 08/2025"
	}

	summary, shifts, err := h.summaryService.EmployeeMonth(name, year, month)
	if err != nil {
		h.logger.WithError(err).WithField("employee", name).Error("Failed to get employee summary")
		return "❌ Failed to load summary: " + err.Error()
	}
	if summary == nil {
		return fmt.Sprintf("No data for %s in %02d/%d", name, month, year)
	}
	return service.FormatEmployeeMonth(summary, shifts)
}

func (h *Handler) monthOvertime(args string) string {
	year, month, err := service.ParseMonth(args)
	if err != nil {
		return "❌ " + err.Error() + "\nExample: /overtime 08/2025"
	}

	run, err := h.latestRun()
	if err != nil || run == nil {
		return noRunsReply(err)
	}

	summaries, err := h.summaryService.RunOvertime(run.ID, year, month)
	if err != nil {
		return "❌ Failed to load overtime: " + err.Error()
	}
	return service.FormatOvertimeRanking(year, month, summaries)
}

func (h *Handler) lastRunAnomalies() string {
	run, err := h.latestRun()
	if err != nil || run == nil {
		return noRunsReply(err)
	}

	shifts, err := h.summaryService.RunAnomalies(run.ID)
	if err != nil {
		return "❌ Failed to load anomalies: " + err.Error()
	}
	return service.FormatAnomalies(shifts)
}

func (h *Handler) monthCalendar(args string) string {
	year, month, err := service.ParseMonth(args)
	if err != nil {
		return "❌ " + err.Error() + "\nExample: /calendar 08/2025"
	}

	days, err := h.calendarService.DaysOff(year, month)
	if err != nil {
		return "❌ Failed to load calendar: " + err.Error()
	}
	return formatDaysOff(year, month, days)
}

func (h *Handler) latestRun() (*models.ProcessingRun, error) {
	runs, err := h.summaryService.RecentRuns(1)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return runs[0], nil
}

func noRunsReply(err error) string {
	if err != nil {
		return "❌ Failed to load runs: " + err.Error()
	}
	return "No runs yet"
}

func formatDaysOff(year, month int, days []models.NonWorkingDay) string {
	if len(days) == 0 {
		return fmt.Sprintf("No days off stored for %s %d", time.Month(month), year)
	}

	parts := make([]string, 0, len(days))
	for _, d := range days {
		s := strconv.Itoa(d.Day)
		if d.Kind == models.DayOffTransferred {
			s += "+"
		}
		parts = append(parts, s)
	}
	return fmt.Sprintf("📅 Days off in %s %d: %s", time.Month(month), year, strings.Join(parts, ", "))
}
