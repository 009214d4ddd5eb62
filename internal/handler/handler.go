package handler

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"timesheet-consolidator/internal/config"
	"timesheet-consolidator/internal/service"
	"timesheet-consolidator/internal/sheet"
	"timesheet-consolidator/pkg/telegram"
)

// Attendance exports larger than this are refused before download.
const maxUploadSize = 20 << 20

type Handler struct {
	client           *telegram.Client
	timesheetService *service.TimesheetService
	summaryService   *service.SummaryService
	calendarService  *service.CalendarService
	config           *config.Config
	logger           *logrus.Logger
}

func NewHandler(
	client *telegram.Client,
	timesheetService *service.TimesheetService,
	summaryService *service.SummaryService,
	calendarService *service.CalendarService,
	cfg *config.Config,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		client:           client,
		timesheetService: timesheetService,
		summaryService:   summaryService,
		calendarService:  calendarService,
		config:           cfg,
		logger:           logger,
	}
}

// HandleUpdates serves updates until the channel closes or ctx is done.
func (h *Handler) HandleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			h.handleMessage(ctx, update.Message)
		}
	}
}

func (h *Handler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	user := ""
	if message.From != nil {
		user = message.From.UserName
	}
	h.logger.WithFields(logrus.Fields{"chat_id": chatID, "user": user}).Infof("Message: %s", message.Text)

	if !h.allowed(chatID) {
		h.send(chatID, "❌ Access denied. This bot only serves the payroll chat.")
		return
	}

	if message.Document != nil {
		h.processDocument(ctx, chatID, message.Document)
		return
	}

	if message.IsCommand() {
		h.send(chatID, h.respond(message.Command(), message.CommandArguments()))
		return
	}

	h.send(chatID, "Send an attendance file (.xlsx, .xls or .csv) or use /help.")
}

// allowed reports whether chatID may use the bot. Without a configured admin
// chat every chat is served.
func (h *Handler) allowed(chatID int64) bool {
	return h.config.AdminChatID == 0 || h.config.AdminChatID == chatID
}

func (h *Handler) processDocument(ctx context.Context, chatID int64, doc *tgbotapi.Document) {
	if !supportedFile(doc.FileName) {
		h.send(chatID, "❌ Unsupported file. Send an .xlsx, .xls or .csv attendance export.")
		return
	}
	if doc.FileSize > maxUploadSize {
		h.send(chatID, "❌ File is too large.")
		return
	}

	data, err := h.client.Download(doc.FileID)
	if err != nil {
		h.logger.WithError(err).WithField("file", doc.FileName).Error("Failed to download attendance file")
		h.send(chatID, "❌ Failed to download the file: "+err.Error())
		return
	}

	h.send(chatID, "⏳ Processing "+doc.FileName+"...")

	result, workbook, err := h.consolidate(ctx, doc.FileName, data)
	if err != nil {
		h.send(chatID, "❌ Processing failed: "+err.Error())
		return
	}

	h.send(chatID, service.FormatRunDigest(result.Run, result.Report))

	name := strings.TrimSuffix(doc.FileName, filepath.Ext(doc.FileName)) + "_consolidated.xlsx"
	if err := h.client.SendDocument(chatID, name, workbook, "Consolidated shifts"); err != nil {
		h.logger.WithError(err).Error("Failed to send consolidated workbook")
	}
}

// consolidate processes an uploaded export, stores the run and renders the
// workbook sent back to the chat.
func (h *Handler) consolidate(ctx context.Context, name string, data []byte) (*service.Result, []byte, error) {
	rows, err := sheet.ReadRows(bytes.NewReader(data), name)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	result, err := h.timesheetService.ProcessRows(ctx, name, rows)
	if err != nil {
		return nil, nil, err
	}
	if err := h.timesheetService.Save(result); err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	if err := result.Export().WriteXLSX(&buf); err != nil {
		return nil, nil, err
	}
	return result, buf.Bytes(), nil
}

func (h *Handler) send(chatID int64, text string) {
	if err := h.client.SendText(chatID, text); err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to send message")
	}
}

func supportedFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xls", ".csv":
		return true
	}
	return false
}
