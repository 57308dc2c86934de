// Package telegram sends a short run summary to a Telegram chat: the input
// counts and the wells whose net volume tracks seismicity most closely.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rewired-gh/seiscorr/internal/models"
)

// Client handles Telegram notifications
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// SendRun sends the summary of run with its topK wells.
func (c *Client) SendRun(ctx context.Context, run *models.Run, wells []models.WellCorrelation, topK int) error {
	msg := tgbotapi.NewMessage(c.chatID, formatMessage(run, wells, topK))
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelayBase * time.Duration(i)):
			}
		}
		_, err := c.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
	}

	return fmt.Errorf("failed to send message after %d retries: %w", c.maxRetries, lastErr)
}

// formatMessage renders a run summary in MarkdownV2.
func formatMessage(run *models.Run, wells []models.WellCorrelation, topK int) string {
	var b strings.Builder

	b.WriteString("🌋 *Seismicity vs well volumes*\n\n")
	fmt.Fprintf(&b, "📅 Run: %s\n", escapeMarkdownV2(run.CreatedAt.UTC().Format("2006-01-02 15:04:05")))
	fmt.Fprintf(&b, "Events: %d, months: %d, wells: %d\n", run.EventCount, run.PeriodCount, run.WellCount)
	if run.MinMagnitude != nil {
		fmt.Fprintf(&b, "Magnitude above %s\n", escapeMarkdownV2(strconv.FormatFloat(*run.MinMagnitude, 'g', -1, 64)))
	}
	if run.DroppedRows > 0 || run.JoinMismatch > 0 {
		fmt.Fprintf(&b, "⚠️ Dropped rows: %d, unmatched wells: %d\n", run.DroppedRows, run.JoinMismatch)
	}
	b.WriteString("\n")

	if topK > 0 && topK < len(wells) {
		wells = wells[:topK]
	}
	if len(wells) == 0 {
		b.WriteString("No wells in the final table\\.\n")
		return b.String()
	}

	b.WriteString("*Top wells by correlation*\n")
	for i, w := range wells {
		corr := "undefined"
		if w.Correlation != nil {
			corr = fmt.Sprintf("%+.3f", *w.Correlation)
		}
		label := w.Name
		if w.TypeLabel != "" {
			label += " (" + w.TypeLabel + ")"
		}
		fmt.Fprintf(&b, "%d\\. %s: *%s*\n", i+1, escapeMarkdownV2(label), escapeMarkdownV2(corr))
		fmt.Fprintf(&b, "   Injected %s, produced %s\n",
			escapeMarkdownV2(formatVolume(w.Injected)), escapeMarkdownV2(formatVolume(w.Produced)))
	}

	return b.String()
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}

// formatVolume abbreviates large volumes, e.g. 1.2M.
func formatVolume(v float64) string {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.1fk", v/1e3)
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}
