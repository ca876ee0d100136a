// Package telegram posts a summary of finished scans to a Telegram chat.
package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/Alias1177/TrendScanner/internal/report"
	"github.com/Alias1177/TrendScanner/internal/scan"
)

// Sender is the part of tgbotapi.BotAPI the notifier uses
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier sends the top results of a completed scan
type Notifier struct {
	sender Sender
	chatID int64
	topN   int
	logger zerolog.Logger
}

// New creates a notifier for one chat
func New(sender Sender, chatID int64, topN int, logger zerolog.Logger) *Notifier {
	if topN <= 0 {
		topN = 5
	}
	return &Notifier{
		sender: sender,
		chatID: chatID,
		topN:   topN,
		logger: logger.With().Str("component", "telegram_notifier").Logger(),
	}
}

// NewFromToken connects to the Bot API
func NewFromToken(token string, chatID int64, topN int, logger zerolog.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("initializing telegram bot: %w", err)
	}
	return New(bot, chatID, topN, logger), nil
}

// Notify sends the summary of a completed scan. Failed scans and send errors are only logged.
func (n *Notifier) Notify(snap scan.Snapshot) {
	if snap.State != scan.StateCompleted {
		n.logger.Debug().Str("scan_id", snap.ScanID).Str("state", string(snap.State)).Msg("Skipping notification")
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, FormatSummary(snap, n.topN))
	msg.ParseMode = "Markdown"

	if _, err := n.sender.Send(msg); err != nil {
		n.logger.Error().Err(err).Int64("chat_id", n.chatID).Msg("Failed to send scan summary")
		return
	}
	n.logger.Info().Int64("chat_id", n.chatID).Str("scan_id", snap.ScanID).Msg("Scan summary sent")
}

// FormatSummary renders the top n results as a Markdown message
func FormatSummary(snap scan.Snapshot, n int) string {
	var b strings.Builder

	b.WriteString("📊 *Trend scan completed*\n")
	if snap.UsingSynthetic {
		b.WriteString("⚠️ _synthetic data_\n")
	}
	fmt.Fprintf(&b, "Assets: %d\n\n", len(snap.Results))

	top := report.Top(snap.Results, n)
	if len(top) == 0 {
		b.WriteString("No assets passed the filters.")
		return b.String()
	}

	for i, r := range top {
		fmt.Fprintf(&b, "%d. *%s* %d (%s) %s %s, aligned %d, vol %s, %+.2f%%\n",
			i+1,
			r.Symbol,
			r.ROIScore,
			report.ScoreTier(r.ROIScore),
			report.TrendArrow(r.DominantTrend),
			r.DominantTrend,
			r.AlignmentCount,
			report.FormatVolume(r.Volume24h),
			r.PriceChange24h,
		)
	}

	return strings.TrimRight(b.String(), "\n")
}
