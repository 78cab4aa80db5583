// Package notify pushes the best arbitrage of a fresh scrape to Telegram.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Antoine-pa/paris-sportifs/internal/arbitrage"
	"github.com/Antoine-pa/paris-sportifs/internal/assembler"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/models"
)

// Min interval between two messages to the same chat (Telegram allows ~30/min).
const telegramSendInterval = 2 * time.Second

const queueSize = 100

// sender is the part of *tgbotapi.BotAPI the notifier uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier queues alerts and sends them from a single worker, spaced
// by the send interval.
type TelegramNotifier struct {
	bot      sender
	chatID   int64
	minRate  float64
	interval time.Duration

	mu       sync.Mutex
	lastSend time.Time

	queue     chan string
	queueDone chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewTelegramNotifier connects to the bot API and starts the send worker.
func NewTelegramNotifier(token string, chatID int64, minConversionRate float64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	bot.Debug = false

	n := newNotifier(bot, chatID, minConversionRate, telegramSendInterval)
	slog.Info("Telegram notifier initialized", "chat_id", chatID, "bot", bot.Self.UserName, "min_conversion_rate", minConversionRate)
	return n, nil
}

func newNotifier(bot sender, chatID int64, minRate float64, interval time.Duration) *TelegramNotifier {
	ctx, cancel := context.WithCancel(context.Background())
	n := &TelegramNotifier{
		bot:       bot,
		chatID:    chatID,
		minRate:   minRate,
		interval:  interval,
		queue:     make(chan string, queueSize),
		queueDone: make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
	go n.messageSender()
	return n
}

// NotifyPayload queues an alert for the payload's best match when it reaches
// the configured conversion rate. It never blocks; a full queue drops the alert.
func (n *TelegramNotifier) NotifyPayload(p assembler.Payload) {
	if n == nil || p.Status == models.StatusError {
		return
	}
	best, ok := p.Best()
	if !ok || best.ConversionRate < n.minRate {
		return
	}

	select {
	case <-n.ctx.Done():
		return
	default:
	}
	select {
	case n.queue <- formatOpportunity(p, best):
		slog.Info("Telegram alert queued", "source", p.Source, "match", best.ID, "conversion_rate", best.ConversionRate, "queue_len", len(n.queue))
	default:
		slog.Warn("Telegram queue full, dropping alert", "source", p.Source, "match", best.ID)
	}
}

func (n *TelegramNotifier) QueueLen() int {
	if n == nil {
		return 0
	}
	return len(n.queue)
}

func (n *TelegramNotifier) messageSender() {
	for {
		select {
		case <-n.ctx.Done():
			// Drain remaining messages before exit
			for {
				select {
				case text := <-n.queue:
					n.send(text)
				default:
					close(n.queueDone)
					return
				}
			}
		case text := <-n.queue:
			n.send(text)
		}
	}
}

func (n *TelegramNotifier) send(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if elapsed := time.Since(n.lastSend); elapsed < n.interval {
		time.Sleep(n.interval - elapsed)
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	start := time.Now()
	n.lastSend = start
	if _, err := n.bot.Send(msg); err != nil {
		slog.Error("Telegram send failed", "error", err, "queue_length", len(n.queue))
		return
	}
	slog.Info("Telegram send: success", "send_duration", time.Since(start), "queue_length", len(n.queue))
}

// Stop stops accepting alerts and waits for queued ones to be sent.
func (n *TelegramNotifier) Stop() {
	if n == nil {
		return
	}
	n.cancel()
	<-n.queueDone
}

func formatOpportunity(p assembler.Payload, best assembler.MatchView) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*Arbitrage %s: %.1f%%*\n\n", escapeMarkdown(p.Bookmaker), best.ConversionRate)
	fmt.Fprintf(&b, "*%s - %s*\n", escapeMarkdown(best.HomeTeam), escapeMarkdown(best.AwayTeam))
	if best.Sport != "" {
		fmt.Fprintf(&b, "%s | ", escapeMarkdown(best.Sport))
	}
	market := "1N2"
	if best.Market == arbitrage.TwoOutcome {
		market = "1-2"
	}
	fmt.Fprintf(&b, "%s\n", market)
	fmt.Fprintf(&b, "Guaranteed profit: %.0f on %.0f staked\n\n", best.GuaranteedProfit, best.TotalStaked)
	for _, s := range best.Assignment {
		fmt.Fprintf(&b, "Backer %d: %s @ %.2f (+%.0f)\n", s.Backer, escapeMarkdown(s.Label), s.Price, s.ProfitIfWins)
	}
	return b.String()
}

// escapeMarkdown escapes the characters legacy Markdown mode treats as markup.
func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return replacer.Replace(text)
}
