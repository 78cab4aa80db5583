package notify

import (
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Antoine-pa/paris-sportifs/internal/arbitrage"
	"github.com/Antoine-pa/paris-sportifs/internal/assembler"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/models"
)

type recordingBot struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
	at   []time.Time
}

func (b *recordingBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, c.(tgbotapi.MessageConfig))
	b.at = append(b.at, time.Now())
	return tgbotapi.Message{}, nil
}

func payloadWithRate(rate float64) assembler.Payload {
	calc := arbitrage.New(arbitrage.DefaultOptions())
	m := models.Match{ID: "pmu_paris sg_marseille", HomeTeam: "Paris_SG", AwayTeam: "Marseille", Sport: "Football", OddsHome: 1.5, OddsDraw: 3.2, OddsAway: 4.1}
	view := assembler.MatchView{Match: m, Evaluation: calc.Evaluate(m)}
	view.ConversionRate = rate
	return assembler.Payload{
		Source:              "pmu",
		Bookmaker:           "PMU Sport",
		Status:              models.StatusSuccess,
		MatchesByMarketType: assembler.MarketMatches{ThreeOutcome: []assembler.MatchView{view}},
	}
}

func TestNotifyPayload_Threshold(t *testing.T) {
	bot := &recordingBot{}
	n := newNotifier(bot, 42, 15, time.Millisecond)

	n.NotifyPayload(payloadWithRate(10))
	n.NotifyPayload(payloadWithRate(16.7))
	errPayload := payloadWithRate(50)
	errPayload.Status = models.StatusError
	n.NotifyPayload(errPayload)
	n.Stop()

	if len(bot.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(bot.sent))
	}
	msg := bot.sent[0]
	if msg.ChatID != 42 || msg.ParseMode != tgbotapi.ModeMarkdown {
		t.Errorf("message = %+v", msg)
	}
	for _, want := range []string{"16.7%", "Paris\\_SG - Marseille", "Guaranteed profit: 50 on 300", "Backer 1: 2 - Away @ 4.10"} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("message text missing %q:\n%s", want, msg.Text)
		}
	}
}

func TestSender_SpacesMessages(t *testing.T) {
	bot := &recordingBot{}
	n := newNotifier(bot, 1, 0, 30*time.Millisecond)
	for i := 0; i < 3; i++ {
		n.NotifyPayload(payloadWithRate(20))
	}
	n.Stop()

	if len(bot.at) != 3 {
		t.Fatalf("sent %d messages, want 3", len(bot.at))
	}
	for i := 1; i < len(bot.at); i++ {
		if gap := bot.at[i].Sub(bot.at[i-1]); gap < 25*time.Millisecond {
			t.Errorf("gap between message %d and %d = %v, want >= ~30ms", i-1, i, gap)
		}
	}
}

func TestNilNotifier(t *testing.T) {
	var n *TelegramNotifier
	n.NotifyPayload(payloadWithRate(90))
	n.Stop()
	if n.QueueLen() != 0 {
		t.Error("nil notifier should report empty queue")
	}
}
