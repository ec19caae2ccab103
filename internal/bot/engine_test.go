package bot

import (
	"testing"

	"leadsync/internal/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestEngine() Engine {
	return NewEngine(NewKeywordIntentDetector(), zap.NewNop())
}

func TestKeywordIntentDetector(t *testing.T) {
	d := NewKeywordIntentDetector()

	tests := []struct {
		text string
		want bool
	}{
		{"agent", true},
		{"AGENT", true},
		{"I want to talk to an Agent please", true},
		{"human", true},
		{"need support now", true},
		{"can I speak to a HUMAN?", true},
		{"superhuman effort", true}, // substring match, chấp nhận false positive
		{"hello", false},
		{"urgent", false},
		{"price of the earbuds?", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, d.WantsAgent(tt.text), "text=%q", tt.text)
	}
}

func TestDecide_BotModeDefaultReply(t *testing.T) {
	e := newTestEngine()

	d := e.Decide(models.ModeBot, "hello there", "Acme")

	assert.Equal(t, models.ModeBot, d.NextMode)
	assert.False(t, d.ModeChanged)
	assert.False(t, d.Handoff)
	assert.Equal(t, MenuMessage, d.Reply)
}

func TestDecide_BotModeHandoff(t *testing.T) {
	e := newTestEngine()

	d := e.Decide(models.ModeBot, "I need a human agent", "Acme")

	assert.Equal(t, models.ModeHuman, d.NextMode)
	assert.True(t, d.ModeChanged)
	assert.True(t, d.Handoff)
	assert.Equal(t, HandoffMessage, d.Reply)
	assert.Equal(t, "I need a human agent", d.HandoffReason)
}

func TestDecide_HumanModeResetsToBot(t *testing.T) {
	e := newTestEngine()

	// Ở HUMAN mode, mọi tin nhắn đều reset về BOT — kể cả khi khách
	// gõ lại keyword "agent"
	for _, text := range []string{"hello", "agent", "anything at all"} {
		d := e.Decide(models.ModeHuman, text, "Acme")

		assert.Equal(t, models.ModeBot, d.NextMode, "text=%q", text)
		assert.True(t, d.ModeChanged, "text=%q", text)
		assert.False(t, d.Handoff, "text=%q", text)
		assert.Equal(t, GreetingMessage("Acme"), d.Reply, "text=%q", text)
	}
}

func TestDecide_Deterministic(t *testing.T) {
	e := newTestEngine()

	first := e.Decide(models.ModeBot, "support please", "Acme")
	second := e.Decide(models.ModeBot, "support please", "Acme")

	assert.Equal(t, first, second)
}

func TestGreetingMessageIncludesCompanyName(t *testing.T) {
	msg := GreetingMessage("LeadSync Demo Store")
	assert.Contains(t, msg, "LeadSync Demo Store")
}
