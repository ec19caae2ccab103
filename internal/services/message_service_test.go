package services

import (
	"context"
	"errors"
	"testing"

	"leadsync/internal/bot"
	apperrors "leadsync/internal/errors"
	"leadsync/internal/models"
	"leadsync/internal/realtime"
	"leadsync/internal/telegram"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ===========================================================================
// Message Service Tests
// Chạy full pipeline với in-memory fakes: company → lead → conversation →
// message → bot decision → telegram dispatch
// ===========================================================================

type messageServiceFixture struct {
	companyRepo *fakeCompanyRepo
	leadRepo    *fakeLeadRepo
	convRepo    *fakeConversationRepo
	messageRepo *fakeMessageRepo
	sender      *telegram.MockSender
	service     MessageService
	company     *models.Company
}

func newMessageServiceFixture(t *testing.T) *messageServiceFixture {
	t.Helper()

	f := &messageServiceFixture{
		companyRepo: newFakeCompanyRepo(),
		leadRepo:    newFakeLeadRepo(),
		convRepo:    newFakeConversationRepo(),
		messageRepo: newFakeMessageRepo(),
		sender:      telegram.NewMockSender(),
	}

	f.company = &models.Company{
		Name:     "Acme Store",
		IsActive: true,
		Settings: models.CompanySettings{BotEnabled: true},
	}
	f.company.AttachTelegramBot("123456:test-bot-token")
	require.NoError(t, f.companyRepo.Create(context.Background(), f.company))

	engine := bot.NewEngine(bot.NewKeywordIntentDetector(), zap.NewNop())
	f.service = NewMessageService(
		f.companyRepo,
		f.leadRepo,
		f.convRepo,
		f.messageRepo,
		engine,
		f.sender,
		realtime.NewNoopPublisher(),
		zap.NewNop(),
	)
	return f
}

func (f *messageServiceFixture) inbound(text string) *InboundMessage {
	return &InboundMessage{
		BotToken: "123456:test-bot-token",
		ChatID:   "99887766",
		Username: "john_doe",
		Text:     text,
	}
}

func TestProcessInbound_UnknownBotToken(t *testing.T) {
	f := newMessageServiceFixture(t)

	msg := f.inbound("hello")
	msg.BotToken = "000:unknown-token"

	result, err := f.service.ProcessInbound(context.Background(), msg)

	require.NoError(t, err)
	assert.True(t, result.Ignored)
	assert.Equal(t, "unknown bot token", result.IgnoreReason)
	// Không persist gì cả
	assert.Empty(t, f.leadRepo.leads)
	assert.Empty(t, f.convRepo.conversations)
	assert.Empty(t, f.messageRepo.messages)
	assert.Empty(t, f.sender.SentMessages())
}

func TestProcessInbound_NewContactCreatesLeadAndConversation(t *testing.T) {
	f := newMessageServiceFixture(t)

	result, err := f.service.ProcessInbound(context.Background(), f.inbound("hello"))

	require.NoError(t, err)
	assert.False(t, result.Ignored)
	assert.True(t, result.LeadCreated)
	assert.True(t, result.ConversationCreated)
	assert.Equal(t, f.company.ID, result.CompanyID)
	assert.Equal(t, models.ModeBot, result.Mode)
	assert.False(t, result.ModeChanged)
	assert.Equal(t, bot.MenuMessage, result.Reply)
	assert.True(t, result.ReplySent)

	// Lead được tạo với contact = chat ID và tên từ username
	lead, err := f.leadRepo.FindByContact(context.Background(), f.company.ID, models.ChannelTelegram, "99887766")
	require.NoError(t, err)
	require.NotNil(t, lead.Name)
	assert.Equal(t, "john_doe", *lead.Name)
	assert.Equal(t, "telegram_bot", lead.Metadata.Source)
	assert.Equal(t, "hello", lead.Metadata.FirstMessage)
	assert.NotNil(t, lead.LastSeenAt)

	// CLIENT message + SYSTEM reply được lưu theo thứ tự
	msgs := f.messageRepo.byConversation(result.ConversationID)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.SenderClient, msgs[0].Sender)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, models.SenderSystem, msgs[1].Sender)
	assert.Equal(t, bot.MenuMessage, msgs[1].Content)
	assert.NotNil(t, msgs[1].Metadata.DeliveredAt)

	// Reply được gửi đúng chat qua đúng bot
	sent := f.sender.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "123456:test-bot-token", sent[0].BotToken)
	assert.Equal(t, "99887766", sent[0].ChatID)
	assert.Equal(t, bot.MenuMessage, sent[0].Text)

	// Preview cập nhật với reply của bot
	conv, err := f.convRepo.FindByID(context.Background(), result.ConversationID)
	require.NoError(t, err)
	require.NotNil(t, conv.LastMessagePreview)
	assert.Equal(t, bot.MenuMessage, *conv.LastMessagePreview)
}

func TestProcessInbound_AgentKeywordSwitchesToHuman(t *testing.T) {
	f := newMessageServiceFixture(t)

	result, err := f.service.ProcessInbound(context.Background(), f.inbound("I need an agent"))

	require.NoError(t, err)
	assert.Equal(t, models.ModeHuman, result.Mode)
	assert.True(t, result.ModeChanged)
	assert.True(t, result.Handoff)
	assert.Equal(t, bot.HandoffMessage, result.Reply)

	conv, err := f.convRepo.FindByID(context.Background(), result.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, models.ModeHuman, conv.Mode)
	assert.Equal(t, "I need an agent", conv.Metadata.HandoffReason)
	assert.NotNil(t, conv.Metadata.HandoffAt)
}

func TestProcessInbound_HumanModeResetsToBot(t *testing.T) {
	f := newMessageServiceFixture(t)
	ctx := context.Background()

	// Chuyển sang HUMAN trước
	first, err := f.service.ProcessInbound(ctx, f.inbound("agent"))
	require.NoError(t, err)
	require.Equal(t, models.ModeHuman, first.Mode)

	// Tin nhắn tiếp theo reset về BOT với greeting
	second, err := f.service.ProcessInbound(ctx, f.inbound("hello again"))
	require.NoError(t, err)
	assert.Equal(t, models.ModeBot, second.Mode)
	assert.True(t, second.ModeChanged)
	assert.False(t, second.Handoff)
	assert.Equal(t, bot.GreetingMessage("Acme Store"), second.Reply)

	conv, err := f.convRepo.FindByID(ctx, second.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, models.ModeBot, conv.Mode)
	assert.Empty(t, conv.Metadata.HandoffReason)
}

func TestProcessInbound_Idempotent(t *testing.T) {
	f := newMessageServiceFixture(t)
	ctx := context.Background()

	first, err := f.service.ProcessInbound(ctx, f.inbound("hello"))
	require.NoError(t, err)
	second, err := f.service.ProcessInbound(ctx, f.inbound("still me"))
	require.NoError(t, err)

	// Cùng lead, cùng conversation
	assert.Equal(t, first.LeadID, second.LeadID)
	assert.Equal(t, first.ConversationID, second.ConversationID)
	assert.False(t, second.LeadCreated)
	assert.False(t, second.ConversationCreated)

	assert.Len(t, f.leadRepo.leads, 1)
	assert.Len(t, f.convRepo.conversations, 1)
	// 2 inbound × (CLIENT + SYSTEM)
	assert.Len(t, f.messageRepo.byConversation(first.ConversationID), 4)
}

func TestProcessInbound_SendFailureDoesNotFailPipeline(t *testing.T) {
	f := newMessageServiceFixture(t)
	f.sender.SendErr = errors.New("telegram: chat not found")

	result, err := f.service.ProcessInbound(context.Background(), f.inbound("hello"))

	require.NoError(t, err)
	assert.False(t, result.ReplySent)

	// Reply vẫn được lưu, trạng thái fail ghi vào metadata
	msgs := f.messageRepo.byConversation(result.ConversationID)
	require.Len(t, msgs, 2)
	assert.Nil(t, msgs[1].Metadata.DeliveredAt)
	assert.NotNil(t, msgs[1].Metadata.FailedAt)
	assert.Equal(t, "telegram: chat not found", msgs[1].Metadata.FailReason)
}

func TestSendOutbound_DispatchesToTelegram(t *testing.T) {
	f := newMessageServiceFixture(t)
	ctx := context.Background()

	inbound, err := f.service.ProcessInbound(ctx, f.inbound("hello"))
	require.NoError(t, err)
	f.sender.Reset()

	agentID := uuid.New()
	msg, err := f.service.SendOutbound(ctx, f.company.ID, inbound.ConversationID, "How can I help?", models.SenderAgent, &agentID)

	require.NoError(t, err)
	assert.Equal(t, models.SenderAgent, msg.Sender)
	require.NotNil(t, msg.SenderUserID)
	assert.Equal(t, agentID, *msg.SenderUserID)
	assert.NotNil(t, msg.Metadata.DeliveredAt)

	sent := f.sender.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "99887766", sent[0].ChatID)
	assert.Equal(t, "How can I help?", sent[0].Text)

	conv, err := f.convRepo.FindByID(ctx, inbound.ConversationID)
	require.NoError(t, err)
	require.NotNil(t, conv.LastMessagePreview)
	assert.Equal(t, "How can I help?", *conv.LastMessagePreview)
}

func TestSendOutbound_OtherCompanyConversationNotFound(t *testing.T) {
	f := newMessageServiceFixture(t)
	ctx := context.Background()

	inbound, err := f.service.ProcessInbound(ctx, f.inbound("hello"))
	require.NoError(t, err)

	otherCompany := uuid.New()
	_, err = f.service.SendOutbound(ctx, otherCompany, inbound.ConversationID, "hi", models.SenderAgent, nil)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSetMode_ManualHandoff(t *testing.T) {
	f := newMessageServiceFixture(t)
	ctx := context.Background()

	inbound, err := f.service.ProcessInbound(ctx, f.inbound("hello"))
	require.NoError(t, err)

	conv, err := f.service.SetMode(ctx, f.company.ID, inbound.ConversationID, models.ModeHuman)
	require.NoError(t, err)
	assert.Equal(t, models.ModeHuman, conv.Mode)
	assert.Equal(t, "manual", conv.Metadata.HandoffReason)

	// Trả về bot
	conv, err = f.service.SetMode(ctx, f.company.ID, inbound.ConversationID, models.ModeBot)
	require.NoError(t, err)
	assert.Equal(t, models.ModeBot, conv.Mode)
	assert.Empty(t, conv.Metadata.HandoffReason)
}

func TestSetMode_InvalidMode(t *testing.T) {
	f := newMessageServiceFixture(t)

	_, err := f.service.SetMode(context.Background(), f.company.ID, uuid.New(), models.ConversationMode("PAUSED"))

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSetMode_SameModeIsNoop(t *testing.T) {
	f := newMessageServiceFixture(t)
	ctx := context.Background()

	inbound, err := f.service.ProcessInbound(ctx, f.inbound("hello"))
	require.NoError(t, err)

	conv, err := f.service.SetMode(ctx, f.company.ID, inbound.ConversationID, models.ModeBot)
	require.NoError(t, err)
	assert.Equal(t, models.ModeBot, conv.Mode)
	assert.Empty(t, conv.Metadata.HandoffReason)
}

func TestCaptureWebsiteLead_CreatesLeadAndConversation(t *testing.T) {
	f := newMessageServiceFixture(t)

	result, err := f.service.CaptureWebsiteLead(context.Background(), &WebsiteLeadInput{
		CompanyID: f.company.ID,
		Name:      "Jane",
		Contact:   "jane@example.com",
	})

	require.NoError(t, err)
	assert.True(t, result.LeadCreated)
	assert.True(t, result.ConversationCreated)
	assert.Equal(t, models.ChannelWebsite, result.Lead.Channel)
	assert.Equal(t, "website_form", result.Lead.Metadata.Source)
	assert.Equal(t, models.ModeBot, result.Conversation.Mode)
}

func TestCaptureWebsiteLead_IdempotentResubmit(t *testing.T) {
	f := newMessageServiceFixture(t)
	ctx := context.Background()

	input := &WebsiteLeadInput{CompanyID: f.company.ID, Name: "Jane", Contact: "jane@example.com"}

	first, err := f.service.CaptureWebsiteLead(ctx, input)
	require.NoError(t, err)
	second, err := f.service.CaptureWebsiteLead(ctx, input)
	require.NoError(t, err)

	assert.Equal(t, first.Lead.ID, second.Lead.ID)
	assert.Equal(t, first.Conversation.ID, second.Conversation.ID)
	assert.False(t, second.LeadCreated)
	assert.False(t, second.ConversationCreated)
}

func TestCaptureWebsiteLead_DefaultCompanyFallback(t *testing.T) {
	f := newMessageServiceFixture(t)

	// Không chỉ định company → rơi về company mặc định
	result, err := f.service.CaptureWebsiteLead(context.Background(), &WebsiteLeadInput{
		Contact: "anon@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, f.company.ID, result.Lead.CompanyID)
}

func TestCaptureWebsiteLead_UnknownCompany(t *testing.T) {
	f := newMessageServiceFixture(t)

	_, err := f.service.CaptureWebsiteLead(context.Background(), &WebsiteLeadInput{
		CompanyID: uuid.New(),
		Contact:   "jane@example.com",
	})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
