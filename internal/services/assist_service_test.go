package services

import (
	"context"
	"errors"
	"testing"

	"leadsync/internal/ai"
	apperrors "leadsync/internal/errors"
	"leadsync/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ===========================================================================
// Assist Service Tests
// ===========================================================================

type assistServiceFixture struct {
	convRepo    *fakeConversationRepo
	messageRepo *fakeMessageRepo
	client      *ai.MockClient
	service     AssistService
	companyID   uuid.UUID
	convID      uuid.UUID
}

// newAssistServiceFixture dựng service với một conversation có sẵn history:
// CLIENT "Do you have wireless earbuds?" → SYSTEM menu → CLIENT "What's the price?"
func newAssistServiceFixture(t *testing.T) *assistServiceFixture {
	t.Helper()
	ctx := context.Background()

	f := &assistServiceFixture{
		convRepo:    newFakeConversationRepo(),
		messageRepo: newFakeMessageRepo(),
		client:      ai.NewMockClient("mocked completion"),
		companyID:   uuid.New(),
	}

	conv, _, err := f.convRepo.FindOrCreate(ctx, &models.Conversation{
		CompanyID: f.companyID,
		LeadID:    uuid.New(),
		Channel:   models.ChannelTelegram,
	})
	require.NoError(t, err)
	f.convID = conv.ID

	history := []*models.Message{
		{ConversationID: conv.ID, Sender: models.SenderClient, Content: "Do you have wireless earbuds?"},
		{ConversationID: conv.ID, Sender: models.SenderSystem, Content: "Here is our menu"},
		{ConversationID: conv.ID, Sender: models.SenderClient, Content: "What's the price?"},
	}
	for _, msg := range history {
		require.NoError(t, f.messageRepo.Create(ctx, msg))
	}

	f.service = NewAssistService(f.convRepo, f.messageRepo, f.client, zap.NewNop())
	return f
}

func TestSuggestReply_ReturnsCompletion(t *testing.T) {
	f := newAssistServiceFixture(t)

	text, err := f.service.SuggestReply(context.Background(), f.companyID, f.convID)

	require.NoError(t, err)
	assert.Equal(t, "mocked completion", text)

	// 1 system prompt + 3 history messages
	calls := f.client.Calls()
	require.Len(t, calls, 1)
	assert.Len(t, calls[0], 4)
}

func TestSuggestReply_Disabled(t *testing.T) {
	f := newAssistServiceFixture(t)
	f.client.Disabled = true

	text, err := f.service.SuggestReply(context.Background(), f.companyID, f.convID)

	assert.ErrorIs(t, err, apperrors.ErrAIDisabled)
	assert.Equal(t, "AI service not configured", text)
	// Không gọi gateway khi chưa cấu hình
	assert.Equal(t, 0, f.client.CallCount())
}

func TestSuggestReply_GatewayErrorFallsBack(t *testing.T) {
	f := newAssistServiceFixture(t)
	f.client.Err = errors.New("openai: rate limited")

	text, err := f.service.SuggestReply(context.Background(), f.companyID, f.convID)

	require.NoError(t, err)
	assert.Equal(t, "Unable to generate suggestion", text)
}

func TestSuggestReply_OtherCompanyNotFound(t *testing.T) {
	f := newAssistServiceFixture(t)

	_, err := f.service.SuggestReply(context.Background(), uuid.New(), f.convID)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, 0, f.client.CallCount())
}

func TestSummarize_ReturnsCompletion(t *testing.T) {
	f := newAssistServiceFixture(t)

	text, err := f.service.Summarize(context.Background(), f.companyID, f.convID)

	require.NoError(t, err)
	assert.Equal(t, "mocked completion", text)

	calls := f.client.Calls()
	require.Len(t, calls, 1)
	assert.Len(t, calls[0], 4)
}

func TestSummarize_Disabled(t *testing.T) {
	f := newAssistServiceFixture(t)
	f.client.Disabled = true

	text, err := f.service.Summarize(context.Background(), f.companyID, f.convID)

	assert.ErrorIs(t, err, apperrors.ErrAIDisabled)
	assert.Equal(t, "AI service not configured", text)
	assert.Equal(t, 0, f.client.CallCount())
}

func TestSummarize_GatewayErrorFallsBack(t *testing.T) {
	f := newAssistServiceFixture(t)
	f.client.Err = errors.New("openai: timeout")

	text, err := f.service.Summarize(context.Background(), f.companyID, f.convID)

	require.NoError(t, err)
	assert.Equal(t, "Unable to generate summary", text)
}

func TestSalesReply_ReturnsCompletion(t *testing.T) {
	f := newAssistServiceFixture(t)

	text, err := f.service.SalesReply(context.Background(), f.companyID, f.convID)

	require.NoError(t, err)
	assert.Equal(t, "mocked completion", text)

	// 2 system prompts (persona + shop context) + 3 history messages
	calls := f.client.Calls()
	require.Len(t, calls, 1)
	assert.Len(t, calls[0], 5)
}

func TestSalesReply_DisabledReturnsCustomerFacingText(t *testing.T) {
	f := newAssistServiceFixture(t)
	f.client.Disabled = true

	text, err := f.service.SalesReply(context.Background(), f.companyID, f.convID)

	// Fallback gửi thẳng cho khách nên không phải error
	require.NoError(t, err)
	assert.Contains(t, text, "AI service is not configured")
	assert.Equal(t, 0, f.client.CallCount())
}

func TestSalesReply_DisabledStillValidatesScope(t *testing.T) {
	f := newAssistServiceFixture(t)
	f.client.Disabled = true

	_, err := f.service.SalesReply(context.Background(), uuid.New(), f.convID)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSalesReply_GatewayErrorFallsBack(t *testing.T) {
	f := newAssistServiceFixture(t)
	f.client.Err = errors.New("openai: server error")

	text, err := f.service.SalesReply(context.Background(), f.companyID, f.convID)

	require.NoError(t, err)
	assert.Contains(t, text, "having trouble responding")
	assert.Contains(t, text, "agent")
}
