package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"leadsync/internal/models"
	"leadsync/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ===========================================================================
// Webhook Handler Tests
// Bất kể payload/kết quả thế nào, response LUÔN là 200 {"ok":true}
// ===========================================================================

// fakeMessageService ghi lại inbound đã nhận; các method còn lại
// delegate qua function hooks để từng test tự cấu hình
type fakeMessageService struct {
	inbounds []*services.InboundMessage

	result *services.ProcessResult
	err    error

	sendOutboundFn func(companyID, conversationID uuid.UUID, content string, sender models.SenderType, senderUserID *uuid.UUID) (*models.Message, error)
	setModeFn      func(companyID, conversationID uuid.UUID, mode models.ConversationMode) (*models.Conversation, error)
	captureFn      func(input *services.WebsiteLeadInput) (*services.WebsiteLeadResult, error)
}

func (f *fakeMessageService) ProcessInbound(ctx context.Context, inbound *services.InboundMessage) (*services.ProcessResult, error) {
	f.inbounds = append(f.inbounds, inbound)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &services.ProcessResult{}, nil
}

func (f *fakeMessageService) SendOutbound(ctx context.Context, companyID, conversationID uuid.UUID, content string, sender models.SenderType, senderUserID *uuid.UUID) (*models.Message, error) {
	if f.sendOutboundFn == nil {
		return nil, errors.New("not implemented")
	}
	return f.sendOutboundFn(companyID, conversationID, content, sender, senderUserID)
}

func (f *fakeMessageService) SetMode(ctx context.Context, companyID, conversationID uuid.UUID, mode models.ConversationMode) (*models.Conversation, error) {
	if f.setModeFn == nil {
		return nil, errors.New("not implemented")
	}
	return f.setModeFn(companyID, conversationID, mode)
}

func (f *fakeMessageService) CaptureWebsiteLead(ctx context.Context, input *services.WebsiteLeadInput) (*services.WebsiteLeadResult, error) {
	if f.captureFn == nil {
		return nil, errors.New("not implemented")
	}
	return f.captureFn(input)
}

// fakeWebhookEventRepo lưu events trong memory, unique theo EventID
type fakeWebhookEventRepo struct {
	events []*models.WebhookEvent
}

func (r *fakeWebhookEventRepo) FindByEventID(ctx context.Context, channel models.Channel, eventID string) (*models.WebhookEvent, error) {
	for _, e := range r.events {
		if e.Channel == channel && e.EventID == eventID {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeWebhookEventRepo) Create(ctx context.Context, event *models.WebhookEvent) error {
	for _, e := range r.events {
		if e.EventID == event.EventID {
			return gorm.ErrDuplicatedKey
		}
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Status == "" {
		event.Status = models.WebhookStatusPending
	}
	r.events = append(r.events, event)
	return nil
}

func (r *fakeWebhookEventRepo) Update(ctx context.Context, event *models.WebhookEvent) error {
	for i, e := range r.events {
		if e.ID == event.ID {
			r.events[i] = event
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type webhookFixture struct {
	service *fakeMessageService
	events  *fakeWebhookEventRepo
	router  *gin.Engine
}

func newWebhookFixture() *webhookFixture {
	gin.SetMode(gin.TestMode)

	f := &webhookFixture{
		service: &fakeMessageService{},
		events:  &fakeWebhookEventRepo{},
	}

	handler := NewWebhookHandler(f.service, f.events, zap.NewNop())
	f.router = gin.New()
	api := f.router.Group("/api/v1")
	handler.RegisterRoutes(api)
	return f
}

func (f *webhookFixture) post(t *testing.T, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/telegram/webhook/"+token, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

const textUpdate = `{
	"update_id": 42,
	"message": {
		"message_id": 7,
		"chat": {"id": 99887766, "type": "private"},
		"from": {"id": 1, "is_bot": false, "first_name": "John", "username": "john_doe"},
		"text": "hello"
	}
}`

func TestTelegramWebhook_ProcessesTextUpdate(t *testing.T) {
	f := newWebhookFixture()
	companyID := uuid.New()
	f.service.result = &services.ProcessResult{
		CompanyID:      companyID,
		ConversationID: uuid.New(),
		Mode:           models.ModeBot,
		ReplySent:      true,
	}

	w := f.post(t, "123456:token", textUpdate)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	// Service nhận đúng identity từ update
	require.Len(t, f.service.inbounds, 1)
	inbound := f.service.inbounds[0]
	assert.Equal(t, "123456:token", inbound.BotToken)
	assert.Equal(t, "99887766", inbound.ChatID)
	assert.Equal(t, "john_doe", inbound.Username)
	assert.Equal(t, "hello", inbound.Text)

	// Event được đánh dấu processed với company resolve được
	require.Len(t, f.events.events, 1)
	event := f.events.events[0]
	assert.Equal(t, models.WebhookStatusProcessed, event.Status)
	require.NotNil(t, event.CompanyID)
	assert.Equal(t, companyID, *event.CompanyID)
}

func TestTelegramWebhook_MalformedPayloadStillAcks(t *testing.T) {
	f := newWebhookFixture()

	w := f.post(t, "123456:token", `{"update_id": "not-a-number"`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	assert.Empty(t, f.service.inbounds)
}

func TestTelegramWebhook_NonTextUpdateSkipped(t *testing.T) {
	f := newWebhookFixture()

	// Update có message nhưng không có text (VD: sticker)
	w := f.post(t, "123456:token", `{
		"update_id": 43,
		"message": {
			"message_id": 8,
			"chat": {"id": 99887766, "type": "private"}
		}
	}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	assert.Empty(t, f.service.inbounds)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, models.WebhookStatusSkipped, f.events.events[0].Status)
}

func TestTelegramWebhook_DuplicateUpdateIgnored(t *testing.T) {
	f := newWebhookFixture()

	first := f.post(t, "123456:token", textUpdate)
	second := f.post(t, "123456:token", textUpdate)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)

	// Retry cùng update_id chỉ xử lý một lần
	assert.Len(t, f.service.inbounds, 1)
	assert.Len(t, f.events.events, 1)
}

func TestTelegramWebhook_SameUpdateIDDifferentBots(t *testing.T) {
	f := newWebhookFixture()

	f.post(t, "111:token-a", textUpdate)
	f.post(t, "222:token-b", textUpdate)

	// update_id trùng nhưng bot khác nhau → event key khác nhau
	assert.Len(t, f.service.inbounds, 2)
	assert.Len(t, f.events.events, 2)
}

func TestTelegramWebhook_ServiceErrorStillAcks(t *testing.T) {
	f := newWebhookFixture()
	f.service.err = errors.New("database down")

	w := f.post(t, "123456:token", textUpdate)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	require.Len(t, f.events.events, 1)
	event := f.events.events[0]
	assert.Equal(t, models.WebhookStatusFailed, event.Status)
	require.NotNil(t, event.ErrorMessage)
	assert.Equal(t, "database down", *event.ErrorMessage)
}

func TestTelegramWebhook_IgnoredResultMarksSkipped(t *testing.T) {
	f := newWebhookFixture()
	f.service.result = &services.ProcessResult{
		Ignored:      true,
		IgnoreReason: "unknown bot token",
	}

	w := f.post(t, "999:unknown", textUpdate)

	assert.Equal(t, http.StatusOK, w.Code)

	require.Len(t, f.events.events, 1)
	event := f.events.events[0]
	assert.Equal(t, models.WebhookStatusSkipped, event.Status)
	require.NotNil(t, event.ErrorMessage)
	assert.Equal(t, "unknown bot token", *event.ErrorMessage)
}

func TestTelegramWebhook_FromFirstNameFallback(t *testing.T) {
	f := newWebhookFixture()

	f.post(t, "123456:token", `{
		"update_id": 44,
		"message": {
			"message_id": 9,
			"chat": {"id": 5544, "type": "private"},
			"from": {"id": 2, "is_bot": false, "first_name": "Jane"},
			"text": "hi"
		}
	}`)

	require.Len(t, f.service.inbounds, 1)
	assert.Equal(t, "Jane", f.service.inbounds[0].Username)
}
