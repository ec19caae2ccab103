package telegram

import (
	"context"
	"sync"
)

// ===========================================================================
// MockSender dùng để testing
// Không gọi Telegram API thật, lưu lại các tin nhắn đã "gửi"
// ===========================================================================

// SentMessage một tin nhắn MockSender đã nhận
type SentMessage struct {
	BotToken string
	ChatID   string
	Text     string
}

// MockSender implement Sender cho mục đích testing
type MockSender struct {
	mu sync.Mutex

	// SendErr nếu set, SendMessage sẽ trả về lỗi này
	SendErr error

	// RegisterErr nếu set, RegisterWebhook sẽ trả về lỗi này
	RegisterErr error

	sent       []SentMessage
	registered []string
}

// NewMockSender tạo MockSender mới
func NewMockSender() *MockSender {
	return &MockSender{}
}

// SendMessage giả lập gửi tin nhắn, lưu lại để assert trong test
func (m *MockSender) SendMessage(ctx context.Context, botToken, chatID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.sent = append(m.sent, SentMessage{BotToken: botToken, ChatID: chatID, Text: text})
	return nil
}

// RegisterWebhook giả lập đăng ký webhook
func (m *MockSender) RegisterWebhook(ctx context.Context, botToken, webhookURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RegisterErr != nil {
		return m.RegisterErr
	}
	m.registered = append(m.registered, webhookURL)
	return nil
}

// SentMessages trả về copy các tin nhắn đã gửi
func (m *MockSender) SentMessages() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

// RegisteredWebhooks trả về các webhook URL đã đăng ký
func (m *MockSender) RegisteredWebhooks() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.registered))
	copy(out, m.registered)
	return out
}

// Reset xóa trạng thái đã ghi nhận
func (m *MockSender) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
	m.registered = nil
}
