package telegram

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"go.uber.org/zap"
)

// ===========================================================================
// Telegram Sender
// Gateway gửi tin nhắn đi qua Telegram Bot API (mymmrac/telego)
// Multi-tenant: mỗi company có bot token riêng, bot client được cache
// theo token để không phải khởi tạo lại mỗi request
// ===========================================================================

// Sender interface gửi tin nhắn và đăng ký webhook với Telegram
type Sender interface {
	// SendMessage gửi text (Markdown) đến một chat
	// chatID là Telegram chat ID dạng string (như lưu trong Lead.Contact)
	SendMessage(ctx context.Context, botToken, chatID, text string) error

	// RegisterWebhook đăng ký webhook URL cho bot với Telegram
	RegisterWebhook(ctx context.Context, botToken, webhookURL string) error
}

// ===========================================================================
// Sender Implementation
// ===========================================================================

// botSender triển khai Sender với telego
type botSender struct {
	logger *zap.Logger

	// mu bảo vệ bots map khi nhiều webhook đồng thời
	mu   sync.RWMutex
	bots map[string]*telego.Bot
}

// NewSender tạo Telegram sender mới
func NewSender(logger *zap.Logger) Sender {
	return &botSender{
		logger: logger,
		bots:   make(map[string]*telego.Bot),
	}
}

// bot trả về telego client cho token, tạo và cache nếu chưa có
// telego.NewBot không gọi network nên tạo lazy ở đây là an toàn
func (s *botSender) bot(token string) (*telego.Bot, error) {
	s.mu.RLock()
	b, ok := s.bots[token]
	s.mu.RUnlock()
	if ok {
		return b, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.bots[token]; ok {
		return b, nil
	}

	b, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	s.bots[token] = b
	return b, nil
}

// SendMessage gửi text đến chat qua Bot API
func (s *botSender) SendMessage(ctx context.Context, botToken, chatID, text string) error {
	b, err := s.bot(botToken)
	if err != nil {
		return err
	}

	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram chat id %q: %w", chatID, err)
	}

	msg := tu.Message(tu.ID(id), text).WithParseMode(telego.ModeMarkdown)
	if _, err := b.SendMessage(ctx, msg); err != nil {
		s.logger.Error("telegram sendMessage failed",
			zap.String("chat_id", chatID),
			zap.Error(err),
		)
		return fmt.Errorf("telegram sendMessage: %w", err)
	}

	s.logger.Debug("telegram message sent",
		zap.String("chat_id", chatID),
		zap.Int("length", len(text)),
	)
	return nil
}

// RegisterWebhook đăng ký webhook URL cho bot
func (s *botSender) RegisterWebhook(ctx context.Context, botToken, webhookURL string) error {
	b, err := s.bot(botToken)
	if err != nil {
		return err
	}

	err = b.SetWebhook(ctx, &telego.SetWebhookParams{URL: webhookURL})
	if err != nil {
		return fmt.Errorf("telegram setWebhook: %w", err)
	}

	s.logger.Info("telegram webhook registered",
		zap.String("url", webhookURL),
	)
	return nil
}
