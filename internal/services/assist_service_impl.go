package services

import (
	"context"
	"fmt"

	"leadsync/internal/ai"
	apperrors "leadsync/internal/errors"
	"leadsync/internal/models"
	"leadsync/internal/repositories"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"go.uber.org/zap"
)

// ===========================================================================
// Assist Service Implementation
// ===========================================================================

// Fallback text khi AI chưa cấu hình hoặc gateway lỗi
// Nội dung cố định, client có thể hiển thị trực tiếp
const (
	aiNotConfiguredMessage = "AI service not configured"

	salesNotConfiguredMessage = `🤖 AI service is not configured. Please contact support or type "agent" to speak with our team.`

	salesFallbackMessage = "🤖 I'm having trouble responding right now. Let me connect you with a human agent!\n\nType: agent"

	suggestFallbackMessage = "Unable to generate suggestion"

	summaryFallbackMessage = "Unable to generate summary"
)

// History window và completion settings cho từng tính năng
const (
	salesHistoryLimit   = 10
	suggestHistoryLimit = 10
	summaryHistoryLimit = 20
)

var (
	salesOptions   = ai.CompletionOptions{Temperature: 0.4, MaxTokens: 300}
	suggestOptions = ai.CompletionOptions{Temperature: 0.5, MaxTokens: 200}
	summaryOptions = ai.CompletionOptions{Temperature: 0.3, MaxTokens: 250}
)

// assistServiceImpl implements AssistService
type assistServiceImpl struct {
	convRepo    repositories.ConversationRepository
	messageRepo repositories.MessageRepository
	client      ai.Client
	logger      *zap.Logger
}

// NewAssistService creates a new AssistService
func NewAssistService(
	convRepo repositories.ConversationRepository,
	messageRepo repositories.MessageRepository,
	client ai.Client,
	logger *zap.Logger,
) AssistService {
	return &assistServiceImpl{
		convRepo:    convRepo,
		messageRepo: messageRepo,
		client:      client,
		logger:      logger,
	}
}

// SuggestReply sinh gợi ý câu trả lời cho agent
func (s *assistServiceImpl) SuggestReply(ctx context.Context, companyID, conversationID uuid.UUID) (string, error) {
	// Check disabled trước khi đụng DB — không gọi gateway, không side effect
	if !s.client.Enabled() {
		return aiNotConfiguredMessage, apperrors.ErrAIDisabled
	}

	history, err := s.loadHistory(ctx, companyID, conversationID, suggestHistoryLimit)
	if err != nil {
		return "", err
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	messages = append(messages, openai.SystemMessage(ai.AgentSuggestionPrompt))
	messages = append(messages, history...)

	text, err := s.client.Complete(ctx, messages, suggestOptions)
	if err != nil {
		s.logger.Error("suggest reply completion failed",
			zap.Error(err),
			zap.String("conversation_id", conversationID.String()),
		)
		return suggestFallbackMessage, nil
	}
	return text, nil
}

// Summarize tóm tắt hội thoại cho agent
func (s *assistServiceImpl) Summarize(ctx context.Context, companyID, conversationID uuid.UUID) (string, error) {
	if !s.client.Enabled() {
		return aiNotConfiguredMessage, apperrors.ErrAIDisabled
	}

	history, err := s.loadHistory(ctx, companyID, conversationID, summaryHistoryLimit)
	if err != nil {
		return "", err
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	messages = append(messages, openai.SystemMessage(ai.SummaryPrompt))
	messages = append(messages, history...)

	text, err := s.client.Complete(ctx, messages, summaryOptions)
	if err != nil {
		s.logger.Error("summarize completion failed",
			zap.Error(err),
			zap.String("conversation_id", conversationID.String()),
		)
		return summaryFallbackMessage, nil
	}
	return text, nil
}

// SalesReply sinh câu trả lời bán hàng gửi cho khách
func (s *assistServiceImpl) SalesReply(ctx context.Context, companyID, conversationID uuid.UUID) (string, error) {
	if !s.client.Enabled() {
		// Vẫn phải validate conversation để không leak text cho request sai
		if _, err := s.ownedConversation(ctx, companyID, conversationID); err != nil {
			return "", err
		}
		return salesNotConfiguredMessage, nil
	}

	history, err := s.loadHistory(ctx, companyID, conversationID, salesHistoryLimit)
	if err != nil {
		return "", err
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(ai.SystemPrompt))
	messages = append(messages, openai.SystemMessage(ai.ShopContext))
	messages = append(messages, history...)

	text, err := s.client.Complete(ctx, messages, salesOptions)
	if err != nil {
		s.logger.Error("sales reply completion failed",
			zap.Error(err),
			zap.String("conversation_id", conversationID.String()),
		)
		return salesFallbackMessage, nil
	}
	return text, nil
}

// loadHistory lấy N messages gần nhất (cũ → mới) và map sang chat roles
// CLIENT → user, AGENT/SYSTEM → assistant (góc nhìn của sales assistant)
func (s *assistServiceImpl) loadHistory(ctx context.Context, companyID, conversationID uuid.UUID, limit int) ([]openai.ChatCompletionMessageParamUnion, error) {
	if _, err := s.ownedConversation(ctx, companyID, conversationID); err != nil {
		return nil, err
	}

	recent, err := s.messageRepo.FindRecent(ctx, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("load recent messages: %w", err)
	}

	history := make([]openai.ChatCompletionMessageParamUnion, 0, len(recent))
	for _, msg := range recent {
		if msg.Sender == models.SenderClient {
			history = append(history, openai.UserMessage(msg.Content))
		} else {
			history = append(history, openai.AssistantMessage(msg.Content))
		}
	}
	return history, nil
}

// ownedConversation fetch conversation và check company scope
func (s *assistServiceImpl) ownedConversation(ctx context.Context, companyID, conversationID uuid.UUID) (*models.Conversation, error) {
	conv, err := s.convRepo.FindByID(ctx, conversationID)
	if err != nil {
		return nil, apperrors.ErrNotFound
	}
	if conv.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return conv, nil
}
