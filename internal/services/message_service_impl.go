package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadsync/internal/bot"
	apperrors "leadsync/internal/errors"
	"leadsync/internal/models"
	"leadsync/internal/realtime"
	"leadsync/internal/repositories"
	"leadsync/internal/telegram"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ===========================================================================
// Message Service Implementation
// ===========================================================================

// messageServiceImpl implements MessageService
type messageServiceImpl struct {
	companyRepo repositories.CompanyRepository
	leadRepo    repositories.LeadRepository
	convRepo    repositories.ConversationRepository
	messageRepo repositories.MessageRepository
	engine      bot.Engine
	sender      telegram.Sender
	publisher   realtime.Publisher
	logger      *zap.Logger
}

// NewMessageService creates a new MessageService
func NewMessageService(
	companyRepo repositories.CompanyRepository,
	leadRepo repositories.LeadRepository,
	convRepo repositories.ConversationRepository,
	messageRepo repositories.MessageRepository,
	engine bot.Engine,
	sender telegram.Sender,
	publisher realtime.Publisher,
	logger *zap.Logger,
) MessageService {
	return &messageServiceImpl{
		companyRepo: companyRepo,
		leadRepo:    leadRepo,
		convRepo:    convRepo,
		messageRepo: messageRepo,
		engine:      engine,
		sender:      sender,
		publisher:   publisher,
		logger:      logger,
	}
}

// ProcessInbound xử lý một tin nhắn từ Telegram webhook
func (s *messageServiceImpl) ProcessInbound(ctx context.Context, inbound *InboundMessage) (*ProcessResult, error) {
	result := &ProcessResult{}

	// 1. Resolve company từ bot token
	// Token lạ → bỏ qua lặng lẽ, webhook vẫn ack để Telegram không retry
	company, err := s.companyRepo.FindByBotToken(ctx, inbound.BotToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("webhook for unknown bot token, ignoring")
			result.Ignored = true
			result.IgnoreReason = "unknown bot token"
			return result, nil
		}
		return nil, fmt.Errorf("find company by bot token: %w", err)
	}
	result.CompanyID = company.ID

	// 2. Upsert lead theo (contact, channel, company)
	lead, leadCreated, err := s.resolveLead(ctx, company.ID, inbound)
	if err != nil {
		return nil, err
	}
	result.LeadID = lead.ID
	result.LeadCreated = leadCreated

	// 3. Upsert conversation, mới thì mode = BOT
	conv, convCreated, err := s.convRepo.FindOrCreate(ctx, &models.Conversation{
		CompanyID: company.ID,
		LeadID:    lead.ID,
		Channel:   models.ChannelTelegram,
	})
	if err != nil {
		return nil, fmt.Errorf("find or create conversation: %w", err)
	}
	result.ConversationID = conv.ID
	result.ConversationCreated = convCreated

	// 4. Lưu tin nhắn của khách
	clientMsg := &models.Message{
		ConversationID: conv.ID,
		Sender:         models.SenderClient,
		Content:        inbound.Text,
	}
	if err := s.messageRepo.Create(ctx, clientMsg); err != nil {
		return nil, fmt.Errorf("save client message: %w", err)
	}
	result.MessageID = clientMsg.ID
	s.publishMessage(company.ID, clientMsg, lead)

	// 5. State machine quyết định mode mới + reply
	decision := s.engine.Decide(conv.Mode, inbound.Text, company.Name)
	result.Mode = decision.NextMode
	result.ModeChanged = decision.ModeChanged
	result.Handoff = decision.Handoff
	result.Reply = decision.Reply

	if decision.ModeChanged {
		if decision.Handoff {
			conv.SwitchToHuman(decision.HandoffReason)
		} else {
			conv.SwitchToBot()
		}
	}
	conv.UpdateLastMessage(inbound.Text, time.Now())
	if err := s.convRepo.Update(ctx, conv); err != nil {
		return nil, fmt.Errorf("update conversation: %w", err)
	}
	if decision.ModeChanged {
		s.publishModeChange(company.ID, conv)
	}

	// 6. Lưu reply của bot (SYSTEM)
	systemMsg := &models.Message{
		ConversationID: conv.ID,
		Sender:         models.SenderSystem,
		Content:        decision.Reply,
	}
	if err := s.messageRepo.Create(ctx, systemMsg); err != nil {
		return nil, fmt.Errorf("save system message: %w", err)
	}

	// 7. Gửi reply qua Telegram
	// Gửi thất bại không fail pipeline — reply đã được lưu, trạng thái
	// gửi ghi vào metadata để debug
	if err := s.sender.SendMessage(ctx, company.BotToken(), inbound.ChatID, decision.Reply); err != nil {
		s.logger.Warn("send telegram reply failed",
			zap.Error(err),
			zap.String("conversation_id", conv.ID.String()),
		)
		systemMsg.MarkFailed(err)
	} else {
		systemMsg.MarkDelivered()
		result.ReplySent = true
	}
	if err := s.messageRepo.UpdateMetadata(ctx, systemMsg.ID, systemMsg.Metadata); err != nil {
		s.logger.Warn("update message metadata failed", zap.Error(err))
	}
	s.publishMessage(company.ID, systemMsg, lead)

	// 8. Cập nhật preview với reply của bot
	conv.UpdateLastMessage(decision.Reply, time.Now())
	if err := s.convRepo.Update(ctx, conv); err != nil {
		s.logger.Warn("update conversation preview failed", zap.Error(err))
	}

	s.logger.Info("inbound message processed",
		zap.String("company_id", company.ID.String()),
		zap.String("conversation_id", conv.ID.String()),
		zap.String("mode", string(decision.NextMode)),
		zap.Bool("mode_changed", decision.ModeChanged),
		zap.Bool("lead_created", leadCreated),
	)

	return result, nil
}

// resolveLead upsert lead cho inbound message và refresh thông tin
func (s *messageServiceImpl) resolveLead(ctx context.Context, companyID uuid.UUID, inbound *InboundMessage) (*models.Lead, bool, error) {
	candidate := &models.Lead{
		CompanyID: companyID,
		Contact:   inbound.ChatID,
		Channel:   models.ChannelTelegram,
		Metadata: models.LeadMetadata{
			Source:       "telegram_bot",
			FirstMessage: inbound.Text,
		},
	}
	if inbound.Username != "" {
		candidate.Name = &inbound.Username
	}

	lead, created, err := s.leadRepo.FindOrCreate(ctx, candidate)
	if err != nil {
		return nil, false, fmt.Errorf("find or create lead: %w", err)
	}

	// Refresh hoạt động gần nhất; backfill tên nếu lead cũ chưa có
	lead.UpdateLastSeen()
	if !created && lead.Name == nil && inbound.Username != "" {
		lead.Name = &inbound.Username
	}
	if err := s.leadRepo.Update(ctx, lead); err != nil {
		s.logger.Warn("update lead last seen failed",
			zap.Error(err),
			zap.String("lead_id", lead.ID.String()),
		)
	}

	return lead, created, nil
}

// SendOutbound lưu và gửi tin nhắn từ phía company đến khách
func (s *messageServiceImpl) SendOutbound(ctx context.Context, companyID, conversationID uuid.UUID, content string, sender models.SenderType, senderUserID *uuid.UUID) (*models.Message, error) {
	conv, err := s.findCompanyConversation(ctx, companyID, conversationID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ConversationID: conv.ID,
		Sender:         sender,
		SenderUserID:   senderUserID,
		Content:        content,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("save outbound message: %w", err)
	}

	conv.UpdateLastMessage(content, time.Now())
	if err := s.convRepo.Update(ctx, conv); err != nil {
		s.logger.Warn("update conversation preview failed", zap.Error(err))
	}

	// Dispatch qua Telegram nếu conversation thuộc channel đó
	if conv.Channel == models.ChannelTelegram {
		s.dispatchToTelegram(ctx, conv, msg)
	}

	lead, err := s.leadRepo.FindByID(ctx, conv.LeadID)
	if err != nil {
		lead = nil
	}
	s.publishMessage(companyID, msg, lead)

	return msg, nil
}

// dispatchToTelegram gửi message đến khách qua Telegram Bot API
// Thất bại chỉ ghi vào metadata, message đã lưu vẫn giữ nguyên
func (s *messageServiceImpl) dispatchToTelegram(ctx context.Context, conv *models.Conversation, msg *models.Message) {
	company, err := s.companyRepo.FindByID(ctx, conv.CompanyID)
	if err != nil || !company.HasTelegramBot() {
		s.logger.Warn("cannot dispatch, company has no telegram bot",
			zap.String("conversation_id", conv.ID.String()),
		)
		return
	}

	lead, err := s.leadRepo.FindByID(ctx, conv.LeadID)
	if err != nil {
		s.logger.Warn("cannot dispatch, lead not found",
			zap.Error(err),
			zap.String("conversation_id", conv.ID.String()),
		)
		return
	}

	if err := s.sender.SendMessage(ctx, company.BotToken(), lead.Contact, msg.Content); err != nil {
		s.logger.Warn("send telegram message failed",
			zap.Error(err),
			zap.String("conversation_id", conv.ID.String()),
		)
		msg.MarkFailed(err)
	} else {
		msg.MarkDelivered()
	}
	if err := s.messageRepo.UpdateMetadata(ctx, msg.ID, msg.Metadata); err != nil {
		s.logger.Warn("update message metadata failed", zap.Error(err))
	}
}

// SetMode đổi mode conversation từ dashboard
func (s *messageServiceImpl) SetMode(ctx context.Context, companyID, conversationID uuid.UUID, mode models.ConversationMode) (*models.Conversation, error) {
	if !mode.IsValid() {
		return nil, apperrors.New(apperrors.ErrInvalidInput, "mode must be BOT or HUMAN")
	}

	conv, err := s.findCompanyConversation(ctx, companyID, conversationID)
	if err != nil {
		return nil, err
	}

	if conv.Mode == mode {
		return conv, nil
	}

	if mode == models.ModeHuman {
		conv.SwitchToHuman("manual")
	} else {
		conv.SwitchToBot()
	}
	if err := s.convRepo.Update(ctx, conv); err != nil {
		return nil, fmt.Errorf("update conversation mode: %w", err)
	}

	s.publishModeChange(companyID, conv)

	s.logger.Info("conversation mode changed",
		zap.String("conversation_id", conv.ID.String()),
		zap.String("mode", string(mode)),
	)

	return conv, nil
}

// CaptureWebsiteLead upsert lead + conversation từ public website form
func (s *messageServiceImpl) CaptureWebsiteLead(ctx context.Context, input *WebsiteLeadInput) (*WebsiteLeadResult, error) {
	company, err := s.resolveFormCompany(ctx, input.CompanyID)
	if err != nil {
		return nil, err
	}

	candidate := &models.Lead{
		CompanyID: company.ID,
		Contact:   input.Contact,
		Channel:   models.ChannelWebsite,
		Metadata: models.LeadMetadata{
			Source: "website_form",
		},
	}
	if input.Name != "" {
		candidate.Name = &input.Name
	}

	lead, leadCreated, err := s.leadRepo.FindOrCreate(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("find or create lead: %w", err)
	}

	lead.UpdateLastSeen()
	if !leadCreated && input.Name != "" {
		lead.Name = &input.Name
	}
	if err := s.leadRepo.Update(ctx, lead); err != nil {
		s.logger.Warn("update lead failed",
			zap.Error(err),
			zap.String("lead_id", lead.ID.String()),
		)
	}

	conv, convCreated, err := s.convRepo.FindOrCreate(ctx, &models.Conversation{
		CompanyID: company.ID,
		LeadID:    lead.ID,
		Channel:   models.ChannelWebsite,
	})
	if err != nil {
		return nil, fmt.Errorf("find or create conversation: %w", err)
	}

	s.logger.Info("website lead captured",
		zap.String("company_id", company.ID.String()),
		zap.String("lead_id", lead.ID.String()),
		zap.Bool("created", leadCreated),
	)

	return &WebsiteLeadResult{
		Lead:                lead,
		Conversation:        conv,
		LeadCreated:         leadCreated,
		ConversationCreated: convCreated,
	}, nil
}

// resolveFormCompany tìm company đích cho public form
// Không chỉ định company → dùng company mặc định (tạo sớm nhất)
func (s *messageServiceImpl) resolveFormCompany(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	if companyID != uuid.Nil {
		company, err := s.companyRepo.FindByID(ctx, companyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.New(apperrors.ErrNotFound, "company not found")
			}
			return nil, fmt.Errorf("find company: %w", err)
		}
		return company, nil
	}

	company, err := s.companyRepo.FindDefault(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrNotFound, "no company configured")
		}
		return nil, fmt.Errorf("find default company: %w", err)
	}
	return company, nil
}

// findCompanyConversation fetch conversation và check company scope
// Conversation của company khác trả về not found, không lộ tồn tại
func (s *messageServiceImpl) findCompanyConversation(ctx context.Context, companyID, conversationID uuid.UUID) (*models.Conversation, error) {
	conv, err := s.convRepo.FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	if conv.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return conv, nil
}

// publishMessage đẩy realtime event cho dashboard, best-effort
func (s *messageServiceImpl) publishMessage(companyID uuid.UUID, msg *models.Message, lead *models.Lead) {
	event := &realtime.MessageEvent{
		MessageID:      msg.ID,
		ConversationID: msg.ConversationID,
		Sender:         string(msg.Sender),
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
	}
	if lead != nil {
		event.LeadName = lead.GetDisplayName()
		event.Channel = string(lead.Channel)
	}
	if err := s.publisher.PublishNewMessage(companyID, event); err != nil {
		s.logger.Debug("publish message event failed", zap.Error(err))
	}
}

// publishModeChange đẩy event đổi mode cho dashboard, best-effort
func (s *messageServiceImpl) publishModeChange(companyID uuid.UUID, conv *models.Conversation) {
	event := &realtime.ConversationEvent{
		ConversationID: conv.ID,
		Mode:           string(conv.Mode),
		HandoffReason:  conv.Metadata.HandoffReason,
	}
	if err := s.publisher.PublishConversationUpdate(companyID, event); err != nil {
		s.logger.Debug("publish conversation event failed", zap.Error(err))
	}
}
