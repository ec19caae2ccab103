package bot

import (
	"leadsync/internal/models"

	"go.uber.org/zap"
)

// ===========================================================================
// Conversation Engine
// State machine hai trạng thái (BOT/HUMAN) quyết định cách trả lời
// mỗi inbound message của khách
//
// Quy tắc, đánh giá theo đúng thứ tự:
//  1. Mode HUMAN + bất kỳ tin nhắn nào → về BOT, gửi greeting
//  2. Mode BOT + khách yêu cầu agent   → sang HUMAN, gửi handoff ack
//  3. Mode BOT, không match            → giữ BOT, gửi menu
//
// Lưu ý rule 1: mọi tin nhắn của khách khi đang ở HUMAN đều kéo hội
// thoại về BOT ngay lập tức. Hành vi này được giữ nguyên theo sản phẩm
// đang chạy; muốn thoát HUMAN theo cách có kiểm soát thì agent dùng
// endpoint đổi mode trên dashboard
// ===========================================================================

// Decision kết quả xử lý một inbound message
type Decision struct {
	// NextMode mode của conversation sau tin nhắn này
	NextMode models.ConversationMode

	// ModeChanged mode có thay đổi so với trước không
	ModeChanged bool

	// Reply nội dung bot trả lời khách
	Reply string

	// Handoff true khi tin nhắn này kích hoạt chuyển sang HUMAN
	Handoff bool

	// HandoffReason lý do handoff (nội dung khách gõ)
	HandoffReason string
}

// Engine interface cho conversation state machine
type Engine interface {
	// Decide đánh giá inbound text với mode hiện tại, trả về mode mới
	// và tin nhắn trả lời. Deterministic: cùng input luôn cho cùng output
	Decide(currentMode models.ConversationMode, text string, companyName string) Decision
}

// ===========================================================================
// Engine Implementation
// ===========================================================================

// engine triển khai Engine
type engine struct {
	intents IntentDetector
	logger  *zap.Logger
}

// NewEngine tạo instance mới của Engine
func NewEngine(intents IntentDetector, logger *zap.Logger) Engine {
	return &engine{intents: intents, logger: logger}
}

// Decide đánh giá inbound text với mode hiện tại
func (e *engine) Decide(currentMode models.ConversationMode, text string, companyName string) Decision {
	// Rule 1: đang HUMAN → mọi tin nhắn đều reset về BOT + greeting
	if currentMode == models.ModeHuman {
		e.logger.Debug("conversation reset to bot mode",
			zap.String("company", companyName),
		)
		return Decision{
			NextMode:    models.ModeBot,
			ModeChanged: true,
			Reply:       GreetingMessage(companyName),
		}
	}

	// Rule 2: đang BOT + khách yêu cầu agent → chuyển HUMAN + handoff ack
	if e.intents.WantsAgent(text) {
		e.logger.Debug("handoff to human agent requested",
			zap.String("company", companyName),
		)
		return Decision{
			NextMode:      models.ModeHuman,
			ModeChanged:   true,
			Reply:         HandoffMessage,
			Handoff:       true,
			HandoffReason: text,
		}
	}

	// Rule 3: giữ BOT, trả lời menu mặc định
	return Decision{
		NextMode: models.ModeBot,
		Reply:    MenuMessage,
	}
}
