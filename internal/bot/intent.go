package bot

import "regexp"

// ===========================================================================
// Intent Detector
// Phát hiện ý định của khách hàng từ nội dung tin nhắn
// Tách thành interface để có thể thay bằng AI classifier sau này
// ===========================================================================

// IntentDetector interface phát hiện ý định muốn gặp agent
type IntentDetector interface {
	// WantsAgent kiểm tra khách có muốn nói chuyện với người thật không
	WantsAgent(text string) bool
}

// ===========================================================================
// Keyword Intent Detector Implementation
// ===========================================================================

// agentKeywordPattern match các từ khóa yêu cầu gặp agent
// Case-insensitive, match substring (VD: "I need an agent please")
var agentKeywordPattern = regexp.MustCompile(`(?i)agent|human|support`)

// keywordIntentDetector triển khai IntentDetector bằng keyword matching
type keywordIntentDetector struct{}

// NewKeywordIntentDetector tạo intent detector dựa trên keywords
func NewKeywordIntentDetector() IntentDetector {
	return &keywordIntentDetector{}
}

// WantsAgent kiểm tra text có chứa keyword yêu cầu agent không
func (d *keywordIntentDetector) WantsAgent(text string) bool {
	return agentKeywordPattern.MatchString(text)
}
