package models

// ===========================================================================
// Channel (Kênh liên hệ)
// Kênh mà lead đến từ: Telegram bot hoặc form trên website
// ===========================================================================

// Channel loại kênh liên hệ
type Channel string

const (
	// ChannelTelegram khách chat qua Telegram bot
	ChannelTelegram Channel = "TELEGRAM"

	// ChannelWebsite khách để lại thông tin qua form website
	ChannelWebsite Channel = "WEBSITE"
)

// IsValid kiểm tra channel có hợp lệ không
func (c Channel) IsValid() bool {
	return c == ChannelTelegram || c == ChannelWebsite
}
