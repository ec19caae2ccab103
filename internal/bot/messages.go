package bot

import "fmt"

// ===========================================================================
// Bot Messages
// Các tin nhắn cố định bot gửi cho khách (Markdown cho Telegram)
// ===========================================================================

// HandoffMessage tin nhắn xác nhận đã chuyển cho agent
const HandoffMessage = "👨‍💼 You’re now connected to a human agent. Please type your question."

// MenuMessage tin nhắn mặc định khi bot không hiểu yêu cầu
const MenuMessage = `🤖 Thanks for your message!

Ask about:
• Products
• Pricing
• Support

Or type *agent* to talk to a human.`

// GreetingMessage tạo tin nhắn chào mừng với tên company
func GreetingMessage(companyName string) string {
	return fmt.Sprintf(`👋 Welcome to *%s*!

How can we help you?
• Products
• Pricing
• Support
• 👨‍💼 Talk to agent`, companyName)
}
