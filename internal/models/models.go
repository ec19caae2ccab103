package models

// ===========================================================================
// Models Index
// Cung cấp danh sách tất cả models cho GORM AutoMigrate
// ===========================================================================

// AllModels trả về danh sách tất cả models
// Dùng cho database.AutoMigrate() để tự động tạo/update tables
func AllModels() []interface{} {
	return []interface{}{
		&Company{},      // Doanh nghiệp (tenant)
		&User{},         // Người dùng hệ thống
		&Lead{},         // Khách hàng tiềm năng
		&Conversation{}, // Cuộc hội thoại
		&Message{},      // Tin nhắn
		&WebhookEvent{}, // Sự kiện webhook
	}
}
