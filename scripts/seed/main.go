//go:build ignore

// ===========================================================================
// Script tạo seed data cho development/testing
// Chạy: go run scripts/seed/main.go
// ===========================================================================

package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"leadsync/internal/config"
	"leadsync/internal/database"
	"leadsync/internal/models"
	"leadsync/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	fmt.Println("🌱 Bắt đầu seed data...")

	// Load config
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Không thể load config: %v", err)
	}

	// Khởi tạo logger
	zapLog, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Không thể tạo logger: %v", err)
	}

	// Kết nối database
	db, err := database.NewConnection(&cfg.Database, zapLog)
	if err != nil {
		log.Fatalf("Không thể kết nối database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Không thể migrate database: %v", err)
	}

	fmt.Println("✅ Đã kết nối database")

	// =========================================================================
	// 1. Tạo Company
	// =========================================================================
	company := &models.Company{
		Name: "LeadSync Demo Store",
		Settings: models.CompanySettings{
			Timezone:   "Asia/Ho_Chi_Minh",
			Currency:   "VND",
			BotEnabled: true,
			Language:   "vi",
		},
		IsActive: true,
	}
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		company.AttachTelegramBot(token)
	}

	// Kiểm tra đã tồn tại chưa
	var existingCompany models.Company
	if err := db.Where("name = ?", company.Name).First(&existingCompany).Error; err == nil {
		fmt.Println("⚠️  Company 'LeadSync Demo Store' đã tồn tại, sử dụng ID hiện có")
		company = &existingCompany
	} else {
		if err := db.Create(company).Error; err != nil {
			log.Fatalf("Không thể tạo company: %v", err)
		}
		fmt.Printf("✅ Đã tạo Company: %s (ID: %s)\n", company.Name, company.ID)
	}

	// =========================================================================
	// 2. Tạo Users
	// =========================================================================
	users := []*models.User{
		{
			CompanyID: company.ID,
			Email:     "owner@demo.com",
			Name:      "Owner Demo",
			Role:      models.RoleOwner,
			IsActive:  true,
		},
		{
			CompanyID: company.ID,
			Email:     "agent1@demo.com",
			Name:      "Agent Một",
			Role:      models.RoleAgent,
			IsActive:  true,
		},
	}

	for _, user := range users {
		if err := user.SetPassword("Password123!"); err != nil {
			zapLog.Warn("Không thể set password", zap.Error(err))
		}

		var existing models.User
		if err := db.Where("company_id = ? AND email = ?", company.ID, user.Email).First(&existing).Error; err == nil {
			fmt.Printf("⚠️  User '%s' đã tồn tại\n", user.Email)
			continue
		}

		if err := db.Create(user).Error; err != nil {
			zapLog.Warn("Không thể tạo user", zap.String("email", user.Email), zap.Error(err))
		} else {
			fmt.Printf("✅ Đã tạo User: %s (%s)\n", user.Name, user.Role)
		}
	}

	// =========================================================================
	// 3. Tạo Website Lead + Conversation + Messages mẫu
	// =========================================================================
	leadName := "Khách Website"
	lead := &models.Lead{
		CompanyID: company.ID,
		Contact:   "khach@example.com",
		Channel:   models.ChannelWebsite,
		Name:      &leadName,
		Metadata: models.LeadMetadata{
			Source: "website_form",
		},
	}

	var existingLead models.Lead
	if err := db.Where("company_id = ? AND channel = ? AND contact = ?",
		company.ID, models.ChannelWebsite, lead.Contact).First(&existingLead).Error; err == nil {
		fmt.Println("⚠️  Lead mẫu đã tồn tại")
		lead = &existingLead
	} else {
		if err := db.Create(lead).Error; err != nil {
			log.Fatalf("Không thể tạo lead: %v", err)
		}
		fmt.Printf("✅ Đã tạo Lead: %s (ID: %s)\n", lead.GetDisplayName(), lead.ID)
	}

	conversation := &models.Conversation{
		CompanyID: company.ID,
		LeadID:    lead.ID,
		Channel:   models.ChannelWebsite,
		Mode:      models.ModeBot,
	}

	var existingConv models.Conversation
	if err := db.Where("company_id = ? AND lead_id = ? AND channel = ?",
		company.ID, lead.ID, models.ChannelWebsite).First(&existingConv).Error; err == nil {
		fmt.Println("⚠️  Conversation mẫu đã tồn tại")
		conversation = &existingConv
	} else {
		if err := db.Create(conversation).Error; err != nil {
			log.Fatalf("Không thể tạo conversation: %v", err)
		}
		fmt.Printf("✅ Đã tạo Conversation (ID: %s)\n", conversation.ID)

		messages := []*models.Message{
			{
				ConversationID: conversation.ID,
				Sender:         models.SenderClient,
				Content:        "Cho mình hỏi về tai nghe bluetooth",
			},
			{
				ConversationID: conversation.ID,
				Sender:         models.SenderSystem,
				Content:        "🤖 Thanks for your message!\n\nAsk about:\n• Products\n• Pricing\n• Support\n\nOr type *agent* to talk to a human.",
			},
		}
		for _, msg := range messages {
			if err := db.Create(msg).Error; err != nil {
				zapLog.Warn("Không thể tạo message", zap.Error(err))
			}
		}
		conversation.UpdateLastMessage(messages[len(messages)-1].Content, time.Now())
		if err := db.Save(conversation).Error; err != nil {
			zapLog.Warn("Không thể cập nhật conversation", zap.Error(err))
		}
		fmt.Printf("✅ Đã tạo %d messages mẫu\n", len(messages))
	}

	// =========================================================================
	// Summary
	// =========================================================================
	fmt.Println("")
	fmt.Println("========================================")
	fmt.Println("🎉 Seed data hoàn tất!")
	fmt.Println("========================================")
	fmt.Println("")
	fmt.Println("📝 Thông tin đăng nhập:")
	fmt.Println("   Email:    owner@demo.com")
	fmt.Println("   Password: Password123!")
	fmt.Println("")
	fmt.Printf("🔗 Company ID: %s\n", company.ID)
	fmt.Printf("🔗 Conversation ID: %s\n", conversation.ID)
	fmt.Println("")
	fmt.Println("💡 Test public lead form:")
	fmt.Println(`   curl -X POST http://localhost:8080/api/v1/public/leads \`)
	fmt.Println(`     -H "Content-Type: application/json" \`)
	fmt.Printf(`     -d '{"company_id":"%s","name":"Tester","contact":"tester@example.com"}'`, company.ID)
	fmt.Println("")

	os.Exit(0)
}
