package services

import (
	"context"
	"sort"
	"time"

	"leadsync/internal/models"
	"leadsync/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ===========================================================================
// In-memory repository fakes cho service tests
// Hành vi bám theo GORM implementations: not found trả về
// gorm.ErrRecordNotFound, FindOrCreate idempotent theo unique keys
// ===========================================================================

// --- Company ---

type fakeCompanyRepo struct {
	companies map[uuid.UUID]*models.Company
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{companies: make(map[uuid.UUID]*models.Company)}
}

func (r *fakeCompanyRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	if c, ok := r.companies[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCompanyRepo) FindByBotToken(ctx context.Context, token string) (*models.Company, error) {
	for _, c := range r.companies {
		if c.IsActive && c.BotToken() == token {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCompanyRepo) FindDefault(ctx context.Context) (*models.Company, error) {
	var all []*models.Company
	for _, c := range r.companies {
		if c.IsActive {
			all = append(all, c)
		}
	}
	if len(all) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return all[0], nil
}

func (r *fakeCompanyRepo) Create(ctx context.Context, company *models.Company) error {
	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}
	if company.CreatedAt.IsZero() {
		company.CreatedAt = time.Now()
	}
	r.companies[company.ID] = company
	return nil
}

func (r *fakeCompanyRepo) Update(ctx context.Context, company *models.Company) error {
	r.companies[company.ID] = company
	return nil
}

// --- User ---

type fakeUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, companyID uuid.UUID, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email && (companyID == uuid.Nil || u.CompanyID == companyID) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByCompany(ctx context.Context, companyID uuid.UUID, opts repositories.FindOptions) ([]models.User, int64, error) {
	var out []models.User
	for _, u := range r.users {
		if u.CompanyID == companyID {
			out = append(out, *u)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

// --- Lead ---

type fakeLeadRepo struct {
	leads []*models.Lead
}

func newFakeLeadRepo() *fakeLeadRepo { return &fakeLeadRepo{} }

func (r *fakeLeadRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	for _, l := range r.leads {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeLeadRepo) FindByContact(ctx context.Context, companyID uuid.UUID, channel models.Channel, contact string) (*models.Lead, error) {
	for _, l := range r.leads {
		if l.CompanyID == companyID && l.Channel == channel && l.Contact == contact {
			return l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeLeadRepo) FindByCompany(ctx context.Context, companyID uuid.UUID, opts repositories.FindOptions) ([]models.Lead, int64, error) {
	var out []models.Lead
	for _, l := range r.leads {
		if l.CompanyID == companyID {
			out = append(out, *l)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeLeadRepo) FindOrCreate(ctx context.Context, lead *models.Lead) (*models.Lead, bool, error) {
	if existing, err := r.FindByContact(ctx, lead.CompanyID, lead.Channel, lead.Contact); err == nil {
		return existing, false, nil
	}
	lead.ID = uuid.New()
	lead.CreatedAt = time.Now()
	r.leads = append(r.leads, lead)
	return lead, true, nil
}

func (r *fakeLeadRepo) Update(ctx context.Context, lead *models.Lead) error {
	for i, l := range r.leads {
		if l.ID == lead.ID {
			r.leads[i] = lead
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// --- Conversation ---

type fakeConversationRepo struct {
	conversations []*models.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo { return &fakeConversationRepo{} }

func (r *fakeConversationRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	for _, c := range r.conversations {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeConversationRepo) FindByCompany(ctx context.Context, companyID uuid.UUID, opts repositories.FindOptions) ([]models.Conversation, int64, error) {
	var out []models.Conversation
	for _, c := range r.conversations {
		if c.CompanyID == companyID {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeConversationRepo) FindByLead(ctx context.Context, leadID, companyID uuid.UUID, channel models.Channel) (*models.Conversation, error) {
	for _, c := range r.conversations {
		if c.LeadID == leadID && c.CompanyID == companyID && c.Channel == channel {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeConversationRepo) FindOrCreate(ctx context.Context, conv *models.Conversation) (*models.Conversation, bool, error) {
	if existing, err := r.FindByLead(ctx, conv.LeadID, conv.CompanyID, conv.Channel); err == nil {
		return existing, false, nil
	}
	conv.ID = uuid.New()
	conv.CreatedAt = time.Now()
	if conv.Mode == "" {
		conv.Mode = models.ModeBot
	}
	r.conversations = append(r.conversations, conv)
	return conv, true, nil
}

func (r *fakeConversationRepo) Update(ctx context.Context, conv *models.Conversation) error {
	for i, c := range r.conversations {
		if c.ID == conv.ID {
			r.conversations[i] = conv
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// --- Message ---

type fakeMessageRepo struct {
	messages []*models.Message
}

func newFakeMessageRepo() *fakeMessageRepo { return &fakeMessageRepo{} }

func (r *fakeMessageRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	for _, m := range r.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMessageRepo) FindByConversation(ctx context.Context, conversationID uuid.UUID, opts repositories.FindOptions) ([]models.Message, int64, error) {
	var out []models.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, *m)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeMessageRepo) FindRecent(ctx context.Context, conversationID uuid.UUID, limit int) ([]models.Message, error) {
	var out []models.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, *m)
		}
	}
	// Giữ thứ tự insert (cũ → mới), cắt về N messages cuối
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *fakeMessageRepo) Create(ctx context.Context, msg *models.Message) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	r.messages = append(r.messages, msg)
	return nil
}

func (r *fakeMessageRepo) UpdateMetadata(ctx context.Context, id uuid.UUID, metadata models.MessageMetadata) error {
	for _, m := range r.messages {
		if m.ID == id {
			m.Metadata = metadata
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// byConversation lọc messages của một conversation theo thứ tự insert
func (r *fakeMessageRepo) byConversation(conversationID uuid.UUID) []*models.Message {
	var out []*models.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out
}
