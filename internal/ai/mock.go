package ai

import (
	"context"
	"sync"

	"github.com/openai/openai-go"
)

// ===========================================================================
// MockClient dùng để testing
// Không gọi OpenAI thật, lưu lại messages và trả về reply cố định
// ===========================================================================

// MockClient implement Client cho mục đích testing
type MockClient struct {
	mu sync.Mutex

	// Disabled nếu true, Enabled() trả về false
	Disabled bool

	// Reply text trả về từ Complete
	Reply string

	// Err nếu set, Complete trả về lỗi này
	Err error

	calls [][]openai.ChatCompletionMessageParamUnion
}

// NewMockClient tạo MockClient trả về reply cố định
func NewMockClient(reply string) *MockClient {
	return &MockClient{Reply: reply}
}

// Enabled trả về trạng thái cấu hình giả lập
func (m *MockClient) Enabled() bool {
	return !m.Disabled
}

// Complete lưu lại messages và trả về reply cố định
func (m *MockClient) Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, opts CompletionOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Disabled {
		return "", ErrDisabled
	}
	m.calls = append(m.calls, messages)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

// Calls trả về các lần gọi Complete đã ghi nhận
func (m *MockClient) Calls() [][]openai.ChatCompletionMessageParamUnion {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// CallCount số lần Complete được gọi
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
