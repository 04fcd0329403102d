package contract

import (
	"context"
	"time"

	"github.com/huangsam/devpulse/schema"
	"github.com/stretchr/testify/mock"
)

// MockGitClient is a mock implementation of GitClient for testing.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	mockArgs := []any{ctx, repoPath}
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetRepoRoot implements the GitClient interface.
func (m *MockGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	ret := m.Called(ctx, contextPath)
	return ret.String(0), ret.Error(1)
}

// GetRepoHash implements the GitClient interface.
func (m *MockGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// GetCommitLog implements the GitClient interface.
func (m *MockGitClient) GetCommitLog(ctx context.Context, repoPath string, startTime, endTime time.Time) ([]byte, error) {
	ret := m.Called(ctx, repoPath, startTime, endTime)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// MockHarvester is a mock implementation of Harvester for testing.
type MockHarvester struct {
	mock.Mock
}

var _ Harvester = &MockHarvester{} // Compile-time check

// Fetch implements the Harvester interface.
func (m *MockHarvester) Fetch(ctx context.Context, windowStart, windowEnd time.Time) (schema.Activity, error) {
	ret := m.Called(ctx, windowStart, windowEnd)
	activity, _ := ret.Get(0).(schema.Activity)
	return activity, ret.Error(1)
}

// MockNarrator is a mock implementation of Narrator for testing.
type MockNarrator struct {
	mock.Mock
}

var _ Narrator = &MockNarrator{} // Compile-time check

// Generate implements the Narrator interface.
func (m *MockNarrator) Generate(ctx context.Context, prompt schema.PromptContext) (string, error) {
	ret := m.Called(ctx, prompt)
	return ret.String(0), ret.Error(1)
}

// MockChartRenderer is a mock implementation of ChartRenderer for testing.
type MockChartRenderer struct {
	mock.Mock
}

var _ ChartRenderer = &MockChartRenderer{} // Compile-time check

// Render implements the ChartRenderer interface.
func (m *MockChartRenderer) Render(ctx context.Context, input schema.ChartInput) ([]schema.Chart, error) {
	ret := m.Called(ctx, input)
	charts, _ := ret.Get(0).([]schema.Chart)
	return charts, ret.Error(1)
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	ret := m.Called(key)
	value, _ := ret.Get(0).([]byte)
	return value, ret.Int(1), ret.Get(2).(int64), ret.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, value []byte, version int, timestamp int64) error {
	return m.Called(key, value, version, timestamp).Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	ret := m.Called()
	return ret.Get(0).(schema.CacheStatus), ret.Error(1)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	return m.Called().Error(0)
}

// MockReportStore is a mock implementation of ReportStore for testing.
type MockReportStore struct {
	mock.Mock
}

var _ ReportStore = &MockReportStore{} // Compile-time check

// SaveMetricsSnapshot implements the ReportStore interface.
func (m *MockReportStore) SaveMetricsSnapshot(metrics schema.Metrics, timeRange schema.TimeRange) error {
	return m.Called(metrics, timeRange).Error(0)
}

// SaveConversation implements the ReportStore interface.
func (m *MockReportStore) SaveConversation(agentName, prompt, response string) error {
	return m.Called(agentName, prompt, response).Error(0)
}

// RecentSnapshots implements the ReportStore interface.
func (m *MockReportStore) RecentSnapshots(limit int) ([]schema.SnapshotRecord, error) {
	ret := m.Called(limit)
	records, _ := ret.Get(0).([]schema.SnapshotRecord)
	return records, ret.Error(1)
}

// GetAllSnapshots implements the ReportStore interface.
func (m *MockReportStore) GetAllSnapshots() ([]schema.SnapshotRecord, error) {
	ret := m.Called()
	records, _ := ret.Get(0).([]schema.SnapshotRecord)
	return records, ret.Error(1)
}

// GetAllConversations implements the ReportStore interface.
func (m *MockReportStore) GetAllConversations() ([]schema.ConversationRecord, error) {
	ret := m.Called()
	records, _ := ret.Get(0).([]schema.ConversationRecord)
	return records, ret.Error(1)
}

// GetStatus implements the ReportStore interface.
func (m *MockReportStore) GetStatus() (schema.ReportStatus, error) {
	ret := m.Called()
	return ret.Get(0).(schema.ReportStatus), ret.Error(1)
}

// Close implements the ReportStore interface.
func (m *MockReportStore) Close() error {
	return m.Called().Error(0)
}
