package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/kain/internal/config"
	"github.com/mamadbah2/kain/internal/domain/models"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context) (models.StockReport, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.StockReport), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	return m.Called(ctx, req).Error(0)
}

func testConfig() config.Config {
	return config.Config{
		Business:  config.BusinessConfig{Name: "Omah Gorden"},
		WhatsApp:  config.WhatsAppConfig{AlertRecipient: "628999"},
		Reporting: config.ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "UTC"},
	}
}

func TestRunDailyReportSendsAlert(t *testing.T) {
	ctx := context.Background()
	publisher := new(MockPublisher)
	notifier := new(MockNotifier)

	publisher.On("Publish", ctx).Return(models.StockReport{
		BusinessName:  "Omah Gorden",
		NegativeItems: []models.StockSummary{{ItemName: "Wool", TotalOut: 20, Balance: -20}},
	}, nil)
	notifier.On("SendOutbound", ctx, models.OutboundMessageRequest{
		To:      "628999",
		Message: "Negative stock at Omah Gorden: Wool (-20)",
	}).Return(nil)

	s, err := NewScheduler(testConfig(), publisher, notifier, nil)
	require.NoError(t, err)
	require.NoError(t, s.RunDailyReport(ctx))

	notifier.AssertExpectations(t)
}

func TestRunDailyReportWithoutNegativeStock(t *testing.T) {
	ctx := context.Background()
	publisher := new(MockPublisher)
	notifier := new(MockNotifier)
	publisher.On("Publish", ctx).Return(models.StockReport{}, errors.New("sheets offline"))

	s, err := NewScheduler(testConfig(), publisher, notifier, nil)
	require.NoError(t, err)

	assert.EqualError(t, s.RunDailyReport(ctx), "sheets offline")
	notifier.AssertNotCalled(t, "SendOutbound", mock.Anything, mock.Anything)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.Reporting.CronSchedule = "every day"

	s, err := NewScheduler(cfg, new(MockPublisher), nil, nil)
	require.NoError(t, err)
	assert.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	s, err := NewScheduler(testConfig(), new(MockPublisher), nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	s.Stop()
}

func TestNewSchedulerRejectsBadTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.Reporting.Timezone = "Nowhere/Land"
	_, err := NewScheduler(cfg, new(MockPublisher), nil, nil)
	assert.Error(t, err)
}
