package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mamadbah2/kain/internal/domain/models"
)

type MockMessaging struct {
	mock.Mock
}

func (m *MockMessaging) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	args := m.Called(mode, verifyToken, challenge)
	return args.String(0), args.Error(1)
}

func (m *MockMessaging) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	return m.Called(ctx, payload).Error(0)
}

func (m *MockMessaging) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	return m.Called(ctx, req).Error(0)
}

func webhookEngine(svc *MockMessaging) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewWebhookHandler(svc, nil)
	r := gin.New()
	r.GET("/webhook", h.Verify)
	r.POST("/webhook", h.Receive)
	r.POST("/send", h.SendMessage)
	return r
}

func serve(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestVerify(t *testing.T) {
	svc := new(MockMessaging)
	svc.On("VerifyWebhookToken", "subscribe", "secret", "42").Return("42", nil)
	svc.On("VerifyWebhookToken", "subscribe", "wrong", "42").Return("", errors.New("token mismatch"))
	r := webhookEngine(svc)

	rec := serve(r, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=secret&hub.challenge=42", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", rec.Body.String())

	rec = serve(r, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=42", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReceiveAcknowledgesFailures(t *testing.T) {
	svc := new(MockMessaging)
	svc.On("HandleWebhook", mock.Anything, mock.AnythingOfType("models.WebhookPayload")).Return(errors.New("send failed"))
	r := webhookEngine(svc)

	rec := serve(r, http.MethodPost, "/webhook", `{"object":"whatsapp_business_account","entry":[]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)

	rec = serve(r, http.MethodPost, "/webhook", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendMessage(t *testing.T) {
	svc := new(MockMessaging)
	ok := models.OutboundMessageRequest{To: "6281", Message: "Katun restocked"}
	failing := models.OutboundMessageRequest{To: "6282", Message: "hello"}
	svc.On("SendOutbound", mock.Anything, ok).Return(nil)
	svc.On("SendOutbound", mock.Anything, failing).Return(errors.New("api down"))
	r := webhookEngine(svc)

	assert.Equal(t, http.StatusAccepted, serve(r, http.MethodPost, "/send", `{"to":"6281","message":"Katun restocked"}`).Code)
	assert.Equal(t, http.StatusBadGateway, serve(r, http.MethodPost, "/send", `{"to":"6282","message":"hello"}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/send", `{"to":"6283"}`).Code)
}
