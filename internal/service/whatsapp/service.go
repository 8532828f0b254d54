package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/kain/internal/config"
	"github.com/mamadbah2/kain/internal/domain/models"
	"github.com/mamadbah2/kain/internal/ledger"
	"github.com/mamadbah2/kain/internal/service/commands"
	client "github.com/mamadbah2/kain/pkg/clients/whatsapp"
)

// MessagingService describes the operations the HTTP layer and the scheduler can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	dispatcher commands.Dispatcher
	logger     *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, dispatcher commands.Dispatcher, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:        cfg,
		client:     client,
		dispatcher: dispatcher,
		logger:     logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

var commandUsage = map[models.CommandType]models.CommandHelp{
	models.CommandIn: {
		Title:   "Stock In",
		Example: "Record incoming fabric, e.g. /in 100 Katun Premium.",
	},
	models.CommandOut: {
		Title:   "Stock Out",
		Example: "Record outgoing fabric, e.g. /out 30 Katun Premium @Bu Sari.",
	},
	models.CommandStock: {
		Title:   "Stock",
		Example: "Show all balances with /stock, or one item with /stock Katun Premium.",
	},
	models.CommandUnknown: {
		Title:   "Command Help",
		Example: "Unknown command. Supported: /in, /out, /stock.",
	},
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook processes inbound webhook payloads.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	text := extractMessageText(msg)
	if text == "" {
		return errors.New("empty message body")
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	reply := s.reply(ctx, cmd, msg.From)
	return s.SendOutbound(ctx, models.OutboundMessageRequest{To: msg.From, Message: reply})
}

// reply turns the dispatcher outcome into the message sent back to the user.
func (s *MetaWhatsAppService) reply(ctx context.Context, cmd models.Command, sender string) string {
	result, err := s.dispatcher.HandleCommand(ctx, cmd, sender)
	if err == nil {
		return result
	}

	usage, ok := commandUsage[cmd.Type]
	if !ok {
		usage = commandUsage[models.CommandUnknown]
	}

	var verr *ledger.ValidationError
	switch {
	case errors.As(err, &verr):
		return fmt.Sprintf("%s\n%s\n%s", usage.Title, verr.Error(), usage.Example)
	case errors.Is(err, commands.ErrInvalidArguments), errors.Is(err, commands.ErrUnsupportedCommand):
		return fmt.Sprintf("%s\n%s", usage.Title, usage.Example)
	default:
		s.logger.Error("command failed", zap.Error(err), zap.String("command", string(cmd.Type)))
		return "Sorry, the command could not be processed."
	}
}

// SendOutbound lets internal operators and the scheduler push notifications.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         req.To,
		Body:       req.Message,
		PreviewURL: req.PreviewURL,
	})
	return err
}

func extractMessageText(msg models.InboundMessage) string {
	if msg.Text != nil {
		return msg.Text.Body
	}

	if msg.Interactive != nil {
		if msg.Interactive.ButtonReply != nil {
			return msg.Interactive.ButtonReply.ID
		}
		if msg.Interactive.ListReply != nil {
			return msg.Interactive.ListReply.ID
		}
	}

	return ""
}
