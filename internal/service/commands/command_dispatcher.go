package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/kain/internal/domain/models"
	"github.com/mamadbah2/kain/internal/service/reporting"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not yet support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

// Inventory is the part of the inventory session the dispatcher drives.
type Inventory interface {
	AddTransaction(ctx context.Context, draft models.Draft) (models.Transaction, error)
	StockSummary() []models.StockSummary
	ItemStock(itemName string) models.StockSummary
	ItemNames() []string
}

// Dispatcher executes parsed commands against the inventory.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	inventory    Inventory
	businessName string
	logger       *zap.Logger
	now          func() time.Time
}

// NewService constructs a command dispatcher.
func NewService(inventory Inventory, businessName string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		inventory:    inventory,
		businessName: businessName,
		logger:       logger,
		now:          time.Now,
	}
}

// HandleCommand runs the command and returns the reply text.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandIn, models.CommandOut:
		draft, err := buildDraft(cmd)
		if err != nil {
			return "", err
		}
		tx, err := s.inventory.AddTransaction(ctx, draft)
		if err != nil {
			return "", err
		}
		card := s.inventory.ItemStock(tx.ItemName)
		return fmt.Sprintf("Recorded %s %d %s.\n%s", tx.Direction, tx.Quantity, tx.ItemName, reporting.FormatItem(card)), nil
	case models.CommandStock:
		if len(cmd.Args) == 0 {
			return reporting.FormatSummary(s.businessName, s.now(), s.inventory.StockSummary()), nil
		}
		return reporting.FormatItem(s.inventory.ItemStock(s.resolveItem(strings.Join(cmd.Args, " ")))), nil
	default:
		return "", ErrUnsupportedCommand
	}
}

// resolveItem maps a typed name onto the stored spelling of the same item.
func (s *Service) resolveItem(name string) string {
	key := models.ItemKey(name)
	for _, known := range s.inventory.ItemNames() {
		if models.ItemKey(known) == key {
			return known
		}
	}
	return name
}

// buildDraft reads "<qty> <item...> [@customer...]".
func buildDraft(cmd models.Command) (models.Draft, error) {
	if len(cmd.Args) < 2 {
		return models.Draft{}, ErrInvalidArguments
	}

	item := make([]string, 0, len(cmd.Args))
	customer := make([]string, 0)
	for i, arg := range cmd.Args[1:] {
		if strings.HasPrefix(arg, "@") {
			customer = append(customer, strings.TrimPrefix(arg, "@"))
			customer = append(customer, cmd.Args[i+2:]...)
			break
		}
		item = append(item, arg)
	}
	if len(item) == 0 {
		return models.Draft{}, ErrInvalidArguments
	}

	direction := models.DirectionIn
	if cmd.Type == models.CommandOut {
		direction = models.DirectionOut
	}

	return models.Draft{
		ItemName:  strings.Join(item, " "),
		Customer:  strings.TrimSpace(strings.Join(customer, " ")),
		Direction: string(direction),
		Quantity:  cmd.Args[0],
	}, nil
}
