package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/kain/internal/domain/models"
	"github.com/mamadbah2/kain/internal/ledger"
	"github.com/mamadbah2/kain/internal/service/inventory"
	"github.com/mamadbah2/kain/internal/service/stock"
	"github.com/mamadbah2/kain/internal/spreadsheet"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxImportBytes caps the size of an uploaded workbook.
const maxImportBytes = 20 << 20

// InventoryService is the presentation-layer contract of the inventory session.
type InventoryService interface {
	Settings() inventory.Settings
	AddTransaction(ctx context.Context, draft models.Draft) (models.Transaction, error)
	Transactions(f models.TransactionFilter) []inventory.TransactionView
	FilteredStock(f models.TransactionFilter) []models.StockSummary
	RunningBalance(id int64) (int, error)
	StockSummary() []models.StockSummary
	ItemStock(itemName string) models.StockSummary
	ItemNames() []string
	ImportWorkbook(ctx context.Context, r io.Reader) (inventory.ImportResult, error)
	ExportWorkbook(ctx context.Context, w io.Writer) (string, error)
}

// InventoryHandler exposes the inventory session over HTTP.
type InventoryHandler struct {
	svc    InventoryService
	logger *zap.Logger
}

// NewInventoryHandler constructs the HTTP handler adapter.
func NewInventoryHandler(svc InventoryService, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{svc: svc, logger: logger}
}

// createTransactionRequest accepts quantity as entered, string or number.
type createTransactionRequest struct {
	Date      string `json:"date"`
	ItemName  string `json:"itemName"`
	Customer  string `json:"customer"`
	Address   string `json:"address"`
	Direction string `json:"direction"`
	Quantity  any    `json:"quantity"`
}

func (r createTransactionRequest) draft() models.Draft {
	var qty string
	switch v := r.Quantity.(type) {
	case nil:
	case string:
		qty = v
	case float64:
		qty = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		qty = "invalid"
	}
	return models.Draft{
		Date:      r.Date,
		ItemName:  r.ItemName,
		Customer:  r.Customer,
		Address:   r.Address,
		Direction: r.Direction,
		Quantity:  qty,
	}
}

// Settings returns the business name and subtitle.
func (h *InventoryHandler) Settings(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Settings())
}

// CreateTransaction appends a user-submitted draft.
func (h *InventoryHandler) CreateTransaction(c *gin.Context) {
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid transaction payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	tx, err := h.svc.AddTransaction(c.Request.Context(), req.draft())
	if err != nil {
		var verr *ledger.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "item name and quantity are required", "fields": verr.Fields})
			return
		}
		h.logger.Error("failed to record transaction", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record transaction"})
		return
	}

	c.JSON(http.StatusCreated, tx)
}

// ListTransactions lists transactions filtered by q, direction and item.
func (h *InventoryHandler) ListTransactions(c *gin.Context) {
	filter := models.TransactionFilter{
		Search:    c.Query("q"),
		Direction: c.DefaultQuery("direction", models.FilterAll),
		Item:      c.DefaultQuery("item", models.FilterAll),
	}

	resp := gin.H{
		"transactions":  h.svc.Transactions(filter),
		"filteredStock": h.svc.FilteredStock(filter),
	}
	if filter.Item != models.FilterAll && filter.Item != "" {
		resp["itemStock"] = h.svc.ItemStock(filter.Item)
	}
	c.JSON(http.StatusOK, resp)
}

// RunningBalance returns the item balance as of one transaction.
func (h *InventoryHandler) RunningBalance(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}

	balance, err := h.svc.RunningBalance(id)
	if err != nil {
		if errors.Is(err, stock.ErrTransactionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
			return
		}
		h.logger.Error("failed to compute balance", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute balance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "runningBalance": balance, "negative": balance < 0})
}

// Items lists the distinct item names for selectors.
func (h *InventoryHandler) Items(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.svc.ItemNames()})
}

// Stock returns totals for every item.
func (h *InventoryHandler) Stock(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stock": h.svc.StockSummary()})
}

// ItemStock returns the stock card of one item.
func (h *InventoryHandler) ItemStock(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ItemStock(c.Param("item")))
}

// Export streams the report workbook as an attachment.
func (h *InventoryHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	name, err := h.svc.ExportWorkbook(c.Request.Context(), &buf)
	if err != nil {
		h.logger.Error("failed to export workbook", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export workbook"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Import appends every row of an uploaded workbook (multipart field "file").
func (h *InventoryHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxImportBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file is too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("failed to open upload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read file"})
		return
	}
	defer func() { _ = file.Close() }()

	result, err := h.svc.ImportWorkbook(c.Request.Context(), file)
	if err != nil {
		if errors.Is(err, spreadsheet.ErrImportParse) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "error importing file, make sure the format matches the export"})
			return
		}
		h.logger.Error("failed to import workbook", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to import workbook"})
		return
	}

	c.JSON(http.StatusOK, result)
}
