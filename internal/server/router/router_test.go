package router

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mamadbah2/kain/internal/config"
	"github.com/mamadbah2/kain/internal/ledger"
	"github.com/mamadbah2/kain/internal/server/handlers"
	"github.com/mamadbah2/kain/internal/service/inventory"
	"github.com/mamadbah2/kain/internal/service/reporting"
)

type RouterTestSuite struct {
	suite.Suite
	engine *gin.Engine
}

func newEngine(t require.TestingT, rate string) *gin.Engine {
	svc := inventory.NewService(ledger.New(), inventory.Settings{BusinessName: "Omah Gorden", Subtitle: "Sistem Inventory Kain"}, nil)
	reports := handlers.NewReportHandler(reporting.NewService(svc, nil, nil, "Omah Gorden", nil), nil)
	engine, err := New(config.ServerConfig{RateLimit: rate, AllowedOrigins: []string{"*"}}, handlers.NewInventoryHandler(svc, nil), reports, nil, nil)
	require.NoError(t, err)
	return engine
}

func (suite *RouterTestSuite) SetupTest() {
	suite.engine = newEngine(suite.T(), "1000-M")
}

func (suite *RouterTestSuite) do(method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	suite.engine.ServeHTTP(rec, req)
	return rec
}

func (suite *RouterTestSuite) postJSON(path, body string) *httptest.ResponseRecorder {
	return suite.do(http.MethodPost, path, []byte(body), "application/json")
}

func (suite *RouterTestSuite) decode(rec *httptest.ResponseRecorder, out any) {
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), out))
}

func (suite *RouterTestSuite) upload(data []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "import.xlsx")
	suite.Require().NoError(err)
	_, err = part.Write(data)
	suite.Require().NoError(err)
	suite.Require().NoError(w.Close())
	return suite.do(http.MethodPost, "/api/import", body.Bytes(), w.FormDataContentType())
}

func (suite *RouterTestSuite) TestHealthAndSettings() {
	rec := suite.do(http.MethodGet, "/healthz", nil, "")
	suite.Equal(http.StatusOK, rec.Code)
	suite.NotEmpty(rec.Header().Get(requestIDHeader))

	rec = suite.do(http.MethodGet, "/api/settings", nil, "")
	suite.Equal(http.StatusOK, rec.Code)
	suite.JSONEq(`{"appName":"Omah Gorden","subtitle":"Sistem Inventory Kain"}`, rec.Body.String())
}

func (suite *RouterTestSuite) TestCreateAndListTransactions() {
	rec := suite.postJSON("/api/transactions", `{"itemName":"Cotton","direction":"IN","quantity":100}`)
	suite.Require().Equal(http.StatusCreated, rec.Code)
	rec = suite.postJSON("/api/transactions", `{"itemName":"Cotton","direction":"OUT","quantity":"30","customer":"Bu Sari"}`)
	suite.Require().Equal(http.StatusCreated, rec.Code)

	var created struct {
		ID int64 `json:"id"`
	}
	suite.decode(rec, &created)

	rec = suite.do(http.MethodGet, "/api/transactions?item=Cotton", nil, "")
	suite.Require().Equal(http.StatusOK, rec.Code)
	var listing struct {
		Transactions []inventory.TransactionView `json:"transactions"`
		ItemStock    struct {
			Balance int `json:"balance"`
		} `json:"itemStock"`
	}
	suite.decode(rec, &listing)
	suite.Require().Len(listing.Transactions, 2)
	suite.Equal(70, listing.Transactions[1].RunningBalance)
	suite.Equal("Bu Sari", listing.Transactions[1].Customer)
	suite.Equal(70, listing.ItemStock.Balance)

	rec = suite.do(http.MethodGet, "/api/transactions/"+jsonInt(created.ID)+"/balance", nil, "")
	suite.Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), `"runningBalance":70`)

	rec = suite.do(http.MethodGet, "/api/stock", nil, "")
	suite.JSONEq(`{"stock":[{"itemName":"Cotton","totalIn":100,"totalOut":30,"balance":70}]}`, rec.Body.String())

	rec = suite.do(http.MethodGet, "/api/items", nil, "")
	suite.JSONEq(`{"items":["Cotton"]}`, rec.Body.String())

	rec = suite.do(http.MethodGet, "/api/stock/Cotton", nil, "")
	suite.JSONEq(`{"itemName":"Cotton","totalIn":100,"totalOut":30,"balance":70}`, rec.Body.String())
}

func (suite *RouterTestSuite) TestCreateTransactionValidation() {
	rec := suite.postJSON("/api/transactions", `{"itemName":"","quantity":"5"}`)
	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.Contains(rec.Body.String(), "ItemName")

	rec = suite.postJSON("/api/transactions", `{"itemName":"Silk"}`)
	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.Contains(rec.Body.String(), "Quantity")

	rec = suite.postJSON("/api/transactions", `not json`)
	suite.Equal(http.StatusBadRequest, rec.Code)

	rec = suite.do(http.MethodGet, "/api/transactions", nil, "")
	suite.JSONEq(`{"transactions":[],"filteredStock":[]}`, rec.Body.String())
}

func (suite *RouterTestSuite) TestFilteredStock() {
	suite.Require().Equal(http.StatusCreated, suite.postJSON("/api/transactions", `{"itemName":"Katun","direction":"IN","quantity":100,"customer":"Bu Sari"}`).Code)
	suite.Require().Equal(http.StatusCreated, suite.postJSON("/api/transactions", `{"itemName":"katun","direction":"OUT","quantity":40,"customer":"Pak Budi"}`).Code)
	suite.Require().Equal(http.StatusCreated, suite.postJSON("/api/transactions", `{"itemName":"Sutra","direction":"OUT","quantity":5,"customer":"Bu Sari"}`).Code)

	rec := suite.do(http.MethodGet, "/api/transactions?q=sari", nil, "")
	suite.Require().Equal(http.StatusOK, rec.Code)
	var listing struct {
		Transactions  []inventory.TransactionView `json:"transactions"`
		FilteredStock json.RawMessage             `json:"filteredStock"`
	}
	suite.decode(rec, &listing)
	suite.Len(listing.Transactions, 2)
	suite.JSONEq(`[{"itemName":"Katun","totalIn":100,"totalOut":0,"balance":100},{"itemName":"Sutra","totalIn":0,"totalOut":5,"balance":-5}]`, string(listing.FilteredStock))

	rec = suite.do(http.MethodGet, "/api/transactions?direction=OUT", nil, "")
	suite.decode(rec, &listing)
	suite.JSONEq(`[{"itemName":"katun","totalIn":0,"totalOut":40,"balance":-40},{"itemName":"Sutra","totalIn":0,"totalOut":5,"balance":-5}]`, string(listing.FilteredStock))
}

func (suite *RouterTestSuite) TestLatestReportWithoutArchive() {
	rec := suite.do(http.MethodGet, "/api/reports/latest", nil, "")
	suite.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (suite *RouterTestSuite) TestBalanceErrors() {
	suite.Equal(http.StatusBadRequest, suite.do(http.MethodGet, "/api/transactions/abc/balance", nil, "").Code)
	suite.Equal(http.StatusNotFound, suite.do(http.MethodGet, "/api/transactions/42/balance", nil, "").Code)
}

func (suite *RouterTestSuite) TestExportThenImport() {
	suite.Require().Equal(http.StatusCreated, suite.postJSON("/api/transactions", `{"itemName":"Wool","direction":"OUT","quantity":20}`).Code)

	rec := suite.do(http.MethodGet, "/api/export", nil, "")
	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.Equal(xlsxContentTypeForTest, rec.Header().Get("Content-Type"))
	suite.Contains(rec.Header().Get("Content-Disposition"), "Report_Omah_Gorden_")

	rec = suite.upload(rec.Body.Bytes())
	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.JSONEq(`{"insertedCount":1}`, rec.Body.String())

	rec = suite.do(http.MethodGet, "/api/stock", nil, "")
	suite.Contains(rec.Body.String(), `"balance":-40`)
}

func (suite *RouterTestSuite) TestImportErrors() {
	rec := suite.upload([]byte("definitely not xlsx"))
	suite.Equal(http.StatusUnprocessableEntity, rec.Code)

	rec = suite.do(http.MethodPost, "/api/import", nil, "")
	suite.Equal(http.StatusBadRequest, rec.Code)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func TestRateLimit(t *testing.T) {
	engine := newEngine(t, "2-M")

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestNewRejectsBadRate(t *testing.T) {
	_, err := New(config.ServerConfig{RateLimit: "lots"}, handlers.NewInventoryHandler(nil, nil), nil, nil, nil)
	assert.Error(t, err)
}

func TestCORSPreflight(t *testing.T) {
	engine := newEngine(t, "100-M")
	req := httptest.NewRequest(http.MethodOptions, "/api/stock", nil)
	req.Header.Set("Origin", "http://ui.test")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.HasPrefix(rec.Result().Status, "20"))
}

const xlsxContentTypeForTest = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
