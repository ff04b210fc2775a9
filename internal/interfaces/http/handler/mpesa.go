package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopdesk/backend/internal/application/trade"
	"github.com/shopdesk/backend/internal/infrastructure/config"
	"github.com/shopdesk/backend/internal/infrastructure/logger"
	"github.com/shopdesk/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// MpesaHandler records mobile-money callbacks and exposes the stored
// transactions
type MpesaHandler struct {
	BaseHandler
	mpesaService *trade.MpesaService
	cfg          config.MpesaConfig
}

// NewMpesaHandler creates a new MpesaHandler
func NewMpesaHandler(mpesaService *trade.MpesaService, cfg config.MpesaConfig) *MpesaHandler {
	return &MpesaHandler{
		mpesaService: mpesaService,
		cfg:          cfg,
	}
}

// CallbackAck is the acknowledgement the provider expects
type CallbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

// Callback godoc
// @Summary      STK push result callback
// @Description  Unauthenticated. Returns 404 unless enabled in configuration.
// @Tags         mpesa
// @Accept       json
// @Produce      json
// @Param        request body trade.MpesaCallbackRequest true "Provider payload"
// @Success      200 {object} CallbackAck
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /mpesa/callback [post]
func (h *MpesaHandler) Callback(c *gin.Context) {
	if !h.cfg.CallbackEnabled {
		h.Error(c, http.StatusNotFound, dto.ErrCodeRouteNotFound, "Route not found")
		return
	}
	var req trade.MpesaCallbackRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tx, err := h.mpesaService.RecordCallback(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	logger.GetGinLogger(c).Info("Mpesa callback recorded",
		zap.String("checkout_request_id", tx.CheckoutRequestID),
		zap.String("status", tx.Status))
	c.JSON(http.StatusOK, CallbackAck{ResultCode: 0, ResultDesc: "Accepted"})
}

// GetByID godoc
// @Summary      Get an Mpesa transaction
// @Tags         mpesa
// @Produce      json
// @Param        id path string true "Transaction ID"
// @Success      200 {object} dto.Response{data=trade.MpesaTransactionResponse}
// @Security     BearerAuth
// @Router       /admin/mpesa/{id} [get]
func (h *MpesaHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	tx, err := h.mpesaService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// GetByReceipt godoc
// @Summary      Find an Mpesa transaction by provider receipt
// @Tags         mpesa
// @Produce      json
// @Param        receipt path string true "Mpesa receipt number"
// @Success      200 {object} dto.Response{data=trade.MpesaTransactionResponse}
// @Security     BearerAuth
// @Router       /admin/mpesa/receipt/{receipt} [get]
func (h *MpesaHandler) GetByReceipt(c *gin.Context) {
	tx, err := h.mpesaService.GetByReceipt(c.Request.Context(), c.Param("receipt"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// List godoc
// @Summary      List Mpesa transactions
// @Tags         mpesa
// @Produce      json
// @Param        status query string false "pending, success or failed"
// @Param        phone query string false "Payer phone number"
// @Param        from query string false "From date (YYYY-MM-DD)"
// @Param        to query string false "To date (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]trade.MpesaTransactionResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/mpesa [get]
func (h *MpesaHandler) List(c *gin.Context) {
	var filter trade.MpesaListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	result, err := h.mpesaService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(&h.BaseHandler, c, result)
}

// LinkToSale godoc
// @Summary      Link a transaction to a sale
// @Tags         mpesa
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID"
// @Param        request body trade.LinkSaleRequest true "Sale"
// @Success      200 {object} dto.Response{data=trade.MpesaTransactionResponse}
// @Security     BearerAuth
// @Router       /admin/mpesa/{id}/link [post]
func (h *MpesaHandler) LinkToSale(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req trade.LinkSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tx, err := h.mpesaService.LinkToSale(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}
