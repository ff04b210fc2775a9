package trade

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	appshared "github.com/shopdesk/backend/internal/application/shared"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Callback metadata item names
const (
	mpesaItemAmount  = "Amount"
	mpesaItemReceipt = "MpesaReceiptNumber"
	mpesaItemDate    = "TransactionDate"
	mpesaItemPhone   = "PhoneNumber"
)

// MpesaService records mobile-money payment results reported by the provider
type MpesaService struct {
	mpesaRepo trade.MpesaRepository
	saleRepo  trade.SaleRepository
	metrics   appshared.BusinessMetrics
	logger    *zap.Logger
}

// NewMpesaService creates a new MpesaService
func NewMpesaService(
	mpesaRepo trade.MpesaRepository,
	saleRepo trade.SaleRepository,
	metrics appshared.BusinessMetrics,
	logger *zap.Logger,
) *MpesaService {
	return &MpesaService{
		mpesaRepo: mpesaRepo,
		saleRepo:  saleRepo,
		metrics:   appshared.MetricsOrNop(metrics),
		logger:    logger,
	}
}

// RecordCallback upserts the transaction identified by the checkout request
// id. Result code 0 marks it successful, anything else failed. Replayed
// callbacks overwrite the stored result.
func (s *MpesaService) RecordCallback(ctx context.Context, req MpesaCallbackRequest) (*MpesaTransactionResponse, error) {
	cb := req.Body.StkCallback
	meta := callbackMetadata(cb)

	amount := decimal.Zero
	if raw := meta[mpesaItemAmount]; raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Callback amount is not a number")
		}
		amount = parsed
	}
	txDate, err := trade.ParseMpesaTimestamp(meta[mpesaItemDate])
	if err != nil {
		return nil, err
	}

	tx, err := s.mpesaRepo.FindByCheckoutRequestID(ctx, strings.TrimSpace(cb.CheckoutRequestID))
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		tx, err = trade.NewMpesaTransaction(cb.MerchantRequestID, cb.CheckoutRequestID, meta[mpesaItemPhone], amount)
		if err != nil {
			return nil, err
		}
	}
	tx.ApplyResult(cb.ResultCode, cb.ResultDesc, meta[mpesaItemReceipt], amount, meta[mpesaItemPhone], txDate)

	if err := s.mpesaRepo.Save(ctx, tx); err != nil {
		return nil, err
	}

	s.metrics.MpesaCallback(string(tx.Status))
	s.logger.Info("Mpesa callback recorded",
		zap.String("checkout_request_id", tx.CheckoutRequestID),
		zap.Int("result_code", tx.ResultCode),
		zap.String("status", string(tx.Status)),
		zap.String("receipt_number", tx.ReceiptNumber))
	resp := ToMpesaTransactionResponse(tx)
	return &resp, nil
}

// GetByID retrieves a transaction
func (s *MpesaService) GetByID(ctx context.Context, id uuid.UUID) (*MpesaTransactionResponse, error) {
	tx, err := s.mpesaRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundMpesa(err)
	}
	resp := ToMpesaTransactionResponse(tx)
	return &resp, nil
}

// GetByReceipt retrieves a transaction by its provider receipt number
func (s *MpesaService) GetByReceipt(ctx context.Context, receipt string) (*MpesaTransactionResponse, error) {
	tx, err := s.mpesaRepo.FindByReceiptNumber(ctx, strings.ToUpper(strings.TrimSpace(receipt)))
	if err != nil {
		return nil, notFoundMpesa(err)
	}
	resp := ToMpesaTransactionResponse(tx)
	return &resp, nil
}

// List retrieves transactions page by page
func (s *MpesaService) List(ctx context.Context, f MpesaListFilter) (*shared.Paginated[MpesaTransactionResponse], error) {
	filter := listFilter(f.Page, f.PageSize, f.From, f.To)
	if f.Status != "" {
		filter = filter.With("status", f.Status)
	}
	if f.Phone != "" {
		filter = filter.With("phone", strings.TrimSpace(f.Phone))
	}

	txs, total, err := s.mpesaRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]MpesaTransactionResponse, len(txs))
	for i := range txs {
		items[i] = ToMpesaTransactionResponse(&txs[i])
	}
	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// LinkToSale attaches a successful transaction to an existing sale
func (s *MpesaService) LinkToSale(ctx context.Context, id uuid.UUID, req LinkSaleRequest) (*MpesaTransactionResponse, error) {
	tx, err := s.mpesaRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundMpesa(err)
	}
	if _, err := s.saleRepo.FindByID(ctx, req.SaleID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("SALE_NOT_FOUND", "Sale not found")
		}
		return nil, err
	}
	if err := tx.LinkToSale(req.SaleID); err != nil {
		return nil, err
	}
	if err := s.mpesaRepo.Save(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Info("Mpesa transaction linked to sale",
		zap.String("checkout_request_id", tx.CheckoutRequestID),
		zap.String("sale_id", req.SaleID.String()))
	resp := ToMpesaTransactionResponse(tx)
	return &resp, nil
}

// callbackMetadata flattens the metadata items to strings. Numbers are
// printed without exponent so 20240314103000 stays a timestamp.
func callbackMetadata(cb MpesaSTKCallback) map[string]string {
	out := make(map[string]string)
	if cb.CallbackMetadata == nil {
		return out
	}
	for _, item := range cb.CallbackMetadata.Item {
		switch v := item.Value.(type) {
		case string:
			out[item.Name] = strings.TrimSpace(v)
		case float64:
			out[item.Name] = strconv.FormatFloat(v, 'f', -1, 64)
		case json.Number:
			out[item.Name] = v.String()
		case int:
			out[item.Name] = strconv.Itoa(v)
		case int64:
			out[item.Name] = strconv.FormatInt(v, 10)
		}
	}
	return out
}

func notFoundMpesa(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError("MPESA_TRANSACTION_NOT_FOUND", "Mpesa transaction not found")
	}
	return err
}
