package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/application/printing"
	appshared "github.com/shopdesk/backend/internal/application/shared"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/trade"
	"github.com/shopdesk/backend/internal/infrastructure/email"
	infraprinting "github.com/shopdesk/backend/internal/infrastructure/printing"
	"github.com/stretchr/testify/mock"
)

// MockPurchaseRequestRepository is a mock implementation of trade.PurchaseRequestRepository
type MockPurchaseRequestRepository struct {
	mock.Mock
}

func (m *MockPurchaseRequestRepository) Create(ctx context.Context, pr *trade.PurchaseRequest) error {
	return m.Called(ctx, pr).Error(0)
}

func (m *MockPurchaseRequestRepository) SaveWithLock(ctx context.Context, pr *trade.PurchaseRequest) error {
	return m.Called(ctx, pr).Error(0)
}

func (m *MockPurchaseRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseRequest), args.Error(1)
}

func (m *MockPurchaseRequestRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.PurchaseRequest, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]trade.PurchaseRequest), args.Get(1).(int64), args.Error(2)
}

func (m *MockPurchaseRequestRepository) CountByStatus(ctx context.Context, status trade.PurchaseRequestStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

// MockSaleRepository is a mock implementation of trade.SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) Create(ctx context.Context, sale *trade.Sale) error {
	return m.Called(ctx, sale).Error(0)
}

func (m *MockSaleRepository) SaveWithLock(ctx context.Context, sale *trade.Sale) error {
	return m.Called(ctx, sale).Error(0)
}

func (m *MockSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindByReceiptNumber(ctx context.Context, receipt string) (*trade.Sale, error) {
	args := m.Called(ctx, receipt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Sale, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]trade.Sale), args.Get(1).(int64), args.Error(2)
}

func (m *MockSaleRepository) FindCompletedBetween(ctx context.Context, from, to time.Time) ([]trade.Sale, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) CountByPurchaseRequest(ctx context.Context, purchaseRequestID uuid.UUID) (int64, error) {
	args := m.Called(ctx, purchaseRequestID)
	return args.Get(0).(int64), args.Error(1)
}

// fakeSender records messages and fails when err is set
type fakeSender struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (s *fakeSender) Send(_ context.Context, msg email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

// fakeDocuments renders fixed bodies and a tiny receipt
type fakeDocuments struct {
	receiptErr error
	messages   []string
}

func (d *fakeDocuments) Store() infraprinting.StoreInfo {
	return infraprinting.StoreInfo{Name: "Duka Bora", Address: "Moi Avenue, Nairobi", Phone: "0700111222"}
}

func (d *fakeDocuments) ReceiptPDF(_ context.Context, sale *trade.Sale, _, _ string) (*printing.Document, error) {
	if d.receiptErr != nil {
		return nil, d.receiptErr
	}
	return &printing.Document{
		Data:        []byte("%PDF-1.4 receipt"),
		ContentType: printing.ContentTypePDF,
		Filename:    sale.ReceiptNumber + ".pdf",
	}, nil
}

func (d *fakeDocuments) PurchaseRequestEmail(pr *trade.PurchaseRequest, message string, hasReceipt bool) (string, error) {
	d.messages = append(d.messages, message)
	return "<p>" + pr.RequestNumber + ": " + message + "</p>", nil
}

func (d *fakeDocuments) AccountEmail(fullName, username, password string, reset bool) (string, error) {
	if username == "" {
		return "", errors.New("username required")
	}
	return "<p>" + fullName + " " + username + " " + password + "</p>", nil
}

// memoryArchive keeps archived objects in a map
type memoryArchive struct {
	objects map[string][]byte
	err     error
}

func (a *memoryArchive) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	if a.objects == nil {
		a.objects = make(map[string][]byte)
	}
	a.objects[key] = data
	return key, nil
}

func (a *memoryArchive) DownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://archive.local/" + key, nil
}

func (a *memoryArchive) Enabled() bool { return true }

// countingMetrics counts failures and sent emails
type countingMetrics struct {
	appshared.NopMetrics
	failures map[string]int
	sent     map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{failures: map[string]int{}, sent: map[string]int{}}
}

func (m *countingMetrics) SideEffectFailed(kind string) { m.failures[kind]++ }

func (m *countingMetrics) EmailSent(template string, err error) {
	if err == nil {
		m.sent[template]++
	}
}
