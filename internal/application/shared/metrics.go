package shared

import "github.com/shopspring/decimal"

// BusinessMetrics records business counters. *telemetry.Metrics satisfies it.
type BusinessMetrics interface {
	SaleCompleted(method, channel string, total decimal.Decimal)
	SaleVoided()
	PurchaseRequestTransition(status string)
	EmailSent(template string, err error)
	MessageSent()
	StockMoved(reason string)
	MpesaCallback(status string)
	SideEffectFailed(kind string)
}

// NopMetrics discards all measurements
type NopMetrics struct{}

func (NopMetrics) SaleCompleted(string, string, decimal.Decimal) {}
func (NopMetrics) SaleVoided()                                   {}
func (NopMetrics) PurchaseRequestTransition(string)              {}
func (NopMetrics) EmailSent(string, error)                       {}
func (NopMetrics) MessageSent()                                  {}
func (NopMetrics) StockMoved(string)                             {}
func (NopMetrics) MpesaCallback(string)                          {}
func (NopMetrics) SideEffectFailed(string)                       {}

// MetricsOrNop returns m, or NopMetrics when m is nil
func MetricsOrNop(m BusinessMetrics) BusinessMetrics {
	if m == nil {
		return NopMetrics{}
	}
	return m
}
