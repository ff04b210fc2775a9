package report

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopdesk/backend/internal/domain/trade"
)

// SalesSummary provides aggregated sales statistics
type SalesSummary struct {
	SaleCount     int64           `json:"sale_count"`
	ItemsSold     int64           `json:"items_sold"`
	Revenue       decimal.Decimal `json:"revenue"`
	Discount      decimal.Decimal `json:"discount"`
	Tax           decimal.Decimal `json:"tax"`
	Cost          decimal.Decimal `json:"cost"`
	GrossProfit   decimal.Decimal `json:"gross_profit"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
}

// DailySales is revenue for one day
type DailySales struct {
	Date      time.Time       `json:"date"`
	SaleCount int64           `json:"sale_count"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// PaymentBreakdown is revenue per payment method
type PaymentBreakdown struct {
	Method    trade.PaymentMethod `json:"method"`
	SaleCount int64               `json:"sale_count"`
	Revenue   decimal.Decimal     `json:"revenue"`
}

// ProductSalesRanking represents product sales ranking
type ProductSalesRanking struct {
	Rank        int             `json:"rank"`
	ProductID   uuid.UUID       `json:"product_id"`
	SKU         string          `json:"sku"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
	Profit      decimal.Decimal `json:"profit"`
}

// SalesReport is the full sales report for a range
type SalesReport struct {
	Range       DateRange             `json:"range"`
	Summary     SalesSummary          `json:"summary"`
	Daily       []DailySales          `json:"daily"`
	ByMethod    []PaymentBreakdown    `json:"by_method"`
	TopProducts []ProductSalesRanking `json:"top_products"`
	Sales       []trade.Sale          `json:"-"`
}

// SummarizeSales aggregates completed sales
func SummarizeSales(sales []trade.Sale) SalesSummary {
	s := SalesSummary{
		Revenue:       decimal.Zero,
		Discount:      decimal.Zero,
		Tax:           decimal.Zero,
		Cost:          decimal.Zero,
		GrossProfit:   decimal.Zero,
		AverageTicket: decimal.Zero,
	}
	for _, sale := range sales {
		if sale.Status != trade.SaleStatusCompleted {
			continue
		}
		s.SaleCount++
		s.Revenue = s.Revenue.Add(sale.Total)
		s.Discount = s.Discount.Add(sale.Discount)
		s.Tax = s.Tax.Add(sale.Tax)
		for _, item := range sale.Items {
			s.ItemsSold += int64(item.Quantity)
			s.Cost = s.Cost.Add(item.CostPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	s.GrossProfit = s.Revenue.Sub(s.Tax).Sub(s.Cost)
	if s.SaleCount > 0 {
		s.AverageTicket = s.Revenue.Div(decimal.NewFromInt(s.SaleCount)).Round(2)
	}
	return s
}

// DailyRevenue buckets sales per day across the whole range, including empty days
func DailyRevenue(r DateRange, sales []trade.Sale) []DailySales {
	days := r.Days()
	index := make(map[time.Time]int, len(days))
	result := make([]DailySales, len(days))
	for i, d := range days {
		index[d] = i
		result[i] = DailySales{Date: d, Revenue: decimal.Zero}
	}
	for _, sale := range sales {
		if sale.Status != trade.SaleStatusCompleted {
			continue
		}
		day := startOfDay(sale.SoldAt.In(r.From.Location()))
		if i, ok := index[day]; ok {
			result[i].SaleCount++
			result[i].Revenue = result[i].Revenue.Add(sale.Total)
		}
	}
	return result
}

// RevenueByMethod groups revenue by payment method, largest first
func RevenueByMethod(sales []trade.Sale) []PaymentBreakdown {
	byMethod := make(map[trade.PaymentMethod]*PaymentBreakdown)
	for _, sale := range sales {
		if sale.Status != trade.SaleStatusCompleted {
			continue
		}
		b, ok := byMethod[sale.PaymentMethod]
		if !ok {
			b = &PaymentBreakdown{Method: sale.PaymentMethod, Revenue: decimal.Zero}
			byMethod[sale.PaymentMethod] = b
		}
		b.SaleCount++
		b.Revenue = b.Revenue.Add(sale.Total)
	}
	result := make([]PaymentBreakdown, 0, len(byMethod))
	for _, b := range byMethod {
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Revenue.Equal(result[j].Revenue) {
			return result[i].Method < result[j].Method
		}
		return result[i].Revenue.GreaterThan(result[j].Revenue)
	})
	return result
}

// RankProducts ranks products by revenue; topN <= 0 returns all
func RankProducts(sales []trade.Sale, topN int) []ProductSalesRanking {
	byProduct := make(map[uuid.UUID]*ProductSalesRanking)
	for _, sale := range sales {
		if sale.Status != trade.SaleStatusCompleted {
			continue
		}
		for _, item := range sale.Items {
			r, ok := byProduct[item.ProductID]
			if !ok {
				r = &ProductSalesRanking{
					ProductID:   item.ProductID,
					SKU:         item.SKU,
					ProductName: item.ProductName,
					Revenue:     decimal.Zero,
					Profit:      decimal.Zero,
				}
				byProduct[item.ProductID] = r
			}
			r.Quantity += int64(item.Quantity)
			r.Revenue = r.Revenue.Add(item.LineTotal)
			r.Profit = r.Profit.Add(item.Profit())
		}
	}
	result := make([]ProductSalesRanking, 0, len(byProduct))
	for _, r := range byProduct {
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Revenue.Equal(result[j].Revenue) {
			return result[i].SKU < result[j].SKU
		}
		return result[i].Revenue.GreaterThan(result[j].Revenue)
	})
	if topN > 0 && len(result) > topN {
		result = result[:topN]
	}
	for i := range result {
		result[i].Rank = i + 1
	}
	return result
}
