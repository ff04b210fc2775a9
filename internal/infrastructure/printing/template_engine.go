package printing

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopdesk/backend/internal/domain/report"
	"github.com/shopdesk/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names
const (
	TemplateReceipt              = "receipt.html"
	TemplateSalesReport          = "sales_report.html"
	TemplateProductReport        = "product_report.html"
	TemplateSupplierReport       = "supplier_report.html"
	TemplateEmployeeReport       = "employee_report.html"
	TemplatePurchaseRequestEmail = "purchase_request_email.html"
	TemplateAccountEmail         = "account_email.html"
)

// StoreInfo is the shop identity printed on every document
type StoreInfo struct {
	Name    string
	Address string
	Phone   string
}

// ReceiptData is the view model for a sale receipt
type ReceiptData struct {
	Store        StoreInfo
	Sale         *trade.Sale
	CashierName  string
	CustomerName string
}

// ReportDocument wraps a report body with its heading.
// Body is one of the report package's report types.
type ReportDocument struct {
	Title       string
	Store       StoreInfo
	GeneratedAt time.Time
	Range       report.DateRange
	Body        any
}

// PurchaseRequestEmail is the view model for status notifications
type PurchaseRequestEmail struct {
	Store       StoreInfo
	Request     *trade.PurchaseRequest
	StatusLabel string
	Message     string
	HasReceipt  bool
}

// AccountEmail is sent when an account is created or its password is reset
type AccountEmail struct {
	Store    StoreInfo
	FullName string
	Username string
	Password string
	Reset    bool
}

// TemplateEngine renders the embedded HTML templates
type TemplateEngine struct {
	tmpl     *template.Template
	currency string
	loc      *time.Location
	printer  *message.Printer
}

// NewTemplateEngine parses the embedded templates.
// Money is printed with thousands grouping; dates are shown in loc.
func NewTemplateEngine(currency string, loc *time.Location) (*TemplateEngine, error) {
	if loc == nil {
		loc = time.UTC
	}
	e := &TemplateEngine{
		currency: currency,
		loc:      loc,
		printer:  message.NewPrinter(language.English),
	}

	tmpl, err := template.New("documents").Funcs(e.funcMap()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplate, "failed to parse templates", err)
	}
	e.tmpl = tmpl
	return e, nil
}

func (e *TemplateEngine) funcMap() template.FuncMap {
	return template.FuncMap{
		"money":          e.formatMoney,
		"number":         e.formatNumber,
		"currency":       func() string { return e.currency },
		"formatDate":     e.formatDate,
		"formatDateTime": e.formatDateTime,
		"title":          e.titleCase,
		"lastDay":        lastDay,
		"upper":          strings.ToUpper,
	}
}

// Render executes the named template with data
func (e *TemplateEngine) Render(name string, data any) (string, error) {
	if e.tmpl.Lookup(name) == nil {
		return "", NewRenderError(ErrCodeTemplate, fmt.Sprintf("template %q not found", name), nil)
	}
	var buf bytes.Buffer
	if err := e.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", NewRenderError(ErrCodeTemplate, fmt.Sprintf("failed to execute template %q", name), err)
	}
	return buf.String(), nil
}

// FormatMoney exposes the money format for callers building plain-text bodies
func (e *TemplateEngine) FormatMoney(d decimal.Decimal) string {
	return e.currency + " " + e.formatMoney(d)
}

func (e *TemplateEngine) formatMoney(v any) string {
	var d decimal.Decimal
	switch x := v.(type) {
	case decimal.Decimal:
		d = x
	case *decimal.Decimal:
		if x == nil {
			return "0.00"
		}
		d = *x
	case float64:
		d = decimal.NewFromFloat(x)
	case int:
		d = decimal.NewFromInt(int64(x))
	case int64:
		d = decimal.NewFromInt(x)
	default:
		return fmt.Sprint(v)
	}
	return e.printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

func (e *TemplateEngine) formatNumber(v any) string {
	return e.printer.Sprintf("%d", v)
}

func (e *TemplateEngine) formatDate(v any) string {
	t, ok := asTime(v)
	if !ok {
		return ""
	}
	return t.In(e.loc).Format("2006-01-02")
}

func (e *TemplateEngine) formatDateTime(v any) string {
	t, ok := asTime(v)
	if !ok {
		return ""
	}
	return t.In(e.loc).Format("2006-01-02 15:04")
}

// Casers are stateful, so one is built per call.
func (e *TemplateEngine) titleCase(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	}
	return time.Time{}, false
}

// lastDay returns the final day covered by a half-open range
func lastDay(r report.DateRange) time.Time {
	if r.To.IsZero() {
		return r.To
	}
	return r.To.Add(-time.Nanosecond)
}
