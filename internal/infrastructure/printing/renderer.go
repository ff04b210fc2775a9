package printing

import (
	"context"
	"time"
)

// Paper is a supported output page format
type Paper string

const (
	PaperA4      Paper = "A4"
	PaperReceipt Paper = "RECEIPT_80MM"
)

// Dimensions returns width and height in millimeters
func (p Paper) Dimensions() (width, height float64) {
	switch p {
	case PaperReceipt:
		// continuous roll; the height only has to exceed the content
		return 80, 1000
	default:
		return 210, 297
	}
}

// Margins in millimeters
type Margins struct {
	Top, Right, Bottom, Left float64
}

// RenderRequest contains the parameters for rendering HTML to PDF
type RenderRequest struct {
	HTML      string
	Title     string
	Paper     Paper
	Landscape bool
	Margins   Margins
	// FooterHTML is printed on every page when set
	FooterHTML string
	// Timeout overrides the renderer default
	Timeout time.Duration
}

// PDFRenderer converts HTML documents to PDF bytes
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) ([]byte, error)
	Close() error
}

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout = "RENDER_TIMEOUT"
	ErrCodeRenderFailed  = "RENDER_FAILED"
	ErrCodeInvalidHTML   = "INVALID_HTML"
	ErrCodeTemplate      = "TEMPLATE_ERROR"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}
