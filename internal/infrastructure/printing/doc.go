// Package printing renders receipts, reports and email bodies from embedded
// HTML templates and converts HTML documents to PDF with headless Chrome.
package printing
