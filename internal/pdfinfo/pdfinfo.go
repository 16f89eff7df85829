// Package pdfinfo reads metadata from uploaded PDF files.
package pdfinfo

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

var ErrNotPDF = errors.New("not a pdf")

var pdfMagic = []byte("%PDF-")

// PageCount returns the number of pages of the PDF held in data.
func PageCount(data []byte) (n int, err error) {
	if !bytes.HasPrefix(data, pdfMagic) {
		return 0, ErrNotPDF
	}

	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("failed to parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to open pdf: %w", err)
	}

	return reader.NumPage(), nil
}

// PageCountOrZero is PageCount for callers that treat page count as optional.
func PageCountOrZero(data []byte) int {
	n, err := PageCount(data)
	if err != nil {
		return 0
	}
	return n
}
