// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ocr recovers text from scanned PDFs by piping them through a
// containerized tesseract image.
package ocr

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pdiddy/study-engine/internal/container"
)

// DefaultImage is the tesseract wrapper image used when none is configured.
// The image reads a PDF on stdin and writes recognized text to stdout.
const DefaultImage = "ocr-tesseract:latest"

// Converter runs OCR through a container.Runtime (docker or podman)
// injected at construction time.
type Converter struct {
	runtime container.Runtime
	image   string
}

// NewConverter creates a converter that uses the given container runtime.
// It verifies that the OCR image exists locally before returning.
func NewConverter(rt container.Runtime, image string) (*Converter, error) {
	if image == "" {
		image = DefaultImage
	}
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("OCR image not available in %s: %w", rt.Name(), err)
	}
	return &Converter{runtime: rt, image: image}, nil
}

// Convert reads the PDF at pdfPath, pipes it through the OCR container,
// and returns the recognized text.
func (c *Converter) Convert(pdfPath string) (string, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := c.runtime.Run(c.image, f, &out); err != nil {
		return "", fmt.Errorf("running OCR on %s: %w", pdfPath, err)
	}

	if out.Len() == 0 {
		return "", fmt.Errorf("OCR produced empty output for %s", pdfPath)
	}

	return out.String(), nil
}
