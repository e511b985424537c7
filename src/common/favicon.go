package common

import (
	"bytes"
	"fmt"
	"os"

	ico "github.com/sergeymakinen/go-ico"
)

// CreateFavicon renders sourcePath the same way as CreateIcon but writes a
// single-entry .ico file. ICO entries cannot exceed 256x256.
func (p *Processor) CreateFavicon(sourcePath string, size int, outputPath string) error {
	fail := func(err error) error {
		return &RenderError{Source: sourcePath, Output: outputPath, Size: size, Err: err}
	}

	if size > 256 {
		return fail(fmt.Errorf("favicon size %d exceeds 256", size))
	}

	canvas, err := p.renderCanvas(sourcePath, size)
	if err != nil {
		return fail(err)
	}

	var buf bytes.Buffer
	if err := ico.Encode(&buf, canvas); err != nil {
		return fail(fmt.Errorf("failed to encode ico: %w", err))
	}

	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fail(fmt.Errorf("failed to write output file: %w", err))
	}

	return nil
}
