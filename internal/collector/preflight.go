package collector

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// preflight parses and validates the file's object structure with pdfcpu in
// relaxed mode, so a damaged file fails fast with a readable error instead
// of deep inside the glyph reader.
func preflight(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return fmt.Errorf("pdfcpu validate: %w", err)
	}
	if ctx.PageCount == 0 {
		return fmt.Errorf("pdfcpu validate: document has no pages")
	}
	return nil
}
