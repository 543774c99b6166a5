package formatter

import (
	"fmt"
	"strings"

	"github.com/futig/mitr-backend/internal/entity"
)

const defaultTitle = "Assessment Results"

type Formatter interface {
	Format(report *entity.Report) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func title(report *entity.Report) string {
	if report.Title == "" {
		return defaultTitle
	}
	return report.Title
}

// item returns line as it is printed inside section
func item(section entity.ReportSection, line string) string {
	if section.Bullets {
		return "• " + strings.TrimSpace(line)
	}
	return line
}
