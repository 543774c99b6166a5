package formatter

import (
	"bytes"
	"fmt"

	"github.com/futig/mitr-backend/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(report *entity.Report) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", title(report))

	for _, section := range report.Sections {
		if section.Heading != "" {
			fmt.Fprintf(&buf, "## %s\n\n", section.Heading)
		}
		for _, line := range section.Lines {
			if section.Bullets {
				fmt.Fprintf(&buf, "- %s\n", line)
			} else {
				// Two trailing spaces keep the line break
				fmt.Fprintf(&buf, "%s  \n", line)
			}
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
