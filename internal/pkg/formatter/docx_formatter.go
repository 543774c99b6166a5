package formatter

import (
	"bytes"

	"github.com/futig/mitr-backend/internal/entity"
	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (mf *DOCXFormatter) Format(report *entity.Report) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Heading1")
	titlePar.AddRun().AddText(title(report))

	doc.AddParagraph()

	for _, section := range report.Sections {
		if section.Heading != "" {
			heading := doc.AddParagraph()
			heading.SetStyle("Heading2")
			heading.AddRun().AddText(section.Heading)
		}
		for _, line := range section.Lines {
			doc.AddParagraph().AddRun().AddText(item(section, line))
		}
		doc.AddParagraph()
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (mf *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
