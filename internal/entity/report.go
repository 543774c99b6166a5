package entity

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
)

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatDOCX, FormatPDF:
		return true
	default:
		return false
	}
}

// Report is the printable summary of a completed session.
type Report struct {
	Title    string
	Sections []ReportSection
}

// ReportSection is a block of lines under an optional heading.
type ReportSection struct {
	Heading string
	Lines   []string
	// Bullets renders every line as a list item.
	Bullets bool
}
