package report

import (
	"fmt"
)

// Routing category for the management rollup report. Account executive
// reports use the executive's name as their category.
const Management = "management"

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GenerationError marks a failure anywhere in the report generation stage,
// from locating the forecast workbook through rendering the report bodies.
type GenerationError struct {
	msg string
}

func (e *GenerationError) Error() string {
	return e.msg
}

// Errorf formats a GenerationError in the manner of fmt.Errorf.
func Errorf(format string, args ...any) *GenerationError {
	return &GenerationError{
		msg: fmt.Sprintf(format, args...),
	}
}

// Artifact is a fully generated report ready for dispatch: a routing
// category, rendered HTML body and the files to attach.
type Artifact struct {
	Category    string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Attachment is a file attached to a report email. Inline attachments are
// referenced from the HTML body by content ID.
type Attachment struct {
	Filename    string
	ContentType string
	Path        string
	Inline      bool
	ContentID   string
}
