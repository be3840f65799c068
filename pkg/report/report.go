package report

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
)

// AlertReport carries everything the PDF shows about one transition.
type AlertReport struct {
	MonitorID      uuid.UUID
	URL            string
	CheckedAt      time.Time
	Status         string
	PrevStatus     string
	HTTPCode       int32
	ResponseTimeMs int32
	Reason         string
}

// Generator renders transient alert PDFs into dir. The caller owns the
// returned file and is expected to remove it after the send attempt.
type Generator struct {
	dir string
}

func NewGenerator(dir string) *Generator {
	return &Generator{dir: dir}
}

// Generate writes the report and returns its path.
func (g *Generator) Generate(r AlertReport) (string, error) {
	fileName := fmt.Sprintf("alert-%s-%d.pdf", r.MonitorID, time.Now().UnixMilli())
	filePath := filepath.Join(g.dir, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "BU", 18)
	pdf.Cell(0, 10, "API Monitor Alert")
	pdf.Ln(16)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("URL: %s", r.URL),
		fmt.Sprintf("Checked At (UTC): %s", r.CheckedAt.UTC().Format(time.RFC3339)),
		fmt.Sprintf("Status: %s", r.Status),
		fmt.Sprintf("Previous Status: %s", prevOrNA(r.PrevStatus)),
		fmt.Sprintf("HTTP Code: %d", r.HTTPCode),
		fmt.Sprintf("Response Time: %d ms", r.ResponseTimeMs),
		fmt.Sprintf("Reason: %s", r.Reason),
	}
	for _, line := range lines {
		pdf.Cell(0, 8, line)
		pdf.Ln(8)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("write alert pdf: %w", err)
	}

	return filePath, nil
}

func prevOrNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
