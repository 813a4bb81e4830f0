package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/equipd/snapmerge/internal/merge"
	"github.com/equipd/snapmerge/pkg/types"
)

// Renderer dispatches reports to the configured format.
type Renderer struct {
	config   Config
	jsonOut  *JSONFormatter
	yamlOut  *YAMLFormatter
	tableOut *TableFormatter
}

// NewRenderer creates a new output renderer
func NewRenderer(config Config) *Renderer {
	if config.TimeFormat == "" {
		config.TimeFormat = "2006-01-02 15:04:05"
	}
	if config.NoColor {
		color.NoColor = true
	}

	return &Renderer{
		config:   config,
		jsonOut:  NewJSONFormatter(),
		yamlOut:  NewYAMLFormatter(),
		tableOut: NewTableFormatter(config),
	}
}

// FormatPlanReport formats a merge preview in the specified format
func (r *Renderer) FormatPlanReport(report *PlanReport, format OutputFormat) ([]byte, error) {
	switch format {
	case FormatJSON:
		return r.jsonOut.Format(report)
	case FormatYAML:
		return r.yamlOut.Format(report)
	case FormatTable:
		return r.tableOut.FormatPlanReport(report)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// FormatSnapshotListing formats the snapshot listing in the specified format
func (r *Renderer) FormatSnapshotListing(listing map[string][]*types.SnapshotMeta, format OutputFormat) ([]byte, error) {
	switch format {
	case FormatJSON:
		return r.jsonOut.Format(listing)
	case FormatYAML:
		return r.yamlOut.Format(listing)
	case FormatTable:
		return r.tableOut.FormatSnapshotListing(listing)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// FormatApplyReport formats a restore outcome in the specified format
func (r *Renderer) FormatApplyReport(report *ApplyReport, format OutputFormat) ([]byte, error) {
	switch format {
	case FormatJSON:
		return r.jsonOut.Format(report)
	case FormatYAML:
		return r.yamlOut.Format(report)
	case FormatTable:
		return r.tableOut.FormatApplyReport(report)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// FormatComparisons formats snapshot drift in the specified format
func (r *Renderer) FormatComparisons(comparisons []*merge.Comparison, format OutputFormat) ([]byte, error) {
	switch format {
	case FormatJSON:
		return r.jsonOut.Format(comparisons)
	case FormatYAML:
		return r.yamlOut.Format(comparisons)
	case FormatTable:
		return r.tableOut.FormatComparisons(comparisons)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// FormatAuditReports formats audit findings in the specified format
func (r *Renderer) FormatAuditReports(reports []*merge.AuditReport, format OutputFormat) ([]byte, error) {
	switch format {
	case FormatJSON:
		return r.jsonOut.Format(reports)
	case FormatYAML:
		return r.yamlOut.Format(reports)
	case FormatTable:
		return r.tableOut.FormatAuditReports(reports)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// FormatStatusReport formats the status summary in the specified format
func (r *Renderer) FormatStatusReport(report *StatusReport, format OutputFormat) ([]byte, error) {
	switch format {
	case FormatJSON:
		return r.jsonOut.Format(report)
	case FormatYAML:
		return r.yamlOut.Format(report)
	case FormatTable:
		return r.tableOut.FormatStatusReport(report)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// DisplaySuccess shows a success message
func (r *Renderer) DisplaySuccess(message string) {
	fmt.Println(color.GreenString(message))
}

// DisplayWarning shows a warning message
func (r *Renderer) DisplayWarning(message string) {
	fmt.Println(color.YellowString(message))
}

// DisplayInfo shows an info message
func (r *Renderer) DisplayInfo(message string) {
	fmt.Println(message)
}

// WriteTo writes data to a writer
func (r *Renderer) WriteTo(data []byte, writer io.Writer) error {
	_, err := writer.Write(data)
	return err
}

// WriteToFile writes data to a file
func (r *Renderer) WriteToFile(data []byte, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filename, err)
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("failed to write to file %s: %w", filename, err)
	}
	return nil
}
