package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"careerpilot/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("html", "any", &HTMLFormatter{})
	registry.RegisterFormatter("text", "CVAnalysisOutput", &CVAnalysisTextFormatter{})
	registry.RegisterFormatter("text", "JobMatchOutput", &JobMatchTextFormatter{})
	registry.RegisterFormatter("text", "SkillsRoadmapOutput", &RoadmapTextFormatter{})
	registry.RegisterFormatter("text", "CareerChatOutput", &ChatTextFormatter{})
	registry.RegisterFormatter("text", "InterviewOutput", &InterviewTextFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.CVAnalysisOutput, *types.CVAnalysisOutput:
		return "CVAnalysisOutput"
	case types.JobMatchOutput, *types.JobMatchOutput:
		return "JobMatchOutput"
	case types.SkillsRoadmapOutput, *types.SkillsRoadmapOutput:
		return "SkillsRoadmapOutput"
	case types.CareerChatOutput, *types.CareerChatOutput:
		return "CareerChatOutput"
	case types.InterviewOutput, *types.InterviewOutput:
		return "InterviewOutput"
	default:
		return "any"
	}
}

// formatScore renders an optional score: a missing score reads "not
// available", never 0.
func formatScore(score *int) string {
	if score == nil {
		return "not available"
	}
	return fmt.Sprintf("%d/100", *score)
}

// deref accepts either a value or a pointer of the expected output type
func deref[T any](data any) (T, bool) {
	switch v := data.(type) {
	case T:
		return v, true
	case *T:
		return *v, true
	default:
		var zero T
		return zero, false
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// HTMLFormatter emits the pre-rendered markup carried by every feature output
type HTMLFormatter struct{}

func (hf *HTMLFormatter) Format(data any) (string, error) {
	if result, ok := deref[types.CVAnalysisOutput](data); ok {
		return result.RenderedHTML, nil
	}
	if result, ok := deref[types.JobMatchOutput](data); ok {
		return result.RenderedHTML, nil
	}
	if result, ok := deref[types.SkillsRoadmapOutput](data); ok {
		return result.RenderedHTML, nil
	}
	if result, ok := deref[types.CareerChatOutput](data); ok {
		return result.RenderedHTML, nil
	}
	if result, ok := deref[types.InterviewOutput](data); ok {
		return result.RenderedHTML, nil
	}
	return "", fmt.Errorf("no HTML rendering available for %T", data)
}

func (hf *HTMLFormatter) SupportedType() string {
	return "any"
}

// CVAnalysisTextFormatter handles text formatting for CV review results
type CVAnalysisTextFormatter struct{}

func (cf *CVAnalysisTextFormatter) Format(data any) (string, error) {
	result, ok := deref[types.CVAnalysisOutput](data)
	if !ok {
		return "", fmt.Errorf("expected CVAnalysisOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== CV ANALYSIS ===\n\n")
	output.WriteString(fmt.Sprintf("ATS Score: %s\n\n", formatScore(result.Score)))
	output.WriteString("Feedback:\n")
	output.WriteString(result.Feedback)
	output.WriteString("\n")

	return output.String(), nil
}

func (cf *CVAnalysisTextFormatter) SupportedType() string {
	return "CVAnalysisOutput"
}

// JobMatchTextFormatter handles text formatting for job match results
type JobMatchTextFormatter struct{}

func (jf *JobMatchTextFormatter) Format(data any) (string, error) {
	result, ok := deref[types.JobMatchOutput](data)
	if !ok {
		return "", fmt.Errorf("expected JobMatchOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== JOB MATCH ===\n\n")
	output.WriteString(fmt.Sprintf("Match Score: %s\n\n", formatScore(result.Score)))
	output.WriteString("Analysis:\n")
	output.WriteString(result.Analysis)
	output.WriteString("\n")

	return output.String(), nil
}

func (jf *JobMatchTextFormatter) SupportedType() string {
	return "JobMatchOutput"
}

// RoadmapTextFormatter handles text formatting for skills roadmap results
type RoadmapTextFormatter struct{}

func (rf *RoadmapTextFormatter) Format(data any) (string, error) {
	result, ok := deref[types.SkillsRoadmapOutput](data)
	if !ok {
		return "", fmt.Errorf("expected SkillsRoadmapOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== SKILLS ROADMAP ===\n\n")
	output.WriteString(result.Roadmap)
	output.WriteString("\n")

	return output.String(), nil
}

func (rf *RoadmapTextFormatter) SupportedType() string {
	return "SkillsRoadmapOutput"
}

// ChatTextFormatter handles text formatting for career chat replies
type ChatTextFormatter struct{}

func (cf *ChatTextFormatter) Format(data any) (string, error) {
	result, ok := deref[types.CareerChatOutput](data)
	if !ok {
		return "", fmt.Errorf("expected CareerChatOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString(result.Answer)
	output.WriteString("\n")
	if result.SessionID != "" {
		output.WriteString(fmt.Sprintf("\n[session %s]\n", result.SessionID))
	}

	return output.String(), nil
}

func (cf *ChatTextFormatter) SupportedType() string {
	return "CareerChatOutput"
}

// InterviewTextFormatter handles text formatting for mock interview messages
type InterviewTextFormatter struct{}

func (inf *InterviewTextFormatter) Format(data any) (string, error) {
	result, ok := deref[types.InterviewOutput](data)
	if !ok {
		return "", fmt.Errorf("expected InterviewOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== MOCK INTERVIEW ===\n\n")
	output.WriteString(result.Message)
	output.WriteString("\n")
	if result.SessionID != "" {
		output.WriteString(fmt.Sprintf("\n[session %s]\n", result.SessionID))
	}

	return output.String(), nil
}

func (inf *InterviewTextFormatter) SupportedType() string {
	return "InterviewOutput"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
