package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	scoringapp "github.com/resumescore/backend/internal/application/scoring"
)

// reportTemplate is the HTML layout for a score report
const reportTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Resume Score Report</title>
<style>
  body { font-family: 'Helvetica Neue', Arial, sans-serif; color: #1f2933; margin: 0; }
  .header { border-bottom: 2px solid #2563eb; padding-bottom: 12px; margin-bottom: 24px; }
  .header h1 { margin: 0; font-size: 22px; }
  .header .meta { color: #6b7280; font-size: 11px; margin-top: 6px; }
  .scores { display: flex; gap: 16px; margin-bottom: 24px; }
  .score-card { flex: 1; border: 1px solid #e5e7eb; border-radius: 8px; padding: 14px; text-align: center; }
  .score-card .label { font-size: 11px; text-transform: uppercase; color: #6b7280; letter-spacing: 0.05em; }
  .score-card .value { font-size: 28px; font-weight: 700; margin-top: 4px; }
  .score-card.overall .value { color: {{.ScoreColor}}; }
  .section { margin-bottom: 20px; }
  .section h2 { font-size: 14px; text-transform: uppercase; color: #374151; letter-spacing: 0.05em; border-bottom: 1px solid #e5e7eb; padding-bottom: 4px; }
  .section p { font-size: 12px; line-height: 1.6; }
  ul.missing { font-size: 12px; line-height: 1.8; padding-left: 20px; }
  .footer { margin-top: 32px; color: #9ca3af; font-size: 10px; border-top: 1px solid #e5e7eb; padding-top: 8px; }
</style>
</head>
<body>
<div class="header">
  <h1>Resume Score Report</h1>
  <div class="meta">
    Analysis {{.ID}}{{if .FileName}} &middot; {{.FileName}}{{end}} &middot; {{.Model}} &middot; {{.CreatedAt}}
  </div>
</div>
<div class="scores">
  <div class="score-card">
    <div class="label">Skills</div>
    <div class="value">{{printf "%.1f" .SkillsScore}}</div>
  </div>
  <div class="score-card">
    <div class="label">Experience</div>
    <div class="value">{{printf "%.1f" .ExperienceScore}}</div>
  </div>
  <div class="score-card overall">
    <div class="label">Overall</div>
    <div class="value">{{printf "%.1f" .OverallScore}}</div>
  </div>
</div>
<div class="section">
  <h2>Summary</h2>
  <p>{{.Summary}}</p>
</div>
<div class="section">
  <h2>Feedback</h2>
  <p>{{.Feedback}}</p>
</div>
{{if .MissingAspects}}
<div class="section">
  <h2>Missing Aspects</h2>
  <ul class="missing">
  {{range .MissingAspects}}<li>{{.}}</li>
  {{end}}</ul>
</div>
{{end}}
<div class="footer">Generated {{.GeneratedAt}}{{if .Source}} &middot; source: {{.Source}}{{end}}{{if .ExtractionMethod}} &middot; extraction: {{.ExtractionMethod}}{{end}}</div>
</body>
</html>`

// reportData is the template context for a score report
type reportData struct {
	ID               string
	FileName         string
	Model            string
	Source           string
	ExtractionMethod string
	CreatedAt        string
	GeneratedAt      string
	Summary          string
	Feedback         string
	SkillsScore      float64
	ExperienceScore  float64
	OverallScore     float64
	MissingAspects   []string
	ScoreColor       template.CSS
}

// ScoreReportBuilder renders analyses into printable PDF reports
type ScoreReportBuilder struct {
	tmpl     *template.Template
	renderer PDFRenderer
}

// NewScoreReportBuilder creates a report builder backed by the given renderer
func NewScoreReportBuilder(renderer PDFRenderer) (*ScoreReportBuilder, error) {
	tmpl, err := template.New("score_report").Parse(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	return &ScoreReportBuilder{
		tmpl:     tmpl,
		renderer: renderer,
	}, nil
}

// BuildHTML renders the report HTML for an analysis
func (b *ScoreReportBuilder) BuildHTML(result *scoringapp.AnalysisResult) (string, error) {
	data := reportData{
		ID:               result.ID.String(),
		FileName:         result.FileName,
		Model:            result.Model,
		Source:           result.Source,
		ExtractionMethod: result.ExtractionMethod,
		CreatedAt:        result.CreatedAt.Format("2006-01-02 15:04 MST"),
		GeneratedAt:      time.Now().Format("2006-01-02 15:04 MST"),
		Summary:          result.Score.Summary,
		Feedback:         result.Score.Feedback,
		SkillsScore:      result.Score.SkillsScore,
		ExperienceScore:  result.Score.ExperienceScore,
		OverallScore:     result.Score.OverallScore,
		MissingAspects:   result.Score.MissingAspects,
		ScoreColor:       scoreColor(result.Score.OverallScore),
	}

	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render report template: %w", err)
	}
	return buf.String(), nil
}

// scoreColor maps an overall score to its display color
func scoreColor(score float64) template.CSS {
	switch {
	case score >= 7:
		return "#16a34a"
	case score >= 4:
		return "#d97706"
	default:
		return "#dc2626"
	}
}

// Build renders the full PDF report for an analysis
func (b *ScoreReportBuilder) Build(ctx context.Context, result *scoringapp.AnalysisResult) ([]byte, error) {
	html, err := b.BuildHTML(result)
	if err != nil {
		return nil, err
	}

	title := "Resume Score Report"
	if result.FileName != "" {
		title = fmt.Sprintf("Resume Score Report - %s", strings.TrimSpace(result.FileName))
	}

	rendered, err := b.renderer.Render(ctx, &RenderRequest{
		HTML:  html,
		Title: title,
	})
	if err != nil {
		return nil, err
	}
	return rendered.PDFData, nil
}
