package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/anime-shed/lab-report-inspector-go/internal/analyzer"
	"github.com/anime-shed/lab-report-inspector-go/internal/config"
	"github.com/anime-shed/lab-report-inspector-go/internal/service"
	"github.com/anime-shed/lab-report-inspector-go/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	mu           sync.Mutex
	analyzed     []string
	force        bool
	expected     string
	question     string
	context      string
	releaseCalls int
}

func (f *fakeService) Analyze(_ context.Context, doc models.UploadedDocument, opts analyzer.PreprocessOptions) *models.AnalysisReport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyzed = append(f.analyzed, doc.Name)
	f.force = opts.Force
	return &models.AnalysisReport{
		ID:       "id-" + doc.Name,
		Document: doc.Name,
		Result:   models.NewAnalysisResult("Summary of "+doc.Name, []string{"finding"}, nil, nil),
	}
}

func (f *fakeService) AnalyzeURL(context.Context, string, analyzer.PreprocessOptions) (*models.AnalysisReport, error) {
	return nil, nil
}

func (f *fakeService) CheckQuality(doc models.UploadedDocument) (models.QualityReport, error) {
	return models.QualityReport{Checked: doc.IsImage(), Accepted: true}, nil
}

func (f *fakeService) ExtractText(_ context.Context, doc models.UploadedDocument, expected string) (models.ExtractionReport, error) {
	f.expected = expected
	return models.ExtractionReport{Text: "Glucose 92", Source: models.SourcePDFText}, nil
}

func (f *fakeService) Ask(_ context.Context, question, analysisContext string) string {
	f.question, f.context = question, analysisContext
	return "It is within range."
}

func run(t *testing.T, svc *fakeService, args ...string) (string, error) {
	t.Helper()
	provider := func(*config.Config) (service.LabReportService, func(), error) {
		return svc, func() { svc.releaseCalls++ }, nil
	}
	cmd := NewRootCommand(provider)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

var pdfBytes = []byte("%PDF-1.4\n%%EOF\n")

func TestAnalyzeCommand_Batch(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.pdf", pdfBytes)
	b := writeFile(t, dir, "b.pdf", pdfBytes)
	missing := filepath.Join(dir, "missing.pdf")

	svc := &fakeService{}
	out, err := run(t, svc, "analyze", a, b, missing, "--workers", "2", "--force")
	require.NoError(t, err)

	var reports []struct {
		Document string   `json:"document"`
		Warnings []string `json:"warnings"`
		Result   struct {
			Summary string `json:"summary"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 3)
	assert.Equal(t, "Summary of a.pdf", reports[0].Result.Summary)
	assert.Equal(t, "Summary of b.pdf", reports[1].Result.Summary)
	assert.Equal(t, "missing.pdf", reports[2].Document)
	assert.NotEmpty(t, reports[2].Warnings)
	assert.ElementsMatch(t, []string{"a.pdf", "b.pdf"}, svc.analyzed)
	assert.True(t, svc.force)
	assert.Equal(t, 1, svc.releaseCalls)
}

func TestAnalyzeCommand_SingleFilePrintsObject(t *testing.T) {
	path := writeFile(t, t.TempDir(), "cbc.pdf", pdfBytes)

	out, err := run(t, &fakeService{}, "analyze", path)
	require.NoError(t, err)

	var report models.AnalysisReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "id-cbc.pdf", report.ID)
}

func TestAnalyzeCommand_RequiresFiles(t *testing.T) {
	_, err := run(t, &fakeService{}, "analyze")
	assert.Error(t, err)
}

func TestQualityCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "cbc.pdf", pdfBytes)

	out, err := run(t, &fakeService{}, "quality", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"accepted": true`)

	_, err = run(t, &fakeService{}, "quality", filepath.Join(t.TempDir(), "nope.png"))
	assert.ErrorContains(t, err, "failed to access file")
}

func TestOCRCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "cbc.pdf", pdfBytes)
	svc := &fakeService{}

	out, err := run(t, svc, "ocr", path, "--expected", "Glucose 92")
	require.NoError(t, err)
	assert.Equal(t, "Glucose 92", svc.expected)
	assert.Contains(t, out, `"source": "pdf_text"`)
}

func TestAskCommand(t *testing.T) {
	dir := t.TempDir()
	reportFile := writeFile(t, dir, "report.json",
		[]byte(`{"id":"x","result":{"summary":"Low iron","keyFindings":["Ferritin 8"],"recommendations":[],"riskFactors":[]}}`))
	svc := &fakeService{}

	out, err := run(t, svc, "ask", "--question", "What now?", "--context-file", reportFile)
	require.NoError(t, err)
	assert.Equal(t, "What now?", svc.question)
	assert.Contains(t, svc.context, "Summary: Low iron")
	assert.Contains(t, out, "It is within range.")

	_, err = run(t, svc, "ask", "--question", "  ", "--context-file", reportFile)
	assert.ErrorContains(t, err, "--question cannot be empty")

	_, err = run(t, svc, "ask", "--question", "Why?")
	assert.Error(t, err)
}

func TestContextFromFile(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain text", "  Summary: fine\n", "Summary: fine"},
		{"bare result", `{"summary":"Fine","keyFindings":["A"]}`, "Summary: Fine"},
		{"report", `{"result":{"summary":"Report summary"}}`, "Summary: Report summary"},
		{"unrelated json", `{"foo":1}`, `{"foo":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, contextFromFile([]byte(tt.raw)), tt.want)
		})
	}
}
