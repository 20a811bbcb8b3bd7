package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pkg/errors"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/user/interp_viewer_go/internal/analysis"
	"github.com/user/interp_viewer_go/internal/parser"
	"github.com/user/interp_viewer_go/internal/pipeline"
	"github.com/user/interp_viewer_go/internal/report"
)

// renderResult is what a successful render leaves behind for PDF export.
type renderResult struct {
	charts        []report.Chart
	seriesReports []*analysis.SeriesReport
	curveStats    []analysis.CurveStats
}

// App struct
type App struct {
	ctx    context.Context
	logger *slog.Logger

	mu   sync.Mutex
	last *renderResult
}

// NewApp creates a new App application struct
func NewApp(logger *slog.Logger) *App {
	return &App{logger: logger}
}

// Startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	runtime.WindowSetTitle(a.ctx, "Interpolation Viewer")
}

func (a *App) sendStatus(message string) {
	if a.ctx != nil {
		runtime.EventsEmit(a.ctx, "statusUpdate", message)
	}
	a.logger.Info(message)
}

func (a *App) clearLog() {
	if a.ctx != nil {
		runtime.EventsEmit(a.ctx, "clearLog")
	}
}

// SelectDataDir asks for the directory holding the generator output files.
func (a *App) SelectDataDir() (string, error) {
	return runtime.OpenDirectoryDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "Select directory with output files",
	})
}

// SelectPDFPath asks where to save the PDF report.
func (a *App) SelectPDFPath() (string, error) {
	return runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		Title:           "Save report",
		DefaultFilename: "interpolation_report.pdf",
		Filters:         []runtime.FileFilter{{DisplayName: "PDF (*.pdf)", Pattern: "*.pdf"}},
	})
}

// showChart sends a rendered chart to the window.
func (a *App) showChart(c report.Chart) error {
	if a.ctx == nil {
		return errors.New("window not ready")
	}
	runtime.EventsEmit(a.ctx, "chartReady", c.Name, c.Title, base64.StdEncoding.EncodeToString(c.PNG))
	return nil
}

// HandleRenderCharts is called from the frontend to parse and plot every file
// found in dataDir. Progress is reported through events.
func (a *App) HandleRenderCharts(dataDir string) (string, error) {
	cfg := pipeline.DefaultConfig()
	cfg.DataDir = dataDir
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	a.clearLog()
	a.sendStatus(fmt.Sprintf("Request: data directory [%s]", dataDir))

	go func() { // Run in a goroutine to avoid blocking the UI
		defer func() {
			if r := recover(); r != nil {
				errMsg := fmt.Sprintf("PANIC recovered: %v", r)
				a.sendStatus(errMsg)
				runtime.EventsEmit(a.ctx, "generationComplete", false, errMsg)
			}
		}()

		runtime.EventsEmit(a.ctx, "generationStart")

		res, failures := a.render(cfg)

		a.mu.Lock()
		a.last = res
		a.mu.Unlock()

		if failures > 0 {
			errMsg := fmt.Sprintf("Finished with %d failed pipeline(s), %d chart(s) shown.", failures, len(res.charts))
			a.sendStatus(errMsg)
			runtime.EventsEmit(a.ctx, "generationComplete", false, errMsg)
			return
		}
		successMsg := fmt.Sprintf("Rendered %d chart(s).", len(res.charts))
		a.sendStatus(successMsg)
		runtime.EventsEmit(a.ctx, "generationComplete", true, successMsg)
	}()

	return "Rendering started in background.", nil
}

// render runs both pipelines. A failing pipeline does not stop the other one.
func (a *App) render(cfg pipeline.Config) (*renderResult, int) {
	res := &renderResult{}
	failures := 0

	renderer := report.NewPlotRenderer(func(c report.Chart) error {
		res.charts = append(res.charts, c)
		return a.showChart(c)
	})
	renderer.ErrorHeatmap = true

	a.sendStatus("Parsing interpolation output...")
	datasets, err := pipeline.RunInterpolation(cfg, renderer, a.logger)
	if err != nil {
		a.sendStatus(fmt.Sprintf("Interpolation pipeline failed: %v", err))
		failures++
	}
	for _, ds := range datasets {
		a.reportParseErrors(ds)
		rep, err := analysis.AnalyzeSeries(ds)
		if err != nil {
			a.sendStatus(fmt.Sprintf("Skipping error analysis of %s: %v", ds.Source, err))
			continue
		}
		for _, note := range rep.AnalysisErrors {
			a.sendStatus(fmt.Sprintf("- %s", note))
		}
		res.seriesReports = append(res.seriesReports, rep)
	}

	a.sendStatus("Parsing curve output...")
	curves, err := pipeline.RunCurves(cfg, renderer, a.logger)
	if err != nil {
		a.sendStatus(fmt.Sprintf("Curve pipeline failed: %v", err))
		failures++
	} else if stats, err := analysis.AnalyzeCurves(curves); err == nil {
		res.curveStats = stats
	}

	return res, failures
}

func (a *App) reportParseErrors(ds *parser.SeriesDataset) {
	if len(ds.ParseErrors) == 0 {
		return
	}
	a.sendStatus(fmt.Sprintf("Parsing warnings in %s:", ds.Source))
	for _, e := range ds.ParseErrors {
		a.sendStatus(fmt.Sprintf("- %s", e))
	}
}

// HandleExportPDF writes the last rendered charts and statistics to pdfPath.
func (a *App) HandleExportPDF(pdfPath string) (string, error) {
	a.mu.Lock()
	res := a.last
	a.mu.Unlock()

	if res == nil || len(res.charts) == 0 {
		return "", errors.New("nothing rendered yet")
	}

	a.sendStatus(fmt.Sprintf("Generating PDF: %s...", pdfPath))
	if err := report.BuildPDFReport(pdfPath, res.seriesReports, res.curveStats, res.charts); err != nil {
		errMsg := fmt.Sprintf("Error generating PDF report: %v", err)
		a.sendStatus(errMsg)
		return "", errors.Wrap(err, "failed to export PDF")
	}
	successMsg := fmt.Sprintf("PDF report successfully generated: %s", pdfPath)
	a.sendStatus(successMsg)
	return successMsg, nil
}
