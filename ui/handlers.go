package ui

import (
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"expdesign/app"
	"expdesign/domain/core"
	"expdesign/domain/experiment"
	"expdesign/internal/errors"
)

// designerPage carries everything the designer template needs
type designerPage struct {
	Form         map[string]string
	DefaultAlpha float64
	DefaultPower float64
	Recent       []*experiment.DesignDoc
	Error        string
}

// resultPage carries a computed design for rendering
type resultPage struct {
	Design     *experiment.DesignDoc
	Payload    []experiment.ReportField
	Allocation []experiment.AllocationRow
	Formats    []string
}

// analysisPage carries the analysis form and, after a submission, the
// analyzer's verdict.
type analysisPage struct {
	Form         map[string]string
	DefaultAlpha float64
	Result       *experiment.AnalysisResult
	Error        string
}

func (a *App) handleDesigner(w http.ResponseWriter, r *http.Request) {
	session := a.ensureSession(w, r)

	form, err := a.store.GetAll(r.Context(), session)
	if err != nil {
		log.Printf("Loading session state failed: %v", err)
		form = map[string]string{}
	}

	recent, err := a.design.RecentDesigns(r.Context(), 5)
	if err != nil {
		log.Printf("Listing recent designs failed: %v", err)
	}

	a.renderTemplate(w, "designer.html", designerPage{
		Form:         form,
		DefaultAlpha: a.defaults.Alpha,
		DefaultPower: a.defaults.Power,
		Recent:       recent,
	})
}

func (a *App) handleViewDesign(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseDesignID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid design ID", http.StatusBadRequest)
		return
	}

	doc, err := a.design.Design(r.Context(), id)
	if err != nil {
		if errors.GetCode(err) == errors.CodeNotFound {
			http.Error(w, "Design not found", http.StatusNotFound)
			return
		}
		log.Printf("Loading design %s failed: %v", id, err)
		http.Error(w, "Loading design failed", http.StatusInternalServerError)
		return
	}

	a.renderTemplate(w, "design_result.html", resultPage{
		Design:     doc,
		Payload:    doc.ReportPayload(),
		Allocation: doc.AllocationTable(),
		Formats:    a.reports.Formats(),
	})
}

func (a *App) handleBuildDesign(w http.ResponseWriter, r *http.Request) {
	session := a.ensureSession(w, r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Malformed form submission", http.StatusBadRequest)
		return
	}

	// Saved before validation so a rejected submission still pre-fills.
	if err := a.store.SetAll(r.Context(), session, sessionFields(r.PostForm)); err != nil {
		log.Printf("Saving session state failed: %v", err)
	}

	doc, err := a.buildFromForm(r)
	if err != nil {
		a.renderDesignerError(w, r.PostForm, err)
		return
	}

	a.renderTemplate(w, "design_result.html", resultPage{
		Design:     doc,
		Payload:    doc.ReportPayload(),
		Allocation: doc.AllocationTable(),
		Formats:    a.reports.Formats(),
	})
}

func (a *App) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Malformed form submission", http.StatusBadRequest)
		return
	}

	doc, err := a.buildFromForm(r)
	if err != nil {
		a.renderDesignerError(w, r.PostForm, err)
		return
	}

	report, err := a.reports.Render(r.Context(), format, doc)
	if err != nil {
		if errors.GetCode(err) == errors.CodeNotFound {
			http.Error(w, "Unknown report format", http.StatusNotFound)
			return
		}
		log.Printf("Rendering %s report failed: %v", format, err)
		http.Error(w, "Report rendering failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	if _, err := w.Write(report.Data); err != nil {
		log.Printf("Writing report response failed: %v", err)
	}
}

// calculatorPage carries the sweep form and, after a submission, the
// lift-by-power sample-size grid.
type calculatorPage struct {
	Form         map[string]string
	DefaultAlpha float64
	DefaultPower float64
	Cells        []app.SweepCell
	Powers       []float64
	Rows         [][]app.SweepCell
	Error        string
}

func (a *App) handleCalculatorForm(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, "calculator.html", calculatorPage{
		Form:         map[string]string{},
		DefaultAlpha: a.defaults.Alpha,
		DefaultPower: a.defaults.Power,
	})
}

func (a *App) handleCalculator(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Malformed form submission", http.StatusBadRequest)
		return
	}

	page := calculatorPage{
		Form:         flatten(r.PostForm),
		DefaultAlpha: a.defaults.Alpha,
		DefaultPower: a.defaults.Power,
	}

	req, lifts, powers, err := parseSweepForm(r.PostForm)
	var cells []app.SweepCell
	if err == nil {
		// The grid supplies power per cell; the base spec just needs a
		// valid placeholder.
		if req.Spec.Power == 0 {
			req.Spec.Power = powers[0]
		}
		cells, err = a.design.SensitivitySweep(r.Context(), req, lifts, powers)
	}
	if err != nil {
		if !errors.IsAppError(err) {
			log.Printf("Sensitivity sweep failed: %v", err)
			http.Error(w, "Sensitivity sweep failed", http.StatusInternalServerError)
			return
		}
		page.Error = err.Error()
		a.renderTemplate(w, "calculator.html", page)
		return
	}

	page.Cells = cells
	page.Powers = powers
	// One table row per lift, one column per power.
	for i := 0; i < len(lifts); i++ {
		page.Rows = append(page.Rows, cells[i*len(powers):(i+1)*len(powers)])
	}
	a.renderTemplate(w, "calculator.html", page)
}

func (a *App) handleAnalysisForm(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, "analysis.html", analysisPage{
		Form:         map[string]string{},
		DefaultAlpha: a.defaults.Alpha,
	})
}

func (a *App) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Malformed form submission", http.StatusBadRequest)
		return
	}

	page := analysisPage{
		Form:         flatten(r.PostForm),
		DefaultAlpha: a.defaults.Alpha,
	}

	in, err := parseAnalysisForm(r.PostForm)
	if err == nil {
		page.Result, err = a.analysis.Analyze(r.Context(), in)
	}
	if err != nil {
		if !errors.IsAppError(err) {
			log.Printf("Analysis failed: %v", err)
			http.Error(w, "Analysis failed", http.StatusInternalServerError)
			return
		}
		page.Error = err.Error()
	}

	a.renderTemplate(w, "analysis.html", page)
}

func (a *App) handleClearSession(w http.ResponseWriter, r *http.Request) {
	session := a.ensureSession(w, r)
	if err := a.store.Clear(r.Context(), session); err != nil {
		log.Printf("Clearing session failed: %v", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// buildFromForm parses the submission and runs the design service
func (a *App) buildFromForm(r *http.Request) (*experiment.DesignDoc, error) {
	req, err := parseDesignForm(r.PostForm)
	if err != nil {
		return nil, err
	}
	return a.design.BuildDesign(r.Context(), req)
}

func (a *App) renderDesignerError(w http.ResponseWriter, form url.Values, err error) {
	if !errors.IsAppError(err) {
		log.Printf("Building design failed: %v", err)
		http.Error(w, "Building design failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusUnprocessableEntity)
	a.renderTemplate(w, "designer.html", designerPage{
		Form:         flatten(form),
		DefaultAlpha: a.defaults.Alpha,
		DefaultPower: a.defaults.Power,
		Error:        err.Error(),
	})
}

func flatten(form url.Values) map[string]string {
	out := make(map[string]string, len(form))
	for k := range form {
		out[k] = form.Get(k)
	}
	return out
}
