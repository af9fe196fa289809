package ui

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"utitriage/domain/assessment"
	"utitriage/internal/errors"
	"utitriage/internal/intake"
)

// FieldView is one form input
type FieldView struct {
	Key    string
	Label  string
	Kind   string // age|gender|flag|measure
	Detail bool
	Value  string
	Error  string
}

// FormView is the data for index.html
type FormView struct {
	Mode    intake.Mode
	Basic   []FieldView
	Detail  []FieldView
	Message string
}

// ResultView is the data for result.html
type ResultView struct {
	Mode     intake.Mode
	Result   *assessment.Result
	Risk     string
	Level    string
	Guidance template.HTML
}

func kindName(k intake.Kind) string {
	switch k {
	case intake.KindAge:
		return "age"
	case intake.KindGender:
		return "gender"
	case intake.KindMeasure:
		return "measure"
	}
	return "flag"
}

func newFormView(mode intake.Mode, values map[string][]string, problems map[string]string) FormView {
	view := FormView{Mode: mode}
	for _, q := range intake.Questions(intake.ModeDetailed) {
		f := FieldView{Key: q.Key, Label: q.Label, Kind: kindName(q.Kind), Detail: q.Detail}
		if v := values[q.Key]; len(v) > 0 {
			f.Value = v[0]
		}
		f.Error = problems[q.Key]
		if q.Detail {
			view.Detail = append(view.Detail, f)
		} else {
			view.Basic = append(view.Basic, f)
		}
	}
	return view
}

func (s *Server) handleIndex(c *gin.Context) {
	mode := intake.ModeBasic
	if m, err := intake.ParseMode(c.Query("mode")); err == nil {
		mode = m
	}
	s.renderTemplate(c, http.StatusOK, "index.html", newFormView(mode, nil, nil))
}

func (s *Server) handleAssess(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		s.renderTemplate(c, http.StatusBadRequest, "index.html",
			FormView{Mode: intake.ModeBasic, Message: "The form could not be read."})
		return
	}
	form := c.Request.PostForm

	mode, err := intake.ParseMode(form.Get("mode"))
	if err != nil {
		mode = intake.ModeBasic
	}

	rec, err := intake.DecodeForm(mode, form)
	if err != nil {
		var fe *intake.FormError
		problems := map[string]string{}
		if errors.As(err, &fe) {
			problems = fe.Fields
		}
		view := newFormView(mode, form, problems)
		view.Message = "Please correct the highlighted fields."
		s.renderTemplate(c, http.StatusUnprocessableEntity, "index.html", view)
		return
	}

	ctx := c.Request.Context()
	release, err := s.acquire(ctx)
	if err != nil {
		s.logger.Warn("assessment slot not available: %v", err)
		view := newFormView(mode, form, nil)
		view.Message = "The service is busy. Please try again in a moment."
		s.renderTemplate(c, http.StatusServiceUnavailable, "index.html", view)
		return
	}
	defer release()

	res, err := s.predictor.Predict(ctx, rec)
	if err != nil {
		s.logger.Error("assessment failed: %v", err)
		view := newFormView(mode, form, nil)
		view.Message = assessment.ScoringFailureMessage
		s.renderTemplate(c, http.StatusInternalServerError, "index.html", view)
		return
	}

	s.renderTemplate(c, http.StatusOK, "result.html", ResultView{
		Mode:     mode,
		Result:   res,
		Risk:     res.Recommendation.Risk(),
		Level:    res.Recommendation.Level(),
		Guidance: s.guidance[res.Recommendation.Level()],
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	d := s.predictor.Describe()
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"artifacts":   d.Version,
		"checksum":    d.Checksum,
		"classifiers": d.Classifiers,
	})
}
