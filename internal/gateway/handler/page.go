package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"sdkchurn/internal/churn/matrix"
	"sdkchurn/internal/churn/state"
	"sdkchurn/internal/gateway/entity"
	churnsvc "sdkchurn/internal/gateway/service/churn"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

type PageHandler struct {
	svc    *churnsvc.Service
	logger *zap.Logger
}

func NewPageHandler(svc *churnsvc.Service, logger *zap.Logger) *PageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageHandler{svc: svc, logger: logger}
}

type sdkOption struct {
	Sdk     entity.Sdk
	Checked bool
	Href    string
}

type cellView struct {
	matrix.Cell
	Href      string
	CellStyle template.CSS
	Selected  bool
}

type rowView struct {
	Sdk   entity.Sdk
	Cells []cellView
}

type pageView struct {
	Options    []sdkOption
	Normalized bool
	NormalHref string
	Columns    []entity.Sdk
	Rows       []rowView
	DrillDown  *churnsvc.DrillDown
}

// HandleIndex renders the churn page for the address. Every control is a link
// to a new address; an empty selection is redirected to the bootstrap one.
func (h *PageHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	st, redirect := state.Canonicalize(state.Decode(r.URL.Query()))
	if redirect {
		http.Redirect(w, r, state.Href(r.URL.Path, st), http.StatusFound)
		return
	}

	page, err := h.svc.BuildPage(r.Context(), st)
	if err != nil && page == nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err != nil {
		h.logger.Warn("partial page", zap.Error(err))
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, newPageView(r.URL.Path, page)); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func newPageView(path string, page *churnsvc.Page) pageView {
	st := page.State
	v := pageView{
		Options:    make([]sdkOption, 0, len(page.AllSDKs)),
		Normalized: st.DisplayMode == state.Normalized,
		NormalHref: state.Href(path, st.ToggleDisplayMode()),
		Columns:    page.Matrix.Columns,
		Rows:       make([]rowView, 0, len(page.Matrix.Rows)),
		DrillDown:  page.DrillDown,
	}
	for _, sdk := range page.AllSDKs {
		v.Options = append(v.Options, sdkOption{
			Sdk:     sdk,
			Checked: st.Contains(sdk.ID),
			Href:    state.Href(path, st.Toggle(sdk.ID)),
		})
	}
	for _, row := range page.Matrix.Rows {
		rv := rowView{Sdk: row.Sdk, Cells: make([]cellView, 0, len(row.Cells))}
		for _, c := range row.Cells {
			target := c.Target()
			rv.Cells = append(rv.Cells, cellView{
				Cell:      c,
				Href:      state.Href(path, st.Select(target.From, target.To)),
				CellStyle: template.CSS(c.Style()),
				Selected:  st.DrillDown != nil && *st.DrillDown == target,
			})
		}
		v.Rows = append(v.Rows, rv)
	}
	return v
}
