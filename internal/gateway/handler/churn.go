package handler

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"sdkchurn/internal/churn/state"
	"sdkchurn/internal/gateway/entity"
	churnrepo "sdkchurn/internal/gateway/repository/churn"
	churnsvc "sdkchurn/internal/gateway/service/churn"
)

type ChurnHandler struct {
	svc    *churnsvc.Service
	logger *zap.Logger
}

func NewChurnHandler(svc *churnsvc.Service, logger *zap.Logger) *ChurnHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChurnHandler{svc: svc, logger: logger}
}

func (h *ChurnHandler) HandleSDKs(w http.ResponseWriter, r *http.Request) {
	sdks, err := h.svc.ListSDKs(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if sdks == nil {
		sdks = []entity.Sdk{}
	}
	_ = writeJSON(w, http.StatusOK, sdks)
}

// HandleChurn accepts the same query as the page, so a client can reuse its
// own address. With the normal flag the edges carry row proportions.
func (h *ChurnHandler) HandleChurn(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ids := state.ParseIDs(q[state.ParamID])
	if len(ids) == 0 {
		writeError(w, r, h.logger, churnrepo.ErrNoSDKs)
		return
	}

	if q.Has(state.ParamNormal) {
		edges, err := h.svc.NormalizedChurn(r.Context(), ids)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		_ = writeJSON(w, http.StatusOK, edges)
		return
	}

	edges, err := h.svc.Churn(r.Context(), ids)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if edges == nil {
		edges = []entity.ChurnEdge{}
	}
	_ = writeJSON(w, http.StatusOK, edges)
}

func (h *ChurnHandler) HandleApps(w http.ResponseWriter, r *http.Request) {
	from, errFrom := strconv.Atoi(strings.TrimSpace(r.PathValue("from")))
	to, errTo := strconv.Atoi(strings.TrimSpace(r.PathValue("to")))
	if errFrom != nil || errTo != nil {
		http.Error(w, "from and to must be SDK ids", http.StatusBadRequest)
		return
	}
	apps, err := h.svc.ResolveApps(r.Context(), entity.Pair{From: entity.SdkID(from), To: entity.SdkID(to)})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, apps)
}

type matrixResponse struct {
	Address     string            `json:"address"`
	DisplayMode state.DisplayMode `json:"display_mode"`
	*churnsvc.Page
}

// HandleMatrix serves the page view model to script clients. An empty
// selection is answered with the bootstrap state, whose address is returned
// so the client can navigate to it.
func (h *ChurnHandler) HandleMatrix(w http.ResponseWriter, r *http.Request) {
	st, _ := state.Canonicalize(state.Decode(r.URL.Query()))
	page, err := h.svc.BuildPage(r.Context(), st)
	if err != nil && page == nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err != nil {
		h.logger.Warn("partial page", zap.Error(err))
	}
	_ = writeJSON(w, http.StatusOK, matrixResponse{
		Address:     state.Href("/", st),
		DisplayMode: st.DisplayMode,
		Page:        page,
	})
}
