package churn

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sdkchurn/internal/churn/matrix"
	"sdkchurn/internal/churn/normalize"
	"sdkchurn/internal/churn/state"
	"sdkchurn/internal/gateway/entity"
	churnrepo "sdkchurn/internal/gateway/repository/churn"
)

// Service answers churn queries on top of a churn store.
type Service struct {
	store  churnrepo.Store
	logger *zap.Logger
}

func New(store churnrepo.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

func (s *Service) ListSDKs(ctx context.Context) ([]entity.Sdk, error) {
	return s.store.ListSDKs(ctx)
}

// Churn returns the raw edge set for ids.
func (s *Service) Churn(ctx context.Context, ids []entity.SdkID) ([]entity.ChurnEdge, error) {
	if len(ids) == 0 {
		return nil, churnrepo.ErrNoSDKs
	}
	return s.store.Aggregate(ctx, ids)
}

// NormalizedChurn returns the edge set for ids with row proportions.
func (s *Service) NormalizedChurn(ctx context.Context, ids []entity.SdkID) ([]entity.NormalizedChurnEdge, error) {
	edges, err := s.Churn(ctx, ids)
	if err != nil {
		return nil, err
	}
	return normalize.Normalize(edges, ids), nil
}

func (s *Service) ResolveApps(ctx context.Context, p entity.Pair) ([]entity.App, error) {
	apps, err := s.store.Apps(ctx, p)
	if err != nil {
		return nil, err
	}
	if apps == nil {
		apps = []entity.App{}
	}
	return apps, nil
}

type DrillDown struct {
	From    entity.Sdk   `json:"from"`
	To      entity.Sdk   `json:"to"`
	Heading string       `json:"heading"`
	Apps    []entity.App `json:"apps"`
}

// Page is everything one page load renders.
type Page struct {
	State     state.State   `json:"-"`
	AllSDKs   []entity.Sdk  `json:"sdks"`
	Selected  []entity.Sdk  `json:"selected"`
	Matrix    matrix.Matrix `json:"matrix"`
	DrillDown *DrillDown    `json:"drill_down,omitempty"`
}

// BuildPage runs one page load for an already canonical state. The SDK list
// and the churn edges are fetched concurrently; the drill-down fetch waits for
// both. On a drill-down failure the page is still returned with the error.
func (s *Service) BuildPage(ctx context.Context, st state.State) (*Page, error) {
	if st.IsEmpty() {
		return nil, churnrepo.ErrNoSDKs
	}

	var (
		allSDKs []entity.Sdk
		edges   []entity.ChurnEdge
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		allSDKs, err = s.store.ListSDKs(gctx)
		if err != nil {
			return fmt.Errorf("list sdks: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		edges, err = s.Churn(gctx, st.SelectedSDKs)
		if err != nil {
			return fmt.Errorf("churn: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Rows are normalized over the SDKs that are actually laid out.
	selected := SelectSDKs(allSDKs, st.SelectedSDKs)
	ids := make([]entity.SdkID, len(selected))
	for i, sdk := range selected {
		ids[i] = sdk.ID
	}
	page := &Page{
		State:    st,
		AllSDKs:  allSDKs,
		Selected: selected,
		Matrix:   matrix.Build(selected, normalize.Normalize(edges, ids), st.DisplayMode),
	}

	from, to, ok := resolvePair(st, selected)
	if !ok {
		if st.DrillDown != nil {
			s.logger.Debug("drill-down outside selection, skipped", zap.Stringer("pair", *st.DrillDown))
		}
		return page, nil
	}
	apps, err := s.ResolveApps(ctx, entity.Pair{From: from.ID, To: to.ID})
	if err != nil {
		return page, fmt.Errorf("drill-down apps: %w", err)
	}
	page.DrillDown = &DrillDown{
		From:    from,
		To:      to,
		Heading: Heading(from, to),
		Apps:    apps,
	}
	return page, nil
}

// SelectSDKs maps ids to known SDKs in id order. Unknown ids are dropped.
func SelectSDKs(all []entity.Sdk, ids []entity.SdkID) []entity.Sdk {
	byID := make(map[entity.SdkID]entity.Sdk, len(all))
	for _, sdk := range all {
		byID[sdk.ID] = sdk
	}
	out := make([]entity.Sdk, 0, len(ids))
	for _, id := range ids {
		if sdk, ok := byID[id]; ok {
			out = append(out, sdk)
		}
	}
	return out
}

func resolvePair(st state.State, selected []entity.Sdk) (entity.Sdk, entity.Sdk, bool) {
	p, ok := st.ResolvedDrillDown()
	if !ok {
		return entity.Sdk{}, entity.Sdk{}, false
	}
	var from, to *entity.Sdk
	for i := range selected {
		if selected[i].ID == p.From {
			from = &selected[i]
		}
		if selected[i].ID == p.To {
			to = &selected[i]
		}
	}
	if from == nil || to == nil {
		return entity.Sdk{}, entity.Sdk{}, false
	}
	return *from, *to, true
}

func Heading(from, to entity.Sdk) string {
	if from.ID == to.ID {
		return "Apps using " + from.Name
	}
	return "Apps moved to " + to.Name + " from " + from.Name
}
