// Package funnel rebuilds TOFU -> MOFU -> BOFU chains from leads_to links.
package funnel

import (
	"context"

	"github.com/angelcm/cowork-dashboard/internal/apperr"
	"github.com/angelcm/cowork-dashboard/internal/models"
	"github.com/angelcm/cowork-dashboard/internal/store"
)

type Stages struct {
	TOFU []models.ContentItem `json:"tofu"`
	MOFU []models.ContentItem `json:"mofu"`
	BOFU []models.ContentItem `json:"bofu"`
}

type Result struct {
	Chains []models.FunnelChain `json:"chains"`
	Stages Stages               `json:"stages"`
}

// Partition buckets items by funnel stage, keeping input order. Items
// without a stage are dropped.
func Partition(items []models.ContentItem) Stages {
	st := Stages{TOFU: []models.ContentItem{}, MOFU: []models.ContentItem{}, BOFU: []models.ContentItem{}}
	for _, c := range items {
		switch c.FunnelStage {
		case models.StageTOFU:
			st.TOFU = append(st.TOFU, c)
		case models.StageMOFU:
			st.MOFU = append(st.MOFU, c)
		case models.StageBOFU:
			st.BOFU = append(st.BOFU, c)
		}
	}
	return st
}

// Detect builds one chain per BOFU item that has at least one MOFU item
// leading into it. Claims are local to a chain: the same TOFU or MOFU item
// shows up in every chain it genuinely links into. The walk never goes more
// than two hops back, so cyclic links cannot loop.
func Detect(items []models.ContentItem) Result {
	st := Partition(items)
	res := Result{Chains: []models.FunnelChain{}, Stages: st}

	seenBOFU := map[string]bool{}
	for _, b := range st.BOFU {
		if seenBOFU[b.ID] {
			continue
		}
		seenBOFU[b.ID] = true

		claimed := map[string]bool{b.ID: true}
		chain := models.FunnelChain{
			TOFU: []models.ContentItem{},
			MOFU: []models.ContentItem{},
			BOFU: []models.ContentItem{b},
		}
		for _, m := range st.MOFU {
			if claimed[m.ID] || !m.LeadsTo(b.ID) {
				continue
			}
			claimed[m.ID] = true
			chain.MOFU = append(chain.MOFU, m)
		}
		for _, m := range chain.MOFU {
			for _, t := range st.TOFU {
				if claimed[t.ID] || !t.LeadsTo(m.ID) {
					continue
				}
				claimed[t.ID] = true
				chain.TOFU = append(chain.TOFU, t)
			}
		}
		if len(chain.MOFU)+len(chain.TOFU) > 0 {
			res.Chains = append(res.Chains, chain)
		}
	}
	return res
}

type Service struct {
	col *store.Collection[models.ContentItem, *models.ContentItem]
}

func NewService(col *store.Collection[models.ContentItem, *models.ContentItem]) *Service {
	return &Service{col: col}
}

// ForProject runs Detect over the project's current content.
func (s *Service) ForProject(ctx context.Context, projectID string) (Result, error) {
	if projectID == "" {
		return Result{}, apperr.InvalidArgument("projectId is required")
	}
	items, err := s.col.Find(ctx, func(c models.ContentItem) bool { return c.ProjectID == projectID })
	if err != nil {
		return Result{}, err
	}
	return Detect(items), nil
}
