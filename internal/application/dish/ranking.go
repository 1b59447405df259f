package dish

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/alchemorsel/dishgen/internal/ports/inbound"
	"github.com/alchemorsel/dishgen/internal/ports/outbound"
	"github.com/alchemorsel/dishgen/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// rankingVersionKey is bumped on every change that can reorder the
// ranking, which orphans every cached page at once
const rankingVersionKey = "ranking:version"

// rankingPage is the viewer-independent part of a ranking page
type rankingPage struct {
	Dishes []inbound.DishDTO `json:"dishes"`
	Total  int               `json:"total"`
}

// Ranking returns dishes ordered by likes, then newest first. Pages are
// cached; the viewer's likes are looked up on every call.
func (s *Service) Ranking(ctx context.Context, viewerID *uuid.UUID, params inbound.PaginationParams) (*inbound.DishList, error) {
	ctx, span := s.tracer.Start(ctx, "dish.Ranking")
	defer span.End()

	params = s.normalize(params)
	key := s.rankingKey(ctx, params)

	page, hit := s.cachedRanking(ctx, key)
	if !hit {
		dishes, total, err := s.catalog.ListRanking(ctx, params.Offset(), params.PageSize)
		if err != nil {
			return nil, errors.NewDatabaseError("list ranking", err)
		}

		page = &rankingPage{Dishes: make([]inbound.DishDTO, len(dishes)), Total: total}
		for i, d := range dishes {
			page.Dishes[i] = toDTO(d, false)
		}
		s.storeRanking(ctx, key, page)
	}

	liked := []uuid.UUID{}
	if viewerID != nil && len(page.Dishes) > 0 {
		ids := make([]uuid.UUID, len(page.Dishes))
		for i, d := range page.Dishes {
			ids[i] = d.ID
		}
		var err error
		liked, err = s.catalog.LikedDishIDs(ctx, *viewerID, ids)
		if err != nil {
			return nil, errors.NewDatabaseError("load liked dishes", err)
		}
	}

	likedSet := make(map[uuid.UUID]struct{}, len(liked))
	for _, id := range liked {
		likedSet[id] = struct{}{}
	}
	dtos := make([]inbound.DishDTO, len(page.Dishes))
	for i, d := range page.Dishes {
		_, d.LikedByMe = likedSet[d.ID]
		dtos[i] = d
	}

	return &inbound.DishList{
		Dishes:       dtos,
		LikedDishIDs: liked,
		Total:        page.Total,
		Page:         params.Page,
		PageSize:     params.PageSize,
		TotalPages:   totalPages(page.Total, params.PageSize),
	}, nil
}

func (s *Service) rankingKey(ctx context.Context, params inbound.PaginationParams) string {
	version := "0"
	raw, err := s.cache.Get(ctx, rankingVersionKey)
	switch {
	case err == nil:
		version = string(raw)
	case !stderrors.Is(err, outbound.ErrCacheMiss):
		s.logger.Warn("Failed to read ranking version", zap.Error(err))
	}
	return fmt.Sprintf("ranking:v%s:page:%d:size:%d", version, params.Page, params.PageSize)
}

func (s *Service) cachedRanking(ctx context.Context, key string) (*rankingPage, bool) {
	if s.opts.RankingCacheTTL <= 0 {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !stderrors.Is(err, outbound.ErrCacheMiss) {
			s.logger.Warn("Failed to read ranking cache", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var page rankingPage
	if err := json.Unmarshal(raw, &page); err != nil {
		s.logger.Warn("Discarding corrupt ranking cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &page, true
}

func (s *Service) storeRanking(ctx context.Context, key string, page *rankingPage) {
	if s.opts.RankingCacheTTL <= 0 {
		return
	}

	raw, err := json.Marshal(page)
	if err != nil {
		s.logger.Warn("Failed to encode ranking page", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.opts.RankingCacheTTL); err != nil {
		s.logger.Warn("Failed to write ranking cache", zap.String("key", key), zap.Error(err))
	}
}

// invalidateRanking bumps the ranking version; stale pages expire on their own
func (s *Service) invalidateRanking(ctx context.Context) {
	version, err := s.cache.Increment(ctx, rankingVersionKey)
	if err != nil {
		s.logger.Warn("Failed to bump ranking version", zap.Error(err))
		return
	}
	s.logger.Debug("Ranking cache invalidated", zap.Int64("version", version))
}
