package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/codyseavey/pokecard-lookup/internal/facets"
	"github.com/codyseavey/pokecard-lookup/internal/logging"
	"github.com/codyseavey/pokecard-lookup/internal/metrics"
	"github.com/codyseavey/pokecard-lookup/internal/models"
)

// CardSource is one upstream card database.
type CardSource interface {
	Source() Source
	Search(ctx context.Context, q Query) ([]models.Card, error)
}

// SearchRequest is a user search after parameter parsing.
type SearchRequest struct {
	Term    string
	Field   models.SearchField
	Scope   models.Scope
	Filters facets.Selection
}

// SearchService fans a search out to the English (primary) and Japanese
// (secondary) sources and merges what comes back.
type SearchService struct {
	english  CardSource
	japanese CardSource
	logger   *zap.Logger
}

// NewSearchService wires the sources. japanese may be nil when no Japanese
// database is configured.
func NewSearchService(english, japanese CardSource, logger *zap.Logger) *SearchService {
	return &SearchService{
		english:  english,
		japanese: japanese,
		logger:   logging.OrNop(logger),
	}
}

// HasJapanese reports whether a Japanese source is configured.
func (s *SearchService) HasJapanese() bool {
	return s.japanese != nil
}

type sourceResult struct {
	cards []models.Card
	err   error
}

// Search normalizes the term, queries the sources the scope asks for and
// returns the merged, sorted and filtered cards.
//
// A failing secondary source is logged and dropped. A failing primary, or
// sole, source fails the whole search.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) ([]models.Card, error) {
	q, err := NormalizeQuery(req.Term, req.Field)
	if err != nil {
		return nil, err
	}

	scope := req.Scope
	if scope == "" {
		scope = models.ScopeAll
	}

	var primary, secondary CardSource
	switch scope {
	case models.ScopeEnglish:
		primary = s.english
	case models.ScopeJapanese:
		if s.japanese == nil {
			metrics.SearchesTotal.WithLabelValues(string(scope), "failed").Inc()
			return nil, fmt.Errorf("japanese search: %w", ErrSourceNotConfigured)
		}
		primary = s.japanese
	case models.ScopeAll:
		primary = s.english
		secondary = s.japanese
	default:
		return nil, fmt.Errorf("%w: language %q", ErrInvalidParameter, scope)
	}

	// each goroutine owns one slot, so no locking is needed
	var primaryRes, secondaryRes sourceResult
	var g errgroup.Group
	g.Go(func() error {
		primaryRes.cards, primaryRes.err = primary.Search(ctx, q)
		return nil
	})
	if secondary != nil {
		g.Go(func() error {
			secondaryRes.cards, secondaryRes.err = secondary.Search(ctx, q)
			return nil
		})
	}
	_ = g.Wait()

	if primaryRes.err != nil {
		metrics.SearchesTotal.WithLabelValues(string(scope), "failed").Inc()
		s.logger.Error("search failed",
			zap.String("source", string(primary.Source())),
			zap.String("query", req.Term),
			zap.Error(primaryRes.err))
		return nil, primaryRes.err
	}

	outcome := "ok"
	if secondary != nil && secondaryRes.err != nil {
		outcome = "partial"
		s.logger.Warn("secondary source failed, returning partial results",
			zap.String("source", string(secondary.Source())),
			zap.String("query", req.Term),
			zap.Error(secondaryRes.err))
		secondaryRes.cards = nil
	}

	// a secondary only exists when English is primary, so this is attempt order
	cards := MergeAndSort(primaryRes.cards, secondaryRes.cards)
	cards = req.Filters.Apply(cards)

	metrics.SearchesTotal.WithLabelValues(string(scope), outcome).Inc()
	metrics.SearchResults.Observe(float64(len(cards)))
	s.logger.Info("search completed",
		zap.String("query", req.Term),
		zap.String("scope", string(scope)),
		zap.String("field", string(req.Field)),
		zap.Int("results", len(cards)))

	return cards, nil
}
