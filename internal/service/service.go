package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joshuakim/sharpline/internal/metrics"
	"github.com/joshuakim/sharpline/internal/models"
	"github.com/joshuakim/sharpline/internal/projection"
	"github.com/joshuakim/sharpline/internal/providers"
	"github.com/joshuakim/sharpline/internal/store"
	"github.com/sirupsen/logrus"
)

// Provider labels for failures that carry no *providers.Error
const (
	SourceOdds     = "oddsapi"
	SourceMetrics  = "nbastats"
	SourceInjuries = "injuries"
	SourceGameLogs = "sportsdata"
)

// ErrNoGameLogs is returned by PlayerRecent when no game-log provider is configured
var ErrNoGameLogs = errors.New("no game-log provider configured")

// LineSource supplies game totals and player points lines
type LineSource interface {
	GetGameLines(ctx context.Context) ([]models.GameLine, error)
	GetPropLines(ctx context.Context, limit int) ([]models.PropLine, error)
}

// MetricsSource supplies live team metrics
type MetricsSource interface {
	GetTeamMetrics(ctx context.Context) (projection.LiveMetrics, error)
}

// InjurySource supplies player availability
type InjurySource interface {
	GetStatuses(ctx context.Context) (models.InjuryStatuses, error)
}

// GameLogSource supplies recent player scoring
type GameLogSource interface {
	RecentScoring(ctx context.Context, names []string) (map[models.PlayerKey]float64, error)
	GetRecent(ctx context.Context, name string) (models.PlayerRecent, bool, error)
}

// Purger drops expired entries from a response cache
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// Sources are the collaborators a refresh pulls from. Lines is required; a nil
// optional source contributes an empty collection.
type Sources struct {
	Lines    LineSource
	Metrics  MetricsSource
	Injuries InjurySource
	GameLogs GameLogSource
}

// Service runs refresh cycles and keeps the latest result
type Service struct {
	sources       Sources
	engine        *projection.Engine
	store         *store.Store
	metrics       *metrics.Metrics
	propScanGames int
	now           func() time.Time
	logger        *logrus.Logger
	purger        Purger

	// serializes refreshes so two requests never interleave fetches
	refreshMu sync.Mutex
}

// New creates a refresh service. propScanGames limits how many games are
// scanned for props, 0 scans all.
func New(sources Sources, engine *projection.Engine, st *store.Store, m *metrics.Metrics, propScanGames int, logger *logrus.Logger) *Service {
	return &Service{
		sources:       sources,
		engine:        engine,
		store:         st,
		metrics:       m,
		propScanGames: propScanGames,
		now:           time.Now,
		logger:        logger,
	}
}

// SetPurger makes every refresh start by dropping expired cache entries
func (s *Service) SetPurger(p Purger) {
	s.purger = p
}

// Latest returns the most recent refresh result
func (s *Service) Latest() (store.Result, bool) {
	return s.store.Latest()
}

// Game returns one game projection from the latest result
func (s *Service) Game(id string) (projection.GameAnalysis, bool) {
	return s.store.GetGame(id)
}

// LastUpdated returns when the latest result was stored
func (s *Service) LastUpdated() time.Time {
	return s.store.LastUpdated()
}

// Reset drops the latest result, starting a fresh session
func (s *Service) Reset() {
	s.store.Clear()
	s.logger.Info("Session reset")
}

// Refresh pulls every collaborator, builds one immutable snapshot, runs the
// engine over it and stores the result. Collaborator failures never fail the
// refresh: the failing input falls back to empty and the failure is reported
// in the result.
func (s *Service) Refresh(ctx context.Context) store.Result {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	start := s.now()
	snapshot := projection.Snapshot{
		ID:      uuid.NewString(),
		TakenAt: start.UTC(),
	}
	log := s.logger.WithField("snapshot_id", snapshot.ID)

	if s.purger != nil {
		if n, err := s.purger.Purge(ctx); err != nil {
			log.WithError(err).Warn("Cache purge failed")
		} else if n > 0 {
			log.WithField("purged", n).Debug("Expired cache entries removed")
		}
	}

	var failures failureList

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		lines, err := s.sources.Lines.GetGameLines(ctx)
		s.observe(ctx, &failures, SourceOdds, err)
		snapshot.GameLines = lines
	}()
	go func() {
		defer wg.Done()
		if s.sources.GameLogs == nil {
			return
		}
		props, err := s.sources.Lines.GetPropLines(ctx, s.propScanGames)
		s.observe(ctx, &failures, SourceOdds, err)
		snapshot.PropLines = props
	}()
	go func() {
		defer wg.Done()
		if s.sources.Metrics == nil {
			return
		}
		live, err := s.sources.Metrics.GetTeamMetrics(ctx)
		s.observe(ctx, &failures, SourceMetrics, err)
		snapshot.LiveMetrics = live
	}()
	go func() {
		defer wg.Done()
		if s.sources.Injuries == nil {
			return
		}
		statuses, err := s.sources.Injuries.GetStatuses(ctx)
		s.observe(ctx, &failures, SourceInjuries, err)
		snapshot.Injuries = statuses
	}()
	wg.Wait()

	if s.sources.GameLogs != nil && len(snapshot.PropLines) > 0 {
		scoring, err := s.sources.GameLogs.RecentScoring(ctx, playerNames(snapshot.PropLines))
		s.observe(ctx, &failures, SourceGameLogs, err)
		snapshot.RecentScoring = scoring
	}

	report := s.engine.Analyze(snapshot)
	for _, g := range report.Games {
		if len(g.Flags) == 0 {
			continue
		}
		log.WithFields(logrus.Fields{
			"game_id": g.Line.GameID,
			"away":    g.Line.AwayTeam,
			"home":    g.Line.HomeTeam,
			"flags":   g.Flags,
		}).Warn("Projection inputs flagged")
	}

	result := store.Result{
		Snapshot: models.SnapshotInfo{
			ID:             snapshot.ID,
			TakenAt:        snapshot.TakenAt,
			DurationMs:     s.now().Sub(start).Milliseconds(),
			LiveTeams:      len(snapshot.LiveMetrics),
			InjuryEntries:  len(snapshot.Injuries),
			GameLines:      len(snapshot.GameLines),
			PropLines:      len(snapshot.PropLines),
			RecentPlayers:  len(snapshot.RecentScoring),
			ExcludedProps:  report.ExcludedProps,
			ProviderErrors: failures.list(),
		},
		Report: report,
	}

	if err := ctx.Err(); err != nil {
		log.WithError(err).Warn("Refresh cancelled, keeping previous result")
		return result
	}

	s.store.Put(result)
	s.metrics.RecordRefresh(start, snapshot.ID, len(result.Snapshot.ProviderErrors))

	log.WithFields(logrus.Fields{
		"games":           len(report.Games),
		"props":           len(report.Props),
		"excluded_props":  report.ExcludedProps,
		"provider_errors": len(result.Snapshot.ProviderErrors),
		"duration_ms":     result.Snapshot.DurationMs,
	}).Info("Refresh complete")

	return result
}

// PlayerRecent looks up a player's recent games for research
func (s *Service) PlayerRecent(ctx context.Context, name string) (models.PlayerRecent, bool, error) {
	if s.sources.GameLogs == nil {
		return models.PlayerRecent{}, false, ErrNoGameLogs
	}

	recent, ok, err := s.sources.GameLogs.GetRecent(ctx, name)
	if err != nil {
		s.recordFailure(SourceGameLogs, err)
		return models.PlayerRecent{}, false, err
	}
	s.metrics.RecordProviderSuccess(SourceGameLogs)
	return recent, ok, nil
}

// observe records the outcome of one collaborator call
func (s *Service) observe(ctx context.Context, failures *failureList, source string, err error) {
	if ctx.Err() != nil {
		// the caller went away; that says nothing about the provider
		if err != nil {
			failures.add(models.ProviderFailure{Provider: source, Kind: string(providers.KindUnreachable), Message: err.Error()})
		}
		return
	}
	if err == nil {
		s.metrics.RecordProviderSuccess(source)
		return
	}
	failures.add(s.recordFailure(source, err))
}

func (s *Service) recordFailure(source string, err error) models.ProviderFailure {
	f := models.ProviderFailure{
		Provider: source,
		Kind:     string(providers.KindUnreachable),
		Message:  err.Error(),
	}
	var pe *providers.Error
	if errors.As(err, &pe) {
		f.Provider = pe.Provider
		f.Kind = string(pe.Kind)
	}

	s.metrics.RecordProviderFailure(f.Provider, f.Kind, f.Message)
	s.logger.WithFields(logrus.Fields{
		"provider": f.Provider,
		"kind":     f.Kind,
	}).WithError(err).Warn("Provider failed, continuing with empty data")
	return f
}

func playerNames(props []models.PropLine) []string {
	names := make([]string, 0, len(props))
	for _, p := range props {
		names = append(names, p.PlayerName)
	}
	return names
}

type failureList struct {
	mu    sync.Mutex
	items []models.ProviderFailure
}

func (l *failureList) add(f models.ProviderFailure) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, f)
}

func (l *failureList) list() []models.ProviderFailure {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.ProviderFailure, len(l.items))
	copy(out, l.items)
	return out
}
