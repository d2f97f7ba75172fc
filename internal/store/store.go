// Package store owns the application state: the raw inputs and the
// derived summary. There is no global instance; the composition root
// creates one and passes it down. Every input change recomputes the
// summary synchronously and swaps the snapshot, so readers observe
// either the previous complete summary or the next one.
package store

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/hyunseo/orgusage/internal/aggregate"
	"github.com/hyunseo/orgusage/internal/detect"
	"github.com/hyunseo/orgusage/internal/types"
)

type Store struct {
	mu     sync.RWMutex
	logger *zap.Logger

	userData    any
	projectData any
	identity    types.IdentityMap
	projects    types.ProjectNameMap
	budgets     map[string]types.Budget

	summary *types.AggregatedSummary
}

func New(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		logger:   logger,
		identity: types.IdentityMap{},
		projects: types.ProjectNameMap{},
		budgets:  map[string]types.Budget{},
	}
}

// LoadUpload runs the full upload path: parse, classify, validate,
// route. Any failure leaves previously loaded state untouched; the
// caller translates the error into user-facing text.
func (s *Store) LoadUpload(raw []byte) (detect.Classification, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return detect.Classification{}, types.ParseError{Err: err}
	}

	cls, err := detect.Detect(v)
	if err != nil {
		return cls, err
	}
	if err := detect.Validate(v, cls.Kind); err != nil {
		return cls, err
	}

	if cls.Ambiguous {
		s.logger.Warn("upload kind ambiguous, assuming user data")
	}

	switch cls.Kind {
	case types.KindIdentity:
		s.SetIdentity(detect.BuildIdentityMap(v))
	case types.KindProject:
		s.SetProjectData(v)
	default:
		s.SetUserData(v)
	}

	s.logger.Info("upload accepted",
		zap.String("kind", string(cls.Kind)),
		zap.Bool("ambiguous", cls.Ambiguous),
	)
	return cls, nil
}

// SetUserData replaces the user dataset wholesale and recomputes.
func (s *Store) SetUserData(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userData = v
	s.recomputeLocked()
}

// SetProjectData replaces the project dataset wholesale and recomputes.
func (s *Store) SetProjectData(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projectData = v
	s.recomputeLocked()
}

func (s *Store) SetIdentity(identity types.IdentityMap) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if identity == nil {
		identity = types.IdentityMap{}
	}
	s.identity = identity
	s.recomputeLocked()
}

func (s *Store) SetProjects(projects []types.ProjectInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := types.ProjectNameMap{}
	for _, p := range projects {
		m[p.ID] = p
	}
	s.projects = m
	s.recomputeLocked()
}

// Restore merge-overwrites state saved from a previous run. The blob
// is treated as an opaque prior value, not diffed.
func (s *Store) Restore(identity types.IdentityMap, budgets map[string]types.Budget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if identity != nil {
		s.identity = identity
	}
	if budgets != nil {
		s.budgets = budgets
	}
	s.recomputeLocked()
}

func (s *Store) SetBudget(projectID string, budget types.Budget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[projectID] = budget
}

func (s *Store) RemoveBudget(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.budgets, projectID)
}

func (s *Store) ClearBudgets() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets = map[string]types.Budget{}
}

// ClearData drops both datasets but keeps identity, projects and
// budgets, matching the dashboard's "clear all data" action.
func (s *Store) ClearData() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userData = nil
	s.projectData = nil
	s.recomputeLocked()
}

// Summary returns the current snapshot; nil means no data loaded.
// The returned value is never mutated after publication.
func (s *Store) Summary() *types.AggregatedSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

func (s *Store) Identity() types.IdentityMap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(types.IdentityMap, len(s.identity))
	for k, v := range s.identity {
		out[k] = v
	}
	return out
}

func (s *Store) Budgets() map[string]types.Budget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]types.Budget, len(s.budgets))
	for k, v := range s.budgets {
		out[k] = v
	}
	return out
}

// Overages compares current per-project spend against budgets.
func (s *Store) Overages() []types.BudgetOverage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.summary == nil {
		return nil
	}
	return aggregate.Overages(s.summary.ByProject, s.budgets)
}

func (s *Store) recomputeLocked() {
	s.summary = aggregate.Summarize(aggregate.Inputs{
		UserData:    s.userData,
		ProjectData: s.projectData,
		Identity:    s.identity,
		Projects:    s.projects,
	})
	if s.summary != nil {
		s.logger.Debug("summary recomputed",
			zap.Float64("total_cost", s.summary.TotalCost),
			zap.Int("total_requests", s.summary.TotalRequests),
		)
	}
}
