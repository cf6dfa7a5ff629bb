// Package planner provides the application layer for meal planning and the
// catalog dashboard
package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nutridash/dashboard/internal/application/session"
	"github.com/nutridash/dashboard/internal/domain/food"
	"github.com/nutridash/dashboard/internal/domain/plan"
	"github.com/nutridash/dashboard/internal/domain/shared"
	"github.com/nutridash/dashboard/internal/ports/inbound"
	"github.com/nutridash/dashboard/internal/ports/outbound"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// NoSwapsMessage is shown when no entry has a better substitute
const NoSwapsMessage = "All your chosen foods are already healthy choices!"

// Config tunes the planner
type Config struct {
	Bounds          plan.Bounds
	DefaultBMR      float64
	DefaultTDEE     float64
	DefaultDiet     food.DietType
	DefaultPageSize int
	MaxPageSize     int
	Keywords        food.Keywords
}

// DefaultConfig returns the stock planner settings
func DefaultConfig() Config {
	return Config{
		Bounds:          plan.DefaultBounds(),
		DefaultBMR:      plan.DefaultBMR,
		DefaultTDEE:     plan.DefaultTDEE,
		DefaultDiet:     food.DietOmnivore,
		DefaultPageSize: 50,
		MaxPageSize:     500,
	}
}

// Service implements inbound.PlannerService and inbound.CatalogService
type Service struct {
	catalog  outbound.CatalogRepository
	users    outbound.UserRepository
	sessions *session.Registry
	filter   *food.DietFilter
	metrics  outbound.MetricsRecorder
	cfg      Config
	tracer   trace.Tracer
	logger   *zap.Logger

	viewsMu sync.Mutex
	viewsOf *food.Catalog
	views   map[food.DietType]*food.Catalog
}

var (
	_ inbound.PlannerService = (*Service)(nil)
	_ inbound.CatalogService = (*Service)(nil)
)

// NewService creates a new planner service
func NewService(
	catalog outbound.CatalogRepository,
	users outbound.UserRepository,
	sessions *session.Registry,
	metrics outbound.MetricsRecorder,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}
	defaults := DefaultConfig()
	if cfg.Bounds == (plan.Bounds{}) {
		cfg.Bounds = defaults.Bounds
	}
	if cfg.DefaultBMR <= 0 {
		cfg.DefaultBMR = defaults.DefaultBMR
	}
	if cfg.DefaultTDEE <= 0 {
		cfg.DefaultTDEE = defaults.DefaultTDEE
	}
	if cfg.DefaultDiet == "" {
		cfg.DefaultDiet = defaults.DefaultDiet
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = defaults.DefaultPageSize
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = defaults.MaxPageSize
	}

	return &Service{
		catalog:  catalog,
		users:    users,
		sessions: sessions,
		filter:   food.NewDietFilter(cfg.Keywords),
		metrics:  metrics,
		cfg:      cfg,
		tracer:   otel.Tracer("github.com/nutridash/dashboard/planner"),
		logger:   logger.Named("planner-service"),
		views:    make(map[food.DietType]*food.Catalog),
	}
}

// CreateSession opens a planner session
func (s *Service) CreateSession(ctx context.Context, cmd inbound.CreateSessionCommand) (*inbound.SessionDTO, error) {
	diet := s.cfg.DefaultDiet
	if cmd.DietType != "" {
		d, err := food.ParseDietType(cmd.DietType)
		if err != nil {
			return nil, translate(err, "")
		}
		diet = d
	}
	basis, err := plan.ParseCalorieBasis(cmd.CalorieBasis)
	if err != nil {
		return nil, translate(err, "")
	}

	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		s.logger.Error("Failed to load catalog", zap.Error(err))
		return nil, translate(err, "")
	}

	store, err := plan.NewStore(catalog, plan.WithBounds(s.cfg.Bounds))
	if err != nil {
		return nil, translate(err, "")
	}

	created := s.sessions.Create(cmd.UserID, diet, basis, store)
	s.metrics.SetActiveSessions(s.sessions.Len())

	var dto *inbound.SessionDTO
	err = s.do(created.ID(), func(sess *session.Session) error {
		target, err := s.target(ctx, sess)
		if err != nil {
			return err
		}
		dto = sessionToDTO(sess, target)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Planner session created",
		zap.String("session_id", dto.ID),
		zap.String("diet", string(diet)),
		zap.String("basis", string(basis)),
	)
	return dto, nil
}

// GetSession returns the session preferences and target
func (s *Service) GetSession(ctx context.Context, sessionID string) (*inbound.SessionDTO, error) {
	var dto *inbound.SessionDTO
	err := s.do(sessionID, func(sess *session.Session) error {
		target, err := s.target(ctx, sess)
		if err != nil {
			return err
		}
		dto = sessionToDTO(sess, target)
		return nil
	})
	return dto, err
}

// UpdatePreferences changes the diet type and/or calorie basis
func (s *Service) UpdatePreferences(ctx context.Context, cmd inbound.UpdatePreferencesCommand) (*inbound.SessionDTO, error) {
	var (
		diet  food.DietType
		basis plan.CalorieBasis
		err   error
	)
	if cmd.DietType != nil {
		if diet, err = food.ParseDietType(*cmd.DietType); err != nil {
			return nil, translate(err, cmd.SessionID)
		}
	}
	if cmd.CalorieBasis != nil {
		if basis, err = plan.ParseCalorieBasis(*cmd.CalorieBasis); err != nil {
			return nil, translate(err, cmd.SessionID)
		}
	}

	var dto *inbound.SessionDTO
	err = s.do(cmd.SessionID, func(sess *session.Session) error {
		if cmd.DietType != nil {
			sess.SetDiet(diet)
		}
		if cmd.CalorieBasis != nil {
			sess.SetBasis(basis)
		}
		target, err := s.target(ctx, sess)
		if err != nil {
			return err
		}
		dto = sessionToDTO(sess, target)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Session preferences updated",
		zap.String("session_id", cmd.SessionID),
		zap.String("diet", dto.DietType),
		zap.String("basis", dto.CalorieBasis),
	)
	return dto, nil
}

// DeleteSession drops a session and its plan
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	if !s.sessions.Delete(sessionID) {
		return translate(session.ErrSessionNotFound, sessionID)
	}
	s.metrics.SetActiveSessions(s.sessions.Len())
	s.logger.Info("Planner session deleted", zap.String("session_id", sessionID))
	return nil
}

// BrowseFoods lists catalog rows allowed by the session's diet
func (s *Service) BrowseFoods(ctx context.Context, sessionID string, query inbound.FoodQuery) (*inbound.FoodList, error) {
	var diet food.DietType
	if err := s.do(sessionID, func(sess *session.Session) error {
		diet = sess.Diet()
		return nil
	}); err != nil {
		return nil, err
	}

	view, err := s.dietView(ctx, diet)
	if err != nil {
		return nil, translate(err, sessionID)
	}
	return s.search(view, query), nil
}

// AddEntry appends a food portion to the session plan
func (s *Service) AddEntry(ctx context.Context, cmd inbound.AddEntryCommand) (*inbound.PlanEntryDTO, error) {
	slot, err := plan.ParseMealSlot(cmd.MealSlot)
	if err != nil {
		return nil, translate(err, cmd.SessionID)
	}

	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, translate(err, cmd.SessionID)
	}

	var dto inbound.PlanEntryDTO
	err = s.do(cmd.SessionID, func(sess *session.Session) error {
		// Only foods the session's diet allows can be picked
		view, err := s.dietView(ctx, sess.Diet())
		if err != nil {
			return err
		}
		if catalog.Contains(cmd.FoodID) && !view.Contains(cmd.FoodID) {
			return fmt.Errorf("%w: food %s, diet %s", food.ErrExcludedByDiet, cmd.FoodID, sess.Diet())
		}

		store := sess.Plan()
		entry, err := store.Add(slot, cmd.FoodID, cmd.Grams)
		if err != nil {
			return err
		}
		record, _ := catalog.Lookup(entry.FoodID())
		dto = entryToDTO(store.Len()-1, entry, record)
		s.drain(sess.ID(), store)
		return nil
	})
	if err != nil {
		s.logger.Debug("Add entry rejected",
			zap.String("session_id", cmd.SessionID),
			zap.String("food_id", cmd.FoodID),
			zap.Float64("grams", cmd.Grams),
			zap.Error(err),
		)
		return nil, err
	}
	return &dto, nil
}

// UpdateEntry changes grams and/or meal of one entry. Both changes are
// validated before either is applied.
func (s *Service) UpdateEntry(ctx context.Context, cmd inbound.UpdateEntryCommand) (*inbound.PlanEntryDTO, error) {
	var (
		slot plan.MealSlot
		err  error
	)
	if cmd.MealSlot != nil {
		if slot, err = plan.ParseMealSlot(*cmd.MealSlot); err != nil {
			return nil, translate(err, cmd.SessionID)
		}
	}

	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, translate(err, cmd.SessionID)
	}

	var dto inbound.PlanEntryDTO
	err = s.do(cmd.SessionID, func(sess *session.Session) error {
		store := sess.Plan()

		// Update checks index and grams before mutating, and the slot was
		// parsed above, so a failure here leaves the entry untouched.
		var entry plan.Entry
		var err error
		if cmd.Grams != nil {
			if entry, err = store.Update(cmd.Index, *cmd.Grams); err != nil {
				return err
			}
		}
		if cmd.MealSlot != nil {
			if entry, err = store.MoveToMeal(cmd.Index, slot); err != nil {
				return err
			}
		}
		if cmd.Grams == nil && cmd.MealSlot == nil {
			entries := store.List()
			if cmd.Index < 0 || cmd.Index >= len(entries) {
				return &plan.IndexOutOfRangeError{Index: cmd.Index, Len: len(entries)}
			}
			entry = entries[cmd.Index]
		}

		record, _ := catalog.Lookup(entry.FoodID())
		dto = entryToDTO(cmd.Index, entry, record)
		s.drain(sess.ID(), store)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// RemoveEntry deletes the entry at index
func (s *Service) RemoveEntry(ctx context.Context, sessionID string, index int) error {
	return s.do(sessionID, func(sess *session.Session) error {
		if _, err := sess.Plan().Remove(index); err != nil {
			return err
		}
		s.drain(sess.ID(), sess.Plan())
		return nil
	})
}

// ClearPlan empties the session plan
func (s *Service) ClearPlan(ctx context.Context, sessionID string) error {
	return s.do(sessionID, func(sess *session.Session) error {
		sess.Plan().Clear()
		s.drain(sess.ID(), sess.Plan())
		return nil
	})
}

// ListEntries returns the plan in insertion order with scaled nutrients
func (s *Service) ListEntries(ctx context.Context, sessionID string) ([]inbound.PlanEntryDTO, error) {
	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, translate(err, sessionID)
	}

	var out []inbound.PlanEntryDTO
	err = s.do(sessionID, func(sess *session.Session) error {
		out = entriesToDTO(sess.Plan().List(), catalog)
		return nil
	})
	return out, err
}

// Summary aggregates the plan against the session's daily target
func (s *Service) Summary(ctx context.Context, sessionID string) (*inbound.PlanSummaryDTO, error) {
	ctx, span := s.tracer.Start(ctx, "planner.Summary", trace.WithAttributes(
		attribute.String("session.id", sessionID),
	))
	defer span.End()

	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, translate(err, sessionID)
	}

	var dto *inbound.PlanSummaryDTO
	err = s.do(sessionID, func(sess *session.Session) error {
		entries := sess.Plan().List()
		totals, err := plan.Aggregate(entries, catalog)
		if err != nil {
			return err
		}
		target, err := s.target(ctx, sess)
		if err != nil {
			return err
		}
		progress, err := plan.ProgressFraction(totals, target)
		if err != nil {
			return err
		}

		span.SetAttributes(
			attribute.Int("plan.entries", totals.Entries),
			attribute.Float64("plan.progress", progress),
		)
		dto = &inbound.PlanSummaryDTO{
			Entries:  entriesToDTO(entries, catalog),
			Totals:   totalsToDTO(totals),
			Target:   TargetToDTO(target),
			Progress: progress,
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return dto, nil
}

// Swaps recommends up to three dominance-better substitutes per entry
func (s *Service) Swaps(ctx context.Context, sessionID string) (*inbound.SwapsDTO, error) {
	ctx, span := s.tracer.Start(ctx, "planner.Swaps", trace.WithAttributes(
		attribute.String("session.id", sessionID),
	))
	defer span.End()

	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, translate(err, sessionID)
	}

	var (
		entries []plan.Entry
		diet    food.DietType
	)
	if err := s.do(sessionID, func(sess *session.Session) error {
		entries = sess.Plan().List()
		diet = sess.Diet()
		return nil
	}); err != nil {
		return nil, err
	}

	candidates, err := s.dietView(ctx, diet)
	if err != nil {
		return nil, translate(err, sessionID)
	}

	swaps, err := plan.RecommendSwaps(entries, catalog, candidates)
	if err != nil {
		span.RecordError(err)
		return nil, translate(err, sessionID)
	}

	dto := &inbound.SwapsDTO{
		Swaps: make([]inbound.SwapDTO, 0, len(swaps)),
		Found: swaps.Found(),
	}
	for i, sw := range swaps {
		dto.Swaps = append(dto.Swaps, inbound.SwapDTO{
			Entry:       entryToDTO(i, sw.Entry, sw.Food),
			Substitutes: foodsToDTO(sw.Substitutes),
		})
	}
	if len(entries) > 0 && !dto.Found {
		dto.Message = NoSwapsMessage
	}

	span.SetAttributes(
		attribute.Int("plan.entries", len(entries)),
		attribute.Bool("swaps.found", dto.Found),
	)
	return dto, nil
}

// do runs fn under the session lock and translates any error
func (s *Service) do(sessionID string, fn func(*session.Session) error) error {
	return translate(s.sessions.Do(sessionID, fn), sessionID)
}

// target computes the daily target from the session user's profile or the
// configured fallbacks
func (s *Service) target(ctx context.Context, sess *session.Session) (plan.DailyTarget, error) {
	bmr, tdee := s.cfg.DefaultBMR, s.cfg.DefaultTDEE

	if uid := sess.UserID(); uid != nil && s.users != nil {
		u, err := s.users.FindByID(ctx, *uid)
		switch {
		case err == nil:
			bmr, tdee = u.Body().BMR(), u.Body().TDEE()
		case errors.Is(err, outbound.ErrNotFound):
			s.logger.Warn("Session user no longer exists, using default target",
				zap.String("session_id", sess.ID()),
				zap.String("user_id", uid.String()),
			)
		default:
			return plan.DailyTarget{}, err
		}
	}

	return plan.NewDailyTarget(sess.Basis().Pick(bmr, tdee)), nil
}

// dietView returns the catalog filtered for diet, memoised per loaded catalog
func (s *Service) dietView(ctx context.Context, diet food.DietType) (*food.Catalog, error) {
	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}

	s.viewsMu.Lock()
	defer s.viewsMu.Unlock()

	if s.viewsOf != catalog {
		s.viewsOf = catalog
		s.views = make(map[food.DietType]*food.Catalog)
	}
	if view, ok := s.views[diet]; ok {
		return view, nil
	}

	view, err := s.filter.Apply(catalog, diet)
	if err != nil {
		return nil, err
	}
	s.views[diet] = view
	return view, nil
}

func (s *Service) search(c *food.Catalog, query inbound.FoodQuery) *inbound.FoodList {
	matched := c.Search(food.Query{Categories: query.Categories, Search: query.Search}).Records()
	window, offset, limit := page(matched, query.Offset, query.Limit, s.cfg.DefaultPageSize, s.cfg.MaxPageSize)
	return &inbound.FoodList{
		Foods:  foodsToDTO(window),
		Total:  len(matched),
		Offset: offset,
		Limit:  limit,
	}
}

// drain logs and counts the events raised by the last plan mutation
func (s *Service) drain(sessionID string, store *plan.Store) {
	store.DrainTo(func(e shared.DomainEvent) {
		s.metrics.RecordPlanEvent(e.EventName())
		s.logger.Debug("Plan event",
			zap.String("session_id", sessionID),
			zap.String("event", e.EventName()),
			zap.Time("occurred_at", e.OccurredAt()),
		)
	})
}

func entriesToDTO(entries []plan.Entry, catalog *food.Catalog) []inbound.PlanEntryDTO {
	out := make([]inbound.PlanEntryDTO, 0, len(entries))
	for i, e := range entries {
		record, _ := catalog.Lookup(e.FoodID())
		out = append(out, entryToDTO(i, e, record))
	}
	return out
}
