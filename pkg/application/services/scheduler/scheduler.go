package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/vsinha/procurement/pkg/application/state"
	"github.com/vsinha/procurement/pkg/domain/entities"
	"github.com/vsinha/procurement/pkg/infrastructure/events"
)

// DefaultInterval is the polling period used when none is configured
const DefaultInterval = time.Second

// Scheduler keeps the resources of the active view fresh. Every fetch runs
// on its own goroutine and lands through the store's sequence check, so a
// slow response can never overwrite a newer one.
type Scheduler struct {
	store     *state.Store
	fetcher   Fetcher
	publisher events.Publisher
	logger    *zap.Logger
	interval  time.Duration

	mu     sync.Mutex
	active View
	ready  bool

	inflight conc.WaitGroup
}

func New(store *state.Store, fetcher Fetcher, interval time.Duration, publisher events.Publisher, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		store:     store,
		fetcher:   fetcher,
		publisher: publisher,
		logger:    logger.Named("scheduler"),
		interval:  interval,
	}
}

// ActiveView returns the active view, if any view was activated
func (s *Scheduler) ActiveView() (View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, s.ready
}

// Activate switches to view and fetches its resources once. Activating the
// view that is already active does nothing. Requests still in flight for
// the previous view are left to complete.
func (s *Scheduler) Activate(ctx context.Context, view View) error {
	if _, ok := ViewResources[view]; !ok {
		return fmt.Errorf("unknown view: %q", view)
	}

	s.mu.Lock()
	if s.ready && s.active == view {
		s.mu.Unlock()
		return nil
	}
	prev := s.active
	s.active = view
	s.ready = true
	s.mu.Unlock()

	added, removed := Diff(prev, view)
	s.logger.Debug("view activated",
		zap.String("view", string(view)),
		zap.Strings("started", names(added)),
		zap.Strings("released", names(removed)),
	)
	s.publisher.Publish(events.NewViewActivated(string(view), names(added), names(removed)))

	for _, r := range ViewResources[view] {
		s.dispatch(ctx, r)
	}
	return nil
}

// Tick fetches the always-needed resources plus the active view's.
func (s *Scheduler) Tick(ctx context.Context) {
	view, ready := s.ActiveView()
	resources := Always
	if ready {
		resources = Needed(view)
	}
	for _, r := range resources {
		s.dispatch(ctx, r)
	}
}

// Run ticks immediately and then every interval until ctx is done. It
// waits for in-flight fetches before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.Wait()
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// RequestScenario drops the stale projection and fetches the one for p
// immediately, whatever view is active.
func (s *Scheduler) RequestScenario(ctx context.Context, p entities.ScenarioParameters) {
	s.store.ResetScenario(p)
	s.dispatch(ctx, state.ResourceScenario)
}

// Refresh forces a refetch of resource and waits for it. It is used after
// writes so the caller observes its own change.
func (s *Scheduler) Refresh(ctx context.Context, resource state.Resource) error {
	return s.fetch(ctx, resource)
}

// Wait blocks until every dispatched fetch has finished
func (s *Scheduler) Wait() {
	s.inflight.Wait()
}

func (s *Scheduler) dispatch(ctx context.Context, resource state.Resource) {
	s.inflight.Go(func() {
		_ = s.fetch(ctx, resource)
	})
}

func (s *Scheduler) fetch(ctx context.Context, resource state.Resource) error {
	seq := s.store.Begin(resource)
	logger := s.logger.With(zap.String("resource", string(resource)), zap.Uint64("seq", seq))

	value, err := s.fetcher.Fetch(ctx, resource)
	if err != nil {
		logger.Warn("fetch failed, keeping previous snapshot", zap.Error(err))
		s.publisher.Publish(events.NewResourceFetchFailed(string(resource), seq, err))
		return err
	}

	applied, err := s.store.Apply(resource, seq, value)
	if err != nil {
		logger.Error("fetched value rejected by store", zap.Error(err))
		s.publisher.Publish(events.NewResourceFetchFailed(string(resource), seq, err))
		return err
	}
	if !applied {
		logger.Debug("discarded superseded response")
		s.publisher.Publish(events.NewResourceDiscarded(string(resource), seq))
		return nil
	}

	logger.Debug("applied response")
	s.publisher.Publish(events.NewResourceApplied(string(resource), seq))
	return nil
}
