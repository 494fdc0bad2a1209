/*
scheduler.go - Automated plan refresh scheduler

PURPOSE:
  Periodically regenerates the repayment plan from the stored portfolio
  so the latest plan tracks calendar time. A plan computed last month
  anchors its promo windows and budget events one month too early; a
  scheduled refresh keeps them honest.

DESIGN:
  - Cron-driven (robfig/cron) with a configurable spec
  - Each run snapshots accounts, budget, and preferences from the store
  - Skips the run when no accounts are stored
  - Failed runs log and leave the previous plan in place

CONFIGURATION:
  - Spec: cron expression (default: daily at 02:00)

USAGE:
  sched := scheduler.New(store, engine.DefaultOptions(), "0 2 * * *")
  if err := sched.Start(); err != nil { ... }
  // ... later
  sched.Stop()

SEE ALSO:
  - api/handlers.go: GeneratePlan endpoint (manual refresh)
  - store/sqlite: portfolio snapshot storage
*/
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/finlayjack89/PaydownPilot-sub001/engine"
	"github.com/finlayjack89/PaydownPilot-sub001/store/sqlite"
)

// DefaultSpec refreshes the plan nightly, after most lenders post
// statements.
const DefaultSpec = "0 2 * * *"

// PlanRefresher regenerates the stored plan on a cron schedule.
type PlanRefresher struct {
	Store   *sqlite.Store
	Options engine.Options
	Spec    string

	cron *cron.Cron
	mu   sync.Mutex
}

// New creates a refresher. An empty spec falls back to DefaultSpec.
func New(store *sqlite.Store, opts engine.Options, spec string) *PlanRefresher {
	if spec == "" {
		spec = DefaultSpec
	}
	return &PlanRefresher{
		Store:   store,
		Options: opts,
		Spec:    spec,
	}
}

// Start registers the refresh job and begins the cron loop.
func (pr *PlanRefresher) Start() error {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	if pr.cron != nil {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(pr.Spec, pr.refresh); err != nil {
		return err
	}
	c.Start()
	pr.cron = c

	log.Printf("[Scheduler] Started with spec %q", pr.Spec)
	return nil
}

// Stop halts the cron loop and waits for a running refresh to finish.
func (pr *PlanRefresher) Stop() {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	if pr.cron == nil {
		return
	}
	ctx := pr.cron.Stop()
	<-ctx.Done()
	pr.cron = nil
	log.Println("[Scheduler] Stopped")
}

// RunNow triggers an immediate refresh (for testing/admin).
func (pr *PlanRefresher) RunNow() {
	pr.refresh()
}

func (pr *PlanRefresher) refresh() {
	ctx := context.Background()

	accounts, err := pr.Store.ListAccounts(ctx)
	if err != nil {
		log.Printf("[Scheduler] Error listing accounts: %v", err)
		return
	}
	if len(accounts) == 0 {
		return
	}

	budget, err := pr.Store.GetBudget(ctx)
	if err != nil {
		log.Printf("[Scheduler] Error loading budget: %v", err)
		return
	}
	prefs, err := pr.Store.GetPreferences(ctx)
	if err != nil {
		log.Printf("[Scheduler] Error loading preferences: %v", err)
		return
	}

	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	result, err := engine.GeneratePlan(engine.Portfolio{
		Accounts:    accounts,
		Budget:      budget,
		Preferences: prefs,
		StartDate:   start,
	}, pr.Options)
	if err != nil {
		log.Printf("[Scheduler] Error generating plan: %v", err)
		return
	}

	rec := sqlite.PlanRecord{
		ID:        uuid.NewString(),
		Status:    result.Status,
		StartDate: result.StartDate,
		Result:    result,
		CreatedAt: now,
	}
	if err := pr.Store.SavePlan(ctx, rec); err != nil {
		log.Printf("[Scheduler] Error storing plan: %v", err)
		return
	}

	log.Printf("[Scheduler] Refreshed plan %s: status=%s accounts=%d", rec.ID, result.Status, len(accounts))
}
