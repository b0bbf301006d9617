package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/scribblenest/internal/logging"
	"github.com/dmitrijs2005/scribblenest/internal/server/models"
	"github.com/dmitrijs2005/scribblenest/internal/server/repositories/repomanager"
)

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	Users  int
	Pruned int
	Linked int
	Failed int
}

// Reconciler repairs the user→posts references that non-transactional
// backends can leave behind: IDs of deleted posts are pruned and posts
// missing from their owner's list are linked.
type Reconciler struct {
	repomanager  repomanager.RepositoryManager
	logger       logging.Logger
	interval     time.Duration
	storeTimeout time.Duration
}

func NewReconciler(m repomanager.RepositoryManager, interval, storeTimeout time.Duration, logger logging.Logger) *Reconciler {
	return &Reconciler{
		repomanager:  m,
		logger:       logger.With("module", "reconciler"),
		interval:     interval,
		storeTimeout: storeTimeout,
	}
}

// RunOnce checks every user. A failure on one user is counted and logged
// and does not stop the pass.
func (r *Reconciler) RunOnce(ctx context.Context) (*ReconcileReport, error) {
	lctx, cancel := withStoreTimeout(ctx, r.storeTimeout)
	all, err := r.repomanager.Users().List(lctx)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	report := &ReconcileReport{Users: len(all)}
	for _, u := range all {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		pruned, linked, err := r.reconcileUser(ctx, u)
		report.Pruned += pruned
		report.Linked += linked
		if err != nil {
			report.Failed++
			r.logger.Warn(ctx, "reconcile user", "user_id", u.ID, "error", err)
		}
	}

	if report.Pruned > 0 || report.Linked > 0 || report.Failed > 0 {
		r.logger.Info(ctx, "reconcile pass finished",
			"users", report.Users, "pruned", report.Pruned, "linked", report.Linked, "failed", report.Failed)
	}
	return report, nil
}

func (r *Reconciler) reconcileUser(ctx context.Context, u *models.User) (pruned, linked int, err error) {
	ctx, cancel := withStoreTimeout(ctx, r.storeTimeout)
	defer cancel()

	ur := r.repomanager.Users()
	pr := r.repomanager.Posts()

	existing, err := pr.ExistingIDs(ctx, u.Posts)
	if err != nil {
		return 0, 0, err
	}
	alive := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		alive[id] = struct{}{}
	}

	for _, id := range u.Posts {
		if _, ok := alive[id]; ok {
			continue
		}
		if err := ur.RemovePost(ctx, u.ID, id); err != nil {
			return pruned, linked, err
		}
		pruned++
	}

	owned, err := pr.ListByOwner(ctx, u.ID)
	if err != nil {
		return pruned, linked, err
	}
	for _, p := range owned {
		if u.OwnsPost(p.ID) {
			continue
		}
		if err := ur.AddPost(ctx, u.ID, p.ID); err != nil {
			return pruned, linked, err
		}
		linked++
	}

	return pruned, linked, nil
}

// Run repeats RunOnce every interval until ctx is done. A non-positive
// interval disables the loop.
func (r *Reconciler) Run(ctx context.Context) error {
	if r.interval <= 0 {
		r.logger.Info(ctx, "reconciler disabled")
		return nil
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
				r.logger.Error(ctx, "reconcile pass failed", "error", err)
			}
		}
	}
}
