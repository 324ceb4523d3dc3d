// internal/service/subscription/subscription_service.go
package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lumen-service/internal/catalog"
	"lumen-service/internal/domain/notification"
	"lumen-service/internal/domain/payment"
	"lumen-service/internal/domain/subscription"
	"lumen-service/internal/domain/user"
	"lumen-service/internal/pkg/billing"
	xerrors "lumen-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// TxRunner runs a function inside a single database transaction. Every
// lifecycle transition goes through it: the subscription write, the user
// cache update, and the ledger append commit or roll back together.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

type SubscriptionRepo interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, sub *subscription.Subscription) error
	FindByID(ctx context.Context, id int64) (*subscription.Subscription, error)
	FindActiveByUser(ctx context.Context, userID int64) (*subscription.Subscription, error)
	ListByUserForUpdate(ctx context.Context, tx pgx.Tx, userID int64) ([]subscription.Subscription, error)
	UpdateStatusWithTx(ctx context.Context, tx pgx.Tx, id int64, status subscription.Status, endDate *time.Time, autoRenew bool) error
	SetEndDateWithTx(ctx context.Context, tx pgx.Tx, id int64, endDate time.Time) error
	ListByUser(ctx context.Context, userID int64) ([]subscription.Subscription, error)
	List(ctx context.Context, filters *subscription.ListFilters) ([]subscription.Subscription, int64, error)
}

type PaymentRepo interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, p *payment.PaymentHistory) error
}

type UserRepo interface {
	UpdateSubscriptionCacheWithTx(ctx context.Context, tx pgx.Tx, userID int64, currentPlan *string, status user.SubscriptionStatus) error
}

// Notifier delivers a persisted notification to the user. Delivery happens
// after the transaction commits; a failed notification never rolls back a
// transition.
type Notifier interface {
	Notify(ctx context.Context, userID int64, ntype notification.Type, title, message string)
}

type Service struct {
	runner   TxRunner
	subs     SubscriptionRepo
	payments PaymentRepo
	users    UserRepo
	plans    *catalog.Catalog
	notifier Notifier
	logger   *zap.Logger

	now func() time.Time
}

func NewService(runner TxRunner, subs SubscriptionRepo, payments PaymentRepo, users UserRepo, plans *catalog.Catalog, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		runner:   runner,
		subs:     subs,
		payments: payments,
		users:    users,
		plans:    plans,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Subscribe creates the user's first (or next) active subscription. A live
// active subscription is a conflict; a stale active row whose service period
// already ended is retired inside the same transaction instead of blocking
// the new one forever.
func (s *Service) Subscribe(ctx context.Context, userID int64, req *subscription.SubscribeRequest) (*subscription.TransitionResult, error) {
	plan, err := s.plans.FindByID(req.PlanID)
	if err != nil {
		return nil, err
	}

	cycle := req.BillingCycle
	if cycle == "" {
		cycle = billing.CycleMonthly
	}
	if !cycle.Valid() {
		return nil, xerrors.ErrInvalidInput
	}
	autoRenew := true
	if req.AutoRenew != nil {
		autoRenew = *req.AutoRenew
	}

	now := s.now()
	var result *subscription.TransitionResult

	err = s.runner.WithinTx(ctx, func(tx pgx.Tx) error {
		current, err := s.currentForUpdate(ctx, tx, userID, now)
		if err != nil && !errors.Is(err, xerrors.ErrNotFound) {
			return err
		}
		if current != nil {
			return xerrors.ErrConflict
		}

		sub := newFromPlan(userID, plan, cycle, autoRenew, now)
		if err := s.subs.CreateWithTx(ctx, tx, sub); err != nil {
			return err
		}

		if err := s.users.UpdateSubscriptionCacheWithTx(ctx, tx, userID, &plan.ID, user.SubscriptionStatusActive); err != nil {
			return err
		}

		entry := payment.NewEntry(userID, sub.ID, plan.Price, payment.TypeSubscription,
			fmt.Sprintf("Subscription to %s", plan.Name), now)
		if err := s.payments.CreateWithTx(ctx, tx, entry); err != nil {
			return err
		}

		result = &subscription.TransitionResult{Subscription: sub, Payment: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("subscription created",
		zap.Int64("user_id", userID),
		zap.Int64("subscription_id", result.Subscription.ID),
		zap.String("plan_id", plan.ID),
	)
	s.notify(ctx, userID, "Subscription activated",
		fmt.Sprintf("Your %s plan is now active.", plan.Name))

	return result, nil
}

// Upgrade takes effect immediately: the current row is retired, a new active
// row starts now, and the full new price is charged without proration.
func (s *Service) Upgrade(ctx context.Context, userID int64, planID string) (*subscription.TransitionResult, error) {
	plan, err := s.plans.FindByID(planID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var result *subscription.TransitionResult

	err = s.runner.WithinTx(ctx, func(tx pgx.Tx) error {
		current, err := s.currentForUpdate(ctx, tx, userID, now)
		if err != nil {
			return err
		}
		if current.PlanID == plan.ID {
			return xerrors.ErrInvalidInput
		}

		end := now
		if err := s.subs.UpdateStatusWithTx(ctx, tx, current.ID, subscription.StatusInactive, &end, false); err != nil {
			return err
		}

		sub := newFromPlan(userID, plan, current.BillingCycle, current.AutoRenew, now)
		if err := s.subs.CreateWithTx(ctx, tx, sub); err != nil {
			return err
		}

		if err := s.users.UpdateSubscriptionCacheWithTx(ctx, tx, userID, &plan.ID, user.SubscriptionStatusActive); err != nil {
			return err
		}

		entry := payment.NewEntry(userID, sub.ID, plan.Price, payment.TypeUpgrade,
			fmt.Sprintf("Upgrade from %s to %s", current.PlanName, plan.Name), now)
		if err := s.payments.CreateWithTx(ctx, tx, entry); err != nil {
			return err
		}

		result = &subscription.TransitionResult{Subscription: sub, Payment: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("subscription upgraded",
		zap.Int64("user_id", userID),
		zap.Int64("subscription_id", result.Subscription.ID),
		zap.String("plan_id", plan.ID),
	)
	s.notify(ctx, userID, "Plan upgraded",
		fmt.Sprintf("You are now on the %s plan.", plan.Name))

	return result, nil
}

// Downgrade is deferred to the end of the paid period: the new row is created
// inactive with its start pinned to the current next billing date, and the
// current row keeps serving until then. Nothing is charged. Effective-status
// reads flip the pair over once the boundary passes.
func (s *Service) Downgrade(ctx context.Context, userID int64, planID string) (*subscription.TransitionResult, error) {
	plan, err := s.plans.FindByID(planID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var result *subscription.TransitionResult

	err = s.runner.WithinTx(ctx, func(tx pgx.Tx) error {
		current, err := s.currentForUpdate(ctx, tx, userID, now)
		if err != nil {
			return err
		}
		if current.PlanID == plan.ID {
			return xerrors.ErrInvalidInput
		}

		boundary := current.NextBillingDate
		sub := newFromPlan(userID, plan, current.BillingCycle, current.AutoRenew, boundary)
		sub.Status = subscription.StatusInactive
		if err := s.subs.CreateWithTx(ctx, tx, sub); err != nil {
			return err
		}

		// The current row serves out its paid period.
		if err := s.subs.SetEndDateWithTx(ctx, tx, current.ID, boundary); err != nil {
			return err
		}

		entry := payment.NewEntry(userID, sub.ID, 0, payment.TypeDowngrade,
			fmt.Sprintf("Scheduled downgrade from %s to %s", current.PlanName, plan.Name), now)
		if err := s.payments.CreateWithTx(ctx, tx, entry); err != nil {
			return err
		}

		result = &subscription.TransitionResult{Subscription: sub, Payment: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("subscription downgrade scheduled",
		zap.Int64("user_id", userID),
		zap.Int64("subscription_id", result.Subscription.ID),
		zap.String("plan_id", plan.ID),
		zap.Time("effective", result.Subscription.StartDate),
	)
	s.notify(ctx, userID, "Downgrade scheduled",
		fmt.Sprintf("Your plan changes to %s on %s.", plan.Name, result.Subscription.StartDate.Format("2 Jan 2006")))

	return result, nil
}

// Cancel ends the subscription at the close of the paid period. The row
// stays readable as active service until its end date passes; the user cache
// keeps the plan for the same window.
func (s *Service) Cancel(ctx context.Context, userID int64) (*subscription.TransitionResult, error) {
	now := s.now()
	var result *subscription.TransitionResult

	err := s.runner.WithinTx(ctx, func(tx pgx.Tx) error {
		current, err := s.currentForUpdate(ctx, tx, userID, now)
		if err != nil {
			return err
		}

		end := current.NextBillingDate
		if err := s.subs.UpdateStatusWithTx(ctx, tx, current.ID, subscription.StatusCancelled, &end, false); err != nil {
			return err
		}

		entry := payment.NewEntry(userID, current.ID, 0, payment.TypeOneTime,
			fmt.Sprintf("Cancellation of %s", current.PlanName), now)
		if err := s.payments.CreateWithTx(ctx, tx, entry); err != nil {
			return err
		}

		current.Status = subscription.StatusCancelled
		current.EndDate.Time = end
		current.EndDate.Valid = true
		current.AutoRenew = false
		result = &subscription.TransitionResult{Subscription: current, Payment: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("subscription cancelled",
		zap.Int64("user_id", userID),
		zap.Int64("subscription_id", result.Subscription.ID),
		zap.Time("end_date", result.Subscription.EndDate.Time),
	)
	s.notify(ctx, userID, "Subscription cancelled",
		fmt.Sprintf("Service continues until %s.", result.Subscription.EndDate.Time.Format("2 Jan 2006")))

	return result, nil
}

// AdminUpdate forces a user onto a plan immediately, charging the new plan's
// full price. Ownership checks are the caller's problem; routing restricts
// this to admins.
func (s *Service) AdminUpdate(ctx context.Context, req *subscription.AdminUpdateRequest) (*subscription.TransitionResult, error) {
	return s.Upgrade(ctx, req.UserID, req.PlanID)
}

// AdminCancel ends service immediately rather than at period end.
func (s *Service) AdminCancel(ctx context.Context, req *subscription.AdminCancelRequest) (*subscription.TransitionResult, error) {
	now := s.now()
	var result *subscription.TransitionResult

	err := s.runner.WithinTx(ctx, func(tx pgx.Tx) error {
		current, err := s.currentForUpdate(ctx, tx, req.UserID, now)
		if err != nil {
			return err
		}

		end := now
		if err := s.subs.UpdateStatusWithTx(ctx, tx, current.ID, subscription.StatusCancelled, &end, false); err != nil {
			return err
		}

		if err := s.users.UpdateSubscriptionCacheWithTx(ctx, tx, req.UserID, nil, user.SubscriptionStatusInactive); err != nil {
			return err
		}

		desc := fmt.Sprintf("Administrative cancellation of %s", current.PlanName)
		if req.Reason != "" {
			desc = fmt.Sprintf("%s: %s", desc, req.Reason)
		}
		entry := payment.NewEntry(req.UserID, current.ID, 0, payment.TypeOneTime, desc, now)
		if err := s.payments.CreateWithTx(ctx, tx, entry); err != nil {
			return err
		}

		current.Status = subscription.StatusCancelled
		current.EndDate.Time = end
		current.EndDate.Valid = true
		current.AutoRenew = false
		result = &subscription.TransitionResult{Subscription: current, Payment: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("subscription cancelled by admin",
		zap.Int64("user_id", req.UserID),
		zap.Int64("subscription_id", result.Subscription.ID),
		zap.String("reason", req.Reason),
	)
	s.notify(ctx, req.UserID, "Subscription cancelled",
		"Your subscription was cancelled. Service has ended.")

	return result, nil
}

// GetCurrent resolves the subscription that represents live service as of
// now. Deferred downgrades are resolved here: once the boundary passes, the
// scheduled row is the current one even though its stored status is still
// inactive.
func (s *Service) GetCurrent(ctx context.Context, userID int64) (*subscription.View, error) {
	rows, err := s.subs.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var storedActive *subscription.Subscription
	for i := range rows {
		row := &rows[i]
		if row.IsCurrent(now) {
			return &subscription.View{Subscription: *row, EffectiveStatus: subscription.StatusActive}, nil
		}
		if row.Status == subscription.StatusActive && storedActive == nil {
			storedActive = row
		}
	}

	if storedActive != nil {
		return &subscription.View{
			Subscription:    *storedActive,
			EffectiveStatus: storedActive.EffectiveStatus(now),
		}, nil
	}

	return nil, xerrors.ErrNotFound
}

// History returns every subscription row for the user, newest first, each
// annotated with its effective status.
func (s *Service) History(ctx context.Context, userID int64) ([]subscription.View, error) {
	rows, err := s.subs.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]subscription.View, 0, len(rows))
	for _, row := range rows {
		views = append(views, subscription.View{
			Subscription:    row,
			EffectiveStatus: row.EffectiveStatus(now),
		})
	}
	return views, nil
}

// ListAll is the admin listing with filters and pagination.
func (s *Service) ListAll(ctx context.Context, filters *subscription.ListFilters) (*subscription.ListResponse, error) {
	rows, total, err := s.subs.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]subscription.View, 0, len(rows))
	for _, row := range rows {
		views = append(views, subscription.View{
			Subscription:    row,
			EffectiveStatus: row.EffectiveStatus(now),
		})
	}

	return &subscription.ListResponse{
		Subscriptions: views,
		Total:         total,
		Page:          filters.Page,
		PageSize:      filters.PageSize,
	}, nil
}

// currentForUpdate locks the user's subscription rows and returns the one
// representing live service as of now, materializing any pending flip first:
// stored-active rows whose period ended are retired, a scheduled downgrade
// row whose start date arrived is promoted to stored active (with the user
// cache rewritten to match), and superseded future schedules are closed out.
// After this call the stored state agrees with what effective-status reads
// report, so the transition that follows mutates the right row.
func (s *Service) currentForUpdate(ctx context.Context, tx pgx.Tx, userID int64, now time.Time) (*subscription.Subscription, error) {
	rows, err := s.subs.ListByUserForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	var current *subscription.Subscription
	for i := range rows {
		row := &rows[i]
		if row.Status != subscription.StatusActive && row.Status != subscription.StatusInactive {
			continue
		}
		if row.IsCurrent(now) {
			current = row
			break
		}
	}

	for i := range rows {
		row := &rows[i]
		if current != nil && row.ID == current.ID {
			continue
		}
		switch {
		case row.Status == subscription.StatusActive:
			// Service period already over; retire the row.
			end := now
			if row.EndDate.Valid {
				end = row.EndDate.Time
			}
			if err := s.subs.UpdateStatusWithTx(ctx, tx, row.ID, subscription.StatusInactive, &end, false); err != nil {
				return nil, err
			}
		case row.Status == subscription.StatusInactive && !row.EndDate.Valid && now.Before(row.StartDate):
			// A future schedule superseded by this transition; close it
			// so it never activates.
			if err := s.subs.SetEndDateWithTx(ctx, tx, row.ID, now); err != nil {
				return nil, err
			}
		}
	}

	if current == nil {
		return nil, xerrors.ErrNotFound
	}

	if current.Status == subscription.StatusInactive {
		// A downgrade row whose boundary passed; promote it.
		if err := s.subs.UpdateStatusWithTx(ctx, tx, current.ID, subscription.StatusActive, nil, current.AutoRenew); err != nil {
			return nil, err
		}
		current.Status = subscription.StatusActive
		if err := s.users.UpdateSubscriptionCacheWithTx(ctx, tx, userID, &current.PlanID, user.SubscriptionStatusActive); err != nil {
			return nil, err
		}
	}

	return current, nil
}

func (s *Service) notify(ctx context.Context, userID int64, title, message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, userID, notification.TypeSubscription, title, message)
}

func newFromPlan(userID int64, plan *catalog.Plan, cycle billing.Cycle, autoRenew bool, start time.Time) *subscription.Subscription {
	return &subscription.Subscription{
		UserID:          userID,
		PlanID:          plan.ID,
		PlanName:        plan.Name,
		PlanType:        string(plan.Type),
		Price:           plan.Price,
		DownloadSpeed:   plan.DownloadSpeed,
		UploadSpeed:     plan.UploadSpeed,
		Status:          subscription.StatusActive,
		StartDate:       start,
		NextBillingDate: billing.NextDate(start, cycle),
		BillingCycle:    cycle,
		AutoRenew:       autoRenew,
	}
}
