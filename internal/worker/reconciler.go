package worker

import (
	"context"
	"time"

	"ticketpay/internal/core/domain"
	"ticketpay/internal/core/ports"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Reconciler is the safety net behind webhook delivery: it polls the provider
// for payment transactions stuck PENDING longer than the threshold and folds
// the authoritative order state into the ledger through the same idempotent
// paths the webhooks use. A missed webhook therefore delays settlement, never
// loses it.
type Reconciler struct {
	txRepo     ports.TransactionRepository
	orders     ports.OrderService
	paypal     ports.PayPalClient
	staleAfter time.Duration
	batchSize  int
	log        zerolog.Logger

	cron *cron.Cron
}

// NewReconciler creates a new Reconciler.
func NewReconciler(
	txRepo ports.TransactionRepository,
	orders ports.OrderService,
	paypalClient ports.PayPalClient,
	staleAfter time.Duration,
	batchSize int,
	log zerolog.Logger,
) *Reconciler {
	return &Reconciler{
		txRepo:     txRepo,
		orders:     orders,
		paypal:     paypalClient,
		staleAfter: staleAfter,
		batchSize:  batchSize,
		log:        log,
	}
}

// Start schedules the reconciliation job. Runs are skipped while a previous
// run is still in flight.
func (r *Reconciler) Start(schedule string) error {
	r.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))
	_, err := r.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		r.Run(ctx)
	})
	if err != nil {
		return err
	}
	r.cron.Start()
	r.log.Info().Str("schedule", schedule).Msg("reconciliation worker started")
	return nil
}

// Stop halts the scheduler and waits for an in-flight run to finish.
func (r *Reconciler) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
}

// Run executes one reconciliation pass.
func (r *Reconciler) Run(ctx context.Context) {
	stale, err := r.txRepo.ListStalePending(ctx, r.staleAfter, r.batchSize)
	if err != nil {
		r.log.Error().Err(err).Msg("listing stale pending transactions failed")
		return
	}
	if len(stale) == 0 {
		return
	}

	r.log.Info().Int("count", len(stale)).Msg("reconciling stale pending transactions")
	for i := range stale {
		if ctx.Err() != nil {
			return
		}
		r.reconcileOne(ctx, &stale[i])
	}
}

func (r *Reconciler) reconcileOne(ctx context.Context, tx *domain.Transaction) {
	if tx.ProviderOrderID == nil {
		return
	}
	orderID := *tx.ProviderOrderID
	log := r.log.With().Str("order_id", orderID).Logger()

	order, err := r.paypal.GetProviderOrder(ctx, orderID)
	if err != nil {
		log.Warn().Err(err).Msg("order state poll failed, will retry next pass")
		return
	}

	switch order.Status {
	case "COMPLETED":
		applied, err := r.orders.ReconcileCapture(ctx, orderID, order.CaptureID)
		if err != nil {
			log.Error().Err(err).Msg("capture reconciliation failed")
			return
		}
		if applied {
			log.Info().Msg("stale order settled by reconciler")
		}
	case "VOIDED":
		if _, err := r.orders.FailOrder(ctx, orderID); err != nil {
			log.Error().Err(err).Msg("failed to mark voided order")
			return
		}
		log.Info().Msg("voided order marked failed")
	default:
		// CREATED or APPROVED: the buyer may still complete approval. Leave it.
	}
}
