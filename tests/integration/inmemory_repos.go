package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ticketpay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// In-memory repository implementations backing the integration stack. They
// mirror the SQL repos' semantics exactly where it matters: every
// compare-and-set and floor check runs atomically under the repo mutex, so
// the concurrency tests exercise the same single-winner guarantees the
// database versions provide.

// --- In-Memory Organizer Repo ---

type inMemoryOrganizerRepo struct {
	mu         sync.RWMutex
	organizers map[uuid.UUID]*domain.Organizer
}

func newInMemoryOrganizerRepo() *inMemoryOrganizerRepo {
	return &inMemoryOrganizerRepo{organizers: make(map[uuid.UUID]*domain.Organizer)}
}

func (r *inMemoryOrganizerRepo) put(o *domain.Organizer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.organizers[o.ID] = &cp
}

func (r *inMemoryOrganizerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organizer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.organizers[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *inMemoryOrganizerRepo) GetByMerchantID(ctx context.Context, merchantID string) (*domain.Organizer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.organizers {
		if o.MerchantID != nil && *o.MerchantID == merchantID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryOrganizerRepo) GetByTrackingID(ctx context.Context, trackingID string) (*domain.Organizer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.organizers {
		if o.TrackingID != nil && *o.TrackingID == trackingID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryOrganizerRepo) SetOnboarding(ctx context.Context, id uuid.UUID, trackingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.organizers[id]
	if !ok {
		return fmt.Errorf("organizer not found: %s", id)
	}
	now := time.Now().UTC()
	o.TrackingID = &trackingID
	o.OnboardedAt = &now
	return nil
}

func (r *inMemoryOrganizerRepo) SaveMerchantID(ctx context.Context, id uuid.UUID, merchantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.organizers[id]
	if !ok {
		return fmt.Errorf("organizer not found: %s", id)
	}
	o.MerchantID = &merchantID
	return nil
}

func (r *inMemoryOrganizerRepo) UpdateAccountStatus(ctx context.Context, id uuid.UUID, from, to domain.AccountStatus, declineReason *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.organizers[id]
	if !ok {
		return false, nil
	}
	if o.AccountStatus != from {
		return false, nil
	}
	o.AccountStatus = to
	o.DeclineReason = declineReason
	return true, nil
}

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]*domain.Wallet
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func (r *inMemoryWalletRepo) GetByOrganizerID(ctx context.Context, organizerID uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[organizerID]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *inMemoryWalletRepo) Credit(ctx context.Context, tx pgx.Tx, organizerID uuid.UUID, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[organizerID]
	if !ok {
		w = &domain.Wallet{
			ID:          uuid.New(),
			OrganizerID: organizerID,
			Currency:    "USD",
			CreatedAt:   time.Now().UTC(),
		}
		r.wallets[organizerID] = w
	}
	w.Balance += amount
	w.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryWalletRepo) DebitWithFloor(ctx context.Context, tx pgx.Tx, organizerID uuid.UUID, amount int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[organizerID]
	if !ok || w.Balance < amount {
		return false, nil
	}
	w.Balance -= amount
	w.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *inMemoryWalletRepo) ReserveFunds(ctx context.Context, tx pgx.Tx, organizerID uuid.UUID, amount int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[organizerID]
	if !ok || w.Balance < amount {
		return false, nil
	}
	w.Balance -= amount
	w.PendingBalance += amount
	w.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *inMemoryWalletRepo) ConfirmReserved(ctx context.Context, tx pgx.Tx, organizerID uuid.UUID, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[organizerID]
	if !ok {
		return fmt.Errorf("wallet not found: %s", organizerID)
	}
	now := time.Now().UTC()
	w.PendingBalance -= amount
	w.LastPayoutAt = &now
	w.UpdatedAt = now
	return nil
}

func (r *inMemoryWalletRepo) ReleaseReserved(ctx context.Context, tx pgx.Tx, organizerID uuid.UUID, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[organizerID]
	if !ok {
		return fmt.Errorf("wallet not found: %s", organizerID)
	}
	w.PendingBalance -= amount
	w.Balance += amount
	w.UpdatedAt = time.Now().UTC()
	return nil
}

// --- In-Memory Payout Repo ---

type inMemoryPayoutRepo struct {
	mu      sync.RWMutex
	payouts map[string]*domain.PendingPayout
}

func newInMemoryPayoutRepo() *inMemoryPayoutRepo {
	return &inMemoryPayoutRepo{payouts: make(map[string]*domain.PendingPayout)}
}

func (r *inMemoryPayoutRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.PendingPayout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.payouts[p.PayoutRef]; exists {
		return fmt.Errorf("payout ref already exists: %s", p.PayoutRef)
	}
	cp := *p
	r.payouts[p.PayoutRef] = &cp
	return nil
}

func (r *inMemoryPayoutRepo) GetByRef(ctx context.Context, payoutRef string) (*domain.PendingPayout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payouts[payoutRef]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryPayoutRepo) SetProviderBatchID(ctx context.Context, payoutRef, providerBatchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payouts[payoutRef]
	if !ok {
		return fmt.Errorf("payout not found: %s", payoutRef)
	}
	p.ProviderBatchID = &providerBatchID
	return nil
}

func (r *inMemoryPayoutRepo) Settle(ctx context.Context, tx pgx.Tx, payoutRef string, status domain.PayoutStatus) (*domain.PendingPayout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payouts[payoutRef]
	if !ok || p.Status != domain.PayoutStatusPending {
		return nil, nil
	}
	now := time.Now().UTC()
	p.Status = status
	p.SettledAt = &now
	cp := *p
	return &cp, nil
}

func (r *inMemoryPayoutRepo) ListPending(ctx context.Context, organizerID uuid.UUID) ([]domain.PendingPayout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.PendingPayout
	for _, p := range r.payouts {
		if p.OrganizerID == organizerID && p.Status == domain.PayoutStatusPending {
			result = append(result, *p)
		}
	}
	return result, nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu           sync.RWMutex
	transactions map[uuid.UUID]*domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{transactions: make(map[uuid.UUID]*domain.Transaction)}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.transactions[t.ID] = &cp
	return nil
}

func (r *inMemoryTransactionRepo) CreateInTx(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	return r.Create(ctx, t)
}

func (r *inMemoryTransactionRepo) GetByProviderOrderID(ctx context.Context, orderID string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.transactions {
		if t.ProviderOrderID != nil && *t.ProviderOrderID == orderID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryTransactionRepo) GetByPayoutRef(ctx context.Context, payoutRef string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.transactions {
		if t.PayoutRef != nil && *t.PayoutRef == payoutRef {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryTransactionRepo) ListByOrganizer(ctx context.Context, organizerID uuid.UUID, limit int) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Transaction
	for _, t := range r.transactions {
		if t.OrganizerID == organizerID {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *inMemoryTransactionRepo) MarkCompleted(ctx context.Context, tx pgx.Tx, id uuid.UUID, captureID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok || t.Status != domain.TransactionStatusPending {
		return false, nil
	}
	now := time.Now().UTC()
	t.Status = domain.TransactionStatusCompleted
	t.CaptureID = &captureID
	t.ProcessedAt = &now
	return true, nil
}

func (r *inMemoryTransactionRepo) MarkFailed(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok || t.Status != domain.TransactionStatusPending {
		return false, nil
	}
	now := time.Now().UTC()
	t.Status = domain.TransactionStatusFailed
	t.ProcessedAt = &now
	return true, nil
}

func (r *inMemoryTransactionRepo) MarkRefunded(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok || t.Status != domain.TransactionStatusCompleted {
		return false, nil
	}
	now := time.Now().UTC()
	t.Status = domain.TransactionStatusRefunded
	t.ProcessedAt = &now
	return true, nil
}

func (r *inMemoryTransactionRepo) SettleByPayoutRef(ctx context.Context, tx pgx.Tx, payoutRef string, status domain.TransactionStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.transactions {
		if t.PayoutRef != nil && *t.PayoutRef == payoutRef && t.Status == domain.TransactionStatusPending {
			now := time.Now().UTC()
			t.Status = status
			t.ProcessedAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (r *inMemoryTransactionRepo) ListStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cutoff := time.Now().UTC().Add(-olderThan)
	var result []domain.Transaction
	for _, t := range r.transactions {
		if t.Type == domain.TransactionTypePayment && t.Status == domain.TransactionStatusPending && t.CreatedAt.Before(cutoff) {
			result = append(result, *t)
		}
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// --- In-Memory Webhook Event Repo ---

type inMemoryWebhookEventRepo struct {
	mu     sync.Mutex
	events map[string]struct{}
}

func newInMemoryWebhookEventRepo() *inMemoryWebhookEventRepo {
	return &inMemoryWebhookEventRepo{events: make(map[string]struct{})}
}

func (r *inMemoryWebhookEventRepo) MarkProcessed(ctx context.Context, ev *domain.WebhookEvent) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.events[ev.EventID]; exists {
		return false, nil
	}
	r.events[ev.EventID] = struct{}{}
	return true, nil
}

// --- In-Memory Event Catalog ---

type inMemoryEventCatalog struct {
	mu        sync.RWMutex
	events    map[uuid.UUID]*domain.Event
	attendees []domain.Attendee
}

func newInMemoryEventCatalog() *inMemoryEventCatalog {
	return &inMemoryEventCatalog{events: make(map[uuid.UUID]*domain.Event)}
}

func (c *inMemoryEventCatalog) put(e *domain.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *e
	cp.TicketTypes = append([]domain.TicketType(nil), e.TicketTypes...)
	c.events[e.ID] = &cp
}

func (c *inMemoryEventCatalog) GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.events[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	cp.TicketTypes = append([]domain.TicketType(nil), e.TicketTypes...)
	return &cp, nil
}

func (c *inMemoryEventCatalog) AddAttendee(ctx context.Context, tx pgx.Tx, a *domain.Attendee) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.events[a.EventID]
	if !ok {
		return fmt.Errorf("event not found: %s", a.EventID)
	}
	for _, sel := range a.Tickets {
		for i := range e.TicketTypes {
			if e.TicketTypes[i].ID == sel.TicketTypeID {
				e.TicketTypes[i].Remaining -= sel.Quantity
				if e.TicketTypes[i].Remaining < 0 {
					e.TicketTypes[i].Remaining = 0
				}
			}
		}
	}
	c.attendees = append(c.attendees, *a)
	return nil
}

func (c *inMemoryEventCatalog) attendeeCount(eventID uuid.UUID) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, a := range c.attendees {
		if a.EventID == eventID {
			n++
		}
	}
	return n
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
