package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dukapos/dukapos/internal/shared"
)

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// IdempotencyPort guards caller-supplied transaction numbers.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	// SaleTimeout bounds the sale unit of work; zero means 10s.
	SaleTimeout time.Duration
}

// Service is the sale orchestrator. It coordinates catalog reads, pricing,
// stock decrements and the transaction insert under one atomic unit of work.
type Service struct {
	repo        RepositoryPort
	audit       AuditPort
	idempotency IdempotencyPort
	timeout     time.Duration
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, idem IdempotencyPort, cfg ServiceConfig) *Service {
	timeout := cfg.SaleTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{repo: repo, audit: audit, idempotency: idem, timeout: timeout}
}

// ProcessSale validates the cart, prices it against the catalog, decrements
// stock for completed sales and persists the transaction. Either every step
// commits or none of the mutations survive.
func (s *Service) ProcessSale(ctx context.Context, cart CartInput) (*SaleResult, error) {
	if err := s.validateCart(cart); err != nil {
		return nil, err
	}

	status := StatusCompleted
	if cart.Status != "" {
		status = Status(cart.Status)
	}

	insertedKey := false
	if cart.Number != "" && s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, cart.Number, "sales"); err != nil {
			return nil, err
		}
		insertedKey = true
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var result SaleResult
	run := func() error {
		return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			// A retried attempt starts from a clean slate.
			result = SaleResult{}

			snapshots, err := tx.FindByIDs(ctx, distinctProductIDs(cart.Items))
			if err != nil {
				return err
			}

			lines := make([]PricedLine, 0, len(cart.Items))
			for _, item := range cart.Items {
				snap, ok := snapshots[item.ProductID]
				if !ok {
					return &ProductNotFoundError{ProductID: item.ProductID}
				}
				lines = append(lines, PriceLine(item, snap))
			}
			totals := FoldTotals(lines, cart.TotalAmount)

			transaction := s.buildTransaction(cart, status, lines, totals)

			if status == StatusCompleted {
				// A pending sale reserves nothing; stock moves only on completion.
				// Duplicate product ids are merged so availability is checked
				// against the combined quantity, not per line.
				ref := MovementRef{
					Reference: transaction.Number,
					ActorName: cart.Context.CashierName,
					ShopID:    cart.Context.ShopID,
				}
				for _, d := range mergeQuantities(cart.Items) {
					update, err := tx.Decrement(ctx, d.productID, d.quantity, ref)
					if err != nil {
						return err
					}
					result.StockUpdates = append(result.StockUpdates, update)
				}
			}

			if err := tx.Insert(ctx, &transaction); err != nil {
				return err
			}
			result.Transaction = transaction
			return nil
		})
	}

	// Two completed sales racing for the same product rows abort the loser
	// with a serialization failure under repeatable read. Re-running reads
	// the committed stock, so the loser resolves to its real outcome:
	// success, or insufficient stock when the winner took the last units.
	err := run()
	for attempt := 1; attempt < maxSaleAttempts && isSerializationFailure(err); attempt++ {
		err = run()
	}
	if err != nil {
		if insertedKey {
			_ = s.idempotency.Delete(context.WithoutCancel(ctx), cart.Number)
		}
		return nil, classify(err)
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:   cart.Context.CashierID,
			ActorName: cart.Context.CashierName,
			ShopID:    cart.Context.ShopID,
			Action:    "sales:process",
			Entity:    "transaction",
			EntityID:  result.Transaction.Number,
			Meta: map[string]any{
				"status":       string(result.Transaction.Status),
				"total_amount": result.Transaction.TotalAmount,
				"items":        len(result.Transaction.Lines),
			},
		})
	}
	return &result, nil
}

// validateCart collects every request problem into one error so the caller
// sees all of them in a single round trip.
func (s *Service) validateCart(cart CartInput) error {
	var problems []string

	switch {
	case strings.TrimSpace(cart.PaymentMethod) == "":
		problems = append(problems, "payment method is required")
	case !PaymentMethod(cart.PaymentMethod).Valid():
		problems = append(problems, fmt.Sprintf("payment method %q is not accepted", cart.PaymentMethod))
	}
	if cart.TotalAmount <= 0 {
		problems = append(problems, "total amount must be greater than zero")
	}
	if len(cart.Items) == 0 {
		problems = append(problems, "at least one item is required")
	}
	for i, item := range cart.Items {
		if item.ProductID <= 0 {
			problems = append(problems, fmt.Sprintf("item %d: product id is required", i+1))
		}
		if item.Quantity <= 0 {
			problems = append(problems, fmt.Sprintf("item %d: quantity must be positive", i+1))
		}
	}
	if cart.Context.ShopID <= 0 {
		problems = append(problems, "shop is required")
	}
	if cart.Context.CashierID <= 0 || strings.TrimSpace(cart.Context.CashierName) == "" {
		problems = append(problems, "cashier identity is required")
	}
	if cart.Status != "" && !Status(cart.Status).Valid() {
		problems = append(problems, fmt.Sprintf("status %q is not valid", cart.Status))
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func (s *Service) buildTransaction(cart CartInput, status Status, lines []PricedLine, totals Totals) Transaction {
	now := time.Now().UTC()
	saleDate := now
	if cart.SaleDate != nil {
		saleDate = cart.SaleDate.UTC()
	}

	number := cart.Number
	if number == "" {
		number = generateNumber("TXN", now)
	}

	var subtotal float64
	for _, line := range lines {
		subtotal += line.TotalPrice
	}

	amountPaid := totals.TotalAmount
	if cart.AmountPaid != nil && *cart.AmountPaid > 0 {
		amountPaid = *cart.AmountPaid
	}
	var change float64
	if amountPaid > totals.TotalAmount {
		change = amountPaid - totals.TotalAmount
	}

	customer := strings.TrimSpace(cart.CustomerName)
	if customer == "" {
		customer = WalkInCustomer
	}

	return Transaction{
		Number:        number,
		ReceiptNumber: generateNumber("RCP", now),
		Status:        status,
		PaymentMethod: PaymentMethod(cart.PaymentMethod),
		CustomerName:  customer,
		ShopID:        cart.Context.ShopID,
		ShopName:      cart.Context.ShopName,
		CashierID:     cart.Context.CashierID,
		CashierName:   cart.Context.CashierName,
		Lines:         lines,
		Subtotal:      subtotal,
		Tax:           cart.Tax,
		Discount:      cart.Discount,
		TotalAmount:   totals.TotalAmount,
		AmountPaid:    amountPaid,
		ChangeGiven:   change,
		TotalCost:     totals.TotalCost,
		TotalProfit:   totals.TotalProfit,
		ProfitMargin:  totals.ProfitMargin,
		Notes:         cart.Notes,
		SaleDate:      saleDate,
		CreatedAt:     now,
	}
}

func (s *Service) Get(ctx context.Context, id int64) (Transaction, error) {
	if id <= 0 {
		return Transaction{}, ErrTransactionNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByNumber(ctx context.Context, number string) (Transaction, error) {
	if number == "" {
		return Transaction{}, ErrTransactionNotFound
	}
	return s.repo.GetByNumber(ctx, number)
}

func (s *Service) List(ctx context.Context, filter TransactionFilter) ([]Transaction, int, error) {
	return s.repo.List(ctx, filter)
}

// allowedTransitions holds the legal status changes. Moving a completed sale
// to cancelled or refunded does NOT restock inventory; compensation is a
// manual adjustment movement in the catalog.
var allowedTransitions = map[Status][]Status{
	StatusCompleted: {StatusCancelled, StatusRefunded},
	StatusPending:   {StatusCancelled},
}

// UpdateStatus transitions a transaction's status.
func (s *Service) UpdateStatus(ctx context.Context, id int64, next Status, actor SaleContext) (Transaction, error) {
	if !next.Valid() {
		return Transaction{}, fmt.Errorf("%w: unknown status %q", ErrInvalidStatusTransition, next)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Transaction{}, err
	}

	allowed := false
	for _, candidate := range allowedTransitions[current.Status] {
		if candidate == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return Transaction{}, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, current.Status, next)
	}

	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return Transaction{}, err
	}
	current.Status = next

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:   actor.CashierID,
			ActorName: actor.CashierName,
			ShopID:    current.ShopID,
			Action:    "sales:status",
			Entity:    "transaction",
			EntityID:  current.Number,
			Meta:      map[string]any{"status": string(next)},
		})
	}
	return current, nil
}

// maxSaleAttempts bounds how often a sale unit of work re-runs after losing
// a row race.
const maxSaleAttempts = 3

// isSerializationFailure reports Postgres error 40001 ("could not serialize
// access due to concurrent update").
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

// classify maps unit-of-work failures to the caller-facing taxonomy. The
// four recoverable kinds pass through; everything else (including timeout)
// becomes a persistence failure that is safe to retry whole.
func classify(err error) error {
	var validation *ValidationError
	var notFound *ProductNotFoundError
	var stock *InsufficientStockError
	switch {
	case errors.As(err, &validation), errors.As(err, &notFound), errors.As(err, &stock):
		return err
	case errors.Is(err, shared.ErrIdempotencyConflict):
		return err
	default:
		return &PersistenceError{Err: err}
	}
}

type decrement struct {
	productID int64
	quantity  int
}

// mergeQuantities combines duplicate product ids in submitted order so one
// cart never checks the same row twice against stale availability.
func mergeQuantities(items []LineItemInput) []decrement {
	index := make(map[int64]int, len(items))
	merged := make([]decrement, 0, len(items))
	for _, item := range items {
		if at, ok := index[item.ProductID]; ok {
			merged[at].quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, decrement{productID: item.ProductID, quantity: item.Quantity})
	}
	return merged
}

func distinctProductIDs(items []LineItemInput) []int64 {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// generateNumber synthesizes a best-effort unique document number from the
// timestamp plus a short random suffix. Callers needing strict uniqueness
// supply their own number, which goes through the idempotency store.
func generateNumber(prefix string, now time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return prefix + "-" + now.Format("20060102150405") + "-" + suffix
}
