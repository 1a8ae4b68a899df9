package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stripe/stripe-go/v82"

	"github.com/printloom/printloom-backend/internal/domain"
	"github.com/printloom/printloom-backend/internal/fulfillment"
	"github.com/printloom/printloom-backend/internal/logging"
	"github.com/printloom/printloom-backend/internal/metrics"
	"github.com/printloom/printloom-backend/internal/payments"
	"github.com/printloom/printloom-backend/internal/repository"
)

type verifier interface {
	Verify(payload []byte, signatureHeader string) (stripe.Event, error)
}

type guard interface {
	Begin(ctx context.Context, eventID string) (*repository.Admission, error)
	Finish(ctx context.Context, eventID string, status domain.ProcessingStatus, externalOrderID *string) error
	MarkNotified(ctx context.Context, eventID string) error
}

type fulfiller interface {
	PlaceOrder(ctx context.Context, order domain.FulfillmentOrder) (string, error)
}

type notifier interface {
	SendConfirmation(ctx context.Context, customerEmail, externalOrderID string) error
}

// Disposition is how an acknowledged delivery was resolved. Every
// disposition maps to a 200 response; verification, classification and
// admission-store errors come back as errors instead.
type Disposition string

const (
	// DispositionHandled: fulfillment placed and notification attempted.
	DispositionHandled Disposition = "handled"
	// DispositionSkipped: event type this system does not act on.
	DispositionSkipped Disposition = "skipped"
	// DispositionDuplicate: event ID already processed to a terminal state.
	DispositionDuplicate Disposition = "duplicate"
	// DispositionInFlight: another delivery of this event is mid-processing.
	DispositionInFlight Disposition = "processing"
	// DispositionFailed: fulfillment rejected; failure recorded, no retry.
	DispositionFailed Disposition = "failure_recorded"
	// DispositionAccepted: acked early, fulfillment retrying in background.
	DispositionAccepted Disposition = "accepted"
)

type Policy struct {
	// MaxAttempts bounds total fulfillment attempts per admitted event,
	// first in-request attempt included.
	MaxAttempts          int
	RetryInitialInterval time.Duration
	// AckBudget caps in-request fulfillment work; the processor redelivers
	// deliveries it could not ack in time, so the first attempt must not
	// outlive it.
	AckBudget time.Duration
	// BackgroundTimeout caps the detached retry tail after an early ack.
	BackgroundTimeout time.Duration
}

// Orchestrator runs one webhook delivery through verification,
// classification, admission, fulfillment and notification, and decides the
// acknowledgment. Once an event is verified and classified as actionable the
// processor always gets a success ack: redelivering the same payload cannot
// fix a fulfillment problem, so those failures are absorbed into the
// processing record and the metrics.
type Orchestrator struct {
	verifier  verifier
	classify  func(stripe.Event) (domain.PaymentEvent, error)
	guard     guard
	fulfiller fulfiller
	notifier  notifier
	policy    Policy

	wg sync.WaitGroup
}

func NewOrchestrator(v verifier, g guard, f fulfiller, n notifier, policy Policy) *Orchestrator {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 3
	}
	if policy.RetryInitialInterval <= 0 {
		policy.RetryInitialInterval = 500 * time.Millisecond
	}
	if policy.AckBudget <= 0 {
		policy.AckBudget = 8 * time.Second
	}
	if policy.BackgroundTimeout <= 0 {
		policy.BackgroundTimeout = 2 * time.Minute
	}
	return &Orchestrator{
		verifier:  v,
		classify:  payments.Classify,
		guard:     g,
		fulfiller: f,
		notifier:  n,
		policy:    policy,
	}
}

// HandleDelivery processes one raw webhook delivery. A returned error means
// the delivery was not acknowledged as handled: signature and classification
// failures want a 400 so the processor redelivers; an admission-store error
// wants a 500 for the same reason, since without the guard no side effect is
// safe to run.
func (o *Orchestrator) HandleDelivery(ctx context.Context, payload []byte, signatureHeader string) (Disposition, error) {
	log := logging.FromContext(ctx)
	metrics.WebhookEventsTotal.Inc()

	event, err := o.verifier.Verify(payload, signatureHeader)
	if err != nil {
		metrics.WebhookEventsRejectedTotal.Inc()
		return "", fmt.Errorf("HandleDelivery: verify: %w", err)
	}

	ev, err := o.classify(event)
	if err != nil {
		metrics.WebhookEventsRejectedTotal.Inc()
		log.Error("actionable event failed classification", "event_id", event.ID, "error", err)
		return "", fmt.Errorf("HandleDelivery: %w", err)
	}

	if ev.Type != domain.EventPaymentCompleted {
		metrics.WebhookEventsSkippedTotal.Inc()
		log.Info("event acknowledged without action", "event_id", ev.EventID, "type", string(event.Type))
		return DispositionSkipped, nil
	}

	admission, err := o.guard.Begin(ctx, ev.EventID)
	if err != nil {
		return "", fmt.Errorf("HandleDelivery: admission: %w", err)
	}

	if !admission.Admitted {
		metrics.WebhookEventsDuplicateTotal.Inc()
		if admission.Existing.Status == domain.ProcessingStatusInProgress {
			log.Info("event already in flight", "event_id", ev.EventID)
			return DispositionInFlight, nil
		}
		log.Info("duplicate delivery for settled event",
			"event_id", ev.EventID,
			"status", admission.Existing.Status,
		)
		return DispositionDuplicate, nil
	}

	return o.processAdmitted(ctx, ev), nil
}

// Wait blocks until all background fulfillment retries have settled. Called
// during shutdown so an early-acked event is not abandoned mid-retry.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) processAdmitted(ctx context.Context, ev domain.PaymentEvent) Disposition {
	start := time.Now()
	order := domain.NewFulfillmentOrder(ev)

	syncCtx, cancel := context.WithTimeout(ctx, o.policy.AckBudget)
	defer cancel()

	orderID, err := o.fulfiller.PlaceOrder(syncCtx, order)
	if err == nil {
		o.complete(ctx, ev, orderID)
		metrics.EventProcessingDuration.Observe(time.Since(start).Seconds())
		return DispositionHandled
	}

	var rejected *fulfillment.RejectedError
	if errors.As(err, &rejected) {
		metrics.FulfillmentRejectedTotal.Inc()
		o.fail(ctx, ev, err)
		return DispositionFailed
	}

	// Transient provider failure. Ack now and move the remaining attempts
	// off-request: blocking here would risk the processor's ack deadline and
	// a redelivery storm. The durable in_progress record covers the gap.
	bg := context.WithoutCancel(ctx)
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		bctx, cancel := context.WithTimeout(bg, o.policy.BackgroundTimeout)
		defer cancel()
		o.retryFulfillment(bctx, ev, order)
	}()
	return DispositionAccepted
}

func (o *Orchestrator) retryFulfillment(ctx context.Context, ev domain.PaymentEvent, order domain.FulfillmentOrder) {
	remaining := o.policy.MaxAttempts - 1
	if remaining < 1 {
		metrics.FulfillmentExhaustedTotal.Inc()
		o.fail(ctx, ev, errors.New("fulfillment retry budget exhausted"))
		return
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = o.policy.RetryInitialInterval

	var orderID string
	attempt := func() error {
		metrics.FulfillmentRetriesTotal.Inc()
		id, err := o.fulfiller.PlaceOrder(ctx, order)
		if err != nil {
			var rejected *fulfillment.RejectedError
			if errors.As(err, &rejected) {
				return backoff.Permanent(err)
			}
			return err
		}
		orderID = id
		return nil
	}

	err := backoff.Retry(attempt, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(remaining-1)), ctx))
	if err != nil {
		var rejected *fulfillment.RejectedError
		if errors.As(err, &rejected) {
			metrics.FulfillmentRejectedTotal.Inc()
		} else {
			metrics.FulfillmentExhaustedTotal.Inc()
		}
		o.fail(ctx, ev, err)
		return
	}

	o.complete(ctx, ev, orderID)
}

func (o *Orchestrator) complete(ctx context.Context, ev domain.PaymentEvent, orderID string) {
	log := logging.FromContext(ctx)

	if err := o.guard.Finish(ctx, ev.EventID, domain.ProcessingStatusCompleted, &orderID); err != nil {
		log.Error("failed to record completion", "event_id", ev.EventID, "order_id", orderID, "error", err)
	}
	metrics.FulfillmentOrdersPlacedTotal.Inc()
	log.Info("fulfillment order placed", "event_id", ev.EventID, "order_id", orderID)

	// Best effort: the order is placed, which is the success criterion for
	// the event. A failed email never fails the pipeline.
	if err := o.notifier.SendConfirmation(ctx, ev.CustomerEmail, orderID); err != nil {
		metrics.NotificationsFailedTotal.Inc()
		log.Error("confirmation email failed", "event_id", ev.EventID, "order_id", orderID, "error", err)
		return
	}
	metrics.NotificationsSentTotal.Inc()

	if err := o.guard.MarkNotified(ctx, ev.EventID); err != nil {
		log.Error("failed to record notification", "event_id", ev.EventID, "error", err)
	}
}

func (o *Orchestrator) fail(ctx context.Context, ev domain.PaymentEvent, cause error) {
	log := logging.FromContext(ctx)

	if err := o.guard.Finish(ctx, ev.EventID, domain.ProcessingStatusFailed, nil); err != nil {
		log.Error("failed to record fulfillment failure", "event_id", ev.EventID, "error", err)
	}
	log.Error("fulfillment failed for paid order", "event_id", ev.EventID, "error", cause)
}
