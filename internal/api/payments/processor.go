// internal/api/payments/processor.go
package payments

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chino-hash/turnero-padel/internal/booking"
	"github.com/chino-hash/turnero-padel/internal/credentials"
	appdb "github.com/chino-hash/turnero-padel/internal/db"
	dbgen "github.com/chino-hash/turnero-padel/internal/db/generated"
	"github.com/chino-hash/turnero-padel/internal/events"
	"github.com/chino-hash/turnero-padel/internal/replay"
)

// failureKind classifies a webhook outcome so the HTTP layer can pick the
// right status code without inspecting error strings.
type failureKind int

const (
	failureNone failureKind = iota
	failureValidation
	failureAuthentication
	failureReplay
	failureNotFound
	failureConflict
	failureTransient
)

// Result is the structured outcome of one delivery. Handle never panics or
// returns a Go error past its boundary; every failure mode lands here.
type Result struct {
	Success        bool   `json:"success"`
	Processed      bool   `json:"processed"`
	BookingUpdated bool   `json:"bookingUpdated"`
	BookingID      int64  `json:"bookingId,omitempty"`
	Message        string `json:"message,omitempty"`

	failure failureKind
}

func failed(kind failureKind, message string) Result {
	return Result{Message: message, failure: kind}
}

const (
	eventTypePayment = "payment"

	paymentStatusApproved  = "approved"
	paymentStatusRejected  = "rejected"
	paymentStatusCancelled = "cancelled"
	paymentStatusRefunded  = "refunded"
)

type webhookData struct {
	ID string `json:"id"`
}

// webhookEnvelope is the provider's delivery body. The signature and request
// id ride in headers, not the body.
type webhookEnvelope struct {
	Type              string      `json:"type"`
	Action            string      `json:"action,omitempty"`
	Data              webhookData `json:"data"`
	ExternalReference string      `json:"external_reference,omitempty"`
	AmountCents       int64       `json:"amount_cents,omitempty"`
	Status            string      `json:"status,omitempty"`
	Method            string      `json:"method,omitempty"`
}

// Processor drives the webhook pipeline: shape validation, signature
// resolution, replay prevention, then dispatch into the booking state
// machine. Each step is a hard gate; nothing earlier in the pipeline mutates
// state.
type Processor struct {
	db        *appdb.DB
	queries   *dbgen.Queries
	vault     *credentials.Vault
	replays   replay.Store
	publisher events.Publisher
	rejected  RejectedPaymentPolicy

	globalSecret string
	replayTTL    time.Duration
	locks        *bookingLocks
}

// ProcessorConfig carries the processor's collaborators and tuning.
type ProcessorConfig struct {
	DB           *appdb.DB
	Vault        *credentials.Vault
	Replays      replay.Store
	Publisher    events.Publisher
	Rejected     RejectedPaymentPolicy
	GlobalSecret string
	ReplayTTL    time.Duration
}

const defaultReplayTTL = 10 * time.Minute

func NewProcessor(cfg ProcessorConfig) *Processor {
	if cfg.ReplayTTL <= 0 {
		cfg.ReplayTTL = defaultReplayTTL
	}
	if cfg.Rejected == nil {
		cfg.Rejected = KeepBookingPolicy{}
	}
	return &Processor{
		db:           cfg.DB,
		queries:      cfg.DB.Queries,
		vault:        cfg.Vault,
		replays:      cfg.Replays,
		publisher:    cfg.Publisher,
		rejected:     cfg.Rejected,
		globalSecret: cfg.GlobalSecret,
		replayTTL:    cfg.ReplayTTL,
		locks:        newBookingLocks(),
	}
}

// Handle processes one delivery. signature and requestID come from the
// provider's headers, body is the raw request body.
func (p *Processor) Handle(ctx context.Context, body []byte, signature, requestID string) (result Result) {
	logger := log.Ctx(ctx)

	marked := false
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Str("request_id", requestID).Msg("Webhook processing panicked")
			result = failed(failureTransient, "internal processing failure")
			if marked {
				p.releaseMark(ctx, requestID)
			}
		}
	}()

	envelope, err := parseEnvelope(body)
	if err != nil {
		return failed(failureValidation, err.Error())
	}
	if requestID == "" {
		return failed(failureValidation, "missing request id header")
	}

	// The booking is resolved before signature validation because the
	// tenant-scoped retry needs to know which tenant owns the event.
	target, found, err := p.resolveBooking(ctx, envelope)
	if err != nil {
		logger.Error().Err(err).Str("request_id", requestID).Msg("Failed to resolve booking for webhook")
		return failed(failureTransient, "failed to resolve booking")
	}

	if res, ok := p.authenticate(ctx, envelope, signature, requestID, target, found); !ok {
		return res
	}

	if envelope.Type != eventTypePayment {
		// Unknown event types are acknowledged so the provider stops
		// retrying; nothing is mutated and the request id is not consumed.
		logger.Info().Str("type", envelope.Type).Str("request_id", requestID).Msg("Acknowledging unhandled webhook event type")
		return Result{Success: true, Processed: true, Message: fmt.Sprintf("event type %q ignored", envelope.Type)}
	}

	if !found {
		return failed(failureNotFound, fmt.Sprintf("no booking matches external reference %q", envelope.ExternalReference))
	}

	unlock := p.locks.lock(target.ID)
	defer unlock()

	switch err := p.replays.Mark(ctx, requestID, p.replayTTL); {
	case errors.Is(err, replay.ErrDuplicate):
		return Result{
			Success:   true,
			Processed: false,
			BookingID: target.ID,
			Message:   fmt.Sprintf("request %s already processed", requestID),
			failure:   failureReplay,
		}
	case err != nil:
		logger.Error().Err(err).Str("request_id", requestID).Msg("Replay store mark failed")
		return failed(failureTransient, "replay store unavailable")
	}
	marked = true

	res := p.dispatch(ctx, envelope, target)
	if res.failure == failureTransient {
		// The event was not applied; release the request id while the
		// booking lock is still held, so the provider's retry is processed
		// instead of being answered as a replay.
		p.releaseMark(ctx, requestID)
		marked = false
	}
	return res
}

// releaseMark is best-effort. A failed release leaves the id consumed until
// the TTL lapses; the unique provider payment id still prevents any
// double-apply once the event does land.
func (p *Processor) releaseMark(ctx context.Context, requestID string) {
	if err := p.replays.Delete(ctx, requestID); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("request_id", requestID).Msg("Failed to release replay mark")
	}
}

func parseEnvelope(body []byte) (webhookEnvelope, error) {
	var envelope webhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return envelope, fmt.Errorf("malformed webhook body: %w", err)
	}
	switch {
	case envelope.Type == "":
		return envelope, errors.New("missing event type")
	case envelope.Data.ID == "":
		return envelope, errors.New("missing data.id")
	case envelope.Type == eventTypePayment && envelope.ExternalReference == "":
		return envelope, errors.New("missing external_reference")
	case envelope.Type == eventTypePayment && envelope.AmountCents < 0:
		return envelope, errors.New("amount_cents must not be negative")
	case envelope.Type == eventTypePayment && envelope.Status == "":
		return envelope, errors.New("missing payment status")
	}
	return envelope, nil
}

func (p *Processor) resolveBooking(ctx context.Context, envelope webhookEnvelope) (dbgen.Booking, bool, error) {
	if envelope.ExternalReference == "" {
		return dbgen.Booking{}, false, nil
	}
	bookingID, err := strconv.ParseInt(envelope.ExternalReference, 10, 64)
	if err != nil || bookingID <= 0 {
		return dbgen.Booking{}, false, nil
	}
	b, err := p.queries.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Booking{}, false, nil
		}
		return dbgen.Booking{}, false, err
	}
	return b, true, nil
}

// authenticate validates the delivery signature: global secret first, then
// the owning tenant's secret from the vault. With no secret configured
// anywhere, validation is skipped with a logged warning; that is an explicit
// configuration decision, never a silent default.
func (p *Processor) authenticate(ctx context.Context, envelope webhookEnvelope, signature, requestID string, target dbgen.Booking, found bool) (Result, bool) {
	logger := log.Ctx(ctx)

	if p.globalSecret != "" && VerifySignature(p.globalSecret, envelope.Data.ID, requestID, signature) {
		return Result{}, true
	}

	var tenantSecret string
	if found && p.vault != nil {
		secret, source, err := p.vault.WebhookSecret(ctx, target.TenantID)
		if err != nil {
			logger.Error().Err(err).Int64("tenant_id", target.TenantID).Msg("Failed to resolve tenant webhook secret")
			return failed(failureTransient, "failed to resolve tenant credentials"), false
		}
		if source == credentials.SourceTenant {
			tenantSecret = secret
		}
	}

	if tenantSecret != "" && VerifySignature(tenantSecret, envelope.Data.ID, requestID, signature) {
		return Result{}, true
	}

	if p.globalSecret == "" && tenantSecret == "" {
		logger.Warn().Str("request_id", requestID).Msg("No webhook secret configured anywhere; skipping signature validation")
		return Result{}, true
	}

	logger.Warn().Str("request_id", requestID).Msg("Webhook signature validation failed")
	return failed(failureAuthentication, "invalid webhook signature"), false
}

// dispatch applies the payment event to the booking inside one transaction.
// The provider payment id is unique in storage, so a duplicate that outlives
// the replay window still cannot double-count.
func (p *Processor) dispatch(ctx context.Context, envelope webhookEnvelope, target dbgen.Booking) Result {
	logger := log.Ctx(ctx)

	var (
		updated dbgen.Booking
		changed bool
	)
	err := p.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		qtx := txdb.Queries

		current, err := qtx.GetBookingByID(ctx, target.ID)
		if err != nil {
			return fmt.Errorf("fetch booking %d: %w", target.ID, err)
		}
		updated = current

		if _, err := qtx.GetPaymentByProviderID(ctx, envelope.Data.ID); err == nil {
			// Already recorded by an earlier delivery; nothing to apply.
			return nil
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lookup payment %s: %w", envelope.Data.ID, err)
		}

		if _, err := qtx.CreatePayment(ctx, dbgen.CreatePaymentParams{
			TenantID:          current.TenantID,
			BookingID:         current.ID,
			ProviderPaymentID: envelope.Data.ID,
			AmountCents:       envelope.AmountCents,
			Method:            envelope.Method,
			Status:            envelope.Status,
		}); err != nil {
			return fmt.Errorf("record payment %s: %w", envelope.Data.ID, err)
		}

		switch envelope.Status {
		case paymentStatusApproved:
			paid, err := qtx.SumApprovedPayments(ctx, current.ID)
			if err != nil {
				return fmt.Errorf("sum payments for booking %d: %w", current.ID, err)
			}
			next := booking.PaymentStatusForAmount(paid, current.TotalPriceCents)
			if string(next) == current.PaymentStatus {
				return nil
			}
			if err := booking.TransitionPayment(booking.PaymentStatus(current.PaymentStatus), next); err != nil {
				return err
			}
			updated, err = qtx.UpdateBookingPaymentStatus(ctx, dbgen.UpdateBookingPaymentStatusParams{
				PaymentStatus: string(next),
				ID:            current.ID,
			})
			if err != nil {
				return fmt.Errorf("update payment status for booking %d: %w", current.ID, err)
			}
			changed = true

		case paymentStatusRefunded:
			if err := booking.TransitionPayment(booking.PaymentStatus(current.PaymentStatus), booking.PaymentRefunded); err != nil {
				return err
			}
			updated, err = qtx.UpdateBookingPaymentStatus(ctx, dbgen.UpdateBookingPaymentStatusParams{
				PaymentStatus: string(booking.PaymentRefunded),
				ID:            current.ID,
			})
			if err != nil {
				return fmt.Errorf("update payment status for booking %d: %w", current.ID, err)
			}
			changed = true

		case paymentStatusRejected, paymentStatusCancelled:
			updated, changed, err = p.rejected.Apply(ctx, qtx, current)
			if err != nil {
				return err
			}

		default:
			// Unknown payment status: the row is recorded for audit, the
			// booking is left alone, and the delivery is acknowledged.
			logger.Info().Str("status", envelope.Status).Int64("booking_id", current.ID).Msg("Ignoring unhandled payment status")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, booking.ErrInvalidTransition) {
			return Result{
				Message:   err.Error(),
				BookingID: target.ID,
				failure:   failureConflict,
			}
		}
		logger.Error().Err(err).Int64("booking_id", target.ID).Msg("Webhook dispatch failed")
		return failed(failureTransient, "failed to apply payment event")
	}

	if changed {
		p.publishEvent(ctx, updated)
	}

	return Result{
		Success:        true,
		Processed:      true,
		BookingUpdated: changed,
		BookingID:      target.ID,
		Message:        "event applied",
	}
}

func (p *Processor) publishEvent(ctx context.Context, b dbgen.Booking) {
	if p.publisher == nil {
		return
	}
	event := booking.Event{
		TenantID:      b.TenantID,
		BookingID:     b.ID,
		Status:        booking.Status(b.Status),
		PaymentStatus: booking.PaymentStatus(b.PaymentStatus),
		OccurredAt:    time.Now().UTC(),
	}
	if err := p.publisher.PublishBookingEvent(ctx, event); err != nil {
		log.Ctx(ctx).Warn().Err(err).Int64("booking_id", b.ID).Msg("Failed to publish booking event")
	}
}
