// Package reconcile decides what to persist and what to deliver for the
// facts extracted from one email.
package reconcile

import (
	"context"

	"github.com/sirupsen/logrus"

	"parcel-code-relay-go/internal/extract"
	"parcel-code-relay-go/internal/metrics"
	"parcel-code-relay-go/internal/notify"
	"parcel-code-relay-go/internal/registry"
)

// Outcome is the per-message reconciliation result
type Outcome int

const (
	// SkippedNoTracking means the email carried no tracking number
	SkippedNoTracking Outcome = iota
	// SkippedNoMatch means no unique shipment matched the tracking number
	SkippedNoMatch
	// SkippedNoCode means the email carried neither a pickup nor a drop-off code
	SkippedNoCode
	// Processed means at least one code was persisted and fully handled
	Processed
	// AlreadyProcessed means every extracted code was handled in an earlier scan
	AlreadyProcessed
	// DeliveryFailed means the pickup code was persisted but the notification
	// could not be delivered; a later scan retries delivery
	DeliveryFailed
)

// String returns the status label used in process logs
func (o Outcome) String() string {
	switch o {
	case SkippedNoTracking:
		return "skipped_no_tracking"
	case SkippedNoMatch:
		return "skipped_no_match"
	case SkippedNoCode:
		return "skipped_no_code"
	case Processed:
		return "processed"
	case AlreadyProcessed:
		return "already_processed"
	case DeliveryFailed:
		return "delivery_failed"
	default:
		return "unknown"
	}
}

// Settled reports whether the source message is finished with: only
// then may the scanner mark it read. Skipped messages stay unread so a
// later cycle reconsiders them once a matching shipment exists, and a
// failed delivery keeps the message unread so delivery is retried.
func (o Outcome) Settled() bool {
	return o == Processed || o == AlreadyProcessed
}

// Engine reconciles extracted email facts against the shipment registry
type Engine struct {
	registry *registry.Registry
	notifier notify.Notifier
	metrics  *metrics.Metrics
}

// NewEngine creates a new reconciliation engine
func NewEngine(reg *registry.Registry, notifier notify.Notifier, m *metrics.Metrics) *Engine {
	return &Engine{
		registry: reg,
		notifier: notifier,
		metrics:  m,
	}
}

// Reconcile resolves the shipment for the extracted facts and drives the
// pickup and drop-off paths. The two paths are independent: an email can
// in principle carry both codes. Returned errors are registry failures;
// a delivery failure is an outcome, not an error.
func (e *Engine) Reconcile(ctx context.Context, facts extract.Facts, sourceAccount string) (Outcome, error) {
	if facts.TrackingNumber == "" {
		return SkippedNoTracking, nil
	}

	resolution, shipment, err := e.registry.Resolve(facts.TrackingNumber)
	if err != nil {
		return SkippedNoMatch, err
	}

	// Unknown tracking numbers that arrive with a code get a shipment row
	// created lazily, with the source mailbox recorded as provenance.
	if resolution == registry.NotFound && facts.HasCode() {
		shipment, err = e.registry.Create(facts.TrackingNumber, sourceAccount)
		if err != nil {
			return SkippedNoMatch, err
		}
		resolution = registry.Unique
		e.metrics.ShipmentsCreated.Inc()
	}

	if resolution != registry.Unique {
		if resolution == registry.Ambiguous {
			e.metrics.AmbiguousMatches.Inc()
		}
		logrus.Warnf("No usable shipment for tracking number %s (resolution %s)", facts.TrackingNumber, resolution)
		return SkippedNoMatch, nil
	}

	if !facts.HasCode() {
		return SkippedNoCode, nil
	}

	var processed, already, deliveryFailed bool

	// Drop-off path: storage only. Send codes authorize dropping a parcel
	// off and are never pushed over the notification channel.
	if facts.DropoffCode != "" {
		if shipment.DropoffHandled() {
			already = true
		} else {
			if err := e.registry.RecordDropoff(shipment, facts.DropoffCode, facts.RecipientName); err != nil {
				return SkippedNoMatch, err
			}
			e.metrics.CodesExtracted.WithLabelValues("dropoff").Inc()
			logrus.Infof("Recorded drop-off code for shipment %s", shipment.TrackingNumber)
			processed = true
		}
	}

	// Pickup path: persist first, then deliver. The delivered-at stamp is
	// written only after the adapter reports success, so a failed delivery
	// is retried on the next scan without re-deriving the code.
	if facts.PickupCode != "" {
		if shipment.PickupHandled() {
			already = true
		} else {
			if err := e.registry.RecordPickupCode(shipment, facts.PickupCode, facts.Location); err != nil {
				return SkippedNoMatch, err
			}
			e.metrics.CodesExtracted.WithLabelValues("pickup").Inc()

			if shipment.ChatID == "" {
				// Nothing to deliver; stamp immediately so the code is settled.
				if err := e.registry.MarkPickupDelivered(shipment); err != nil {
					return SkippedNoMatch, err
				}
				logrus.Infof("Stored pickup code for shipment %s (no notification channel)", shipment.TrackingNumber)
				processed = true
			} else if err := e.notifier.Send(ctx, shipment.ChatID, notify.PickupMessage(shipment.TrackingNumber, facts.PickupCode, facts.Location)); err != nil {
				e.metrics.DeliveryFailures.Inc()
				logrus.Errorf("Failed to deliver pickup code for shipment %s: %v", shipment.TrackingNumber, err)
				deliveryFailed = true
			} else {
				if err := e.registry.MarkPickupDelivered(shipment); err != nil {
					return SkippedNoMatch, err
				}
				e.metrics.DeliverySuccesses.Inc()
				logrus.Infof("Delivered pickup code for shipment %s to chat %s", shipment.TrackingNumber, shipment.ChatID)
				processed = true
			}
		}
	}

	switch {
	case deliveryFailed:
		return DeliveryFailed, nil
	case processed:
		return Processed, nil
	case already:
		return AlreadyProcessed, nil
	default:
		return SkippedNoCode, nil
	}
}
