// Package registry owns lookup and mutation of shipment rows.
package registry

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"parcel-code-relay-go/internal/models"
)

// Resolution is the outcome of a tracking-number lookup
type Resolution int

const (
	// NotFound means no shipment row matches the tracking number
	NotFound Resolution = iota
	// Unique means exactly one shipment row matches
	Unique
	// Ambiguous means more than one row matches; this indicates duplicate
	// tracking numbers in the store and is never treated as a match
	Ambiguous
)

// String returns a human-readable resolution name
func (r Resolution) String() string {
	switch r {
	case NotFound:
		return "not_found"
	case Unique:
		return "unique"
	case Ambiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// Registry provides access to the shipment store
type Registry struct {
	db *gorm.DB
}

// New creates a new shipment registry
func New(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// Resolve looks up the shipment for a tracking number. Exactly one row
// yields Unique; zero yields NotFound; two or more yield Ambiguous with
// no shipment, because picking one would risk sending a code to the
// wrong person.
func (r *Registry) Resolve(trackingNumber string) (Resolution, *models.Shipment, error) {
	var rows []models.Shipment
	if err := r.db.Where("tracking_number = ?", trackingNumber).Limit(2).Find(&rows).Error; err != nil {
		return NotFound, nil, fmt.Errorf("failed to look up shipment %s: %w", trackingNumber, err)
	}

	switch len(rows) {
	case 0:
		return NotFound, nil, nil
	case 1:
		s := rows[0]
		return Unique, &s, nil
	default:
		logrus.Errorf("Tracking number %s matches multiple shipments, refusing to guess", trackingNumber)
		return Ambiguous, nil, nil
	}
}

// Create inserts a shipment row for a tracking number first seen in an
// email, recording the source mailbox as provenance. A uniqueness
// conflict means another writer created the row in the meantime; the
// existing row is re-resolved and returned instead of an error.
func (r *Registry) Create(trackingNumber, sourceMailbox string) (*models.Shipment, error) {
	shipment := models.Shipment{
		TrackingNumber: trackingNumber,
		SourceMailbox:  sourceMailbox,
	}

	err := r.db.Create(&shipment).Error
	if err == nil {
		logrus.Infof("Created shipment %s from mailbox %s", trackingNumber, sourceMailbox)
		return &shipment, nil
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		resolution, existing, rerr := r.Resolve(trackingNumber)
		if rerr != nil {
			return nil, rerr
		}
		if resolution != Unique {
			return nil, fmt.Errorf("shipment %s insert conflicted but resolution is %s", trackingNumber, resolution)
		}
		return existing, nil
	}

	return nil, fmt.Errorf("failed to create shipment %s: %w", trackingNumber, err)
}

// RecordPickupCode persists an extracted pickup code and its location.
// The delivered-at stamp is intentionally left alone: it is set only
// once delivery has succeeded (or was not needed).
func (r *Registry) RecordPickupCode(shipment *models.Shipment, code, location string) error {
	updates := map[string]interface{}{
		"pickup_code":          code,
		"pickup_code_location": location,
	}
	if err := r.db.Model(&models.Shipment{}).Where("id = ?", shipment.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to record pickup code for shipment %s: %w", shipment.TrackingNumber, err)
	}

	shipment.PickupCode = code
	shipment.PickupCodeLocation = location
	return nil
}

// MarkPickupDelivered stamps the pickup code as delivered. The stamp is
// the idempotency guard: once set, the pickup path never runs again for
// this shipment.
func (r *Registry) MarkPickupDelivered(shipment *models.Shipment) error {
	now := time.Now()
	err := r.db.Model(&models.Shipment{}).
		Where("id = ? AND pickup_code_delivered_at IS NULL", shipment.ID).
		Update("pickup_code_delivered_at", now).Error
	if err != nil {
		return fmt.Errorf("failed to mark pickup delivered for shipment %s: %w", shipment.TrackingNumber, err)
	}

	shipment.PickupCodeDeliveredAt = &now
	return nil
}

// RecordDropoff persists a drop-off code and recipient name and stamps
// the recorded-at guard in the same update; there is no delivery step
// on this path, so the write is the commit point.
func (r *Registry) RecordDropoff(shipment *models.Shipment, code, recipientName string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"dropoff_code":             code,
		"dropoff_recipient_name":   recipientName,
		"dropoff_code_recorded_at": now,
	}
	err := r.db.Model(&models.Shipment{}).
		Where("id = ? AND dropoff_code_recorded_at IS NULL", shipment.ID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to record dropoff code for shipment %s: %w", shipment.TrackingNumber, err)
	}

	shipment.DropoffCode = code
	shipment.DropoffRecipientName = recipientName
	shipment.DropoffCodeRecordedAt = &now
	return nil
}

// LogProcessing writes one process-log row for a scanned message.
// Logging failures are reported but never fail the scan.
func (r *Registry) LogProcessing(messageID, account, trackingNumber, status, errorMsg string) {
	entry := models.ProcessLog{
		MessageID:      messageID,
		Account:        account,
		TrackingNumber: trackingNumber,
		Status:         status,
		ErrorMsg:       errorMsg,
		CreatedAt:      time.Now(),
	}
	if err := r.db.Create(&entry).Error; err != nil {
		logrus.Errorf("Failed to write process log for message %s: %v", messageID, err)
	}
}
