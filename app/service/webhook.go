package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-checkout/app/entity"
	"github.com/vibast-solutions/ms-go-checkout/app/provider"
	"github.com/vibast-solutions/ms-go-checkout/app/repository"
)

type handleWebhookRequest interface {
	GetSignature() string
	GetEventId() string
	GetPayload() []byte
}

type WebhookResult struct {
	EventType    string
	OrderID      string
	Status       string
	Transitioned bool
	Duplicate    bool
	Ignored      bool
}

// HandleWebhook applies an authoritative gateway notification. It is the only writer
// of completed and failed order states. Deliveries are at-least-once, so every branch
// is safe to repeat.
func (s *OrderService) HandleWebhook(ctx context.Context, req handleWebhookRequest) (*WebhookResult, error) {
	payload := req.GetPayload()
	signature := strings.TrimSpace(req.GetSignature())
	eventID := strings.TrimSpace(req.GetEventId())

	if !s.gateway.VerifyWebhookSignature(payload, signature) {
		record := s.webhookRecord(req, "", nil, entity.WebhookStatusRejected, "invalid webhook signature")
		record.PayloadJSON = unverifiedPayloadSummary(payload)
		_ = s.webhookRepo.Create(ctx, record)
		return nil, ErrWebhookRejected
	}

	event, err := s.gateway.ParseWebhook(payload)
	if err != nil {
		s.persistWebhook(ctx, req, "", nil, entity.WebhookStatusRejected, fmt.Sprintf("webhook payload could not be parsed: %v", err))
		return nil, ErrWebhookRejected
	}

	if eventID != "" {
		processed, err := s.webhookRepo.IsProcessed(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if processed {
			s.persistWebhook(ctx, req, event.EventType, nil, entity.WebhookStatusDuplicate, "")
			return &WebhookResult{EventType: event.EventType, Duplicate: true}, nil
		}
	}

	if event.Action == provider.WebhookActionIgnore {
		if err := s.recordProcessed(ctx, req, event.EventType, nil); err != nil {
			return nil, err
		}
		return &WebhookResult{EventType: event.EventType, Ignored: true}, nil
	}

	if event.GatewayOrderID == "" || (event.Action == provider.WebhookActionComplete && event.GatewayPaymentID == "") {
		s.persistWebhook(ctx, req, event.EventType, nil, entity.WebhookStatusRejected, "webhook payload is missing order or payment id")
		return nil, ErrWebhookRejected
	}

	order, err := s.orderRepo.FindByGatewayOrderID(ctx, event.GatewayOrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		s.persistWebhook(ctx, req, event.EventType, nil, entity.WebhookStatusRejected, "order not found for gateway order id")
		return nil, ErrOrderNotFound
	}

	now := time.Now().UTC()
	oldStatus := order.Status
	result := &WebhookResult{EventType: event.EventType, OrderID: order.ID}

	switch event.Action {
	case provider.WebhookActionComplete:
		transitioned, err := s.orderRepo.MarkCompleted(ctx, event.GatewayOrderID, event.GatewayPaymentID, now)
		if errors.Is(err, repository.ErrOrderNotPayable) {
			return s.rejectLatePayment(ctx, req, event, order, now)
		}
		if err != nil {
			return nil, s.completionError(ctx, req, event, order, err)
		}
		result.Transitioned = transitioned
		result.Status = entity.OrderStatusCompleted
		if transitioned {
			s.recordTransition(ctx, req, order.ID, entity.OrderEventCompleted, oldStatus, result.Status, event.GatewayPaymentID, now)
		}
	case provider.WebhookActionFail:
		transitioned, err := s.orderRepo.MarkFailed(ctx, event.GatewayOrderID, event.GatewayPaymentID, truncate(event.ErrorDescription, 512), now)
		if err != nil {
			if errors.Is(err, repository.ErrOrderNotFound) {
				return nil, ErrOrderNotFound
			}
			return nil, err
		}
		result.Transitioned = transitioned
		result.Status = oldStatus
		if transitioned {
			result.Status = entity.OrderStatusFailed
			s.recordTransition(ctx, req, order.ID, entity.OrderEventFailed, oldStatus, result.Status, event.GatewayPaymentID, now)
		}
	}

	orderID := order.ID
	if err := s.recordProcessed(ctx, req, event.EventType, &orderID); err != nil {
		return nil, err
	}

	return result, nil
}

// rejectLatePayment records a capture for an order that already expired or failed. The
// order is left untouched. Each gateway payment is recorded once; a redelivery of the
// same payment is reported as a duplicate so the gateway stops retrying.
func (s *OrderService) rejectLatePayment(
	ctx context.Context,
	req handleWebhookRequest,
	event *provider.WebhookEvent,
	order *entity.Order,
	now time.Time,
) (*WebhookResult, error) {
	orderID := order.ID
	current := order.Status
	if latest, err := s.orderRepo.FindByID(ctx, order.ID); err == nil && latest != nil {
		current = latest.Status
	}
	result := &WebhookResult{EventType: event.EventType, OrderID: order.ID, Status: current}

	err := s.eventRepo.Create(ctx, orderEventFromWebhook(req, order.ID, entity.OrderEventLatePaymentRejected, current, current, event.GatewayPaymentID, now))
	if errors.Is(err, repository.ErrOrderEventExists) {
		s.persistWebhook(ctx, req, event.EventType, &orderID, entity.WebhookStatusDuplicate, "late payment already recorded")
		result.Duplicate = true
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	s.persistWebhook(ctx, req, event.EventType, &orderID, entity.WebhookStatusRejected, "late payment for "+current+" order")
	return nil, fmt.Errorf("%w: order=%s status=%s payment=%s", ErrLatePaymentRejected, order.ID, current, event.GatewayPaymentID)
}

func (s *OrderService) completionError(
	ctx context.Context,
	req handleWebhookRequest,
	event *provider.WebhookEvent,
	order *entity.Order,
	err error,
) error {
	orderID := order.ID
	switch {
	case errors.Is(err, repository.ErrOrderConflict):
		s.persistWebhook(ctx, req, event.EventType, &orderID, entity.WebhookStatusRejected, "order already completed with a different payment")
		return fmt.Errorf("%w: %v", ErrOrderConflict, err)
	case errors.Is(err, repository.ErrOrderNotFound):
		return ErrOrderNotFound
	default:
		return err
	}
}

func (s *OrderService) recordTransition(
	ctx context.Context,
	req handleWebhookRequest,
	orderID, eventType, oldStatus, newStatus, gatewayPaymentID string,
	now time.Time,
) {
	_ = s.eventRepo.Create(ctx, orderEventFromWebhook(req, orderID, eventType, oldStatus, newStatus, gatewayPaymentID, now))
}

func orderEventFromWebhook(
	req handleWebhookRequest,
	orderID, eventType, oldStatus, newStatus, gatewayPaymentID string,
	now time.Time,
) *entity.OrderEvent {
	payloadJSON := string(req.GetPayload())
	event := &entity.OrderEvent{
		OrderID:     orderID,
		EventType:   eventType,
		OldStatus:   &oldStatus,
		NewStatus:   newStatus,
		PayloadJSON: &payloadJSON,
		CreatedAt:   now,
	}
	if eventID := strings.TrimSpace(req.GetEventId()); eventID != "" {
		event.GatewayEventID = &eventID
	}
	if gatewayPaymentID != "" {
		event.GatewayPaymentID = &gatewayPaymentID
	}
	return event
}

// unverifiedPayloadSummary stands in for the body of a delivery whose signature did not
// verify. Only its size and digest are kept.
func unverifiedPayloadSummary(payload []byte) string {
	sum := sha256.Sum256(payload)
	return fmt.Sprintf(`{"unverified":true,"bytes":%d,"sha256":%q}`, len(payload), hex.EncodeToString(sum[:]))
}

func (s *OrderService) recordProcessed(ctx context.Context, req handleWebhookRequest, eventType string, orderID *string) error {
	return s.webhookRepo.Create(ctx, s.webhookRecord(req, eventType, orderID, entity.WebhookStatusProcessed, ""))
}

func (s *OrderService) persistWebhook(
	ctx context.Context,
	req handleWebhookRequest,
	eventType string,
	orderID *string,
	status string,
	reason string,
) {
	_ = s.webhookRepo.Create(ctx, s.webhookRecord(req, eventType, orderID, status, reason))
}

func (s *OrderService) webhookRecord(req handleWebhookRequest, eventType string, orderID *string, status, reason string) *entity.WebhookEvent {
	record := &entity.WebhookEvent{
		OrderID:     orderID,
		EventType:   eventType,
		Signature:   truncate(strings.TrimSpace(req.GetSignature()), 256),
		PayloadJSON: string(req.GetPayload()),
		Status:      status,
		CreatedAt:   time.Now().UTC(),
	}
	if record.EventType == "" {
		record.EventType = "unknown"
	}
	if eventID := strings.TrimSpace(req.GetEventId()); eventID != "" {
		record.GatewayEventID = &eventID
	}
	if reason = strings.TrimSpace(reason); reason != "" {
		trimmed := truncate(reason, 1024)
		record.Error = &trimmed
	}
	return record
}
