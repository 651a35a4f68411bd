package services

import (
	"encoding/json"
	"log"
)

// Routing keys of the marketplace events.
const (
	EventOrderCreated     = "order.created"
	EventOrderStatus      = "order.status_changed"
	EventOfferAccepted    = "offer.accepted"
	EventOfferRejected    = "offer.rejected"
	EventQuestionAnswered = "question.answered"
	EventShipmentCreated  = "shipment.created"
	EventShipmentUpdated  = "shipment.updated"
	EventProductPublished = "product.published"
	EventWalletConnected  = "wallet.connected"
	EventPaymentProcessed = "payment.processed"
	EventMessageSent      = "message.sent"
)

// EventPublisher sends a JSON event under a routing key. *rabbitmq.Client
// satisfies it.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// publishEvent is fire-and-forget: a missing publisher or a failed publish
// is logged and never fails the operation that produced the event.
func publishEvent(publisher EventPublisher, routingKey string, payload interface{}) {
	if publisher == nil {
		log.Printf("Event publisher is not initialized. Skipping %s event.", routingKey)
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event to JSON: %v", routingKey, err)
		return
	}
	if err := publisher.Publish(routingKey, body); err != nil {
		log.Printf("Warning: Failed to publish %s event: %v", routingKey, err)
	}
}
