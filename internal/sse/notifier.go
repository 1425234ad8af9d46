package sse

import (
	"time"

	"github.com/GTDGit/bakery_api/internal/models"
)

// Notifier is the interface services use to push events to the admin feed.
type Notifier interface {
	NotifyOrderCreated(o *models.Order)
	NotifyOrderStatusChanged(o *models.Order)
	NotifyProductsImported(jobID string, count int)
	NotifyCustomRequestCreated(r *models.CustomRequest)
}

// HubNotifier implements Notifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyOrderCreated(o *models.Order) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(orderToEvent(EventOrderCreated, o))
}

func (n *HubNotifier) NotifyOrderStatusChanged(o *models.Order) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(orderToEvent(EventOrderStatusChanged, o))
}

func (n *HubNotifier) NotifyProductsImported(jobID string, count int) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(&Event{
		Event:     EventProductsImported,
		ID:        jobID,
		Count:     count,
		Timestamp: time.Now(),
	})
}

func (n *HubNotifier) NotifyCustomRequestCreated(r *models.CustomRequest) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(&Event{
		Event:     EventCustomRequestCreated,
		ID:        r.ID,
		Status:    string(r.Status),
		Customer:  r.Name,
		Timestamp: time.Now(),
	})
}

func orderToEvent(eventType EventType, o *models.Order) *Event {
	return &Event{
		Event:     eventType,
		ID:        o.ID,
		Ref:       o.OrderRef,
		Status:    string(o.Status),
		Customer:  o.Customer.Name,
		Total:     o.Total.StringFixed(2),
		Count:     len(o.Items),
		Timestamp: time.Now(),
	}
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (n *NopNotifier) NotifyOrderCreated(o *models.Order)                 {}
func (n *NopNotifier) NotifyOrderStatusChanged(o *models.Order)           {}
func (n *NopNotifier) NotifyProductsImported(jobID string, count int)     {}
func (n *NopNotifier) NotifyCustomRequestCreated(r *models.CustomRequest) {}
