package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"vendor-portal/domain/model"
)

// PublishStatusEvent represents an SSE payload for publish status updates.
type PublishStatusEvent struct {
	Type              string  `json:"type"`
	ProductID         int64   `json:"product_id"`
	Status            string  `json:"status"`
	PublishState      *string `json:"publish_state,omitempty"`
	PlatformProductID *string `json:"platform_product_id,omitempty"`
	Error             *string `json:"error,omitempty"`
}

// Hub maintains per-vendor subscribers listening for publish status events.
type Hub struct {
	mu      sync.RWMutex
	vendors map[string]map[chan PublishStatusEvent]struct{}
}

func NewPublishHub() *Hub {
	return &Hub{vendors: make(map[string]map[chan PublishStatusEvent]struct{})}
}

// Serve registers an SSE stream for the authenticated user (user_id set by middleware).
func (h *Hub) Serve(c *gin.Context) {
	vendorID := c.GetString("user_id")
	if vendorID == "" {
		c.Status(http.StatusUnauthorized)
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // disable nginx buffering

	ch := make(chan PublishStatusEvent, 8)
	h.addSubscriber(vendorID, ch)
	defer h.removeSubscriber(vendorID, ch)

	// Initial comment to keep connection open
	c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	notify := c.Writer.CloseNotify()
	for {
		select {
		case <-notify:
			return
		case evt := <-ch:
			data, _ := json.Marshal(evt)
			_, _ = c.Writer.Write([]byte("event: publish_status\n"))
			_, _ = c.Writer.Write([]byte("data: "))
			_, _ = c.Writer.Write(data)
			_, _ = c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}

func (h *Hub) addSubscriber(vendorID string, ch chan PublishStatusEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.vendors[vendorID] == nil {
		h.vendors[vendorID] = make(map[chan PublishStatusEvent]struct{})
	}
	h.vendors[vendorID][ch] = struct{}{}
}

func (h *Hub) removeSubscriber(vendorID string, ch chan PublishStatusEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.vendors[vendorID]; subs != nil {
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(h.vendors, vendorID)
		}
	}
}

// BroadcastPublishStatus broadcasts to all subscribers of the vendor who owns
// the product.
func (h *Hub) BroadcastPublishStatus(product *model.Product) {
	if product == nil {
		return
	}
	evt := PublishStatusEvent{
		Type:              "publish_status",
		ProductID:         product.ID,
		Status:            product.Status,
		PublishState:      product.PublishState,
		PlatformProductID: product.PlatformProductID,
		Error:             product.PublishNote,
	}
	h.mu.RLock()
	subs := h.vendors[product.VendorID]
	for ch := range subs {
		select { // non-blocking
		case ch <- evt:
		default:
		}
	}
	h.mu.RUnlock()
}
