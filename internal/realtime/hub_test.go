package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/mbd888/fraudlens/internal/scoring"
	"github.com/mbd888/fraudlens/internal/snapshot"
)

func testHub() *Hub {
	return NewHub(slog.Default())
}

func scoredTx(id string, score int) snapshot.ScoredTransaction {
	return snapshot.ScoredTransaction{
		Transaction: scoring.Transaction{TransactionID: id, Amount: 1000},
		RiskScore:   score,
		RiskLabel:   scoring.LabelFor(score),
	}
}

// ---------------------------------------------------------------------------
// shouldSend tests
// ---------------------------------------------------------------------------

func TestShouldSend_AllEvents(t *testing.T) {
	h := testHub()
	client := &Client{sub: Subscription{AllEvents: true}}

	event := &Event{Type: EventHighRiskTransaction, Timestamp: time.Now()}
	if !h.shouldSend(client, event) {
		t.Error("AllEvents client should receive all events")
	}
}

func TestShouldSend_EventTypeFilter(t *testing.T) {
	h := testHub()

	client := &Client{sub: Subscription{
		EventTypes: []EventType{EventUploadCompleted},
	}}

	uploadEvent := &Event{Type: EventUploadCompleted}
	txEvent := &Event{Type: EventHighRiskTransaction}

	if !h.shouldSend(client, uploadEvent) {
		t.Error("Should receive upload_completed events")
	}
	if h.shouldSend(client, txEvent) {
		t.Error("Should NOT receive high_risk_transaction events")
	}
}

func TestShouldSend_MinScoreFilter(t *testing.T) {
	h := testHub()

	client := &Client{sub: Subscription{
		MinScore: 70,
	}}

	high := &Event{
		Type: EventHighRiskTransaction,
		Data: scoredTx("t1", 85),
	}
	low := &Event{
		Type: EventHighRiskTransaction,
		Data: scoredTx("t2", 45),
	}
	upload := &Event{
		Type: EventUploadCompleted,
		Data: map[string]interface{}{"version": int64(1)},
	}

	if !h.shouldSend(client, high) {
		t.Error("Should receive transaction at or above MinScore")
	}
	if h.shouldSend(client, low) {
		t.Error("Should NOT receive transaction below MinScore")
	}
	if !h.shouldSend(client, upload) {
		t.Error("MinScore filter should only apply to transactions")
	}
}

func TestShouldSend_EmptySubscription(t *testing.T) {
	h := testHub()

	// No filters, not AllEvents
	client := &Client{sub: Subscription{}}

	event := &Event{Type: EventHighRiskTransaction}
	if !h.shouldSend(client, event) {
		t.Error("Empty subscription (no filters) should receive events")
	}
}

// ---------------------------------------------------------------------------
// Hub lifecycle tests
// ---------------------------------------------------------------------------

func TestHub_Stats_Initial(t *testing.T) {
	h := testHub()

	stats := h.Stats()
	if stats["connectedClients"].(int) != 0 {
		t.Errorf("Expected 0 connected clients, got %v", stats["connectedClients"])
	}
	if stats["totalEvents"].(int64) != 0 {
		t.Errorf("Expected 0 total events, got %v", stats["totalEvents"])
	}
}

func TestHub_BroadcastAndStats(t *testing.T) {
	h := testHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	// Broadcast an event
	h.Broadcast(&Event{Type: EventHighRiskTransaction, Timestamp: time.Now()})
	time.Sleep(50 * time.Millisecond)

	stats := h.Stats()
	if stats["totalEvents"].(int64) != 1 {
		t.Errorf("Expected 1 total event, got %v", stats["totalEvents"])
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	h := testHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	client := &Client{
		hub:  h,
		send: make(chan []byte, 256),
		sub:  Subscription{AllEvents: true},
	}

	h.register <- client
	time.Sleep(50 * time.Millisecond)

	stats := h.Stats()
	if stats["connectedClients"].(int) != 1 {
		t.Errorf("Expected 1 connected client, got %v", stats["connectedClients"])
	}
	if stats["peakClients"].(int64) != 1 {
		t.Errorf("Expected peak 1, got %v", stats["peakClients"])
	}

	h.unregister <- client
	time.Sleep(50 * time.Millisecond)

	stats = h.Stats()
	if stats["connectedClients"].(int) != 0 {
		t.Errorf("Expected 0 connected clients after unregister, got %v", stats["connectedClients"])
	}
	// Peak should still be 1
	if stats["peakClients"].(int64) != 1 {
		t.Errorf("Expected peak still 1, got %v", stats["peakClients"])
	}
}

func TestHub_UploadCompletedReachesClient(t *testing.T) {
	h := testHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	client := &Client{
		hub:  h,
		send: make(chan []byte, 256),
		sub:  Subscription{AllEvents: true},
	}

	h.register <- client
	time.Sleep(50 * time.Millisecond)

	h.UploadCompleted(snapshot.Summary{TotalTransactions: 3, HighRiskCount: 1}, 7)

	select {
	case msg := <-client.send:
		var event Event
		if err := json.Unmarshal(msg, &event); err != nil {
			t.Fatalf("Failed to decode event: %v", err)
		}
		if event.Type != EventUploadCompleted {
			t.Errorf("Expected %s event, got %s", EventUploadCompleted, event.Type)
		}
	case <-time.After(time.Second):
		t.Error("Timeout waiting for broadcast")
	}
}

func TestHub_HighRiskTransactionRespectsMinScore(t *testing.T) {
	h := testHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	client := &Client{
		hub:  h,
		send: make(chan []byte, 256),
		sub:  Subscription{MinScore: 80},
	}

	h.register <- client
	time.Sleep(50 * time.Millisecond)

	h.HighRiskTransaction(scoredTx("low", 72))
	h.HighRiskTransaction(scoredTx("high", 91))
	time.Sleep(50 * time.Millisecond)

	select {
	case msg := <-client.send:
		var event Event
		if err := json.Unmarshal(msg, &event); err != nil {
			t.Fatalf("Failed to decode event: %v", err)
		}
		data, _ := event.Data.(map[string]interface{})
		if data["transaction_id"] != "high" {
			t.Errorf("Expected only high-score transaction, got %v", data["transaction_id"])
		}
	case <-time.After(time.Second):
		t.Error("Timeout waiting for broadcast")
	}

	select {
	case msg := <-client.send:
		t.Errorf("Expected no further events, got %s", msg)
	default:
	}
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	h := testHub()
	ctx, cancel := context.WithCancel(context.Background())

	go h.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	client := &Client{
		hub:  h,
		send: make(chan []byte, 256),
		sub:  Subscription{AllEvents: true},
	}
	h.register <- client
	time.Sleep(50 * time.Millisecond)

	cancel()
	time.Sleep(50 * time.Millisecond)

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("Expected send channel closed on shutdown")
		}
	case <-time.After(time.Second):
		t.Error("Timeout waiting for channel close")
	}

	stats := h.Stats()
	if stats["connectedClients"].(int) != 0 {
		t.Errorf("Expected 0 clients after shutdown, got %v", stats["connectedClients"])
	}
}
