package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, conn *Connection, timeout time.Duration) Event {
	t.Helper()
	select {
	case ev := <-conn.Outgoing:
		return ev
	case <-time.After(timeout):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestRegisterSendsConnectedEvent(t *testing.T) {
	b := New(Config{HeartbeatInterval: time.Hour})
	conn, err := b.Register("client-1", "", []EventType{EventJobProgress})
	require.NoError(t, err)

	ev := drain(t, conn, time.Second)
	require.Equal(t, EventConnected, ev.Type)
	require.Equal(t, conn.ID, ev.Data["connection_id"])
}

func TestRegisterRejectsOverGlobalCap(t *testing.T) {
	b := New(Config{MaxConnections: 1, HeartbeatInterval: time.Hour})
	_, err := b.Register("c1", "", nil)
	require.NoError(t, err)

	_, err = b.Register("c2", "", nil)
	require.Error(t, err)
	var pfe *PoolFullError
	require.ErrorAs(t, err, &pfe)
	require.False(t, pfe.PerClient)
}

func TestRegisterRejectsOverPerClientCap(t *testing.T) {
	b := New(Config{MaxPerClient: 1, HeartbeatInterval: time.Hour})
	_, err := b.Register("c1", "", nil)
	require.NoError(t, err)

	_, err = b.Register("c1", "", nil)
	require.Error(t, err)
	var pfe *PoolFullError
	require.ErrorAs(t, err, &pfe)
	require.True(t, pfe.PerClient)
}

func TestPublishRespectsSubscriptionFilter(t *testing.T) {
	b := New(Config{HeartbeatInterval: time.Hour})
	conn, err := b.Register("c1", "", []EventType{EventJobComplete})
	require.NoError(t, err)
	drain(t, conn, time.Second) // connected event

	b.Publish(Event{Type: EventJobProgress, Data: map[string]any{"job_id": "x"}})
	select {
	case ev := <-conn.Outgoing:
		t.Fatalf("unexpected event delivered: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}

	b.Publish(Event{Type: EventJobComplete, Data: map[string]any{"job_id": "x"}})
	ev := drain(t, conn, time.Second)
	require.Equal(t, EventJobComplete, ev.Type)
}

func TestPublishRespectsSubscriberKeyTargeting(t *testing.T) {
	b := New(Config{HeartbeatInterval: time.Hour})
	conn, err := b.Register("c1", "session-a", []EventType{EventJobComplete})
	require.NoError(t, err)
	drain(t, conn, time.Second)

	b.Publish(Event{Type: EventJobComplete, TargetSubscriberKey: "session-b"})
	select {
	case ev := <-conn.Outgoing:
		t.Fatalf("unexpected event delivered: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}

	b.Publish(Event{Type: EventJobComplete, TargetSubscriberKey: "session-a"})
	drain(t, conn, time.Second)
}

func TestEnqueueDropsOldestOnOverflow(t *testing.T) {
	b := New(Config{QueueCapacity: 2, HeartbeatInterval: time.Hour})
	conn, err := b.Register("c1", "", []EventType{EventJobProgress})
	require.NoError(t, err)
	drain(t, conn, time.Second) // connected

	b.Publish(Event{Type: EventJobProgress, Data: map[string]any{"n": 1}})
	b.Publish(Event{Type: EventJobProgress, Data: map[string]any{"n": 2}})
	b.Publish(Event{Type: EventJobProgress, Data: map[string]any{"n": 3}})

	first := drain(t, conn, time.Second)
	require.Equal(t, 2, first.Data["n"])
}

func TestUnregisterFreesPerClientSlot(t *testing.T) {
	b := New(Config{MaxPerClient: 1, HeartbeatInterval: time.Hour})
	conn, err := b.Register("c1", "", nil)
	require.NoError(t, err)

	b.Unregister(conn.ID)
	_, err = b.Register("c1", "", nil)
	require.NoError(t, err)
}
