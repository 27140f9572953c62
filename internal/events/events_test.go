package events

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, data EventData) Event {
	t.Helper()
	ev := Event{Timestamp: 1700000000, Data: data}
	var buf bytes.Buffer
	require.NoError(t, WriteEvent(&buf, ev))
	got, err := ReadEvent(&buf)
	require.NoError(t, err)
	assert.Equal(t, ev.Timestamp, got.Timestamp)
	return got
}

func TestEventCodecRoundTrip(t *testing.T) {
	cases := []EventData{
		NewClientConnectionAccepted{ClientID: 1, Peer: "1.2.3.4:5555"},
		ClientAuthenticated{ClientID: 1, Username: "admin"},
		ClientSourceShutdown{ClientID: 1},
		ClientDestinationShutdown{ClientID: 1},
		ClientConnectionFinished{ClientID: 1, Sent: 10, Received: 20, Err: ""},
		ClientConnectionFinished{ClientID: 1, Sent: 10, Received: 20, Err: "connection reset"},
		ClientBytesSent{ClientID: 1, Count: 512},
		ClientBytesReceived{ClientID: 1, Count: 1024},
		NewSandstormConnectionAccepted{ManagerID: 7, Peer: "10.0.0.1:9999"},
		SandstormConnectionFinished{ManagerID: 7},
		NewSocket{Kind: SocketSocks5, Addr: "0.0.0.0:1080"},
		RemovedSocket{Kind: SocketSandstorm, Addr: "0.0.0.0:9090"},
		BufferSizeChangedByManager{Manager: "admin", NewSize: 8192},
		AuthMethodToggledByManager{Manager: "admin", Method: AuthNoAuth, Enabled: false},
		UserRegisteredByManager{Manager: "admin", Username: "bob"},
		UserUpdatedByManager{Manager: "admin", Username: "bob"},
		UserDeletedByManager{Manager: "admin", Username: "bob"},
	}

	for _, data := range cases {
		got := roundTrip(t, data)
		assert.Equal(t, data, got.Data)
	}
}

func TestEventCodecRejectsUnknownTag(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0, 0, 0, 0, 0, 1, 0xFE})
	_, err := ReadEvent(&buf)
	require.Error(t, err)
}

func TestBusDeliversToAllSubscribers(t *testing.T) {
	b := NewBus()
	_, ch1 := b.Subscribe(4)
	_, ch2 := b.Subscribe(4)

	b.Publish(Event{Timestamp: 1, Data: ClientSourceShutdown{ClientID: 1}})

	env1 := <-ch1
	env2 := <-ch2
	assert.Equal(t, uint64(0), env1.Lagged)
	assert.Equal(t, uint64(0), env2.Lagged)
}

func TestBusSignalsLagOnFullChannel(t *testing.T) {
	b := NewBus()
	_, ch := b.Subscribe(1)

	b.Publish(Event{Timestamp: 1, Data: ClientSourceShutdown{ClientID: 1}})
	b.Publish(Event{Timestamp: 2, Data: ClientSourceShutdown{ClientID: 2}})
	b.Publish(Event{Timestamp: 3, Data: ClientSourceShutdown{ClientID: 3}})

	first := <-ch
	assert.Equal(t, uint64(0), first.Lagged)

	// Events 2 and 3 were dropped; the count rides on the next delivered event.
	b.Publish(Event{Timestamp: 4, Data: ClientSourceShutdown{ClientID: 4}})

	select {
	case second := <-ch:
		assert.Equal(t, uint64(2), second.Lagged)
	case <-time.After(time.Second):
		t.Fatal("expected a second envelope with lag info")
	}
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	b := NewBus()
	id, ch := b.Subscribe(1)
	b.Unsubscribe(id)
	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, b.SubscriberCount())
}
