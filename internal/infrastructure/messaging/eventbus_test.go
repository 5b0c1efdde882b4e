package messaging

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/campus-conduct-hub/internal/domain/shared"
)

func syncBusConfig() Config {
	cfg := DefaultConfig()
	cfg.AsyncMode = false
	return cfg
}

type countingHandler struct {
	mu     sync.Mutex
	events []shared.Event
	err    error
}

func (h *countingHandler) Handle(event shared.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.err
}

func (h *countingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

func TestEventBus_DeliversToTypeSubscriber(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	defer bus.Close()

	added := &countingHandler{}
	decided := &countingHandler{}
	require.NoError(t, bus.Subscribe(shared.EventRecordsAdded, added))
	require.NoError(t, bus.Subscribe(shared.EventAppealDecided, decided))

	event := shared.NewRecordsAddedEvent([]string{"s1"}, []string{"r1"}, -5, "late", "admin")
	require.NoError(t, bus.Publish(event))

	assert.Equal(t, 1, added.count())
	assert.Equal(t, 0, decided.count())
	assert.Equal(t, shared.EventRecordsAdded, added.events[0].EventType())
}

func TestEventBus_DeliversToGlobalSubscriber(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	defer bus.Close()

	all := &countingHandler{}
	require.NoError(t, bus.SubscribeAll(all))

	require.NoError(t, bus.Publish(shared.NewAppealFiledEvent("a1", "r1", "s1")))
	require.NoError(t, bus.Publish(shared.NewRecordsDeletedEvent([]string{"r1"}, 1)))

	assert.Equal(t, 2, all.count())
}

func TestEventBus_HandlerErrorDoesNotFailPublish(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	defer bus.Close()

	failing := &countingHandler{err: errors.New("boom")}
	require.NoError(t, bus.SubscribeAll(failing))

	assert.NoError(t, bus.Publish(shared.NewRecordsDeletedEvent([]string{"r1"}, 1)))
	assert.Equal(t, 1, failing.count())
}

func TestEventBus_AsyncDelivery(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorkerPoolSize = 2
	bus := NewInMemoryEventBus(cfg)

	all := &countingHandler{}
	require.NoError(t, bus.SubscribeAll(all))

	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(shared.NewAppealFiledEvent("a1", "r1", "s1")))
	}

	require.Eventually(t, func() bool { return all.count() == 5 }, time.Second, 5*time.Millisecond)
	require.NoError(t, bus.Close())
}

func TestEventBus_ClosedRejectsPublishAndSubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	require.NoError(t, bus.Close())

	err := bus.Publish(shared.NewRecordsDeletedEvent([]string{"r1"}, 1))
	assert.ErrorIs(t, err, ErrEventBusClosed)

	err = bus.Subscribe(shared.EventRecordsAdded, &countingHandler{})
	assert.ErrorIs(t, err, ErrEventBusClosed)

	// Closing twice is a no-op.
	assert.NoError(t, bus.Close())
}

func TestEventBus_NilArguments(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	defer bus.Close()

	assert.Error(t, bus.Subscribe(shared.EventRecordsAdded, nil))
	assert.Error(t, bus.SubscribeAll(nil))
	assert.Error(t, bus.Publish(nil))
}

func TestEventBusMetrics_CountsExecutions(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	defer bus.Close()

	require.NoError(t, bus.SubscribeAll(&countingHandler{}))
	require.NoError(t, bus.SubscribeAll(&countingHandler{err: errors.New("boom")}))

	require.NoError(t, bus.Publish(shared.NewRecordsDeletedEvent([]string{"r1"}, 1)))

	snap := bus.Metrics().Snapshot()
	assert.Equal(t, int64(2), snap["handler_executions"])
	assert.Equal(t, int64(1), snap["handler_successes"])
	assert.Equal(t, int64(1), snap["handler_failures"])
	assert.Equal(t, int64(1), snap["published:"+string(shared.EventRecordsDeleted)])
}
