package eventbus

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type orderPlaced struct {
	ID int64
}

type orderShipped struct {
	ID int64
}

func TestPublishDeliversToMatchingHandlers(t *testing.T) {
	bus := NewEventPublisher(logrus.New())

	var placed []orderPlaced
	var shipped []orderShipped
	bus.Subscribe(func(e orderPlaced) { placed = append(placed, e) })
	bus.Subscribe(func(e orderShipped) { shipped = append(shipped, e) })
	require.Equal(t, 2, bus.SubscribersCount())

	bus.Publish(orderPlaced{ID: 1})
	bus.Publish(orderPlaced{ID: 2})
	bus.Publish(orderShipped{ID: 1})

	require.Len(t, placed, 2)
	require.Len(t, shipped, 1)
	require.Equal(t, int64(2), placed[1].ID)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewEventPublisher(logrus.New())

	var calls int
	handler := func(orderPlaced) { calls++ }
	bus.Subscribe(handler)
	bus.Publish(orderPlaced{ID: 1})
	bus.Unsubscribe(handler)
	bus.Publish(orderPlaced{ID: 2})

	require.Equal(t, 1, calls)
	require.Zero(t, bus.SubscribersCount())
}

func TestPublishSurvivesPanickingHandler(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	bus := NewEventPublisher(log)

	var delivered bool
	bus.Subscribe(func(orderPlaced) { panic("boom") })
	bus.Subscribe(func(orderPlaced) { delivered = true })

	require.NotPanics(t, func() { bus.Publish(orderPlaced{ID: 1}) })
	require.True(t, delivered)
}

func TestMatchSignature(t *testing.T) {
	cases := []struct {
		name    string
		handler interface{}
		args    []interface{}
		want    bool
	}{
		{"exact struct", func(orderPlaced) {}, []interface{}{orderPlaced{}}, true},
		{"wrong struct", func(orderShipped) {}, []interface{}{orderPlaced{}}, false},
		{"arity mismatch", func(orderPlaced) {}, []interface{}{orderPlaced{}, 1}, false},
		{"interface param", func(error) {}, []interface{}{errors.New("boom")}, true},
		{"interface mismatch", func(error) {}, []interface{}{orderPlaced{}}, false},
		{"nil for pointer", func(*orderPlaced) {}, []interface{}{nil}, true},
		{"nil for value", func(orderPlaced) {}, []interface{}{nil}, false},
		{"not a func", 42, []interface{}{orderPlaced{}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, MatchSignature(tc.handler, tc.args))
		})
	}
}
