package eventbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type ping struct{ N int }
type pong struct{ N int }

func TestPublishByType(t *testing.T) {
	b := New()
	var pings, pongs []int
	unsub := Subscribe(b, func(_ context.Context, e ping) { pings = append(pings, e.N) })
	Subscribe(b, func(_ context.Context, e pong) { pongs = append(pongs, e.N) })

	Publish(context.Background(), b, ping{1})
	Publish(context.Background(), b, pong{2})
	unsub()
	unsub()
	Publish(context.Background(), b, ping{3})

	require.Equal(t, []int{1}, pings)
	require.Equal(t, []int{2}, pongs)
}

func TestNilBus(t *testing.T) {
	var b *Bus
	Subscribe(b, func(context.Context, ping) { t.Fatal("unexpected event") })()
	Publish(context.Background(), b, ping{1})
}
