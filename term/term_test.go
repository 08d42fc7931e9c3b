package term

import (
	"context"
	"testing"
	"time"

	"github.com/alitto/shuttle"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		ev   tcell.Event
		kind shuttle.Kind
	}{
		{tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone), shuttle.KindInput},
		{tcell.NewEventMouse(1, 2, tcell.Button1, tcell.ModNone), shuttle.KindInput},
		{tcell.NewEventFocus(false), shuttle.KindFocus},
		{tcell.NewEventResize(80, 24), shuttle.KindPaint},
		{tcell.NewEventInterrupt("refresh"), shuttle.KindCustom},
	}

	for _, test := range tests {
		translated := Translate(test.ev)

		assert.Equal(t, test.kind, translated.Kind)
		assert.Same(t, test.ev, translated.Payload)
	}
}

func TestSourcePostsScreenEvents(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())

	keys := make(chan *tcell.EventKey, 1)
	loop := shuttle.NewLoop(shuttle.WithEventHandler(func(ev shuttle.Event) {
		if key, ok := ev.Payload.(*tcell.EventKey); ok {
			keys <- key
		}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	source := NewSource(screen, loop)
	source.Start()

	require.NoError(t, screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)))

	select {
	case key := <-keys:
		assert.Equal(t, 'x', key.Rune())
	case <-time.After(time.Second):
		t.Fatal("key event was not delivered to the loop")
	}

	source.Stop()

	select {
	case <-source.Done():
	default:
		t.Fatal("source still polling after Stop")
	}
}

func TestSourceStopWithoutStart(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())

	source := NewSource(screen, shuttle.NewLoop())
	source.Stop()

	<-source.Done()
}
