// Package term makes a tcell terminal screen the host event source of a shuttle loop.
package term

import (
	"sync"

	"github.com/alitto/shuttle"
	"github.com/gdamore/tcell/v2"
)

// Source polls a screen for events and posts them to a loop. The original tcell event is
// carried as the payload of the posted event.
type Source struct {
	screen tcell.Screen
	loop   *shuttle.Loop

	startOnce sync.Once
	done      chan struct{}
}

func NewSource(screen tcell.Screen, loop *shuttle.Loop) *Source {
	return &Source{
		screen: screen,
		loop:   loop,
		done:   make(chan struct{}),
	}
}

// Start begins polling the screen. The screen must be initialized.
func (s *Source) Start() {
	s.startOnce.Do(func() {
		go s.run()
	})
}

// Stop finalizes the screen, which ends polling, and waits for the polling goroutine to exit.
func (s *Source) Stop() {
	s.screen.Fini()

	s.startOnce.Do(func() {
		close(s.done)
	})
	<-s.done
}

// Done returns a channel that is closed when polling has ended.
func (s *Source) Done() <-chan struct{} {
	return s.done
}

func (s *Source) run() {
	defer close(s.done)

	for {
		// PollEvent returns nil once the screen is finalized
		ev := s.screen.PollEvent()
		if ev == nil {
			return
		}

		s.loop.Post(Translate(ev))
	}
}

// Translate wraps a tcell event into a loop event of the matching kind.
func Translate(ev tcell.Event) shuttle.Event {
	var kind shuttle.Kind

	switch ev.(type) {
	case *tcell.EventKey, *tcell.EventMouse, *tcell.EventPaste:
		kind = shuttle.KindInput
	case *tcell.EventFocus:
		kind = shuttle.KindFocus
	case *tcell.EventResize:
		kind = shuttle.KindPaint
	default:
		kind = shuttle.KindCustom
	}

	return shuttle.NewEvent(kind, ev)
}
