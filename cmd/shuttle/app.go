package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alitto/shuttle"
	"github.com/gdamore/tcell/v2"
)

var errSimulated = errors.New("simulated failure")

// app holds the state of the demo. All of its fields are only touched on the loop goroutine.
type app struct {
	screen tcell.Screen
	logger *slog.Logger

	loop       *shuttle.Loop
	worker     *shuttle.Worker
	concurrent *shuttle.ConcurrentWorker
	async      *shuttle.AsyncWorker

	posts  int
	status []string
}

func newApp(screen tcell.Screen, logger *slog.Logger) *app {
	return &app{
		screen: screen,
		logger: logger,
	}
}

func (a *app) handle(ev shuttle.Event) {
	switch tev := ev.Payload.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventKey:
		a.handleKey(tev)
	}

	a.paint()
}

func (a *app) handleKey(ev *tcell.EventKey) {
	switch {
	case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC, ev.Rune() == 'q':
		a.loop.Quit()
	case ev.Rune() == 's':
		a.sequential()
	case ev.Rune() == 'c':
		a.concurrentPost()
	case ev.Rune() == 'a':
		a.asyncPost()
	case ev.Rune() == 'f':
		a.failing()
	}
}

func (a *app) nextPost() int {
	a.posts++
	return a.posts
}

func (a *app) sequential() {
	n := a.nextPost()
	a.report("#%d sequential: started", n)

	started := time.Now()
	elapsed, err := shuttle.Post(a.worker, func() (time.Duration, error) {
		time.Sleep(time.Second)
		return time.Since(started), nil
	})
	if err != nil {
		a.report("#%d sequential: %v", n, err)
		return
	}

	a.report("#%d sequential: done after %s", n, elapsed.Round(time.Millisecond))
}

func (a *app) concurrentPost() {
	n := a.nextPost()
	a.report("#%d concurrent: started", n)

	err := a.concurrent.Post(func() error {
		time.Sleep(time.Second)
		return nil
	})
	if err != nil {
		a.report("#%d concurrent: %v", n, err)
		return
	}

	a.report("#%d concurrent: done", n)
}

func (a *app) asyncPost() {
	n := a.nextPost()

	err := a.async.Post(func() error {
		time.Sleep(time.Second)
		return nil
	}, func(err error) {
		a.report("#%d async: finished, err=%v", n, err)
		a.paint()
	})
	if err != nil {
		a.report("#%d async: %v", n, err)
		return
	}

	a.report("#%d async: posted", n)
}

func (a *app) failing() {
	n := a.nextPost()

	err := a.worker.Post(func() error {
		time.Sleep(200 * time.Millisecond)
		return errSimulated
	})

	a.report("#%d failing: err=%v, simulated=%t", n, err, errors.Is(err, errSimulated))
}

func (a *app) report(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	a.logger.Info(line)

	a.status = append(a.status, line)
	if len(a.status) > 10 {
		a.status = a.status[len(a.status)-10:]
	}
}

func (a *app) paint() {
	a.screen.Clear()

	bold := tcell.StyleDefault.Bold(true)
	y := 0
	line := func(style tcell.Style, format string, args ...any) {
		drawText(a.screen, 1, y, style, fmt.Sprintf(format, args...))
		y++
	}

	line(bold, "shuttle")
	line(tcell.StyleDefault, "s: sequential post   c: concurrent post   a: async post   f: failing post   q: quit")
	y++

	line(bold, "loop")
	line(tcell.StyleDefault, "posted=%d processed=%d pending=%d pump depth=%d",
		a.loop.PostedEvents(), a.loop.ProcessedEvents(), a.loop.PendingEvents(), a.loop.PumpDepth())
	y++

	line(bold, "dispatchers")
	for _, d := range []struct {
		name  string
		stats shuttle.Stats
	}{
		{"worker", a.worker},
		{"concurrent", a.concurrent},
		{"async", a.async},
	} {
		line(tcell.StyleDefault, "%-10s submitted=%d running=%d successful=%d failed=%d",
			d.name, d.stats.SubmittedTasks(), d.stats.RunningTasks(), d.stats.SuccessfulTasks(), d.stats.FailedTasks())
	}
	y++

	line(bold, "activity")
	for _, status := range a.status {
		line(tcell.StyleDefault, "%s", status)
	}

	a.screen.Show()
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}
