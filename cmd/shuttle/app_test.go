package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alitto/shuttle"
	"github.com/alitto/shuttle/term"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*app, tcell.SimulationScreen, <-chan error) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(120, 30)

	a := newApp(screen, slog.New(slog.NewTextHandler(io.Discard, nil)))
	a.loop = shuttle.NewLoop(shuttle.WithEventHandler(a.handle))
	a.worker = shuttle.NewWorker(a.loop)
	a.concurrent = shuttle.NewConcurrentWorker(a.loop)
	a.async = shuttle.NewAsyncWorker(a.loop)

	source := term.NewSource(screen, a.loop)
	source.Start()
	t.Cleanup(source.Stop)

	done := make(chan error, 1)
	go func() {
		done <- a.loop.Run(context.Background())
	}()
	t.Cleanup(a.loop.Quit)

	return a, screen, done
}

func (a *app) statusLines(t *testing.T) string {
	var lines string
	require.NoError(t, a.loop.InvokeAndWait(func() {
		lines = strings.Join(a.status, "\n")
	}))
	return lines
}

func TestAppFailingPost(t *testing.T) {
	a, screen, _ := newTestApp(t)

	screen.InjectKey(tcell.KeyRune, 'f', tcell.ModNone)

	assert.Eventually(t, func() bool {
		return strings.Contains(a.statusLines(t), "simulated=true")
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, uint64(1), a.worker.FailedTasks())
}

func TestAppAsyncPost(t *testing.T) {
	a, screen, _ := newTestApp(t)

	screen.InjectKey(tcell.KeyRune, 'a', tcell.ModNone)

	assert.Eventually(t, func() bool {
		return strings.Contains(a.statusLines(t), "#1 async: finished, err=<nil>")
	}, 3*time.Second, 10*time.Millisecond)
}

func TestAppQuit(t *testing.T) {
	_, screen, done := newTestApp(t)

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not quit")
	}
}
