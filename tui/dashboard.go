// Package tui renders a live dashboard of pipeline progress, the same
// tcell/tview pairing the teacher's TUI uses, scaled down to the single
// panel piper's --tui flag needs.
package tui

import (
	"fmt"
	"time"

	"github.com/ChristianF88/piper/pipeline"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Dashboard shows in-flight, success, and failure counts while a Driver
// runs, refreshing on a fixed tick.
type Dashboard struct {
	app    *tview.Application
	view   *tview.TextView
	stats  *pipeline.Stats
	ticker *time.Ticker
	done   chan struct{}
}

// NewDashboard builds a Dashboard reading from stats.
func NewDashboard(stats *pipeline.Stats) *Dashboard {
	view := tview.NewTextView().
		SetDynamicColors(true).
		SetChangedFunc(func() {})
	view.SetBorder(true).SetTitle(" piper ")

	app := tview.NewApplication().SetRoot(view, true)
	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC || event.Rune() == 'q' {
			app.Stop()
			return nil
		}
		return event
	})

	return &Dashboard{app: app, view: view, stats: stats, done: make(chan struct{})}
}

func (d *Dashboard) render() {
	d.view.SetText(fmt.Sprintf(
		"[yellow]in-flight[white]: %d\n[green]success[white]: %d\n[red]failure[white]: %d\n\npress q to hide",
		d.stats.InFlightCount(), d.stats.Success.Load(), d.stats.Failure.Load(),
	))
}

// Run starts the dashboard's refresh loop and blocks on the underlying
// tview event loop until Stop is called. Intended to be run in its own
// goroutine alongside a pipeline.Driver.
func (d *Dashboard) Run() error {
	d.ticker = time.NewTicker(200 * time.Millisecond)
	go func() {
		for {
			select {
			case <-d.ticker.C:
				d.render()
				d.app.Draw()
			case <-d.done:
				return
			}
		}
	}()
	return d.app.Run()
}

// Stop ends the refresh loop and the tview application.
func (d *Dashboard) Stop() {
	if d.ticker != nil {
		d.ticker.Stop()
	}
	close(d.done)
	d.app.Stop()
}
