// Package tui provides the interactive Bubble Tea planner for goalplan.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/goalplan/internal/model"
	"github.com/theirongolddev/goalplan/internal/planner"
	"github.com/theirongolddev/goalplan/internal/store"
	"github.com/theirongolddev/goalplan/internal/tui/theme"
)

// PlanDoneMsg is sent when a planning request finishes.
type PlanDoneMsg struct {
	Plan    *model.Plan
	Err     error
	SaveErr error
	Elapsed time.Duration
}

type state int

const (
	stateForm state = iota
	stateLoading
	stateResult
	stateError
)

// Options configures the TUI.
type Options struct {
	Planner *planner.Planner
	// Store saves finished plans when set.
	Store *store.Cache
	// Defaults prefill the form.
	Defaults model.PlanInputs
}

// App is the root Bubble Tea model: form, then spinner, then result.
type App struct {
	planner *planner.Planner
	store   *store.Cache

	state state
	form  *huh.Form
	// vals is shared by every copy of App; the form writes through it.
	vals *formValues

	inputs  model.PlanInputs
	plan    *model.Plan
	err     error
	saveErr error
	elapsed time.Duration

	spinner spinner.Model
	width   int
	height  int
}

const (
	minTerminalWidth = 60
	compactWidth     = 110
	maxContentWidth  = 160
)

// NewApp creates the TUI model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	vals := valuesFrom(opts.Defaults)
	return App{
		planner: opts.Planner,
		store:   opts.Store,
		state:   stateForm,
		vals:    vals,
		form:    newPlanForm(vals),
		inputs:  opts.Defaults,
		spinner: sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return a.form.Init()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(min(msg.Width, 80)).WithHeight(msg.Height - 4)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.state {
		case stateForm:
			return a.updateForm(msg)
		case stateResult, stateError:
			return a.updateResultKeys(msg)
		}
		return a, nil

	case spinner.TickMsg:
		if a.state != stateLoading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case PlanDoneMsg:
		if a.state != stateLoading {
			return a, nil
		}
		a.elapsed = msg.Elapsed
		a.saveErr = msg.SaveErr
		if msg.Err != nil {
			a.state = stateError
			a.err = msg.Err
			return a, nil
		}
		a.state = stateResult
		a.plan = msg.Plan
		a.err = nil
		return a, nil
	}

	// Forward everything else (cursor blinks, etc.) to the form.
	if a.state == stateForm {
		return a.updateForm(msg)
	}
	return a, nil
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		in, err := a.vals.inputs()
		if err != nil {
			a.state = stateError
			a.err = err
			return a, nil
		}
		return a.startPlan(in)
	case huh.StateAborted:
		return a, tea.Quit
	}
	return a, cmd
}

func (a App) updateResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return a, tea.Quit
	case "e":
		a.vals = valuesFrom(a.inputs)
		a.form = newPlanForm(a.vals)
		if a.width > 0 {
			a.form = a.form.WithWidth(min(a.width, 80)).WithHeight(a.height - 4)
		}
		a.state = stateForm
		return a, a.form.Init()
	case "r":
		return a.startPlan(a.inputs)
	}
	return a, nil
}

func (a App) startPlan(in model.PlanInputs) (tea.Model, tea.Cmd) {
	a.state = stateLoading
	a.inputs = in
	a.err = nil
	return a, tea.Batch(a.spinner.Tick, planCmd(a.planner, a.store, in))
}

func planCmd(p *planner.Planner, cache *store.Cache, in model.PlanInputs) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		plan, err := p.Plan(context.Background(), in)
		msg := PlanDoneMsg{Plan: plan, Err: err, Elapsed: time.Since(start)}
		if err == nil && cache != nil {
			msg.SaveErr = cache.SavePlan(plan)
		}
		return msg
	}
}
