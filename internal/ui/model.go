package ui

import (
	"context"
	"strings"
	"time"

	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"polship/internal/model"
	"polship/internal/poller"
	"polship/internal/progress"
)

// phaseView is the display state of one observed pipeline phase.
type phaseView struct {
	name      string
	startedAt time.Time
	done      bool
	elapsed   time.Duration
	known     bool
}

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	fetcher poller.LogFetcher
	opts    model.Options
	runID   string

	started time.Time
	budget  time.Duration
	phases  []phaseView
	outcome *progress.Outcome
	pollErr error

	logsRing []string

	width, height int
	styles        Styles
	spinner       spinner.Model
	bar           bubblesprogress.Model

	// Internal event channel used by the reporter to feed tea messages
	eventCh chan tea.Msg
}

func NewModel(ctx context.Context, fetcher poller.LogFetcher, opts model.Options, runID string) Model {
	c, cancel := context.WithCancel(ctx)
	sty := defaultStyles()

	sp := spinner.New()
	sp.Style = sty.Spinner

	return Model{
		ctx:     c,
		cancel:  cancel,
		fetcher: fetcher,
		opts:    opts,
		runID:   runID,
		started: time.Now(),
		budget:  time.Duration(opts.TimeoutMinutes) * time.Minute,
		styles:  sty,
		spinner: sp,
		bar:     bubblesprogress.New(bubblesprogress.WithDefaultGradient(), bubblesprogress.WithWidth(40)),
		eventCh: make(chan tea.Msg, 256),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.listenEventsCmd(),
		m.startPollerCmd(),
		tickCmd(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case phaseStartedMsg:
		m.phases = append(m.phases, phaseView{
			name:      msg.P.Name,
			startedAt: msg.P.StartedAt,
		})

	case phaseDoneMsg:
		for i := range m.phases {
			if m.phases[i].name == msg.P.Name {
				m.phases[i].done = true
				m.phases[i].elapsed = msg.P.Elapsed
				m.phases[i].known = msg.P.Known
			}
		}

	case logMsg:
		if m.showsLogs(msg.L) {
			line := strings.TrimRight(msg.L.Message, "\r\n")
			if len(m.logsRing) > 100 {
				m.logsRing = m.logsRing[1:]
			}
			m.logsRing = append(m.logsRing, line)
		}

	case outcomeMsg:
		m.outcome = &msg.O
		return m, tea.Quit

	case pollFailedMsg:
		m.pollErr = msg.Err
		return m, tea.Quit

	case tickMsg:
		if m.outcome == nil {
			return m, tea.Batch(tickCmd(), m.listenEventsCmd())
		}
	}

	var cmds []tea.Cmd
	var c tea.Cmd
	m.spinner, c = m.spinner.Update(msg)
	if c != nil {
		cmds = append(cmds, c)
	}
	cmds = append(cmds, m.listenEventsCmd())
	return m, tea.Batch(cmds...)
}

// showsLogs mirrors the console reporter's verbosity rules for raw lines.
func (m Model) showsLogs(l progress.Log) bool {
	switch m.opts.Verbosity {
	case model.VerbosityNone, model.VerbosityQuiet:
		return false
	case model.VerbosityVerbose:
		return true
	default:
		return !strings.EqualFold(l.Level, "debug")
	}
}

func (m Model) listenEventsCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return nil
		case msg := <-m.eventCh:
			return msg
		}
	}
}

// startPollerCmd launches the poll session. Terminal outcomes arrive through
// the reporter; only cancellation comes back as an error.
func (m Model) startPollerCmd() tea.Cmd {
	return func() tea.Msg {
		rep := teaReporter{ch: m.eventCh}
		p := poller.New(m.fetcher,
			poller.WithTimeout(m.budget),
			poller.WithPollDelay(time.Duration(m.opts.PollDelayMs)*time.Millisecond),
			poller.WithLogLimit(m.opts.LogLimit),
			poller.WithReporter(rep),
		)
		if _, err := p.Wait(m.ctx, m.opts.EntityID, m.runID); err != nil {
			return pollFailedMsg{Err: err}
		}
		return nil
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// teaReporter bridges poller progress events onto the bubbletea message
// loop. Outcome blocks so the terminal event is never dropped.
type teaReporter struct {
	ch chan tea.Msg
}

func (r teaReporter) PhaseStarted(p progress.Phase) {
	select {
	case r.ch <- phaseStartedMsg{P: p}:
	default:
	}
}

func (r teaReporter) PhaseCompleted(p progress.PhaseDone) {
	select {
	case r.ch <- phaseDoneMsg{P: p}:
	default:
	}
}

func (r teaReporter) Log(l progress.Log) {
	select {
	case r.ch <- logMsg{L: l}:
	default:
	}
}

func (r teaReporter) Outcome(o progress.Outcome) {
	r.ch <- outcomeMsg{O: o}
}
