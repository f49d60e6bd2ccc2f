package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	kerrors "github.com/matzehuels/knitstack/pkg/errors"
	"github.com/matzehuels/knitstack/pkg/knit"
	"github.com/matzehuels/knitstack/pkg/pipeline"
	"github.com/matzehuels/knitstack/pkg/playback"
)

const (
	// frameInterval is the animation tick.
	frameInterval = time.Second / 30

	// holdFrames is how long autoplay rests on a step once its motion ends.
	holdFrames = 20
)

// playCommand creates the play command, an interactive stepper.
func (c *CLI) playCommand() *cobra.Command {
	var (
		flags    optionFlags
		caches   cacheFlags
		speed    float64
		autoplay bool
	)

	cmd := &cobra.Command{
		Use:   "play [script|-]",
		Short: "Step through a script interactively",
		Long: `Step through a script interactively.

Each step change plays the transfer motion: needles extend, the back bed racks
to the new offset, the stack moves across and the needles retract. A failing
line stops the history at the step before it; the error is shown on the last
step.

Keys: right/space next, left previous, home/end first/last, p autoplay, q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, args[0])
			if err != nil {
				return err
			}
			return c.runPlay(cmd, opts, caches, speed, autoplay)
		},
	}

	flags.registerSimulate(cmd)
	caches.register(cmd)
	cmd.Flags().Float64Var(&speed, "speed", playback.DefaultSpeed, "animation speed")
	cmd.Flags().BoolVar(&autoplay, "autoplay", false, "start playing immediately")

	return cmd
}

func (c *CLI) runPlay(cmd *cobra.Command, opts pipeline.Options, caches cacheFlags, speed float64, autoplay bool) error {
	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, caches)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	h, _, _, simErr := runner.SimulateWithCacheInfo(ctx, opts)
	if h == nil {
		return scriptError(simErr)
	}

	m := newPlayModel(h, simErr, speed)
	m.playing = autoplay
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithOutput(cmd.OutOrStdout()))
	_, err = p.Run()
	return err
}

// =============================================================================
// playModel - Interactive stepper
// =============================================================================

// tickMsg advances the animator by one frame.
type tickMsg time.Time

// playModel is the bubbletea model of the stepper.
type playModel struct {
	history *playback.History
	anim    *playback.Animator
	simErr  error

	playing bool
	ticking bool
	hold    int
}

func newPlayModel(h *playback.History, simErr error, speed float64) *playModel {
	return &playModel{
		history: h,
		anim:    playback.NewAnimator(speed),
		simErr:  simErr,
	}
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *playModel) Init() tea.Cmd {
	if m.playing {
		m.ticking = true
		return tick()
	}
	return nil
}

func (m *playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", " ", "n":
			m.step(m.history.Next)
		case "left", "h", "b":
			m.step(m.history.Prev)
		case "home", "g":
			m.step(func() playback.Step { m.history.Seek(0); return m.history.Current() })
		case "end", "G":
			m.step(func() playback.Step { m.history.Seek(m.history.Len() - 1); return m.history.Current() })
		case "p":
			m.playing = !m.playing
			m.hold = 0
		}
		return m, m.startTicking()

	case tickMsg:
		m.anim.Advance(frameInterval.Seconds())
		if !m.anim.Busy() && m.playing {
			m.hold++
			if m.hold >= holdFrames {
				m.hold = 0
				m.step(m.history.Next)
			}
		}
		if !m.anim.Busy() && !m.playing {
			m.ticking = false
			return m, nil
		}
		return m, tick()
	}
	return m, nil
}

// step moves the cursor with move and queues the motion. Stepping forward
// by one line replays the line's transfer passes; any other jump racks
// straight to the new offset.
func (m *playModel) step(move func() playback.Step) {
	prev := m.history.Current()
	st := move()
	if st.Index == prev.Index+1 && !m.history.Unwinding() {
		for _, a := range playback.PassAnimations(st, prev.Snapshot.Racking) {
			m.anim.Enqueue(a)
		}
		return
	}
	m.anim.Enqueue(playback.XferAnimation(st.Label, prev.Snapshot.Racking, st.Snapshot.Racking))
}

func (m *playModel) startTicking() tea.Cmd {
	if m.ticking || (!m.anim.Busy() && !m.playing) {
		return nil
	}
	m.ticking = true
	return tick()
}

// racking is the displayed racking: the running animation's offset while
// one plays, the step's own offset otherwise.
func (m *playModel) racking() float64 {
	if v, ok := m.anim.Value(playback.PhaseRack); ok {
		return v
	}
	return float64(m.history.Current().Snapshot.Racking)
}

func (m *playModel) View() string {
	var b strings.Builder
	st := m.history.Current()

	b.WriteString(StyleTitle.Render("knitstack play"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("right/space: next  left: prev  home/end: first/last  p: autoplay  q: quit"))
	b.WriteString("\n\n")

	pos := fmt.Sprintf("step %d/%d", m.history.Index(), m.history.Len()-1)
	if m.history.Unwinding() {
		pos = "unwind"
	}
	b.WriteString(StyleNumber.Render(pos) + "  " + StyleValue.Render(st.Label))
	if st.Line > 0 {
		b.WriteString(StyleDim.Render(fmt.Sprintf("  (line %d)", st.Line)))
	}
	b.WriteString("\n")

	motion := "idle"
	if _, phase, ok := m.anim.Current(); ok {
		channel := phase
		if phase == playback.PhaseRetract {
			channel = playback.PhaseExtend
		}
		motion = phase
		if v, ok := m.anim.Value(channel); ok {
			motion = fmt.Sprintf("%s %.2f", phase, v)
		}
	}
	b.WriteString(StyleDim.Render(fmt.Sprintf("rack %.2f  %s", m.racking(), motion)))
	if m.playing {
		b.WriteString("  " + StyleSuccess.Render("playing"))
	}
	b.WriteString("\n\n")

	b.WriteString(bedTable(st.Snapshot))
	b.WriteString("\n")
	for _, l := range st.Snapshot.Links {
		b.WriteString(StyleDim.Render("  " + l))
		b.WriteString("\n")
	}
	if len(st.Active) > 0 {
		b.WriteString(StyleDim.Render("carriers in action: " + strings.Join(st.Active, " ")))
		b.WriteString("\n")
	}

	if m.simErr != nil && m.history.Index() == m.history.Len()-1 {
		b.WriteString("\n")
		b.WriteString(styleIconError.Render(iconError) + " " + kerrors.UserMessage(m.simErr))
		b.WriteString("\n")
	}
	return b.String()
}

// bedTable lays the snapshot out as one row per bed and one column per
// needle index, each cell holding the needle's stack descriptor.
func bedTable(s knit.Snapshot) string {
	beds := []string{"b", "bs", "fs", "f"}
	cells := make(map[string]map[int]string)
	seen := make(map[int]bool)
	for _, n := range s.Needles {
		bed, idx, ok := splitNeedle(n.Needle)
		if !ok {
			continue
		}
		if cells[bed] == nil {
			cells[bed] = make(map[int]string)
		}
		cells[bed][idx] = n.Stack
		seen[idx] = true
	}
	if len(seen) == 0 {
		return StyleDim.Render("(empty bed)") + "\n"
	}

	cols := make([]int, 0, len(seen))
	for i := range seen {
		cols = append(cols, i)
	}
	sort.Ints(cols)

	headers := []string{""}
	for _, i := range cols {
		headers = append(headers, strconv.Itoa(i))
	}
	var rows [][]string
	for _, bed := range beds {
		if cells[bed] == nil && (bed == "bs" || bed == "fs") {
			continue
		}
		row := []string{bed}
		for _, i := range cols {
			row = append(row, cells[bed][i])
		}
		rows = append(rows, row)
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	moved := lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 || col == 0 {
				return headerStyle
			}
			if strings.ContainsAny(rows[row][col], "O!") {
				return moved
			}
			return lipgloss.NewStyle()
		})
	return t.Render() + "\n"
}

// splitNeedle splits "fs-3" into its bed "fs" and index -3.
func splitNeedle(n string) (string, int, bool) {
	i := strings.IndexFunc(n, func(r rune) bool { return r == '-' || (r >= '0' && r <= '9') })
	if i <= 0 {
		return "", 0, false
	}
	idx, err := strconv.Atoi(n[i:])
	if err != nil {
		return "", 0, false
	}
	return n[:i], idx, true
}
