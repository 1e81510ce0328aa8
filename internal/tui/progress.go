package tui

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned by ShowProgress when the user presses Ctrl+C.
var ErrCancelled = errors.New("cancelled by user")

// reportEvery throttles updates from ProgressReader.
const reportEvery = 1 << 20

// ProgressReader counts bytes read through it and publishes the running
// total on a channel, at most once per MiB plus once at the end.
type ProgressReader struct {
	r        io.Reader
	total    int64
	read     int64
	reported int64
	ch       chan<- int64
}

// NewProgressReader wraps r. Sends never block; a full channel drops the
// update.
func NewProgressReader(r io.Reader, total int64, ch chan<- int64) *ProgressReader {
	return &ProgressReader{r: r, total: total, ch: ch}
}

func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	pr.read += int64(n)
	if pr.ch == nil || n == 0 {
		return n, err
	}
	finished := err == io.EOF || pr.read >= pr.total
	if pr.read-pr.reported >= reportEvery || finished {
		select {
		case pr.ch <- pr.read:
			pr.reported = pr.read
		default:
		}
	}
	return n, err
}

type bytesMsg int64

type tickMsg time.Time

// closedMsg means the producer closed the channel.
type closedMsg struct{}

type transferModel struct {
	bar       progress.Model
	label     string
	total     int64
	current   int64
	done      bool
	cancelled bool
	ch        <-chan int64
}

func (m transferModel) Init() tea.Cmd {
	return tea.Batch(tick(), next(m.ch))
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func next(ch <-chan int64) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return bytesMsg(n)
	}
}

func (m transferModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done, m.cancelled = true, true
			return m, tea.Quit
		}
	case tickMsg:
		if m.done {
			return m, tea.Quit
		}
		return m, tick()
	case closedMsg:
		m.done = true
		return m, tea.Quit
	case bytesMsg:
		m.current = int64(msg)
		return m, next(m.ch)
	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-20, 80)
	}
	return m, nil
}

func (m transferModel) fraction() float64 {
	if m.total <= 0 {
		return 0
	}
	return min(float64(m.current)/float64(m.total), 1)
}

func (m transferModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s\n%s %s\n",
		StyleHeader.Render(m.label),
		StyleHelp.Render(fmt.Sprintf("%s / %s", humanBytes(m.current), humanBytes(m.total))),
		m.bar.ViewAs(m.fraction()),
		StyleHelp.Render(fmt.Sprintf("%.0f%%", m.fraction()*100)),
	)
}

// ShowProgress draws an inline progress bar until ch is closed. The
// producer must close ch when the transfer finishes, successfully or not.
// Returns ErrCancelled if the user pressed Ctrl+C.
func ShowProgress(label string, total int64, ch <-chan int64) error {
	m := transferModel{
		bar:   progress.New(progress.WithDefaultGradient()),
		label: label,
		total: total,
		ch:    ch,
	}
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(transferModel); ok && fm.cancelled {
		return ErrCancelled
	}
	return nil
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
