package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/breckenedge/lego-part-renderer/pkg/ldraw"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command: an interactive part picker over
// the library catalog that renders the selected part.
func (c *CLI) browseCommand() *cobra.Command {
	var output string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the part library and render a selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib := c.newLibrary()
			if err := lib.Check(); err != nil {
				return err
			}
			prog := newProgress(loggerFromContext(cmd.Context()))
			parts, err := lib.Parts()
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Loaded %d parts from %s", len(parts), lib.Root))
			if len(parts) == 0 {
				printWarning("No parts found in %s", lib.Root)
				return nil
			}

			model := NewPartListModel(parts)
			final, err := tea.NewProgram(model).Run()
			if err != nil {
				return fmt.Errorf("part picker: %w", err)
			}
			selected := final.(PartListModel).Selected
			if selected == nil {
				printInfo("No part selected")
				return nil
			}

			opts := renderOpts{output: output, noCache: noCache, pipeline: c.Config.Options()}
			return c.runRender(cmd.Context(), selected.Number, &opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <part>.svg)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	return cmd
}

// PartListModel is the bubbletea model for interactive part selection.
type PartListModel struct {
	Parts    []ldraw.Part
	Filter   string
	Cursor   int
	Selected *ldraw.Part
	Height   int
	Offset   int
}

// NewPartListModel creates a new part list model.
func NewPartListModel(parts []ldraw.Part) PartListModel {
	return PartListModel{
		Parts:  parts,
		Height: 15,
	}
}

func (m PartListModel) Init() tea.Cmd {
	return nil
}

// visible returns the parts matching the current filter.
func (m PartListModel) visible() []ldraw.Part {
	if m.Filter == "" {
		return m.Parts
	}
	needle := strings.ToLower(m.Filter)
	var out []ldraw.Part
	for _, p := range m.Parts {
		if strings.Contains(strings.ToLower(p.Number), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) {
			out = append(out, p)
		}
	}
	return out
}

func (m PartListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "up":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down":
			if m.Cursor < len(m.visible())-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			parts := m.visible()
			if len(parts) == 0 {
				return m, nil
			}
			part := parts[m.Cursor]
			m.Selected = &part
			return m, tea.Quit
		case "backspace":
			if len(m.Filter) > 0 {
				m.Filter = m.Filter[:len(m.Filter)-1]
				m.clampCursor()
			}
		default:
			if len(msg.String()) == 1 {
				m.Filter += msg.String()
				m.clampCursor()
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m *PartListModel) clampCursor() {
	if n := len(m.visible()); m.Cursor >= n {
		m.Cursor = 0
		m.Offset = 0
	}
}

func (m PartListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Part"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("type to filter  ↑/↓ navigate  ⏎ render  esc quit"))
	b.WriteString("\n")
	if m.Filter != "" {
		b.WriteString(StyleHighlight.Render("filter: " + m.Filter))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	parts := m.visible()
	end := m.Offset + m.Height
	if end > len(parts) {
		end = len(parts)
	}

	for i := m.Offset; i < end; i++ {
		p := parts[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		desc := p.Description
		if desc == "" {
			desc = "—"
		}
		line := fmt.Sprintf("%s%-12s %s", cursor, p.Number, desc)

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(parts))))

	return b.String()
}
