package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/five82/ghdeck/internal/deck"
	"github.com/five82/ghdeck/internal/icons"
	"github.com/five82/ghdeck/internal/logtail"
)

var glyphText = map[icons.Name]string{
	icons.PullRequest:  "⇄ PR",
	icons.Issue:        "◉ ISSUE",
	icons.CodeReview:   "◎ REVIEW",
	icons.Filter:       "▽",
	icons.CircleSlash:  "⊘",
	icons.ChevronLeft:  "◀",
	icons.ChevronRight: "▶",
	icons.GitHub:       "·",
}

var kindDescription = map[deck.Kind]string{
	deck.KindOffsetLeft:    "Previous page",
	deck.KindOffsetRight:   "Next page",
	deck.KindToggleFilter:  "Cycle filter",
	deck.KindPageIndicator: "Current page",
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderGrid())
	b.WriteString("\n")
	b.WriteString(m.renderDetail())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	parts := []string{styles.Logo.Render("ghdeck")}

	snap := m.snapshot
	switch {
	case snap.IsOffline():
		parts = append(parts, styles.DangerText.Render("OFFLINE"))
		if snap.LastError != nil {
			parts = append(parts, styles.MutedText.Render(truncate(snap.LastError.Error(), 60)))
		}
	case snap.FetchedAt.IsZero():
		parts = append(parts, styles.MutedText.Render("waiting for first fetch"))
	default:
		parts = append(parts,
			styles.Text.Render(fmt.Sprintf("%d open", snap.Count())),
			styles.MutedText.Render("updated "+snap.FetchedAt.Format("15:04:05")),
		)
	}
	if m.status != "" {
		parts = append(parts, styles.AccentText.Render(m.status))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, "  "))
}

func (m Model) renderGrid() string {
	if m.host == nil {
		return ""
	}
	styles := m.theme.Styles()
	grid := m.host.Grid()
	rows := make([]string, 0, len(grid))
	for r, row := range grid {
		cells := make([]string, 0, len(row))
		for c, cell := range row {
			focused := r == m.focusRow && c == m.focusCol
			cells = append(cells, m.renderKey(styles, cell, focused))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderKey(styles Styles, cell Cell, focused bool) string {
	style := styles.Key
	if focused {
		style = styles.FocusedKey
	}
	if cell.Empty {
		if !focused {
			style = styles.EmptyKey
		}
		return style.Width(keyWidth).Height(keyHeight).Render("")
	}

	face := m.host.Face(cell.Button.ID)
	lines := make([]string, 0, keyHeight)
	if face.Glyph != "" {
		glyph := lipgloss.NewStyle().Foreground(m.theme.GlyphColor(face.Color)).Render(glyphText[face.Glyph])
		lines = append(lines, glyph)
	}
	if face.Title != "" {
		for _, line := range strings.Split(face.Title, "\n") {
			if len(lines) == keyHeight {
				break
			}
			lines = append(lines, truncate(line, keyWidth))
		}
	}
	return style.Width(keyWidth).Height(keyHeight).Render(strings.Join(lines, "\n"))
}

func (m Model) renderDetail() string {
	styles := m.theme.Styles()
	cell, ok := m.focused()
	if !ok || cell.Empty {
		return styles.FaintText.Render(" ")
	}
	if cell.Button.Kind == deck.KindMonitor {
		if url, ok := m.focusedURL(); ok {
			return styles.Text.Render(truncate(url, m.width))
		}
		return styles.FaintText.Render("(empty)")
	}
	return styles.MutedText.Render(kindDescription[cell.Button.Kind])
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	var b strings.Builder
	for _, line := range m.logLines {
		rec := logtail.Parse(line)
		style := styles.FaintText
		switch rec.Level {
		case "WARN":
			style = styles.WarningText
		case "ERROR":
			style = styles.DangerText
		}
		b.WriteString(style.Render(truncate(rec.String(), m.width)))
		b.WriteString("\n")
	}
	b.WriteString(styles.Footer.Width(m.width).Render(m.help.View(m.keys)))
	return b.String()
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	full := m.help
	full.ShowAll = true

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")
	b.WriteString(full.View(m.keys))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

// truncate fits s into width terminal cells.
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
