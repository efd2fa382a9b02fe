package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/codyseavey/pokecard-lookup/internal/facets"
	"github.com/codyseavey/pokecard-lookup/internal/models"
)

const sidebarWidth = 36

// searchBarStyle defines the styling for the search bar container.
var searchBarStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("62")).
	Padding(0, 1)

var panelStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Padding(0, 1)

var activePanelStyle = panelStyle.
	BorderForeground(lipgloss.Color("62"))

// resultStyle defines the styling for unselected rows (light grey).
var resultStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Foreground(lipgloss.Color("247"))

// selectedResultStyle defines the styling for the row under the cursor.
var selectedResultStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(lipgloss.Color("255"))

var (
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View implements tea.Model and renders the TUI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderSearchBar())
	b.WriteString("\n")

	switch {
	case m.errMsg != "":
		b.WriteString(errorStyle.Render(m.errMsg))
	case m.status != "":
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")

	// search bar (3) + banner (1) + help (1)
	bodyHeight := m.height - 5
	if bodyHeight < 5 {
		bodyHeight = 5
	}

	if m.detail != nil {
		b.WriteString(renderDetail(*m.detail, m.width-4))
	} else {
		left := m.renderResults(m.width-sidebarWidth-4, bodyHeight)
		var right string
		if m.focus == focusFilters {
			right = m.renderFilters(bodyHeight)
		} else {
			right = m.renderCollection(bodyHeight)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.helpLine()))

	return b.String()
}

func (m Model) renderSearchBar() string {
	mode := fmt.Sprintf("%s %s / %s %s",
		labelStyle.Render("by"), m.field,
		labelStyle.Render("lang"), m.scope)
	if m.loading {
		mode = m.spinner.View() + " " + mode
	}
	line := lipgloss.JoinHorizontal(lipgloss.Center, m.searchInput.View(), "  ", mode)
	return searchBarStyle.Width(m.width - 4).Render(line)
}

func (m Model) renderResults(width, height int) string {
	visible := m.visible()

	title := fmt.Sprintf("Results (%d)", len(visible))
	if m.filters.Active() {
		title = fmt.Sprintf("Results (%d of %d, filtered)", len(visible), len(m.results))
	}

	var rows []string
	rows = append(rows, titleStyle.Render(title))

	// keep the cursor in view
	maxRows := height - 3
	if maxRows < 1 {
		maxRows = 1
	}
	start := 0
	if m.cursor >= maxRows {
		start = m.cursor - maxRows + 1
	}
	end := start + maxRows
	if end > len(visible) {
		end = len(visible)
	}

	for i := start; i < end; i++ {
		card := visible[i]
		line := fmt.Sprintf("%-3s %-26s %-9s %-22s %-4s %s",
			card.Language,
			truncate(card.Name, 26),
			truncate(card.Number, 9),
			truncate(card.Set.Name, 22),
			card.ReleaseYear(),
			orDash(card.Rarity))
		if m.focus == focusResults && i == m.cursor {
			rows = append(rows, selectedResultStyle.Render("> "+line))
		} else {
			rows = append(rows, resultStyle.Render("  "+line))
		}
	}

	style := panelStyle
	if m.focus == focusResults {
		style = activePanelStyle
	}
	return style.Width(width).Height(height - 2).Render(strings.Join(rows, "\n"))
}

func (m Model) renderCollection(height int) string {
	stats := m.collection.Stats()
	items := m.collectionView()

	var rows []string
	rows = append(rows, titleStyle.Render("Collection"))
	rows = append(rows, labelStyle.Render(fmt.Sprintf("%d unique, %d total, $%.2f",
		stats.UniqueCards, stats.TotalCards, stats.TotalValue)))
	if m.finding || m.findInput.Value() != "" {
		rows = append(rows, m.findInput.View())
	}

	for i, item := range items {
		line := fmt.Sprintf("%3dx %s #%s", item.Quantity, truncate(item.Name, 20), item.Number)
		if m.focus == focusCollection && i == m.colCursor {
			rows = append(rows, selectedResultStyle.Render(line))
		} else {
			rows = append(rows, resultStyle.Render(line))
		}
	}
	if len(items) == 0 {
		rows = append(rows, resultStyle.Render("(empty)"))
	}

	style := panelStyle
	if m.focus == focusCollection {
		style = activePanelStyle
	}
	return style.Width(sidebarWidth).Height(height - 2).Render(strings.Join(rows, "\n"))
}

func (m Model) renderFilters(height int) string {
	var rows []string
	rows = append(rows, titleStyle.Render("Filters"))

	i := 0
	for _, f := range facets.All() {
		values := m.facetValues[f]
		if len(values) == 0 {
			continue
		}
		rows = append(rows, labelStyle.Render(f.Label()))
		for _, v := range values {
			box := "[ ]"
			if m.filters.IsSelected(f, v) {
				box = "[x]"
			}
			line := fmt.Sprintf("%s %s", box, truncate(facetDisplay(f, v), sidebarWidth-8))
			if i == m.filterCursor {
				rows = append(rows, selectedResultStyle.Render(line))
			} else {
				rows = append(rows, resultStyle.Render(line))
			}
			i++
		}
	}
	if i == 0 {
		rows = append(rows, resultStyle.Render("(search first)"))
	}

	return activePanelStyle.Width(sidebarWidth).Height(height - 2).Render(strings.Join(rows, "\n"))
}

func renderDetail(card models.Card, width int) string {
	field := func(label, value string) string {
		return labelStyle.Render(fmt.Sprintf("%-12s", label)) + value
	}

	number := card.Number
	if card.Set.PrintedTotal > 0 {
		number = fmt.Sprintf("%s/%d", card.Number, card.Set.PrintedTotal)
	}
	price := "-"
	if p := card.MarketPrice(); p > 0 {
		price = fmt.Sprintf("$%.2f", p)
	}

	rows := []string{
		titleStyle.Render(card.Name),
		"",
		field("Number", number),
		field("Set", card.Set.Name),
		field("Released", orDash(card.Set.ReleaseDate)),
		field("Rarity", orDash(card.Rarity)),
		field("Artist", orDash(card.Artist)),
		field("Language", card.Language.DisplayName()),
		field("Market", price),
		field("Image", orDash(card.Images.Large)),
		"",
		helpStyle.Render("enter add to collection • esc close"),
	}
	return activePanelStyle.Width(width).Render(strings.Join(rows, "\n"))
}

func (m Model) helpLine() string {
	if m.detail != nil {
		return "enter add • esc close"
	}
	switch m.focus {
	case focusResults:
		return "↑/↓ move • enter details • a add • ctrl+o collection • ctrl+f filters • ctrl+e export • esc search"
	case focusCollection:
		return "↑/↓ move • +/- quantity • x remove • / find • ctrl+e export • esc back"
	case focusFilters:
		return "↑/↓ move • space toggle • c clear • esc back"
	}
	return "enter search • tab field • ctrl+l language • ↓ results • ctrl+o collection • ctrl+f filters • ctrl+c quit"
}

func facetDisplay(f facets.Facet, v string) string {
	if f == facets.Language {
		return models.Language(v).DisplayName()
	}
	return v
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
