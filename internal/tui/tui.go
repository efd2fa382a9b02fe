// Package tui provides the terminal card lookup and collection interface
// using bubbletea.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/codyseavey/pokecard-lookup/internal/client"
	"github.com/codyseavey/pokecard-lookup/internal/collection"
	"github.com/codyseavey/pokecard-lookup/internal/export"
	"github.com/codyseavey/pokecard-lookup/internal/facets"
	"github.com/codyseavey/pokecard-lookup/internal/logging"
	"github.com/codyseavey/pokecard-lookup/internal/models"
	"github.com/codyseavey/pokecard-lookup/internal/services"
)

const searchTimeout = 45 * time.Second

// Searcher runs a card search, either in-process or through the server.
type Searcher interface {
	Search(ctx context.Context, req services.SearchRequest) ([]models.Card, error)
}

type focus int

const (
	focusSearch focus = iota
	focusResults
	focusCollection
	focusFilters
)

// Options configure a new Model. Zero values select the defaults.
type Options struct {
	Field     models.SearchField
	Scope     models.Scope
	ExportDir string
	Now       func() time.Time
	Logger    *zap.Logger
}

// searchKey identifies a submission so an identical re-submit can be
// ignored while it is still loading.
type searchKey struct {
	term  string
	field models.SearchField
	scope models.Scope
}

// searchResultMsg carries the generation it was issued under; results from
// an older generation are dropped.
type searchResultMsg struct {
	generation int
	cards      []models.Card
	err        error
}

type exportResultMsg struct {
	path string
	err  error
}

type filterOption struct {
	facet facets.Facet
	value string
}

// Model represents the main TUI application state.
type Model struct {
	searcher Searcher
	logger   *zap.Logger

	searchInput textinput.Model
	spinner     spinner.Model
	field       models.SearchField
	scope       models.Scope

	results     []models.Card // merged and sorted, before facet filtering
	filters     facets.Selection
	facetValues facets.Values

	loading    bool
	generation int
	inflight   searchKey
	errMsg     string
	status     string

	focus        focus
	cursor       int
	detail       *models.Card
	filterCursor int

	collection *collection.Collection
	colCursor  int
	findInput  textinput.Model
	finding    bool

	exportDir string
	now       func() time.Time

	width  int
	height int
}

// New creates a TUI model with the search bar focused.
func New(searcher Searcher, opts Options) Model {
	if searcher == nil {
		panic("searcher cannot be nil")
	}

	searchInput := textinput.New()
	searchInput.Placeholder = "Card name or number (e.g. Charizard, 25/102)"
	searchInput.Focus()
	searchInput.CharLimit = 256
	searchInput.Width = 50

	findInput := textinput.New()
	findInput.Placeholder = "Find in collection..."
	findInput.CharLimit = 64
	findInput.Width = 24

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	field := opts.Field
	if field == "" {
		field = models.FieldName
	}
	scope := opts.Scope
	if scope == "" {
		scope = models.ScopeAll
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	exportDir := opts.ExportDir
	if exportDir == "" {
		exportDir = "."
	}

	return Model{
		searcher:    searcher,
		logger:      logging.OrNop(opts.Logger),
		searchInput: searchInput,
		spinner:     sp,
		field:       field,
		scope:       scope,
		facetValues: facets.Collect(nil),
		collection:  collection.New(),
		findInput:   findInput,
		exportDir:   exportDir,
		now:         now,
		width:       100,
		height:      30,
	}
}

// Init implements tea.Model and returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model and handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.searchInput.Width = msg.Width - 30
		if m.searchInput.Width < 20 {
			m.searchInput.Width = 20
		}
		return m, nil

	case searchResultMsg:
		return m.handleSearchResult(msg), nil

	case exportResultMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("Export failed: %v", msg.err)
		} else {
			m.status = "Exported collection to " + msg.path
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateInputs(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	// the detail view is modal
	if m.detail != nil {
		switch key {
		case "enter":
			m.addToCollection(*m.detail)
			m.detail = nil
		case "esc":
			m.detail = nil
		}
		return m, nil
	}

	if m.finding {
		return m.handleFindKey(msg)
	}

	switch key {
	case "ctrl+e":
		return m, m.exportCmd()
	case "ctrl+o":
		m.toggleFocus(focusCollection)
		return m, nil
	case "ctrl+f":
		m.toggleFocus(focusFilters)
		return m, nil
	case "ctrl+l":
		m.scope = m.scope.Next()
		return m, nil
	case "esc":
		m.setFocus(focusSearch)
		return m, nil
	}

	switch m.focus {
	case focusResults:
		return m.handleResultsKey(key)
	case focusCollection:
		return m.handleCollectionKey(key)
	case focusFilters:
		return m.handleFiltersKey(key)
	}
	return m.handleSearchKey(msg)
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m, m.startSearch()
	case "tab":
		m.field = m.field.Next()
		return m, nil
	case "down":
		if len(m.visible()) > 0 {
			m.setFocus(focusResults)
			m.cursor = 0
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleResultsKey(key string) (tea.Model, tea.Cmd) {
	visible := m.visible()
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		} else {
			m.setFocus(focusSearch)
		}
	case "down", "j":
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
	case "enter":
		if card, ok := m.selectedCard(); ok {
			m.detail = &card
		}
	case "a":
		if card, ok := m.selectedCard(); ok {
			m.addToCollection(card)
		}
	}
	return m, nil
}

func (m Model) handleCollectionKey(key string) (tea.Model, tea.Cmd) {
	items := m.collectionView()
	switch key {
	case "up", "k":
		if m.colCursor > 0 {
			m.colCursor--
		}
	case "down", "j":
		if m.colCursor < len(items)-1 {
			m.colCursor++
		}
	case "/":
		m.finding = true
		m.findInput.Focus()
		return m, textinput.Blink
	}

	if m.colCursor >= len(items) {
		return m, nil
	}
	id := items[m.colCursor].ID
	switch key {
	case "+", "=": // = is the unshifted + key
		_, _ = m.collection.Increment(id)
	case "-", "_": // _ is the shifted - key
		_, _, _ = m.collection.Decrement(id)
	case "x", "delete":
		_ = m.collection.Remove(id)
		if n := len(m.collectionView()); m.colCursor >= n && n > 0 {
			m.colCursor = n - 1
		}
	}
	return m, nil
}

func (m Model) handleFindKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.finding = false
		m.findInput.Blur()
		return m, nil
	case "esc":
		m.finding = false
		m.findInput.Blur()
		m.findInput.SetValue("")
		m.colCursor = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.findInput, cmd = m.findInput.Update(msg)
	m.colCursor = 0
	return m, cmd
}

func (m Model) handleFiltersKey(key string) (tea.Model, tea.Cmd) {
	options := m.filterOptions()
	switch key {
	case "up", "k":
		if m.filterCursor > 0 {
			m.filterCursor--
		}
	case "down", "j":
		if m.filterCursor < len(options)-1 {
			m.filterCursor++
		}
	case " ", "space":
		if m.filterCursor < len(options) {
			opt := options[m.filterCursor]
			m.filters.Toggle(opt.facet, opt.value)
			m.cursor = 0
		}
	case "c":
		m.filters.Clear()
		m.cursor = 0
	}
	return m, nil
}

// updateInputs forwards non-key messages, such as cursor blinks, to the
// focused text input.
func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.finding {
		m.findInput, cmd = m.findInput.Update(msg)
		return m, cmd
	}
	if m.focus == focusSearch {
		m.searchInput, cmd = m.searchInput.Update(msg)
	}
	return m, cmd
}

// startSearch validates the input and returns the command that performs the
// search. Blank input issues no request.
func (m *Model) startSearch() tea.Cmd {
	term := strings.TrimSpace(m.searchInput.Value())
	if term == "" {
		m.errMsg = services.UserMessage(services.ErrEmptyQuery)
		return nil
	}

	key := searchKey{term: term, field: m.field, scope: m.scope}
	if m.loading && key == m.inflight {
		return nil
	}

	m.generation++
	m.loading = true
	m.inflight = key
	m.errMsg = ""
	m.status = ""
	m.results = nil
	m.facetValues = facets.Collect(nil)
	m.cursor = 0

	gen := m.generation
	req := services.SearchRequest{Term: term, Field: m.field, Scope: m.scope}
	searcher := m.searcher
	logger := m.logger

	search := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()
		cards, err := searcher.Search(ctx, req)
		if err != nil {
			logger.Warn("search failed", zap.String("query", req.Term), zap.Error(err))
		}
		return searchResultMsg{generation: gen, cards: cards, err: err}
	}
	return tea.Batch(m.spinner.Tick, search)
}

func (m Model) handleSearchResult(msg searchResultMsg) Model {
	if msg.generation != m.generation {
		m.logger.Debug("dropping stale search result",
			zap.Int("generation", msg.generation),
			zap.Int("current", m.generation))
		return m
	}

	m.loading = false
	m.inflight = searchKey{}
	if msg.err != nil {
		m.errMsg = errorMessage(msg.err)
		return m
	}

	m.results = msg.cards
	m.facetValues = facets.Collect(msg.cards)
	m.cursor = 0
	m.filterCursor = 0
	if len(msg.cards) == 0 {
		m.errMsg = "No cards found"
	}
	return m
}

func (m Model) exportCmd() tea.Cmd {
	items := m.collection.Items()
	dir := m.exportDir
	now := m.now()
	return func() tea.Msg {
		path, err := export.WriteFile(dir, items, now)
		return exportResultMsg{path: path, err: err}
	}
}

func (m *Model) addToCollection(card models.Card) {
	item, added := m.collection.Add(card)
	if added {
		m.status = fmt.Sprintf("Added %s to collection", item.Name)
	} else {
		m.status = fmt.Sprintf("%s x%d in collection", item.Name, item.Quantity)
	}
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	if f == focusSearch {
		m.searchInput.Focus()
	} else {
		m.searchInput.Blur()
	}
}

func (m *Model) toggleFocus(f focus) {
	if m.focus == f {
		m.setFocus(focusSearch)
		return
	}
	m.setFocus(f)
}

// visible is the result set after facet filtering.
func (m Model) visible() []models.Card {
	return m.filters.Apply(m.results)
}

func (m Model) selectedCard() (models.Card, bool) {
	visible := m.visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return models.Card{}, false
	}
	return visible[m.cursor], true
}

func (m Model) collectionView() []models.CollectedCard {
	return m.collection.Find(strings.TrimSpace(m.findInput.Value()))
}

func (m Model) filterOptions() []filterOption {
	var options []filterOption
	for _, f := range facets.All() {
		for _, v := range m.facetValues[f] {
			options = append(options, filterOption{facet: f, value: v})
		}
	}
	return options
}

// errorMessage is the single line shown in the error banner.
func errorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Search timed out. Please try again."
	}
	if errors.Is(err, client.ErrServerUnreachable) {
		return "Cannot reach the lookup server"
	}
	return services.UserMessage(err)
}

// Run starts the TUI application and returns any error that occurs.
func Run(searcher Searcher, opts Options) error {
	if searcher == nil {
		return fmt.Errorf("searcher cannot be nil")
	}

	program := tea.NewProgram(New(searcher, opts), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
