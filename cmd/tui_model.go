package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tayloree/dietcart/internal/display"
	"github.com/tayloree/dietcart/internal/planner"
	"github.com/tayloree/dietcart/internal/recipe"
	"github.com/tayloree/dietcart/internal/shopping"
)

const (
	minTUIWidth  = 92
	minTUIHeight = 24
)

const (
	groupPending   = "Pending"
	groupCompleted = "Completed"
)

var (
	tuiHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	tuiMetaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	tuiHintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tuiValueStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	tuiDoneStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	tuiItemStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	tuiMutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	tuiSectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
)

type tuiLoadConfig struct {
	ctx    context.Context
	engine *planner.Engine
	inputs planner.Inputs
}

type tuiDataLoadedMsg struct {
	result *planner.Result
}

type tuiDataLoadErrMsg struct {
	err error
}

type tuiFocus int

const (
	tuiFocusList tuiFocus = iota
	tuiFocusDetail
)

// tuiRow is a list row that can be found again after the list is rebuilt.
// Item IDs change on every rebuild, so grocery rows are keyed by name.
type tuiRow interface {
	list.Item
	rowKey() string
}

type tuiGroupItem struct {
	name  string
	count int
}

func (g tuiGroupItem) FilterValue() string { return strings.ToLower(g.name) }
func (g tuiGroupItem) Title() string       { return g.name }
func (g tuiGroupItem) Description() string { return fmt.Sprintf("%d items", g.count) }
func (g tuiGroupItem) rowKey() string      { return "section " + g.name }

type tuiGroceryItem struct {
	item        shopping.Item
	uses        []string
	group       string
	title       string
	description string
	filterValue string
}

func (g tuiGroceryItem) FilterValue() string { return g.filterValue }
func (g tuiGroceryItem) Title() string       { return g.title }
func (g tuiGroceryItem) Description() string { return g.description }
func (g tuiGroceryItem) rowKey() string      { return g.item.Name }

type groceryTUIModel struct {
	loading  bool
	spinner  spinner.Model
	loadCmd  tea.Cmd
	fatalErr error

	ctx    context.Context
	engine *planner.Engine
	result *planner.Result
	usage  map[string][]string

	hideCompleted bool

	list   list.Model
	detail viewport.Model

	focus       tuiFocus
	showHelp    bool
	selectedKey string

	groupStarts []int

	width, height   int
	bodyHeight      int
	listPaneWidth   int
	detailPaneWidth int
	tooSmall        bool
}

func newLoadingGroceryTUIModel(cfg tuiLoadConfig) groceryTUIModel {
	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(1)

	lst := list.New([]list.Item{}, delegate, 0, 0)
	lst.Title = "Groceries"
	lst.SetStatusBarItemName("item", "items")
	lst.SetShowStatusBar(true)
	lst.SetFilteringEnabled(true)
	lst.SetShowHelp(false)
	lst.SetShowPagination(true)
	lst.DisableQuitKeybindings()

	detail := viewport.New(0, 0)
	detail.KeyMap.PageDown.SetKeys("f", "pgdown")
	detail.KeyMap.PageUp.SetKeys("b", "pgup")
	detail.KeyMap.HalfPageDown.SetKeys("d")
	detail.KeyMap.HalfPageUp.SetKeys("u")

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	ctx := cfg.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	return groceryTUIModel{
		loading: true,
		spinner: spin,
		loadCmd: loadTUIDataCmd(cfg),
		ctx:     ctx,
		engine:  cfg.engine,
		list:    lst,
		detail:  detail,
		focus:   tuiFocusList,
	}
}

func loadTUIDataCmd(cfg tuiLoadConfig) tea.Cmd {
	return func() tea.Msg {
		if cfg.engine == nil {
			return tuiDataLoadErrMsg{err: fmt.Errorf("no engine configured")}
		}
		ctx := cfg.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		res, err := cfg.engine.Rebuild(ctx, cfg.inputs)
		if err != nil {
			return tuiDataLoadErrMsg{err: err}
		}
		return tuiDataLoadedMsg{result: res}
	}
}

func (m groceryTUIModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd)
}

func (m groceryTUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tuiDataLoadedMsg:
		m.loading = false
		m.result = msg.result
		m.usage = recipeUsage(msg.result.Plan)
		m.applyView(true)
		m.resize()
		return m, nil

	case tuiDataLoadErrMsg:
		m.loading = false
		m.fatalErr = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	keyMsg, isKey := msg.(tea.KeyMsg)
	if isKey {
		if keyMsg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.loading {
			if keyMsg.String() == "q" {
				return m, tea.Quit
			}
			return m, nil
		}
	}

	if m.loading {
		return m, nil
	}

	if isKey {
		filtering := m.list.FilterState() == list.Filtering
		key := keyMsg.String()

		switch key {
		case "q":
			if !filtering {
				return m, tea.Quit
			}
		case "tab":
			if !filtering {
				if m.focus == tuiFocusList {
					m.focus = tuiFocusDetail
				} else {
					m.focus = tuiFocusList
				}
				return m, nil
			}
		case "esc":
			if m.focus == tuiFocusDetail && !filtering {
				m.focus = tuiFocusList
				return m, nil
			}
		case "?":
			if !filtering {
				m.showHelp = !m.showHelp
				m.resize()
				return m, nil
			}
		case " ", "x", "enter":
			if !filtering && m.focus == tuiFocusList {
				cmd := m.toggleSelected()
				return m, cmd
			}
		case "h":
			if !filtering {
				m.hideCompleted = !m.hideCompleted
				m.applyView(false)
				return m, nil
			}
		case "R":
			if !filtering {
				status := "All items unchecked."
				if err := m.engine.ResetChecked(m.ctx, m.result.List); err != nil {
					status = "Reset failed: " + err.Error()
				}
				m.applyView(false)
				cmd := m.list.NewStatusMessage(status)
				return m, cmd
			}
		case "[", "]":
			if !filtering {
				if m.list.IsFiltered() {
					cmd := m.list.NewStatusMessage("Clear the filter before switching sections.")
					return m, cmd
				}
				m.switchSection()
				return m, nil
			}
		}

		if m.focus == tuiFocusDetail && !filtering {
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.refreshDetail(false)
	return m, cmd
}

// toggleSelected flips the highlighted item through the engine so the
// checked set is persisted before the view changes.
func (m *groceryTUIModel) toggleSelected() tea.Cmd {
	selected, ok := m.list.SelectedItem().(tuiGroceryItem)
	if !ok {
		return nil
	}
	checked, err := m.engine.Toggle(m.ctx, m.result.List, selected.item.Name)
	if err != nil {
		return m.list.NewStatusMessage("Could not save: " + err.Error())
	}
	m.applyView(false)
	state := "Unchecked"
	if checked {
		state = "Checked"
	}
	return m.list.NewStatusMessage(fmt.Sprintf("%s %s.", state, selected.item.Name))
}

func (m groceryTUIModel) View() string {
	if m.loading {
		return m.loadingView()
	}
	if m.width == 0 || m.height == 0 {
		return tuiMetaStyle.Render("Loading interface...")
	}
	if m.tooSmall {
		return lipgloss.NewStyle().
			Padding(1, 2).
			Render(
				fmt.Sprintf(
					"Terminal too small (%dx%d).\nResize to at least %dx%d for the grocery checklist.",
					m.width, m.height, minTUIWidth, minTUIHeight,
				),
			)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.headerView(),
		m.bodyView(),
		m.footerView(),
	)
}

func (m groceryTUIModel) loadingView() string {
	width := m.width
	if width == 0 {
		width = 80
	}

	lines := []string{
		tuiHeaderStyle.Render("dietcart tui"),
		tuiMetaStyle.Render("Preparing grocery checklist..."),
		"",
		fmt.Sprintf("%s Scaling the week and aggregating ingredients", m.spinner.View()),
		tuiHintStyle.Render("Tip: press q to cancel."),
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}

func (m *groceryTUIModel) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	if m.loading {
		return
	}

	m.tooSmall = m.width < minTUIWidth || m.height < minTUIHeight
	if m.tooSmall {
		return
	}

	headerH := 3
	footerH := 2
	if m.showHelp {
		footerH = 6
	}
	m.bodyHeight = max(8, m.height-headerH-footerH-1)

	listWidth := max(40, int(float64(m.width)*0.45))
	if listWidth > m.width-42 {
		listWidth = m.width / 2
	}
	detailWidth := m.width - listWidth - 1
	if detailWidth < 36 {
		detailWidth = 36
		listWidth = m.width - detailWidth - 1
	}

	m.listPaneWidth = listWidth
	m.detailPaneWidth = detailWidth

	listInnerWidth := max(24, listWidth-4)
	detailInnerWidth := max(24, detailWidth-4)
	panelInnerHeight := max(6, m.bodyHeight-2)

	m.list.SetSize(listInnerWidth, panelInnerHeight)
	m.detail.Width = detailInnerWidth
	m.detail.Height = panelInnerHeight
	m.refreshDetail(false)
}

func (m groceryTUIModel) headerView() string {
	focus := "list"
	if m.focus == tuiFocusDetail {
		focus = "detail"
	}
	view := "all"
	if m.hideCompleted {
		view = "pending only"
	}

	top := "dietcart tui"
	bottom := ""
	if m.result != nil {
		l := m.result.List
		top = fmt.Sprintf("dietcart tui  |  %s (%s)", m.result.Catalog.Name, m.result.Diet)
		bottom = fmt.Sprintf(
			"items: %d of %d checked (%d%%)  |  view: %s  |  focus: %s",
			l.CheckedCount(), l.Total(), l.Progress(), view, focus,
		)
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(tuiHeaderStyle.Render(top) + "\n" + tuiMetaStyle.Render(bottom))
}

func (m groceryTUIModel) bodyView() string {
	listBorder := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("241")).
		Padding(0, 1)
	detailBorder := listBorder

	if m.focus == tuiFocusList {
		listBorder = listBorder.BorderForeground(lipgloss.Color("86"))
	} else {
		detailBorder = detailBorder.BorderForeground(lipgloss.Color("86"))
	}

	left := listBorder.
		Width(m.listPaneWidth).
		Height(m.bodyHeight).
		Render(m.list.View())
	right := detailBorder.
		Width(m.detailPaneWidth).
		Height(m.bodyHeight).
		Render(m.detail.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

func (m groceryTUIModel) footerView() string {
	base := "space toggle • Tab switch pane • / fuzzy filter • h hide completed • R uncheck all • [/] pending ⇄ completed • ? help • q quit"
	if m.focus == tuiFocusDetail {
		base = "Detail: j/k or ↑/↓ scroll • u/d half-page • b/f page • esc list • ? help • q quit"
	}

	if !m.showHelp {
		return lipgloss.NewStyle().Padding(0, 1).Render(tuiHintStyle.Render(base))
	}

	lines := []string{
		"Key Help",
		"list pane: ↑/↓ or j/k move • space, x or enter toggle • / fuzzy filter • h hide completed • R uncheck all",
		"sections: [ or ] jump between Pending and Completed",
		"global: tab switch pane • esc list • ? toggle help • q quit • ctrl+c force quit",
	}
	return lipgloss.NewStyle().
		Padding(0, 1).
		Render(tuiHintStyle.Render(strings.Join(lines, "\n")))
}

func (m *groceryTUIModel) applyView(resetSelection bool) {
	if m.result == nil {
		return
	}
	current := m.selectedKey

	items, starts := buildGroupedListItems(m.result.List.Items, m.usage, m.hideCompleted)
	m.groupStarts = starts

	l := m.result.List
	m.list.Title = fmt.Sprintf("Groceries • %d/%d checked", l.CheckedCount(), l.Total())
	m.list.SetItems(items)

	target := -1
	if !resetSelection && current != "" {
		target = indexOfRow(items, current)
	}
	if target < 0 {
		target = firstGroceryIndexFrom(items, 0)
	}
	if target < 0 && len(items) > 0 {
		target = 0
	}
	if target >= 0 {
		m.list.Select(target)
	}

	m.refreshDetail(true)
}

func (m *groceryTUIModel) refreshDetail(resetScroll bool) {
	var content, key string
	switch item := m.list.SelectedItem().(type) {
	case tuiGroceryItem:
		content, key = renderGroceryDetailContent(item, m.detail.Width), item.rowKey()
	case tuiGroupItem:
		content, key = m.renderGroupDetail(item), item.rowKey()
	}
	if content == "" {
		content = "Nothing to show.\n\nPress h to show completed items again."
	}

	if resetScroll || key != m.selectedKey {
		m.detail.GotoTop()
	}
	m.selectedKey = key
	m.detail.SetContent(content)
}

func (m groceryTUIModel) renderGroupDetail(group tuiGroupItem) string {
	preview := m.groupPreviewTitles(group.name, 5)

	lines := []string{
		tuiSectionStyle.Render(group.name),
		tuiMetaStyle.Render(fmt.Sprintf("%d items in this section", group.count)),
		"",
		tuiHintStyle.Render("Press [ or ] for the other section."),
	}
	if len(preview) > 0 {
		lines = append(lines, "")
		lines = append(lines, tuiMetaStyle.Render("Preview:"))
		for _, title := range preview {
			lines = append(lines, "• "+title)
		}
	}

	return strings.Join(lines, "\n")
}

func (m groceryTUIModel) groupPreviewTitles(group string, limit int) []string {
	out := make([]string, 0, limit)
	for _, item := range m.list.Items() {
		g, ok := item.(tuiGroceryItem)
		if !ok || g.group != group {
			continue
		}
		out = append(out, g.item.Name)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// switchSection moves the cursor to the first item of the section the
// cursor is not in. With completed items hidden there is only one.
func (m *groceryTUIModel) switchSection() {
	if len(m.groupStarts) == 0 {
		return
	}
	cursor := m.list.GlobalIndex()
	next := m.groupStarts[0]
	for _, start := range m.groupStarts {
		if start > cursor {
			next = start
			break
		}
	}

	target := firstGroceryIndexFrom(m.list.Items(), next)
	if target < 0 {
		target = next
	}
	m.list.Select(target)
	m.refreshDetail(true)
}

// buildGroupedListItems lays items out as a Pending section followed by a
// Completed section, each under a header row. Empty sections are skipped.
func buildGroupedListItems(groceries []shopping.Item, usage map[string][]string, hideCompleted bool) (items []list.Item, starts []int) {
	var pending, completed []shopping.Item
	for _, g := range groceries {
		if g.Checked {
			completed = append(completed, g)
		} else {
			pending = append(pending, g)
		}
	}

	type section struct {
		name  string
		items []shopping.Item
	}
	sections := []section{{groupPending, pending}}
	if !hideCompleted {
		sections = append(sections, section{groupCompleted, completed})
	}

	for _, s := range sections {
		if len(s.items) == 0 {
			continue
		}
		starts = append(starts, len(items))
		items = append(items, tuiGroupItem{name: s.name, count: len(s.items)})
		for _, g := range s.items {
			items = append(items, buildTUIGroceryItem(g, usage[g.Name], s.name))
		}
	}
	return items, starts
}

func buildTUIGroceryItem(item shopping.Item, uses []string, group string) tuiGroceryItem {
	mark := "[ ]"
	if item.Checked {
		mark = "[x]"
	}

	descParts := []string{item.Quantity}
	switch n := len(uses); n {
	case 0:
	case 1:
		descParts = append(descParts, "1 recipe")
	default:
		descParts = append(descParts, fmt.Sprintf("%d recipes", n))
	}

	return tuiGroceryItem{
		item:        item,
		uses:        uses,
		group:       group,
		title:       mark + " " + item.Name,
		description: strings.Join(descParts, "  •  "),
		filterValue: strings.ToLower(strings.Join([]string{item.Name, item.Quantity, group}, " ")),
	}
}

// recipeUsage indexes, per ingredient name, the day, meal and recipe that
// call for it along with the scaled quantity.
func recipeUsage(plan recipe.WeeklyPlan) map[string][]string {
	out := make(map[string][]string)
	for _, day := range plan {
		for _, r := range day.Recipes {
			for _, ing := range r.Ingredients {
				out[ing.Name] = append(out[ing.Name],
					fmt.Sprintf("%s · %s · %s (%s)", day.Day, r.MealType, r.Title, ing.Quantity))
			}
		}
	}
	return out
}

func renderGroceryDetailContent(g tuiGroceryItem, width int) string {
	maxWidth := max(24, width)

	status := tuiMutedStyle.Render("pending")
	if g.item.Checked {
		status = tuiDoneStyle.Render("checked")
	}

	lines := []string{
		tuiItemStyle.Render(display.WordWrap(g.item.Name, maxWidth, "")),
		tuiMetaStyle.Render("status: ") + status,
		"",
		fmt.Sprintf("%s %s", tuiMetaStyle.Render("Buy:"), tuiValueStyle.Render(g.item.Quantity)),
	}
	if g.item.Raw != "" && g.item.Raw != g.item.Quantity {
		lines = append(lines, fmt.Sprintf("%s %s", tuiMetaStyle.Render("Recipes need:"), display.WordWrap(g.item.Raw, maxWidth, "  ")))
	}

	if len(g.uses) > 0 {
		lines = append(lines, "")
		lines = append(lines, tuiMetaStyle.Render(fmt.Sprintf("Used in %d recipes:", len(g.uses))))
		for _, use := range g.uses {
			lines = append(lines, "• "+display.WordWrap(use, maxWidth-2, "  "))
		}
	}

	return strings.Join(lines, "\n")
}

func firstGroceryIndexFrom(items []list.Item, start int) int {
	for i := start; i < len(items); i++ {
		if _, ok := items[i].(tuiGroceryItem); ok {
			return i
		}
	}
	return -1
}

func indexOfRow(items []list.Item, key string) int {
	for i, item := range items {
		if row, ok := item.(tuiRow); ok && row.rowKey() == key {
			return i
		}
	}
	return -1
}
