// Package tui is a terminal front end for the layout editor. The map is
// drawn from the same draw commands the browser receives, and keys drive
// the engine the way mouse and keyboard do on the map.
package tui

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/festmap/festmap/backend-go/internal/document"
	"github.com/festmap/festmap/backend-go/internal/engine"
	"github.com/festmap/festmap/backend-go/internal/export"
	"github.com/festmap/festmap/backend-go/internal/geo"
	"github.com/festmap/festmap/backend-go/internal/item"
	"github.com/festmap/festmap/backend-go/internal/render"
	"github.com/festmap/festmap/backend-go/internal/saves"
	"github.com/festmap/festmap/backend-go/internal/typeid"
)

const (
	panelWidth  = 36
	rotateStep  = 15.0
	minZoom     = 1
	maxZoom     = 22
	defaultSize = 80
)

// Clipboard is the system clipboard.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type Options struct {
	View         document.Viewport
	HistoryLimit int
	Saves        *saves.Service
	Clipboard    Clipboard
	// ExportDir receives PNG exports.
	ExportDir string
	Logger    *slog.Logger
}

type mode int

const (
	modeNormal mode = iota
	modeSaveName
	modeLoadName
)

type Model struct {
	manager   *engine.Manager
	scene     *render.Scene
	saves     *saves.Service
	clipboard Clipboard
	exportDir string
	logger    *slog.Logger

	width  int
	height int

	focus         int
	mode          mode
	input         string
	status        string
	showMaterials bool
	help          bool
}

// Styles
var (
	accentFg  = lipgloss.Color("#7C3AED")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	borderCol = lipgloss.Color("#243141")
	errorFg   = lipgloss.Color("#EF4444")

	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(baseDimFg)
	errorStyle = lipgloss.NewStyle().Foreground(errorFg)
)

func New(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	scene := render.NewScene(opts.View)
	return Model{
		manager: engine.New(scene,
			engine.WithLogger(logger),
			engine.WithHistoryLimit(opts.HistoryLimit),
		),
		scene:     scene,
		saves:     opts.Saves,
		clipboard: opts.Clipboard,
		exportDir: opts.ExportDir,
		logger:    logger,
		width:     defaultSize,
		height:    defaultSize / 3,
		status:    "festmap ready, ? for help",
	}
}

func (m Model) Manager() *engine.Manager { return m.manager }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		if m.mode != modeNormal {
			return m.updateInput(msg), nil
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) Model {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
		m.status = "cancelled"
	case tea.KeyEnter:
		name := strings.TrimSpace(m.input)
		switch m.mode {
		case modeSaveName:
			m.status = m.save(name)
		case modeLoadName:
			m.status = m.load(name)
		}
		m.mode = modeNormal
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+q":
		return m, tea.Quit
	case "?":
		m.help = !m.help

	// Editor shortcuts
	case "esc":
		m.manager.HandleKey(engine.Key{Key: "Escape"})
	case "ctrl+c", "ctrl+v", "ctrl+x", "ctrl+z", "ctrl+y":
		m.manager.HandleKey(engine.Key{Key: strings.TrimPrefix(key, "ctrl+"), Ctrl: true})
		m.status = shortcutStatus(key)
	case "delete":
		m.manager.HandleKey(engine.Key{Key: "Delete"})
	case "backspace":
		m.manager.HandleKey(engine.Key{Key: "Backspace"})

	// Focus and selection
	case "tab":
		m.focus++
	case "shift+tab":
		m.focus--
	case "enter", " ":
		if it := m.focused(); it != nil {
			m.scene.Click(it.ID(), key == " ")
		}

	// Placing and arranging
	case "1", "2", "3", "4", "5", "6", "7", "8", "9", "0":
		m.addTemplate(key)
	case "[":
		m.rotateSelected(-rotateStep)
	case "]":
		m.rotateSelected(rotateStep)
	case "shift+up":
		m.nudgeSelected(0, -1)
	case "shift+down":
		m.nudgeSelected(0, 1)
	case "shift+left":
		m.nudgeSelected(-1, 0)
	case "shift+right":
		m.nudgeSelected(1, 0)

	// View
	case "up":
		m.pan(0, -1)
	case "down":
		m.pan(0, 1)
	case "left":
		m.pan(-1, 0)
	case "right":
		m.pan(1, 0)
	case "+", "=":
		m.zoom(1)
	case "-":
		m.zoom(-1)
	case "v":
		m.toggleLayer()
	case "m":
		m.showMaterials = !m.showMaterials

	// Documents
	case "s":
		m.beginInput(modeSaveName)
	case "l":
		m.beginInput(modeLoadName)
	case "y":
		m.status = m.copyToClipboard()
	case "p":
		m.status = m.pasteFromClipboard()
	case "P":
		m.status = m.exportPNG()
	}
	return m, nil
}

func shortcutStatus(key string) string {
	switch key {
	case "ctrl+c":
		return "copied"
	case "ctrl+v":
		return "pasted"
	case "ctrl+x":
		return "cut"
	case "ctrl+z":
		return "undo"
	}
	return "redo"
}

func (m *Model) beginInput(md mode) {
	if m.saves == nil {
		m.status = "saves are not available"
		return
	}
	m.mode = md
	m.input = ""
}

// focused returns the item under the tab focus, or nil without items.
func (m Model) focused() *item.Item {
	items := m.manager.Items()
	if len(items) == 0 {
		return nil
	}
	i := m.focus % len(items)
	if i < 0 {
		i += len(items)
	}
	return items[i]
}

func (m *Model) addTemplate(key string) {
	n, _ := strconv.Atoi(key)
	if n == 0 {
		n = 10
	}
	palette := document.Palette()
	if n > len(palette) {
		return
	}
	it, err := m.manager.AddFromTemplate(palette[n-1].Name)
	if err != nil {
		m.status = "add failed: " + err.Error()
		return
	}
	m.focus = len(m.manager.Items()) - 1
	m.status = "added " + it.Name()
}

// rotateSelected turns every selected rectangle by delta degrees as one
// undo step.
func (m *Model) rotateSelected(delta float64) {
	var targets []*item.Item
	var applies []func()
	for _, it := range m.manager.Selected() {
		if it.Type() != document.ItemTypeRectangle {
			continue
		}
		rot := math.Mod(it.Rotation()+delta, 360)
		apply, err := it.PrepareField("rotation", strconv.FormatFloat(rot, 'f', -1, 64))
		if err != nil {
			m.status = "rotate failed: " + err.Error()
			return
		}
		targets = append(targets, it)
		applies = append(applies, apply)
	}
	if len(targets) == 0 {
		return
	}

	m.manager.PushHistorySnapshot()
	for i, it := range targets {
		applies[i]()
		m.manager.ItemMutated(it)
	}
}

// nudgeSelected moves the selection by one canvas cell.
func (m *Model) nudgeSelected(dx, dy int) {
	selected := m.manager.Selected()
	if len(selected) == 0 {
		return
	}
	c := m.canvas()
	origin := c.unproject(c.w/2, c.h/2)
	delta := c.unproject(c.w/2+dx, c.h/2+dy).Sub(origin)

	m.manager.PushHistorySnapshot()
	for _, it := range selected {
		it.SetPosition(moveAnchor(it).Add(delta))
		m.manager.ItemMutated(it)
	}
}

// moveAnchor is the point SetPosition moves: the first vertex of a path,
// the position of every other item.
func moveAnchor(it *item.Item) geo.LatLng {
	if pts := it.LatLngs(); len(pts) > 0 {
		return pts[0]
	}
	return it.Position()
}

func (m *Model) pan(dx, dy int) {
	c := m.canvas()
	step := c.w / 4
	if dy != 0 {
		step = c.h / 4
	}
	view := m.scene.View()
	center := c.unproject(c.w/2+dx*step, c.h/2+dy*step)
	view.Lat, view.Lng = center.Lat, center.Lng
	m.manager.SetView(view)
}

func (m *Model) zoom(delta float64) {
	view := m.scene.View()
	view.Zoom = math.Max(minZoom, math.Min(maxZoom, view.Zoom+delta))
	m.manager.SetView(view)
	m.status = fmt.Sprintf("zoom %.0f", view.Zoom)
}

func (m *Model) toggleLayer() {
	it := m.focused()
	if it == nil {
		return
	}
	for _, l := range m.scene.Layers() {
		if l.Name == it.Category() {
			m.scene.SetLayerVisible(l.Name, !l.Visible)
			m.status = fmt.Sprintf("layer %s visible: %v", l.Name, !l.Visible)
			return
		}
	}
}

func (m Model) save(name string) string {
	data, err := m.manager.Export("\t", true)
	if err != nil {
		return "save failed: " + err.Error()
	}
	if err := m.saves.Save(context.Background(), name, data); err != nil {
		return "save failed: " + err.Error()
	}
	m.logger.Info("layout saved", "name", name)
	return fmt.Sprintf("saved %q", name)
}

func (m Model) load(name string) string {
	env, err := m.saves.Load(context.Background(), name)
	if err != nil {
		m.logger.Warn("load failed", "name", name, "error", err)
		return "load failed: " + firstLine(err.Error())
	}
	if err := m.manager.ReplaceEnvelope(env); err != nil {
		return "load failed: " + err.Error()
	}
	return fmt.Sprintf("loaded %q", name)
}

func (m Model) copyToClipboard() string {
	if m.clipboard == nil {
		return "no clipboard"
	}
	data, err := m.manager.Export("\t", true)
	if err != nil {
		return "export failed: " + err.Error()
	}
	if err := m.clipboard.WriteAll(string(data)); err != nil {
		return "clipboard: " + err.Error()
	}
	return fmt.Sprintf("exported %d items to clipboard", len(m.manager.Items()))
}

func (m Model) pasteFromClipboard() string {
	if m.clipboard == nil {
		return "no clipboard"
	}
	text, err := m.clipboard.ReadAll()
	if err != nil {
		return "clipboard: " + err.Error()
	}
	if err := m.manager.Replace("Clipboard", []byte(text)); err != nil {
		m.logger.Warn("import failed", "error", err)
		return "import failed: " + firstLine(err.Error())
	}
	return fmt.Sprintf("imported %d items", len(m.manager.Items()))
}

func (m Model) exportPNG() string {
	var buf bytes.Buffer
	if err := export.RenderPNG(&buf, m.scene.Compile(), export.DefaultPNGOptions()); err != nil {
		return "png export failed: " + err.Error()
	}
	dir := m.exportDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "png export failed: " + err.Error()
	}
	path := filepath.Join(dir, "festmap-"+typeid.NewExportID()+".png")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "png export failed: " + err.Error()
	}
	return "wrote " + path
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// --- View ---

func (m Model) canvas() *canvas {
	w := m.width - panelWidth - 2
	h := m.height - 4
	return newCanvas(w, h, m.scene.View())
}

func (m Model) View() string {
	c := m.canvas()
	var focusID string
	if it := m.focused(); it != nil {
		focusID = it.ID()
	}
	for _, cmd := range m.scene.Compile() {
		c.draw(cmd)
	}
	for _, cmd := range m.scene.Compile() {
		if cmd.ObjectID == focusID {
			x, y := c.project(anchor(cmd))
			c.text(x+1, y, "‹"+cmd.Tooltip, "")
		}
	}

	mapView := boxStyle.Width(c.w + 2).Render(strings.Join(c.lines(), "\n"))
	body := lipgloss.JoinHorizontal(lipgloss.Top, mapView, m.panel())

	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusLine())
}

func anchor(cmd render.DrawCommand) geo.LatLng {
	if len(cmd.LatLngs) == 0 {
		return geo.LatLng{}
	}
	if cmd.Op == render.KindPolygon {
		return geo.BoundsOf(cmd.LatLngs...).Center()
	}
	return cmd.LatLngs[0]
}

func (m Model) panel() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("festmap") + "\n")

	if m.help {
		b.WriteString(helpText)
		return boxStyle.Width(panelWidth - 2).Render(b.String())
	}

	if it := m.focused(); it != nil {
		fmt.Fprintf(&b, "focus: %s (%s)\n", it.Name(), it.Type())
	}

	selected := m.manager.Selected()
	fmt.Fprintf(&b, "selected: %d of %d\n", len(selected), len(m.manager.Items()))
	if len(selected) == 1 {
		for _, f := range selected[0].Fields() {
			fmt.Fprintf(&b, "  %-10s %s\n", f.Label, f.Value)
		}
	}

	b.WriteString("\n" + titleStyle.Render("layers") + "\n")
	for _, l := range m.scene.Layers() {
		mark := "x"
		if !l.Visible {
			mark = " "
		}
		fmt.Fprintf(&b, "[%s] %s (%d)\n", mark, l.Name, l.Count)
	}

	if m.showMaterials {
		b.WriteString("\n" + titleStyle.Render("materials") + "\n")
		b.WriteString(m.manager.MaterialList() + "\n")
	}

	var hist []string
	if m.manager.CanUndo() {
		hist = append(hist, "undo")
	}
	if m.manager.CanRedo() {
		hist = append(hist, "redo")
	}
	if len(hist) > 0 {
		b.WriteString("\n" + dimStyle.Render(strings.Join(hist, " · ")) + "\n")
	}

	return boxStyle.Width(panelWidth - 2).Render(b.String())
}

func (m Model) statusLine() string {
	switch m.mode {
	case modeSaveName:
		return "save as: " + m.input + "█"
	case modeLoadName:
		return "load: " + m.input + "█"
	}
	if strings.Contains(m.status, "failed") {
		return errorStyle.Render(m.status)
	}
	return dimStyle.Render(m.status)
}

const helpText = `tab/shift+tab  focus item
enter          select focused
space          toggle focused
esc            deselect all
1-9, 0         add palette item
[ ]            rotate selection
shift+arrows   move selection
arrows + -     pan and zoom
ctrl+c/x/v     copy, cut, paste
ctrl+z/y       undo, redo
del            delete selection
v              toggle layer
m              material list
s / l          save / load
y / p          clipboard export/import
P              export png
q              quit
`
