package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/festmap/festmap/backend-go/internal/document"
	"github.com/festmap/festmap/backend-go/internal/engine"
	"github.com/festmap/festmap/backend-go/internal/item"
	"github.com/festmap/festmap/backend-go/internal/render"
	"github.com/festmap/festmap/backend-go/internal/saves"
)

var (
	ErrUnknownObject  = errors.New("unknown object")
	ErrSavesDisabled  = errors.New("saves are not available")
	ErrUnknownMessage = errors.New("unknown message type")
	ErrInvalidPayload = errors.New("invalid payload")
)

type Options struct {
	View         document.Viewport
	HistoryLimit int
	// Saves is optional; without it save.* messages fail.
	Saves  *saves.Service
	Logger *slog.Logger
}

// Session is one editing session: a Scene standing in for the browser map
// widget and the Manager editing it.
type Session struct {
	mu      sync.Mutex
	id      string
	scene   *render.Scene
	manager *engine.Manager
	saves   *saves.Service
	logger  *slog.Logger

	selectionDirty bool
	lastMaterials  string
}

func New(id string, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("session", id)

	scene := render.NewScene(opts.View)
	s := &Session{
		id:     id,
		scene:  scene,
		saves:  opts.Saves,
		logger: logger,
	}
	s.manager = engine.New(scene,
		engine.WithLogger(logger),
		engine.WithHistoryLimit(opts.HistoryLimit),
	)
	s.manager.OnSelectionChanged(func([]*item.Item) { s.selectionDirty = true })
	s.manager.OnItemMutated(func(it *item.Item) {
		if it.Selected() {
			s.selectionDirty = true
		}
	})
	return s
}

func (s *Session) ID() string { return s.id }

// Welcome greets a newly connected client and sends the initial state.
func (s *Session) Welcome(ctx context.Context, clientID string) []*Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*Message{newMessage(TypeWelcome, WelcomePayload{
		ClientID: clientID,
		View:     s.scene.View(),
		Palette:  document.Palette(),
	})}
	s.selectionDirty = true
	s.lastMaterials = "\x00"
	out = append(out, s.stateLocked()...)
	if s.saves != nil {
		if msg, err := s.savesMessage(ctx); err == nil {
			out = append(out, msg)
		}
	}
	return out
}

// Handle applies one client message and returns the replies: the direct
// answer (if any) followed by the state that changed.
func (s *Session) Handle(ctx context.Context, msg *Message) []*Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply, err := s.dispatch(ctx, msg)
	var out []*Message
	if err != nil {
		s.logger.Debug("message failed", "type", msg.Type, "error", err)
		out = append(out, errorMessage(err))
	}
	if reply != nil {
		out = append(out, reply)
	}
	return append(out, s.stateLocked()...)
}

func decode(msg *Message, v any) error {
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("%s: %w: %v", msg.Type, ErrInvalidPayload, err)
	}
	return nil
}

func (s *Session) dispatch(ctx context.Context, msg *Message) (*Message, error) {
	switch msg.Type {
	case TypeInputClick:
		var p ClickPayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		return nil, s.click(p)

	case TypeInputContext:
		var p ClickPayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		ev := render.Event{Type: render.EventContextMenu, Button: render.ButtonRight}
		if p.LatLng != nil {
			ev.LatLng = *p.LatLng
		}
		if !s.scene.Fire(p.ObjectID, ev) {
			return nil, fmt.Errorf("%q: %w", p.ObjectID, ErrUnknownObject)
		}
		return nil, nil

	case TypeInputDrag:
		var p DragPayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		if !s.scene.Drag(p.ObjectID, p.LatLng) {
			return nil, fmt.Errorf("%q: %w", p.ObjectID, ErrUnknownObject)
		}
		return nil, nil

	case TypeInputMap:
		var ev render.Event
		if err := decode(msg, &ev); err != nil {
			return nil, err
		}
		s.scene.MapEvent(ev)
		if ev.Type == render.EventClick {
			s.manager.DeselectAll()
		}
		return nil, nil

	case TypeInputKey:
		var k engine.Key
		if err := decode(msg, &k); err != nil {
			return nil, err
		}
		s.manager.HandleKey(k)
		return nil, nil

	case TypeFieldSet:
		var p FieldSetPayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		it, ok := s.manager.Lookup(p.ObjectID)
		if !ok {
			return nil, fmt.Errorf("%q: %w", p.ObjectID, ErrUnknownObject)
		}
		return nil, s.manager.SetField(it, p.Key, p.Value)

	case TypeItemAdd:
		var p ItemAddPayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		return nil, s.addItem(p)

	case TypeViewSet:
		var view document.Viewport
		if err := decode(msg, &view); err != nil {
			return nil, err
		}
		s.manager.SetView(view)
		return nil, nil

	case TypeLayerToggle:
		var p LayerTogglePayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		s.scene.SetLayerVisible(p.Name, p.Visible)
		return nil, nil

	case TypeSaveStore, TypeSaveLoad, TypeSaveDelete, TypeSaveList:
		return s.handleSave(ctx, msg)

	case TypeDocImport:
		var p DocImportPayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		return nil, s.manager.Replace("import", []byte(p.Data))

	case TypeDocExport:
		var p DocExportPayload
		if len(msg.Payload) > 0 {
			if err := decode(msg, &p); err != nil {
				return nil, err
			}
		}
		sep := p.Separator
		if sep == "" {
			sep = "\t"
		}
		data, err := s.manager.Export(sep, true)
		if err != nil {
			return nil, err
		}
		return newMessage(TypeExport, ExportPayload{Data: string(data)}), nil
	}

	return nil, fmt.Errorf("%q: %w", msg.Type, ErrUnknownMessage)
}

func (s *Session) click(p ClickPayload) error {
	if p.ObjectID == "" {
		s.manager.DeselectAll()
		return nil
	}
	if p.LatLng == nil {
		if !s.scene.Click(p.ObjectID, p.Ctrl) {
			return fmt.Errorf("%q: %w", p.ObjectID, ErrUnknownObject)
		}
		return nil
	}
	if !s.scene.Fire(p.ObjectID, render.Event{Type: render.EventClick, LatLng: *p.LatLng, Ctrl: p.Ctrl}) {
		return fmt.Errorf("%q: %w", p.ObjectID, ErrUnknownObject)
	}
	return nil
}

func (s *Session) addItem(p ItemAddPayload) error {
	if p.Template != "" {
		_, err := s.manager.AddFromTemplate(p.Template)
		return err
	}
	if p.Record == nil {
		return fmt.Errorf("item.add needs a template or a record: %w", ErrInvalidPayload)
	}
	s.manager.PushHistorySnapshot()
	_, err := s.manager.AddItem(*p.Record)
	return err
}

func (s *Session) handleSave(ctx context.Context, msg *Message) (*Message, error) {
	if s.saves == nil {
		return nil, ErrSavesDisabled
	}

	var p SavePayload
	if msg.Type != TypeSaveList {
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
	}

	switch msg.Type {
	case TypeSaveStore:
		data, err := s.manager.Export("\t", true)
		if err != nil {
			return nil, err
		}
		if err := s.saves.Save(ctx, p.Name, data); err != nil {
			return nil, err
		}
		s.logger.Info("layout saved", "name", p.Name, "items", len(s.manager.Items()))
	case TypeSaveLoad:
		env, err := s.saves.Load(ctx, p.Name)
		if err != nil {
			return nil, err
		}
		if err := s.manager.ReplaceEnvelope(env); err != nil {
			return nil, err
		}
		return nil, nil
	case TypeSaveDelete:
		if err := s.saves.Delete(ctx, p.Name); err != nil {
			return nil, err
		}
	}
	return s.savesMessage(ctx)
}

func (s *Session) savesMessage(ctx context.Context) (*Message, error) {
	names, err := s.saves.List(ctx)
	if err != nil {
		return nil, err
	}
	return newMessage(TypeSaves, SavesPayload{Names: names}), nil
}

// stateLocked returns the scene and, when they changed, the selection and
// the material list.
func (s *Session) stateLocked() []*Message {
	out := []*Message{newMessage(TypeSceneDraw, SceneDrawPayload{
		Commands: s.scene.Compile(),
		Layers:   s.scene.Layers(),
		View:     s.scene.View(),
		CanUndo:  s.manager.CanUndo(),
		CanRedo:  s.manager.CanRedo(),
	})}

	if s.selectionDirty {
		s.selectionDirty = false
		selected := s.manager.Selected()
		p := SelectionPayload{Items: make([]SelectedItem, len(selected))}
		for i, it := range selected {
			p.Items[i] = SelectedItem{ID: it.ID(), Type: it.Type(), Fields: it.Fields()}
		}
		out = append(out, newMessage(TypeSelection, p))
	}

	counts := s.manager.MaterialCounts()
	text := s.manager.MaterialList()
	if text != s.lastMaterials {
		s.lastMaterials = text
		out = append(out, newMessage(TypeMaterials, MaterialsPayload{Counts: counts, Text: text}))
	}
	return out
}

func errorMessage(err error) *Message {
	p := ErrorPayload{Message: err.Error()}
	var de *document.DeserializationError
	if errors.As(err, &de) {
		p.Message = fmt.Sprintf("%s might be corrupted: %v", de.Source, de.Err)
		p.Payload = de.Payload
	}
	return newMessage(TypeError, p)
}
