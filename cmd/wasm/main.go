//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"syscall/js"

	"github.com/festmap/festmap/backend-go/internal/document"
	"github.com/festmap/festmap/backend-go/internal/saves"
	"github.com/festmap/festmap/backend-go/internal/session"
	"github.com/festmap/festmap/backend-go/internal/typeid"
)

var sess *session.Session

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	view := document.Viewport{Lat: 49.02, Lng: 8.42317, Zoom: 13}
	sess = session.New(typeid.NewSessionID(), session.Options{
		View:  view,
		Saves: saves.NewService(newLocalStorage("festmap:")),
	})

	// Create the editor API object
	festmapEditor := js.Global().Get("Object").New()

	// Messages use the websocket protocol: one JSON message in, a JSON
	// array of replies out.
	festmapEditor.Set("welcome", js.FuncOf(welcome))
	festmapEditor.Set("handle", js.FuncOf(handle))

	// Register on global scope
	js.Global().Set("festmapEditor", festmapEditor)

	// Signal that WASM is ready
	js.Global().Set("festmapWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func welcome(this js.Value, args []js.Value) interface{} {
	return replies(sess.Welcome(context.Background(), "local"))
}

func handle(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing message JSON"})
	}

	var msg session.Message
	if err := json.Unmarshal([]byte(args[0].String()), &msg); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}

	return replies(sess.Handle(context.Background(), &msg))
}

func replies(msgs []*session.Message) interface{} {
	data, err := json.Marshal(msgs)
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(string(data))
}
