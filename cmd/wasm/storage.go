//go:build js && wasm

package main

import (
	"context"
	"sort"
	"strings"
	"syscall/js"

	"github.com/festmap/festmap/backend-go/internal/store"
)

// localStorage keeps named saves in the browser's window.localStorage.
type localStorage struct {
	prefix string
	ls     js.Value
}

func newLocalStorage(prefix string) *localStorage {
	return &localStorage{prefix: prefix, ls: js.Global().Get("localStorage")}
}

func (l *localStorage) Get(_ context.Context, key string) (string, error) {
	v := l.ls.Call("getItem", l.prefix+key)
	if v.IsNull() || v.IsUndefined() {
		return "", store.ErrNotFound
	}
	return v.String(), nil
}

func (l *localStorage) Set(_ context.Context, key, value string) error {
	l.ls.Call("setItem", l.prefix+key, value)
	return nil
}

func (l *localStorage) Remove(_ context.Context, key string) error {
	l.ls.Call("removeItem", l.prefix+key)
	return nil
}

func (l *localStorage) ListKeys(_ context.Context) ([]string, error) {
	n := l.ls.Get("length").Int()
	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		k := l.ls.Call("key", i).String()
		if strings.HasPrefix(k, l.prefix) {
			keys = append(keys, strings.TrimPrefix(k, l.prefix))
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (l *localStorage) Close() error { return nil }
