//go:build js && wasm

package main

import (
	"fmt"
	"syscall/js"
)

// localStorage persists each store under its own window.localStorage key,
// the same keys the browser front-end uses.
type localStorage struct {
	ls js.Value
}

func newLocalStorage() (*localStorage, bool) {
	ls := js.Global().Get("localStorage")
	if ls.IsUndefined() || ls.IsNull() {
		return nil, false
	}
	return &localStorage{ls: ls}, true
}

func (s *localStorage) Load(key string) (value []byte, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("localStorage.getItem(%q): %v", key, r)
		}
	}()
	v := s.ls.Call("getItem", key)
	if v.IsNull() || v.IsUndefined() {
		return nil, false, nil
	}
	return []byte(v.String()), true, nil
}

func (s *localStorage) Save(key string, value []byte) (err error) {
	// setItem throws when the quota is exceeded.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("localStorage.setItem(%q): %v", key, r)
		}
	}()
	s.ls.Call("setItem", key, string(value))
	return nil
}

func (s *localStorage) Close() error {
	return nil
}
