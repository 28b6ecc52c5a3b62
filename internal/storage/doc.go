// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides client-local preference persistence for docchat.
//
// Preferences are string key-value pairs kept in a small SQLite database
// (modernc.org/sqlite, no cgo) under the config directory. The only key the
// client writes today is the theme flag.
//
// # Usage
//
//	store, err := storage.OpenPreferences(storage.DefaultPath())
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	_ = store.Set(ctx, "theme", "light")
//	theme, ok, err := store.Get(ctx, "theme")
package storage
