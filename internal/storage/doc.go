// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage is the optional on-disk archive of conversations.
//
// Conversations live in memory for the life of the process. When the user
// opts in with [storage] persist = true, every changed conversation is
// written through to a SQLite database and the list is restored at startup.
//
// # Usage
//
//	arch, err := storage.Open(storage.DefaultPath())
//	defer arch.Close()
//	convs, err := arch.LoadAll()
//	st := store.New(store.Options{Initial: store.State{Conversations: convs}, Archive: arch})
package storage
