// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

/*
Package supervisor runs the server's long-lived services under a suture v4
supervisor tree.

The tree has two layers so a failing maintenance task never restarts the HTTP
server:

	cookbook (root)
	├── storage-layer: store maintenance (badger value log GC, audit retention)
	└── api-layer:     HTTP server

Supervisor events (service panics, restarts, backoff) are logged through
sutureslog into the zerolog-backed slog handler from the logging package.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddStorageService(services.NewPeriodicService("badger-gc", 5*time.Minute, store.RunValueLogGC))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	err = tree.Serve(ctx)
*/
package supervisor
