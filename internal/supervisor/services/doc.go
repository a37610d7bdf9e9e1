// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

// Package services adapts the server's components to suture.Service.
//
//   - HTTPServerService: runs an *http.Server, shutting it down gracefully
//     when the supervisor stops it
//   - PeriodicService: runs a maintenance task on a fixed interval, such as
//     badger value log garbage collection
package services
