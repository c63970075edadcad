// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

/*
Package services provides the suture.Service implementations run by the
supervisor tree.

  - HTTPServerService: ListenAndServe with graceful Shutdown on cancel.
  - CacheWriterService: a bounded queue of metadata cache upserts. Enqueue
    never blocks; a full queue drops the job and counts it. Remaining jobs
    are drained on shutdown within a timeout.
  - CacheJanitorService: periodically evicts expired TMDB cache entries.

Each service implements fmt.Stringer so suture events name it.
*/
package services
