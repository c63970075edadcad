// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

/*
Package recommend builds personalized show suggestions.

Recommender is collaborative: it samples a few seed shows from the user's
library, asks TMDB for each seed's recommendations concurrently, merges
the results, removes anything already in the library, and returns a
random sample.

Assistant is conversational: it renders a prompt from the user's bio,
recent lists and query, makes one JSON-mode model call, and parses the
reply strictly into a short answer plus a list of TMDB show IDs.
ResolveShows turns those IDs into displayable shows.

Neither entry point returns an error. Upstream failures degrade to an
empty result or the fixed apology and are logged and counted.
*/
package recommend
