// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package tmdb

import "strings"

// Image sizes served by the TMDB image CDN.
const (
	ImageSizeW500     = "w500"
	ImageSizeOriginal = "original"

	DefaultImageBaseURL = "https://image.tmdb.org/t/p"
)

// ImageURL builds a CDN URL for a poster, backdrop or still path. An empty
// path yields "". Unknown sizes fall back to w500.
func ImageURL(path, size string) string {
	return ImageURLWithBase(DefaultImageBaseURL, path, size)
}

// ImageURLWithBase is ImageURL against a configured CDN base.
func ImageURLWithBase(base, path, size string) string {
	if path == "" {
		return ""
	}
	if size != ImageSizeOriginal {
		size = ImageSizeW500
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimSuffix(base, "/") + "/" + size + path
}
