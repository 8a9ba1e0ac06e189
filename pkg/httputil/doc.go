// Package httputil provides HTTP utilities for fetching remote sources.
//
// # Overview
//
// This package provides the plumbing used when the packager pulls the live
// UI source from a running server:
//
//   - [Fetch]: GET a URL and return the body, classifying failures
//   - [Retry]: Automatic retry with exponential backoff
//
// # Retry
//
// [Retry] re-runs an operation for transient failures only:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// [Fetch] marks those failures with [RetryableError], so the two compose:
//
//	var body []byte
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    var err error
//	    body, err = httputil.Fetch(ctx, http.DefaultClient, url)
//	    return err
//	})
//
// Any other status is returned immediately as a [StatusError].
package httputil
