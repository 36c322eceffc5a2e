// Package probe checks whether external URLs are reachable.
//
// A probe sends HEAD first and falls back to GET when the server answers
// 405 Method Not Allowed or 403 Forbidden. Any status below 400 is success.
// Transient failures (transport errors, timeouts, 408, 429 and 5xx) are
// retried under a fixed-backoff retry.Policy; other 4xx answers are final.
// Outcomes are cached per exact URL for the lifetime of a Checker, and
// concurrent checks of one URL share a single probe.
package probe
