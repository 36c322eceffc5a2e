// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic sanitization of sensitive values (API tokens, passwords)
//   - Redaction of credentials embedded in URLs and error messages
//   - Configurable log levels with verbose mode support
//
// # Security Features
//
// The SecureHandler automatically sanitizes sensitive information in log output:
//   - Attributes whose key names a secret (authorization, token, password)
//   - Values that look like secrets (GitHub tokens, Bearer and Basic
//     credentials, JWTs, private key markers)
//   - user:password@ segments of URLs, wherever they appear in a string
//   - token and signature query parameters of probed URLs
//
// Commit ids and report digests are long hexadecimal strings and are left
// alone, so ref lookups stay readable in debug output.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//	logger.Debug("remote ref lookup",
//	    "ref", "4f2c1a9",
//	    "token", os.Getenv("GITHUB_TOKEN"), // logged as ***REDACTED***
//	)
//	slog.SetDefault(logger)
package log
