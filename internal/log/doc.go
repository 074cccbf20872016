// Package log provides a slog.Handler wrapper that redacts credentials
// before log records reach the underlying handler. Audit input files
// sometimes contain URLs with embedded basic-auth userinfo, and site
// configs may carry cookies or authorization headers; neither belongs in
// log output.
package log
