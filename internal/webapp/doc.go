// Package webapp provides the browser UIs for auditing and analysis.
//
// Two independent apps are served:
//   - AuditApp: upload a URL list CSV, run the checker over it, browse
//     the results, and download the exportable results table
//   - AnalyzeApp: upload a previously exported results table and browse
//     the pattern and priority views
//
// Design decision: Completed runs and analyses live in an in-memory TTL
// cache rather than server-side sessions. Upload handlers redirect to a
// URL keyed by a generated ID, so results pages are shareable and
// refreshable for the cache lifetime without any session machinery.
package webapp
