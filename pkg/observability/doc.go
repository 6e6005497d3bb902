/*
Package observability turns the session manager's lifecycle hooks into
Prometheus metrics and structured log lines.
*/
package observability
