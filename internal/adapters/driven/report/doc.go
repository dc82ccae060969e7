// Package report delivers failure reports.
//
// Every rejected or failed file produces exactly one domain.Report. The
// reporters here write it as a JSON document to a directory, publish it on a
// NATS subject, or log it. Fanout sends one report through several of them.
package report
