// Package cli implements the ingest command line with cobra.
//
// Commands are package-level variables registered on rootCmd in init. The
// services they call are package variables too, built from --config on first
// use unless a test has already set them.
package cli
