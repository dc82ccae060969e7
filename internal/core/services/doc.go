// Package services implements the driving ports: the per-file pipeline,
// the compliance runner and publisher it sequences, and the settings and
// index read services used by the CLI.
//
// Services depend only on domain and the port interfaces; adapters are
// injected by internal/app.
package services
