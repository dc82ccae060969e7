// Package handlers holds the handler families. Each subpackage implements
// driven.Handler: the rules that classify a file name, place the file in the
// hierarchy and prepare it for checking.
package handlers
