// Package integration contains integration records configured by an
// administrator. Saving one of them may reconfigure the application, see
// the after-save hooks in the application layer.
package integration
