// Package version reports build information for the /info endpoint and the
// startup banner.
//
// Values are stamped at link time:
//
//	go build -ldflags "-X github.com/kbukum/huddle/version.Version=1.2.0" ./cmd/huddle
//
// Anything left unset is filled from the module's embedded VCS settings.
package version
