// Package tables holds the PIP file layouts.
// Column order in every layout matches the field order of the file and the
// column order of the staging table.
package tables

import "github.com/JonMunkholm/cusip/internal/core"

// PIP returns the issuer, issue and issue attribute layouts in load order.
func PIP() []core.FileConfig {
	return []core.FileConfig{
		issuer(),
		issue(),
		issueAttribute(),
	}
}

// Registry builds a registry over PIP.
func Registry() (*core.Registry, error) {
	return core.NewRegistry(PIP()...)
}
