package platform

import (
	_ "embed"
	"sync"
)

//go:embed platforms.star
var defaultTableSource []byte

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// DefaultSource returns the platform definitions Default is built from.
func DefaultSource() []byte {
	return defaultTableSource
}

// Default returns the built-in platform table. It is loaded on first use and
// shared afterwards.
func Default() *Table {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = Load("platforms.star", defaultTableSource)
	})
	if defaultErr != nil {
		panic("platform: invalid built-in table: " + defaultErr.Error())
	}
	return defaultTable
}
