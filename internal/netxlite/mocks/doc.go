// Package mocks contains mocks for netxlite types.
package mocks
