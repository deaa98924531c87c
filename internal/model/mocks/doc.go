// Package mocks contains mocks for model types.
package mocks
