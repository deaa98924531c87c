// Package model contains the shared interfaces and data structures.
//
// # Criteria for adding a type to this package
//
// This package should contain two kinds of types:
//
// 1. interfaces shared by several packages, which allow us to keep
// unrelated code separate and make unit testing easier;
//
// 2. plain data shared across packages (e.g., an [Endpoint]).
//
// This package should not contain logic, unless the logic is strictly
// related to the data structures defined here.
//
// # Content of this package
//
// - endpoint.go: the address+port pair produced by resolving and
// returned when querying a socket's local or remote end;
//
// - logger.go: apex/log compatible logger definitions.
package model
