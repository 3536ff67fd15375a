// Package testutil provides small deterministic handles and sinks shared by
// package tests.
package testutil
