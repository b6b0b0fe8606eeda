// Package common holds helpers shared by several services.
//
// It detects the current system actor (hostname, username and primary group)
// recorded in build receipts and used to hand the staging tree back after a build.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
