// Package build holds the record of a finished packaging run.
package build
