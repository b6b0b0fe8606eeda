// Package materializer creates the staging tree on disk from a bound manifest.
package materializer
