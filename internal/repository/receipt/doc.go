// Package receipt persists the build receipt of the last successful run.
//
// The FileRepository stores the receipt as JSON next to the produced packages.
// The document is a protobuf Struct encoded with protojson, and the timestamp uses
// the well-known Timestamp JSON mapping.
package receipt
