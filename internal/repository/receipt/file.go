package receipt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/oshokin/scx-installer/internal/domain/build"
	"github.com/oshokin/scx-installer/internal/fsutil"
)

// Filename is the receipt file name inside the target directory.
const Filename = "scx-build-receipt.json"

const fileMode = 0o644

// Repository defines persistence operations for build receipts.
type Repository interface {
	Load(ctx context.Context) (*build.Receipt, error)
	Save(ctx context.Context, receipt *build.Receipt) error
}

// FileRepository persists the receipt to a JSON file.
type FileRepository struct {
	fs   *fsutil.FS
	path string
	// mu protects concurrent access to the receipt file.
	mu sync.Mutex
}

var (
	// ErrNotFound is returned when no receipt has been written yet.
	ErrNotFound = errors.New("receipt not found")

	errMalformed = errors.New("malformed receipt")
)

// NewFileRepository creates a repository that reads and writes the receipt in dir.
func NewFileRepository(fs *fsutil.FS, dir string) *FileRepository {
	return &FileRepository{
		fs:   fs,
		path: filepath.Join(dir, Filename),
	}
}

// Path returns the location of the receipt file.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the receipt from disk.
func (r *FileRepository) Load(_ context.Context) (*build.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := readReceipt(r.fs, r.path)
	if err != nil {
		return nil, err
	}

	var doc structpb.Struct
	if err = protojson.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("decode receipt file: %w", err)
	}

	return fromProto(&doc)
}

// Save writes the receipt to disk.
func (r *FileRepository) Save(_ context.Context, receipt *build.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := toProto(receipt)
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}

	marshalOptions := protojson.MarshalOptions{
		Multiline: true,
		Indent:    "  ",
	}

	data, err := marshalOptions.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}

	if err = r.fs.WriteFile(r.path, data, fileMode); err != nil {
		return fmt.Errorf("write receipt file: %w", err)
	}

	return nil
}

func readReceipt(fs *fsutil.FS, path string) ([]byte, error) {
	exists, err := fs.Exists(path)
	if err != nil {
		return nil, fmt.Errorf("read receipt file: %w", err)
	}

	if !exists {
		return nil, ErrNotFound
	}

	contents, err := fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read receipt file: %w", err)
	}

	return contents, nil
}

// toProto converts the receipt into a protobuf Struct.
func toProto(receipt *build.Receipt) (*structpb.Struct, error) {
	fields := map[string]any{
		"format":       receipt.Format,
		"artifact":     receipt.Artifact,
		"version":      receipt.Version,
		"release":      receipt.Release,
		"platform":     receipt.Platform,
		"objects":      receipt.Objects,
		"tool_version": receipt.ToolVersion,
	}

	if !receipt.Timestamp.IsZero() {
		ts, err := protojson.Marshal(timestamppb.New(receipt.Timestamp))
		if err != nil {
			return nil, err
		}

		fields["timestamp"] = strings.Trim(strings.TrimSpace(string(ts)), `"`)
	}

	if a := receipt.Actor; a != nil {
		fields["actor"] = map[string]any{
			"hostname": a.Hostname,
			"username": a.Username,
			"group":    a.Group,
		}
	}

	return structpb.NewStruct(fields)
}

// fromProto converts a protobuf Struct into the receipt.
func fromProto(doc *structpb.Struct) (*build.Receipt, error) {
	f := doc.GetFields()

	receipt := &build.Receipt{
		Format:      f["format"].GetStringValue(),
		Artifact:    f["artifact"].GetStringValue(),
		Version:     f["version"].GetStringValue(),
		Release:     f["release"].GetStringValue(),
		Platform:    f["platform"].GetStringValue(),
		Objects:     int(f["objects"].GetNumberValue()),
		ToolVersion: f["tool_version"].GetStringValue(),
	}

	if text := f["timestamp"].GetStringValue(); text != "" {
		var ts timestamppb.Timestamp
		if err := protojson.Unmarshal([]byte(`"`+text+`"`), &ts); err != nil {
			return nil, fmt.Errorf("%w: timestamp: %w", errMalformed, err)
		}

		receipt.Timestamp = ts.AsTime()
	}

	if actor := f["actor"].GetStructValue(); actor != nil {
		a := actor.GetFields()
		receipt.Actor = &build.Actor{
			Hostname: a["hostname"].GetStringValue(),
			Username: a["username"].GetStringValue(),
			Group:    a["group"].GetStringValue(),
		}
	}

	return receipt, nil
}
