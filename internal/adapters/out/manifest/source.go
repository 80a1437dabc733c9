// Package manifest provides the YAML-backed stop sequence source. The
// manifest file is the externally computed delivery plan: an ordered list of
// stops opening and closing with a depot entry, each patient entry carrying
// the order it delivers. The core consumes the ordering as given.
package manifest

import (
	"context"
	"fmt"
	"os"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/stop"
	"coldchain/internal/core/ports"
	"coldchain/internal/pkg/errs"

	"gopkg.in/yaml.v3"
)

// manifestFile is the YAML layout of a delivery manifest.
type manifestFile struct {
	Stops []manifestStop `yaml:"stops"`
}

type manifestStop struct {
	NodeID  string  `yaml:"nodeId"`
	Kind    string  `yaml:"kind"`
	Lat     float64 `yaml:"lat"`
	Lon     float64 `yaml:"lon"`
	OrderID string  `yaml:"orderId,omitempty"`
}

// FileSource loads the stop sequence from a YAML manifest file.
type FileSource struct {
	path string
}

// NewFileSource creates a manifest source reading from the given path.
func NewFileSource(path string) (*FileSource, error) {
	if path == "" {
		return nil, errs.NewValueIsRequiredError("path")
	}
	return &FileSource{path: path}, nil
}

// Load reads and validates the manifest. The sequence must open and close
// with a depot entry; patient entries must carry an order id, depot entries
// must not.
func (s *FileSource) Load(_ context.Context) ([]ports.SequenceEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var file manifestFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	if len(file.Stops) < 2 {
		return nil, errs.NewValueIsInvalidError("manifest must contain at least the opening and closing depot stops")
	}

	entries := make([]ports.SequenceEntry, 0, len(file.Stops))
	for i, raw := range file.Stops {
		entry, err := toEntry(raw)
		if err != nil {
			return nil, fmt.Errorf("manifest stop %d (%s): %w", i, raw.NodeID, err)
		}
		entries = append(entries, entry)
	}

	if entries[0].Kind != stop.KindDepot || entries[len(entries)-1].Kind != stop.KindDepot {
		return nil, errs.NewValueIsInvalidError("manifest must open and close with a depot stop")
	}

	return entries, nil
}

func toEntry(raw manifestStop) (ports.SequenceEntry, error) {
	if raw.NodeID == "" {
		return ports.SequenceEntry{}, errs.NewValueIsRequiredError("nodeId")
	}

	kind, err := parseKind(raw.Kind)
	if err != nil {
		return ports.SequenceEntry{}, err
	}

	position, err := kernel.NewGeoPoint(raw.Lat, raw.Lon)
	if err != nil {
		return ports.SequenceEntry{}, err
	}

	var orderID *kernel.UUID
	switch kind {
	case stop.KindPatient:
		if raw.OrderID == "" {
			return ports.SequenceEntry{}, errs.NewValueIsRequiredError("orderId")
		}
		parsed, err := kernel.UUIDFromString(raw.OrderID)
		if err != nil {
			return ports.SequenceEntry{}, err
		}
		orderID = &parsed
	case stop.KindDepot:
		if raw.OrderID != "" {
			return ports.SequenceEntry{}, errs.NewValueIsInvalidError("depot stops must not carry an orderId")
		}
	}

	return ports.SequenceEntry{
		NodeID:   raw.NodeID,
		Position: position,
		Kind:     kind,
		OrderID:  orderID,
	}, nil
}

func parseKind(raw string) (stop.Kind, error) {
	switch raw {
	case "depot":
		return stop.KindDepot, nil
	case "patient":
		return stop.KindPatient, nil
	default:
		return stop.KindUnknown, errs.NewValueIsInvalidError("kind must be depot or patient")
	}
}
