package mir

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"rill/internal/types"
)

// Schema version of the serialized MIR format. Increment when the layout of
// Module or types.Snapshot changes.
const codecSchemaVersion uint16 = 1

type fileEnvelope struct {
	Schema uint16
	Types  types.Snapshot
	Module Module
}

// Encode serializes a module together with its type registry. This is the
// hand-off format between the frontend repository and this backend.
func Encode(m *Module, reg *types.Interner) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("mir: encode of nil module")
	}
	env := fileEnvelope{
		Schema: codecSchemaVersion,
		Types:  reg.Export(),
		Module: *m,
	}
	data, err := msgpack.Marshal(&env)
	if err != nil {
		return nil, fmt.Errorf("mir: encode %s: %w", m.Name, err)
	}
	return data, nil
}

// Decode reverses Encode.
func Decode(data []byte) (*Module, *types.Interner, error) {
	var env fileEnvelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return nil, nil, fmt.Errorf("mir: decode: %w", err)
	}
	if env.Schema != codecSchemaVersion {
		return nil, nil, fmt.Errorf("mir: unsupported schema version %d (want %d)", env.Schema, codecSchemaVersion)
	}
	reg, err := types.FromSnapshot(env.Types)
	if err != nil {
		return nil, nil, fmt.Errorf("mir: decode: %w", err)
	}
	mod := env.Module
	return &mod, reg, nil
}
