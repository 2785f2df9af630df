package ps

import (
	"encoding/json"
	"fmt"
	"path"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/kkraus14/pygdf/column"
	"github.com/kkraus14/pygdf/core"
	"github.com/kkraus14/pygdf/mem"
	"github.com/kkraus14/pygdf/table"
)

// columnManifest describes one persisted column: its type, counts and
// the blob file names holding its buffers. Nested children are
// described recursively.
type columnManifest struct {
	Type      string           `json:"type"`
	Length    int              `json:"length"`
	NullCount int              `json:"null_count,omitempty"`
	Data      string           `json:"data,omitempty"`
	Validity  string           `json:"validity,omitempty"`
	Children  []columnManifest `json:"children,omitempty"`
}

// snapshotManifest is the manifest.json stored alongside a snapshot's
// buffer blobs.
type snapshotManifest struct {
	Schema  core.Schema      `json:"schema"`
	Rows    int              `json:"rows"`
	Columns []columnManifest `json:"columns"`
}

// SaveSnapshot persists a table under the given name as one commit:
// a manifest plus one blob per buffer. An existing snapshot with the
// same name is replaced in the same commit. The table itself is only
// read through the non-owning view; ownership never transfers to the
// store.
func (p *Persistence) SaveSnapshot(name string, schema core.Schema, view table.View, identity core.Identity) (Transaction, error) {
	if err := p.ensureInitialized(); err != nil {
		return Transaction{}, err
	}
	if schema.NumFields() != view.NumColumns() {
		return Transaction{}, fmt.Errorf("schema has %d fields but table has %d columns", schema.NumFields(), view.NumColumns())
	}

	manifest := snapshotManifest{
		Schema: schema,
		Rows:   view.NumRows(),
	}
	files := make(map[string][]byte)
	for i := 0; i < view.NumColumns(); i++ {
		manifest.Columns = append(manifest.Columns, encodeColumn(view.Column(i), fmt.Sprintf("c%d", i), files))
	}

	manifestBytes, err := json.Marshal(manifest)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	files["manifest.json"] = manifestBytes

	return p.writeSnapshotFiles(name, files, identity, fmt.Sprintf("Saving snapshot %s", name))
}

// writeSnapshotFiles replaces any prior snapshot of the same name and
// writes the new files, all within a single tree update and commit.
func (p *Persistence) writeSnapshotFiles(name string, files map[string][]byte, identity core.Identity, message string) (Transaction, error) {
	currentTree, err := p.getCurrentTree()
	if err != nil {
		return Transaction{}, err
	}

	changes := []TreeChange{{Path: name, IsDelete: true}}
	for filePath, data := range files {
		blobHash, err := p.createBlob(data)
		if err != nil {
			return Transaction{}, fmt.Errorf("failed to create blob for %s: %w", filePath, err)
		}
		changes = append(changes, TreeChange{
			Path:     path.Join(name, filePath),
			BlobHash: blobHash,
		})
	}

	newTree, err := p.batchUpdateTree(currentTree, changes)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to update tree: %w", err)
	}

	txn, err := p.createCommitDirect(newTree, identity, message)
	if err != nil {
		return Transaction{}, err
	}

	if err := p.syncWorktree(); err != nil {
		return Transaction{}, fmt.Errorf("failed to sync worktree: %w", err)
	}

	return txn, nil
}

// encodeColumn records the column's buffers under files and returns
// its manifest node. File names follow the column's position path
// (c0.data, c0.valid, c0.0.data for the first child, ...).
func encodeColumn(v column.View, id string, files map[string][]byte) columnManifest {
	m := columnManifest{
		Type:      v.DataType().String(),
		Length:    v.Len(),
		NullCount: v.NullCount(),
	}
	if data := v.Data(); data != nil {
		m.Data = id + ".data"
		files[m.Data] = data
	}
	if validity := v.Validity(); validity != nil {
		m.Validity = id + ".valid"
		files[m.Validity] = validity
	}
	for i := 0; i < v.NumChildren(); i++ {
		m.Children = append(m.Children, encodeColumn(v.Child(i), fmt.Sprintf("%s.%d", id, i), files))
	}
	return m
}

// LoadSnapshot rebuilds an owned table from a saved snapshot. All
// buffers are allocated from pool; the caller owns the returned table
// and must release it.
func (p *Persistence) LoadSnapshot(name string, pool mem.Pool) (core.Schema, *table.Table, error) {
	if err := p.ensureInitialized(); err != nil {
		return core.Schema{}, nil, err
	}

	manifestBytes, err := p.ReadFileDirect(path.Join(name, "manifest.json"))
	if err != nil {
		return core.Schema{}, nil, fmt.Errorf("snapshot %s: %w", name, ErrSnapshotNotFound)
	}

	var manifest snapshotManifest
	if err := json.Unmarshal(manifestBytes, &manifest); err != nil {
		return core.Schema{}, nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}

	cols := make([]*column.Column, 0, len(manifest.Columns))
	for i, cm := range manifest.Columns {
		col, err := p.decodeColumn(name, cm, pool)
		if err != nil {
			for _, done := range cols {
				done.Release()
			}
			return core.Schema{}, nil, fmt.Errorf("loading column %d of snapshot %s: %w", i, name, err)
		}
		cols = append(cols, col)
	}

	tbl, err := table.NewTable(cols)
	if err != nil {
		for _, col := range cols {
			if col != nil {
				col.Release()
			}
		}
		return core.Schema{}, nil, fmt.Errorf("snapshot %s is corrupt: %w", name, err)
	}

	return manifest.Schema, tbl, nil
}

func (p *Persistence) decodeColumn(name string, m columnManifest, pool mem.Pool) (*column.Column, error) {
	dtype, ok := core.ParseDType(m.Type)
	if !ok {
		return nil, fmt.Errorf("unknown column type %q", m.Type)
	}

	data, err := p.loadBuffer(name, m.Data, pool)
	if err != nil {
		return nil, err
	}
	validity, err := p.loadBuffer(name, m.Validity, pool)
	if err != nil {
		if data != nil {
			data.Release()
		}
		return nil, err
	}

	children := make([]*column.Column, 0, len(m.Children))
	for _, cm := range m.Children {
		child, err := p.decodeColumn(name, cm, pool)
		if err != nil {
			if data != nil {
				data.Release()
			}
			if validity != nil {
				validity.Release()
			}
			for _, done := range children {
				done.Release()
			}
			return nil, err
		}
		children = append(children, child)
	}

	return column.New(dtype, m.Length, data, validity, m.NullCount, children...), nil
}

func (p *Persistence) loadBuffer(name, file string, pool mem.Pool) (*memory.Buffer, error) {
	if file == "" {
		return nil, nil
	}
	raw, err := p.ReadFileDirect(path.Join(name, file))
	if err != nil {
		return nil, fmt.Errorf("reading buffer %s: %w", file, err)
	}
	buf, err := pool.Allocate(len(raw))
	if err != nil {
		return nil, fmt.Errorf("allocating buffer %s: %w", file, err)
	}
	copy(buf.Bytes(), raw)
	return buf, nil
}

// HasSnapshot reports whether a snapshot with the given name exists.
func (p *Persistence) HasSnapshot(name string) bool {
	if !p.IsInitialized() {
		return false
	}
	_, err := p.ReadFileDirect(path.Join(name, "manifest.json"))
	return err == nil
}

// ListSnapshots returns the names of all stored snapshots.
func (p *Persistence) ListSnapshots() []string {
	entries, err := p.ListEntriesDirect(".")
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir && entry.Name != ".git" {
			names = append(names, entry.Name)
		}
	}
	return names
}

// DropSnapshot removes a snapshot and its buffers in one commit.
func (p *Persistence) DropSnapshot(name string, identity core.Identity) (Transaction, error) {
	if !p.HasSnapshot(name) {
		return Transaction{}, fmt.Errorf("snapshot %s: %w", name, ErrSnapshotNotFound)
	}
	return p.DeletePathDirect([]string{name}, identity, fmt.Sprintf("Dropping snapshot %s", name))
}
