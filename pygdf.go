package pygdf

import (
	"github.com/kkraus14/pygdf/core"
	"github.com/kkraus14/pygdf/mem"
	"github.com/kkraus14/pygdf/ps"
	"github.com/kkraus14/pygdf/table"
)

type Instance struct {
	Persistence *ps.Persistence
}

func Open(persistence *ps.Persistence) *Instance {
	return &Instance{
		Persistence: persistence,
	}
}

// Save persists a table under the given name. The table stays owned
// by the caller; only its view is read.
func (instance *Instance) Save(name string, schema core.Schema, tbl *table.Table, identity core.Identity) (ps.Transaction, error) {
	instance.Persistence.Lock()
	defer instance.Persistence.Unlock()
	return instance.Persistence.SaveSnapshot(name, schema, tbl.View(), identity)
}

// Load rebuilds an owned table from the named snapshot. The caller
// must release the returned table.
func (instance *Instance) Load(name string, pool mem.Pool) (core.Schema, *table.Table, error) {
	instance.Persistence.RLock()
	defer instance.Persistence.RUnlock()
	return instance.Persistence.LoadSnapshot(name, pool)
}

// Snapshots lists the names of all stored snapshots.
func (instance *Instance) Snapshots() []string {
	instance.Persistence.RLock()
	defer instance.Persistence.RUnlock()
	return instance.Persistence.ListSnapshots()
}

// Drop removes the named snapshot.
func (instance *Instance) Drop(name string, identity core.Identity) (ps.Transaction, error) {
	instance.Persistence.Lock()
	defer instance.Persistence.Unlock()
	return instance.Persistence.DropSnapshot(name, identity)
}
