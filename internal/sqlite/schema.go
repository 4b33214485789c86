package sqlite

// Schema DDL. A database holds exactly one snapshot.
const (
	createSnapshot = `CREATE TABLE IF NOT EXISTS snapshot (
    snapshot_id TEXT PRIMARY KEY,
    capacity INTEGER NOT NULL,
    written_at TEXT NOT NULL
);`

	createEntries = `CREATE TABLE IF NOT EXISTS entries (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE COLLATE NOCASE,
    primary_kind TEXT NOT NULL,
    secondary_kind TEXT NOT NULL
);`

	createLinks = `CREATE TABLE IF NOT EXISTS links (
    from_id INTEGER NOT NULL,
    to_id INTEGER NOT NULL,
    ordinal INTEGER NOT NULL,
    PRIMARY KEY (from_id, to_id)
);`
)

const idxLinksTo = `CREATE INDEX IF NOT EXISTS idx_links_to ON links(to_id);`

// schemaDDL lists the CREATE statements in execution order.
var schemaDDL = []string{
	createSnapshot,
	createEntries,
	createLinks,
	idxLinksTo,
}

// Tables cleared by Save, children first.
var snapshotTables = []string{"links", "entries", "snapshot"}
