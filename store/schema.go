package store

// schemaSQL is the DDL bootstrap run at open. The assignments table is only
// ever rewritten wholesale inside one transaction; template_config is a
// singleton row enforced by the id check.
const schemaSQL = `
-- Finite category set, refreshed wholesale per update cycle
CREATE TABLE IF NOT EXISTS categories (
    id INTEGER PRIMARY KEY,
    label TEXT NOT NULL,
    description TEXT NOT NULL,
    embedding BLOB
);

-- Classification corpus (advisories, topics)
CREATE TABLE IF NOT EXISTS items (
    id TEXT PRIMARY KEY,
    owner TEXT NOT NULL DEFAULT '',
    text TEXT NOT NULL
);

-- Full-refresh output of a classification run
CREATE TABLE IF NOT EXISTS assignments (
    item_id TEXT PRIMARY KEY REFERENCES items(id) ON DELETE CASCADE,
    category_id INTEGER NOT NULL REFERENCES categories(id),
    run_id TEXT NOT NULL,
    assigned_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Slot-branch lookup tables
CREATE TABLE IF NOT EXISTS bookings_availability (
    id INTEGER PRIMARY KEY,
    location_name TEXT NOT NULL,
    slot_date TEXT NOT NULL,
    slot_time TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS advisories (
    id INTEGER PRIMARY KEY,
    entity_id TEXT NOT NULL,
    solution TEXT,
    solution_two TEXT,
    solution_three TEXT
);

CREATE INDEX IF NOT EXISTS idx_availability_location
    ON bookings_availability (location_name, slot_date);
CREATE INDEX IF NOT EXISTS idx_advisories_entity ON advisories (entity_id);

-- Singleton template and ontology configuration
CREATE TABLE IF NOT EXISTS template_config (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    availability_template TEXT NOT NULL DEFAULT '',
    fallback_template TEXT NOT NULL DEFAULT '',
    query_template TEXT NOT NULL DEFAULT '',
    query_template_no_topic TEXT NOT NULL DEFAULT '',
    ontology_query TEXT NOT NULL DEFAULT '',
    property_query TEXT NOT NULL DEFAULT '',
    classes_query TEXT NOT NULL DEFAULT '',
    instructions TEXT NOT NULL DEFAULT '',
    prefixes TEXT NOT NULL DEFAULT '',
    graph TEXT NOT NULL DEFAULT '',
    graph_inferred TEXT NOT NULL DEFAULT '',
    query_example TEXT NOT NULL DEFAULT '',
    gen_template TEXT NOT NULL DEFAULT '',
    topic_extract_template TEXT NOT NULL DEFAULT '',
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`
