package db

const deliveriesSchemaV1 = `
CREATE TABLE IF NOT EXISTS deliveries (
    id                TEXT PRIMARY KEY,
    event_type        TEXT NOT NULL,
    primary_channel   TEXT NOT NULL,
    retry_score       REAL NOT NULL,
    demo_mode         TEXT,
    created           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS attempts (
    delivery_id   TEXT NOT NULL REFERENCES deliveries(id) ON DELETE CASCADE,
    seq           INTEGER NOT NULL,
    channel       TEXT NOT NULL,
    status        TEXT NOT NULL,
    reason        TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (delivery_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_deliveries_created ON deliveries(created);
`
