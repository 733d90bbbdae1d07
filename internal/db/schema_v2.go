package db

// folder is 'inbox' or 'trash'; moving between them never changes the
// delivery timestamp.
const mailboxSchemaV2 = `
CREATE TABLE IF NOT EXISTS mailbox (
    notification_id   TEXT PRIMARY KEY,
    event_type        TEXT NOT NULL,
    delivered_via     TEXT NOT NULL,
    delivered_at      TEXT NOT NULL,
    folder            TEXT NOT NULL CHECK (folder IN ('inbox', 'trash')),
    moved_at          TEXT
);

CREATE INDEX IF NOT EXISTS idx_mailbox_folder ON mailbox(folder, delivered_at);
`
