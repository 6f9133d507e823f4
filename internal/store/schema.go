package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS investments (
    id                   TEXT PRIMARY KEY,
    name                 TEXT NOT NULL,
    type                 TEXT NOT NULL,
    invested_amount      TEXT NOT NULL,
    current_value        TEXT NOT NULL,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS calculations (
    id                   TEXT PRIMARY KEY,
    kind                 TEXT NOT NULL,
    input_json           TEXT NOT NULL,
    result_json          TEXT NOT NULL,
    created_at           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_investments_type ON investments(type);
CREATE INDEX IF NOT EXISTS idx_calculations_created ON calculations(created_at);
`
