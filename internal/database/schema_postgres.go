package database

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS tasks (
    variant_id      TEXT PRIMARY KEY,
    product_title   TEXT NOT NULL DEFAULT '',
    variant_title   TEXT NOT NULL DEFAULT '',
    sku             TEXT NOT NULL DEFAULT '',
    image_url       TEXT NOT NULL DEFAULT '',
    total_quantity  INTEGER NOT NULL DEFAULT 0 CHECK (total_quantity >= 0),
    made_quantity   INTEGER NOT NULL DEFAULT 0 CHECK (made_quantity >= 0),
    status          TEXT NOT NULL DEFAULT 'pending',
    created_at      TIMESTAMPTZ NOT NULL,
    updated_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
    order_id        TEXT PRIMARY KEY,
    order_name      TEXT NOT NULL DEFAULT '',
    order_date      TIMESTAMPTZ NOT NULL,
    total_items     INTEGER NOT NULL DEFAULT 0 CHECK (total_items >= 0),
    fulfilled_items INTEGER NOT NULL DEFAULT 0 CHECK (fulfilled_items >= 0),
    status          TEXT NOT NULL DEFAULT 'pending',
    created_at      TIMESTAMPTZ NOT NULL,
    updated_at      TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
CREATE INDEX IF NOT EXISTS idx_orders_date ON orders(order_date);

CREATE TABLE IF NOT EXISTS order_line_items (
    line_item_id       TEXT PRIMARY KEY,
    order_id           TEXT NOT NULL REFERENCES orders(order_id) ON DELETE CASCADE,
    variant_id         TEXT NOT NULL,
    product_title      TEXT NOT NULL DEFAULT '',
    variant_title      TEXT NOT NULL DEFAULT '',
    sku                TEXT NOT NULL DEFAULT '',
    image_url          TEXT NOT NULL DEFAULT '',
    quantity           INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    fulfilled_quantity INTEGER NOT NULL DEFAULT 0 CHECK (fulfilled_quantity >= 0),
    created_at         TIMESTAMPTZ NOT NULL,
    updated_at         TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_line_items_variant ON order_line_items(variant_id);
CREATE INDEX IF NOT EXISTS idx_line_items_order ON order_line_items(order_id);

CREATE TABLE IF NOT EXISTS sync_runs (
    id             TEXT PRIMARY KEY,
    status         TEXT NOT NULL,
    started_at     TIMESTAMPTZ NOT NULL,
    finished_at    TIMESTAMPTZ NOT NULL,
    duration_ms    BIGINT NOT NULL DEFAULT 0,
    orders_fetched INTEGER NOT NULL DEFAULT 0,
    orders_saved   INTEGER NOT NULL DEFAULT 0,
    orders_skipped INTEGER NOT NULL DEFAULT 0,
    orders_removed INTEGER NOT NULL DEFAULT 0,
    tasks_updated  INTEGER NOT NULL DEFAULT 0,
    error_message  TEXT
);

CREATE INDEX IF NOT EXISTS idx_sync_runs_started ON sync_runs(started_at);
`
