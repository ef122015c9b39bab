// Package repository implements data access for venues, events, tickets
// and attendance records on PostgreSQL, with a Redis read-through cache
// for hot event lookups.
//
// Expected schema:
//
//	CREATE TABLE venues (
//	    id            UUID PRIMARY KEY,
//	    name          TEXT NOT NULL,
//	    address       TEXT NOT NULL DEFAULT '',
//	    capacity      INT NOT NULL CHECK (capacity > 0),
//	    opening_time  INT NOT NULL,   -- minutes since midnight
//	    closing_time  INT NOT NULL,   -- minutes since midnight
//	    created_at    TIMESTAMPTZ NOT NULL,
//	    updated_at    TIMESTAMPTZ NOT NULL
//	);
//	CREATE UNIQUE INDEX venues_name_key ON venues (lower(name));
//
//	CREATE TABLE events (
//	    id                 UUID PRIMARY KEY,
//	    name               TEXT NOT NULL,
//	    description        TEXT NOT NULL DEFAULT '',
//	    category           TEXT NOT NULL DEFAULT '',
//	    venue_id           UUID NOT NULL REFERENCES venues(id),
//	    booking_start_time TIMESTAMPTZ NOT NULL,
//	    booking_end_time   TIMESTAMPTZ NOT NULL,
//	    status             TEXT NOT NULL,
//	    rejection_reason   TEXT,
//	    created_by         TEXT NOT NULL,
//	    created_at         TIMESTAMPTZ NOT NULL,
//	    updated_at         TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX events_venue_status_idx ON events (venue_id, status);
//
//	CREATE TABLE tickets (
//	    id              UUID PRIMARY KEY,
//	    event_id        UUID NOT NULL REFERENCES events(id),
//	    user_id         TEXT NOT NULL,
//	    status          TEXT NOT NULL,
//	    qr_payload      TEXT NOT NULL,
//	    scan_count      INT NOT NULL DEFAULT 0,
//	    issued_at       TIMESTAMPTZ NOT NULL,
//	    expires_at      TIMESTAMPTZ NOT NULL,
//	    scanned_at      TIMESTAMPTZ,
//	    revoke_reason   TEXT,
//	    idempotency_key TEXT
//	);
//	CREATE UNIQUE INDEX tickets_event_user_issued_key
//	    ON tickets (event_id, user_id) WHERE status = 'ISSUED';
//	CREATE UNIQUE INDEX tickets_idempotency_key ON tickets (idempotency_key)
//	    WHERE idempotency_key IS NOT NULL;
//	CREATE INDEX tickets_event_status_idx ON tickets (event_id, status);
//	CREATE INDEX tickets_status_expires_idx ON tickets (expires_at) WHERE status = 'ISSUED';
//
//	CREATE TABLE attendance_records (
//	    id         UUID PRIMARY KEY,
//	    ticket_id  UUID NOT NULL REFERENCES tickets(id),
//	    scanned_at TIMESTAMPTZ NOT NULL,
//	    location   TEXT,
//	    scanned_by TEXT,
//	    method     TEXT NOT NULL DEFAULT 'camera'
//	);
//	CREATE INDEX attendance_ticket_idx ON attendance_records (ticket_id, scanned_at);
package repository
