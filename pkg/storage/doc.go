/*
Package storage keeps the deploy history in a bbolt database.

Every deploy run writes one types.MigrationRecord, keyed by its id, into the
"migrations" bucket of <data-dir>/cloudio.db. Values are JSON. Records are
listed newest first by start time.

The database is opened with a one second lock timeout, so a second cloudio
process fails fast instead of blocking while another run holds the file.
*/
package storage
