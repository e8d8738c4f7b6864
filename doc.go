/*
Package sstpack packs the contents of an embedded key-value store into a
single sorted table (SST) file and ingests such files back into a fresh
or existing store.

Tables

Tables use the SST format of github.com/cockroachdb/pebble/sstable, with
the default bytewise comparer and the ".sst" extension. A table holds
key/value pairs in strictly increasing key order. A table without
entries is valid.

Engines

Three store engines are supported:

    +---------+-------------------------------+-----------------------------+
    | engine  | export                        | import                      |
    +---------+-------------------------------+-----------------------------+
    | pebble  | read-only iterator            | native ingestion (atomic)   |
    | leveldb | read-only iterator            | batched writes (not atomic) |
    | badger  | read-only transaction         | batched transactions        |
    +---------+-------------------------------+-----------------------------+

Export

Export scans a store from its first to its last key and writes every
entry into a new table. The table is sealed in a temporary file and only
then moved to the target path. An existing target is rejected unless
Options.Overwrite is set.

Import

Import creates the store directory if necessary and ingests one table,
or every ".sst" file of a directory, sorted by name. Tables with
disjoint key ranges are ingested in one call. Overlapping tables are
ingested one at a time, so the table that sorts last wins.
*/
package sstpack
