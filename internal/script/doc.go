// Package script loads newline-delimited JSON event scripts and replays them
// into the hub.
//
// A script holds one event object per line:
//
//	{"channel":"orders","name":"order_created","payload":{"id":42}}
//
// Blank lines and lines starting with '#' are skipped. Scripts are read from
// files (LoadFile), directories of *.ndjson files (LoadDir), or picked up as
// they land in a spool directory (Spool).
package script
