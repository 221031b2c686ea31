// Package websocket implements the live filter socket. Each connection is a
// Client with a read pump and a write pump; the Hub only tracks the open
// sessions.
//
// Protocol (JSON text frames):
//
//	client → {"type":"filter","start_date":"2011-01-01","end_date":"2011-06-30"}
//	server ← {"type":"dashboard","data":{...}}
//	client → {"type":"heartbeat"}                      (no reply)
//	server ← {"type":"error","error":"..."}            (invalid message)
//
// Omitted dates default to the dataset bounds, as on the HTTP API.
package websocket
