// Command server runs the chat relay over TCP.
//
//	server [port]
//
// Port defaults to 12345. Every line received from one client is delivered
// to all other connected clients.
//
// Optional tuning comes from environment (or .env file in working directory):
//
//	CHAT_MAX_CLIENTS       max simultaneously connected clients (1024)
//	CHAT_READ_BUFFER_SIZE  bytes per socket read (4096)
//	CHAT_OUTBOX_LIMIT      pending messages per client before it is dropped, 0 - unlimited (1024)
//	CHAT_WRITE_TIMEOUT     write deadline per message (30s)
//	CHAT_FRAMING           raw - one read is one message, line - reassemble lines (raw)
//	LOG_LEVEL              DEBUG, INFO, WARN or ERROR (INFO)
//
// To compile server locally, run from package directory:
//
//	go install .
package main
