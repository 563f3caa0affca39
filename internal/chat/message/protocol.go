// Package message builds the plain-text lines exchanged between chat server and clients.
package message

import (
	"strconv"
)

// ServerFull - sent to a connection rejected at admission.
const ServerFull = "Server full, try later.\n"

// Welcome - private greeting for newly admitted client.
func Welcome(id int) []byte {
	return []byte("Welcome! You are Client " + strconv.Itoa(id) + "\n")
}

// Joined - announcement for other clients about newcomer.
func Joined(id int, from string) []byte {
	return []byte("Client " + strconv.Itoa(id) + " has joined from " + from + "\n")
}

// Disconnected - announcement for remaining clients.
func Disconnected(id int) []byte {
	return []byte("Client " + strconv.Itoa(id) + " has disconnected\n")
}

// Compose - prefixes raw client bytes with author and guarantees trailing newline.
func Compose(id int, raw []byte) []byte {
	prefix := "Client " + strconv.Itoa(id) + ": "
	out := make([]byte, 0, len(prefix)+len(raw)+1)
	out = append(out, prefix...)
	out = append(out, raw...)
	if len(raw) == 0 || raw[len(raw)-1] != '\n' {
		out = append(out, '\n')
	}
	return out
}
