package push

import "time"

const (
	// dialTimeout bounds the initial hub connection attempt.
	dialTimeout = 5 * time.Second

	// maxPayloadBytes caps an incoming payload. Collections are small
	// but larger than the websocket default read limit.
	maxPayloadBytes = 8 << 20
)
