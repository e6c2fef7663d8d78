package push

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/coder/websocket"

	"github.com/tododos/tododos/internal/todo"
)

// Subscribe connects to a push hub and invokes cb with every list
// payload, in the order the hub delivered them. The first payload is
// the hub's current snapshot, sent on connect.
//
// addr is a host:port (a ws:// URL is derived from it). The returned
// stop function closes the connection; calling it more than once is
// safe.
func Subscribe(addr string, logger *log.Logger, cb func(lists []todo.List)) (func(), error) {
	if logger == nil {
		logger = log.Default()
	}

	url := fmt.Sprintf("ws://%s/ws", addr)

	dialCtx, dialCancel := context.WithTimeout(context.Background(), dialTimeout)
	defer dialCancel()

	conn, _, err := websocket.Dial(dialCtx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial push hub at %s: %w", url, err)
	}
	// Payloads carry whole collections; lift the default read limit.
	conn.SetReadLimit(maxPayloadBytes)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		readLoop(ctx, conn, logger, cb)
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			_ = conn.Close(websocket.StatusNormalClosure, "")
			wg.Wait()
		})
	}
	return stop, nil
}

// readLoop decodes hub messages until the connection closes.
func readLoop(ctx context.Context, conn *websocket.Conn, logger *log.Logger, cb func([]todo.List)) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logger.Printf("Push connection closed: %v", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Printf("Failed to decode push message: %v", err)
			continue
		}
		if msg.Type != MessageTypeLists {
			continue
		}

		lists := msg.Lists
		if lists == nil {
			lists = []todo.List{}
		}
		cb(lists)
	}
}
