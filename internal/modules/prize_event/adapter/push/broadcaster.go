// Package push forwards engine events and balance changes to websocket
// clients as JSON messages.
package push

import (
	"context"
	"encoding/json"

	"github.com/jiyoung145900-png/daisy-vip/internal/modules/gateway/ws"
	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/engine"
	"github.com/jiyoung145900-png/daisy-vip/pkg/logger"
)

// Broadcaster bridges the engine's publish hooks onto the websocket manager
type Broadcaster struct {
	manager *ws.Manager
}

// NewBroadcaster creates a broadcaster and registers it on the engine
func NewBroadcaster(manager *ws.Manager, eng *engine.Engine) *Broadcaster {
	b := &Broadcaster{manager: manager}
	eng.RegisterEventHandler(b.handleEvent)
	eng.OnBalanceChanged(b.handleBalance)
	return b
}

func (b *Broadcaster) handleEvent(event engine.Event) {
	payload, err := json.Marshal(map[string]interface{}{
		"type":         string(event.Type),
		"round_id":     event.RoundID,
		"seconds_left": event.SecondsLeft,
		"outcome":      event.Outcome,
	})
	if err != nil {
		logger.ErrorGlobal().Err(err).Msg("Failed to encode engine event")
		return
	}
	b.manager.Broadcast(payload)
}

func (b *Broadcaster) handleBalance(userID, newBalance int64) {
	payload, err := json.Marshal(map[string]interface{}{
		"type":    "balance_changed",
		"balance": newBalance,
	})
	if err != nil {
		logger.Error(context.Background()).Err(err).Msg("Failed to encode balance event")
		return
	}
	b.manager.SendToUser(userID, payload)
}
