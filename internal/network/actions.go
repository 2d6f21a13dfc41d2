package network

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gravitas-games/crimeboss/pkg/engine"
	"github.com/gravitas-games/crimeboss/pkg/inventory"
	"github.com/gravitas-games/crimeboss/pkg/models"
)

// ErrUnknownMessage is returned by DecodeAction for types that are not actions.
var ErrUnknownMessage = errors.New("unknown message type")

// IsAction reports whether a client message type maps to an engine action.
func IsAction(msgType string) bool {
	switch msgType {
	case MsgTypeEquip, MsgTypeUnequip, MsgTypeConsume, MsgTypeMove,
		MsgTypeSplit, MsgTypeDiscard, MsgTypeCraft:
		return true
	}
	return IsPrivileged(msgType)
}

// IsPrivileged reports whether an action needs game master permission.
func IsPrivileged(msgType string) bool {
	return msgType == MsgTypeGrant || msgType == MsgTypeOpenContainer
}

// DecodeAction turns an action message into the engine action it requests.
func DecodeAction(msg *ClientMessage) (engine.Action, error) {
	switch msg.Type {
	case MsgTypeEquip:
		var p EquipPayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		return engine.EquipAction{
			Character: models.CharacterID(p.Character),
			Container: inventory.Kind(p.Container),
			Instance:  inventory.InstanceID(p.Instance),
		}, nil

	case MsgTypeUnequip:
		var p UnequipPayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		return engine.UnequipAction{
			Character: models.CharacterID(p.Character),
			Slot:      models.Slot(p.Slot),
			Container: inventory.Kind(p.Container),
		}, nil

	case MsgTypeConsume:
		var p ConsumePayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		return engine.ConsumeAction{
			Character: models.CharacterID(p.Character),
			Container: inventory.Kind(p.Container),
			Instance:  inventory.InstanceID(p.Instance),
		}, nil

	case MsgTypeMove, MsgTypeSplit:
		var p MovePayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		if msg.Type == MsgTypeSplit || p.Quantity != 0 {
			return engine.SplitAction{
				From:     inventory.Kind(p.From),
				To:       inventory.Kind(p.To),
				Instance: inventory.InstanceID(p.Instance),
				Quantity: p.Quantity,
			}, nil
		}
		return engine.MoveAction{
			From:     inventory.Kind(p.From),
			To:       inventory.Kind(p.To),
			Instance: inventory.InstanceID(p.Instance),
		}, nil

	case MsgTypeDiscard:
		var p DiscardPayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		return engine.DiscardAction{
			Container: inventory.Kind(p.Container),
			Instance:  inventory.InstanceID(p.Instance),
		}, nil

	case MsgTypeCraft:
		var p CraftPayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		slots := make([]inventory.InstanceID, len(p.Slots))
		for i, s := range p.Slots {
			slots[i] = inventory.InstanceID(s)
		}
		return engine.CraftAction{
			Container: inventory.Kind(p.Container),
			Slots:     slots,
		}, nil

	case MsgTypeGrant:
		var p GrantPayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		return engine.GrantAction{
			Container: inventory.Kind(p.Container),
			Item:      models.ItemID(p.Item),
			Quantity:  p.Quantity,
			Data:      p.Data,
		}, nil

	case MsgTypeOpenContainer:
		var p OpenContainerPayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		return engine.OpenContainerAction{
			Container: inventory.Kind(p.Container),
			Capacity:  p.Capacity,
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
}

func decode(msg *ClientMessage, v interface{}) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("%s: missing payload", msg.Type)
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("%s: invalid payload: %w", msg.Type, err)
	}
	return nil
}
