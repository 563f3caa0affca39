package registry

import (
	"errors"
	"fmt"
)

// NoSender - pass as exceptSlot to deliver to every registered connection.
const NoSender = -1

// Broadcast - delivers payload to every registered connection except exceptSlot, in slot order.
// Failed recipients do not stop delivery and are not removed; their errors are joined in result.
func (r *Registry) Broadcast(exceptSlot int, payload []byte) (delivered int, err error) {
	var errs []error
	for slot, c := range r.slots {
		if c == nil || slot == exceptSlot {
			continue
		}
		if e := c.Handle.Send(payload); e != nil {
			errs = append(errs, fmt.Errorf("client %d (slot %d): %w", c.ID, c.Slot, e))
			continue
		}
		delivered++
	}
	return delivered, errors.Join(errs...)
}
