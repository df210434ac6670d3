package orders

import "github.com/angelmondragon/refabry-storefront/pkg/enums"

// State tracks one shopper's latest order submission.
type State struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
	Success bool   `json:"success"`
}

// Status derives Idle, Pending, Success or Error from the flags.
func (s State) Status() enums.OrderStatus {
	switch {
	case s.Loading:
		return enums.OrderStatusPending
	case s.Error != "":
		return enums.OrderStatusError
	case s.Success:
		return enums.OrderStatusSuccess
	default:
		return enums.OrderStatusIdle
	}
}

type Event interface {
	orderEvent()
}

type (
	Submitted struct{}
	Succeeded struct{}
	Failed    struct{ Message string }
	Reset     struct{}
)

func (Submitted) orderEvent() {}
func (Succeeded) orderEvent() {}
func (Failed) orderEvent()    {}
func (Reset) orderEvent()     {}

// Reduce returns the state following ev.
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case Submitted:
		return State{Loading: true}
	case Succeeded:
		return State{Success: true}
	case Failed:
		return State{Error: e.Message}
	case Reset:
		return State{}
	}
	return s
}
