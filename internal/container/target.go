// internal/container/target.go
//
// Target is the discriminated union of drop destinations.

package container

// Target is implemented by SlotTarget, LaneTarget and LinkTarget only.
type Target interface {
	Kind() Kind
	isTarget()
}

// SlotTarget drops onto one slot.
type SlotTarget struct {
	Slot string
}

// LaneTarget drops into a lane. Before names the entity to insert in front of;
// empty means the end of the lane.
type LaneTarget struct {
	Lane   string
	Before string
}

// LinkTarget connects Source to Sink.
type LinkTarget struct {
	Source string
	Sink   string
}

func (SlotTarget) Kind() Kind { return KindSlot }
func (LaneTarget) Kind() Kind { return KindLane }
func (LinkTarget) Kind() Kind { return KindLink }

func (SlotTarget) isTarget() {}
func (LaneTarget) isTarget() {}
func (LinkTarget) isTarget() {}
