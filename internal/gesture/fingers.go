// Package gesture turns per-frame hand landmarks into stable pointer and
// click decisions.
//
// The chain for one frame is: CountFingers, Stabilizer, ModeMachine, then
// dispatch on the committed mode. Interpreter wires them together and owns
// all state, so it must only be used from the gesture task.
package gesture

import "github.com/ayusman/mudra/internal/detector"

// ThumbMargin is how far, in pixels, the thumb tip must reach past the thumb
// IP joint along x to count as extended.
const ThumbMargin = 20

// fingerJoints pairs each non-thumb tip with the PIP joint below it.
var fingerJoints = [4][2]int{
	{detector.IndexTip, detector.IndexPIP},
	{detector.MiddleTip, detector.MiddlePIP},
	{detector.RingTip, detector.RingPIP},
	{detector.PinkyTip, detector.PinkyPIP},
}

// CountFingers returns how many fingers are extended, 0 to 5. A hand with
// fewer than 21 landmarks counts as 0.
//
// A finger is extended when its tip is above its PIP joint in a top-origin
// frame. The thumb is extended when its tip lies more than ThumbMargin pixels
// right of its IP joint, which holds for a right hand in a mirrored frame.
func CountFingers(hand detector.Hand) int {
	if !hand.Valid() {
		return 0
	}

	count := 0
	for _, j := range fingerJoints {
		if hand[j[0]].Y < hand[j[1]].Y {
			count++
		}
	}
	if hand[detector.ThumbTip].X > hand[detector.ThumbIP].X+ThumbMargin {
		count++
	}
	return count
}
