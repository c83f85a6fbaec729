// Package systems contains the arena model and motion rules for the simulation.
package systems

import "github.com/pthm-cable/dots/components"

// Bounds represents the simulation bounds.
type Bounds struct {
	Width, Height float64
}

// Kinematics is the physical state of a moving body.
type Kinematics struct {
	Pos components.Vec2
	Vel components.Vec2
	Acc components.Vec2
}

// Integrate applies one tick of motion: the acceleration is added to the
// velocity, the velocity is clamped to maxSpeed and then added to the
// position.
func Integrate(k Kinematics, acc components.Vec2, maxSpeed float64) Kinematics {
	k.Acc = acc
	k.Vel.Add(acc)
	k.Vel.Limit(maxSpeed)
	k.Pos.Add(k.Vel)
	return k
}
