package game

import (
	"math"

	"github.com/pthm-cable/dots/components"
	"github.com/pthm-cable/dots/genome"
	"github.com/pthm-cable/dots/systems"
)

// reachedFitnessFloor is added to the fitness of every agent that touched
// the goal.
const reachedFitnessFloor = 1.0 / 16

// minGoalDistance keeps the distance-based fitness finite for an agent that
// stopped exactly on the goal centre without reaching it.
const minGoalDistance = 1e-9

// Genes is the brain component of an agent entity.
type Genes struct {
	Brain *genome.Brain
}

// Agent is one simulated body driven by its brain. Its fields point at the
// components of a population entity, or at private values for a standalone
// agent from NewAgent.
type Agent struct {
	settings *Settings
	body     *systems.Kinematics
	outcome  *components.Outcome
	genes    *Genes
	score    *components.Score
}

// AgentState is a value snapshot of an agent.
type AgentState struct {
	Position components.Vec2
	Velocity components.Vec2
	Status   components.Status
	Cause    components.Cause
	Steps    int
	Fitness  float64
	Elite    bool
}

// NewAgent places a fresh agent carrying brain at the spawn point.
func NewAgent(settings *Settings, brain *genome.Brain) *Agent {
	return &Agent{
		settings: settings,
		body:     &systems.Kinematics{Pos: settings.Spawn},
		outcome:  &components.Outcome{},
		genes:    &Genes{Brain: brain},
		score:    &components.Score{},
	}
}

// Status returns the agent's status.
func (a *Agent) Status() components.Status {
	return a.outcome.Status
}

// Steps returns the number of directions the agent has consumed.
func (a *Agent) Steps() int {
	return a.genes.Brain.Step()
}

// Fitness returns the last value computed by EvaluateFitness.
func (a *Agent) Fitness() float64 {
	return a.score.Fitness
}

// Tick advances the agent by one simulation step. Terminal agents are left
// untouched. An agent whose brain is spent, or whose cursor has passed
// stepCap, crashes without moving.
func (a *Agent) Tick(env *systems.Environment, stepCap int) {
	if a.outcome.Status.Terminal() {
		return
	}
	if a.genes.Brain.Step() > stepCap {
		*a.outcome = a.outcome.Crash(components.CauseStepCap)
		return
	}

	dir, err := a.genes.Brain.Next()
	if err != nil {
		*a.outcome = a.outcome.Crash(components.CauseExhausted)
		return
	}
	*a.body = systems.Integrate(*a.body, dir, a.settings.MaxSpeed)

	if cause, hit := env.Collide(a.body.Pos, a.settings.Radius); hit {
		*a.outcome = a.outcome.Crash(cause)
		return
	}
	if env.ReachedGoal(a.body.Pos) {
		*a.outcome = a.outcome.Reach()
	}
}

// EvaluateFitness scores the agent and stores the result.
// Agents that reached the goal score 1/16 + 1000/steps², all others score
// 1/distance³ to the goal centre.
func (a *Agent) EvaluateFitness(env *systems.Environment) float64 {
	if a.outcome.Status == components.Reached {
		a.score.Fitness = reachedFitnessFloor + 1000/math.Pow(float64(a.genes.Brain.Step()), 2)
	} else {
		d := math.Max(env.DistanceToGoal(a.body.Pos), minGoalDistance)
		a.score.Fitness = 1 / math.Pow(d, 3)
	}
	return a.score.Fitness
}

// SpawnOffspring returns a new agent at the spawn point carrying an
// unmutated copy of this agent's brain.
func (a *Agent) SpawnOffspring() *Agent {
	return NewAgent(a.settings, a.genes.Brain.Clone())
}

// State returns a snapshot of the agent.
func (a *Agent) State() AgentState {
	return AgentState{
		Position: a.body.Pos,
		Velocity: a.body.Vel,
		Status:   a.outcome.Status,
		Cause:    a.outcome.Cause,
		Steps:    a.genes.Brain.Step(),
		Fitness:  a.score.Fitness,
		Elite:    a.score.Elite,
	}
}
