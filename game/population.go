package game

import (
	"errors"
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/dots/components"
	"github.com/pthm-cable/dots/genome"
	"github.com/pthm-cable/dots/systems"
	"github.com/pthm-cable/dots/telemetry"
)

// ErrGenerationInProgress is returned by AdvanceGeneration while any agent is
// still alive.
var ErrGenerationInProgress = errors.New("game: generation still has live agents")

// ErrGenerationStarted is returned by SeedElite once any agent has moved.
var ErrGenerationStarted = errors.New("game: generation has already started")

// Population is the fixed-size, ordered set of agents evolving together.
// Index 0 holds the elite from the second generation on.
//
// Agents are entities of an ECS world. entities keeps them in slot order and
// agents holds a view of each entity's components.
type Population struct {
	settings Settings

	world  *ecs.World
	mapper *ecs.Map4[
		systems.Kinematics,
		components.Outcome,
		Genes,
		components.Score,
	]
	outcomeFilter *ecs.Filter1[components.Outcome]
	bodyMap       *ecs.Map1[systems.Kinematics]
	outcomeMap    *ecs.Map1[components.Outcome]
	genesMap      *ecs.Map1[Genes]
	scoreMap      *ecs.Map1[components.Score]

	entities []ecs.Entity
	agents   []*Agent

	generation int
	stepCap    int
	bestIndex  int

	rng     genome.RNG
	plotter telemetry.Plotter
	pool    *tickPool
}

// NewPopulation creates generation 1 with random brains. plotter may be nil.
func NewPopulation(settings Settings, rng genome.RNG, plotter telemetry.Plotter) (*Population, error) {
	if settings.Size < 1 {
		return nil, fmt.Errorf("population size must be at least 1, got %d", settings.Size)
	}
	if settings.BrainSize < 1 {
		return nil, fmt.Errorf("brain size must be at least 1, got %d", settings.BrainSize)
	}
	if rng == nil {
		return nil, errors.New("random source is required")
	}

	world := ecs.NewWorld()
	p := &Population{
		settings: settings,
		world:    world,
		mapper: ecs.NewMap4[
			systems.Kinematics,
			components.Outcome,
			Genes,
			components.Score,
		](world),
		outcomeFilter: ecs.NewFilter1[components.Outcome](world),
		bodyMap:       ecs.NewMap1[systems.Kinematics](world),
		outcomeMap:    ecs.NewMap1[components.Outcome](world),
		genesMap:      ecs.NewMap1[Genes](world),
		scoreMap:      ecs.NewMap1[components.Score](world),
		entities:      make([]ecs.Entity, 0, settings.Size),
		generation:    1,
		stepCap:       settings.BrainSize,
		rng:           rng,
		plotter:       plotter,
	}
	p.pool = newTickPool(p, settings.Workers)

	agents := make([]*Agent, settings.Size)
	for i := range agents {
		agents[i] = NewAgent(&p.settings, genome.NewBrain(settings.BrainSize, rng))
	}
	p.spawn(agents)
	return p, nil
}

// spawn replaces every entity with one created from each of agents, in slot
// order, and makes the population's agents views of the new entities.
func (p *Population) spawn(agents []*Agent) {
	for _, e := range p.entities {
		p.world.RemoveEntity(e)
	}
	p.entities = p.entities[:0]
	for _, a := range agents {
		p.entities = append(p.entities, p.mapper.NewEntity(a.body, a.outcome, a.genes, a.score))
	}

	// Component pointers stay valid until the next structural change,
	// which only happens here.
	p.agents = make([]*Agent, len(p.entities))
	for i, e := range p.entities {
		p.agents[i] = &Agent{
			settings: &p.settings,
			body:     p.bodyMap.Get(e),
			outcome:  p.outcomeMap.Get(e),
			genes:    p.genesMap.Get(e),
			score:    p.scoreMap.Get(e),
		}
	}
}

// Size returns the number of agents.
func (p *Population) Size() int {
	return len(p.agents)
}

// Generation returns the current generation number, starting at 1.
func (p *Population) Generation() int {
	return p.generation
}

// StepCap returns the current step cap. It starts at the brain size and
// only ever decreases.
func (p *Population) StepCap() int {
	return p.stepCap
}

// BestIndex returns the index of the best agent of the last finished
// generation.
func (p *Population) BestIndex() int {
	return p.bestIndex
}

// Tick advances every live agent by one step. Agents that have already used
// more steps than the cap crash in place.
func (p *Population) Tick(env *systems.Environment) {
	p.pool.tick(env)
}

func (p *Population) tickRange(env *systems.Environment, start, end int) {
	for _, a := range p.agents[start:end] {
		if a.outcome.Status.Terminal() {
			continue
		}
		if a.Steps() > p.stepCap {
			*a.outcome = a.outcome.Crash(components.CauseStepCap)
			continue
		}
		a.Tick(env, p.stepCap)
	}
}

// Close stops the tick workers. A later Tick starts them again.
func (p *Population) Close() {
	p.pool.stopWorkers()
}

// AllSettled reports whether no agent is alive.
func (p *Population) AllSettled() bool {
	return p.Alive() == 0
}

// Alive returns the number of live agents.
func (p *Population) Alive() int {
	n := 0
	query := p.outcomeFilter.Query()
	for query.Next() {
		if query.Get().Status == components.Alive {
			n++
		}
	}
	return n
}

// EvaluateFitness scores every agent and returns the scores in agent order.
func (p *Population) EvaluateFitness(env *systems.Environment) []float64 {
	fitness := make([]float64, len(p.agents))
	for i, a := range p.agents {
		fitness[i] = a.EvaluateFitness(env)
	}
	return fitness
}

// AdvanceGeneration replaces the settled population with the next one.
// Slot 0 receives an exact copy of the best brain, the rest are chosen by
// fitness-proportionate selection. The best fitness is sent to the plotter
// before the old agents are dropped.
func (p *Population) AdvanceGeneration(env *systems.Environment) error {
	if !p.AllSettled() {
		return ErrGenerationInProgress
	}

	fitness := p.EvaluateFitness(env)
	p.bestIndex = bestIndex(fitness)
	best := p.agents[p.bestIndex]

	if best.Status() == components.Reached && best.Steps() < p.stepCap {
		p.stepCap = best.Steps()
	}

	if p.plotter != nil {
		p.plotter.Plot(p.generation, best.Fitness())
	}

	cumulative := cumulativeFitness(fitness)
	next := make([]*Agent, len(p.agents))
	next[0] = best.SpawnOffspring()
	next[0].score.Elite = true
	for i := 1; i < len(next); i++ {
		next[i] = p.agents[SelectParent(cumulative, p.rng)].SpawnOffspring()
	}

	p.spawn(next)
	p.generation++
	return nil
}

// SeedElite installs dirs as the elite brain in slot 0. It is only allowed
// before the first tick of a generation, and dirs must match the brain size.
func (p *Population) SeedElite(dirs []components.Vec2) error {
	if len(dirs) != p.settings.BrainSize {
		return fmt.Errorf("elite brain has %d directions, want %d", len(dirs), p.settings.BrainSize)
	}
	for _, a := range p.agents {
		if a.Steps() != 0 || a.Status() != components.Alive {
			return ErrGenerationStarted
		}
	}
	p.agents[0].genes.Brain = genome.FromDirections(dirs)
	p.agents[0].score.Elite = true
	return nil
}

// MutateAll mutates every brain except the elite in slot 0.
func (p *Population) MutateAll(rate float64) {
	for i := 1; i < len(p.agents); i++ {
		p.agents[i].genes.Brain.Mutate(rate, p.rng)
	}
}

// Snapshot returns the state of every agent in order.
func (p *Population) Snapshot() []AgentState {
	out := make([]AgentState, len(p.agents))
	for i, a := range p.agents {
		out[i] = a.State()
	}
	return out
}

// Directions returns a copy of the brain of the agent at index i.
func (p *Population) Directions(i int) []components.Vec2 {
	return p.agents[i].genes.Brain.Directions()
}
