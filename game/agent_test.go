package game

import (
	"math"
	"testing"

	"github.com/pthm-cable/dots/components"
)

func TestAgentReachesGoal(t *testing.T) {
	s := testSettings()
	env := newEnv(t)
	a := newTestAgent(&s, repeat(up, 4))

	// Speeds 1, 2, 3 put the agent at y = 699, 697, 694; the goal is at 690.
	wantY := []float64{699, 697, 694}
	for i, y := range wantY {
		if a.Status() != components.Alive {
			t.Fatalf("tick %d: status = %v before moving", i+1, a.Status())
		}
		a.Tick(env, 400)
		if got := a.State().Position.Y; got != y {
			t.Errorf("tick %d: y = %v, want %v", i+1, got, y)
		}
	}

	if a.Status() != components.Reached {
		t.Fatalf("status = %v, want reached", a.Status())
	}
	if a.Steps() != 3 {
		t.Errorf("steps = %d, want 3", a.Steps())
	}

	want := 1.0/16 + 1000.0/9
	if got := a.EvaluateFitness(env); math.Abs(got-want) > 1e-12 {
		t.Errorf("fitness = %v, want %v", got, want)
	}

	// Reached is terminal.
	a.Tick(env, 400)
	if a.Steps() != 3 || a.State().Position.Y != 694 {
		t.Errorf("reached agent kept moving: %+v", a.State())
	}
}

func TestAgentVelocityClamp(t *testing.T) {
	s := testSettings()
	s.Spawn = components.Vec2{X: 400, Y: 780}
	env := newEnv(t)
	a := newTestAgent(&s, repeat(components.Vec2{X: 1}, 20))

	for i := 0; i < 10; i++ {
		a.Tick(env, 400)
	}
	if got := a.State().Velocity.Mag(); math.Abs(got-6) > 1e-9 {
		t.Errorf("speed = %v, want clamp 6", got)
	}
	// 1+2+3+4+5+6*5 = 45
	if got := a.State().Position.X; math.Abs(got-445) > 1e-9 {
		t.Errorf("x = %v, want 445", got)
	}
}

func TestAgentWallMarginUsesRadius(t *testing.T) {
	s := testSettings()
	s.Spawn = components.Vec2{X: 400, Y: 10}
	s.Radius = 5
	env := newEnv(t)
	a := newTestAgent(&s, repeat(up, 10))

	// y = 9, 7 stay inside; y = 4 is past the radius-5 margin.
	a.Tick(env, 400)
	a.Tick(env, 400)
	if a.Status() != components.Alive {
		t.Fatalf("crashed early at %v", a.State().Position)
	}
	a.Tick(env, 400)
	if st := a.State(); st.Cause != components.CauseWall || st.Position.Y != 4 {
		t.Errorf("after tick 3: %+v, want wall crash at y 4", st)
	}
}

func TestAgentCrashesOnWall(t *testing.T) {
	s := testSettings()
	s.Spawn = components.Vec2{X: 400, Y: 10}
	env := newEnv(t)
	a := newTestAgent(&s, repeat(up, 10))

	// y = 9, 7, 4 stay inside; y = 0 is past the radius-2 margin.
	for i := 0; i < 3; i++ {
		a.Tick(env, 400)
		if a.Status() != components.Alive {
			t.Fatalf("tick %d: crashed early at %v", i+1, a.State().Position)
		}
	}
	a.Tick(env, 400)
	st := a.State()
	if st.Status != components.Crashed || st.Cause != components.CauseWall {
		t.Fatalf("after tick 4: status %v cause %v, want crashed by wall", st.Status, st.Cause)
	}
	if st.Position.Y != 0 {
		t.Errorf("crash position y = %v, want 0", st.Position.Y)
	}

	for i := 0; i < 5; i++ {
		a.Tick(env, 400)
	}
	if got := a.State(); got.Position != st.Position || got.Steps != 4 {
		t.Errorf("crashed agent moved: before %+v after %+v", st, got)
	}
}

func TestAgentCrashesOnObstacle(t *testing.T) {
	s := testSettings()
	env := newEnv(t, components.Obstacle{X: 390, Y: 690, W: 20, H: 5})
	a := newTestAgent(&s, repeat(up, 10))

	a.Tick(env, 400) // 699
	a.Tick(env, 400) // 697
	if a.Status() != components.Alive {
		t.Fatalf("crashed before entering obstacle")
	}
	a.Tick(env, 400) // 694, inside (690, 695)
	st := a.State()
	if st.Status != components.Crashed || st.Cause != components.CauseObstacle {
		t.Errorf("status %v cause %v, want crashed by obstacle", st.Status, st.Cause)
	}
}

func TestAgentExhaustsBrain(t *testing.T) {
	s := testSettings()
	env := newEnv(t)
	a := newTestAgent(&s, repeat(components.Vec2{X: 1}, 2))

	a.Tick(env, 400)
	a.Tick(env, 400)
	before := a.State().Position
	a.Tick(env, 400)

	st := a.State()
	if st.Status != components.Crashed || st.Cause != components.CauseExhausted {
		t.Fatalf("status %v cause %v, want crashed by exhaustion", st.Status, st.Cause)
	}
	if st.Position != before {
		t.Errorf("exhausted agent moved from %v to %v", before, st.Position)
	}
}

func TestAgentStepCap(t *testing.T) {
	s := testSettings()
	env := newEnv(t)
	a := newTestAgent(&s, repeat(components.Vec2{X: 1}, 10))

	a.Tick(env, 1)
	a.Tick(env, 1)
	if a.Status() != components.Alive || a.Steps() != 2 {
		t.Fatalf("agent should move until the cursor passes the cap, got %+v", a.State())
	}
	a.Tick(env, 1)
	st := a.State()
	if st.Status != components.Crashed || st.Cause != components.CauseStepCap {
		t.Errorf("status %v cause %v, want crashed by step cap", st.Status, st.Cause)
	}
	if st.Steps != 2 {
		t.Errorf("steps = %d, want 2", st.Steps)
	}
}

func TestAgentDistanceFitness(t *testing.T) {
	s := testSettings()
	env := newEnv(t)
	a := newTestAgent(&s, nil)

	a.Tick(env, 400)
	if a.Status() != components.Crashed {
		t.Fatalf("empty brain should crash on first tick")
	}
	// Spawn (400, 700) is 10 from the goal.
	if got := a.EvaluateFitness(env); math.Abs(got-0.001) > 1e-15 {
		t.Errorf("fitness = %v, want 0.001", got)
	}
	if a.Fitness() <= 0 {
		t.Error("fitness must be positive")
	}
}

func TestDistanceFitnessIncreasesTowardsGoal(t *testing.T) {
	s := testSettings()
	env := newEnv(t)

	far := newTestAgent(&s, nil)
	far.body.Pos = components.Vec2{X: 400, Y: 400}
	near := newTestAgent(&s, nil)
	near.body.Pos = components.Vec2{X: 400, Y: 650}

	if far.EvaluateFitness(env) >= near.EvaluateFitness(env) {
		t.Errorf("closer agent should score higher: far %v near %v", far.Fitness(), near.Fitness())
	}

	onCenter := newTestAgent(&s, nil)
	onCenter.body.Pos = components.Vec2{X: 400, Y: 690}
	if f := onCenter.EvaluateFitness(env); math.IsInf(f, 0) || math.IsNaN(f) {
		t.Errorf("fitness at goal centre = %v, want finite", f)
	}
}

func TestReachedAlwaysBeatsFloor(t *testing.T) {
	s := testSettings()
	env := newEnv(t)
	a := newTestAgent(&s, repeat(up, 4))
	for a.Status() == components.Alive {
		a.Tick(env, 400)
	}
	if a.EvaluateFitness(env) <= 1.0/16 {
		t.Errorf("reached fitness %v not above 1/16", a.Fitness())
	}
}

func TestSpawnOffspring(t *testing.T) {
	s := testSettings()
	env := newEnv(t)
	dirs := repeat(components.Vec2{X: 1}, 5)
	parent := newTestAgent(&s, dirs)
	parent.Tick(env, 400)
	parent.Tick(env, 400)
	parent.score.Elite = true

	child := parent.SpawnOffspring()
	st := child.State()
	if st.Position != s.Spawn || st.Velocity != (components.Vec2{}) {
		t.Errorf("child not at rest at spawn: %+v", st)
	}
	if st.Status != components.Alive || st.Steps != 0 || st.Elite {
		t.Errorf("child state = %+v, want alive, 0 steps, not elite", st)
	}
	if got := child.genes.Brain.Directions(); len(got) != len(dirs) {
		t.Errorf("child brain len = %d, want %d", len(got), len(dirs))
	}
	if child.genes.Brain == parent.genes.Brain {
		t.Error("child shares the parent's brain")
	}
}
