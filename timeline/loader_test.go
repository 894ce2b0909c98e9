package timeline

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-motion"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func stageWorld() *motion.Scheduler {
	return motion.New(motion.WithLogger(nopLogger{}))
}

func shipContext() (BuildContext, *motion.Sprite) {
	ship := motion.NewSprite("ship", cp.Vector{X: 10, Y: 10})
	return BuildContext{Targets: map[string]motion.Target{
		"ship": motion.Single(ship),
	}}, ship
}

func TestBuildUnknownTarget(t *testing.T) {
	set, err := Parse([]byte(`
scenes:
  - name: s
    target: ghost
    steps: [{type: rotate, rate: 1}]
`))
	require.NoError(t, err)

	bctx, _ := shipContext()
	_, err = Build(set, bctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target not found")
}

func TestStageRunsMoveScene(t *testing.T) {
	set, err := Parse([]byte(`
scenes:
  - name: drift
    target: ship
    steps:
      - type: move
        velocity: [8, 0]
        seconds: 1
`))
	require.NoError(t, err)

	world := stageWorld()
	bctx, ship := shipContext()
	scenes, err := Stage(world, set, bctx)
	require.NoError(t, err)
	require.Len(t, scenes, 1)

	// staged under the scene name
	tagged := world.ActionsFor(scenes[0].Target, "drift")
	require.Len(t, tagged, 1)

	for i := 0; i < 8; i++ {
		world.Update(0.125)
	}
	assert.Equal(t, 8.0, ship.Position().X)
	assert.Empty(t, world.ActionsFor(scenes[0].Target, "drift"))
}

func TestStageMultiStepSceneIsSequence(t *testing.T) {
	set, err := Parse([]byte(`
scenes:
  - name: approach
    target: ship
    steps:
      - type: move
        velocity: [4, 0]
        frames: 2
      - type: fade
        rate: -1
        frames: 2
`))
	require.NoError(t, err)

	world := stageWorld()
	bctx, ship := shipContext()
	_, err = Stage(world, set, bctx)
	require.NoError(t, err)

	world.Update(0.25)
	world.Update(0.25)
	// movement finished, fade has not run yet
	assert.Equal(t, 2.0, ship.Position().X)
	assert.Equal(t, 1.0, ship.Alpha())

	world.Update(0.25)
	world.Update(0.25)
	assert.Equal(t, 2.0, ship.Position().X)
	assert.Equal(t, 0.5, ship.Alpha())
}

func TestStageReplacesExistingScene(t *testing.T) {
	world := stageWorld()
	bctx, _ := shipContext()

	set, err := Parse([]byte(`
scenes:
  - name: drift
    target: ship
    steps: [{type: move, velocity: [8, 0]}]
`))
	require.NoError(t, err)

	first, err := Stage(world, set, bctx)
	require.NoError(t, err)
	second, err := Stage(world, set, bctx)
	require.NoError(t, err)

	assert.True(t, first[0].Action.Done(), "first staging should be replaced")
	tagged := world.ActionsFor(second[0].Target, "drift")
	require.Len(t, tagged, 1)
	assert.Same(t, second[0].Action, tagged[0])
}

func TestStageCompositeScene(t *testing.T) {
	set, err := Parse([]byte(`
scenes:
  - name: dance
    target: ship
    steps:
      - type: parallel
        steps:
          - {type: rotate, rate: 2, frames: 4}
          - {type: fade, rate: -0.5, frames: 2}
`))
	require.NoError(t, err)

	world := stageWorld()
	bctx, ship := shipContext()
	scenes, err := Stage(world, set, bctx)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		world.Update(0.25)
	}
	assert.True(t, scenes[0].Action.Done())
	assert.Equal(t, 2.0, ship.Angle())
	assert.Equal(t, 0.75, ship.Alpha())
}

func TestStageRepeatScene(t *testing.T) {
	set, err := Parse([]byte(`
scenes:
  - name: spin
    target: ship
    steps:
      - type: repeat
        step: {type: rotate, rate: 1, frames: 2}
`))
	require.NoError(t, err)

	world := stageWorld()
	bctx, _ := shipContext()
	scenes, err := Stage(world, set, bctx)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		world.Update(0.1)
	}
	assert.False(t, scenes[0].Action.Done(), "repeat scene must keep running")
}

func TestStageMoveToScene(t *testing.T) {
	set, err := Parse([]byte(`
scenes:
  - name: dock
    target: ship
    steps:
      - type: move_to
        dest: [10, 0]
        speed: 5
`))
	require.NoError(t, err)

	world := stageWorld()
	bctx, ship := shipContext()
	scenes, err := Stage(world, set, bctx)
	require.NoError(t, err)

	world.Update(1)
	world.Update(1)
	assert.True(t, scenes[0].Action.Done())
	assert.Equal(t, 10.0, ship.Position().X)
}
