package achievements

import (
	"path/filepath"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"go.viam.com/test"
)

func TestFirstMovementUnlock(t *testing.T) {
	logger := golog.NewTestLogger(t)
	m := newManager("", clock.NewMock(), logger)

	unlocked := m.RecordMovement()
	test.That(t, len(unlocked), test.ShouldEqual, 1)
	test.That(t, unlocked[0].ID, test.ShouldEqual, "first_movement")
	test.That(t, unlocked[0].UnlockTime, test.ShouldNotBeNil)

	// A second movement unlocks nothing new.
	test.That(t, len(m.RecordMovement()), test.ShouldEqual, 0)
}

func TestMovementMasterAtHundred(t *testing.T) {
	logger := golog.NewTestLogger(t)
	m := newManager("", clock.NewMock(), logger)

	for i := 0; i < 99; i++ {
		m.RecordMovement()
	}
	unlocked := m.RecordMovement()
	test.That(t, len(unlocked), test.ShouldEqual, 1)
	test.That(t, unlocked[0].ID, test.ShouldEqual, "movement_master")
}

func TestHomeMasterNeedsFiveReturns(t *testing.T) {
	logger := golog.NewTestLogger(t)
	m := newManager("", clock.NewMock(), logger)

	for i := 0; i < 4; i++ {
		test.That(t, len(m.RecordHomeReturn()), test.ShouldEqual, 0)
	}
	unlocked := m.RecordHomeReturn()
	test.That(t, len(unlocked), test.ShouldEqual, 1)
	test.That(t, unlocked[0].ID, test.ShouldEqual, "home_master")
}

func TestRecordEventDispatch(t *testing.T) {
	logger := golog.NewTestLogger(t)
	m := newManager("", clock.NewMock(), logger)

	unlocked := m.RecordEvent("workspace_calculation")
	test.That(t, len(unlocked), test.ShouldEqual, 1)
	test.That(t, unlocked[0].ID, test.ShouldEqual, "workspace_explorer")

	test.That(t, m.RecordEvent("connected"), test.ShouldBeNil)
	test.That(t, m.RecordEvent("nonsense"), test.ShouldBeNil)
}

func TestProgressSummary(t *testing.T) {
	logger := golog.NewTestLogger(t)
	m := newManager("", clock.NewMock(), logger)

	m.RecordMovement()
	m.RecordWorkspaceCalculation()

	p := m.Progress()
	test.That(t, p.TotalAchievements, test.ShouldEqual, len(catalog))
	test.That(t, p.UnlockedAchievements, test.ShouldEqual, 2)
	test.That(t, p.EarnedPoints, test.ShouldEqual, 60)
	test.That(t, p.Stats.TotalMovements, test.ShouldEqual, 1)
	test.That(t, p.CompletionPercentage, test.ShouldBeGreaterThan, 0)

	test.That(t, len(m.Unlocked()), test.ShouldEqual, 2)
	test.That(t, len(m.All()), test.ShouldEqual, len(catalog))
}

func TestPersistenceRoundTrip(t *testing.T) {
	logger := golog.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "achievements.json")

	m := newManager(path, clock.NewMock(), logger)
	m.RecordMovement()
	m.RecordFKOutOfBounds()

	// A new manager over the same file sees the earlier progress.
	m2 := newManager(path, clock.NewMock(), logger)
	p := m2.Progress()
	test.That(t, p.UnlockedAchievements, test.ShouldEqual, 2)
	test.That(t, p.Stats.TotalMovements, test.ShouldEqual, 1)
	test.That(t, p.Stats.FKOutOfBounds, test.ShouldEqual, 1)
	// Already unlocked, so recording again yields nothing.
	test.That(t, len(m2.RecordMovement()), test.ShouldEqual, 0)
}

func TestSessionTime(t *testing.T) {
	logger := golog.NewTestLogger(t)
	m := newManager("", clock.NewMock(), logger)

	test.That(t, len(m.RecordSessionTime(29)), test.ShouldEqual, 0)
	unlocked := m.RecordSessionTime(1)
	test.That(t, len(unlocked), test.ShouldEqual, 1)
	test.That(t, unlocked[0].ID, test.ShouldEqual, "endurance_champion")
}
