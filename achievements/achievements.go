// Package achievements tracks usage milestones for the robot control
// interface. It is bookkeeping around the kinematics engine, not part of it:
// the engine stays stateless while this package holds the only mutable
// session state, guarded by a mutex and optionally persisted to a JSON file.
package achievements

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
)

// Achievement is one unlockable milestone.
type Achievement struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Points      int        `json:"points"`
	Unlocked    bool       `json:"unlocked"`
	UnlockTime  *time.Time `json:"unlock_time,omitempty"`
}

// Stats are the raw usage counters that drive unlocks.
type Stats struct {
	TotalMovements        int `json:"total_movements"`
	HomeReturns           int `json:"home_returns"`
	WorkspaceCalculations int `json:"workspace_calculations"`
	SingularityEncounters int `json:"singularity_encounters"`
	PathExecutions        int `json:"path_executions"`
	SessionMinutes        int `json:"session_time"`
	FKOutOfBounds         int `json:"fk_out_of_bounds_count"`
	IKOutOfBounds         int `json:"ik_out_of_bounds_count"`
}

// Progress summarizes overall completion.
type Progress struct {
	TotalAchievements    int     `json:"total_achievements"`
	UnlockedAchievements int     `json:"unlocked_achievements"`
	CompletionPercentage float64 `json:"completion_percentage"`
	TotalPoints          int     `json:"total_points"`
	EarnedPoints         int     `json:"earned_points"`
	Stats                Stats   `json:"stats"`
}

// Manager records events and unlocks achievements. Safe for concurrent use.
type Manager struct {
	mu     sync.Mutex
	clock  clock.Clock
	path   string
	logger golog.Logger

	stats        Stats
	achievements map[string]*Achievement
	order        []string
}

// NewManager returns a manager. If path is non-empty, progress is loaded from
// and saved to that file.
func NewManager(path string, logger golog.Logger) *Manager {
	return newManager(path, clock.New(), logger)
}

func newManager(path string, clk clock.Clock, logger golog.Logger) *Manager {
	m := &Manager{
		clock:        clk,
		path:         path,
		logger:       logger,
		achievements: map[string]*Achievement{},
	}
	for _, a := range catalog {
		copied := a
		m.achievements[a.ID] = &copied
		m.order = append(m.order, a.ID)
	}
	if path != "" {
		m.load()
	}
	return m
}

var catalog = []Achievement{
	{ID: "first_movement", Title: "First Movement", Description: "Move a robot joint for the first time", Icon: "🎯", Points: 10},
	{ID: "home_master", Title: "Home Master", Description: "Return to the home position 5 times", Icon: "🏠", Points: 25},
	{ID: "workspace_explorer", Title: "Workspace Explorer", Description: "Calculate the robot workspace", Icon: "🌐", Points: 50},
	{ID: "singularity_survivor", Title: "Singularity Survivor", Description: "Encounter a singularity and recover", Icon: "⚠️", Points: 30},
	{ID: "path_executor", Title: "Path Executor", Description: "Execute a full path successfully", Icon: "🛤️", Points: 40},
	{ID: "precision_master", Title: "Precision Master", Description: "Move every joint with high precision", Icon: "🎯", Points: 75},
	{ID: "endurance_champion", Title: "Endurance Champion", Description: "Use the system for more than 30 minutes", Icon: "⏰", Points: 60},
	{ID: "movement_master", Title: "Movement Master", Description: "Perform 100 joint movements", Icon: "🏃", Points: 100},
	{ID: "fk_out_of_bounds", Title: "Forward Limits", Description: "Request forward kinematics outside the joint limits", Icon: "🚫", Points: 15},
	{ID: "ik_out_of_bounds", Title: "Inverse Limits", Description: "Reach a pose requiring angles outside the joint limits", Icon: "⚠️", Points: 20},
	{ID: "importer", Title: "Importer", Description: "Import a path successfully", Icon: "📥", Points: 20},
	{ID: "exporter", Title: "Exporter", Description: "Export a path successfully", Icon: "📤", Points: 20},
}

// RecordMovement notes one joint movement.
func (m *Manager) RecordMovement() []Achievement {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.TotalMovements++
	var unlocked []Achievement
	if m.stats.TotalMovements >= 1 {
		unlocked = appendUnlock(unlocked, m.unlock("first_movement"))
	}
	if m.stats.TotalMovements >= 100 {
		unlocked = appendUnlock(unlocked, m.unlock("movement_master"))
	}
	m.save()
	return unlocked
}

// RecordHomeReturn notes a return to the home configuration.
func (m *Manager) RecordHomeReturn() []Achievement {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.HomeReturns++
	var unlocked []Achievement
	if m.stats.HomeReturns >= 5 {
		unlocked = appendUnlock(unlocked, m.unlock("home_master"))
	}
	m.save()
	return unlocked
}

// RecordWorkspaceCalculation notes a workspace run.
func (m *Manager) RecordWorkspaceCalculation() []Achievement {
	return m.recordSimple(&m.stats.WorkspaceCalculations, "workspace_explorer")
}

// RecordSingularityEncounter notes a singular configuration being hit.
func (m *Manager) RecordSingularityEncounter() []Achievement {
	return m.recordSimple(&m.stats.SingularityEncounters, "singularity_survivor")
}

// RecordPathExecution notes a completed trajectory.
func (m *Manager) RecordPathExecution() []Achievement {
	return m.recordSimple(&m.stats.PathExecutions, "path_executor")
}

// RecordPathImport notes an imported path.
func (m *Manager) RecordPathImport() []Achievement {
	return m.recordSimple(nil, "importer")
}

// RecordPathExport notes an exported path.
func (m *Manager) RecordPathExport() []Achievement {
	return m.recordSimple(nil, "exporter")
}

// RecordFKOutOfBounds notes a forward-kinematics request outside the limits.
func (m *Manager) RecordFKOutOfBounds() []Achievement {
	return m.recordSimple(&m.stats.FKOutOfBounds, "fk_out_of_bounds")
}

// RecordIKOutOfBounds notes an inverse-kinematics solution outside the limits.
func (m *Manager) RecordIKOutOfBounds() []Achievement {
	return m.recordSimple(&m.stats.IKOutOfBounds, "ik_out_of_bounds")
}

// RecordSessionTime adds elapsed minutes to the session counter.
func (m *Manager) RecordSessionTime(minutes int) []Achievement {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.SessionMinutes += minutes
	var unlocked []Achievement
	if m.stats.SessionMinutes >= 30 {
		unlocked = appendUnlock(unlocked, m.unlock("endurance_champion"))
	}
	m.save()
	return unlocked
}

// RecordEvent dispatches a named frontend event. Unknown events unlock
// nothing; this keeps the transport tolerant of newer frontends.
func (m *Manager) RecordEvent(event string) []Achievement {
	switch event {
	case "movement":
		return m.RecordMovement()
	case "home_return":
		return m.RecordHomeReturn()
	case "workspace_calculation":
		return m.RecordWorkspaceCalculation()
	case "path_execution":
		return m.RecordPathExecution()
	case "singularity_encounter":
		return m.RecordSingularityEncounter()
	case "path_import":
		return m.RecordPathImport()
	case "path_export":
		return m.RecordPathExport()
	case "fk_out_of_bounds":
		return m.RecordFKOutOfBounds()
	case "ik_out_of_bounds":
		return m.RecordIKOutOfBounds()
	default:
		return nil
	}
}

// All returns every achievement in catalog order.
func (m *Manager) All() []Achievement {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Achievement, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.achievements[id])
	}
	return out
}

// Unlocked returns only the unlocked achievements, in catalog order.
func (m *Manager) Unlocked() []Achievement {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Achievement
	for _, id := range m.order {
		if a := m.achievements[id]; a.Unlocked {
			out = append(out, *a)
		}
	}
	return out
}

// Progress returns the completion summary.
func (m *Manager) Progress() Progress {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := Progress{TotalAchievements: len(m.achievements), Stats: m.stats}
	for _, a := range m.achievements {
		p.TotalPoints += a.Points
		if a.Unlocked {
			p.UnlockedAchievements++
			p.EarnedPoints += a.Points
		}
	}
	if p.TotalAchievements > 0 {
		p.CompletionPercentage = float64(p.UnlockedAchievements) / float64(p.TotalAchievements) * 100
	}
	return p
}

func (m *Manager) recordSimple(counter *int, id string) []Achievement {
	m.mu.Lock()
	defer m.mu.Unlock()
	if counter != nil {
		*counter++
	}
	unlocked := appendUnlock(nil, m.unlock(id))
	m.save()
	return unlocked
}

// unlock marks an achievement unlocked and returns it, or nil if already
// unlocked or unknown. Caller holds the lock.
func (m *Manager) unlock(id string) *Achievement {
	a, ok := m.achievements[id]
	if !ok || a.Unlocked {
		return nil
	}
	a.Unlocked = true
	now := m.clock.Now()
	a.UnlockTime = &now
	return a
}

func appendUnlock(list []Achievement, a *Achievement) []Achievement {
	if a == nil {
		return list
	}
	return append(list, *a)
}

type persistedState struct {
	Stats       Stats                `json:"stats"`
	UnlockedIDs []string             `json:"unlocked_achievements"`
	UnlockTimes map[string]time.Time `json:"unlock_times"`
}

// load restores progress from the backing file. Missing or corrupt files are
// logged and ignored; progress tracking is not worth failing startup over.
func (m *Manager) load() {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warnw("cannot read achievements file", "path", m.path, "error", err)
		}
		return
	}
	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		m.logger.Warnw("cannot parse achievements file", "path", m.path, "error", err)
		return
	}
	m.stats = state.Stats
	for _, id := range state.UnlockedIDs {
		if a, ok := m.achievements[id]; ok {
			a.Unlocked = true
			if ts, ok := state.UnlockTimes[id]; ok {
				t := ts
				a.UnlockTime = &t
			}
		}
	}
}

// save writes progress to the backing file. Caller holds the lock.
func (m *Manager) save() {
	if m.path == "" {
		return
	}
	state := persistedState{Stats: m.stats, UnlockTimes: map[string]time.Time{}}
	for _, id := range m.order {
		if a := m.achievements[id]; a.Unlocked {
			state.UnlockedIDs = append(state.UnlockedIDs, id)
			if a.UnlockTime != nil {
				state.UnlockTimes[id] = *a.UnlockTime
			}
		}
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		m.logger.Errorw("cannot marshal achievements", "error", err)
		return
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		m.logger.Errorw("cannot save achievements", "path", m.path, "error", err)
	}
}
