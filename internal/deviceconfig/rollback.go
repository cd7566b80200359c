package deviceconfig

import (
	"fmt"
	"sync"
	"time"
)

// DefaultMaxSnapshots bounds the snapshot history
const DefaultMaxSnapshots = 10

// ConfigurationSnapshot represents a saved configuration state for rollback
type ConfigurationSnapshot struct {
	// Config is the saved configuration dump
	Config *Config

	// Timestamp when this snapshot was created
	Timestamp time.Time

	// Description of what operation this snapshot was taken before
	Description string
}

// RollbackManager manages configuration snapshots for rollback support.
// Rollback is an explicit caller operation; nothing here retries.
type RollbackManager struct {
	client *Client

	snapshots    []*ConfigurationSnapshot
	maxSnapshots int

	mutex sync.RWMutex
}

// NewRollbackManager creates a new rollback manager for a client
func NewRollbackManager(client *Client) *RollbackManager {
	return &RollbackManager{
		client:       client,
		snapshots:    make([]*ConfigurationSnapshot, 0, DefaultMaxSnapshots),
		maxSnapshots: DefaultMaxSnapshots,
	}
}

// SaveSnapshot captures the current device configuration.
// This should be called before any configuration update.
func (rm *RollbackManager) SaveSnapshot(description string) (*ConfigurationSnapshot, error) {
	config, err := rm.client.GetAllConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch configuration for snapshot: %w", err)
	}

	snapshot := &ConfigurationSnapshot{
		Config:      config,
		Timestamp:   time.Now(),
		Description: description,
	}

	rm.mutex.Lock()
	defer rm.mutex.Unlock()

	rm.snapshots = append(rm.snapshots, snapshot)
	if len(rm.snapshots) > rm.maxSnapshots {
		rm.snapshots = rm.snapshots[1:]
	}

	return snapshot, nil
}

// GetLatestSnapshot returns the most recent snapshot, or nil if no snapshots exist
func (rm *RollbackManager) GetLatestSnapshot() *ConfigurationSnapshot {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()

	if len(rm.snapshots) == 0 {
		return nil
	}
	return rm.snapshots[len(rm.snapshots)-1]
}

// GetSnapshots returns all snapshots in chronological order (oldest first)
func (rm *RollbackManager) GetSnapshots() []*ConfigurationSnapshot {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()

	result := make([]*ConfigurationSnapshot, len(rm.snapshots))
	copy(result, rm.snapshots)
	return result
}

// ClearSnapshots removes all saved snapshots
func (rm *RollbackManager) ClearSnapshots() {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()

	rm.snapshots = make([]*ConfigurationSnapshot, 0, rm.maxSnapshots)
}

// RollbackToSnapshot rewrites every snapshot key whose current value
// differs from the snapshot, then applies opts (verify, restart). Keys
// that only exist on the device now are left alone.
func (rm *RollbackManager) RollbackToSnapshot(snapshot *ConfigurationSnapshot, opts ApplyOptions) *ApplyResult {
	if snapshot == nil || snapshot.Config == nil {
		return &ApplyResult{Error: fmt.Errorf("snapshot is nil")}
	}

	current, err := rm.client.GetAllConfig()
	if err != nil {
		return &ApplyResult{Error: fmt.Errorf("failed to read configuration for rollback: %w", err)}
	}

	var restore []Setting
	for _, ch := range snapshot.Config.Diff(current) {
		if !ch.OldPresent {
			continue
		}
		restore = append(restore, Setting{Key: ch.Key, Value: ch.Old})
	}

	if len(restore) == 0 {
		return &ApplyResult{Success: true, Actual: current}
	}
	return rm.client.ApplySettings(restore, opts)
}

// RollbackToLatest restores the most recent snapshot
func (rm *RollbackManager) RollbackToLatest(opts ApplyOptions) *ApplyResult {
	snapshot := rm.GetLatestSnapshot()
	if snapshot == nil {
		return &ApplyResult{Error: fmt.Errorf("no snapshots available for rollback")}
	}
	return rm.RollbackToSnapshot(snapshot, opts)
}

// SafeApplyResult contains the results of a safe apply
type SafeApplyResult struct {
	// Success indicates whether the apply succeeded
	Success bool

	// Description of the operation
	Description string

	// ApplyResult contains the result of the apply attempt
	ApplyResult *ApplyResult

	// RollbackAttempted indicates whether rollback was attempted
	RollbackAttempted bool

	// RollbackSucceeded is only meaningful if RollbackAttempted is true
	RollbackSucceeded bool

	// RollbackResult contains the result of the rollback attempt
	RollbackResult *ApplyResult

	// Error contains any error that occurred
	Error error
}

// SafeApply snapshots the configuration, applies settings and, if the
// apply fails after writing anything, rolls back to the snapshot once.
func (rm *RollbackManager) SafeApply(settings []Setting, opts ApplyOptions, description string) *SafeApplyResult {
	result := &SafeApplyResult{Description: description}

	snapshot, err := rm.SaveSnapshot(description)
	if err != nil {
		result.Error = fmt.Errorf("failed to save pre-apply snapshot: %w", err)
		return result
	}

	applyResult := rm.client.ApplySettings(settings, opts)
	result.ApplyResult = applyResult

	if applyResult.Success {
		result.Success = true
		return result
	}

	if len(applyResult.Applied) == 0 {
		result.Error = applyResult.Error
		return result
	}

	result.RollbackAttempted = true
	rollbackResult := rm.RollbackToSnapshot(snapshot, opts)
	result.RollbackResult = rollbackResult

	if rollbackResult.Success {
		result.RollbackSucceeded = true
		result.Error = fmt.Errorf("apply failed (%w), rolled back to previous configuration", applyResult.Error)
	} else {
		result.Error = fmt.Errorf("apply failed (%w) AND rollback failed: %w", applyResult.Error, rollbackResult.Error)
	}

	return result
}

// String returns a human-readable summary of the safe apply result
func (r *SafeApplyResult) String() string {
	if r.Success {
		return fmt.Sprintf("✅ Applied: %s (%d setting(s))", r.Description, len(r.ApplyResult.Applied))
	}

	if r.RollbackAttempted {
		if r.RollbackSucceeded {
			return fmt.Sprintf("⚠️  Apply failed but rolled back: %s\nApply error: %v",
				r.Description, r.ApplyResult.Error)
		}
		return fmt.Sprintf("❌ Apply failed and rollback failed: %s\nApply error: %v\nRollback error: %v",
			r.Description, r.ApplyResult.Error, r.RollbackResult.Error)
	}

	return fmt.Sprintf("❌ Apply failed: %s\nError: %v", r.Description, r.Error)
}
