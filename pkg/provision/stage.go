package provision

import "fmt"

// Stage is a step of the tenant onboarding sequence, recorded on the
// catalog row as provisioning progresses.
type Stage string

const (
	StageRegistered      Stage = "registered"
	StageDatabaseCreated Stage = "database_created"
	StageSchemaMigrated  Stage = "schema_migrated"
	StageActive          Stage = "active"
)

// StageError reports which onboarding stage failed and why. The tenant is
// left non-serving with the same stage and cause recorded on its catalog
// row for operator diagnosis.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("provisioning stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
