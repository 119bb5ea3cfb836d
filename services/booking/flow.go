package booking

import (
	"time"

	"polarflow/models"
)

// flowSteps is the fixed step sequence of the booking flow.
var flowSteps = []string{
	models.StepService,
	models.StepAddress,
	models.StepCalendar,
	models.StepPayment,
	models.StepConfirmation,
}

// FlowSteps returns the ordered booking flow steps.
func FlowSteps() []string {
	out := make([]string, len(flowSteps))
	copy(out, flowSteps)
	return out
}

func stepIndex(step string) int {
	for i, s := range flowSteps {
		if s == step {
			return i
		}
	}
	return -1
}

// stepComplete reports whether a single step's completeness predicate
// holds. The payment step is never programmatically complete; only the
// payment provider's webhook moves a customer past it.
func stepComplete(s *models.FlowSession, step string) bool {
	switch step {
	case models.StepService:
		return s.ServiceType != ""
	case models.StepAddress:
		return s.Address != nil && s.Address.Line1 != "" && s.SetupFeeCents > 0
	case models.StepCalendar:
		return !s.ScheduledAt.IsZero() &&
			IsValidBookingTime(s.ScheduledAt, time.Now()) &&
			IsWithinBusinessHours(s.ScheduledAt)
	case models.StepPayment:
		return false
	case models.StepConfirmation:
		return true
	default:
		return false
	}
}

// recomputeCompleted rebuilds CompletedSteps as the prefix of steps
// strictly before the current one that are individually complete.
func recomputeCompleted(s *models.FlowSession) {
	completed := []string{}
	cur := stepIndex(s.CurrentStep)
	for i, step := range flowSteps {
		if i >= cur {
			break
		}
		if stepComplete(s, step) {
			completed = append(completed, step)
		}
	}
	s.CompletedSteps = completed
}

// GoToStep attempts to move the flow to the target step. Backward
// navigation is always permitted; forward navigation requires every step
// before the target to be complete. Returns whether the step changed.
func GoToStep(s *models.FlowSession, target string) bool {
	targetIdx := stepIndex(target)
	if targetIdx < 0 {
		return false
	}
	curIdx := stepIndex(s.CurrentStep)

	if targetIdx > curIdx {
		for i := 0; i < targetIdx; i++ {
			if !stepComplete(s, flowSteps[i]) {
				return false
			}
		}
	}

	s.CurrentStep = target
	recomputeCompleted(s)
	s.UpdatedAt = time.Now()
	return true
}

// Setters below clear any stale error message whenever new data arrives.

// SetService records the chosen service type.
func SetService(s *models.FlowSession, serviceType string) {
	s.ServiceType = serviceType
	s.Error = ""
	recomputeCompleted(s)
	s.UpdatedAt = time.Now()
}

// SetAddress records the delivery address and resolves the setup fee for
// the chosen tier. An unknown tier leaves the fee unset so the address
// step stays incomplete.
func SetAddress(s *models.FlowSession, addr models.Address, setupTier string) {
	s.Address = &addr
	s.SetupFeeTier = setupTier
	if fee, ok := models.SetupFeeCents(setupTier); ok {
		s.SetupFeeCents = fee
	} else {
		s.SetupFeeCents = 0
	}
	s.Error = ""
	recomputeCompleted(s)
	s.UpdatedAt = time.Now()
}

// SetSchedule records the requested visit time. Both validity rules are
// checked independently and both messages surface when each fails.
func SetSchedule(s *models.FlowSession, scheduledAt, now time.Time) {
	s.ScheduledAt = scheduledAt
	s.Error = ""
	if !IsValidBookingTime(scheduledAt, now) {
		s.Error = "bookings require at least 2 hours notice"
	}
	if !IsWithinBusinessHours(scheduledAt) {
		if s.Error != "" {
			s.Error += "; "
		}
		s.Error += "visits start between 8:00 AM and 8:00 PM"
	}
	recomputeCompleted(s)
	s.UpdatedAt = time.Now()
}

// SetAddOns records the add-on selections.
func SetAddOns(s *models.FlowSession, addOns models.AddOns) {
	s.AddOns = addOns
	s.Error = ""
	recomputeCompleted(s)
	s.UpdatedAt = time.Now()
}

// SetInstructions records free-text special instructions.
func SetInstructions(s *models.FlowSession, instructions string) {
	s.Instructions = instructions
	s.Error = ""
	s.UpdatedAt = time.Now()
}
