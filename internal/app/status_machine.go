package app

import (
	"internship_tracker/internal/domain/application"
	"internship_tracker/internal/domain/tracking"
	"internship_tracker/internal/domain/user"
)

// transitionRule describes one edge of the application status machine: who may
// take it and which ledger step it completes.
type transitionRule struct {
	roles []user.Role
	step  tracking.StepName
}

var (
	mentorOnly        = []user.Role{user.RoleMentor}
	employerOrStaff   = []user.Role{user.RoleEmployer, user.RoleStaff}
	studentOnly       = []user.Role{user.RoleStudent}
	staffOnly         = []user.Role{user.RoleStaff}
	transitionOrdered = []application.Status{
		application.StatusApplied,
		application.StatusMentorApproved,
		application.StatusMentorRejected,
		application.StatusInterviewed,
		application.StatusOffered,
		application.StatusNotOffered,
		application.StatusOfferAccepted,
		application.StatusCompleted,
	}
)

var transitionRules = map[application.Status]map[application.Status]transitionRule{
	application.StatusApplied: {
		application.StatusMentorApproved: {roles: mentorOnly, step: tracking.StepMentorReview},
		application.StatusMentorRejected: {roles: mentorOnly, step: tracking.StepMentorReview},
	},
	application.StatusMentorApproved: {
		application.StatusInterviewed: {roles: employerOrStaff, step: tracking.StepInterviewProcess},
	},
	application.StatusInterviewed: {
		application.StatusOffered:    {roles: employerOrStaff, step: tracking.StepFinalDecision},
		application.StatusNotOffered: {roles: employerOrStaff, step: tracking.StepFinalDecision},
	},
	application.StatusOffered: {
		application.StatusOfferAccepted: {roles: studentOnly, step: tracking.StepOfferProcessing},
	},
	application.StatusOfferAccepted: {
		application.StatusCompleted: {roles: staffOnly, step: tracking.StepOfferProcessing},
	},
}

func lookupTransition(from, to application.Status) (transitionRule, bool) {
	rule, ok := transitionRules[from][to]
	return rule, ok
}

// IsAllowedTransition reports whether to is a legal next state of from,
// regardless of who asks.
func IsAllowedTransition(from, to application.Status) bool {
	_, ok := lookupTransition(from, to)
	return ok
}

// NextStatuses lists the legal next states of from in lifecycle order.
func NextStatuses(from application.Status) []application.Status {
	next := make([]application.Status, 0, 2)
	for _, s := range transitionOrdered {
		if IsAllowedTransition(from, s) {
			next = append(next, s)
		}
	}
	return next
}
