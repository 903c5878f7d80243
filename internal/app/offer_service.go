package app

import (
	"context"

	"internship_tracker/internal/common"
	"internship_tracker/internal/domain/application"
	"internship_tracker/internal/domain/notification"
	"internship_tracker/internal/domain/offer"
	"internship_tracker/internal/domain/tracking"
	"internship_tracker/internal/domain/user"

	"github.com/sirupsen/logrus"
)

// CreateOffer records an offer for an application. It does not move the
// application status.
func (s *TrackingService) CreateOffer(ctx context.Context, actor Actor, in CreateOfferInput) (*offer.Offer, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	ac, err := loadApplicationContext(ctx, s.store, in.ApplicationID)
	if err != nil {
		return nil, err
	}
	if err := actor.authorize(employerOrStaff, ac); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	o := &offer.Offer{
		ApplicationID:    ac.app.ID,
		StudentID:        ac.app.StudentID,
		CompanyID:        ac.internship.CompanyID,
		Status:           in.Status,
		Stipend:          in.Stipend,
		StartDate:        in.StartDate,
		ResponseDeadline: now.Add(s.offerWindow),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if o.Status == "" {
		o.Status = offer.StatusExtended
	}
	if in.ResponseDeadline != nil {
		o.ResponseDeadline = in.ResponseDeadline.UTC()
	}
	if err := s.store.Offers().Create(ctx, o); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"application_id": o.ApplicationID, "offer_id": o.ID}).Info("Offer created")
	s.events.emit(ctx, o.StudentID, notification.EventOfferCreated, offerPayload(o))
	return o, nil
}

// GetOffer returns an offer the actor may see.
func (s *TrackingService) GetOffer(ctx context.Context, actor Actor, id int64) (*offer.Offer, error) {
	o, err := s.store.Offers().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ac, err := loadApplicationContext(ctx, s.store, o.ApplicationID)
	if err != nil {
		return nil, err
	}
	if !actor.canView(ac) {
		return nil, errForbidden("you cannot view this offer")
	}
	return o, nil
}

// UpdateOfferStatus sets an offer's status. Any status may follow any other.
// Students may only accept or reject their own offers.
func (s *TrackingService) UpdateOfferStatus(ctx context.Context, actor Actor, in UpdateOfferStatusInput) (*offer.Offer, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	o, err := s.store.Offers().GetByID(ctx, in.OfferID)
	if err != nil {
		return nil, err
	}
	ac, err := loadApplicationContext(ctx, s.store, o.ApplicationID)
	if err != nil {
		return nil, err
	}
	if err := actor.authorize(actionRoles[ActionUpdateOfferStatus], ac); err != nil {
		return nil, err
	}
	if actor.Role == user.RoleStudent && in.Status != offer.StatusAccepted && in.Status != offer.StatusRejected {
		return nil, errForbidden("students can only accept or reject an offer")
	}

	o.Status = in.Status
	if in.ContractSigned != nil {
		o.ContractSigned = *in.ContractSigned
	}
	o.UpdatedAt = s.clock.Now().UTC()
	if err := s.store.Offers().Update(ctx, o); err != nil {
		return nil, err
	}

	payload := offerPayload(o)
	s.events.emit(ctx, o.StudentID, notification.EventOfferStatus, payload)
	if ac.internship.PostedBy != actor.ID {
		s.events.emit(ctx, ac.internship.PostedBy, notification.EventOfferStatus, payload)
	}
	return o, nil
}

// MarkResumeViewed stamps the first reviewer of the student's resume and
// completes the "Resume Review" step.
func (s *TrackingService) MarkResumeViewed(ctx context.Context, actor Actor, in MarkResumeViewedInput) (*application.Application, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}

	var updated *application.Application
	err := s.store.WithinTx(ctx, func(tx Store) error {
		ac, err := loadApplicationContext(ctx, tx, in.ApplicationID)
		if err != nil {
			return err
		}
		if err := actor.authorize(actionRoles[ActionMarkResumeViewed], ac); err != nil {
			return err
		}

		now := s.clock.Now().UTC()
		a := ac.app
		if a.ResumeViewedAt == nil {
			viewer := actor.ID
			a.ResumeViewedAt = &now
			a.ResumeViewedBy = &viewer
			a.UpdatedAt = now
			if err := tx.Applications().Update(ctx, a); err != nil {
				return err
			}
		}
		if _, err := completeNamedStep(ctx, tx, a.ID, tracking.StepResumeReview, "", actor.ID, now); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		if !common.Is(err, common.CodeForbidden) {
			s.log.WithError(err).WithField("application_id", in.ApplicationID).Warn("Could not mark resume viewed")
		}
		return nil, err
	}

	s.events.emit(ctx, updated.StudentID, notification.EventResumeViewed, notification.Payload{
		"application_id": updated.ID,
		"viewed_by":      actor.ID,
	})
	return updated, nil
}
