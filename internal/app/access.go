package app

import (
	"context"
	"fmt"

	"internship_tracker/internal/domain/application"
)

func loadApplicationContext(ctx context.Context, s Store, id int64) (*applicationContext, error) {
	a, err := s.Applications().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return hydrateApplication(ctx, s, a)
}

func hydrateApplication(ctx context.Context, s Store, a *application.Application) (*applicationContext, error) {
	student, err := s.Users().GetByID(ctx, a.StudentID)
	if err != nil {
		return nil, fmt.Errorf("load student %d of application %d: %w", a.StudentID, a.ID, err)
	}
	in, err := s.Internships().GetByID(ctx, a.InternshipID)
	if err != nil {
		return nil, fmt.Errorf("load internship %d of application %d: %w", a.InternshipID, a.ID, err)
	}
	return &applicationContext{app: a, student: student, internship: in}, nil
}
