package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelshare/modelshare-server/internal/domain"
	"github.com/modelshare/modelshare-server/internal/sse"
	"github.com/modelshare/modelshare-server/internal/store"
)

// DiscrepancyKind classifies a break in the user/model rights mirror.
type DiscrepancyKind string

const (
	// MissingOnModel: the user lists the model, the model does not list the user.
	MissingOnModel DiscrepancyKind = "missing_on_model"
	// MissingOnUser: the model lists the user, the user does not list the model.
	MissingOnUser DiscrepancyKind = "missing_on_user"
	// DanglingModel: the user lists a model that no longer exists.
	DanglingModel DiscrepancyKind = "dangling_model"
	// DanglingUser: the model lists a user that no longer exists.
	DanglingUser DiscrepancyKind = "dangling_user"
	// WriteWithoutRead: write access recorded without read access on the same side.
	WriteWithoutRead DiscrepancyKind = "write_without_read"
)

// Discrepancy is one mirror mismatch for a single right.
type Discrepancy struct {
	Kind    DiscrepancyKind `json:"kind"`
	UserID  string          `json:"userId"`
	ModelID string          `json:"modelId"`
	Right   string          `json:"right"`
	Side    string          `json:"side"` // "user" or "model": where the entry was found
	right   domain.Rights
}

// Repairable reports whether Repair acts on this kind of discrepancy.
func (d Discrepancy) Repairable() bool {
	return d.Kind != WriteWithoutRead
}

// AuditReport is the result of scanning both collections.
type AuditReport struct {
	UsersChecked  int           `json:"usersChecked"`
	ModelsChecked int           `json:"modelsChecked"`
	Discrepancies []Discrepancy `json:"discrepancies"`
}

// Consistent reports whether no discrepancy was found.
func (r *AuditReport) Consistent() bool {
	return len(r.Discrepancies) == 0
}

// Audit scans every user and model and lists where the two sides of the
// rights mirror disagree. It reads a snapshot per collection, so operations
// running concurrently may show up as transient mismatches.
func (s *RightsService) Audit(ctx context.Context) (*AuditReport, error) {
	users, err := s.store.ListUsers(ctx, store.Query[domain.User]{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	models, err := s.store.ListModels(ctx, store.Query[domain.Model]{})
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	usersByID := make(map[string]*domain.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}
	modelsByID := make(map[string]*domain.Model, len(models))
	for _, m := range models {
		modelsByID[m.ID] = m
	}

	report := &AuditReport{
		UsersChecked:  len(users),
		ModelsChecked: len(models),
		Discrepancies: []Discrepancy{},
	}
	add := func(kind DiscrepancyKind, side, userID, modelID string, r domain.Rights) {
		report.Discrepancies = append(report.Discrepancies, Discrepancy{
			Kind:    kind,
			UserID:  userID,
			ModelID: modelID,
			Right:   r.String(),
			Side:    side,
			right:   r,
		})
	}

	for _, u := range users {
		for _, side := range []struct {
			ids   domain.IDSet
			right domain.Rights
		}{{u.ReadModels, domain.RightRead}, {u.WriteModels, domain.RightWrite}} {
			for _, modelID := range side.ids {
				m, ok := modelsByID[modelID]
				switch {
				case !ok:
					add(DanglingModel, "user", u.ID, modelID, side.right)
				case !m.RightsOf(u.ID).Has(side.right):
					add(MissingOnModel, "user", u.ID, modelID, side.right)
				}
			}
		}
		for _, modelID := range u.WriteModels {
			if !u.ReadModels.Contains(modelID) {
				add(WriteWithoutRead, "user", u.ID, modelID, domain.RightRead)
			}
		}
	}

	for _, m := range models {
		for _, side := range []struct {
			ids   domain.IDSet
			right domain.Rights
		}{{m.Readers, domain.RightRead}, {m.Writers, domain.RightWrite}} {
			for _, userID := range side.ids {
				u, ok := usersByID[userID]
				switch {
				case !ok:
					add(DanglingUser, "model", userID, m.ID, side.right)
				case !u.RightsOn(m.ID).Has(side.right):
					add(MissingOnUser, "model", userID, m.ID, side.right)
				}
			}
		}
		for _, userID := range m.Writers {
			if !m.Readers.Contains(userID) {
				add(WriteWithoutRead, "model", userID, m.ID, domain.RightRead)
			}
		}
	}

	return report, nil
}

// RepairResult reports what a repair pass found and how much it changed.
type RepairResult struct {
	Report *AuditReport `json:"report"`
	Fixed  int          `json:"fixed"`
}

// Repair audits the mirror and restores it from the user side, which rights
// operations always write first. An entry the user holds but the model lacks
// is added to the model; an entry the model holds but the user lacks is
// removed from the model. Dangling ids are dropped and write-without-read is
// left as found. Documents that disappear while repairing are skipped.
func (s *RightsService) Repair(ctx context.Context) (*RepairResult, error) {
	report, err := s.Audit(ctx)
	if err != nil {
		return nil, err
	}

	fixed := 0
	for _, d := range report.Discrepancies {
		if !d.Repairable() {
			continue
		}

		var err error
		switch d.Kind {
		case MissingOnModel:
			_, err = s.store.UpdateModel(ctx, d.ModelID, domain.GrantUserRights{UserID: d.UserID, Rights: d.right})
		case MissingOnUser:
			_, err = s.store.UpdateModel(ctx, d.ModelID, domain.RevokeUserRights{UserID: d.UserID, Rights: d.right})
		case DanglingModel:
			_, err = s.store.UpdateUser(ctx, d.UserID, domain.RevokeModelRights{ModelID: d.ModelID, Rights: d.right})
		case DanglingUser:
			_, err = s.store.UpdateModel(ctx, d.ModelID, domain.RevokeUserRights{UserID: d.UserID, Rights: d.right})
		}
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("repair %s %s/%s: %w", d.Kind, d.UserID, d.ModelID, err)
		}
		fixed++
	}

	if fixed > 0 {
		s.events.Emit(sse.NewRepairEvent(fixed))
	}
	s.logger.Info("rights repair finished",
		"discrepancies", len(report.Discrepancies),
		"fixed", fixed,
	)

	return &RepairResult{Report: report, Fixed: fixed}, nil
}
