package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelshare/modelshare-server/internal/domain"
	"github.com/modelshare/modelshare-server/internal/sse"
	"github.com/modelshare/modelshare-server/internal/store"
)

// RightsService maintains the mirrored read/write sets between users and
// models.
//
// Every operation resolves the username, writes the user side, then writes
// the model side. The two writes are separate single-document updates with
// no transaction around them: a model-side failure leaves the user side
// changed, and concurrent operations on the same pair may interleave. Audit
// and Repair reconcile whatever drift that leaves behind.
type RightsService struct {
	store    store.Store
	resolver *IdentityResolver
	events   EventEmitter
	logger   *slog.Logger
}

// NewRightsService creates a rights service.
func NewRightsService(s store.Store, events EventEmitter, logger *slog.Logger) *RightsService {
	return &RightsService{
		store:    s,
		resolver: NewIdentityResolver(s),
		events:   events,
		logger:   logger,
	}
}

type rightsOp struct {
	name   string
	grant  bool
	rights domain.Rights
}

var (
	opGrantRead      = rightsOp{name: "grant_read", grant: true, rights: domain.RightRead}
	opGrantWrite     = rightsOp{name: "grant_write", grant: true, rights: domain.RightsComplete}
	opRevokeRead     = rightsOp{name: "revoke_read", rights: domain.RightRead}
	opRevokeWrite    = rightsOp{name: "revoke_write", rights: domain.RightWrite}
	opRevokeComplete = rightsOp{name: "revoke_complete", rights: domain.RightsComplete}
)

// GrantRead adds the model to the user's readModels and the user to the
// model's readers.
func (s *RightsService) GrantRead(ctx context.Context, modelID, username string) (Status, error) {
	return s.apply(ctx, opGrantRead, modelID, username)
}

// GrantWrite grants write access, which always brings read access with it.
func (s *RightsService) GrantWrite(ctx context.Context, modelID, username string) (Status, error) {
	return s.apply(ctx, opGrantWrite, modelID, username)
}

// RevokeRead removes read access only. Write access, if held, stays.
func (s *RightsService) RevokeRead(ctx context.Context, modelID, username string) (Status, error) {
	return s.apply(ctx, opRevokeRead, modelID, username)
}

// RevokeWrite removes write access only. Read access stays.
func (s *RightsService) RevokeWrite(ctx context.Context, modelID, username string) (Status, error) {
	return s.apply(ctx, opRevokeWrite, modelID, username)
}

// RevokeComplete removes both read and write access.
func (s *RightsService) RevokeComplete(ctx context.Context, modelID, username string) (Status, error) {
	return s.apply(ctx, opRevokeComplete, modelID, username)
}

func (s *RightsService) apply(ctx context.Context, op rightsOp, modelID, username string) (Status, error) {
	userID, found, err := s.resolver.Resolve(ctx, username)
	if err != nil {
		return "", err
	}
	if !found {
		return StatusUserMissing, nil
	}

	// Grants must not create dangling entries. Revokes skip the check so
	// entries left behind by a deleted model can still be cleaned up.
	if op.grant {
		if _, err := s.store.GetModel(ctx, modelID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return StatusModelMissing, nil
			}
			return "", fmt.Errorf("load model: %w", err)
		}
	}

	var userUpdate domain.UserUpdate = domain.RevokeModelRights{ModelID: modelID, Rights: op.rights}
	var modelUpdate domain.ModelUpdate = domain.RevokeUserRights{UserID: userID, Rights: op.rights}
	if op.grant {
		userUpdate = domain.GrantModelRights{ModelID: modelID, Rights: op.rights}
		modelUpdate = domain.GrantUserRights{UserID: userID, Rights: op.rights}
	}

	if _, err := s.store.UpdateUser(ctx, userID, userUpdate); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return StatusUserMissing, nil
		}
		return "", fmt.Errorf("update user side: %w", err)
	}

	if _, err := s.store.UpdateModel(ctx, modelID, modelUpdate); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound) && !op.grant:
			// Nothing left to remove on a deleted model.
		case errors.Is(err, store.ErrNotFound):
			// Deleted between the existence check and the write.
			s.logger.Warn("model vanished during grant, user side already written",
				"op", op.name, "model_id", modelID, "user_id", userID)
			return StatusModelMissing, nil
		default:
			s.logger.Error("model side of rights change failed, user side already written",
				"op", op.name, "model_id", modelID, "user_id", userID, "error", err)
			return "", fmt.Errorf("update model side: %w", err)
		}
	}

	eventType := sse.EventRightsRevoked
	if op.grant {
		eventType = sse.EventRightsGranted
	}
	s.events.Emit(sse.NewRightsEvent(eventType, modelID, userID, username, op.rights))

	s.logger.Info("rights changed",
		"op", op.name,
		"model_id", modelID,
		"user_id", userID,
	)

	return StatusOK, nil
}

// Readers returns the users holding personal read access on the model,
// sorted by username and paged.
func (s *RightsService) Readers(ctx context.Context, modelID string, offset, limit int) ([]*domain.User, Status, error) {
	return s.populateUsers(ctx, modelID, func(m *domain.Model) domain.IDSet { return m.Readers }, offset, limit)
}

// Writers returns the users holding personal write access on the model.
func (s *RightsService) Writers(ctx context.Context, modelID string, offset, limit int) ([]*domain.User, Status, error) {
	return s.populateUsers(ctx, modelID, func(m *domain.Model) domain.IDSet { return m.Writers }, offset, limit)
}

func (s *RightsService) populateUsers(ctx context.Context, modelID string, ids func(*domain.Model) domain.IDSet, offset, limit int) ([]*domain.User, Status, error) {
	m, err := s.store.GetModel(ctx, modelID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, StatusModelMissing, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("load model: %w", err)
	}

	users, err := s.store.GetUsersByIDs(ctx, ids(m))
	if err != nil {
		return nil, "", fmt.Errorf("populate users: %w", err)
	}

	q := store.Query[domain.User]{
		Less:   func(a, b *domain.User) bool { return a.Username < b.Username },
		Offset: offset,
		Limit:  limit,
	}
	return q.Apply(users), StatusOK, nil
}

// ReadModels returns the models the user holds personal read access on,
// sorted by name and paged.
func (s *RightsService) ReadModels(ctx context.Context, username string, offset, limit int) ([]*domain.Model, Status, error) {
	return s.populateModels(ctx, username, func(u *domain.User) domain.IDSet { return u.ReadModels }, offset, limit)
}

// WriteModels returns the models the user holds personal write access on.
func (s *RightsService) WriteModels(ctx context.Context, username string, offset, limit int) ([]*domain.Model, Status, error) {
	return s.populateModels(ctx, username, func(u *domain.User) domain.IDSet { return u.WriteModels }, offset, limit)
}

func (s *RightsService) populateModels(ctx context.Context, username string, ids func(*domain.User) domain.IDSet, offset, limit int) ([]*domain.Model, Status, error) {
	u, err := s.store.GetUserByUsername(ctx, domain.NormalizeUsername(username))
	if errors.Is(err, store.ErrNotFound) {
		return nil, StatusUserMissing, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("load user: %w", err)
	}

	models, err := s.store.GetModelsByIDs(ctx, ids(u))
	if err != nil {
		return nil, "", fmt.Errorf("populate models: %w", err)
	}

	q := store.Query[domain.Model]{
		Less:   func(a, b *domain.Model) bool { return a.Name < b.Name },
		Offset: offset,
		Limit:  limit,
	}
	return q.Apply(models), StatusOK, nil
}
