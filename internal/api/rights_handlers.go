package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	domainerrors "github.com/modelshare/modelshare-server/internal/errors"
	"github.com/modelshare/modelshare-server/internal/service"
)

type rightsChange func(ctx context.Context, modelID, username string) (service.Status, error)

func (s *Server) registerRightsRoutes() {
	rights := s.services.Rights

	// Grants addressed from the model.
	s.registerModelGrant("grantModelWrite", "/model/{modelId}/writers", "Grant write access",
		"Adds the user to the model's writers and readers, and the model to the user's write and read lists", rights.GrantWrite)
	s.registerModelGrant("grantModelRead", "/model/{modelId}/readers", "Grant read access",
		"Adds the user to the model's readers and the model to the user's read list", rights.GrantRead)

	// Grants addressed from the user.
	s.registerUserGrant("grantUserWrite", "/user/{username}/writeModels", "Grant write access", rights.GrantWrite)
	s.registerUserGrant("grantUserRead", "/user/{username}/readModels", "Grant read access", rights.GrantRead)

	// Revokes.
	s.registerRevoke("revokeUserWrite", "/user/{username}/writeModel/{modelId}", "Revoke write access",
		"Removes write access only; read access is kept", rights.RevokeWrite)
	s.registerRevoke("revokeUserRead", "/user/{username}/readModel/{modelId}", "Revoke all access",
		"Removes read and write access", rights.RevokeComplete)
	s.registerRevoke("revokeModelWriter", "/model/{modelId}/writer/{username}", "Revoke write access",
		"Removes write access only; read access is kept", rights.RevokeWrite)
	s.registerRevoke("revokeModelReader", "/model/{modelId}/reader/{username}", "Revoke all access",
		"Removes read and write access", rights.RevokeComplete)
	s.registerRevoke("revokeModelReaderOnly", "/model/{modelId}/reader/{username}/only", "Revoke read access",
		"Removes read access only; write access is kept", rights.RevokeRead)

	huma.Register(s.api, huma.Operation{
		OperationID: "listModelWriters",
		Method:      http.MethodGet,
		Path:        "/model/{modelId}/writers",
		Summary:     "List writers",
		Description: "Returns the users with write access, sorted by username",
		Tags:        []string{"Rights"},
	}, s.handleListWriters)

	huma.Register(s.api, huma.Operation{
		OperationID: "listModelReaders",
		Method:      http.MethodGet,
		Path:        "/model/{modelId}/readers",
		Summary:     "List readers",
		Description: "Returns the users with read access, sorted by username",
		Tags:        []string{"Rights"},
	}, s.handleListReaders)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUserWriteModels",
		Method:      http.MethodGet,
		Path:        "/user/{username}/writeModels",
		Summary:     "List writable models",
		Description: "Returns the models the user may write, sorted by name",
		Tags:        []string{"Rights"},
	}, s.handleListWriteModels)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUserReadModels",
		Method:      http.MethodGet,
		Path:        "/user/{username}/readModels",
		Summary:     "List readable models",
		Description: "Returns the models the user may read, sorted by name",
		Tags:        []string{"Rights"},
	}, s.handleListReadModels)

	huma.Register(s.api, huma.Operation{
		OperationID: "auditRights",
		Method:      http.MethodGet,
		Path:        "/rights/audit",
		Summary:     "Audit rights",
		Description: "Lists every place where a user's rights and the model's reader and writer sets disagree",
		Tags:        []string{"Rights"},
	}, s.handleAuditRights)

	huma.Register(s.api, huma.Operation{
		OperationID: "repairRights",
		Method:      http.MethodPost,
		Path:        "/rights/repair",
		Summary:     "Repair rights",
		Description: "Restores the mirror between users and models and drops ids of deleted documents",
		Tags:        []string{"Rights"},
	}, s.handleRepairRights)
}

// === DTOs ===

// UsernameRequest names the user a grant is for.
type UsernameRequest struct {
	Username string `json:"username,omitempty" doc:"Username"`
}

// ModelGrantInput grants a user access to the model in the path. The
// username comes from the body, else the query string.
type ModelGrantInput struct {
	ModelIDPath
	Username string           `query:"username" doc:"Username, when not sent in the body"`
	Body     *UsernameRequest `required:"false"`
}

// ModelIDRequest names the model a grant is for.
type ModelIDRequest struct {
	ModelID string `json:"modelId,omitempty" doc:"Model ID"`
}

// UserGrantInput grants the user in the path access to a model. The model
// id comes from the body, else the query string.
type UserGrantInput struct {
	UsernamePath
	ModelID string          `query:"modelId" doc:"Model ID, when not sent in the body"`
	Body    *ModelIDRequest `required:"false"`
}

// RevokeInput addresses a single user and model pair.
type RevokeInput struct {
	Username string `path:"username" doc:"Username"`
	ModelID  string `path:"modelId" doc:"Model ID"`
}

// ModelPageInput lists documents related to a model.
type ModelPageInput struct {
	ModelIDPath
	PageParams
}

// UserSummariesBody is a list of users without their rights sets.
type UserSummariesBody struct {
	StatusBody
	Users []UserSummary `json:"users"`
}

// UserSummariesOutput wraps a user summary list for Huma.
type UserSummariesOutput struct {
	Body UserSummariesBody
}

// AuditBody is the rights audit response.
type AuditBody struct {
	StatusBody
	Consistent bool `json:"consistent"`
	service.AuditReport
}

// AuditOutput wraps the audit response for Huma.
type AuditOutput struct {
	Body AuditBody
}

// RepairBody is the rights repair response.
type RepairBody struct {
	StatusBody
	Fixed  int                  `json:"fixed"`
	Report *service.AuditReport `json:"report"`
}

// RepairOutput wraps the repair response for Huma.
type RepairOutput struct {
	Body RepairBody
}

// === Handlers ===

func (s *Server) registerModelGrant(opID, path, summary, description string, grant rightsChange) {
	huma.Register(s.api, huma.Operation{
		OperationID: opID,
		Method:      http.MethodPost,
		Path:        path,
		Summary:     summary,
		Description: description,
		Tags:        []string{"Rights"},
	}, func(ctx context.Context, input *ModelGrantInput) (*StatusOutput, error) {
		var fromBody string
		if input.Body != nil {
			fromBody = input.Body.Username
		}
		username := pick(fromBody, input.Username)
		if username == "" {
			return nil, s.fail(opID, missingParam("username"))
		}
		status, err := grant(ctx, input.ModelID, username)
		if err != nil {
			return nil, s.fail(opID, err)
		}
		return statusOutput(status), nil
	})
}

func (s *Server) registerUserGrant(opID, path, summary string, grant rightsChange) {
	huma.Register(s.api, huma.Operation{
		OperationID: opID,
		Method:      http.MethodPost,
		Path:        path,
		Summary:     summary,
		Tags:        []string{"Rights"},
	}, func(ctx context.Context, input *UserGrantInput) (*StatusOutput, error) {
		var fromBody string
		if input.Body != nil {
			fromBody = input.Body.ModelID
		}
		modelID := pick(fromBody, input.ModelID)
		if modelID == "" {
			return nil, s.fail(opID, missingParam("modelId"))
		}
		status, err := grant(ctx, modelID, input.Username)
		if err != nil {
			return nil, s.fail(opID, err)
		}
		return statusOutput(status), nil
	})
}

func (s *Server) registerRevoke(opID, path, summary, description string, revoke rightsChange) {
	huma.Register(s.api, huma.Operation{
		OperationID: opID,
		Method:      http.MethodDelete,
		Path:        path,
		Summary:     summary,
		Description: description,
		Tags:        []string{"Rights"},
	}, func(ctx context.Context, input *RevokeInput) (*StatusOutput, error) {
		status, err := revoke(ctx, input.ModelID, input.Username)
		if err != nil {
			return nil, s.fail(opID, err)
		}
		return statusOutput(status), nil
	})
}

func missingParam(name string) error {
	return domainerrors.ValidationWithDetails("validation failed", map[string]string{name: "is required"})
}

func (s *Server) handleListWriters(ctx context.Context, input *ModelPageInput) (*UserSummariesOutput, error) {
	users, status, err := s.services.Rights.Writers(ctx, input.ModelID, input.Offset, input.Limit)
	if err != nil {
		return nil, s.fail("listModelWriters", err)
	}
	return &UserSummariesOutput{Body: UserSummariesBody{StatusBody: StatusBody{Status: status}, Users: toUserSummaries(users)}}, nil
}

func (s *Server) handleListReaders(ctx context.Context, input *ModelPageInput) (*UserSummariesOutput, error) {
	users, status, err := s.services.Rights.Readers(ctx, input.ModelID, input.Offset, input.Limit)
	if err != nil {
		return nil, s.fail("listModelReaders", err)
	}
	return &UserSummariesOutput{Body: UserSummariesBody{StatusBody: StatusBody{Status: status}, Users: toUserSummaries(users)}}, nil
}

func (s *Server) handleListWriteModels(ctx context.Context, input *UserPageInput) (*ModelSummariesOutput, error) {
	models, status, err := s.services.Rights.WriteModels(ctx, input.Username, input.Offset, input.Limit)
	if err != nil {
		return nil, s.fail("listUserWriteModels", err)
	}
	return &ModelSummariesOutput{Body: ModelSummariesBody{StatusBody: StatusBody{Status: status}, Models: toModelSummaries(models)}}, nil
}

func (s *Server) handleListReadModels(ctx context.Context, input *UserPageInput) (*ModelSummariesOutput, error) {
	models, status, err := s.services.Rights.ReadModels(ctx, input.Username, input.Offset, input.Limit)
	if err != nil {
		return nil, s.fail("listUserReadModels", err)
	}
	return &ModelSummariesOutput{Body: ModelSummariesBody{StatusBody: StatusBody{Status: status}, Models: toModelSummaries(models)}}, nil
}

func (s *Server) handleAuditRights(ctx context.Context, _ *struct{}) (*AuditOutput, error) {
	report, err := s.services.Rights.Audit(ctx)
	if err != nil {
		return nil, s.fail("auditRights", err)
	}
	return &AuditOutput{Body: AuditBody{
		StatusBody:  StatusBody{Status: service.StatusOK},
		Consistent:  report.Consistent(),
		AuditReport: *report,
	}}, nil
}

func (s *Server) handleRepairRights(ctx context.Context, _ *struct{}) (*RepairOutput, error) {
	result, err := s.services.Rights.Repair(ctx)
	if err != nil {
		return nil, s.fail("repairRights", err)
	}
	return &RepairOutput{Body: RepairBody{
		StatusBody: StatusBody{Status: service.StatusOK},
		Fixed:      result.Fixed,
		Report:     result.Report,
	}}, nil
}
