package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/modelshare/modelshare-server/internal/domain"
	domainerrors "github.com/modelshare/modelshare-server/internal/errors"
	"github.com/modelshare/modelshare-server/internal/search"
	"github.com/modelshare/modelshare-server/internal/service"
)

func (s *Server) registerModelRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createModel",
		Method:      http.MethodPost,
		Path:        "/models",
		Summary:     "Create model",
		Description: "Creates a model with empty reader and writer sets",
		Tags:        []string{"Models"},
	}, s.handleCreateModel)

	huma.Register(s.api, huma.Operation{
		OperationID: "listModels",
		Method:      http.MethodGet,
		Path:        "/models",
		Summary:     "List models",
		Description: "Returns models sorted by name",
		Tags:        []string{"Models"},
	}, s.handleListModels)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPublicReadModels",
		Method:      http.MethodGet,
		Path:        "/models/publicRead",
		Summary:     "List publicly readable models",
		Tags:        []string{"Models"},
	}, s.handleListPublicRead)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPublicWriteModels",
		Method:      http.MethodGet,
		Path:        "/models/publicWrite",
		Summary:     "List publicly writable models",
		Tags:        []string{"Models"},
	}, s.handleListPublicWrite)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchModels",
		Method:      http.MethodGet,
		Path:        "/models/search",
		Summary:     "Search models",
		Description: "Full-text search over model names, tags and creators",
		Tags:        []string{"Models", "Search"},
	}, s.handleSearchModels)

	huma.Register(s.api, huma.Operation{
		OperationID: "getModel",
		Method:      http.MethodGet,
		Path:        "/model/{modelId}",
		Summary:     "Get model",
		Tags:        []string{"Models"},
	}, s.handleGetModel)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateModel",
		Method:      http.MethodPut,
		Path:        "/model/{modelId}",
		Summary:     "Update model",
		Description: "Changes any of the model fields sent. Rights are changed through the rights routes.",
		Tags:        []string{"Models"},
	}, s.handleUpdateModel)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteModel",
		Method:      http.MethodDelete,
		Path:        "/model/{modelId}",
		Summary:     "Delete model",
		Tags:        []string{"Models"},
	}, s.handleDeleteModel)

	huma.Register(s.api, huma.Operation{
		OperationID: "listModelComments",
		Method:      http.MethodGet,
		Path:        "/model/{modelId}/comments",
		Summary:     "List model comments",
		Description: "Returns the comments on a model in thread order",
		Tags:        []string{"Models", "Comments"},
	}, s.handleListModelComments)

	for _, f := range modelFields {
		s.registerModelField(f)
	}
}

// modelField is a single model attribute exposed as its own GET and PUT
// route. key names the attribute in responses and request bodies.
type modelField struct {
	route  string
	key    string
	get    func(*domain.Model) any
	update func(raw any) (domain.ModelUpdate, error)
}

var modelFields = []modelField{
	{
		route: "name", key: "name",
		get: func(m *domain.Model) any { return m.Name },
		update: func(raw any) (domain.ModelUpdate, error) {
			v, err := decodeField[string]("name", raw)
			if err == nil && v == "" {
				err = domainerrors.ValidationWithDetails("validation failed", map[string]string{"name": "is required"})
			}
			return domain.SetName{Name: v}, err
		},
	},
	{
		route: "file", key: "file",
		get: func(m *domain.Model) any { return m.File },
		update: func(raw any) (domain.ModelUpdate, error) {
			v, err := decodeField[string]("file", raw)
			return domain.SetFile{FileID: v}, err
		},
	},
	{
		route: "creator", key: "creator",
		get: func(m *domain.Model) any { return m.Creator },
		update: func(raw any) (domain.ModelUpdate, error) {
			v, err := decodeField[string]("creator", raw)
			return domain.SetCreator{Username: domain.NormalizeUsername(v)}, err
		},
	},
	{
		route: "creationdate", key: "creationDate",
		get: func(m *domain.Model) any { return m.CreationDate },
		update: func(raw any) (domain.ModelUpdate, error) {
			v, err := decodeField[FlexTime]("creationDate", raw)
			return domain.SetCreationDate{Date: v.Time}, err
		},
	},
	{
		route: "thumbnail", key: "thumbnail",
		get: func(m *domain.Model) any { return m.Thumbnail },
		update: func(raw any) (domain.ModelUpdate, error) {
			v, err := decodeField[string]("thumbnail", raw)
			return domain.SetThumbnail{FileID: v}, err
		},
	},
	{
		route: "tags", key: "tags",
		get: func(m *domain.Model) any { return nonNil(m.Tags) },
		update: func(raw any) (domain.ModelUpdate, error) {
			v, err := decodeField[[]string]("tags", raw)
			return domain.SetTags{Tags: v}, err
		},
	},
	{
		route: "publicRead", key: "publicRead",
		get: func(m *domain.Model) any { return m.PublicRead },
		update: func(raw any) (domain.ModelUpdate, error) {
			v, err := decodeField[bool]("publicRead", raw)
			return domain.SetPublicRead{Public: v}, err
		},
	},
	{
		route: "publicWrite", key: "publicWrite",
		get: func(m *domain.Model) any { return m.PublicWrite },
		update: func(raw any) (domain.ModelUpdate, error) {
			v, err := decodeField[bool]("publicWrite", raw)
			return domain.SetPublicWrite{Public: v}, err
		},
	},
}

// decodeField converts a loosely decoded JSON value into T.
func decodeField[T any](key string, raw any) (T, error) {
	var v T
	if raw == nil {
		return v, domainerrors.ValidationWithDetails("validation failed", map[string]string{key: "is required"})
	}
	data, err := json.Marshal(raw)
	if err == nil {
		err = json.Unmarshal(data, &v)
	}
	if err != nil {
		return v, domainerrors.ValidationWithDetails("validation failed", map[string]string{key: "has the wrong type"})
	}
	return v, nil
}

func (s *Server) registerModelField(f modelField) {
	huma.Register(s.api, huma.Operation{
		OperationID: "getModelField-" + f.route,
		Method:      http.MethodGet,
		Path:        "/model/{modelId}/" + f.route,
		Summary:     "Get model " + f.key,
		Tags:        []string{"Models"},
	}, func(ctx context.Context, input *ModelIDPath) (*FieldOutput, error) {
		m, status, err := s.services.Models.Get(ctx, input.ModelID)
		if err != nil {
			return nil, s.fail("getModelField", err)
		}
		if !status.OK() {
			return fieldOutput(status, f.key, nil), nil
		}
		return fieldOutput(status, f.key, f.get(m)), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "setModelField-" + f.route,
		Method:      http.MethodPut,
		Path:        "/model/{modelId}/" + f.route,
		Summary:     "Set model " + f.key,
		Description: "Reads the new value from the body field named " + f.key,
		Tags:        []string{"Models"},
	}, func(ctx context.Context, input *ModelFieldInput) (*StatusOutput, error) {
		update, err := f.update(input.Body[f.key])
		if err != nil {
			return nil, s.fail("setModelField", err)
		}
		_, status, err := s.services.Models.Update(ctx, input.ModelID, update)
		if err != nil {
			return nil, s.fail("setModelField", err)
		}
		return statusOutput(status), nil
	})
}

// === DTOs ===

// ModelIDPath addresses a model by id.
type ModelIDPath struct {
	ModelID string `path:"modelId" doc:"Model ID"`
}

// ModelFieldInput carries a single field value keyed by the field name.
type ModelFieldInput struct {
	ModelIDPath
	Body map[string]any
}

// CreateModelRequest is the request body for creating a model.
type CreateModelRequest struct {
	Name         string   `json:"name" doc:"Display name"`
	File         string   `json:"file,omitempty" doc:"ID of the model's file document"`
	Creator      string   `json:"creator,omitempty" doc:"Username of the creator"`
	CreationDate FlexTime `json:"creationDate,omitempty" doc:"Defaults to now"`
	Thumbnail    string   `json:"thumbnail,omitempty" doc:"ID of the thumbnail file document"`
	Tags         []string `json:"tags,omitempty" doc:"Free-form tags"`
	PublicRead   bool     `json:"publicRead,omitempty"`
	PublicWrite  bool     `json:"publicWrite,omitempty"`
}

// CreateModelInput wraps the create model request for Huma.
type CreateModelInput struct {
	Body CreateModelRequest
}

// UpdateModelRequest carries the model fields to change. Absent fields are
// left alone.
type UpdateModelRequest struct {
	Name         *string  `json:"name,omitempty" required:"false"`
	File         *string  `json:"file,omitempty" required:"false"`
	Creator      *string  `json:"creator,omitempty" required:"false"`
	CreationDate FlexTime `json:"creationDate,omitempty" required:"false"`
	Thumbnail    *string  `json:"thumbnail,omitempty" required:"false"`
	Tags         []string `json:"tags,omitempty" required:"false"`
	PublicRead   *bool    `json:"publicRead,omitempty" required:"false"`
	PublicWrite  *bool    `json:"publicWrite,omitempty" required:"false"`
}

// UpdateModelInput wraps the update model request for Huma.
type UpdateModelInput struct {
	ModelIDPath
	Body UpdateModelRequest
}

// ModelBody is a single model response.
type ModelBody struct {
	StatusBody
	Model *ModelView `json:"model,omitempty"`
}

// ModelOutput wraps a single model for Huma.
type ModelOutput struct {
	Body ModelBody
}

// ListModelsInput contains parameters for listing models.
type ListModelsInput struct {
	PageParams
}

// ModelsBody is a list of models with their rights sets.
type ModelsBody struct {
	StatusBody
	Models []*ModelView `json:"models"`
}

// ModelsOutput wraps a model list for Huma.
type ModelsOutput struct {
	Body ModelsBody
}

// ModelSummariesBody is a list of models without rights sets.
type ModelSummariesBody struct {
	StatusBody
	Models []ModelSummary `json:"models"`
}

// ModelSummariesOutput wraps a model summary list for Huma.
type ModelSummariesOutput struct {
	Body ModelSummariesBody
}

// SearchModelsInput contains query parameters for model search.
type SearchModelsInput struct {
	Query      string `query:"q" doc:"Search query"`
	Tags       string `query:"tags" doc:"Comma-separated tags every hit must carry"`
	Creator    string `query:"creator" doc:"Only models by this creator"`
	PublicOnly bool   `query:"publicOnly" doc:"Only publicly readable models"`
	Sort       string `query:"sort" enum:"relevance,name,recent" default:"relevance" doc:"Sort order"`
	Order      string `query:"order" enum:"asc,desc" default:"desc" doc:"Sort direction"`
	Limit      int    `query:"limit" minimum:"0" maximum:"100" default:"20" doc:"Maximum hits"`
	Offset     int    `query:"offset" minimum:"0" default:"0" doc:"Hits to skip"`
}

// SearchBody is the search response.
type SearchBody struct {
	StatusBody
	search.SearchResult
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchBody
}

// ModelCommentsInput lists comments on a model.
type ModelCommentsInput struct {
	ModelIDPath
	PageParams
}

// === Handlers ===

func (s *Server) handleCreateModel(ctx context.Context, input *CreateModelInput) (*ModelOutput, error) {
	m, err := s.services.Models.Create(ctx, service.CreateModelInput{
		Name:         input.Body.Name,
		File:         input.Body.File,
		Creator:      input.Body.Creator,
		CreationDate: input.Body.CreationDate.Time,
		Thumbnail:    input.Body.Thumbnail,
		Tags:         input.Body.Tags,
		PublicRead:   input.Body.PublicRead,
		PublicWrite:  input.Body.PublicWrite,
	})
	if err != nil {
		return nil, s.fail("createModel", err)
	}
	return &ModelOutput{Body: ModelBody{StatusBody: StatusBody{Status: service.StatusOK}, Model: toModelView(m)}}, nil
}

func (s *Server) handleListModels(ctx context.Context, input *ListModelsInput) (*ModelsOutput, error) {
	models, err := s.services.Models.List(ctx, input.Offset, input.Limit)
	if err != nil {
		return nil, s.fail("listModels", err)
	}
	return &ModelsOutput{Body: ModelsBody{StatusBody: StatusBody{Status: service.StatusOK}, Models: toModelViews(models)}}, nil
}

func (s *Server) handleListPublicRead(ctx context.Context, input *ListModelsInput) (*ModelSummariesOutput, error) {
	models, err := s.services.Models.ListPublicRead(ctx, input.Offset, input.Limit)
	if err != nil {
		return nil, s.fail("listPublicReadModels", err)
	}
	return &ModelSummariesOutput{Body: ModelSummariesBody{StatusBody: StatusBody{Status: service.StatusOK}, Models: toModelSummaries(models)}}, nil
}

func (s *Server) handleListPublicWrite(ctx context.Context, input *ListModelsInput) (*ModelSummariesOutput, error) {
	models, err := s.services.Models.ListPublicWrite(ctx, input.Offset, input.Limit)
	if err != nil {
		return nil, s.fail("listPublicWriteModels", err)
	}
	return &ModelSummariesOutput{Body: ModelSummariesBody{StatusBody: StatusBody{Status: service.StatusOK}, Models: toModelSummaries(models)}}, nil
}

func (s *Server) handleSearchModels(ctx context.Context, input *SearchModelsInput) (*SearchOutput, error) {
	params := search.DefaultSearchParams()
	params.Query = input.Query
	params.Tags = domain.NormalizeTags(splitList(input.Tags))
	params.Creator = domain.NormalizeUsername(input.Creator)
	params.PublicOnly = input.PublicOnly
	params.SortBy = input.Sort
	params.SortOrder = input.Order
	params.Limit = input.Limit
	if params.Limit == 0 {
		params.Limit = defaultSearchLimit
	}
	params.Offset = input.Offset

	result, err := s.services.Models.Search(ctx, params)
	if err != nil {
		return nil, s.fail("searchModels", err)
	}
	return &SearchOutput{Body: SearchBody{StatusBody: StatusBody{Status: service.StatusOK}, SearchResult: *result}}, nil
}

func (s *Server) handleGetModel(ctx context.Context, input *ModelIDPath) (*ModelOutput, error) {
	m, status, err := s.services.Models.Get(ctx, input.ModelID)
	if err != nil {
		return nil, s.fail("getModel", err)
	}
	return &ModelOutput{Body: ModelBody{StatusBody: StatusBody{Status: status}, Model: toModelView(m)}}, nil
}

func (s *Server) handleUpdateModel(ctx context.Context, input *UpdateModelInput) (*ModelOutput, error) {
	var updates []domain.ModelUpdate
	b := input.Body
	if b.Name != nil {
		if *b.Name == "" {
			return nil, s.fail("updateModel", domainerrors.ValidationWithDetails("validation failed", map[string]string{"name": "is required"}))
		}
		updates = append(updates, domain.SetName{Name: *b.Name})
	}
	if b.File != nil {
		updates = append(updates, domain.SetFile{FileID: *b.File})
	}
	if b.Creator != nil {
		updates = append(updates, domain.SetCreator{Username: domain.NormalizeUsername(*b.Creator)})
	}
	if !b.CreationDate.IsZero() {
		updates = append(updates, domain.SetCreationDate{Date: b.CreationDate.Time})
	}
	if b.Thumbnail != nil {
		updates = append(updates, domain.SetThumbnail{FileID: *b.Thumbnail})
	}
	if b.Tags != nil {
		updates = append(updates, domain.SetTags{Tags: b.Tags})
	}
	if b.PublicRead != nil {
		updates = append(updates, domain.SetPublicRead{Public: *b.PublicRead})
	}
	if b.PublicWrite != nil {
		updates = append(updates, domain.SetPublicWrite{Public: *b.PublicWrite})
	}

	m, status, err := s.services.Models.Update(ctx, input.ModelID, updates...)
	if err != nil {
		return nil, s.fail("updateModel", err)
	}
	return &ModelOutput{Body: ModelBody{StatusBody: StatusBody{Status: status}, Model: toModelView(m)}}, nil
}

func (s *Server) handleDeleteModel(ctx context.Context, input *ModelIDPath) (*StatusOutput, error) {
	status, err := s.services.Models.Delete(ctx, input.ModelID)
	if err != nil {
		return nil, s.fail("deleteModel", err)
	}
	return statusOutput(status), nil
}

func (s *Server) handleListModelComments(ctx context.Context, input *ModelCommentsInput) (*CommentsOutput, error) {
	_, status, err := s.services.Models.Get(ctx, input.ModelID)
	if err != nil {
		return nil, s.fail("listModelComments", err)
	}
	if !status.OK() {
		return &CommentsOutput{Body: CommentsBody{StatusBody: StatusBody{Status: status}, Comments: []*domain.Comment{}}}, nil
	}

	comments, err := s.services.Comments.ListByModel(ctx, input.ModelID, input.Offset, input.Limit)
	if err != nil {
		return nil, s.fail("listModelComments", err)
	}
	return &CommentsOutput{Body: CommentsBody{StatusBody: StatusBody{Status: service.StatusOK}, Comments: comments}}, nil
}
