package api

import (
	"github.com/modelshare/modelshare-server/internal/service"
)

// Services groups the business logic the handlers call.
type Services struct {
	Users    *service.UserService
	Models   *service.ModelService
	Rights   *service.RightsService
	Comments *service.CommentService
	Files    *service.FileService
	Auth     *service.AuthService
	Search   *service.SearchService // nil when search is disabled
}
