package providers

import (
	"github.com/samber/do/v2"

	"github.com/modelshare/modelshare-server/internal/auth"
	"github.com/modelshare/modelshare-server/internal/logger"
	"github.com/modelshare/modelshare-server/internal/service"
	"github.com/modelshare/modelshare-server/internal/validation"
)

// ProvideUserService provides the user service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	hasher := do.MustInvoke[*auth.PasswordHasher](i)
	v := do.MustInvoke[*validation.Validator](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, hasher, v, sseHandle.Manager, log.WithComponent("users")), nil
}

// ProvideModelService provides the model service.
func ProvideModelService(i do.Injector) (*service.ModelService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchHandle := do.MustInvoke[*SearchServiceHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewModelService(storeHandle.Store, searchHandle.SearchService, v, sseHandle.Manager, log.WithComponent("models")), nil
}

// ProvideRightsService provides the read/write rights service.
func ProvideRightsService(i do.Injector) (*service.RightsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRightsService(storeHandle.Store, sseHandle.Manager, log.WithComponent("rights")), nil
}

// ProvideCommentService provides the comment service.
func ProvideCommentService(i do.Injector) (*service.CommentService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	v := do.MustInvoke[*validation.Validator](i)

	return service.NewCommentService(storeHandle.Store, v, sseHandle.Manager, log.WithComponent("comments")), nil
}

// ProvideFileService provides the file service.
func ProvideFileService(i do.Injector) (*service.FileService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	contentHandle := do.MustInvoke[*ContentStoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFileService(storeHandle.Store, contentHandle.ContentStore, sseHandle.Manager, log.WithComponent("files")), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	userService := do.MustInvoke[*service.UserService](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	limiter := do.MustInvoke[*LoginLimiterHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(
		userService,
		storeHandle.Store,
		tokenService,
		limiter.KeyedRateLimiter,
		v,
		log.WithComponent("auth"),
	), nil
}
