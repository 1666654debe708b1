//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

	"anonboard/internal/admin"
	"anonboard/internal/common"
	"anonboard/internal/dbmongo"
	"anonboard/internal/media"
	"anonboard/internal/message"
	"anonboard/internal/moderation"
	"anonboard/internal/story"
)

func InitializeApplication() (*Application, func(), error) {
	wire.Build(
		ProvideConfig,
		ProvideLogger,
		ProvideMongo,
		ProvideDatabase,
		ProvideCategoryCache,
		ProvideMediaStorage,
		ProvideImageStore,
		common.NewRequestValidator,

		message.NewRepository,
		message.NewService,
		ProvideClassifier,
		ProvidePipeline,
		wire.Bind(new(moderation.MessageStore), new(message.Service)),
		wire.Bind(new(message.Submitter), new(*moderation.Pipeline)),
		message.NewHandler,

		story.NewRepository,
		ProvideStoryService,
		ProvideStoryHandler,

		ProvideTokenIssuer,
		wire.Bind(new(admin.Tokens), new(*common.TokenIssuer)),
		wire.Bind(new(admin.MessageStore), new(message.Service)),
		admin.NewRepository,
		admin.NewService,
		admin.NewHandler,

		wire.Bind(new(media.FileSource), new(*dbmongo.MediaStorage)),
		media.NewHTTPServer,

		wire.Struct(new(Application), "*"),
	)
	return nil, nil, nil
}
