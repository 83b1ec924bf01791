package fx

import (
	"github.com/orgball2608/insta-saver/internal/repositories/media"
	"github.com/orgball2608/insta-saver/internal/repositories/post"
	"github.com/orgball2608/insta-saver/internal/repositories/tag"
	"go.uber.org/fx"
)

var Module = fx.Options(
	post.Module,
	tag.Module,
	media.Module,
)
