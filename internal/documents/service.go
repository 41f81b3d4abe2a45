package documents

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/dontreeza/sangpragay-strapi/internal/components"
	"github.com/dontreeza/sangpragay-strapi/internal/store"
	"github.com/dontreeza/sangpragay-strapi/internal/validator"
	"github.com/dontreeza/sangpragay-strapi/pkg/docid"
	"github.com/dontreeza/sangpragay-strapi/pkg/params"
	"github.com/dontreeza/sangpragay-strapi/pkg/schema"
)

// Service is the entry point of the versioning engine. It hands out one
// Repository per content type, all sharing the same storage engine,
// validator, component handler, and id generator.
type Service struct {
	engine     *store.Engine
	validator  *validator.Validator
	components *components.Handler
	locales    params.LocaleSource
	idgen      docid.Generator
	log        hclog.Logger
}

// NewService builds a document service on top of an initialized engine.
func NewService(
	engine *store.Engine,
	vld *validator.Validator,
	comps *components.Handler,
	locales params.LocaleSource,
	gen docid.Generator,
	log hclog.Logger,
) *Service {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	if gen == nil {
		gen = docid.UUIDGenerator{}
	}
	return &Service{
		engine:     engine,
		validator:  vld,
		components: comps,
		locales:    locales,
		idgen:      gen,
		log:        log,
	}
}

// Repository returns the operation surface for one registered content type.
func (s *Service) Repository(uid string) (*Repository, error) {
	ct, err := s.engine.Schemas().Get(uid)
	if err != nil {
		return nil, err
	}
	if ct.ModelType != schema.ModelContentType {
		return nil, fmt.Errorf("%q is a component, not a content type", uid)
	}
	return &Repository{svc: s, ct: ct}, nil
}

// MustRepository is Repository for statically known content types.
func (s *Service) MustRepository(uid string) *Repository {
	repo, err := s.Repository(uid)
	if err != nil {
		panic(err)
	}
	return repo
}

// withEngine rebinds the service and its collaborators to a transaction
// scope. The clone shares the schema registry and id generator.
func (s *Service) withEngine(tx *store.Engine) *Service {
	clone := *s
	clone.engine = tx
	clone.validator = s.validator.WithEngine(tx)
	clone.components = s.components.WithEngine(tx)
	return &clone
}
