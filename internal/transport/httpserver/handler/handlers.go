package handler

import (
	"github.com/go-playground/validator/v10"

	rsvpdomain "wedding-app-go/internal/domain/rsvp"
	"wedding-app-go/pkg/logger"
)

type Handlers struct {
	RSVP     *rsvpdomain.Service
	log      logger.Logger
	validate *validator.Validate
}

func New(rsvp *rsvpdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		RSVP:     rsvp,
		log:      log,
		validate: newValidator(),
	}
}
