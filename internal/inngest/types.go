package inngest

import (
	"github.com/inngest/inngestgo"
	"github.com/kvistberg/studyleague/internal/rollover"
)

type client struct {
	inngestClient inngestgo.Client
	job           *rollover.Job
}
