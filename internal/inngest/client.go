package inngest

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"
	"github.com/kvistberg/studyleague/internal/rollover"
)

// New creates an Inngest client and registers the weekly rollover function.
func New(inngestClient inngestgo.Client, job *rollover.Job) InngestClient {
	c := &client{
		inngestClient: inngestClient,
		job:           job,
	}
	c.createWeeklyRolloverFunction()
	return c
}

func (i *client) createWeeklyRolloverFunction() inngestgo.ServableFunction {
	config := inngestgo.FunctionOpts{
		ID:   "weekly-league-rollover",
		Name: "Roll over weekly leagues",
	}
	f, err := inngestgo.CreateFunction(
		i.inngestClient,
		config,
		// Shortly after midnight Monday in league time, once the week closed.
		inngestgo.CronTrigger("TZ=Asia/Kolkata 5 0 * * 1"),
		func(ctx context.Context, input inngestgo.Input[map[string]any]) (any, error) {
			// By wrapping the work in a step, Inngest retries it on failure.
			summary, err := step.Run(ctx, "roll-over-leagues", func(ctx context.Context) (*rollover.Summary, error) {
				return i.job.ProcessWeeklyLeagues(false)
			})
			if err != nil {
				return nil, err
			}
			return summary, nil
		},
	)
	if err != nil {
		log.Fatal("Failed to create function", "error", err)
	}
	return f
}

func (i *client) Serve() http.Handler {
	return i.inngestClient.Serve()
}

func (i *client) SendEvent(name string, data map[string]any) {
	i.inngestClient.Send(context.Background(), inngestgo.Event{Name: name, Data: data})
}
