// Package api is the local HTTP control surface of the window manager.
package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/ItsNotGoodName/xtile/internal/keys"
	"github.com/ItsNotGoodName/xtile/internal/wm"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
)

// Controller is the part of the window manager the API drives.
type Controller interface {
	Snapshot(ctx context.Context) (wm.Snapshot, error)
	Do(ctx context.Context, action keys.Action, arg keys.Arg) error
	Subscribe(ctx context.Context) (<-chan wm.Snapshot, func())
}

type StateOutput struct {
	Body wm.Snapshot
}

type ActionInput struct {
	Body struct {
		Action string `json:"action" doc:"Action name, e.g. view_tag"`
		Arg    any    `json:"arg,omitempty" doc:"Integer, string or list of strings depending on the action"`
	}
}

type ActionOutput struct {
	Body wm.Snapshot
}

// Register adds the /v1 routes to api.
func Register(api huma.API, ctl Controller) {
	huma.Register(api, huma.Operation{
		OperationID: "get-state",
		Method:      http.MethodGet,
		Path:        "/v1/state",
		Summary:     "Get window manager state",
	}, func(ctx context.Context, input *struct{}) (*StateOutput, error) {
		snap, err := ctl.Snapshot(ctx)
		if err != nil {
			return nil, coreError(err)
		}
		return &StateOutput{Body: snap}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "post-action",
		Method:      http.MethodPost,
		Path:        "/v1/actions",
		Summary:     "Run an action",
	}, func(ctx context.Context, input *ActionInput) (*ActionOutput, error) {
		action, err := keys.ParseAction(input.Body.Action)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		arg, err := decodeArg(input.Body.Arg)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		if err := keys.Validate(action, arg); err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}

		if err := ctl.Do(ctx, action, arg); err != nil {
			return nil, coreError(err)
		}
		snap, err := ctl.Snapshot(ctx)
		if err != nil {
			return nil, coreError(err)
		}
		return &ActionOutput{Body: snap}, nil
	})

	sse.Register(api, huma.Operation{
		OperationID: "get-events",
		Method:      http.MethodGet,
		Path:        "/v1/events",
		Summary:     "Stream state snapshots",
	}, map[string]any{
		"state": wm.Snapshot{},
	}, func(ctx context.Context, input *struct{}, send sse.Sender) {
		c, unsubscribe := ctl.Subscribe(ctx)
		defer unsubscribe()

		if snap, err := ctl.Snapshot(ctx); err == nil {
			if err := send.Data(snap); err != nil {
				return
			}
		}
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-c:
				if err := send.Data(snap); err != nil {
					return
				}
			}
		}
	})
}

func coreError(err error) error {
	if errors.Is(err, wm.ErrNotRunning) {
		return huma.Error503ServiceUnavailable(err.Error())
	}
	return huma.Error500InternalServerError("action failed", err)
}

// decodeArg maps a decoded JSON value onto an action argument.
func decodeArg(v any) (keys.Arg, error) {
	switch v := v.(type) {
	case nil:
		return keys.None{}, nil
	case float64:
		if v != math.Trunc(v) || v < math.MinInt32 || v > math.MaxInt32 {
			return nil, fmt.Errorf("arg %v is not an integer", v)
		}
		return keys.Int(v), nil
	case string:
		return keys.Str(v), nil
	case []any:
		argv := make(keys.Argv, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("arg list must only hold strings, got %T", e)
			}
			argv = append(argv, s)
		}
		return argv, nil
	default:
		return nil, fmt.Errorf("unsupported arg type %T", v)
	}
}
