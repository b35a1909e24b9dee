package autoreg

import (
	"context"
	"fmt"
	"reflect"

	"github.com/graph-gophers/typegraph/errors"
	"github.com/graph-gophers/typegraph/types"
)

// BuildStreamResolver synthesizes the subscription source of a member whose
// result is a receive channel.
func BuildStreamResolver(m *Member, sourceType reflect.Type, opts *Options) (types.StreamResolver, error) {
	if err := checkMember(m, sourceType); err != nil {
		return nil, err
	}
	if !m.Stream {
		return nil, errors.Constructionf(ownerName(m.Owner), m.Name, "%v is not a channel", m.Result)
	}
	if m.Kind == DataMember {
		return &dataStream{member: m}, nil
	}
	inv, _, err := newInvoker(m, opts.orDefault())
	if err != nil {
		return nil, err
	}
	return &streamResolver{inv: inv}, nil
}

// streamResolver invokes a method returning a channel and forwards its
// events.
type streamResolver struct {
	inv *invoker
}

func (r *streamResolver) Subscribe(rc *types.ResolveContext) (<-chan interface{}, error) {
	out, err := r.inv.call(rc)
	if err != nil {
		return nil, err
	}
	return forward(rc.Ctx(), out)
}

// dataStream reads a channel held in a struct field.
type dataStream struct {
	member *Member
}

func (r *dataStream) Subscribe(rc *types.ResolveContext) (<-chan interface{}, error) {
	v, ok, err := (&dataResolver{member: r.member}).field(rc.Source)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no source to subscribe %s", r.member.Path())
	}
	return forward(rc.Ctx(), v)
}

// forward copies the events of ch to a new channel until ch is closed or ctx
// is done. The returned channel is always closed.
func forward(ctx context.Context, ch reflect.Value) (<-chan interface{}, error) {
	if ch.IsNil() {
		return nil, fmt.Errorf("stream source returned a nil channel")
	}
	events := make(chan interface{})
	go func() {
		defer close(events)
		cases := []reflect.SelectCase{
			{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())},
			{Dir: reflect.SelectRecv, Chan: ch},
		}
		for {
			chosen, v, ok := reflect.Select(cases)
			if chosen == 0 || !ok {
				return
			}
			select {
			case events <- v.Interface():
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
